package ui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"teentech/internal/api"
	"teentech/internal/auth"
)

// loginDoneMsg reports the outcome of a login submission.
type loginDoneMsg struct {
	dest auth.Destination
	err  error
}

// LoginModel is the sign-in page.
type LoginModel struct {
	svc    *auth.Service
	styles Styles
	spin   spinner.Model

	width  int
	height int

	email    textinput.Model
	password textinput.Model
	focus    int

	submitting bool
	errMsg     string
}

// NewLoginModel creates the login page.
func NewLoginModel(svc *auth.Service, styles Styles) LoginModel {
	email := textinput.New()
	email.Placeholder = "Email"
	email.Focus()

	password := textinput.New()
	password.Placeholder = "Password"
	password.EchoMode = textinput.EchoPassword

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Theme.Accent)

	return LoginModel{
		svc:      svc,
		styles:   styles,
		spin:     sp,
		email:    email,
		password: password,
	}
}

// Init starts the cursor blink.
func (m LoginModel) Init() tea.Cmd {
	return textinput.Blink
}

// SetSize updates the page dimensions.
func (m *LoginModel) SetSize(w, h int) {
	m.width, m.height = w, h
}

// Update handles messages.
func (m LoginModel) Update(msg tea.Msg) (LoginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		switch msg.String() {
		case "ctrl+l":
			return m, Navigate(PageRegister)
		case "tab", "down", "shift+tab", "up":
			m.toggleFocus()
			return m, nil
		case "enter":
			if m.focus == 0 {
				m.toggleFocus()
				return m, nil
			}
			return m.submit()
		case "ctrl+s":
			return m.submit()
		}

	case loginDoneMsg:
		m.submitting = false
		// Credentials are never retained past the attempt
		m.password.SetValue("")
		if msg.err != nil {
			m.errMsg = loginErrorCopy(msg.err)
			return m, nil
		}
		m.email.SetValue("")
		m.errMsg = ""
		return m, Navigate(pageForDestination(msg.dest))

	case spinner.TickMsg:
		if m.submitting {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.email, cmd = m.email.Update(msg)
	cmds = append(cmds, cmd)
	m.password, cmd = m.password.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *LoginModel) toggleFocus() {
	if m.focus == 0 {
		m.focus = 1
		m.email.Blur()
		m.password.Focus()
	} else {
		m.focus = 0
		m.password.Blur()
		m.email.Focus()
	}
}

func (m LoginModel) submit() (LoginModel, tea.Cmd) {
	email := strings.TrimSpace(m.email.Value())
	password := m.password.Value()
	if email == "" || password == "" {
		m.errMsg = "email and password are required"
		return m, nil
	}

	m.submitting = true
	m.errMsg = ""

	svc := m.svc
	return m, tea.Batch(m.spin.Tick, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), api.DefaultTimeout)
		defer cancel()
		dest, err := svc.Login(ctx, email, password)
		return loginDoneMsg{dest: dest, err: err}
	})
}

// loginErrorCopy maps login failures onto user-facing copy. Transport
// failures arrive pre-classified; only the flow-specific conditions need
// their own wording.
func loginErrorCopy(err error) string {
	switch {
	case errors.Is(err, auth.ErrMissingToken):
		return "the server issued no credential, try again"
	case auth.IsDecodeError(err):
		return "could not read the issued credential"
	case errors.Is(err, auth.ErrInvalidRole):
		return "this account's role is not supported"
	default:
		return err.Error()
	}
}

// View renders the login form.
func (m LoginModel) View() string {
	s := m.styles

	emailStyle, passStyle := s.Focused, s.Label
	if m.focus == 1 {
		emailStyle, passStyle = s.Label, s.Focused
	}

	rows := []string{
		s.Header.Render("Login"),
		"",
		emailStyle.Render("Email: ") + m.email.View(),
		passStyle.Render("Password: ") + m.password.View(),
	}

	switch {
	case m.submitting:
		rows = append(rows, "", m.spin.View()+" Signing in...")
	case m.errMsg != "":
		rows = append(rows, "", s.Error.Render(m.errMsg))
	}

	rows = append(rows, "", s.Muted.Render("enter: sign in • ctrl+l: create an account"))
	return s.Box.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
