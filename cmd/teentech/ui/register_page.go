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

// Registration form field indices. The registration number row only exists
// while the teacher role is selected.
const (
	regFieldName = iota
	regFieldEmail
	regFieldPassword
	regFieldRole
	regFieldNumber
)

// registerDoneMsg reports the outcome of a registration submission.
type registerDoneMsg struct {
	err error
}

// RegisterModel is the account-creation page.
type RegisterModel struct {
	svc    *auth.Service
	styles Styles
	spin   spinner.Model

	width  int
	height int

	name     textinput.Model
	email    textinput.Model
	password textinput.Model
	number   textinput.Model
	role     auth.Role
	focus    int

	submitting bool
	errMsg     string
	errField   string
	successMsg string
}

// NewRegisterModel creates the registration page.
func NewRegisterModel(svc *auth.Service, styles Styles) RegisterModel {
	name := textinput.New()
	name.Placeholder = "Name"
	name.Focus()

	email := textinput.New()
	email.Placeholder = "Email"

	password := textinput.New()
	password.Placeholder = "Password"
	password.EchoMode = textinput.EchoPassword

	number := textinput.New()
	number.Placeholder = "Registration number (10 digits)"
	number.CharLimit = 10

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Theme.Accent)

	return RegisterModel{
		svc:      svc,
		styles:   styles,
		spin:     sp,
		name:     name,
		email:    email,
		password: password,
		number:   number,
		role:     auth.RoleStudent,
	}
}

// Init starts the cursor blink.
func (m RegisterModel) Init() tea.Cmd {
	return textinput.Blink
}

// SetSize updates the page dimensions.
func (m *RegisterModel) SetSize(w, h int) {
	m.width, m.height = w, h
}

// fieldCount is the number of focusable rows for the current role.
func (m RegisterModel) fieldCount() int {
	if m.role == auth.RoleTeacher {
		return 5
	}
	return 4
}

// Update handles messages.
func (m RegisterModel) Update(msg tea.Msg) (RegisterModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		switch msg.String() {
		case "ctrl+l":
			return m, Navigate(PageLogin)
		case "tab", "down":
			m.setFocus((m.focus + 1) % m.fieldCount())
			return m, nil
		case "shift+tab", "up":
			m.setFocus((m.focus - 1 + m.fieldCount()) % m.fieldCount())
			return m, nil
		case "left", "right", " ":
			if m.focus == regFieldRole {
				m.toggleRole()
				return m, nil
			}
		case "enter":
			if m.focus == m.fieldCount()-1 {
				return m.submit()
			}
			m.setFocus(m.focus + 1)
			return m, nil
		case "ctrl+s":
			return m.submit()
		}

	case registerDoneMsg:
		m.submitting = false
		if msg.err != nil {
			m.errMsg, m.errField = registerErrorCopy(msg.err)
			return m, nil
		}
		// Success: clear the form and acknowledge
		m.name.SetValue("")
		m.email.SetValue("")
		m.password.SetValue("")
		m.number.SetValue("")
		m.role = auth.RoleStudent
		m.errMsg, m.errField = "", ""
		m.successMsg = "Account created. Press ctrl+l to log in."
		m.setFocus(regFieldName)
		return m, nil

	case spinner.TickMsg:
		if m.submitting {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	return m.updateInputs(msg)
}

func (m *RegisterModel) toggleRole() {
	if m.role == auth.RoleStudent {
		m.role = auth.RoleTeacher
	} else {
		m.role = auth.RoleStudent
		m.number.SetValue("")
	}
}

func (m *RegisterModel) setFocus(i int) {
	m.focus = i
	m.name.Blur()
	m.email.Blur()
	m.password.Blur()
	m.number.Blur()
	switch i {
	case regFieldName:
		m.name.Focus()
	case regFieldEmail:
		m.email.Focus()
	case regFieldPassword:
		m.password.Focus()
	case regFieldNumber:
		m.number.Focus()
	}
}

func (m RegisterModel) updateInputs(msg tea.Msg) (RegisterModel, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.name, cmd = m.name.Update(msg)
	cmds = append(cmds, cmd)
	m.email, cmd = m.email.Update(msg)
	cmds = append(cmds, cmd)
	m.password, cmd = m.password.Update(msg)
	cmds = append(cmds, cmd)
	m.number, cmd = m.number.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// submit validates locally and posts the registration.
func (m RegisterModel) submit() (RegisterModel, tea.Cmd) {
	u := auth.User{
		Name:     strings.TrimSpace(m.name.Value()),
		Email:    strings.TrimSpace(m.email.Value()),
		Password: m.password.Value(),
		Role:     m.role,
	}
	if m.role == auth.RoleTeacher {
		u.RegistrationNumber = strings.TrimSpace(m.number.Value())
	}

	if err := u.Validate(); err != nil {
		m.errMsg, m.errField = registerErrorCopy(err)
		m.successMsg = ""
		return m, nil
	}

	m.submitting = true
	m.errMsg, m.errField = "", ""
	m.successMsg = ""

	svc := m.svc
	return m, tea.Batch(m.spin.Tick, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), api.DefaultTimeout)
		defer cancel()
		return registerDoneMsg{err: svc.Register(ctx, u)}
	})
}

// registerErrorCopy translates a registration failure into user-facing copy
// and the field to point at, if any.
func registerErrorCopy(err error) (msg, field string) {
	if v, ok := api.IsValidation(err); ok {
		return v.Reason, v.Field
	}
	if errors.Is(err, auth.ErrEmailTaken) {
		return "email already registered", "email"
	}
	return err.Error(), ""
}

// View renders the registration form.
func (m RegisterModel) View() string {
	s := m.styles

	rows := []string{
		s.Header.Render("Cadastro"),
		"",
		m.fieldRow("Name", m.name.View(), regFieldName),
		m.fieldRow("Email", m.email.View(), regFieldEmail),
		m.fieldRow("Password", m.password.View(), regFieldPassword),
		m.roleRow(),
	}
	if m.role == auth.RoleTeacher {
		rows = append(rows, m.fieldRow("Number", m.number.View(), regFieldNumber))
	}

	switch {
	case m.submitting:
		rows = append(rows, "", m.spin.View()+" Creating account...")
	case m.errMsg != "":
		rows = append(rows, "", s.Error.Render(m.errMsg))
	case m.successMsg != "":
		rows = append(rows, "", s.Success.Render(m.successMsg))
	}

	rows = append(rows, "", s.Muted.Render("enter: submit • ctrl+l: already have an account? log in"))
	return s.Box.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m RegisterModel) fieldRow(label, input string, field int) string {
	style := m.styles.Label
	if m.focus == field {
		style = m.styles.Focused
	}
	if m.errField != "" && m.errField == fieldName(field) {
		style = m.styles.Error
	}
	return style.Render(label+": ") + input
}

func (m RegisterModel) roleRow() string {
	style := m.styles.Label
	if m.focus == regFieldRole {
		style = m.styles.Focused
	}
	student, teacher := "  student  ", "  teacher  "
	if m.role == auth.RoleStudent {
		student = m.styles.Selected.Render("[ student ]")
	} else {
		teacher = m.styles.Selected.Render("[ teacher ]")
	}
	return style.Render("Role: ") + student + " " + teacher
}

// fieldName maps a field index to the validation field identifier.
func fieldName(field int) string {
	switch field {
	case regFieldName:
		return "name"
	case regFieldEmail:
		return "email"
	case regFieldPassword:
		return "password"
	case regFieldRole:
		return "role"
	case regFieldNumber:
		return "registrationNumber"
	default:
		return ""
	}
}
