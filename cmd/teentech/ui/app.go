package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"teentech/internal/auth"
	"teentech/internal/lessons"
	"teentech/internal/logging"
)

// Page identifies one of the four client pages. The default page is
// registration, mirroring the platform's root route.
type Page int

const (
	PageRegister Page = iota
	PageLogin
	PageLessons
	PageUpload
)

// Route returns the page's path for display in the header.
func (p Page) Route() string {
	switch p {
	case PageLogin:
		return "/login"
	case PageLessons:
		return "/aulas"
	case PageUpload:
		return "/upload"
	default:
		return "/"
	}
}

// NavigateMsg switches the active page.
type NavigateMsg struct {
	To Page
}

// Navigate returns a command that routes to the given page.
func Navigate(p Page) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{To: p} }
}

// pageForDestination maps a post-login destination onto a page.
func pageForDestination(d auth.Destination) Page {
	if d == auth.DestinationUpload {
		return PageUpload
	}
	return PageLessons
}

// Deps carries the services the pages run on.
type Deps struct {
	Auth    *auth.Service
	Lessons *lessons.Service
	Save    lessons.SaveFunc // persists downloaded notebooks
}

// App is the root model: it owns the active page and routes messages to it.
type App struct {
	deps   Deps
	styles Styles
	log    *logging.Logger

	page   Page
	width  int
	height int

	register RegisterModel
	login    LoginModel
	lessons  LessonsModel
	upload   UploadModel

	showHelp bool
	helpText string // glamour-rendered, built lazily
}

// NewApp creates the root model starting on the registration page.
func NewApp(deps Deps, theme Theme) App {
	styles := NewStyles(theme)
	return App{
		deps:     deps,
		styles:   styles,
		log:      logging.Get(logging.CategoryUI),
		page:     PageRegister,
		register: NewRegisterModel(deps.Auth, styles),
		login:    NewLoginModel(deps.Auth, styles),
		lessons:  NewLessonsModel(deps.Lessons, deps.Save, styles),
		upload:   NewUploadModel(deps.Lessons, styles),
	}
}

// Init starts the active page.
func (a App) Init() tea.Cmd {
	return a.register.Init()
}

// Update routes messages.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.register.SetSize(msg.Width, msg.Height)
		a.login.SetSize(msg.Width, msg.Height)
		a.lessons.SetSize(msg.Width, msg.Height)
		a.upload.SetSize(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return a, tea.Quit
		case "f1":
			a.showHelp = !a.showHelp
			if a.showHelp && a.helpText == "" {
				a.helpText = renderHelp(a.styles.Theme)
			}
			return a, nil
		}
		if a.showHelp {
			// Any other key closes the overlay
			a.showHelp = false
			return a, nil
		}

	case NavigateMsg:
		return a.navigate(msg.To)
	}

	return a.updateActive(msg)
}

// navigate switches pages, resetting the target page's state. Each page
// mount re-runs its initial fetch, matching one parent fetch per mount.
func (a App) navigate(to Page) (tea.Model, tea.Cmd) {
	a.log.Info("navigate %s -> %s", a.page.Route(), to.Route())
	a.page = to

	var cmd tea.Cmd
	switch to {
	case PageRegister:
		a.register = NewRegisterModel(a.deps.Auth, a.styles)
		a.register.SetSize(a.width, a.height)
		cmd = a.register.Init()
	case PageLogin:
		a.login = NewLoginModel(a.deps.Auth, a.styles)
		a.login.SetSize(a.width, a.height)
		cmd = a.login.Init()
	case PageLessons:
		a.lessons = NewLessonsModel(a.deps.Lessons, a.deps.Save, a.styles)
		a.lessons.SetSize(a.width, a.height)
		cmd = a.lessons.Init()
	case PageUpload:
		a.upload = NewUploadModel(a.deps.Lessons, a.styles)
		a.upload.SetSize(a.width, a.height)
		cmd = a.upload.Init()
	}
	return a, cmd
}

func (a App) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.page {
	case PageRegister:
		a.register, cmd = a.register.Update(msg)
	case PageLogin:
		a.login, cmd = a.login.Update(msg)
	case PageLessons:
		a.lessons, cmd = a.lessons.Update(msg)
	case PageUpload:
		a.upload, cmd = a.upload.Update(msg)
	}
	return a, cmd
}

// View renders the header, the active page, and the footer.
func (a App) View() string {
	if a.showHelp {
		return a.helpView()
	}

	header := lipgloss.JoinHorizontal(
		lipgloss.Center,
		a.styles.Header.Render("Teen Tech"),
		a.styles.Muted.Render("  "+a.page.Route()),
	)

	var body string
	switch a.page {
	case PageRegister:
		body = a.register.View()
	case PageLogin:
		body = a.login.View()
	case PageLessons:
		body = a.lessons.View()
	case PageUpload:
		body = a.upload.View()
	}

	footer := a.styles.Muted.Render("f1: help • ctrl+c: quit")
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

const helpMarkdown = `# Teen Tech client

## Pages
- **/** registration — create a student or teacher account
- **/login** — sign in; students land on the lesson browser, teachers on upload
- **/aulas** — pick a lesson, browse its notebooks, download with *enter*
- **/upload** — teachers attach a notebook to an existing or a new lesson

## Keys
- *tab / shift+tab* move between fields
- *enter* submit / select
- *esc* clear the lesson selection
- *r* retry a failed lesson fetch
- *ctrl+o* open the notebook picker on the upload page
- *ctrl+l* go to the login page
- *f1* toggle this help
`

// renderHelp renders the markdown help overlay, falling back to the raw
// text when rendering fails.
func renderHelp(t Theme) string {
	style := "dark"
	if !t.IsDark {
		style = "light"
	}
	out, err := glamour.Render(helpMarkdown, style)
	if err != nil {
		return helpMarkdown
	}
	return out
}

func (a App) helpView() string {
	if a.helpText == "" {
		return renderHelp(a.styles.Theme)
	}
	return a.helpText
}
