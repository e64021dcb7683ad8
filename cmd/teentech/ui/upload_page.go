package ui

import (
	"context"
	"os"
	"path/filepath"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"teentech/internal/api"
	"teentech/internal/lessons"
)

const (
	upFieldTitle = iota
	upFieldLesson
	upFieldNewLesson
	upFieldCount
)

// uploadDoneMsg reports a finished upload attempt.
type uploadDoneMsg struct {
	err error
}

// uploadLessonsMsg carries the lesson catalog used by the parent selector.
type uploadLessonsMsg struct {
	lessons []lessons.Lesson
	err     error
}

// UploadModel is the teacher-facing notebook upload form.
type UploadModel struct {
	svc    *lessons.Service
	styles Styles
	spin   spinner.Model

	width  int
	height int

	title     textinput.Model
	newLesson textinput.Model
	focus     int

	catalog      []lessons.Lesson
	lessonIdx    int // 0 means no existing lesson chosen
	catalogError string

	picker     filepicker.Model
	picking    bool
	filePath   string
	fileName   string
	fileData   []byte
	fileErrMsg string

	submitting bool
	errMsg     string
	errField   string
	successMsg string
}

// NewUploadModel creates the upload page.
func NewUploadModel(svc *lessons.Service, styles Styles) UploadModel {
	title := textinput.New()
	title.Placeholder = "Título do material"
	title.CharLimit = 120
	title.Focus()

	newLesson := textinput.New()
	newLesson.Placeholder = "Nova aula (deixe vazio para usar uma existente)"
	newLesson.CharLimit = 120

	fp := filepicker.New()
	fp.AllowedTypes = []string{".ipynb"}
	if home, err := os.UserHomeDir(); err == nil {
		fp.CurrentDirectory = home
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Theme.Accent)

	return UploadModel{
		svc:       svc,
		styles:    styles,
		spin:      sp,
		title:     title,
		newLesson: newLesson,
		picker:    fp,
	}
}

// Init fetches the lesson catalog for the parent selector.
func (m UploadModel) Init() tea.Cmd {
	return tea.Batch(m.fetchLessons(), m.picker.Init())
}

// SetSize updates the page dimensions.
func (m *UploadModel) SetSize(w, h int) {
	m.width, m.height = w, h
	m.picker.Height = h - 10
	if m.picker.Height < 5 {
		m.picker.Height = 5
	}
}

func (m UploadModel) fetchLessons() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), api.DefaultTimeout)
		defer cancel()
		ls, err := svc.List(ctx)
		return uploadLessonsMsg{lessons: ls, err: err}
	}
}

// selectedLessonID returns the chosen parent lesson id, 0 when none.
func (m UploadModel) selectedLessonID() int64 {
	if m.lessonIdx == 0 || m.lessonIdx > len(m.catalog) {
		return 0
	}
	return m.catalog[m.lessonIdx-1].ID
}

// Update handles messages.
func (m UploadModel) Update(msg tea.Msg) (UploadModel, tea.Cmd) {
	switch msg := msg.(type) {
	case uploadLessonsMsg:
		if msg.err != nil {
			if api.IsUnauthorized(msg.err) {
				return m, Navigate(PageLogin)
			}
			m.catalogError = "could not load the lesson list"
			return m, nil
		}
		m.catalog = msg.lessons
		m.catalogError = ""
		return m, nil

	case uploadDoneMsg:
		m.submitting = false
		if msg.err != nil {
			if api.IsUnauthorized(msg.err) {
				return m, Navigate(PageLogin)
			}
			// Keep every field so the teacher can retry
			m.errMsg, m.errField = uploadErrorCopy(msg.err)
			return m, nil
		}
		m.clearForm()
		m.successMsg = "Material enviado com sucesso."
		return m, nil

	case spinner.TickMsg:
		if m.submitting {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.picking {
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m UploadModel) handleKey(msg tea.KeyMsg) (UploadModel, tea.Cmd) {
	if m.submitting {
		return m, nil
	}

	if m.picking {
		switch msg.String() {
		case "esc":
			m.picking = false
			return m, nil
		}
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		if ok, path := m.picker.DidSelectFile(msg); ok {
			m.picking = false
			return m.loadFile(path), cmd
		}
		return m, cmd
	}

	switch msg.String() {
	case "ctrl+o":
		m.picking = true
		return m, m.picker.Init()

	case "tab", "down":
		m.setFocus((m.focus + 1) % upFieldCount)
		return m, nil

	case "shift+tab", "up":
		m.setFocus((m.focus - 1 + upFieldCount) % upFieldCount)
		return m, nil

	case "left", "right":
		if m.focus == upFieldLesson {
			if msg.String() == "right" {
				m.lessonIdx = (m.lessonIdx + 1) % (len(m.catalog) + 1)
			} else {
				m.lessonIdx = (m.lessonIdx - 1 + len(m.catalog) + 1) % (len(m.catalog) + 1)
			}
			if m.lessonIdx != 0 {
				// An existing parent excludes creating a new one
				m.newLesson.SetValue("")
			}
			return m, nil
		}

	case "ctrl+s":
		return m.submit()

	case "enter":
		if m.focus == upFieldNewLesson {
			return m.submit()
		}
		m.setFocus((m.focus + 1) % upFieldCount)
		return m, nil
	}

	var cmd tea.Cmd
	switch m.focus {
	case upFieldTitle:
		m.title, cmd = m.title.Update(msg)
	case upFieldNewLesson:
		if m.selectedLessonID() == 0 {
			m.newLesson, cmd = m.newLesson.Update(msg)
		}
	}
	return m, cmd
}

func (m *UploadModel) setFocus(i int) {
	m.focus = i
	m.title.Blur()
	m.newLesson.Blur()
	switch i {
	case upFieldTitle:
		m.title.Focus()
	case upFieldNewLesson:
		m.newLesson.Focus()
	}
}

// loadFile reads the picked notebook into memory.
func (m UploadModel) loadFile(path string) UploadModel {
	data, err := os.ReadFile(path)
	if err != nil {
		m.fileErrMsg = "could not read the selected file"
		return m
	}
	m.filePath = path
	m.fileName = filepath.Base(path)
	m.fileData = data
	m.fileErrMsg = ""
	return m
}

func (m *UploadModel) clearForm() {
	m.title.SetValue("")
	m.newLesson.SetValue("")
	m.lessonIdx = 0
	m.filePath = ""
	m.fileName = ""
	m.fileData = nil
	m.fileErrMsg = ""
	m.errMsg = ""
	m.errField = ""
	m.setFocus(upFieldTitle)
}

// submit validates locally first; an invalid form issues no request.
func (m UploadModel) submit() (UploadModel, tea.Cmd) {
	if m.submitting {
		return m, nil
	}
	m.successMsg = ""

	req := lessons.UploadRequest{
		Title:          m.title.Value(),
		FileName:       m.fileName,
		Data:           m.fileData,
		LessonID:       m.selectedLessonID(),
		NewLessonTitle: m.newLesson.Value(),
	}
	if err := req.Validate(); err != nil {
		m.errMsg, m.errField = uploadErrorCopy(err)
		return m, nil
	}

	m.submitting = true
	m.errMsg, m.errField = "", ""

	svc := m.svc
	return m, tea.Batch(m.spin.Tick, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), api.DefaultTimeout)
		defer cancel()
		return uploadDoneMsg{err: svc.Upload(ctx, req)}
	})
}

// uploadErrorCopy translates an upload failure into user-facing copy plus the
// field it concerns, empty when not field-specific.
func uploadErrorCopy(err error) (string, string) {
	if v, ok := api.IsValidation(err); ok {
		switch v.Field {
		case "title":
			return "Informe um título para o material.", v.Field
		case "file":
			return "Selecione um arquivo .ipynb (ctrl+o).", v.Field
		case "newLessonTitle":
			return "Escolha uma aula existente ou crie uma nova, não ambas.", v.Field
		case "lesson":
			return "Escolha uma aula existente ou informe o nome de uma nova.", v.Field
		}
		return v.Reason, v.Field
	}
	if e, ok := api.AsError(err); ok && e.Kind == api.KindNoResponse {
		return "could not reach the server, check your connection", ""
	}
	return err.Error(), ""
}

// View renders the upload form.
func (m UploadModel) View() string {
	s := m.styles

	if m.picking {
		return s.Box.Render(lipgloss.JoinVertical(lipgloss.Left,
			s.Header.Render("Selecione um arquivo .ipynb"),
			"",
			m.picker.View(),
			"",
			s.Muted.Render("enter: choose • esc: cancel"),
		))
	}

	rows := []string{s.Header.Render("Upload de Material"), ""}

	if m.catalogError != "" {
		rows = append(rows, s.Warning.Render(m.catalogError))
	}

	rows = append(rows, m.inputRow("Título", m.title.View(), upFieldTitle, "title"))
	rows = append(rows, m.lessonRow())
	rows = append(rows, m.inputRow("Nova aula", m.newLesson.View(), upFieldNewLesson, "newLessonTitle"))

	fileLabel := "nenhum arquivo selecionado (ctrl+o)"
	if m.fileName != "" {
		fileLabel = m.fileName
	}
	fileStyle := s.Muted
	if m.errField == "file" || m.fileErrMsg != "" {
		fileStyle = s.Error
	}
	rows = append(rows, s.Label.Render("Arquivo: ")+fileStyle.Render(fileLabel))
	if m.fileErrMsg != "" {
		rows = append(rows, s.Error.Render(m.fileErrMsg))
	}

	rows = append(rows, "")
	switch {
	case m.submitting:
		rows = append(rows, m.spin.View()+" Enviando...")
	case m.errMsg != "":
		rows = append(rows, s.Error.Render(m.errMsg))
	case m.successMsg != "":
		rows = append(rows, s.Success.Render(m.successMsg))
	}

	rows = append(rows, "", s.Muted.Render("ctrl+s: enviar • ctrl+o: escolher arquivo • tab: próximo campo"))
	return s.Box.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m UploadModel) inputRow(label, input string, field int, errField string) string {
	s := m.styles
	lbl := s.Label
	if m.focus == field {
		lbl = s.Focused
	}
	if m.errField == errField {
		lbl = s.Error
	}
	return lbl.Render(label+": ") + input
}

func (m UploadModel) lessonRow() string {
	s := m.styles
	lbl := s.Label
	if m.focus == upFieldLesson {
		lbl = s.Focused
	}
	if m.errField == "lesson" {
		lbl = s.Error
	}

	choice := "— nenhuma —"
	if id := m.selectedLessonID(); id != 0 {
		choice = m.catalog[m.lessonIdx-1].Title
	}
	return lbl.Render("Aula existente: ") + "← " + choice + " →"
}
