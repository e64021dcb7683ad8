package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"teentech/internal/api"
	"teentech/internal/lessons"
)

// Lesson list lifecycle. The file sub-list has its own phase nested under
// lessonsReady.
type lessonPhase int

const (
	lessonsLoading lessonPhase = iota
	lessonsReady
	lessonsFailed
)

type filePhase int

const (
	filesNone filePhase = iota // no lesson selected, nothing fetched
	filesLoading
	filesReady
	filesFailed
)

// lessonsLoadedMsg carries the lesson catalog fetch result.
type lessonsLoadedMsg struct {
	lessons []lessons.Lesson
	err     error
}

// filesLoadedMsg carries a file fetch result, tagged with the lesson it was
// issued for so stale responses can be discarded.
type filesLoadedMsg struct {
	lessonID int64
	files    []lessons.File
	err      error
}

// downloadDoneMsg reports a finished download attempt.
type downloadDoneMsg struct {
	name string
	err  error
}

// LessonsModel is the student-facing lesson browser.
type LessonsModel struct {
	svc    *lessons.Service
	save   lessons.SaveFunc
	styles Styles
	spin   spinner.Model

	width  int
	height int

	phase   lessonPhase
	catalog []lessons.Lesson
	cursor  int
	errMsg  string

	selectedID int64 // 0 when no lesson is selected
	filePhase  filePhase
	files      []lessons.File
	fileCursor int
	fileErrMsg string

	focusFiles  bool
	downloading bool
	status      string // last download acknowledgment
}

// NewLessonsModel creates the lesson browser page.
func NewLessonsModel(svc *lessons.Service, save lessons.SaveFunc, styles Styles) LessonsModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Theme.Accent)

	return LessonsModel{
		svc:    svc,
		save:   save,
		styles: styles,
		spin:   sp,
		phase:  lessonsLoading,
	}
}

// Init fetches the catalog; exactly once per mount.
func (m LessonsModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.fetchLessons())
}

// SetSize updates the page dimensions.
func (m *LessonsModel) SetSize(w, h int) {
	m.width, m.height = w, h
}

func (m LessonsModel) fetchLessons() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), api.DefaultTimeout)
		defer cancel()
		ls, err := svc.List(ctx)
		return lessonsLoadedMsg{lessons: ls, err: err}
	}
}

// fetchFiles tags the command with the lesson id current at issue time; the
// handler only applies responses whose tag still matches the selection.
func (m LessonsModel) fetchFiles(lessonID int64) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), api.DefaultTimeout)
		defer cancel()
		fs, err := svc.Files(ctx, lessonID)
		return filesLoadedMsg{lessonID: lessonID, files: fs, err: err}
	}
}

func (m LessonsModel) downloadFile(f lessons.File) tea.Cmd {
	svc, save := m.svc, m.save
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), api.DefaultTimeout)
		defer cancel()
		err := svc.Download(ctx, f, save)
		return downloadDoneMsg{name: lessons.SaveName(f.Title), err: err}
	}
}

// reset clears all four pieces of page state: catalog, selection, files,
// and errors.
func (m *LessonsModel) reset() {
	m.phase = lessonsLoading
	m.catalog = nil
	m.cursor = 0
	m.errMsg = ""
	m.selectedID = 0
	m.filePhase = filesNone
	m.files = nil
	m.fileCursor = 0
	m.fileErrMsg = ""
	m.focusFiles = false
	m.downloading = false
	m.status = ""
}

// clearSelection drops the file sub-list without issuing a request.
func (m *LessonsModel) clearSelection() {
	m.selectedID = 0
	m.files = nil
	m.fileCursor = 0
	m.filePhase = filesNone
	m.fileErrMsg = ""
	m.focusFiles = false
}

// Update handles messages.
func (m LessonsModel) Update(msg tea.Msg) (LessonsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case lessonsLoadedMsg:
		if msg.err != nil {
			if api.IsUnauthorized(msg.err) {
				// Session already torn down by the client; just route home
				return m, Navigate(PageLogin)
			}
			m.phase = lessonsFailed
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.phase = lessonsReady
		m.catalog = msg.lessons
		m.cursor = 0
		m.errMsg = ""
		return m, nil

	case filesLoadedMsg:
		// Supersession: apply only the response for the current selection.
		if msg.lessonID != m.selectedID {
			return m, nil
		}
		if msg.err != nil {
			if api.IsUnauthorized(msg.err) {
				return m, Navigate(PageLogin)
			}
			m.filePhase = filesFailed
			m.fileErrMsg = msg.err.Error()
			return m, nil
		}
		m.filePhase = filesReady
		m.files = msg.files
		m.fileCursor = 0
		m.fileErrMsg = ""
		return m, nil

	case downloadDoneMsg:
		m.downloading = false
		if msg.err != nil {
			if api.IsUnauthorized(msg.err) {
				return m, Navigate(PageLogin)
			}
			// Generic message; list and selection state stay put
			m.status = ""
			m.fileErrMsg = "could not download the file, try again"
			return m, nil
		}
		m.fileErrMsg = ""
		m.status = fmt.Sprintf("Saved %s", msg.name)
		return m, nil

	case spinner.TickMsg:
		if m.phase == lessonsLoading || m.filePhase == filesLoading || m.downloading {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m LessonsModel) handleKey(msg tea.KeyMsg) (LessonsModel, tea.Cmd) {
	switch msg.String() {
	case "r":
		// Full reset and refetch after a failed catalog load
		if m.phase == lessonsFailed {
			m.reset()
			return m, tea.Batch(m.spin.Tick, m.fetchLessons())
		}

	case "esc":
		m.clearSelection()
		return m, nil

	case "tab":
		if m.selectedID != 0 && m.filePhase == filesReady && len(m.files) > 0 {
			m.focusFiles = !m.focusFiles
		}
		return m, nil

	case "up", "k":
		if m.focusFiles {
			if m.fileCursor > 0 {
				m.fileCursor--
			}
		} else if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case "down", "j":
		if m.focusFiles {
			if m.fileCursor < len(m.files)-1 {
				m.fileCursor++
			}
		} else if m.cursor < len(m.catalog)-1 {
			m.cursor++
		}
		return m, nil

	case "enter", "d":
		if m.focusFiles {
			return m.startDownload()
		}
		return m.selectLesson()
	}

	return m, nil
}

// selectLesson triggers exactly one file fetch for the lesson under the
// cursor. Re-selecting the same lesson is a no-op.
func (m LessonsModel) selectLesson() (LessonsModel, tea.Cmd) {
	if m.phase != lessonsReady || len(m.catalog) == 0 {
		return m, nil
	}
	chosen := m.catalog[m.cursor]
	if chosen.ID == m.selectedID {
		return m, nil
	}

	m.selectedID = chosen.ID
	m.files = nil
	m.fileCursor = 0
	m.filePhase = filesLoading
	m.fileErrMsg = ""
	m.status = ""
	return m, tea.Batch(m.spin.Tick, m.fetchFiles(chosen.ID))
}

func (m LessonsModel) startDownload() (LessonsModel, tea.Cmd) {
	if m.filePhase != filesReady || len(m.files) == 0 || m.downloading {
		return m, nil
	}
	f := m.files[m.fileCursor]
	m.downloading = true
	m.status = ""
	return m, tea.Batch(m.spin.Tick, m.downloadFile(f))
}

// View renders the lesson browser.
func (m LessonsModel) View() string {
	s := m.styles

	rows := []string{s.Header.Render("Aulas Disponíveis"), ""}

	switch m.phase {
	case lessonsLoading:
		rows = append(rows, m.spin.View()+" Loading lessons...")
	case lessonsFailed:
		rows = append(rows,
			s.Error.Render(m.errMsg),
			s.Muted.Render("r: try again"),
		)
	case lessonsReady:
		if len(m.catalog) == 0 {
			rows = append(rows, s.Muted.Render("No lessons available right now."))
			break
		}
		for i, l := range m.catalog {
			marker := "  "
			style := s.Item
			if l.ID == m.selectedID {
				marker = "• "
			}
			if i == m.cursor && !m.focusFiles {
				style = s.Selected
				marker = "> "
			}
			rows = append(rows, style.Render(marker+l.Title))
		}
		rows = append(rows, m.filesView()...)
	}

	if m.status != "" {
		rows = append(rows, "", s.Success.Render(m.status))
	}

	rows = append(rows, "", s.Muted.Render("enter: select/download • tab: switch pane • esc: clear selection"))
	return s.Box.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m LessonsModel) filesView() []string {
	s := m.styles
	if m.selectedID == 0 {
		return nil
	}

	rows := []string{"", s.Header.Render("Arquivos Disponíveis")}

	switch m.filePhase {
	case filesLoading:
		rows = append(rows, m.spin.View()+" Loading files...")
	case filesFailed:
		rows = append(rows, s.Error.Render(m.fileErrMsg))
	case filesReady:
		if len(m.files) == 0 {
			rows = append(rows, s.Muted.Render("No files in this lesson."))
			break
		}
		for i, f := range m.files {
			style := s.Item
			marker := "  "
			if i == m.fileCursor && m.focusFiles {
				style = s.Selected
				marker = "> "
			}
			rows = append(rows, style.Render(marker+f.Title+" (.ipynb)"))
		}
		if m.downloading {
			rows = append(rows, m.spin.View()+" Downloading...")
		}
		if m.fileErrMsg != "" {
			rows = append(rows, s.Error.Render(m.fileErrMsg))
		}
	}

	return rows
}
