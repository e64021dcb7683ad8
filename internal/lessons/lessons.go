// Package lessons covers the lesson catalog: listing lessons and their
// files, downloading notebooks, and the teacher-side upload flow.
package lessons

import (
	"context"
	"fmt"
	"strings"

	"teentech/internal/api"
)

// Lesson is one teaching unit as served by the platform.
type Lesson struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// File is one downloadable notebook belonging to a lesson.
type File struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// SaveFunc persists downloaded bytes under the given file name. The TUI and
// the CLI plug in different implementations; tests capture the call.
type SaveFunc func(name string, data []byte) error

// SaveName derives the on-disk name for a downloaded file. Every lesson file
// on the platform is a notebook.
func SaveName(title string) string {
	return title + ".ipynb"
}

// Service runs lesson operations against the platform API.
type Service struct {
	client *api.Client
}

// NewService builds the lessons service.
func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

// List fetches the lesson catalog in server order.
func (s *Service) List(ctx context.Context) ([]Lesson, error) {
	var out []Lesson
	if err := s.client.GetJSON(ctx, "/aulas", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Files fetches the files of one lesson in server order.
func (s *Service) Files(ctx context.Context, lessonID int64) ([]File, error) {
	var out []File
	if err := s.client.GetJSON(ctx, fmt.Sprintf("/aulas/%d/files", lessonID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Download fetches the file's bytes and hands them to save under the derived
// notebook name. List and selection state are untouched on failure; the
// caller just shows a message.
func (s *Service) Download(ctx context.Context, f File, save SaveFunc) error {
	data, err := s.client.GetBinary(ctx, fmt.Sprintf("/files/%d/download", f.ID))
	if err != nil {
		return err
	}
	return save(SaveName(f.Title), data)
}

// UploadRequest is a pending notebook submission. Exactly one of LessonID
// and NewLessonTitle chooses the parent lesson.
type UploadRequest struct {
	Title          string
	FileName       string
	Data           []byte
	LessonID       int64  // existing lesson, 0 when unset
	NewLessonTitle string // new lesson to create, "" when unset
}

// Validate enforces the submission invariants before any network call.
// Having both a lesson selection and a new-lesson title is rejected outright
// rather than silently preferring one side.
func (r UploadRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return &api.ValidationError{Field: "title", Reason: "a file title is required"}
	}
	if r.FileName == "" || len(r.Data) == 0 {
		return &api.ValidationError{Field: "file", Reason: "attach a notebook file before submitting"}
	}
	hasLesson := r.LessonID != 0
	hasNewTitle := strings.TrimSpace(r.NewLessonTitle) != ""
	if hasLesson && hasNewTitle {
		return &api.ValidationError{Field: "newLessonTitle", Reason: "clear the new lesson title or the lesson selection, not both"}
	}
	if !hasLesson && !hasNewTitle {
		return &api.ValidationError{Field: "lesson", Reason: "pick a lesson or name a new one"}
	}
	return nil
}

// Upload validates and submits the notebook as multipart form data.
func (s *Service) Upload(ctx context.Context, r UploadRequest) error {
	if err := r.Validate(); err != nil {
		return err
	}

	parts := map[string]api.Part{
		"title":     api.FieldPart(r.Title),
		"ipynbFile": api.FilePart(r.FileName, r.Data),
	}
	if r.LessonID != 0 {
		parts["lessonId"] = api.FieldPart(fmt.Sprintf("%d", r.LessonID))
	} else {
		parts["newLessonTitle"] = api.FieldPart(r.NewLessonTitle)
	}

	return s.client.PostMultipart(ctx, "/upload", parts, nil)
}
