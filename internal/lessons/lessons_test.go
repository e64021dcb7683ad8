package lessons

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"teentech/internal/api"
)

type fakeStore struct{ token string }

func (f *fakeStore) Get() string  { return f.token }
func (f *fakeStore) Clear() error { f.token = ""; return nil }

func newService(t *testing.T, handler http.HandlerFunc) *Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewService(api.New(srv.URL, &fakeStore{token: "tok"}))
}

func TestListPreservesServerOrder(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/aulas" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`[{"id":3,"title":"Loops"},{"id":1,"title":"Intro"},{"id":2,"title":"Lists"}]`))
	})

	got, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 3 || got[0].Title != "Loops" || got[2].ID != 2 {
		t.Fatalf("order not preserved: %+v", got)
	}
}

func TestFilesScopedToLesson(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/aulas/5/files" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`[{"id":7,"title":"Intro"}]`))
	})

	got, err := svc.Files(context.Background(), 5)
	if err != nil {
		t.Fatalf("Files failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != 7 {
		t.Fatalf("unexpected files: %+v", got)
	}
}

func TestDownloadSavesExactBytesUnderDerivedName(t *testing.T) {
	payload := []byte(`{"cells":[{"source":"print(1)"}]}`)
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/files/7/download" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(payload)
	})

	var savedName string
	var savedData []byte
	save := func(name string, data []byte) error {
		savedName = name
		savedData = data
		return nil
	}

	if err := svc.Download(context.Background(), File{ID: 7, Title: "Intro"}, save); err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	if savedName != "Intro.ipynb" {
		t.Fatalf("expected Intro.ipynb, got %q", savedName)
	}
	if string(savedData) != string(payload) {
		t.Fatalf("saved bytes differ from endpoint bytes")
	}
}

func TestDownloadFailureDoesNotSave(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	called := false
	err := svc.Download(context.Background(), File{ID: 7, Title: "Intro"}, func(string, []byte) error {
		called = true
		return nil
	})
	if err == nil {
		t.Fatalf("expected download error")
	}
	if called {
		t.Fatalf("save must not run on a failed fetch")
	}
}

func TestUploadRequestValidate(t *testing.T) {
	valid := UploadRequest{
		Title:    "Intro",
		FileName: "intro.ipynb",
		Data:     []byte("{}"),
		LessonID: 2,
	}

	cases := []struct {
		name      string
		mutate    func(*UploadRequest)
		wantField string
	}{
		{"existing lesson ok", func(r *UploadRequest) {}, ""},
		{"new lesson ok", func(r *UploadRequest) { r.LessonID = 0; r.NewLessonTitle = "New" }, ""},
		{"no title", func(r *UploadRequest) { r.Title = " " }, "title"},
		{"no file", func(r *UploadRequest) { r.FileName = ""; r.Data = nil }, "file"},
		{"empty file", func(r *UploadRequest) { r.Data = nil }, "file"},
		{"both parents", func(r *UploadRequest) { r.NewLessonTitle = "New" }, "newLessonTitle"},
		{"no parent", func(r *UploadRequest) { r.LessonID = 0 }, "lesson"},
	}

	for _, tc := range cases {
		r := valid
		tc.mutate(&r)
		err := r.Validate()
		if tc.wantField == "" {
			if err != nil {
				t.Fatalf("%s: unexpected error %v", tc.name, err)
			}
			continue
		}
		v, ok := api.IsValidation(err)
		if !ok || v.Field != tc.wantField {
			t.Fatalf("%s: expected validation error on %q, got %v", tc.name, tc.wantField, err)
		}
	}
}

func TestUploadInvalidIssuesNoRequest(t *testing.T) {
	requests := 0
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
	})

	err := svc.Upload(context.Background(), UploadRequest{Title: "Intro"})
	if _, ok := api.IsValidation(err); !ok {
		t.Fatalf("expected validation failure, got %v", err)
	}
	if requests != 0 {
		t.Fatalf("validation failure must not reach the network, saw %d requests", requests)
	}
}

func TestUploadSendsExactlyOneParentField(t *testing.T) {
	var form map[string][]string
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		form = r.MultipartForm.Value
		w.Write([]byte(`{}`))
	})

	req := UploadRequest{
		Title:          "Intro",
		FileName:       "intro.ipynb",
		Data:           []byte("{}"),
		NewLessonTitle: "Fresh Lesson",
	}
	if err := svc.Upload(context.Background(), req); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	if _, present := form["lessonId"]; present {
		t.Fatalf("lessonId must be absent when creating a new lesson: %v", form)
	}
	if got := form["newLessonTitle"]; len(got) != 1 || got[0] != "Fresh Lesson" {
		t.Fatalf("newLessonTitle missing: %v", form)
	}
}
