package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// memStore is an in-memory SessionStore for tests.
type memStore struct {
	token   string
	cleared bool
}

func (m *memStore) Get() string { return m.token }
func (m *memStore) Clear() error {
	m.token = ""
	m.cleared = true
	return nil
}

func TestBearerAttachedWhenTokenPresent(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(srv.URL, &memStore{token: "tok123"})
	var out struct{}
	if err := c.GetJSON(context.Background(), "/aulas", &out); err != nil {
		t.Fatalf("GetJSON failed: %v", err)
	}
	if gotAuth != "Bearer tok123" {
		t.Fatalf("expected bearer header, got %q", gotAuth)
	}
}

func TestNoBearerWithoutToken(t *testing.T) {
	var gotAuth string
	var hadHeader bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, hadHeader = r.Header["Authorization"]
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(srv.URL, &memStore{})
	var out struct{}
	if err := c.GetJSON(context.Background(), "/aulas", &out); err != nil {
		t.Fatalf("GetJSON failed: %v", err)
	}
	if hadHeader {
		t.Fatalf("expected no Authorization header, got %q", gotAuth)
	}
}

func TestUnauthorizedClearsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	store := &memStore{token: "stale"}
	c := New(srv.URL, store)
	err := c.GetJSON(context.Background(), "/aulas", &struct{}{})

	if !IsUnauthorized(err) {
		t.Fatalf("expected unauthorized classification, got %v", err)
	}
	if !store.cleared || store.token != "" {
		t.Fatalf("expected session store cleared on 401")
	}
}

func TestServerRejectedCarriesMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"email already registered"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, &memStore{})
	err := c.PostJSON(context.Background(), "/register", map[string]string{}, nil)

	apiErr, ok := AsError(err)
	if !ok || apiErr.Kind != KindServerRejected {
		t.Fatalf("expected server rejection, got %v", err)
	}
	if apiErr.Message != "email already registered" {
		t.Fatalf("expected server message, got %q", apiErr.Message)
	}
	if apiErr.Status != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", apiErr.Status)
	}
}

func TestServerRejectedWithoutBodyGetsGenericMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, &memStore{})
	err := c.GetJSON(context.Background(), "/aulas", &struct{}{})

	apiErr, ok := AsError(err)
	if !ok || apiErr.Kind != KindServerRejected {
		t.Fatalf("expected server rejection, got %v", err)
	}
	if apiErr.Message == "" {
		t.Fatalf("expected a generic fallback message")
	}
}

func TestConnectionFailureIsNoResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing is listening now

	c := New(srv.URL, &memStore{})
	err := c.GetJSON(context.Background(), "/aulas", &struct{}{})

	if !IsNoResponse(err) {
		t.Fatalf("expected no-response classification, got %v", err)
	}
}

func TestGetBinaryReturnsExactBytes(t *testing.T) {
	payload := []byte{0x50, 0x4b, 0x03, 0x04, 0x00, 0xff}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(payload)
	}))
	defer srv.Close()

	c := New(srv.URL, &memStore{token: "t"})
	data, err := c.GetBinary(context.Background(), "/files/7/download")
	if err != nil {
		t.Fatalf("GetBinary failed: %v", err)
	}
	if string(data) != string(payload) {
		t.Fatalf("binary payload altered in transit")
	}
}

func TestPostMultipartFields(t *testing.T) {
	var gotTitle, gotFileName, gotFileBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			t.Errorf("expected multipart content type, got %q", r.Header.Get("Content-Type"))
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		gotTitle = r.FormValue("title")
		if f, hdr, err := r.FormFile("ipynbFile"); err == nil {
			gotFileName = hdr.Filename
			buf := make([]byte, hdr.Size)
			n, _ := f.Read(buf)
			gotFileBody = string(buf[:n])
			f.Close()
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(srv.URL, &memStore{token: "t"})
	parts := map[string]Part{
		"title":     FieldPart("Intro"),
		"ipynbFile": FilePart("intro.ipynb", []byte(`{"cells":[]}`)),
	}
	if err := c.PostMultipart(context.Background(), "/upload", parts, nil); err != nil {
		t.Fatalf("PostMultipart failed: %v", err)
	}

	if gotTitle != "Intro" {
		t.Fatalf("title field missing, got %q", gotTitle)
	}
	if gotFileName != "intro.ipynb" || gotFileBody != `{"cells":[]}` {
		t.Fatalf("file part mangled: name=%q body=%q", gotFileName, gotFileBody)
	}
}
