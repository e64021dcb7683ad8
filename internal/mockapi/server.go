// Package mockapi is an in-memory stand-in for the Teen Tech platform API,
// used for local development and integration tests. It issues real HS256
// tokens with a role claim so the client's decoding path runs unmodified.
package mockapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type user struct {
	Name               string `json:"name"`
	Email              string `json:"email"`
	Password           string `json:"password"`
	Role               string `json:"role"`
	RegistrationNumber string `json:"registrationNumber"`
}

type file struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	data  []byte
}

type lesson struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	files []*file
}

// Server holds the mock platform state.
type Server struct {
	mu      sync.Mutex
	secret  []byte
	users   map[string]user
	lessons []*lesson
	nextID  int64
}

// New creates an empty mock platform signing tokens with secret.
func New(secret string) *Server {
	return &Server{
		secret: []byte(secret),
		users:  make(map[string]user),
		nextID: 1,
	}
}

// Seed populates two accounts and a couple of lessons with notebook files,
// for development.
func (s *Server) Seed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users["aluno@teentech.br"] = user{
		Name: "Aluno Exemplo", Email: "aluno@teentech.br",
		Password: "aluno123", Role: "student",
	}
	s.users["prof@teentech.br"] = user{
		Name: "Prof Exemplo", Email: "prof@teentech.br",
		Password: "prof123", Role: "teacher", RegistrationNumber: "1234567890",
	}
	intro := &lesson{ID: s.takeID(), Title: "Introdução ao Python"}
	intro.files = append(intro.files,
		&file{ID: s.takeID(), Title: "Variáveis", data: []byte(`{"cells":[]}`)},
		&file{ID: s.takeID(), Title: "Condicionais", data: []byte(`{"cells":[]}`)},
	)
	loops := &lesson{ID: s.takeID(), Title: "Laços e Listas"}
	loops.files = append(loops.files,
		&file{ID: s.takeID(), Title: "Laços", data: []byte(`{"cells":[]}`)},
	)
	s.lessons = append(s.lessons, intro, loops)
}

// takeID must be called with the lock held.
func (s *Server) takeID() int64 {
	id := s.nextID
	s.nextID++
	return id
}

// Handler returns the HTTP surface of the mock platform.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /register", s.handleRegister)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("GET /aulas", s.requireAuth(s.handleLessons))
	mux.HandleFunc("GET /aulas/{id}/files", s.requireAuth(s.handleFiles))
	mux.HandleFunc("GET /files/{id}/download", s.requireAuth(s.handleDownload))
	mux.HandleFunc("POST /upload", s.requireRole("teacher", s.handleUpload))
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

var registrationNumberRe = regexp.MustCompile(`^\d{10}$`)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var u user
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if u.Name == "" || u.Email == "" || u.Password == "" {
		writeError(w, http.StatusBadRequest, "name, email and password are required")
		return
	}
	if u.Role != "student" && u.Role != "teacher" {
		writeError(w, http.StatusBadRequest, "role must be student or teacher")
		return
	}
	if u.Role == "teacher" && !registrationNumberRe.MatchString(u.RegistrationNumber) {
		writeError(w, http.StatusBadRequest, "registrationNumber must be 10 digits")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[u.Email]; exists {
		writeError(w, http.StatusBadRequest, "email already registered")
		return
	}
	s.users[u.Email] = u
	writeJSON(w, http.StatusCreated, map[string]string{"message": "registered"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	s.mu.Lock()
	u, ok := s.users[creds.Email]
	s.mu.Unlock()
	if !ok || u.Password != creds.Password {
		writeError(w, http.StatusBadRequest, "invalid email or password")
		return
	}

	claims := jwt.MapClaims{
		"role":  u.Role,
		"email": u.Email,
		"exp":   time.Now().Add(24 * time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not issue token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// requireAuth rejects requests without a valid bearer token.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := s.parseToken(r); err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or missing token")
			return
		}
		next(w, r)
	}
}

// requireRole additionally enforces the role claim.
func (s *Server) requireRole(role string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.parseToken(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or missing token")
			return
		}
		if claims["role"] != role {
			writeError(w, http.StatusForbidden, "insufficient role")
			return
		}
		next(w, r)
	}
}

func (s *Server) parseToken(r *http.Request) (jwt.MapClaims, error) {
	header := r.Header.Get("Authorization")
	raw, found := strings.CutPrefix(header, "Bearer ")
	if !found || raw == "" {
		return nil, fmt.Errorf("no bearer token")
	}
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *Server) handleLessons(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]lesson, 0, len(s.lessons))
	for _, l := range s.lessons {
		out = append(out, lesson{ID: l.ID, Title: l.Title})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid lesson id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.lessons {
		if l.ID != id {
			continue
		}
		out := make([]file, 0, len(l.files))
		for _, f := range l.files {
			out = append(out, file{ID: f.ID, Title: f.Title})
		}
		writeJSON(w, http.StatusOK, out)
		return
	}
	writeError(w, http.StatusNotFound, "lesson not found")
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid file id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.lessons {
		for _, f := range l.files {
			if f.ID == id {
				w.Header().Set("Content-Type", "application/octet-stream")
				w.Write(f.data)
				return
			}
		}
	}
	writeError(w, http.StatusNotFound, "file not found")
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart payload")
		return
	}

	title := r.FormValue("title")
	lessonID := r.FormValue("lessonId")
	newLessonTitle := r.FormValue("newLessonTitle")
	if title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if (lessonID == "") == (newLessonTitle == "") {
		writeError(w, http.StatusBadRequest, "provide exactly one of lessonId and newLessonTitle")
		return
	}

	src, _, err := r.FormFile("ipynbFile")
	if err != nil {
		writeError(w, http.StatusBadRequest, "ipynbFile is required")
		return
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read ipynbFile")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var target *lesson
	if lessonID != "" {
		id, err := strconv.ParseInt(lessonID, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid lessonId")
			return
		}
		for _, l := range s.lessons {
			if l.ID == id {
				target = l
				break
			}
		}
		if target == nil {
			writeError(w, http.StatusNotFound, "lesson not found")
			return
		}
	} else {
		target = &lesson{ID: s.takeID(), Title: newLessonTitle}
		s.lessons = append(s.lessons, target)
	}

	target.files = append(target.files, &file{ID: s.takeID(), Title: title, data: data})
	writeJSON(w, http.StatusCreated, map[string]string{"message": "uploaded"})
}
