package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"teentech/internal/api"
	"teentech/internal/auth"
)

func filledRegisterModel() RegisterModel {
	m := NewRegisterModel(nil, DefaultStyles())
	m.name.SetValue("Ana Souza")
	m.email.SetValue("ana@escola.br")
	m.password.SetValue("segredo")
	return m
}

func TestRegisterEmptyFormIssuesNoRequest(t *testing.T) {
	m := NewRegisterModel(nil, DefaultStyles())
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd != nil {
		t.Fatal("invalid form must not issue a request")
	}
	if m.errField != "name" {
		t.Fatalf("errField = %q, want name", m.errField)
	}
}

func TestRegisterTeacherNeedsTenDigitNumber(t *testing.T) {
	m := filledRegisterModel()
	m.role = auth.RoleTeacher
	m.number.SetValue("12345")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd != nil {
		t.Fatal("short registration number must not issue a request")
	}
	if m.errField != "registrationNumber" {
		t.Fatalf("errField = %q, want registrationNumber", m.errField)
	}
}

func TestRegisterValidFormStartsSubmission(t *testing.T) {
	m := filledRegisterModel()
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd == nil {
		t.Fatal("expected a submit command")
	}
	if !m.submitting {
		t.Fatal("submitting flag not set")
	}
}

func TestRegisterSuccessClearsForm(t *testing.T) {
	m := filledRegisterModel()
	m.submitting = true
	m, _ = m.Update(registerDoneMsg{})
	if m.submitting {
		t.Fatal("submitting flag not cleared")
	}
	if m.name.Value() != "" || m.email.Value() != "" || m.password.Value() != "" {
		t.Fatal("form not cleared after success")
	}
	if m.successMsg == "" {
		t.Fatal("expected a success message")
	}
}

func TestRegisterDuplicateEmailPointsAtEmailField(t *testing.T) {
	m := filledRegisterModel()
	m.submitting = true
	m, _ = m.Update(registerDoneMsg{err: auth.ErrEmailTaken})
	if m.errMsg != "email already registered" {
		t.Fatalf("errMsg = %q", m.errMsg)
	}
	if m.errField != "email" {
		t.Fatalf("errField = %q, want email", m.errField)
	}
	if m.email.Value() != "ana@escola.br" {
		t.Fatal("email lost after failure")
	}
}

func TestRegisterServerRejectionKeepsMessage(t *testing.T) {
	m := filledRegisterModel()
	m.submitting = true
	m, _ = m.Update(registerDoneMsg{err: &api.Error{Kind: api.KindServerRejected, Message: "weak password"}})
	if m.errMsg != "weak password" {
		t.Fatalf("errMsg = %q", m.errMsg)
	}
}

func TestRegisterCtrlLNavigatesToLogin(t *testing.T) {
	m := NewRegisterModel(nil, DefaultStyles())
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	if cmd == nil {
		t.Fatal("expected a navigation command")
	}
	if nav, ok := cmd().(NavigateMsg); !ok || nav.To != PageLogin {
		t.Fatalf("expected navigation to PageLogin, got %v", cmd())
	}
}
