// Package auth implements the registration and login use cases.
// Login stores the issued token before attempting to decode it, so a decode
// failure never costs the user a credential that might still be valid.
package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"teentech/internal/api"
	"teentech/internal/logging"
)

// Role is the account type embedded in the token's role claim.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

// Destination is the page a successful login routes to.
type Destination string

const (
	DestinationLessons Destination = "/aulas"  // students browse lessons
	DestinationUpload  Destination = "/upload" // teachers upload files
)

// Flow-specific failure conditions. Transport failures come through as
// *api.Error; these cover the cases where the request nominally succeeded.
var (
	// ErrMissingToken: the login response carried no token at all.
	ErrMissingToken = errors.New("login succeeded but the server issued no token")
	// ErrInvalidRole: the token decoded fine but its role claim is neither
	// student nor teacher. No navigation happens.
	ErrInvalidRole = errors.New("account role is not recognized")
	// ErrEmailTaken: registration rejected because the email already exists.
	// Surfaced with its own message instead of the server's generic one.
	ErrEmailTaken = errors.New("email already registered")
)

// DecodeError wraps a token that could not be decoded or lacked a usable
// role claim. The token remains in the session store; the caller decides on
// cleanup.
type DecodeError struct {
	cause error
}

func (e *DecodeError) Error() string {
	return "could not read the issued credential"
}

func (e *DecodeError) Unwrap() error { return e.cause }

// IsDecodeError reports whether err is a token decode failure.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

// User is the registration payload. Password is sent once and never retained.
type User struct {
	Name               string `json:"name"`
	Email              string `json:"email"`
	Password           string `json:"password"`
	Role               Role   `json:"role"`
	RegistrationNumber string `json:"registrationNumber,omitempty"`
}

var registrationNumberRe = regexp.MustCompile(`^\d{10}$`)

// Validate checks the payload before any network call.
func (u User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return &api.ValidationError{Field: "name", Reason: "name is required"}
	}
	if !strings.Contains(u.Email, "@") {
		return &api.ValidationError{Field: "email", Reason: "a valid email is required"}
	}
	if len(u.Password) < 6 {
		return &api.ValidationError{Field: "password", Reason: "password must be at least 6 characters"}
	}
	switch u.Role {
	case RoleStudent, RoleTeacher:
	default:
		return &api.ValidationError{Field: "role", Reason: "choose student or teacher"}
	}
	if u.Role == RoleTeacher && !registrationNumberRe.MatchString(u.RegistrationNumber) {
		return &api.ValidationError{Field: "registrationNumber", Reason: "registration number must be exactly 10 digits"}
	}
	return nil
}

// SessionStore is what the auth flow needs from the session layer.
type SessionStore interface {
	Get() string
	Set(token string) error
	Clear() error
}

// Service runs the auth flows against the platform API.
type Service struct {
	client *api.Client
	store  SessionStore
	log    *logging.Logger
}

// NewService builds the auth service.
func NewService(client *api.Client, store SessionStore) *Service {
	return &Service{
		client: client,
		store:  store,
		log:    logging.Get(logging.CategoryAuth),
	}
}

// Register creates an account. The registrationNumber field goes on the wire
// only for teachers.
func (s *Service) Register(ctx context.Context, u User) error {
	if err := u.Validate(); err != nil {
		return err
	}
	if u.Role != RoleTeacher {
		u.RegistrationNumber = ""
	}

	if err := s.client.PostJSON(ctx, "/register", u, nil); err != nil {
		if apiErr, ok := api.AsError(err); ok && isDuplicateEmail(apiErr) {
			return fmt.Errorf("%w", ErrEmailTaken)
		}
		return err
	}

	s.log.Info("registered %s account for %s", u.Role, u.Email)
	return nil
}

// isDuplicateEmail recognizes the backend's duplicate-email rejection: a 400
// whose message mentions the email field.
func isDuplicateEmail(e *api.Error) bool {
	if e.Kind != api.KindServerRejected || e.Status != 400 {
		return false
	}
	return strings.Contains(strings.ToLower(e.Message), "email")
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login posts credentials and returns the destination for the account role.
// The token is persisted before decoding is attempted; a decode failure
// surfaces as *DecodeError with the token left in place.
func (s *Service) Login(ctx context.Context, email, password string) (Destination, error) {
	var resp loginResponse
	if err := s.client.PostJSON(ctx, "/login", loginRequest{Email: email, Password: password}, &resp); err != nil {
		return "", err
	}

	if resp.Token == "" {
		return "", ErrMissingToken
	}

	// Store first. A broken decode must not erase a credential the server
	// considers valid.
	if err := s.store.Set(resp.Token); err != nil {
		return "", fmt.Errorf("storing session token: %w", err)
	}

	role, err := DecodeRole(resp.Token)
	if err != nil {
		return "", err
	}

	dest, err := DestinationFor(role)
	if err != nil {
		return "", err
	}

	s.log.Info("login for %s resolved role %s", email, role)
	return dest, nil
}

// Logout discards the current session.
func (s *Service) Logout() error {
	return s.store.Clear()
}

// CurrentRole decodes the role claim from the stored token. Returns
// ErrMissingToken when no session exists.
func (s *Service) CurrentRole() (Role, error) {
	token := s.store.Get()
	if token == "" {
		return "", ErrMissingToken
	}
	return DecodeRole(token)
}

// DecodeRole extracts the role claim from a raw token. The signature is not
// verified; the client only routes on the claim, the server enforces it.
func DecodeRole(token string) (Role, error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return "", &DecodeError{cause: err}
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", &DecodeError{cause: errors.New("unexpected claims shape")}
	}

	roleClaim, ok := claims["role"].(string)
	if !ok || roleClaim == "" {
		return "", &DecodeError{cause: errors.New("token has no role claim")}
	}

	return Role(roleClaim), nil
}

// DestinationFor maps a role to its post-login page.
func DestinationFor(role Role) (Destination, error) {
	switch role {
	case RoleTeacher:
		return DestinationUpload, nil
	case RoleStudent:
		return DestinationLessons, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
}
