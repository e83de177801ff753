// Package portal ties the credential store, the session gate and the API client
// together into the flows the portal pages offer: signing in and out, opening
// role-scoped views and the placement dashboard.
package portal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/campuscatalyst/portal/internal/credentials"
	"github.com/campuscatalyst/portal/internal/gate"
	"github.com/campuscatalyst/portal/internal/liststore"
	"github.com/campuscatalyst/portal/pkg/schema"
	"github.com/campuscatalyst/portal/pkg/sdk"
)

// Form validation errors. They are returned before any request is sent.
var (
	ErrMissingCredentials = errors.New("all fields are required")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrRoleRequired       = errors.New("please select a role")
)

// ErrUnauthorized is wrapped by every RedirectError.
var ErrUnauthorized = errors.New("not authorized")

// RedirectError is returned when the gate turns a navigation away.
type RedirectError struct {
	To string
}

func (e *RedirectError) Error() string {
	return fmt.Sprintf("not authorized, redirecting to %s", e.To)
}

func (e *RedirectError) Unwrap() error { return ErrUnauthorized }

// RegisterForm is what the registration page collects.
type RegisterForm struct {
	Name     string
	Email    string
	Password string
	Confirm  string
	Role     string
	Company  string
}

// Session is one signed-in (or signed-out) portal client.
type Session struct {
	creds    *credentials.Store
	gate     *gate.Gate
	client   *sdk.Client
	notifier liststore.Notifier
}

// New returns a session talking to baseURL with the token kept in creds.
// notifier receives fallback and rollback notices and may be nil.
func New(baseURL string, creds *credentials.Store, notifier liststore.Notifier, opts ...sdk.Option) *Session {
	opts = append(opts, sdk.WithTokenSource(creds))
	return &Session{
		creds:    creds,
		gate:     gate.New(creds),
		client:   sdk.NewClient(baseURL, opts...),
		notifier: notifier,
	}
}

func (s *Session) Client() *sdk.Client { return s.client }

// Current returns the stored principal.
func (s *Session) Current() (schema.Principal, bool, error) {
	return s.creds.Load()
}

// Navigate asks the gate whether path may be opened now.
func (s *Session) Navigate(path string) gate.Decision {
	return s.gate.Navigate(path)
}

// Login signs in and returns the role's home route. With remember the token
// survives a restart; otherwise it lasts for the current session only.
func (s *Session) Login(ctx context.Context, email, password string, remember bool) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", ErrMissingCredentials
	}
	p, err := s.client.Login(ctx, email, password)
	if err != nil {
		return "", err
	}
	if err := s.creds.Save(p, remember); err != nil {
		return "", err
	}
	return gate.HomeFor(p.Role), nil
}

// Register creates an account, signs it in durably and returns its home route.
func (s *Session) Register(ctx context.Context, f RegisterForm) (string, error) {
	if strings.TrimSpace(f.Name) == "" || strings.TrimSpace(f.Email) == "" || f.Password == "" {
		return "", ErrMissingCredentials
	}
	if f.Password != f.Confirm {
		return "", ErrPasswordMismatch
	}
	role, err := schema.ParseRole(f.Role)
	if err != nil {
		return "", ErrRoleRequired
	}

	p, err := s.client.Register(ctx, sdk.RegisterRequest{
		Name:     strings.TrimSpace(f.Name),
		Email:    strings.TrimSpace(f.Email),
		Password: f.Password,
		Role:     role,
		Company:  strings.TrimSpace(f.Company),
	})
	if err != nil {
		return "", err
	}
	if err := s.creds.Save(p, true); err != nil {
		return "", err
	}
	return gate.HomeFor(p.Role), nil
}

// Logout forgets the principal. Revoking the token on the server is best effort.
func (s *Session) Logout(ctx context.Context) error {
	if _, ok, _ := s.creds.Load(); ok {
		if err := s.client.Logout(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "[portal] server logout failed: %s\n", sdk.Describe(err))
		}
	}
	return s.creds.Clear()
}

// authorize fails with a RedirectError unless the stored principal has role.
func (s *Session) authorize(role schema.Role) error {
	if d := s.gate.Authorize(role); !d.Allowed {
		return &RedirectError{To: d.Redirect}
	}
	return nil
}

func (s *Session) notify(n liststore.Notice) {
	if s.notifier != nil {
		s.notifier.Notify(n)
	}
}
