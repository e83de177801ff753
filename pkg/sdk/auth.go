package sdk

import (
	"context"
	"io"
	"net/http"

	"github.com/campuscatalyst/portal/pkg/schema"
)

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     schema.Role `json:"role"`
	// Company is only read for recruiters.
	Company string `json:"company,omitempty"`
}

// AuthResponse is what both auth endpoints answer with.
type AuthResponse struct {
	Token string      `json:"token"`
	Role  schema.Role `json:"role"`
}

func (a AuthResponse) Principal() schema.Principal {
	return schema.Principal{Token: a.Token, Role: a.Role}
}

// Login exchanges credentials for a principal.
func (c *Client) Login(ctx context.Context, email, password string) (schema.Principal, error) {
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", LoginRequest{Email: email, Password: password}, &out); err != nil {
		return schema.Principal{}, err
	}
	return out.Principal(), nil
}

// Register creates an account and returns its principal.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (schema.Principal, error) {
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, &out); err != nil {
		return schema.Principal{}, err
	}
	return out.Principal(), nil
}

// Logout revokes the current token on the server.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// Profile returns the signed-in student's profile.
func (c *Client) Profile(ctx context.Context) (schema.StudentProfile, error) {
	var out schema.StudentProfile
	err := c.do(ctx, http.MethodGet, "/student/profile", nil, &out)
	return out, err
}

// SaveProfile replaces the signed-in student's profile.
func (c *Client) SaveProfile(ctx context.Context, p schema.StudentProfile) (schema.StudentProfile, error) {
	var out schema.StudentProfile
	err := c.do(ctx, http.MethodPut, "/student/profile", p, &out)
	return out, err
}

// RecruiterProfile returns the signed-in recruiter's profile.
func (c *Client) RecruiterProfile(ctx context.Context) (schema.RecruiterProfile, error) {
	var out schema.RecruiterProfile
	err := c.do(ctx, http.MethodGet, "/recruiter/profile", nil, &out)
	return out, err
}

// SaveRecruiterProfile stores the company and recruiter details. The logo is
// kept as it is.
func (c *Client) SaveRecruiterProfile(ctx context.Context, p schema.RecruiterProfile) (schema.RecruiterProfile, error) {
	in := struct {
		CompanyInfo   schema.CompanyInfo   `json:"companyInfo"`
		RecruiterInfo schema.RecruiterInfo `json:"recruiterInfo"`
	}{p.CompanyInfo, p.RecruiterInfo}
	var out schema.RecruiterProfile
	err := c.do(ctx, http.MethodPost, "/recruiter/profile", in, &out)
	return out, err
}

// UploadLogo replaces the company logo with the image read from r.
func (c *Client) UploadLogo(ctx context.Context, filename string, r io.Reader) (schema.RecruiterProfile, error) {
	var out schema.RecruiterProfile
	err := c.upload(ctx, "/recruiter/profile/logo", LogoField, filename, r, &out)
	return out, err
}

// DeleteRecruiterProfile removes the recruiter's profile and logo.
func (c *Client) DeleteRecruiterProfile(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/recruiter/profile", nil, nil)
}
