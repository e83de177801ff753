package sdk

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"

	"github.com/campuscatalyst/portal/pkg/schema"
)

// Multipart fields of the upload endpoints.
const (
	ResumeField = "resume"
	LogoField   = "logo"
)

// AnalyzeResume uploads a resume for scoring. On failure it returns fallback
// together with the error so the caller can still show a report.
func (c *Client) AnalyzeResume(ctx context.Context, filename string, r io.Reader, fallback schema.ResumeReport) (schema.ResumeReport, error) {
	var out schema.ResumeReport
	if err := c.upload(ctx, "/student/resume/analyze", ResumeField, filename, r, &out); err != nil {
		fmt.Fprintf(os.Stderr, "[portal sdk] resume analysis unavailable, using sample report: %v\n", err)
		return fallback, err
	}
	return out, nil
}

// upload posts the content of r as the single file of a multipart form.
func (c *Client) upload(ctx context.Context, path, field, filename string, r io.Reader, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, r); err != nil {
		return fmt.Errorf("read %s: %w", field, err)
	}
	if err := mw.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.send(req, out)
}
