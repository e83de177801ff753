// Package resume scores uploaded resumes with an LLM.
package resume

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/goccy/go-json"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"

	"github.com/campuscatalyst/portal/internal/fallback"
	"github.com/campuscatalyst/portal/pkg/schema"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

const maxResumeChars = 20000

var (
	// ErrEmptyResume is returned for uploads without readable text.
	ErrEmptyResume = errors.New("resume is empty")
	// ErrUnsupportedFormat is returned for uploads that are not plain text,
	// such as PDF or Word files.
	ErrUnsupportedFormat = errors.New("resume must be a plain text file")
	// ErrBadModelOutput is returned when the model does not answer with the report JSON.
	ErrBadModelOutput = errors.New("model returned an unreadable report")
)

const analysisPrompt = `
You are an applicant tracking system reviewing a student's resume for campus placements.

### INSTRUCTIONS:
1. Score the resume from 0 to 100 for ATS compatibility, formatting, content quality and keyword match.
2. Summarize the resume in one or two sentences.
3. List concrete strengths and concrete suggestions for improvement.
4. List the technical keywords the resume contains.
5. Answer with valid JSON only. Do not wrap the output in markdown code blocks.

### OUTPUT SCHEMA:
{"score": 0, "summary": "", "strengths": [], "suggestions": [], "keywords": []}

### RESUME (%s):
%s
`

// Analyzer turns resume text into a ResumeReport. Without a model it answers
// with the sample report.
type Analyzer struct {
	model llms.Model
}

func New(model llms.Model) *Analyzer {
	return &Analyzer{model: model}
}

// NewGemini builds an analyzer backed by Google's Gemini API.
func NewGemini(ctx context.Context, apiKey, model string) (*Analyzer, error) {
	if model == "" {
		model = DefaultModel
	}
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return New(llm), nil
}

// Enabled reports whether a model is configured.
func (a *Analyzer) Enabled() bool {
	return a != nil && a.model != nil
}

// Analyze scores the resume in content.
func (a *Analyzer) Analyze(ctx context.Context, filename string, content []byte) (schema.ResumeReport, error) {
	text := strings.TrimSpace(strings.ToValidUTF8(string(content), ""))
	if text == "" {
		return schema.ResumeReport{}, ErrEmptyResume
	}
	if !IsText(content) {
		return schema.ResumeReport{}, fmt.Errorf("%w: got %s", ErrUnsupportedFormat, mimetype.Detect(content).String())
	}
	if !a.Enabled() {
		return fallback.ResumeReport(), nil
	}
	if utf8.RuneCountInString(text) > maxResumeChars {
		text = string([]rune(text)[:maxResumeChars])
	}

	prompt := fmt.Sprintf(analysisPrompt, filename, text)
	resp, err := llms.GenerateFromSinglePrompt(ctx, a.model, prompt, llms.WithTemperature(0.2))
	if err != nil {
		return schema.ResumeReport{}, fmt.Errorf("analyze resume: %w", err)
	}
	return parseReport(resp)
}

// IsText reports whether content sniffs as text/plain or a text format derived from it.
func IsText(content []byte) bool {
	for m := mimetype.Detect(content); m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

func parseReport(raw string) (schema.ResumeReport, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var report schema.ResumeReport
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &report); err != nil {
		return schema.ResumeReport{}, fmt.Errorf("%w: %v", ErrBadModelOutput, err)
	}
	report.Score = min(max(report.Score, 0), 100)
	if report.Strengths == nil {
		report.Strengths = []string{}
	}
	if report.Suggestions == nil {
		report.Suggestions = []string{}
	}
	if report.Keywords == nil {
		report.Keywords = []string{}
	}
	return report, nil
}
