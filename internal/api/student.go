package api

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"

	"github.com/campuscatalyst/portal/internal/resume"
	"github.com/campuscatalyst/portal/pkg/engine"
	"github.com/campuscatalyst/portal/pkg/schema"
)

const (
	profileCollection = "profile"
	profileID         = "profile"

	maxResumeBytes = 5 << 20
	resumeField    = "resume"
)

// Apply files an application for the job at :id. The student sees it under
// their applications, the job's recruiter under their applicants.
func (h *Handler) Apply(c *gin.Context) {
	student := accountID(c)
	job, err := h.Store.Get(engine.SharedScope, string(schema.KindJob), c.Param("id"))
	if err != nil {
		storeError(c, err, "job")
		return
	}
	if stringField(job, "status") == schema.JobClosed {
		fail(c, http.StatusConflict, "This job is no longer accepting applications")
		return
	}

	mine, err := h.Store.List(student, string(schema.KindApplication))
	if err != nil {
		storeError(c, err, "application")
		return
	}
	for _, app := range mine {
		if stringField(app, "jobId") == engine.RecordID(job) {
			fail(c, http.StatusConflict, "You have already applied to this job")
			return
		}
	}

	profile, _ := h.loadProfile(student)
	applied := h.now().Format(dateLayout)

	app, err := h.Store.Insert(student, string(schema.KindApplication), engine.Record{
		"jobId":       engine.RecordID(job),
		"jobTitle":    stringField(job, "title"),
		"company":     stringField(job, "company"),
		"status":      schema.ApplicationPending,
		"appliedDate": applied,
	})
	if err != nil {
		storeError(c, err, "application")
		return
	}

	if _, err := h.Store.Insert(engine.SharedScope, string(schema.KindApplicant), engine.Record{
		"name":          profile.Name,
		"jobTitle":      stringField(job, "title"),
		"company":       stringField(job, "company"),
		"status":        schema.ApplicationUnderReview,
		"appliedDate":   applied,
		"jobId":         engine.RecordID(job),
		"studentId":     student,
		"applicationId": engine.RecordID(app),
		"recruiterId":   stringField(job, "postedBy"),
	}); err != nil {
		if derr := h.Store.Delete(student, string(schema.KindApplication), engine.RecordID(app)); derr != nil {
			log.Printf("apply: drop application %s: %v", engine.RecordID(app), derr)
		}
		storeError(c, err, "applicant")
		return
	}

	if _, err := h.Store.Increment(engine.SharedScope, string(schema.KindJob), engine.RecordID(job), "applications", 1); err != nil {
		log.Printf("apply: count application on %s: %v", engine.RecordID(job), err)
	}
	c.JSON(http.StatusCreated, app)
}

func (h *Handler) loadProfile(account string) (schema.StudentProfile, error) {
	var p schema.StudentProfile
	rec, err := h.Store.Get(account, profileCollection, profileID)
	if err != nil {
		return p, err
	}
	err = decodeRecord(rec, &p)
	return p, err
}

func (h *Handler) GetProfile(c *gin.Context) {
	p, err := h.loadProfile(accountID(c))
	if err != nil && !errors.Is(err, engine.ErrRecordNotFound) {
		storeError(c, err, "profile")
		return
	}
	if p.Skills == nil {
		p.Skills = []string{}
	}
	c.JSON(http.StatusOK, p)
}

// SaveProfile replaces the profile and copies the register fields into the
// placement office's student record.
func (h *Handler) SaveProfile(c *gin.Context) {
	var p schema.StudentProfile
	if err := c.ShouldBindJSON(&p); err != nil {
		fail(c, http.StatusBadRequest, "invalid profile")
		return
	}
	if p.Skills == nil {
		p.Skills = []string{}
	}
	rec, err := encodeRecord(p)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	rec[engine.IDField] = profileID

	account := accountID(c)
	if _, err := h.Store.Put(account, profileCollection, rec); err != nil {
		storeError(c, err, "profile")
		return
	}
	if row, _, err := h.Store.Find(string(schema.KindStudent), "accountId", account); err == nil {
		h.Store.Patch(engine.SharedScope, string(schema.KindStudent), engine.RecordID(row), engine.Record{
			"name":       p.Name,
			"rollNo":     p.RollNo,
			"department": p.Department,
			"cgpa":       p.CGPA,
		})
	}
	c.JSON(http.StatusOK, p)
}

// AnalyzeResume scores the uploaded resume. Without a configured model the
// sample report is returned.
func (h *Handler) AnalyzeResume(c *gin.Context) {
	file, header, err := c.Request.FormFile(resumeField)
	if err != nil {
		fail(c, http.StatusBadRequest, "No resume uploaded")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxResumeBytes+1))
	if err != nil {
		fail(c, http.StatusBadRequest, "Could not read resume")
		return
	}
	if len(content) > maxResumeBytes {
		fail(c, http.StatusRequestEntityTooLarge, "Resume must be smaller than 5 MB")
		return
	}

	report, err := h.Analyzer.Analyze(c.Request.Context(), header.Filename, content)
	switch {
	case errors.Is(err, resume.ErrEmptyResume):
		fail(c, http.StatusBadRequest, "Resume has no readable text")
	case errors.Is(err, resume.ErrUnsupportedFormat):
		fail(c, http.StatusUnsupportedMediaType, "Upload the resume as a plain text file")
	case err != nil:
		fail(c, http.StatusBadGateway, "Resume analysis failed")
	default:
		c.JSON(http.StatusOK, report)
	}
}

// encodeRecord turns a typed value into a store record.
func encodeRecord(v any) (engine.Record, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var rec engine.Record
	err = json.Unmarshal(data, &rec)
	return rec, err
}

func decodeRecord(rec engine.Record, v any) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
