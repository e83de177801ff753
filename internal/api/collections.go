package api

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campuscatalyst/portal/pkg/engine"
	"github.com/campuscatalyst/portal/pkg/schema"
)

// collection describes how one record collection is exposed under a role's group.
type collection struct {
	name  string
	label string
	// private collections live in the caller's own scope.
	private bool
	// owner names the field holding the account id a record belongs to.
	// Callers only see and change records they own.
	owner    string
	readOnly bool
	defaults func(now time.Time) engine.Record
	// created may amend a freshly inserted record and returns its final form.
	created func(h *Handler, c *gin.Context, rec engine.Record) engine.Record
	updated func(h *Handler, before, after engine.Record)
}

const dateLayout = "02 Jan 2006"

var (
	jobsBoard = collection{
		name:     string(schema.KindJob),
		label:    "job",
		readOnly: true,
	}

	studentApplications = collection{
		name:    string(schema.KindApplication),
		label:   "application",
		private: true,
		defaults: func(now time.Time) engine.Record {
			return engine.Record{"status": schema.ApplicationPending, "appliedDate": now.Format(dateLayout)}
		},
	}

	recruiterJobs = collection{
		name:     string(schema.KindJob),
		label:    "job",
		owner:    "postedBy",
		defaults: jobDefaults,
		created:  (*Handler).jobPosted,
	}

	applicants = collection{
		name:  string(schema.KindApplicant),
		label: "applicant",
		owner: "recruiterId",
		defaults: func(now time.Time) engine.Record {
			return engine.Record{"status": schema.ApplicationUnderReview, "appliedDate": now.Format(dateLayout)}
		},
		updated: (*Handler).applicantChanged,
	}

	students = collection{
		name:  string(schema.KindStudent),
		label: "student",
		defaults: func(time.Time) engine.Record {
			return engine.Record{"status": schema.StudentNotPlaced, "company": "-"}
		},
	}

	recruiters = collection{
		name:  string(schema.KindRecruiter),
		label: "recruiter",
		defaults: func(time.Time) engine.Record {
			return engine.Record{"status": schema.RecruiterPending, "jobsPosted": 0}
		},
	}

	allJobs = collection{
		name:     string(schema.KindJob),
		label:    "job",
		defaults: jobDefaults,
		created:  (*Handler).jobPosted,
	}

	drives = collection{
		name:  string(schema.KindDrive),
		label: "drive",
		defaults: func(time.Time) engine.Record {
			return engine.Record{"status": schema.DriveScheduled, "registrations": 0}
		},
		created: func(h *Handler, _ *gin.Context, rec engine.Record) engine.Record {
			h.logActivity("Placement Drive Scheduled", stringField(rec, "name")+" on "+stringField(rec, "date"))
			return rec
		},
	}

	departments = collection{
		name:  string(schema.KindDepartment),
		label: "department",
	}

	topRecruiters = collection{
		name:  string(schema.KindTopRecruiter),
		label: "recruiter",
	}
)

func jobDefaults(now time.Time) engine.Record {
	return engine.Record{
		"status":       schema.JobOpen,
		"applications": 0,
		"posted":       now.Format(dateLayout),
	}
}

func (h *Handler) scopeOf(c *gin.Context, col collection) string {
	if col.private {
		return accountID(c)
	}
	return engine.SharedScope
}

// mountCollection registers list, create, update and delete routes for col under path.
func (h *Handler) mountCollection(g *gin.RouterGroup, path string, col collection) {
	g.GET(path, func(c *gin.Context) { h.listRecords(c, col) })
	if col.readOnly {
		return
	}
	g.POST(path, func(c *gin.Context) { h.createRecord(c, col) })
	g.PUT(path+"/:id", func(c *gin.Context) { h.updateRecord(c, col) })
	g.DELETE(path+"/:id", func(c *gin.Context) { h.deleteRecord(c, col) })
}

func (h *Handler) listRecords(c *gin.Context, col collection) {
	items, err := h.Store.List(h.scopeOf(c, col), col.name)
	if err != nil {
		storeError(c, err, col.label)
		return
	}
	out := make([]engine.Record, 0, len(items))
	for _, rec := range items {
		if col.owner == "" || stringField(rec, col.owner) == accountID(c) {
			out = append(out, rec)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) createRecord(c *gin.Context, col collection) {
	var body engine.Record
	if err := c.ShouldBindJSON(&body); err != nil || body == nil {
		fail(c, http.StatusBadRequest, "invalid "+col.label)
		return
	}
	// the server assigns identifiers
	delete(body, engine.IDField)
	if col.defaults != nil {
		for k, v := range col.defaults(h.now()) {
			if isBlank(body[k]) {
				body[k] = v
			}
		}
	}
	if col.owner != "" {
		body[col.owner] = accountID(c)
	}

	rec, err := h.Store.Insert(h.scopeOf(c, col), col.name, body)
	if err != nil {
		storeError(c, err, col.label)
		return
	}
	if col.created != nil {
		rec = col.created(h, c, rec)
	}
	c.JSON(http.StatusCreated, rec)
}

// owned returns the record at id if the caller may change it.
func (h *Handler) owned(c *gin.Context, col collection, id string) (engine.Record, error) {
	rec, err := h.Store.Get(h.scopeOf(c, col), col.name, id)
	if err != nil {
		return nil, err
	}
	if col.owner != "" && stringField(rec, col.owner) != accountID(c) {
		return nil, engine.ErrRecordNotFound
	}
	return rec, nil
}

func (h *Handler) updateRecord(c *gin.Context, col collection) {
	id := c.Param("id")
	before, err := h.owned(c, col, id)
	if err != nil {
		storeError(c, err, col.label)
		return
	}

	var body engine.Record
	if err := c.ShouldBindJSON(&body); err != nil || body == nil {
		fail(c, http.StatusBadRequest, "invalid "+col.label)
		return
	}
	if col.owner != "" {
		delete(body, col.owner)
	}

	after, err := h.Store.Patch(h.scopeOf(c, col), col.name, id, body)
	if err != nil {
		storeError(c, err, col.label)
		return
	}
	if col.updated != nil {
		col.updated(h, before, after)
	}
	c.JSON(http.StatusOK, after)
}

func (h *Handler) deleteRecord(c *gin.Context, col collection) {
	id := c.Param("id")
	if _, err := h.owned(c, col, id); err != nil {
		storeError(c, err, col.label)
		return
	}
	if err := h.Store.Delete(h.scopeOf(c, col), col.name, id); err != nil {
		storeError(c, err, col.label)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// jobPosted fills in the recruiter's company and logs the listing.
func (h *Handler) jobPosted(c *gin.Context, job engine.Record) engine.Record {
	if owner := stringField(job, "postedBy"); owner != "" {
		if rec, _, err := h.Store.Find(string(schema.KindRecruiter), "accountId", owner); err == nil {
			if stringField(job, "company") == "" {
				patched, err := h.Store.Patch(engine.SharedScope, string(schema.KindJob), engine.RecordID(job), engine.Record{
					"company": stringField(rec, "company"),
				})
				if err == nil {
					job = patched
				}
			}
			if _, err := h.Store.Increment(engine.SharedScope, string(schema.KindRecruiter), engine.RecordID(rec), "jobsPosted", 1); err != nil {
				log.Printf("count job of %s: %v", owner, err)
			}
		}
	}
	h.logActivity("Job Listing Published", stringField(job, "title")+" role by "+stringField(job, "company"))
	return job
}

// applicantChanged mirrors a recruiter's decision into the student's own records.
func (h *Handler) applicantChanged(before, after engine.Record) {
	status := stringField(after, "status")
	if status == stringField(before, "status") {
		return
	}
	student := stringField(after, "studentId")
	if student == "" {
		return
	}
	if app := stringField(after, "applicationId"); app != "" {
		_, err := h.Store.Patch(student, string(schema.KindApplication), app, engine.Record{"status": status})
		if err != nil && !errors.Is(err, engine.ErrRecordNotFound) {
			log.Printf("sync application %s: %v", app, err)
		}
	}
	if status != schema.ApplicationSelected {
		return
	}

	company := stringField(after, "company")
	if rec, _, err := h.Store.Find(string(schema.KindStudent), "accountId", student); err == nil {
		h.Store.Patch(engine.SharedScope, string(schema.KindStudent), engine.RecordID(rec), engine.Record{
			"status":  schema.StudentPlaced,
			"company": company,
		})
	}
	h.logActivity("Student Placement Confirmed", stringField(after, "name")+" placed at "+company)
}

func isBlank(v any) bool {
	switch v := v.(type) {
	case nil:
		return true
	case string:
		return v == ""
	}
	return false
}

func intField(r engine.Record, key string) int {
	switch v := r[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}
