package api

import (
	"fmt"
	"log"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campuscatalyst/portal/pkg/engine"
	"github.com/campuscatalyst/portal/pkg/schema"
)

const (
	activityCollection = "_activity"
	activityFeedSize   = 10
)

func (h *Handler) ApproveRecruiter(c *gin.Context) {
	rec, err := h.Store.Patch(engine.SharedScope, string(schema.KindRecruiter), c.Param("id"), engine.Record{
		"status": schema.RecruiterApproved,
	})
	if err != nil {
		storeError(c, err, "recruiter")
		return
	}
	h.logActivity("Recruiter Approved", stringField(rec, "company")+" can now post jobs")
	c.JSON(http.StatusOK, rec)
}

// DashboardStats computes the dashboard tiles from the stored collections.
func (h *Handler) DashboardStats(c *gin.Context) {
	list := func(kind schema.Kind) []engine.Record {
		items, err := h.Store.List(engine.SharedScope, string(kind))
		if err != nil {
			log.Printf("dashboard: list %s: %v", kind, err)
		}
		return items
	}
	count := func(items []engine.Record, field, value string) int {
		n := 0
		for _, r := range items {
			if stringField(r, field) == value {
				n++
			}
		}
		return n
	}

	studentRows := list(schema.KindStudent)
	placed := count(studentRows, "status", schema.StudentPlaced)
	rate := 0.0
	if len(studentRows) > 0 {
		rate = float64(placed) * 100 / float64(len(studentRows))
	}

	c.JSON(http.StatusOK, []schema.DashboardStat{
		{Label: "Total Students", Value: formatCount(len(studentRows))},
		{Label: "Active Recruiters", Value: formatCount(count(list(schema.KindRecruiter), "status", schema.RecruiterApproved))},
		{Label: "Job Listings", Value: formatCount(count(list(schema.KindJob), "status", schema.JobOpen))},
		{Label: "Placements", Value: formatCount(placed)},
		{Label: "Placement Rate", Value: fmt.Sprintf("%.1f%%", rate)},
		{Label: "Average Package", Value: averagePackage(list(schema.KindDepartment))},
		{Label: "Ongoing Drives", Value: formatCount(count(list(schema.KindDrive), "status", schema.DriveOngoing))},
	})
}

// RecentActivity returns the newest entries of the activity log.
func (h *Handler) RecentActivity(c *gin.Context) {
	items, err := h.Store.List(engine.SharedScope, activityCollection)
	if err != nil {
		storeError(c, err, "activity")
		return
	}
	slices.SortStableFunc(items, func(a, b engine.Record) int {
		if c := activityTime(b).Compare(activityTime(a)); c != 0 {
			return c
		}
		return intField(b, "seq") - intField(a, "seq")
	})

	now := h.now()
	out := make([]schema.Activity, 0, activityFeedSize)
	for _, r := range items[:min(len(items), activityFeedSize)] {
		out = append(out, schema.Activity{
			Title:       stringField(r, "title"),
			Description: stringField(r, "description"),
			Time:        relativeTime(activityTime(r), now),
		})
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) logActivity(title, description string) {
	_, err := h.Store.Insert(engine.SharedScope, activityCollection, engine.Record{
		"title":       title,
		"description": description,
		"at":          h.now().UTC().Format(time.RFC3339Nano),
		"seq":         h.activitySeq.Add(1),
	})
	if err != nil {
		log.Printf("activity %q: %v", title, err)
	}
}

// activityTime parses the "at" stamp; entries logged in the same instant are
// ordered by their "seq" counter.
func activityTime(r engine.Record) time.Time {
	at, _ := time.Parse(time.RFC3339Nano, stringField(r, "at"))
	return at
}

func relativeTime(then, now time.Time) string {
	d := now.Sub(then)
	plural := func(n int, unit string) string {
		if n == 1 {
			return "1 " + unit + " ago"
		}
		return strconv.Itoa(n) + " " + unit + "s ago"
	}
	switch {
	case then.IsZero():
		return ""
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d/time.Minute), "minute")
	case d < 24*time.Hour:
		return plural(int(d/time.Hour), "hour")
	default:
		return plural(int(d/(24*time.Hour)), "day")
	}
}

// formatCount renders n with thousands separators.
func formatCount(n int) string {
	s := strconv.Itoa(n)
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	return s
}

// averagePackage weights each department's "₹x LPA" package by its placements.
func averagePackage(departments []engine.Record) string {
	var sum, weight float64
	for _, d := range departments {
		lpa, ok := parseLPA(stringField(d, "avgPackage"))
		placed := float64(intField(d, "placed"))
		if !ok || placed <= 0 {
			continue
		}
		sum += lpa * placed
		weight += placed
	}
	if weight == 0 {
		return "-"
	}
	return fmt.Sprintf("₹%.1f LPA", sum/weight)
}

func parseLPA(s string) (float64, bool) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "₹"))
	s = strings.TrimSpace(strings.TrimSuffix(s, "LPA"))
	v, err := strconv.ParseFloat(s, 64)
	return v, err == nil
}
