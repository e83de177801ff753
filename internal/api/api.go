// Package api is the HTTP API of the portal daemon.
package api

import (
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/campuscatalyst/portal/internal/ratelimit"
	"github.com/campuscatalyst/portal/internal/resume"
	"github.com/campuscatalyst/portal/pkg/engine"
)

// Handler serves every API route from one store.
type Handler struct {
	Store    engine.Store
	Limiter  ratelimit.Limiter
	Analyzer *resume.Analyzer
	TokenTTL time.Duration
	// HashCost is the bcrypt cost of new password hashes.
	HashCost int
	Now      func() time.Time

	activitySeq atomic.Int64
}

// NewHandler fills unset fields with working defaults.
func NewHandler(store engine.Store) *Handler {
	return &Handler{
		Store:    store,
		Limiter:  ratelimit.NewMemoryLimiter(10, time.Minute),
		Analyzer: resume.New(nil),
		TokenTTL: 24 * time.Hour,
		HashCost: bcrypt.DefaultCost,
		Now:      time.Now,
	}
}

func (h *Handler) now() time.Time {
	if h.Now == nil {
		return time.Now()
	}
	return h.Now()
}

// NewRouter mounts the API under /api with CORS for origins ("*" when empty).
func NewRouter(h *Handler, origins []string) *gin.Engine {
	r := gin.Default()

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: len(origins) > 0,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
	}
	r.Use(cors.New(corsCfg))

	h.Mount(r.Group("/api"))

	r.NoRoute(func(c *gin.Context) {
		fail(c, http.StatusNotFound, "API route not found")
	})
	return r
}

// Mount registers every route on g.
func (h *Handler) Mount(g *gin.RouterGroup) {
	g.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	auth := g.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Authenticate, h.Logout)
	}

	student := g.Group("/student", h.Authenticate, RequireRole("student"))
	{
		h.mountCollection(student, "/jobs", jobsBoard)
		student.POST("/jobs/:id/apply", h.Apply)
		h.mountCollection(student, "/applications", studentApplications)
		student.GET("/profile", h.GetProfile)
		student.PUT("/profile", h.SaveProfile)
		student.POST("/resume/analyze", h.AnalyzeResume)
	}

	recruiter := g.Group("/recruiter", h.Authenticate, RequireRole("recruiter"))
	{
		h.mountCollection(recruiter, "/jobs", recruiterJobs)
		h.mountCollection(recruiter, "/applicants", applicants)
		recruiter.GET("/profile", h.GetRecruiterProfile)
		recruiter.POST("/profile", h.SaveRecruiterProfile)
		recruiter.DELETE("/profile", h.DeleteRecruiterProfile)
		recruiter.POST("/profile/logo", h.UploadLogo)
	}

	placement := g.Group("/placement", h.Authenticate, RequireRole("placement"))
	{
		h.mountCollection(placement, "/students", students)
		h.mountCollection(placement, "/recruiters", recruiters)
		placement.PUT("/recruiters/:id/approve", h.ApproveRecruiter)
		h.mountCollection(placement, "/jobs", allJobs)
		h.mountCollection(placement, "/drives", drives)
		h.mountCollection(placement, "/department-stats", departments)
		h.mountCollection(placement, "/top-recruiters", topRecruiters)
		placement.GET("/dashboard/stats", h.DashboardStats)
		placement.GET("/dashboard/activity", h.RecentActivity)
	}
}

// fail answers with both an "error" and a "message" field.
func fail(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": http.StatusText(code), "message": message})
}

// storeError maps engine errors onto HTTP codes.
func storeError(c *gin.Context, err error, what string) {
	switch {
	case errors.Is(err, engine.ErrRecordNotFound):
		fail(c, http.StatusNotFound, what+" not found")
	case errors.Is(err, engine.ErrDuplicateID):
		fail(c, http.StatusConflict, what+" already exists")
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
