package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/campuscatalyst/portal/pkg/engine"
	"github.com/campuscatalyst/portal/pkg/schema"
)

// Reserved collections of the shared scope.
const (
	accountsCollection = "_accounts"
	sessionsCollection = "_sessions"
)

// Context keys set by Authenticate.
const (
	ContextAccountKey = "account_id"
	ContextRoleKey    = "role"
)

type registerInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"required"`
	Company  string `json:"company"`
}

type loginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Register(c *gin.Context) {
	var input registerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, "Name, a valid email, a password of at least 6 characters and a role are required")
		return
	}
	role, err := schema.ParseRole(input.Role)
	if err != nil {
		fail(c, http.StatusBadRequest, "Please select a valid role")
		return
	}
	email := normalizeEmail(input.Email)

	if _, _, err := h.Store.Find(accountsCollection, "email", email); err == nil {
		fail(c, http.StatusConflict, "Email already registered")
		return
	} else if !errors.Is(err, engine.ErrRecordNotFound) {
		storeError(c, err, "account")
		return
	}

	cost := h.HashCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), cost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	now := h.now().UTC()
	account, err := h.Store.Insert(engine.SharedScope, accountsCollection, engine.Record{
		"name":          strings.TrimSpace(input.Name),
		"email":         email,
		"role":          string(role),
		"password_hash": string(hash),
		"created_at":    now.Format(time.RFC3339),
		"last_active":   now.Format(time.RFC3339),
	})
	if err != nil {
		storeError(c, err, "account")
		return
	}

	h.enroll(account, role, input)

	token, err := h.issueToken(engine.RecordID(account), role)
	if err != nil {
		storeError(c, err, "session")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"token": token, "role": role})
}

// enroll makes a new account visible to the placement office.
func (h *Handler) enroll(account engine.Record, role schema.Role, input registerInput) {
	name, _ := account["name"].(string)
	email, _ := account["email"].(string)

	switch role {
	case schema.RoleRecruiter:
		company := strings.TrimSpace(input.Company)
		if company == "" {
			company = name
		}
		h.Store.Insert(engine.SharedScope, string(schema.KindRecruiter), engine.Record{
			"company":    company,
			"hrName":     name,
			"email":      email,
			"industry":   "",
			"status":     schema.RecruiterPending,
			"jobsPosted": 0,
			"accountId":  engine.RecordID(account),
		})
		h.logActivity("New Recruiter Registered", company+" joined the platform")
	case schema.RoleStudent:
		h.Store.Put(engine.RecordID(account), profileCollection, engine.Record{
			engine.IDField: profileID,
			"name":         name,
			"email":        email,
			"skills":       []any{},
		})
		h.Store.Insert(engine.SharedScope, string(schema.KindStudent), engine.Record{
			"name":       name,
			"rollNo":     "",
			"department": "",
			"cgpa":       "",
			"status":     schema.StudentNotPlaced,
			"company":    "-",
			"accountId":  engine.RecordID(account),
		})
	}
}

func (h *Handler) Login(c *gin.Context) {
	var input loginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, "Email and password are required")
		return
	}
	email := normalizeEmail(input.Email)

	if h.Limiter != nil && !h.Limiter.Allow(email+"|"+c.ClientIP()) {
		fail(c, http.StatusTooManyRequests, "Too many login attempts, try again later")
		return
	}

	account, _, err := h.Store.Find(accountsCollection, "email", email)
	if err != nil {
		if errors.Is(err, engine.ErrRecordNotFound) {
			fail(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		storeError(c, err, "account")
		return
	}

	hash, _ := account["password_hash"].(string)
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(input.Password)) != nil {
		fail(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	role := schema.Role(stringField(account, "role"))
	id := engine.RecordID(account)
	h.Store.Patch(engine.SharedScope, accountsCollection, id, engine.Record{
		"last_active": h.now().UTC().Format(time.RFC3339),
	})

	token, err := h.issueToken(id, role)
	if err != nil {
		storeError(c, err, "session")
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "role": role})
}

func (h *Handler) Logout(c *gin.Context) {
	token := bearerToken(c)
	if err := h.Store.Delete(engine.SharedScope, sessionsCollection, token); err != nil && !errors.Is(err, engine.ErrRecordNotFound) {
		storeError(c, err, "session")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// issueToken stores an opaque bearer token for account.
func (h *Handler) issueToken(accountID string, role schema.Role) (string, error) {
	ttl := h.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	token := uuid.NewString()
	_, err := h.Store.Insert(engine.SharedScope, sessionsCollection, engine.Record{
		engine.IDField: token,
		"accountId":    accountID,
		"role":         string(role),
		"expiresAt":    h.now().Add(ttl).UTC().Format(time.RFC3339),
	})
	return token, err
}

func bearerToken(c *gin.Context) string {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Authenticate resolves the bearer token to an account and role.
func (h *Handler) Authenticate(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		fail(c, http.StatusUnauthorized, "missing authorization header")
		return
	}

	session, err := h.Store.Get(engine.SharedScope, sessionsCollection, token)
	if err != nil {
		fail(c, http.StatusUnauthorized, "invalid token")
		return
	}

	expires, err := time.Parse(time.RFC3339, stringField(session, "expiresAt"))
	if err != nil || !h.now().Before(expires) {
		h.Store.Delete(engine.SharedScope, sessionsCollection, token)
		fail(c, http.StatusUnauthorized, "session expired")
		return
	}

	c.Set(ContextAccountKey, stringField(session, "accountId"))
	c.Set(ContextRoleKey, stringField(session, "role"))
	c.Next()
}

// RequireRole rejects requests whose session role is not role.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextRoleKey) != role {
			fail(c, http.StatusForbidden, "forbidden")
			return
		}
		c.Next()
	}
}

func accountID(c *gin.Context) string {
	return c.GetString(ContextAccountKey)
}

func stringField(r engine.Record, key string) string {
	s, _ := r[key].(string)
	return s
}
