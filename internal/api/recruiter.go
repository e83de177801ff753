package api

import (
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	"github.com/campuscatalyst/portal/pkg/engine"
	"github.com/campuscatalyst/portal/pkg/schema"
)

const (
	maxLogoBytes = 1 << 20
	logoField    = "logo"
)

type recruiterProfileInput struct {
	CompanyInfo   schema.CompanyInfo   `json:"companyInfo"`
	RecruiterInfo schema.RecruiterInfo `json:"recruiterInfo"`
}

// loadRecruiterProfile returns the saved profile of account, or one drafted
// from its registration when nothing was saved yet.
func (h *Handler) loadRecruiterProfile(account string) (schema.RecruiterProfile, error) {
	var p schema.RecruiterProfile
	rec, err := h.Store.Get(account, profileCollection, profileID)
	if err == nil {
		err = decodeRecord(rec, &p)
		return p, err
	}
	if !errors.Is(err, engine.ErrRecordNotFound) {
		return p, err
	}

	if row, _, err := h.Store.Find(string(schema.KindRecruiter), "accountId", account); err == nil {
		p.CompanyInfo.CompanyName = stringField(row, "company")
		p.CompanyInfo.Industry = stringField(row, "industry")
		p.RecruiterInfo.RecruiterName = stringField(row, "hrName")
		p.RecruiterInfo.Email = stringField(row, "email")
	}
	return p, nil
}

func (h *Handler) storeRecruiterProfile(account string, p schema.RecruiterProfile) error {
	rec, err := encodeRecord(p)
	if err != nil {
		return err
	}
	rec[engine.IDField] = profileID
	_, err = h.Store.Put(account, profileCollection, rec)
	return err
}

func (h *Handler) GetRecruiterProfile(c *gin.Context) {
	p, err := h.loadRecruiterProfile(accountID(c))
	if err != nil {
		storeError(c, err, "profile")
		return
	}
	c.JSON(http.StatusOK, p)
}

// SaveRecruiterProfile stores the company and recruiter details and copies
// them into the placement office's recruiter record. The logo is kept.
func (h *Handler) SaveRecruiterProfile(c *gin.Context) {
	var in recruiterProfileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "invalid profile")
		return
	}
	if strings.TrimSpace(in.CompanyInfo.CompanyName) == "" {
		fail(c, http.StatusBadRequest, "Company name is required")
		return
	}

	account := accountID(c)
	p, err := h.loadRecruiterProfile(account)
	if err != nil {
		storeError(c, err, "profile")
		return
	}
	p.CompanyInfo, p.RecruiterInfo = in.CompanyInfo, in.RecruiterInfo
	if err := h.storeRecruiterProfile(account, p); err != nil {
		storeError(c, err, "profile")
		return
	}

	if row, _, err := h.Store.Find(string(schema.KindRecruiter), "accountId", account); err == nil {
		fields := engine.Record{
			"company":  p.CompanyInfo.CompanyName,
			"industry": p.CompanyInfo.Industry,
		}
		if p.RecruiterInfo.RecruiterName != "" {
			fields["hrName"] = p.RecruiterInfo.RecruiterName
		}
		if p.RecruiterInfo.Email != "" {
			fields["email"] = p.RecruiterInfo.Email
		}
		h.Store.Patch(engine.SharedScope, string(schema.KindRecruiter), engine.RecordID(row), fields)
	}
	c.JSON(http.StatusOK, p)
}

// UploadLogo stores the uploaded image as a data URL on the profile.
func (h *Handler) UploadLogo(c *gin.Context) {
	file, _, err := c.Request.FormFile(logoField)
	if err != nil {
		fail(c, http.StatusBadRequest, "No logo uploaded")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxLogoBytes+1))
	if err != nil {
		fail(c, http.StatusBadRequest, "Could not read logo")
		return
	}
	if len(content) > maxLogoBytes {
		fail(c, http.StatusRequestEntityTooLarge, "Logo must be smaller than 1 MB")
		return
	}
	mt := mimetype.Detect(content)
	if !strings.HasPrefix(mt.String(), "image/") {
		fail(c, http.StatusUnsupportedMediaType, "Logo must be an image")
		return
	}

	account := accountID(c)
	p, err := h.loadRecruiterProfile(account)
	if err != nil {
		storeError(c, err, "profile")
		return
	}
	p.Logo = "data:" + mt.String() + ";base64," + base64.StdEncoding.EncodeToString(content)
	if err := h.storeRecruiterProfile(account, p); err != nil {
		storeError(c, err, "profile")
		return
	}
	c.JSON(http.StatusOK, p)
}

// DeleteRecruiterProfile drops the saved profile and logo. The account and the
// placement office's recruiter record stay.
func (h *Handler) DeleteRecruiterProfile(c *gin.Context) {
	err := h.Store.Delete(accountID(c), profileCollection, profileID)
	if err != nil && !errors.Is(err, engine.ErrRecordNotFound) {
		storeError(c, err, "profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}
