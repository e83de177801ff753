package sdk

import (
	"context"
	"net/http"
	"net/url"

	"github.com/campuscatalyst/portal/pkg/schema"
)

// Collection paths served by the API.
const (
	PathStudentJobs         = "/student/jobs"
	PathStudentApplications = "/student/applications"
	PathRecruiterJobs       = "/recruiter/jobs"
	PathRecruiterApplicants = "/recruiter/applicants"
	PathPlacementStudents   = "/placement/students"
	PathPlacementRecruiters = "/placement/recruiters"
	PathPlacementJobs       = "/placement/jobs"
	PathPlacementDrives     = "/placement/drives"
	PathDepartmentStats     = "/placement/department-stats"
	PathTopRecruiters       = "/placement/top-recruiters"
)

func StudentJobs(c *Client) *Resource[schema.Job] {
	return NewResource[schema.Job](c, PathStudentJobs)
}

func StudentApplications(c *Client) *Resource[schema.Application] {
	return NewResource[schema.Application](c, PathStudentApplications)
}

func RecruiterJobs(c *Client) *Resource[schema.Job] {
	return NewResource[schema.Job](c, PathRecruiterJobs)
}

func RecruiterApplicants(c *Client) *Resource[schema.Applicant] {
	return NewResource[schema.Applicant](c, PathRecruiterApplicants)
}

func PlacementStudents(c *Client) *Resource[schema.Student] {
	return NewResource[schema.Student](c, PathPlacementStudents)
}

func PlacementJobs(c *Client) *Resource[schema.Job] {
	return NewResource[schema.Job](c, PathPlacementJobs)
}

func PlacementDrives(c *Client) *Resource[schema.Drive] {
	return NewResource[schema.Drive](c, PathPlacementDrives)
}

func DepartmentStats(c *Client) *Resource[schema.Department] {
	return NewResource[schema.Department](c, PathDepartmentStats)
}

func TopRecruiters(c *Client) *Resource[schema.TopRecruiter] {
	return NewResource[schema.TopRecruiter](c, PathTopRecruiters)
}

// Recruiters is the placement office's recruiter collection, which adds approval.
type Recruiters struct {
	*Resource[schema.Recruiter]
}

func PlacementRecruiters(c *Client) Recruiters {
	return Recruiters{NewResource[schema.Recruiter](c, PathPlacementRecruiters)}
}

// Approve moves a pending recruiter to Approved.
func (r Recruiters) Approve(ctx context.Context, id string) (schema.Recruiter, error) {
	var out schema.Recruiter
	err := r.client.do(ctx, http.MethodPut, r.path+"/"+url.PathEscape(id)+"/approve", nil, &out)
	return out, err
}

// Collection returns the path a resource kind is served under for role, or "" if
// the role has no such collection.
func Collection(role schema.Role, kind schema.Kind) string {
	switch role {
	case schema.RoleStudent:
		switch kind {
		case schema.KindJob:
			return PathStudentJobs
		case schema.KindApplication:
			return PathStudentApplications
		}
	case schema.RoleRecruiter:
		switch kind {
		case schema.KindJob:
			return PathRecruiterJobs
		case schema.KindApplicant:
			return PathRecruiterApplicants
		}
	case schema.RolePlacement:
		switch kind {
		case schema.KindStudent:
			return PathPlacementStudents
		case schema.KindRecruiter:
			return PathPlacementRecruiters
		case schema.KindJob:
			return PathPlacementJobs
		case schema.KindDrive:
			return PathPlacementDrives
		case schema.KindDepartment:
			return PathDepartmentStats
		case schema.KindTopRecruiter:
			return PathTopRecruiters
		}
	}
	return ""
}

// Apply files an application for a job on the student's job board.
func (c *Client) Apply(ctx context.Context, jobID string) (schema.Application, error) {
	var out schema.Application
	err := c.do(ctx, http.MethodPost, PathStudentJobs+"/"+url.PathEscape(jobID)+"/apply", nil, &out)
	return out, err
}
