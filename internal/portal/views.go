package portal

import (
	"context"
	"io"

	"github.com/campuscatalyst/portal/internal/fallback"
	"github.com/campuscatalyst/portal/internal/liststore"
	"github.com/campuscatalyst/portal/pkg/schema"
	"github.com/campuscatalyst/portal/pkg/sdk"
)

// open mounts a list view after the gate has let role through.
func open[T schema.Record[T]](s *Session, role schema.Role, remote sdk.Remote[T], fb func() []T, label string) (*liststore.Store[T], error) {
	if err := s.authorize(role); err != nil {
		return nil, err
	}
	return liststore.New(remote, fb, s.notifier, label), nil
}

func (s *Session) StudentJobs() (*liststore.Store[schema.Job], error) {
	return open[schema.Job](s, schema.RoleStudent, sdk.StudentJobs(s.client), fallback.Jobs, "job")
}

func (s *Session) StudentApplications() (*liststore.Store[schema.Application], error) {
	return open[schema.Application](s, schema.RoleStudent, sdk.StudentApplications(s.client), fallback.Applications, "application")
}

func (s *Session) RecruiterJobs() (*liststore.Store[schema.Job], error) {
	return open[schema.Job](s, schema.RoleRecruiter, sdk.RecruiterJobs(s.client), fallback.Jobs, "job")
}

func (s *Session) RecruiterApplicants() (*liststore.Store[schema.Applicant], error) {
	return open[schema.Applicant](s, schema.RoleRecruiter, sdk.RecruiterApplicants(s.client), fallback.Applicants, "applicant")
}

func (s *Session) PlacementStudents() (*liststore.Store[schema.Student], error) {
	return open[schema.Student](s, schema.RolePlacement, sdk.PlacementStudents(s.client), fallback.Students, "student")
}

func (s *Session) PlacementRecruiters() (*liststore.Store[schema.Recruiter], error) {
	return open[schema.Recruiter](s, schema.RolePlacement, sdk.PlacementRecruiters(s.client), fallback.Recruiters, "recruiter")
}

func (s *Session) PlacementJobs() (*liststore.Store[schema.Job], error) {
	return open[schema.Job](s, schema.RolePlacement, sdk.PlacementJobs(s.client), fallback.Jobs, "job")
}

func (s *Session) PlacementDrives() (*liststore.Store[schema.Drive], error) {
	return open[schema.Drive](s, schema.RolePlacement, sdk.PlacementDrives(s.client), fallback.Drives, "drive")
}

func (s *Session) DepartmentStats() (*liststore.Store[schema.Department], error) {
	return open[schema.Department](s, schema.RolePlacement, sdk.DepartmentStats(s.client), fallback.Departments, "department statistics")
}

func (s *Session) TopRecruiters() (*liststore.Store[schema.TopRecruiter], error) {
	return open[schema.TopRecruiter](s, schema.RolePlacement, sdk.TopRecruiters(s.client), fallback.TopRecruiters, "top recruiter")
}

// Approve moves a pending recruiter of the list to Approved, optimistically.
func Approve(ctx context.Context, list *liststore.Store[schema.Recruiter], id string) (schema.Recruiter, error) {
	return list.Update(ctx, id, func(r schema.Recruiter) schema.Recruiter {
		r.Status = schema.RecruiterApproved
		return r
	})
}

// SetStatus changes the status of an applicant, optimistically.
func SetStatus(ctx context.Context, list *liststore.Store[schema.Applicant], id, status string) (schema.Applicant, error) {
	return list.Update(ctx, id, func(a schema.Applicant) schema.Applicant {
		a.Status = status
		return a
	})
}

// Dashboard is what the placement dashboard shows.
type Dashboard struct {
	Stats    []schema.DashboardStat
	Activity []schema.Activity
	// Err is set when any part fell back to example data.
	Err string
}

// Dashboard fetches the placement dashboard. Parts the server cannot deliver
// are replaced by example data and an Info notice is raised.
func (s *Session) Dashboard(ctx context.Context) (Dashboard, error) {
	if err := s.authorize(schema.RolePlacement); err != nil {
		return Dashboard{}, err
	}

	var d Dashboard
	stats, err := s.client.DashboardStats(ctx)
	if err != nil {
		stats = fallback.DashboardStats()
		d.Err = sdk.Describe(err)
	}
	activity, aerr := s.client.RecentActivity(ctx)
	if aerr != nil {
		activity = fallback.Activity()
		d.Err = sdk.Describe(aerr)
	}
	d.Stats, d.Activity = stats, activity

	if d.Err != "" {
		s.notify(liststore.Notice{
			Level:   liststore.Info,
			Title:   "Data Fallback",
			Message: "Could not reach the server. Showing example dashboard data.",
		})
	}
	return d, nil
}

// Apply files an application for jobID as the signed-in student.
func (s *Session) Apply(ctx context.Context, jobID string) (schema.Application, error) {
	if err := s.authorize(schema.RoleStudent); err != nil {
		return schema.Application{}, err
	}
	return s.client.Apply(ctx, jobID)
}

func (s *Session) Profile(ctx context.Context) (schema.StudentProfile, error) {
	if err := s.authorize(schema.RoleStudent); err != nil {
		return schema.StudentProfile{}, err
	}
	return s.client.Profile(ctx)
}

func (s *Session) SaveProfile(ctx context.Context, p schema.StudentProfile) (schema.StudentProfile, error) {
	if err := s.authorize(schema.RoleStudent); err != nil {
		return schema.StudentProfile{}, err
	}
	return s.client.SaveProfile(ctx, p)
}

// RecruiterProfile loads the recruiter's profile. When the server cannot be
// reached the example profile is returned with an Info notice.
func (s *Session) RecruiterProfile(ctx context.Context) (schema.RecruiterProfile, error) {
	if err := s.authorize(schema.RoleRecruiter); err != nil {
		return schema.RecruiterProfile{}, err
	}
	p, err := s.client.RecruiterProfile(ctx)
	if err != nil {
		s.notify(liststore.Notice{
			Level:   liststore.Info,
			Title:   "Data Fallback",
			Message: "Could not reach the server. Showing an example profile.",
		})
		return fallback.RecruiterProfile(), nil
	}
	return p, nil
}

// SaveRecruiterProfile stores p and, when logo is not nil, uploads it as the
// company logo. A failure raises the fallback notice and returns the example
// profile together with the error.
func (s *Session) SaveRecruiterProfile(ctx context.Context, p schema.RecruiterProfile, logoName string, logo io.Reader) (schema.RecruiterProfile, error) {
	if err := s.authorize(schema.RoleRecruiter); err != nil {
		return schema.RecruiterProfile{}, err
	}
	saved, err := s.client.SaveRecruiterProfile(ctx, p)
	if err == nil && logo != nil {
		saved, err = s.client.UploadLogo(ctx, logoName, logo)
	}
	if err != nil {
		s.notify(liststore.Notice{
			Level:   liststore.Info,
			Title:   "Profile Update Fallback",
			Message: "Example data has been used due to API failure.",
		})
		return fallback.RecruiterProfile(), err
	}
	s.notify(liststore.Notice{
		Level:   liststore.Info,
		Title:   "Profile Updated Successfully",
		Message: "Your company and recruiter information has been saved.",
	})
	return saved, nil
}

// DeleteRecruiterProfile removes the recruiter's saved profile and logo.
func (s *Session) DeleteRecruiterProfile(ctx context.Context) error {
	if err := s.authorize(schema.RoleRecruiter); err != nil {
		return err
	}
	if err := s.client.DeleteRecruiterProfile(ctx); err != nil {
		s.notify(liststore.Notice{
			Level:   liststore.Error,
			Title:   "Delete Failed",
			Message: "Could not delete your profile.",
		})
		return err
	}
	s.notify(liststore.Notice{
		Level:   liststore.Info,
		Title:   "Profile Deleted",
		Message: "Your profile has been removed successfully.",
	})
	return nil
}

// AnalyzeResume uploads a resume. When the analyzer cannot be reached the
// sample report is returned with an Info notice and a nil error.
func (s *Session) AnalyzeResume(ctx context.Context, filename string, r io.Reader) (schema.ResumeReport, error) {
	if err := s.authorize(schema.RoleStudent); err != nil {
		return schema.ResumeReport{}, err
	}
	report, err := s.client.AnalyzeResume(ctx, filename, r, fallback.ResumeReport())
	if err != nil {
		s.notify(liststore.Notice{
			Level:   liststore.Info,
			Title:   "Data Fallback",
			Message: "Resume analysis is unavailable. Showing a sample report.",
		})
	}
	return report, nil
}
