package schema

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Kind names a resource collection independently of the role-scoped path it is served under.
type Kind string

const (
	KindJob          Kind = "jobs"
	KindApplication  Kind = "applications"
	KindApplicant    Kind = "applicants"
	KindStudent      Kind = "students"
	KindRecruiter    Kind = "recruiters"
	KindDrive        Kind = "drives"
	KindDepartment   Kind = "departments"
	KindTopRecruiter Kind = "top-recruiters"
)

// Kinds lists every resource kind.
func Kinds() []Kind {
	return []Kind{KindJob, KindApplication, KindApplicant, KindStudent, KindRecruiter, KindDrive, KindDepartment, KindTopRecruiter}
}

// Record is implemented by every resource record type. Records are values:
// WithKey returns a copy carrying the new identifier.
type Record[T any] interface {
	Key() string
	WithKey(id string) T
	// SearchText is the text a list view filters on.
	SearchText() string
}

// TempIDPrefix marks identifiers generated on the client for records the server has not confirmed yet.
const TempIDPrefix = "tmp-"

// NewTempID returns a fresh client-side placeholder identifier.
func NewTempID() string {
	return TempIDPrefix + uuid.NewString()
}

// IsTempID reports whether id belongs to the client placeholder namespace.
func IsTempID(id string) bool {
	return strings.HasPrefix(id, TempIDPrefix)
}

// Job statuses.
const (
	JobOpen   = "Open"
	JobClosed = "Closed"
)

// Job is a job posting. Students browse it, recruiters own it, the placement office oversees it.
type Job struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Company      string `json:"company"`
	Location     string `json:"location"`
	Salary       string `json:"salary"`
	Type         string `json:"type"`
	Deadline     string `json:"deadline,omitempty"`
	Description  string `json:"description,omitempty"`
	Requirements string `json:"requirements,omitempty"`
	Status       string `json:"status"`
	Applications int    `json:"applications"`
	Posted       string `json:"posted"`
}

func (j Job) Key() string { return j.ID }

func (j Job) WithKey(id string) Job {
	j.ID = id
	return j
}

func (j Job) SearchText() string {
	return strings.Join([]string{j.Title, j.Company, j.Location, j.Type}, " ")
}

// Application statuses, shared by the student and recruiter views.
const (
	ApplicationPending     = "Pending"
	ApplicationUnderReview = "Under Review"
	ApplicationInterview   = "Interview"
	ApplicationSelected    = "Selected"
	ApplicationRejected    = "Rejected"
)

// Application is a student's own view of something they applied to.
type Application struct {
	ID          string `json:"id"`
	JobID       string `json:"jobId,omitempty"`
	JobTitle    string `json:"jobTitle"`
	Company     string `json:"company"`
	Status      string `json:"status"`
	AppliedDate string `json:"appliedDate"`
}

func (a Application) Key() string { return a.ID }

func (a Application) WithKey(id string) Application {
	a.ID = id
	return a
}

func (a Application) SearchText() string {
	return a.JobTitle + " " + a.Company + " " + a.Status
}

// Applicant is the recruiter's view of an application to one of their jobs.
type Applicant struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	JobTitle    string `json:"jobTitle"`
	Status      string `json:"status"`
	AppliedDate string `json:"appliedDate"`
}

func (a Applicant) Key() string { return a.ID }

func (a Applicant) WithKey(id string) Applicant {
	a.ID = id
	return a
}

func (a Applicant) SearchText() string {
	return a.Name + " " + a.JobTitle + " " + a.Status
}

// Student placement statuses.
const (
	StudentPlaced      = "Placed"
	StudentInterviewed = "Interviewed"
	StudentNotPlaced   = "Not Placed"
)

// Student is a row of the placement office's student register.
type Student struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	RollNo     string `json:"rollNo"`
	Department string `json:"department"`
	CGPA       string `json:"cgpa"`
	Status     string `json:"status"`
	Company    string `json:"company"`
}

func (s Student) Key() string { return s.ID }

func (s Student) WithKey(id string) Student {
	s.ID = id
	return s
}

func (s Student) SearchText() string {
	return strings.Join([]string{s.Name, s.RollNo, s.Department, s.Company}, " ")
}

// Recruiter approval statuses.
const (
	RecruiterPending  = "Pending"
	RecruiterApproved = "Approved"
)

// Recruiter is a company registered with the placement office.
type Recruiter struct {
	ID         string `json:"id"`
	Company    string `json:"company"`
	HRName     string `json:"hrName"`
	Email      string `json:"email"`
	Industry   string `json:"industry"`
	Status     string `json:"status"`
	JobsPosted int    `json:"jobsPosted"`
}

func (r Recruiter) Key() string { return r.ID }

func (r Recruiter) WithKey(id string) Recruiter {
	r.ID = id
	return r
}

func (r Recruiter) SearchText() string {
	return strings.Join([]string{r.Company, r.HRName, r.Email, r.Industry}, " ")
}

// Drive statuses.
const (
	DriveScheduled = "Scheduled"
	DriveOngoing   = "Ongoing"
	DriveCompleted = "Completed"
)

// Drive is a campus recruitment drive.
type Drive struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Company          string `json:"company"`
	Date             string `json:"date"`
	EligibleBranches string `json:"eligibleBranches"`
	Status           string `json:"status"`
	Registrations    int    `json:"registrations"`
}

func (d Drive) Key() string { return d.ID }

func (d Drive) WithKey(id string) Drive {
	d.ID = id
	return d
}

func (d Drive) SearchText() string {
	return strings.Join([]string{d.Name, d.Company, d.EligibleBranches}, " ")
}

// Department holds the placement figures of one department.
type Department struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Total      int     `json:"total"`
	Placed     int     `json:"placed"`
	Percentage float64 `json:"percentage"`
	AvgPackage string  `json:"avgPackage"`
}

func (d Department) Key() string { return d.ID }

func (d Department) WithKey(id string) Department {
	d.ID = id
	return d
}

func (d Department) SearchText() string { return d.Name }

// Summary renders the "placed/total (pct%)" label of the reports page.
func (d Department) Summary() string {
	return fmt.Sprintf("%d/%d (%.1f%%)", d.Placed, d.Total, d.Percentage)
}

// TopRecruiter ranks a company by hires.
type TopRecruiter struct {
	ID         string `json:"id"`
	Company    string `json:"company"`
	Hires      int    `json:"hires"`
	AvgPackage string `json:"avgPackage"`
}

func (t TopRecruiter) Key() string { return t.ID }

func (t TopRecruiter) WithKey(id string) TopRecruiter {
	t.ID = id
	return t
}

func (t TopRecruiter) SearchText() string { return t.Company }

// StudentProfile is the editable profile of the signed-in student.
type StudentProfile struct {
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Phone      string   `json:"phone"`
	RollNo     string   `json:"rollNo"`
	Department string   `json:"department"`
	CGPA       string   `json:"cgpa"`
	Skills     []string `json:"skills"`
}

// CompanyInfo is the company half of a recruiter profile.
type CompanyInfo struct {
	CompanyName        string `json:"companyName"`
	Industry           string `json:"industry"`
	CompanyDescription string `json:"companyDescription"`
}

// RecruiterInfo is the contact half of a recruiter profile.
type RecruiterInfo struct {
	RecruiterName string `json:"recruiterName"`
	Designation   string `json:"designation"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
}

// RecruiterProfile is the editable profile of the signed-in recruiter.
type RecruiterProfile struct {
	CompanyInfo   CompanyInfo   `json:"companyInfo"`
	RecruiterInfo RecruiterInfo `json:"recruiterInfo"`
	// Logo is a data URL of the uploaded company logo.
	Logo string `json:"logo,omitempty"`
}

// ResumeReport is what the resume analyzer returns.
type ResumeReport struct {
	Score       int      `json:"score"`
	Summary     string   `json:"summary"`
	Strengths   []string `json:"strengths"`
	Suggestions []string `json:"suggestions"`
	Keywords    []string `json:"keywords"`
}
