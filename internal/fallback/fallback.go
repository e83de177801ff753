// Package fallback supplies the example records shown when the remote API cannot be reached,
// so every screen stays populated offline. Every call returns a fresh copy; callers may mutate it.
package fallback

import (
	"fmt"

	"github.com/campuscatalyst/portal/pkg/schema"
)

// IDPrefix marks identifiers of example records. They never collide with
// server-assigned ids or client placeholders.
const IDPrefix = "fallback-"

func id(kind schema.Kind, n int) string {
	return fmt.Sprintf("%s%s-%d", IDPrefix, kind, n)
}

// For returns the example records of kind as a slice of any, for callers that
// handle collections generically. ok is false for unknown kinds.
func For(kind schema.Kind) (records []any, ok bool) {
	switch kind {
	case schema.KindJob:
		return toAny(Jobs()), true
	case schema.KindApplication:
		return toAny(Applications()), true
	case schema.KindApplicant:
		return toAny(Applicants()), true
	case schema.KindStudent:
		return toAny(Students()), true
	case schema.KindRecruiter:
		return toAny(Recruiters()), true
	case schema.KindDrive:
		return toAny(Drives()), true
	case schema.KindDepartment:
		return toAny(Departments()), true
	case schema.KindTopRecruiter:
		return toAny(TopRecruiters()), true
	}
	return nil, false
}

func toAny[T any](in []T) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

func Jobs() []schema.Job {
	return []schema.Job{
		{ID: id(schema.KindJob, 1), Title: "Software Engineer", Company: "Google", Location: "Bangalore, India", Salary: "₹15-20 LPA", Type: "Full-time", Deadline: "2025-12-31", Description: "Develop software applications...", Requirements: "JavaScript, React, Node.js", Status: schema.JobOpen, Applications: 42, Posted: "1 day ago"},
		{ID: id(schema.KindJob, 2), Title: "Data Analyst", Company: "Microsoft", Location: "Hyderabad, India", Salary: "₹10-15 LPA", Type: "Full-time", Status: schema.JobOpen, Applications: 35, Posted: "2 days ago"},
		{ID: id(schema.KindJob, 3), Title: "Frontend Developer", Company: "Amazon", Location: "Mumbai, India", Salary: "₹12-18 LPA", Type: "Full-time", Status: schema.JobOpen, Applications: 28, Posted: "3 days ago"},
		{ID: id(schema.KindJob, 4), Title: "Backend Developer", Company: "Infosys", Location: "Pune, India", Salary: "₹6-10 LPA", Type: "Full-time", Status: schema.JobClosed, Applications: 65, Posted: "4 days ago"},
		{ID: id(schema.KindJob, 5), Title: "Product Manager", Company: "Wipro", Location: "Chennai, India", Salary: "₹8-14 LPA", Type: "Full-time", Status: schema.JobOpen, Applications: 22, Posted: "5 days ago"},
	}
}

func Applications() []schema.Application {
	return []schema.Application{
		{ID: id(schema.KindApplication, 1), JobTitle: "Software Engineer", Company: "Infosys", Status: schema.ApplicationInterview, AppliedDate: "12 Sept 2025"},
		{ID: id(schema.KindApplication, 2), JobTitle: "Frontend Developer", Company: "TCS", Status: schema.ApplicationPending, AppliedDate: "10 Sept 2025"},
		{ID: id(schema.KindApplication, 3), JobTitle: "Data Analyst", Company: "Wipro", Status: schema.ApplicationSelected, AppliedDate: "8 Sept 2025"},
		{ID: id(schema.KindApplication, 4), JobTitle: "Backend Developer", Company: "Accenture", Status: schema.ApplicationRejected, AppliedDate: "5 Sept 2025"},
		{ID: id(schema.KindApplication, 5), JobTitle: "Full Stack Developer", Company: "Google", Status: schema.ApplicationPending, AppliedDate: "3 Sept 2025"},
	}
}

func Applicants() []schema.Applicant {
	return []schema.Applicant{
		{ID: id(schema.KindApplicant, 1), Name: "Nitya Vangala", JobTitle: "Software Engineer", Status: schema.ApplicationUnderReview, AppliedDate: "02 Oct 2025"},
		{ID: id(schema.KindApplicant, 2), Name: "Rahul Sharma", JobTitle: "Data Analyst", Status: schema.ApplicationInterview, AppliedDate: "03 Oct 2025"},
		{ID: id(schema.KindApplicant, 3), Name: "Priya Patel", JobTitle: "Frontend Developer", Status: schema.ApplicationUnderReview, AppliedDate: "04 Oct 2025"},
		{ID: id(schema.KindApplicant, 4), Name: "Arjun Reddy", JobTitle: "Backend Developer", Status: schema.ApplicationSelected, AppliedDate: "28 Sept 2025"},
		{ID: id(schema.KindApplicant, 5), Name: "Sneha Kumar", JobTitle: "Product Manager", Status: schema.ApplicationRejected, AppliedDate: "25 Sept 2025"},
	}
}

func Students() []schema.Student {
	return []schema.Student{
		{ID: id(schema.KindStudent, 1), Name: "Nitya Sharma", RollNo: "CS2021001", Department: "Computer Science", CGPA: "8.5", Status: schema.StudentPlaced, Company: "Google"},
		{ID: id(schema.KindStudent, 2), Name: "Rahul Patel", RollNo: "CS2021002", Department: "Computer Science", CGPA: "8.2", Status: schema.StudentPlaced, Company: "Microsoft"},
		{ID: id(schema.KindStudent, 3), Name: "Priya Kumar", RollNo: "EC2021015", Department: "Electronics", CGPA: "7.8", Status: schema.StudentInterviewed, Company: "Amazon"},
		{ID: id(schema.KindStudent, 4), Name: "Arjun Reddy", RollNo: "ME2021034", Department: "Mechanical", CGPA: "7.5", Status: schema.StudentNotPlaced, Company: "-"},
		{ID: id(schema.KindStudent, 5), Name: "Sneha Singh", RollNo: "CS2021025", Department: "Computer Science", CGPA: "9.1", Status: schema.StudentPlaced, Company: "Infosys"},
	}
}

func Recruiters() []schema.Recruiter {
	return []schema.Recruiter{
		{ID: id(schema.KindRecruiter, 1), Company: "Google", HRName: "John Smith", Email: "john@google.com", Industry: "Technology", Status: schema.RecruiterApproved, JobsPosted: 5},
		{ID: id(schema.KindRecruiter, 2), Company: "Microsoft", HRName: "Sarah Johnson", Email: "sarah@microsoft.com", Industry: "Technology", Status: schema.RecruiterApproved, JobsPosted: 8},
		{ID: id(schema.KindRecruiter, 3), Company: "Infosys", HRName: "Raj Kumar", Email: "raj@infosys.com", Industry: "IT Services", Status: schema.RecruiterApproved, JobsPosted: 12},
		{ID: id(schema.KindRecruiter, 4), Company: "Wipro", HRName: "Priya Patel", Email: "priya@wipro.com", Industry: "IT Services", Status: schema.RecruiterPending, JobsPosted: 3},
		{ID: id(schema.KindRecruiter, 5), Company: "TCS", HRName: "Amit Sharma", Email: "amit@tcs.com", Industry: "IT Services", Status: schema.RecruiterApproved, JobsPosted: 15},
	}
}

func Drives() []schema.Drive {
	return []schema.Drive{
		{ID: id(schema.KindDrive, 1), Name: "Amazon Campus Drive", Company: "Amazon", Date: "2025-12-20", EligibleBranches: "CS, EC, IT", Status: schema.DriveScheduled, Registrations: 45},
		{ID: id(schema.KindDrive, 2), Name: "Google Recruitment", Company: "Google", Date: "2025-12-15", EligibleBranches: "CS, IT", Status: schema.DriveOngoing, Registrations: 38},
	}
}

func Departments() []schema.Department {
	return []schema.Department{
		{ID: id(schema.KindDepartment, 1), Name: "Computer Science", Total: 150, Placed: 128, Percentage: 85.3, AvgPackage: "₹8.5 LPA"},
		{ID: id(schema.KindDepartment, 2), Name: "Electronics", Total: 120, Placed: 94, Percentage: 78.3, AvgPackage: "₹7.2 LPA"},
		{ID: id(schema.KindDepartment, 3), Name: "Mechanical", Total: 100, Placed: 72, Percentage: 72.0, AvgPackage: "₹6.5 LPA"},
		{ID: id(schema.KindDepartment, 4), Name: "Civil", Total: 80, Placed: 52, Percentage: 65.0, AvgPackage: "₹5.8 LPA"},
	}
}

func TopRecruiters() []schema.TopRecruiter {
	return []schema.TopRecruiter{
		{ID: id(schema.KindTopRecruiter, 1), Company: "Infosys", Hires: 45, AvgPackage: "₹6.0 LPA"},
		{ID: id(schema.KindTopRecruiter, 2), Company: "TCS", Hires: 38, AvgPackage: "₹5.5 LPA"},
		{ID: id(schema.KindTopRecruiter, 3), Company: "Wipro", Hires: 32, AvgPackage: "₹6.2 LPA"},
		{ID: id(schema.KindTopRecruiter, 4), Company: "Google", Hires: 12, AvgPackage: "₹18.0 LPA"},
		{ID: id(schema.KindTopRecruiter, 5), Company: "Microsoft", Hires: 10, AvgPackage: "₹15.0 LPA"},
	}
}

// DashboardStats backs the placement dashboard tiles.
func DashboardStats() []schema.DashboardStat {
	return []schema.DashboardStat{
		{Label: "Total Students", Value: "1,247", Change: "↑ 12% vs last month"},
		{Label: "Active Recruiters", Value: "89", Change: "↑ 5% vs last month"},
		{Label: "Job Listings", Value: "156", Change: "↑ 18% vs last month"},
		{Label: "Placements", Value: "423", Change: "↑ 8% vs last month"},
		{Label: "Placement Rate", Value: "78.5%"},
		{Label: "Average Package", Value: "₹6.2 LPA"},
		{Label: "Ongoing Drives", Value: "12"},
	}
}

func Activity() []schema.Activity {
	return []schema.Activity{
		{Title: "Student Placement Confirmed", Description: "Rahul Sharma placed at TCS", Time: "2 hours ago"},
		{Title: "New Recruiter Registered", Description: "Infosys joined the platform", Time: "5 hours ago"},
		{Title: "Job Listing Published", Description: "Software Developer role by Wipro", Time: "1 day ago"},
		{Title: "Placement Drive Scheduled", Description: "Amazon campus drive on Dec 20", Time: "2 days ago"},
	}
}

// RecruiterProfile is shown when the recruiter profile cannot be loaded or saved.
func RecruiterProfile() schema.RecruiterProfile {
	return schema.RecruiterProfile{
		CompanyInfo: schema.CompanyInfo{
			CompanyName:        "Infosys",
			Industry:           "Information Technology",
			CompanyDescription: "Leading global technology and consulting company...",
		},
		RecruiterInfo: schema.RecruiterInfo{
			RecruiterName: "John Doe",
			Designation:   "HR Manager",
			Email:         "john@infosys.com",
			Phone:         "+91 98765 12345",
		},
	}
}

// ResumeReport is shown when the resume analyzer endpoint fails.
func ResumeReport() schema.ResumeReport {
	return schema.ResumeReport{
		Score:   72,
		Summary: "Your resume is well structured but could better highlight measurable impact.",
		Strengths: []string{
			"Clear education section",
			"Relevant technical skills listed",
		},
		Suggestions: []string{
			"Quantify project outcomes with numbers",
			"Add a short professional summary at the top",
			"Mirror keywords from the job descriptions you target",
		},
		Keywords: []string{"JavaScript", "React", "Node.js", "SQL"},
	}
}
