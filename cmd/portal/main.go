package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"golang.org/x/term"

	"github.com/campuscatalyst/portal/internal/config"
	"github.com/campuscatalyst/portal/internal/credentials"
	"github.com/campuscatalyst/portal/internal/gate"
	"github.com/campuscatalyst/portal/internal/liststore"
	"github.com/campuscatalyst/portal/internal/portal"
	"github.com/campuscatalyst/portal/pkg/schema"
	"github.com/campuscatalyst/portal/pkg/sdk"
)

const maxLoginAttempts = 3

func main() {
	if len(os.Args) < 2 {
		printUsage()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	s, err := openSession(cfg.Client)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	command := strings.ToUpper(os.Args[1])
	if err := run(ctx, s, command, os.Args[2:]); err != nil {
		var redirect *portal.RedirectError
		if errors.As(err, &redirect) {
			log.Fatal("Not signed in for this page. Run: portal LOGIN <email>")
		}
		log.Fatal(describe(err))
	}
}

func openSession(cfg config.ClientConfig) (*portal.Session, error) {
	durable, err := credentials.NewFileSlot(filepath.Join(cfg.StateDir, "credentials.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to open credential file: %w", err)
	}
	session, err := credentials.NewFileSlot(credentials.SessionFile())
	if err != nil {
		return nil, fmt.Errorf("failed to open session file: %w", err)
	}

	var credOpts []credentials.Option
	if key := cfg.MasterKeyBytes(); key != nil {
		credOpts = append(credOpts, credentials.WithMasterKey(key))
	}
	var clientOpts []sdk.Option
	if cfg.HTTPTimeout > 0 {
		clientOpts = append(clientOpts, sdk.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}))
	}

	creds := credentials.New(durable, session, credOpts...)
	return portal.New(cfg.APIBaseURL, creds, liststore.NotifierFunc(printNotice), clientOpts...), nil
}

func run(ctx context.Context, s *portal.Session, command string, args []string) error {
	switch command {
	case "LOGIN":
		if len(args) < 1 {
			return usage("portal LOGIN <email> [--remember]")
		}
		remember := len(args) > 1 && args[1] == "--remember"
		return login(ctx, s, args[0], remember)

	case "REGISTER":
		if len(args) < 3 {
			return usage("portal REGISTER <name> <email> <student|recruiter|placement> [company]")
		}
		form := portal.RegisterForm{Name: args[0], Email: args[1], Role: args[2]}
		if len(args) > 3 {
			form.Company = strings.Join(args[3:], " ")
		}
		form.Password = readPassword("Password: ")
		form.Confirm = readPassword("Confirm password: ")
		home, err := s.Register(ctx, form)
		if err != nil {
			return err
		}
		fmt.Printf("Registered. Home: %s\n", home)

	case "LOGOUT":
		if err := s.Logout(ctx); err != nil {
			return err
		}
		fmt.Println("OK")

	case "WHOAMI":
		p, ok, err := s.Current()
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Not signed in.")
			return nil
		}
		fmt.Printf("Signed in as %s\n", p.Role)
		for _, route := range gate.Routes(p.Role) {
			fmt.Printf("  %s\n", route)
		}

	case "OPEN":
		if len(args) < 1 {
			return usage("portal OPEN <path>")
		}
		d := s.Navigate(args[0])
		if d.Allowed {
			fmt.Printf("Allowed: %s\n", args[0])
		} else {
			fmt.Printf("Redirect: %s\n", d.Redirect)
		}

	case "LIST", "CREATE", "UPDATE", "DELETE":
		if len(args) < 1 {
			return usage("portal " + command + " <kind> ...")
		}
		p, _, err := s.Current()
		if err != nil {
			return err
		}
		return dispatch(ctx, s, p.Role, schema.Kind(strings.ToLower(args[0])), command, args[1:])

	case "STATUS":
		if len(args) < 2 {
			return usage("portal STATUS <applicantID> <status>")
		}
		list, err := s.RecruiterApplicants()
		if err != nil {
			return err
		}
		defer list.Close()
		list.Load(ctx)
		rec, err := portal.SetStatus(ctx, list, args[0], strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		printJSON(rec)

	case "APPROVE":
		if len(args) < 1 {
			return usage("portal APPROVE <recruiterID>")
		}
		list, err := s.PlacementRecruiters()
		if err != nil {
			return err
		}
		defer list.Close()
		list.Load(ctx)
		rec, err := portal.Approve(ctx, list, args[0])
		if err != nil {
			return err
		}
		printJSON(rec)

	case "APPLY":
		if len(args) < 1 {
			return usage("portal APPLY <jobID>")
		}
		app, err := s.Apply(ctx, args[0])
		if err != nil {
			return err
		}
		printJSON(app)

	case "PROFILE":
		if p, ok, _ := s.Current(); ok && p.Role == schema.RoleRecruiter {
			return recruiterProfile(ctx, s, args)
		}
		if len(args) == 0 {
			p, err := s.Profile(ctx)
			if err != nil {
				return err
			}
			printJSON(p)
			return nil
		}
		cur, err := s.Profile(ctx)
		if err != nil {
			return err
		}
		if err := json.Unmarshal([]byte(args[0]), &cur); err != nil {
			return fmt.Errorf("invalid profile JSON: %w", err)
		}
		saved, err := s.SaveProfile(ctx, cur)
		if err != nil {
			return err
		}
		printJSON(saved)

	case "REPORTS":
		return reports(ctx, s)

	case "ANALYZE":
		if len(args) < 1 {
			return usage("portal ANALYZE <resume file>")
		}
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		report, err := s.AnalyzeResume(ctx, filepath.Base(args[0]), f)
		if err != nil {
			return err
		}
		printJSON(report)

	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
	}
	return nil
}

// recruiterProfile shows, saves (with an optional logo file) or deletes the
// recruiter's profile.
func recruiterProfile(ctx context.Context, s *portal.Session, args []string) error {
	if len(args) > 0 && strings.ToUpper(args[0]) == "DELETE" {
		if err := s.DeleteRecruiterProfile(ctx); err != nil {
			return err
		}
		fmt.Println("OK")
		return nil
	}

	cur, err := s.RecruiterProfile(ctx)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		printJSON(cur)
		return nil
	}
	if err := json.Unmarshal([]byte(args[0]), &cur); err != nil {
		return fmt.Errorf("invalid profile JSON: %w", err)
	}

	var (
		logo     *os.File
		logoName string
	)
	if len(args) > 1 {
		logo, err = os.Open(args[1])
		if err != nil {
			return err
		}
		defer logo.Close()
		logoName = filepath.Base(args[1])
	}
	var saved schema.RecruiterProfile
	if logo != nil {
		saved, err = s.SaveRecruiterProfile(ctx, cur, logoName, logo)
	} else {
		saved, err = s.SaveRecruiterProfile(ctx, cur, "", nil)
	}
	if err != nil {
		return err
	}
	printJSON(saved)
	return nil
}

// login re-prompts only the password after a failed attempt; the email is kept.
func login(ctx context.Context, s *portal.Session, email string, remember bool) error {
	password := os.Getenv("PORTAL_PASSWORD")
	interactive := password == ""

	for attempt := 1; ; attempt++ {
		if interactive {
			password = readPassword("Password: ")
		}
		home, err := s.Login(ctx, email, password, remember)
		if err == nil {
			fmt.Printf("Signed in. Home: %s\n", home)
			return nil
		}
		if !interactive || attempt == maxLoginAttempts {
			return err
		}
		fmt.Fprintf(os.Stderr, "Login failed: %s\n", describe(err))
	}
}

func reports(ctx context.Context, s *portal.Session) error {
	d, err := s.Dashboard(ctx)
	if err != nil {
		return err
	}
	depts, err := s.DepartmentStats()
	if err != nil {
		return err
	}
	defer depts.Close()
	depts.Load(ctx)
	top, err := s.TopRecruiters()
	if err != nil {
		return err
	}
	defer top.Close()
	top.Load(ctx)

	fmt.Println("Dashboard")
	for _, st := range d.Stats {
		fmt.Printf("  %-18s %s %s\n", st.Label, st.Value, st.Change)
	}
	fmt.Println("\nRecent activity")
	for _, a := range d.Activity {
		fmt.Printf("  %-30s %-40s %s\n", a.Title, a.Description, a.Time)
	}
	fmt.Println("\nDepartments")
	for _, dep := range depts.Items() {
		fmt.Printf("  %-20s %-16s %s\n", dep.Name, dep.Summary(), dep.AvgPackage)
	}
	fmt.Println("\nTop recruiters")
	for _, t := range top.Items() {
		fmt.Printf("  %-20s %4d hires  %s\n", t.Company, t.Hires, t.AvgPackage)
	}
	return nil
}

var stdin = bufio.NewReader(os.Stdin)

// readPassword reads without echo on a terminal and falls back to a plain
// line when stdin is piped.
func readPassword(prompt string) string {
	fmt.Fprint(os.Stderr, prompt)
	if fd := int(os.Stdin.Fd()); term.IsTerminal(fd) {
		pw, _ := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		return string(pw)
	}
	line, _ := stdin.ReadString('\n')
	return strings.TrimRight(line, "\r\n")
}

func usage(line string) error {
	return fmt.Errorf("Usage: %s", line)
}

func describe(err error) string {
	var se *sdk.StatusError
	var ne *sdk.NetworkError
	if errors.As(err, &se) || errors.As(err, &ne) {
		return sdk.Describe(err)
	}
	return err.Error()
}

func printNotice(n liststore.Notice) {
	fmt.Fprintf(os.Stderr, "[%s] %s: %s\n", n.Level, n.Title, n.Message)
}

func printUsage() {
	fmt.Println("CampusCatalyst portal CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  portal LOGIN <email> [--remember]")
	fmt.Println("  portal REGISTER <name> <email> <student|recruiter|placement> [company]")
	fmt.Println("  portal LOGOUT")
	fmt.Println("  portal WHOAMI")
	fmt.Println("  portal OPEN <path>")
	fmt.Println("  portal LIST <kind> [query]")
	fmt.Println("  portal CREATE <kind> <json>")
	fmt.Println("  portal UPDATE <kind> <id> <json>")
	fmt.Println("  portal DELETE <kind> <id>")
	fmt.Println("  portal STATUS <applicantID> <status>")
	fmt.Println("  portal APPROVE <recruiterID>")
	fmt.Println("  portal APPLY <jobID>")
	fmt.Println("  portal PROFILE [json] [logo file]    (recruiters: PROFILE DELETE removes it)")
	fmt.Println("  portal REPORTS")
	fmt.Println("  portal ANALYZE <resume file>")
	fmt.Println("\nKinds: jobs, applications, applicants, students, recruiters, drives, departments, top-recruiters")
	fmt.Println("\nEnvironment Variables:")
	fmt.Println("  PORTAL_API_BASE_URL   API root (default: http://localhost:5000/api)")
	fmt.Println("  PORTAL_STATE_DIR      Where the remembered sign-in is kept")
	fmt.Println("  PORTAL_MASTER_KEY     Seals the remembered token (32 chars or 64 hex digits)")
	fmt.Println("  PORTAL_HTTP_TIMEOUT   Per-request timeout, e.g. 10s")
	fmt.Println("  PORTAL_PASSWORD       Password for non-interactive LOGIN")
}

func printJSON(v any) {
	bytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Println(v)
		return
	}
	fmt.Println(string(bytes))
}
