package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/campuscatalyst/portal/internal/liststore"
	"github.com/campuscatalyst/portal/internal/portal"
	"github.com/campuscatalyst/portal/pkg/schema"
	"github.com/campuscatalyst/portal/pkg/sdk"
)

// dispatch runs a collection command against the view the role has for kind.
func dispatch(ctx context.Context, s *portal.Session, role schema.Role, kind schema.Kind, command string, args []string) error {
	if role == "" {
		return &portal.RedirectError{To: "/login"}
	}
	switch sdk.Collection(role, kind) {
	case sdk.PathStudentJobs:
		return collectionCmd(ctx, s.StudentJobs, command, args)
	case sdk.PathStudentApplications:
		return collectionCmd(ctx, s.StudentApplications, command, args)
	case sdk.PathRecruiterJobs:
		return collectionCmd(ctx, s.RecruiterJobs, command, args)
	case sdk.PathRecruiterApplicants:
		return collectionCmd(ctx, s.RecruiterApplicants, command, args)
	case sdk.PathPlacementStudents:
		return collectionCmd(ctx, s.PlacementStudents, command, args)
	case sdk.PathPlacementRecruiters:
		return collectionCmd(ctx, s.PlacementRecruiters, command, args)
	case sdk.PathPlacementJobs:
		return collectionCmd(ctx, s.PlacementJobs, command, args)
	case sdk.PathPlacementDrives:
		return collectionCmd(ctx, s.PlacementDrives, command, args)
	case sdk.PathDepartmentStats:
		return collectionCmd(ctx, s.DepartmentStats, command, args)
	case sdk.PathTopRecruiters:
		return collectionCmd(ctx, s.TopRecruiters, command, args)
	}
	return fmt.Errorf("no %q collection for role %s", kind, role)
}

// collectionCmd mounts the view, loads it and applies one command, the way a
// page is opened and then acted on.
func collectionCmd[T schema.Record[T]](ctx context.Context, open func() (*liststore.Store[T], error), command string, args []string) error {
	store, err := open()
	if err != nil {
		return err
	}
	defer store.Close()

	// a failed load leaves example data in the list and raises a notice
	_ = store.Load(ctx)

	switch command {
	case "LIST":
		store.SetQuery(strings.Join(args, " "))
		printJSON(store.Visible())

	case "CREATE":
		if len(args) < 1 {
			return usage("portal CREATE <kind> <json>")
		}
		var rec T
		if err := json.Unmarshal([]byte(args[0]), &rec); err != nil {
			return fmt.Errorf("invalid JSON: %w", err)
		}
		saved, err := store.Create(ctx, rec)
		if err != nil {
			return err
		}
		printJSON(saved)

	case "UPDATE":
		if len(args) < 2 {
			return usage("portal UPDATE <kind> <id> <json>")
		}
		patch := []byte(args[1])
		if !json.Valid(patch) {
			return fmt.Errorf("invalid JSON: %s", args[1])
		}
		saved, err := store.Update(ctx, args[0], func(cur T) T {
			json.Unmarshal(patch, &cur)
			return cur
		})
		if err != nil {
			return err
		}
		printJSON(saved)

	case "DELETE":
		if len(args) < 1 {
			return usage("portal DELETE <kind> <id>")
		}
		if err := store.Delete(ctx, args[0]); err != nil {
			return err
		}
		fmt.Println("OK")
	}
	return nil
}
