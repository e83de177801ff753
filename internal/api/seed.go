package api

import (
	"fmt"

	"github.com/campuscatalyst/portal/internal/fallback"
	"github.com/campuscatalyst/portal/pkg/engine"
	"github.com/campuscatalyst/portal/pkg/schema"
)

// seedKinds are the shared collections a fresh store is filled with.
var seedKinds = []schema.Kind{
	schema.KindJob,
	schema.KindStudent,
	schema.KindRecruiter,
	schema.KindDrive,
	schema.KindDepartment,
	schema.KindTopRecruiter,
}

// Seed fills an empty shared scope with the example records. Ids are left to
// the store. It reports whether anything was written.
func Seed(store engine.Store) (bool, error) {
	if cols, err := store.Collections(engine.SharedScope); err == nil && len(cols) > 0 {
		return false, nil
	}

	for _, kind := range seedKinds {
		records, _ := fallback.For(kind)
		for _, r := range records {
			rec, err := encodeRecord(r)
			if err != nil {
				return true, fmt.Errorf("seed %s: %w", kind, err)
			}
			delete(rec, engine.IDField)
			if _, err := store.Insert(engine.SharedScope, string(kind), rec); err != nil {
				return true, fmt.Errorf("seed %s: %w", kind, err)
			}
		}
	}
	return true, nil
}
