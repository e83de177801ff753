package fallback

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuscatalyst/portal/pkg/schema"
)

func TestForIsDeterministic(t *testing.T) {
	for _, kind := range schema.Kinds() {
		first, ok := For(kind)
		require.True(t, ok, "kind %s", kind)
		second, _ := For(kind)
		assert.Equal(t, first, second, "kind %s", kind)
		assert.NotEmpty(t, first, "kind %s", kind)
	}
}

func TestForUnknownKind(t *testing.T) {
	_, ok := For(schema.Kind("bogus"))
	assert.False(t, ok)
}

func TestReturnsFreshCopies(t *testing.T) {
	drives := Drives()
	drives[0].Name = "changed"
	assert.Equal(t, "Amazon Campus Drive", Drives()[0].Name)
}

func TestIdentifiersAreUniqueAndNamespaced(t *testing.T) {
	seen := map[string]bool{}
	for _, kind := range schema.Kinds() {
		records, _ := For(kind)
		for _, rec := range records {
			raw, err := json.Marshal(rec)
			require.NoError(t, err)
			var fields map[string]any
			require.NoError(t, json.Unmarshal(raw, &fields))

			id, _ := fields["id"].(string)
			require.True(t, strings.HasPrefix(id, IDPrefix), "id %q", id)
			assert.False(t, schema.IsTempID(id))
			assert.False(t, seen[id], "duplicate id %q", id)
			seen[id] = true
		}
	}
}

// Every field a real API record carries (non-omitempty json tags) must also be
// present on the example record.
func TestFieldCompatibleWithAPIShape(t *testing.T) {
	check := func(t *testing.T, zero any, records []any) {
		raw, err := json.Marshal(zero)
		require.NoError(t, err)
		var want map[string]any
		require.NoError(t, json.Unmarshal(raw, &want))

		for _, rec := range records {
			raw, err := json.Marshal(rec)
			require.NoError(t, err)
			var got map[string]any
			require.NoError(t, json.Unmarshal(raw, &got))
			for field := range want {
				assert.Contains(t, got, field)
			}
		}
	}

	cases := map[schema.Kind]any{
		schema.KindJob:          schema.Job{},
		schema.KindApplication:  schema.Application{},
		schema.KindApplicant:    schema.Applicant{},
		schema.KindStudent:      schema.Student{},
		schema.KindRecruiter:    schema.Recruiter{},
		schema.KindDrive:        schema.Drive{},
		schema.KindDepartment:   schema.Department{},
		schema.KindTopRecruiter: schema.TopRecruiter{},
	}
	for kind, zero := range cases {
		t.Run(string(kind), func(t *testing.T) {
			records, _ := For(kind)
			check(t, zero, records)
		})
	}
}

func TestDisplayFieldsPopulated(t *testing.T) {
	for _, s := range Students() {
		assert.NotEmpty(t, s.Name)
		assert.NotEmpty(t, s.Status)
		assert.NotEmpty(t, s.Company)
	}
	for _, d := range Departments() {
		assert.NotEmpty(t, d.Summary())
	}
	assert.Len(t, DashboardStats(), 7)
	assert.NotEmpty(t, ResumeReport().Suggestions)
}
