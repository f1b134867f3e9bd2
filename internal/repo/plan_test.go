package repo

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/crucial707/studybuddy/internal/models"
	"github.com/stretchr/testify/require"
)

func TestPlanRepo_AppendAndFilter(t *testing.T) {
	r, err := NewPlanRepo(filepath.Join(t.TempDir(), "nested", "study_plan.json"))
	require.NoError(t, err)
	ctx := context.Background()

	plans, err := r.List(ctx)
	require.NoError(t, err)
	require.Empty(t, plans)

	math := models.PlanEntry{Subject: "Maths", Hours: 2, Date: "2026-10-19", Start: "08:00", End: "10:00"}
	phys := models.PlanEntry{Subject: "Physics", Hours: 1, Date: "2026-10-20", Start: "09:00", End: "10:00"}
	chem := models.PlanEntry{Subject: "Chemistry", Hours: 1, Date: "2026-10-19", Start: "11:00", End: "12:00"}
	for _, p := range []models.PlanEntry{math, phys, chem} {
		require.NoError(t, r.Append(ctx, p))
	}

	day, err := r.ForDate(ctx, "2026-10-19")
	require.NoError(t, err)
	require.Equal(t, []models.PlanEntry{math, chem}, day)

	none, err := r.ForDate(ctx, "2030-01-01")
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestPlanRepo_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "study_plan.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	r, err := NewPlanRepo(path)
	require.NoError(t, err)
	_, err = r.List(context.Background())
	require.Error(t, err)
}
