package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/crucial707/studybuddy/internal/models"
)

// PlanRepo stores study-plan entries as one JSON array. Append is a
// read-modify-write cycle; concurrent writers lose updates (last write wins).
type PlanRepo struct {
	Path string
}

// NewPlanRepo returns a PlanRepo for path, creating its directory.
func NewPlanRepo(path string) (*PlanRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create plan dir: %w", err)
	}
	return &PlanRepo{Path: path}, nil
}

// List returns every entry, or an empty list when the file does not exist yet.
func (r *PlanRepo) List(ctx context.Context) ([]models.PlanEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(r.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return []models.PlanEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read plans: %w", err)
	}
	var plans []models.PlanEntry
	if err := json.Unmarshal(data, &plans); err != nil {
		return nil, fmt.Errorf("decode plans: %w", err)
	}
	if plans == nil {
		plans = []models.PlanEntry{}
	}
	return plans, nil
}

// Append adds one entry to the end of the list.
func (r *PlanRepo) Append(ctx context.Context, entry models.PlanEntry) error {
	plans, err := r.List(ctx)
	if err != nil {
		return err
	}
	plans = append(plans, entry)
	data, err := json.MarshalIndent(plans, "", "    ")
	if err != nil {
		return fmt.Errorf("encode plans: %w", err)
	}
	return writeFileAtomic(r.Path, data, 0o644)
}

// ForDate returns the entries whose date equals date (YYYY-MM-DD), in insertion order.
func (r *PlanRepo) ForDate(ctx context.Context, date string) ([]models.PlanEntry, error) {
	plans, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.PlanEntry, 0, len(plans))
	for _, p := range plans {
		if p.Date == date {
			out = append(out, p)
		}
	}
	return out, nil
}
