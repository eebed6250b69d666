package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"financial_forecast/pkg/core/projection"
	"financial_forecast/pkg/core/scenario"
)

var (
	// ErrNotFound is returned when no run has the requested ID.
	ErrNotFound = errors.New("projection run not found")
	// ErrInvalidRunID is returned for IDs that are not UUIDs.
	ErrInvalidRunID = errors.New("invalid projection run id")
)

// RunRecord is a stored projection run with the scenario that produced it.
type RunRecord struct {
	ID         string                 `json:"id"`
	Name       string                 `json:"name"`
	Variant    projection.Variant     `json:"variant"`
	Years      int                    `json:"years"`
	Balanced   bool                   `json:"balanced"`
	Scenario   *scenario.Scenario     `json:"scenario"`
	Projection *projection.Projection `json:"projection"`
	CreatedAt  time.Time              `json:"created_at"`
}

// RunSummary is the listing view of a RunRecord.
type RunSummary struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Variant   projection.Variant `json:"variant"`
	Years     int                `json:"years"`
	Balanced  bool               `json:"balanced"`
	CreatedAt time.Time          `json:"created_at"`
}

func (r *RunRecord) Summary() RunSummary {
	return RunSummary{
		ID:        r.ID,
		Name:      r.Name,
		Variant:   r.Variant,
		Years:     r.Years,
		Balanced:  r.Balanced,
		CreatedAt: r.CreatedAt,
	}
}

// ProjectionRepo stores runs in Postgres, or in a directory of JSON files
// when no pool is configured.
type ProjectionRepo struct {
	pool    *pgxpool.Pool
	fileDir string
}

// NewProjectionRepo creates a repository. With a nil pool and empty dir the
// archive defaults to .cache/projection_runs.
func NewProjectionRepo(pool *pgxpool.Pool, dir string) *ProjectionRepo {
	if pool == nil && dir == "" {
		dir = filepath.Join(".cache", "projection_runs")
	}
	return &ProjectionRepo{pool: pool, fileDir: dir}
}

// Backend names the active storage for logs.
func (r *ProjectionRepo) Backend() string {
	if r.pool != nil {
		return "postgres"
	}
	return "file:" + r.fileDir
}

// Save stores the run under a new ID and returns the record.
func (r *ProjectionRepo) Save(ctx context.Context, s *scenario.Scenario, p *projection.Projection) (*RunRecord, error) {
	if p == nil {
		return nil, fmt.Errorf("save run: nil projection")
	}
	rec := &RunRecord{
		ID:         uuid.NewString(),
		Variant:    p.Variant,
		Years:      len(p.Statements),
		Balanced:   p.Balanced(),
		Scenario:   s,
		Projection: p,
		CreatedAt:  time.Now().UTC(),
	}
	if s != nil {
		rec.Name = s.Name
	}

	runJSON, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal run: %w", err)
	}

	if r.pool != nil {
		query := `
			INSERT INTO projection_runs (id, name, variant, years, balanced, run_json, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		_, err = r.pool.Exec(ctx, query,
			rec.ID, rec.Name, string(rec.Variant), rec.Years, rec.Balanced, runJSON, rec.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to save run: %w", err)
		}
		return rec, nil
	}

	if err := os.MkdirAll(r.fileDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create run archive: %w", err)
	}
	if err := os.WriteFile(r.runPath(rec.ID), runJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write run file: %w", err)
	}
	return rec, nil
}

// Load returns the run with the given ID.
func (r *ProjectionRepo) Load(ctx context.Context, id string) (*RunRecord, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRunID, id)
	}
	id = parsed.String()

	var runJSON []byte
	if r.pool != nil {
		query := `SELECT run_json FROM projection_runs WHERE id = $1`
		err := r.pool.QueryRow(ctx, query, id).Scan(&runJSON)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
			}
			return nil, fmt.Errorf("failed to load run: %w", err)
		}
	} else {
		runJSON, err = os.ReadFile(r.runPath(id))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
			}
			return nil, fmt.Errorf("failed to read run file: %w", err)
		}
	}

	var rec RunRecord
	if err := json.Unmarshal(runJSON, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run: %w", err)
	}
	return &rec, nil
}

// List returns the newest runs first. limit <= 0 returns all.
func (r *ProjectionRepo) List(ctx context.Context, limit int) ([]RunSummary, error) {
	if r.pool != nil {
		return r.listDB(ctx, limit)
	}

	entries, err := os.ReadDir(r.fileDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []RunSummary{}, nil
		}
		return nil, fmt.Errorf("failed to read run archive: %w", err)
	}

	out := make([]RunSummary, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(r.fileDir, e.Name()))
		if err != nil {
			continue
		}
		var rec RunRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			continue
		}
		out = append(out, rec.Summary())
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *ProjectionRepo) listDB(ctx context.Context, limit int) ([]RunSummary, error) {
	query := `
		SELECT id, name, variant, years, balanced, created_at
		FROM projection_runs
		ORDER BY created_at DESC
	`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	out := []RunSummary{}
	for rows.Next() {
		var (
			s       RunSummary
			variant string
		)
		if err := rows.Scan(&s.ID, &s.Name, &variant, &s.Years, &s.Balanced, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		s.Variant = projection.Variant(variant)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *ProjectionRepo) runPath(id string) string {
	return filepath.Join(r.fileDir, id+".json")
}
