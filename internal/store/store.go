// Package store persists facilities and analysis runs. Two backends are
// provided: SQLite for single-user CLI use and Postgres for shared
// deployments behind the HTTP API.
package store

import (
	"context"
	"time"

	"github.com/sells-group/facility-atlas/internal/model"
	"github.com/sells-group/facility-atlas/internal/overlap"
)

// RunStatus tracks the lifecycle of an analysis run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// AnalysisRun is one recorded execution of the overlap analysis with the
// configuration it ran under and, once complete, its full result.
type AnalysisRun struct {
	ID        string          `json:"id"`
	Status    RunStatus       `json:"status"`
	Config    overlap.Config  `json:"config"`
	Result    *overlap.Result `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// FacilityFilter specifies criteria for listing facilities.
type FacilityFilter struct {
	Category model.Category `json:"category,omitempty"`
	City     string         `json:"city,omitempty"`
	County   string         `json:"county,omitempty"`
	Source   string         `json:"source,omitempty"`
	Limit    int            `json:"limit,omitempty"`
	Offset   int            `json:"offset,omitempty"`
}

// Store defines the persistence interface.
type Store interface {
	// Facilities
	UpsertFacilities(ctx context.Context, facilities []model.Facility) (int, error)
	ListFacilities(ctx context.Context, filter FacilityFilter) ([]model.Facility, error)
	CountByCategory(ctx context.Context) (map[model.Category]int, error)
	DeleteFacilities(ctx context.Context, ids []string) (int, error)
	DeleteFacilitiesBySource(ctx context.Context, source string) (int, error)

	// Analysis runs
	CreateRun(ctx context.Context, cfg overlap.Config) (*AnalysisRun, error)
	CompleteRun(ctx context.Context, runID string, result *overlap.Result) error
	FailRun(ctx context.Context, runID string, message string) error
	GetRun(ctx context.Context, runID string) (*AnalysisRun, error)
	ListRuns(ctx context.Context, limit int) ([]AnalysisRun, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
