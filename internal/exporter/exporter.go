package exporter

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nkurunziza/momo-ledger/internal/repository"
	"github.com/nkurunziza/momo-ledger/pkg/logger"
)

const snapshotFileName = "momo_snapshot.json"

// SummarySource provides the aggregate rows behind the snapshot.
type SummarySource interface {
	TotalsByStatus(ctx context.Context) ([]repository.StatusTotalsRow, error)
	TotalsByCategory(ctx context.Context) ([]repository.CategoryTotalsRow, error)
	DailyVolume(ctx context.Context) ([]repository.DailyVolumeRow, error)
	AccountSummary(ctx context.Context) ([]repository.AccountSummaryRow, error)
}

// Snapshot maps report names to their rows. It is regenerated wholesale
// per run; downstream consumers never see a partial update.
type Snapshot struct {
	GeneratedAt time.Time              `json:"generated_at"`
	Reports     map[string]interface{} `json:"reports"`
}

type Exporter struct {
	source SummarySource
	dir    string
}

func New(source SummarySource, dir string) *Exporter {
	return &Exporter{source: source, dir: dir}
}

// Build assembles the full snapshot from the store.
func (e *Exporter) Build(ctx context.Context) (*Snapshot, error) {
	byStatus, err := e.source.TotalsByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("totals by status: %w", err)
	}
	byCategory, err := e.source.TotalsByCategory(ctx)
	if err != nil {
		return nil, fmt.Errorf("totals by category: %w", err)
	}
	daily, err := e.source.DailyVolume(ctx)
	if err != nil {
		return nil, fmt.Errorf("daily volume: %w", err)
	}
	accounts, err := e.source.AccountSummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("account summary: %w", err)
	}

	return &Snapshot{
		GeneratedAt: time.Now().UTC(),
		Reports: map[string]interface{}{
			"totals_by_status":   byStatus,
			"totals_by_category": byCategory,
			"daily_volume":       daily,
			"account_summary":    accounts,
		},
	}, nil
}

// Write builds the snapshot and replaces the export file atomically, so
// the dashboard side never reads a half-written document.
func (e *Exporter) Write(ctx context.Context) (string, error) {
	snapshot, err := e.Build(ctx)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	final := filepath.Join(e.dir, snapshotFileName)
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		return "", fmt.Errorf("publish snapshot: %w", err)
	}

	logger.Info("snapshot exported", "path", final, "bytes", len(data))
	return final, nil
}
