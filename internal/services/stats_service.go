package services

import (
	"context"
	"log/slog"
	"time"

	"trackd.sh/internal/metrics"
	"trackd.sh/internal/models"
	"trackd.sh/internal/repository"
)

// AssetStats is the dashboard aggregate over the active asset population.
// Counts reflect currently persisted status values; staleness that occurred
// since the last write is not re-derived here.
type AssetStats struct {
	Total      int64                      `json:"total"`
	Online     int64                      `json:"online"`
	Offline    int64                      `json:"offline"`
	LowBattery int64                      `json:"lowBattery"`
	ByType     map[models.AssetType]int64 `json:"byType"`
}

// StatsFilter scopes the aggregation, optionally to one organization.
type StatsFilter struct {
	OrganizationID string
}

// StatsService computes asset population aggregates for dashboards. Pure
// read path: it never touches the write path or re-derives status.
type StatsService struct {
	repo   repository.AssetRepository
	logger *slog.Logger
}

// NewStatsService creates a stats aggregator on the given record store.
func NewStatsService(repo repository.AssetRepository) *StatsService {
	return &StatsService{
		repo:   repo,
		logger: slog.Default().With("component", "stats-service"),
	}
}

// GetAssetStats counts active assets by status and by type. An empty
// population yields zero counts, not an error.
func (s *StatsService) GetAssetStats(ctx context.Context, filter StatsFilter) (*AssetStats, error) {
	active := true
	counts, err := s.repo.Counts(ctx, repository.AssetFilter{
		OrganizationID: filter.OrganizationID,
		IsActive:       &active,
	})
	if err != nil {
		return nil, err
	}

	stats := &AssetStats{
		Total:      counts.Total,
		Online:     counts.ByStatus[models.StatusOnline],
		Offline:    counts.ByStatus[models.StatusOffline],
		LowBattery: counts.ByStatus[models.StatusLowBattery],
		ByType:     make(map[models.AssetType]int64, len(models.AssetTypes)),
	}
	for _, t := range models.AssetTypes {
		stats.ByType[t] = counts.ByType[t]
	}
	return stats, nil
}

// RunExporter refreshes the Prometheus population gauges on the given
// interval until ctx is cancelled. Read-only: it intentionally does not
// re-derive or persist status, so a silent asset stays in its last persisted
// status between writes.
func (s *StatsService) RunExporter(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.export(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.export(ctx)
		}
	}
}

func (s *StatsService) export(ctx context.Context) {
	stats, err := s.GetAssetStats(ctx, StatsFilter{})
	if err != nil {
		s.logger.Error("stats export failed", "error", err)
		metrics.RecordError("stats-service", "store", "export")
		return
	}

	metrics.AssetsTotal.Set(float64(stats.Total))
	metrics.AssetsByStatus.WithLabelValues(string(models.StatusOnline)).Set(float64(stats.Online))
	metrics.AssetsByStatus.WithLabelValues(string(models.StatusOffline)).Set(float64(stats.Offline))
	metrics.AssetsByStatus.WithLabelValues(string(models.StatusLowBattery)).Set(float64(stats.LowBattery))
	for t, count := range stats.ByType {
		metrics.AssetsByType.WithLabelValues(string(t)).Set(float64(count))
	}
}
