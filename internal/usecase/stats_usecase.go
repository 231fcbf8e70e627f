package usecase

import (
	"context"

	"vigil/internal/domain/entity"
)

// Statistics is the aggregated fall history for the chart and list views.
//
// Weekly buckets are indexed Monday(0)..Sunday(6) within the current week;
// monthly buckets cover day-of-month ranges [1,7] [8,14] [15,21] [22,end] of
// the current month. A record counts toward the weekly buckets only when it
// also falls inside the current month, so WeeklyCount never exceeds
// MonthlyCount.
type Statistics struct {
	WeeklyCount    int                         `json:"weeklyCount"`
	MonthlyCount   int                         `json:"monthlyCount"`
	WeeklyBuckets  [7]int                      `json:"weeklyBuckets"`
	MonthlyBuckets [4]int                      `json:"monthlyBuckets"`
	Records        []*entity.FallHistoryRecord `json:"records"`
}

// StatsUsecase aggregates the device's fall history.
type StatsUsecase interface {
	// GetStatistics fetches the device's history from the backend and
	// aggregates it relative to the current local time.
	GetStatistics(ctx context.Context) (*Statistics, error)
}
