package impl

import (
	"context"
	"log/slog"
	"sort"
	"time"

	deliverycontext "vigil/internal/delivery/context"
	"vigil/internal/domain/entity"
	domainerrors "vigil/internal/domain/errors"
	"vigil/internal/domain/repository"
	"vigil/internal/domain/service"
	"vigil/internal/usecase"

	"github.com/pkg/errors"
)

// statsService implements the StatsUsecase interface.
type statsService struct {
	backend  service.BackendService
	sessions repository.SessionRepository
	logger   *slog.Logger
	now      func() time.Time
}

// NewStatsService is the constructor for statsService.
func NewStatsService(
	backend service.BackendService,
	sessions repository.SessionRepository,
	logger *slog.Logger,
) usecase.StatsUsecase {
	return &statsService{
		backend:  backend,
		sessions: sessions,
		logger:   logger,
		now:      time.Now,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *statsService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// GetStatistics fetches the device's fall history and aggregates it relative
// to the current local time.
func (srv *statsService) GetStatistics(ctx context.Context) (*usecase.Statistics, error) {
	// 1. Resolve the device from the persisted session
	session, err := srv.sessions.Load(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, domainerrors.ErrNotAuthenticated
		}

		return nil, errors.Wrap(err, "failed to load session")
	}

	deviceID := session.DeviceID()
	if deviceID == "" {
		return nil, domainerrors.ErrNoDevicePaired
	}

	// 2. Fetch the raw history
	records, err := srv.backend.FetchFallHistory(ctx, deviceID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch fall history")
	}

	// 3. Aggregate
	stats := aggregateStatistics(records, srv.now())

	srv.log(ctx).Debug("Aggregated fall history",
		slog.String("device_id", deviceID),
		slog.Int("records", len(records)),
		slog.Int("weekly", stats.WeeklyCount),
		slog.Int("monthly", stats.MonthlyCount),
	)

	return stats, nil
}

// aggregateStatistics partitions an unordered history into the weekly and
// monthly buckets the chart renders. Pure: re-run in full on every request.
//
// The weekly buckets only count records that are also inside the current
// month, so a week spanning a month boundary loses its leading days and the
// weekly total can never exceed the monthly one.
func aggregateStatistics(records []*entity.FallHistoryRecord, now time.Time) *usecase.Statistics {
	stats := &usecase.Statistics{}

	weekStart := startOfWeek(now)
	currentMonth := now.Month()
	currentYear := now.Year()

	for _, record := range records {
		ts := record.Timestamp.In(now.Location())

		if ts.Month() != currentMonth || ts.Year() != currentYear {
			continue
		}

		stats.MonthlyCount++
		switch day := ts.Day(); {
		case day <= 7:
			stats.MonthlyBuckets[0]++
		case day <= 14:
			stats.MonthlyBuckets[1]++
		case day <= 21:
			stats.MonthlyBuckets[2]++
		default:
			stats.MonthlyBuckets[3]++
		}

		if !ts.Before(weekStart) {
			stats.WeeklyCount++
			stats.WeeklyBuckets[isoWeekdayIndex(ts)]++
		}
	}

	// Newest first for the chronological list view
	stats.Records = append(stats.Records, records...)
	sort.Slice(stats.Records, func(i, j int) bool {
		return stats.Records[i].Timestamp.After(stats.Records[j].Timestamp)
	})

	return stats
}

// startOfWeek returns Monday 00:00:00 local time of now's week.
func startOfWeek(now time.Time) time.Time {
	monday := now.AddDate(0, 0, -(isoWeekdayIndex(now)))

	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, now.Location())
}

// isoWeekdayIndex maps Monday to 0 .. Sunday to 6.
func isoWeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
