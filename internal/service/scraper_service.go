package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/kitcsbs/go-tracker/internal/extract"
	"github.com/kitcsbs/go-tracker/internal/models"
	"github.com/kitcsbs/go-tracker/internal/normalize"
	"github.com/kitcsbs/go-tracker/internal/providers"
	"github.com/kitcsbs/go-tracker/pkg/logger"
	"github.com/kitcsbs/go-tracker/pkg/metrics"
	"go.uber.org/zap"
)

// Store is the persistence surface the coordinator writes through.
type Store interface {
	ActiveStudents(ctx context.Context) ([]*models.Student, error)
	UpsertSnapshot(ctx context.Context, studentID uint, platform models.Platform, metrics any, at time.Time) error
	TouchLastScraped(ctx context.Context, studentID uint, at time.Time) error
	UpdateCodeChefContests(ctx context.Context, studentID uint, contests int, at time.Time) error
	GetStats(ctx context.Context) (map[string]interface{}, error)
}

// Limiter paces outbound requests. Wait blocks for the configured delay or
// until the context is cancelled.
type Limiter interface {
	Wait(ctx context.Context) error
}

type delayLimiter struct {
	delay time.Duration
}

// NewDelayLimiter returns a limiter that sleeps a fixed delay between
// requests. The delay is a courtesy to third-party services, not a
// correctness mechanism.
func NewDelayLimiter(delay time.Duration) Limiter {
	return &delayLimiter{delay: delay}
}

func (l *delayLimiter) Wait(ctx context.Context) error {
	if l.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(l.delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ScraperService coordinates batch scraping across students and platforms.
type ScraperService struct {
	store      Store
	providers  []providers.Provider
	limiter    Limiter
	reportFile string
}

// NewScraperService creates a new scraper service
func NewScraperService(store Store, provs []providers.Provider, limiter Limiter, reportFile string) *ScraperService {
	return &ScraperService{
		store:      store,
		providers:  provs,
		limiter:    limiter,
		reportFile: reportFile,
	}
}

// RunBatch scrapes every active student across all platforms. One platform
// or student failure never aborts the batch; defaults are persisted when
// every source strategy fails so downstream reads never see missing keys.
// The batch stops between students when the context is cancelled.
func (s *ScraperService) RunBatch(ctx context.Context) (*models.BatchReport, error) {
	report := &models.BatchReport{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}

	students, err := s.store.ActiveStudents(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to load students: %w", err)
	}

	logger.Info("Starting batch scrape",
		zap.String("runID", report.RunID),
		zap.Int("students", len(students)),
	)

	for _, student := range students {
		if err := ctx.Err(); err != nil {
			logger.Warn("Batch cancelled",
				zap.String("runID", report.RunID),
				zap.String("rollNumber", student.RollNumber),
			)
			s.finish(report)
			return report, err
		}
		s.scrapeStudent(ctx, student, report)
	}

	s.finish(report)

	logger.Info("Batch scrape finished",
		zap.String("runID", report.RunID),
		zap.Int("updated", report.Updated),
		zap.Int("failed", report.Failed),
		zap.Int("total", report.Total),
		zap.Duration("elapsed", report.FinishedAt.Sub(report.StartedAt)),
	)

	return report, nil
}

func (s *ScraperService) scrapeStudent(ctx context.Context, student *models.Student, report *models.BatchReport) {
	succeeded, failed := 0, 0
	now := time.Now()

	for _, provider := range s.providers {
		platform := provider.Platform()
		username := student.Username(platform)
		if username == "" {
			continue
		}

		if err := s.limiter.Wait(ctx); err != nil {
			return
		}

		result := s.scrapeUnit(ctx, provider, student, username, now)
		report.Add(result)
		metrics.RecordUnit(string(platform), result.OK)
		if result.OK {
			succeeded++
		} else {
			failed++
			logger.Warn("Scrape unit failed",
				zap.String("rollNumber", student.RollNumber),
				zap.String("platform", string(platform)),
				zap.String("reason", result.Reason),
			)
		}
	}

	if succeeded > 0 {
		if err := s.store.TouchLastScraped(ctx, student.ID, now); err != nil {
			logger.Error("Failed to record scrape time",
				zap.String("rollNumber", student.RollNumber),
				zap.Error(err),
			)
		}
	}

	if succeeded > 0 || failed > 0 {
		report.CountStudent(succeeded, failed)
	}
}

// scrapeUnit runs one (student, platform) pair through fetch, extract,
// normalize and persist. Panics from a provider are contained here so one
// misbehaving source cannot take down the batch.
func (s *ScraperService) scrapeUnit(ctx context.Context, provider providers.Provider, student *models.Student, username string, now time.Time) models.BatchResult {
	platform := provider.Platform()
	result := models.BatchResult{
		RollNumber: student.RollNumber,
		Platform:   platform,
		Username:   username,
		Timestamp:  now,
	}

	partial, err := s.fetch(ctx, provider, username)
	if err != nil {
		result.Reason = err.Error()
		// Persist defaults so the record stays structurally complete.
		partial = extract.Partial{}
	}

	record := normalize.Record(platform, username, partial, now)
	result.Metrics = record

	if upsertErr := s.store.UpsertSnapshot(ctx, student.ID, platform, record, now); upsertErr != nil {
		result.Reason = fmt.Sprintf("persistence: %v", upsertErr)
		return result
	}

	result.OK = err == nil
	return result
}

func (s *ScraperService) fetch(ctx context.Context, provider providers.Provider, username string) (partial extract.Partial, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scraper panic: %v", r)
		}
	}()
	return provider.Fetch(ctx, username), nil
}

func (s *ScraperService) finish(report *models.BatchReport) {
	report.FinishedAt = time.Now()
	metrics.RecordBatch(report.FinishedAt.Sub(report.StartedAt), report.Updated, report.Failed, report.Total)
	s.writeReport(report)
}

// writeReport drops the batch report to disk when a path is configured.
func (s *ScraperService) writeReport(report *models.BatchReport) {
	if s.reportFile == "" {
		return
	}
	encoded, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		logger.Error("Failed to encode batch report", zap.Error(err))
		return
	}
	if err := os.WriteFile(s.reportFile, encoded, 0o644); err != nil {
		logger.Error("Failed to write batch report",
			zap.String("path", s.reportFile),
			zap.Error(err),
		)
	}
}

// RefreshCodeChefContests re-reads contest participation for every active
// student with a CodeChef handle and patches only the contest counters in
// the stored snapshot. Counts of zero are ignored since the profile page
// frequently omits the contest section.
func (s *ScraperService) RefreshCodeChefContests(ctx context.Context) (int, error) {
	var codechef providers.Provider
	for _, p := range s.providers {
		if p.Platform() == models.PlatformCodeChef {
			codechef = p
			break
		}
	}
	if codechef == nil {
		return 0, fmt.Errorf("no codechef provider configured")
	}

	students, err := s.store.ActiveStudents(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load students: %w", err)
	}

	updated := 0
	for _, student := range students {
		if err := ctx.Err(); err != nil {
			return updated, err
		}
		username := student.CodeChefUsername
		if username == "" {
			continue
		}

		if err := s.limiter.Wait(ctx); err != nil {
			return updated, err
		}

		partial, err := s.fetch(ctx, codechef, username)
		if err != nil {
			logger.Warn("CodeChef contest refresh failed",
				zap.String("rollNumber", student.RollNumber),
				zap.Error(err),
			)
			continue
		}

		contests, ok := partial.Int(extract.FieldContests)
		if !ok || contests <= 0 {
			continue
		}

		now := time.Now()
		if err := s.store.UpdateCodeChefContests(ctx, student.ID, contests, now); err != nil {
			logger.Error("Failed to patch contest counters",
				zap.String("rollNumber", student.RollNumber),
				zap.Error(err),
			)
			continue
		}
		updated++
	}

	logger.Info("CodeChef contest refresh finished", zap.Int("updated", updated))
	return updated, nil
}

// GetStats retrieves service statistics
func (s *ScraperService) GetStats(ctx context.Context) (map[string]interface{}, error) {
	return s.store.GetStats(ctx)
}
