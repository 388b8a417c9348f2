package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kitcsbs/go-tracker/internal/models"
	"gorm.io/gorm"
)

// StudentRepository handles database operations for students and their
// platform snapshots.
type StudentRepository struct {
	db *gorm.DB
}

// NewStudentRepository creates a new student repository
func NewStudentRepository(db *gorm.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// Create inserts a new student record
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

// GetByRollNumber retrieves a student by roll number
func (r *StudentRepository) GetByRollNumber(ctx context.Context, rollNumber string) (*models.Student, error) {
	var student models.Student
	err := r.db.WithContext(ctx).
		Where("roll_number = ?", rollNumber).
		First(&student).Error

	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}

	return &student, nil
}

// ActiveStudents retrieves all active students in roll-number order
func (r *StudentRepository) ActiveStudents(ctx context.Context) ([]*models.Student, error) {
	var students []*models.Student
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("roll_number ASC").
		Find(&students).Error

	if err != nil {
		return nil, fmt.Errorf("failed to get active students: %w", err)
	}

	return students, nil
}

// AllStudents retrieves every student, active or not
func (r *StudentRepository) AllStudents(ctx context.Context) ([]*models.Student, error) {
	var students []*models.Student
	err := r.db.WithContext(ctx).
		Order("roll_number ASC").
		Find(&students).Error

	if err != nil {
		return nil, fmt.Errorf("failed to get students: %w", err)
	}

	return students, nil
}

// TouchLastScraped records a successful scrape pass for a student
func (r *StudentRepository) TouchLastScraped(ctx context.Context, studentID uint, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Student{}).
		Where("id = ?", studentID).
		Update("last_scraped_at", at).Error
}

// UpsertSnapshot creates or replaces the snapshot row for one
// (student, platform) pair. Other platforms' rows are never touched, so a
// partial batch can refresh one platform without clobbering the rest.
func (r *StudentRepository) UpsertSnapshot(ctx context.Context, studentID uint, platform models.Platform, metrics any, at time.Time) error {
	encoded, err := json.Marshal(metrics)
	if err != nil {
		return fmt.Errorf("failed to encode metrics: %w", err)
	}

	var existing models.PlatformSnapshot
	err = r.db.WithContext(ctx).
		Where("student_id = ? AND platform = ?", studentID, string(platform)).
		First(&existing).Error

	if err == gorm.ErrRecordNotFound {
		snapshot := models.PlatformSnapshot{
			StudentID:   studentID,
			Platform:    string(platform),
			Metrics:     string(encoded),
			LastUpdated: at,
		}
		return r.db.WithContext(ctx).Create(&snapshot).Error
	}
	if err != nil {
		return fmt.Errorf("failed to check existing snapshot: %w", err)
	}

	existing.Metrics = string(encoded)
	existing.LastUpdated = at
	return r.db.WithContext(ctx).Save(&existing).Error
}

// GetSnapshot retrieves the snapshot for one (student, platform) pair
func (r *StudentRepository) GetSnapshot(ctx context.Context, studentID uint, platform models.Platform) (*models.PlatformSnapshot, error) {
	var snapshot models.PlatformSnapshot
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND platform = ?", studentID, string(platform)).
		First(&snapshot).Error

	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	return &snapshot, nil
}

// SnapshotsByStudent retrieves all platform snapshots for a student
func (r *StudentRepository) SnapshotsByStudent(ctx context.Context, studentID uint) ([]*models.PlatformSnapshot, error) {
	var snapshots []*models.PlatformSnapshot
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("platform ASC").
		Find(&snapshots).Error

	if err != nil {
		return nil, fmt.Errorf("failed to get snapshots: %w", err)
	}

	return snapshots, nil
}

// UpdateCodeChefContests patches only the contest counters inside a
// student's CodeChef snapshot, leaving every other metric as scraped.
func (r *StudentRepository) UpdateCodeChefContests(ctx context.Context, studentID uint, contests int, at time.Time) error {
	snapshot, err := r.GetSnapshot(ctx, studentID, models.PlatformCodeChef)
	if err != nil {
		return err
	}
	if snapshot == nil {
		return nil
	}

	var metrics models.CodeChefMetrics
	if err := json.Unmarshal([]byte(snapshot.Metrics), &metrics); err != nil {
		return fmt.Errorf("failed to decode codechef metrics: %w", err)
	}

	metrics.Contests = contests
	metrics.ContestsAttended = contests
	metrics.LastUpdated = at

	encoded, err := json.Marshal(metrics)
	if err != nil {
		return fmt.Errorf("failed to encode codechef metrics: %w", err)
	}

	snapshot.Metrics = string(encoded)
	snapshot.LastUpdated = at
	return r.db.WithContext(ctx).Save(snapshot).Error
}

// GetStats retrieves database statistics
func (r *StudentRepository) GetStats(ctx context.Context) (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var totalStudents int64
	if err := r.db.WithContext(ctx).Model(&models.Student{}).Count(&totalStudents).Error; err != nil {
		return nil, err
	}
	stats["total_students"] = totalStudents

	var activeStudents int64
	if err := r.db.WithContext(ctx).Model(&models.Student{}).Where("is_active = ?", true).Count(&activeStudents).Error; err != nil {
		return nil, err
	}
	stats["active_students"] = activeStudents

	var totalSnapshots int64
	if err := r.db.WithContext(ctx).Model(&models.PlatformSnapshot{}).Count(&totalSnapshots).Error; err != nil {
		return nil, err
	}
	stats["total_snapshots"] = totalSnapshots

	perPlatform := make(map[string]int64)
	for _, platform := range models.AllPlatforms() {
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.PlatformSnapshot{}).Where("platform = ?", string(platform)).Count(&count).Error; err != nil {
			return nil, err
		}
		perPlatform[string(platform)] = count
	}
	stats["snapshots_by_platform"] = perPlatform

	return stats, nil
}
