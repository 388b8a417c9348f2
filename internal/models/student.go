package models

import (
	"time"
)

// Platform identifies one external coding/activity site.
type Platform string

const (
	PlatformLeetCode   Platform = "leetcode"
	PlatformCodeChef   Platform = "codechef"
	PlatformCodeforces Platform = "codeforces"
	PlatformGitHub     Platform = "github"
	PlatformCodolio    Platform = "codolio"
)

// AllPlatforms returns the tracked platforms in scrape order.
func AllPlatforms() []Platform {
	return []Platform{
		PlatformLeetCode,
		PlatformCodeChef,
		PlatformCodeforces,
		PlatformGitHub,
		PlatformCodolio,
	}
}

// Student represents one roster member and their derived platform usernames.
// Usernames are derived once at import time; an empty value means the
// platform is skipped for that student.
type Student struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	Name               string    `gorm:"not null" json:"name"`
	RollNumber         string    `gorm:"uniqueIndex;not null" json:"roll_number"`
	Email              string    `json:"email"`
	Batch              string    `json:"batch"`
	Department         string    `json:"department"`
	Year               int       `json:"year"`
	LeetCodeUsername   string    `json:"leetcode_username"`
	CodeChefUsername   string    `json:"codechef_username"`
	CodeforcesUsername string    `json:"codeforces_username"`
	GitHubUsername     string    `json:"github_username"`
	CodolioUsername    string    `json:"codolio_username"`
	IsActive           bool      `gorm:"default:true" json:"is_active"`
	LastScrapedAt      time.Time `json:"last_scraped_at"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Username returns the student's derived username for a platform.
func (s *Student) Username(p Platform) string {
	switch p {
	case PlatformLeetCode:
		return s.LeetCodeUsername
	case PlatformCodeChef:
		return s.CodeChefUsername
	case PlatformCodeforces:
		return s.CodeforcesUsername
	case PlatformGitHub:
		return s.GitHubUsername
	case PlatformCodolio:
		return s.CodolioUsername
	}
	return ""
}

// PlatformSnapshot is one persisted normalized record for a
// (student, platform) pair. Metrics holds the canonical record as JSON so
// each platform keeps its own field set; updates replace a single row and
// never touch the other platforms' rows.
type PlatformSnapshot struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	StudentID   uint      `gorm:"uniqueIndex:idx_student_platform;not null" json:"student_id"`
	Platform    string    `gorm:"uniqueIndex:idx_student_platform;not null" json:"platform"`
	Metrics     string    `gorm:"type:text;not null" json:"metrics"`
	LastUpdated time.Time `gorm:"not null" json:"last_updated"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
