package models

import (
	"time"
)

// LeetCodeMetrics is the canonical normalized record for a LeetCode profile.
// Every numeric field defaults to 0 so downstream aggregation never branches
// on missing keys.
type LeetCodeMetrics struct {
	Username         string    `json:"username"`
	Rating           int       `json:"rating"`
	MaxRating        int       `json:"maxRating"`
	ProblemsSolved   int       `json:"problemsSolved"`
	Rank             int       `json:"rank"`
	Contests         int       `json:"contests"`
	ContestsAttended int       `json:"contestsAttended"`
	LastWeekRating   int       `json:"lastWeekRating"`
	LastUpdated      time.Time `json:"lastUpdated"`
}

// CodeChefMetrics is the canonical normalized record for a CodeChef profile.
type CodeChefMetrics struct {
	Username         string    `json:"username"`
	Rating           int       `json:"rating"`
	MaxRating        int       `json:"maxRating"`
	ProblemsSolved   int       `json:"problemsSolved"`
	Rank             int       `json:"rank"`
	Stars            string    `json:"stars"`
	Contests         int       `json:"contests"`
	ContestsAttended int       `json:"contestsAttended"`
	LastWeekRating   int       `json:"lastWeekRating"`
	LastUpdated      time.Time `json:"lastUpdated"`
}

// CodeforcesMetrics is the canonical normalized record for a Codeforces
// profile. Rank is the textual title ("newbie", "pupil", ...), not a number.
type CodeforcesMetrics struct {
	Username         string    `json:"username"`
	Rating           int       `json:"rating"`
	MaxRating        int       `json:"maxRating"`
	ProblemsSolved   int       `json:"problemsSolved"`
	Rank             string    `json:"rank"`
	Contests         int       `json:"contests"`
	ContestsAttended int       `json:"contestsAttended"`
	LastWeekRating   int       `json:"lastWeekRating"`
	LastUpdated      time.Time `json:"lastUpdated"`
}

// GitHubMetrics is the canonical normalized record for a GitHub profile.
// Commits mirrors Contributions; the profile does not expose an exact
// commit count.
type GitHubMetrics struct {
	Username              string    `json:"username"`
	Repositories          int       `json:"repositories"`
	Followers             int       `json:"followers"`
	Following             int       `json:"following"`
	Contributions         int       `json:"contributions"`
	Commits               int       `json:"commits"`
	Streak                int       `json:"streak"`
	LongestStreak         int       `json:"longestStreak"`
	LastWeekContributions int       `json:"lastWeekContributions"`
	LastUpdated           time.Time `json:"lastUpdated"`
}

// CodolioMetrics is the canonical normalized record for a Codolio profile.
type CodolioMetrics struct {
	Username         string    `json:"username"`
	TotalActiveDays  int       `json:"totalActiveDays"`
	TotalContests    int       `json:"totalContests"`
	TotalSubmissions int       `json:"totalSubmissions"`
	Badges           []Badge   `json:"badges"`
	LastUpdated      time.Time `json:"lastUpdated"`
}

// Badge is pass-through profile metadata.
type Badge struct {
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

// ContributionDay is one cell of a contribution calendar. Count is an
// estimate bucketed from the 0-4 intensity level when the source does not
// expose exact counts.
type ContributionDay struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
	Level int       `json:"level"`
}

// StreakSummary is derived from a dated activity series. TotalContributions
// is the externally reported total when available, never a sum of the
// estimated per-day counts.
type StreakSummary struct {
	TotalContributions int `json:"totalContributions"`
	CurrentStreak      int `json:"currentStreak"`
	LongestStreak      int `json:"longestStreak"`
}
