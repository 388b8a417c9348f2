// Package normalize maps sparse extractor output into the canonical
// per-platform record shapes. It is the single source of truth for what an
// empty record looks like: the "no username" short-circuit and the
// all-strategies-failed path both come through here.
package normalize

import (
	"time"

	"github.com/kitcsbs/go-tracker/internal/extract"
	"github.com/kitcsbs/go-tracker/internal/models"
)

// CodeforcesDefaultRank is the title Codeforces assigns to unrated users.
const CodeforcesDefaultRank = "newbie"

// Record builds the canonical record for a platform from a partial field
// set. Every field absent from the partial takes the platform default (0 for
// numerics, "" for strings, empty list for badges); lastUpdated is stamped
// with the extraction run's timestamp. The output field set is exactly the
// platform's canonical shape.
func Record(platform models.Platform, username string, partial extract.Partial, now time.Time) any {
	if partial == nil {
		partial = extract.Partial{}
	}
	switch platform {
	case models.PlatformLeetCode:
		return LeetCode(username, partial, now)
	case models.PlatformCodeChef:
		return CodeChef(username, partial, now)
	case models.PlatformCodeforces:
		return Codeforces(username, partial, now)
	case models.PlatformGitHub:
		return GitHub(username, partial, now)
	case models.PlatformCodolio:
		return Codolio(username, partial, now)
	}
	return nil
}

// Defaults returns the platform's empty record.
func Defaults(platform models.Platform, username string, now time.Time) any {
	return Record(platform, username, nil, now)
}

func LeetCode(username string, p extract.Partial, now time.Time) models.LeetCodeMetrics {
	rating := p.IntOr(extract.FieldRating, 0)
	contests := p.IntOr(extract.FieldContests, 0)
	return models.LeetCodeMetrics{
		Username:         username,
		Rating:           rating,
		MaxRating:        p.IntOr(extract.FieldMaxRating, rating),
		ProblemsSolved:   p.IntOr(extract.FieldProblemsSolved, 0),
		Rank:             p.IntOr(extract.FieldRank, 0),
		Contests:         contests,
		ContestsAttended: contests,
		LastUpdated:      now,
	}
}

func CodeChef(username string, p extract.Partial, now time.Time) models.CodeChefMetrics {
	rating := p.IntOr(extract.FieldRating, 0)
	contests := p.IntOr(extract.FieldContests, 0)
	return models.CodeChefMetrics{
		Username:         username,
		Rating:           rating,
		MaxRating:        p.IntOr(extract.FieldMaxRating, rating),
		ProblemsSolved:   p.IntOr(extract.FieldProblemsSolved, 0),
		Rank:             p.IntOr(extract.FieldRank, 0),
		Stars:            p.StringOr(extract.FieldStars, ""),
		Contests:         contests,
		ContestsAttended: contests,
		LastUpdated:      now,
	}
}

func Codeforces(username string, p extract.Partial, now time.Time) models.CodeforcesMetrics {
	rating := p.IntOr(extract.FieldRating, 0)
	contests := p.IntOr(extract.FieldContests, 0)
	return models.CodeforcesMetrics{
		Username:         username,
		Rating:           rating,
		MaxRating:        p.IntOr(extract.FieldMaxRating, rating),
		ProblemsSolved:   p.IntOr(extract.FieldProblemsSolved, 0),
		Rank:             p.StringOr(extract.FieldRank, CodeforcesDefaultRank),
		Contests:         contests,
		ContestsAttended: contests,
		LastUpdated:      now,
	}
}

func GitHub(username string, p extract.Partial, now time.Time) models.GitHubMetrics {
	contributions := p.IntOr(extract.FieldContributions, 0)
	return models.GitHubMetrics{
		Username:      username,
		Repositories:  p.IntOr(extract.FieldRepositories, 0),
		Followers:     p.IntOr(extract.FieldFollowers, 0),
		Following:     p.IntOr(extract.FieldFollowing, 0),
		Contributions: contributions,
		// The profile does not expose an exact commit count.
		Commits:       contributions,
		Streak:        p.IntOr(extract.FieldStreak, 0),
		LongestStreak: p.IntOr(extract.FieldLongestStreak, 0),
		LastUpdated:   now,
	}
}

func Codolio(username string, p extract.Partial, now time.Time) models.CodolioMetrics {
	badges := []models.Badge{}
	if v, ok := p[extract.FieldBadges]; ok {
		if b, ok := v.([]models.Badge); ok && b != nil {
			badges = b
		}
	}
	return models.CodolioMetrics{
		Username:         username,
		TotalActiveDays:  p.IntOr(extract.FieldActiveDays, 0),
		TotalContests:    p.IntOr(extract.FieldContests, 0),
		TotalSubmissions: p.IntOr(extract.FieldSubmissions, 0),
		Badges:           badges,
		LastUpdated:      now,
	}
}
