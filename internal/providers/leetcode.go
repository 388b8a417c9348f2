package providers

import (
	"context"

	"github.com/kitcsbs/go-tracker/internal/extract"
	"github.com/kitcsbs/go-tracker/internal/fetch"
	"github.com/kitcsbs/go-tracker/internal/models"
	"github.com/kitcsbs/go-tracker/pkg/logger"
	"go.uber.org/zap"
)

const defaultLeetCodeAPIURL = "https://leetcode.com/graphql"

const leetcodeProfileQuery = `
query getUserProfile($username: String!) {
    matchedUser(username: $username) {
        username
        profile {
            ranking
            reputation
        }
        submitStats {
            acSubmissionNum {
                difficulty
                count
            }
        }
    }
    userContestRanking(username: $username) {
        attendedContestsCount
        rating
        globalRanking
        topPercentage
    }
}
`

// LeetCode fetches profile data through the LeetCode GraphQL API.
type LeetCode struct {
	client *fetch.Client
	apiURL string
}

func NewLeetCode(client *fetch.Client) *LeetCode {
	return &LeetCode{
		client: client,
		apiURL: defaultLeetCodeAPIURL,
	}
}

func (p *LeetCode) Platform() models.Platform {
	return models.PlatformLeetCode
}

var leetcodeRules = extract.FieldRules{
	extract.FieldProblemsSolved: {leetcodeTotalSolved},
	extract.FieldRating:         {extract.JSONInt("data", "userContestRanking", "rating")},
	extract.FieldMaxRating:      {extract.JSONInt("data", "userContestRanking", "rating")},
	extract.FieldRank:           {extract.JSONInt("data", "userContestRanking", "globalRanking")},
	extract.FieldContests:       {extract.JSONInt("data", "userContestRanking", "attendedContestsCount")},
}

func (p *LeetCode) Fetch(ctx context.Context, username string) extract.Partial {
	partial := extract.Partial{}
	if username == "" {
		return partial
	}

	res := p.client.PostJSON(ctx, p.apiURL, map[string]any{
		"query":     leetcodeProfileQuery,
		"variables": map[string]any{"username": username},
	})
	if !res.OK {
		logger.Warn("LeetCode fetch failed",
			zap.String("username", username),
			zap.String("reason", string(res.Reason)),
			zap.Error(res.Err),
		)
		return partial
	}

	extract.Run(partial, []extract.Payload{res.Payload}, leetcodeRules)
	return partial
}

// leetcodeTotalSolved sums accepted submissions from the "All" difficulty
// bucket of matchedUser.submitStats.
func leetcodeTotalSolved(p extract.Payload) (any, bool) {
	data, ok := p.JSON["data"].(map[string]any)
	if !ok {
		return nil, false
	}
	user, ok := data["matchedUser"].(map[string]any)
	if !ok {
		return nil, false
	}
	stats, ok := user["submitStats"].(map[string]any)
	if !ok {
		return nil, false
	}
	buckets, ok := stats["acSubmissionNum"].([]any)
	if !ok {
		return nil, false
	}

	for _, b := range buckets {
		bucket, ok := b.(map[string]any)
		if !ok {
			continue
		}
		if bucket["difficulty"] != "All" {
			continue
		}
		if count, ok := bucket["count"].(float64); ok && count > 0 {
			return int(count), true
		}
	}
	return nil, false
}
