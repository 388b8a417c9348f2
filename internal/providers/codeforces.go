package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/kitcsbs/go-tracker/internal/extract"
	"github.com/kitcsbs/go-tracker/internal/fetch"
	"github.com/kitcsbs/go-tracker/internal/models"
	"github.com/kitcsbs/go-tracker/pkg/logger"
	"go.uber.org/zap"
)

const defaultCodeforcesAPIURL = "https://codeforces.com/api"

// Codeforces fetches profile data from the official REST API. Three calls:
// user.info for rating and rank, user.rating for contest history, and
// user.status for the accepted-submission set.
type Codeforces struct {
	client *fetch.Client
	apiURL string
}

func NewCodeforces(client *fetch.Client) *Codeforces {
	return &Codeforces{
		client: client,
		apiURL: defaultCodeforcesAPIURL,
	}
}

func (p *Codeforces) Platform() models.Platform {
	return models.PlatformCodeforces
}

var codeforcesInfoRules = extract.FieldRules{
	extract.FieldRating:    {extract.JSONInt("result", "0", "rating")},
	extract.FieldMaxRating: {extract.JSONInt("result", "0", "maxRating")},
	extract.FieldRank:      {extract.JSONString("result", "0", "rank")},
}

func (p *Codeforces) Fetch(ctx context.Context, username string) extract.Partial {
	partial := extract.Partial{}
	if username == "" {
		return partial
	}
	handle := url.QueryEscape(username)

	info := p.client.GetJSON(ctx, fmt.Sprintf("%s/user.info?handles=%s", p.apiURL, handle))
	if !info.OK {
		logger.Warn("Codeforces user.info failed",
			zap.String("username", username),
			zap.String("reason", string(info.Reason)),
			zap.Error(info.Err),
		)
		return partial
	}
	if status, _ := info.Payload.JSON["status"].(string); status != "OK" {
		logger.Warn("Codeforces user.info rejected handle",
			zap.String("username", username),
			zap.String("status", status),
		)
		return partial
	}
	extract.Run(partial, []extract.Payload{info.Payload}, codeforcesInfoRules)

	history := p.client.GetJSON(ctx, fmt.Sprintf("%s/user.rating?handle=%s", p.apiURL, handle))
	if history.OK {
		extract.Run(partial, []extract.Payload{history.Payload}, extract.FieldRules{
			extract.FieldContests: {extract.JSONLen("result")},
		})
	}

	status := p.client.GetJSON(ctx, fmt.Sprintf("%s/user.status?handle=%s&from=1&count=10000", p.apiURL, handle))
	if status.OK {
		if solved := countSolvedProblems(status.Payload.Text); solved > 0 {
			partial.Set(extract.FieldProblemsSolved, solved)
		}
	}

	return partial
}

type cfSubmission struct {
	Verdict string `json:"verdict"`
	Problem struct {
		ContestID int    `json:"contestId"`
		Index     string `json:"index"`
	} `json:"problem"`
}

// countSolvedProblems deduplicates accepted submissions by problem key. A
// problem solved in several contests or re-submitted counts once.
func countSolvedProblems(raw string) int {
	var resp struct {
		Status string         `json:"status"`
		Result []cfSubmission `json:"result"`
	}
	if err := json.Unmarshal([]byte(raw), &resp); err != nil || resp.Status != "OK" {
		return 0
	}
	seen := make(map[string]struct{}, len(resp.Result))
	for _, sub := range resp.Result {
		if sub.Verdict != "OK" {
			continue
		}
		key := fmt.Sprintf("%d-%s", sub.Problem.ContestID, sub.Problem.Index)
		seen[key] = struct{}{}
	}
	return len(seen)
}
