package providers

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/kitcsbs/go-tracker/internal/extract"
	"github.com/kitcsbs/go-tracker/internal/fetch"
	"github.com/kitcsbs/go-tracker/internal/models"
	"github.com/kitcsbs/go-tracker/internal/streaks"
	"github.com/kitcsbs/go-tracker/pkg/logger"
	"go.uber.org/zap"
)

const (
	defaultGitHubAPIURL     = "https://api.github.com"
	defaultGitHubGraphQLURL = "https://api.github.com/graphql"
	defaultGitHubProfileURL = "https://github.com"
)

const githubContributionsQuery = `
query($login: String!) {
    user(login: $login) {
        contributionsCollection {
            contributionCalendar {
                totalContributions
            }
        }
    }
}
`

var reGitHubContribs = regexp.MustCompile(`([\d,]+)\s+contributions?`)

// GitHub fetches account stats from the REST API, the contribution total
// from the GraphQL API when a token is configured, and the contribution
// calendar from the profile page. Streaks are inferred from the calendar.
type GitHub struct {
	client     *fetch.Client
	token      string
	apiURL     string
	graphqlURL string
	profileURL string
}

func NewGitHub(client *fetch.Client, token string) *GitHub {
	return &GitHub{
		client:     client,
		token:      token,
		apiURL:     defaultGitHubAPIURL,
		graphqlURL: defaultGitHubGraphQLURL,
		profileURL: defaultGitHubProfileURL,
	}
}

func (p *GitHub) Platform() models.Platform {
	return models.PlatformGitHub
}

var githubUserRules = extract.FieldRules{
	extract.FieldRepositories: {extract.JSONInt("public_repos")},
	extract.FieldFollowers:    {extract.JSONInt("followers")},
	extract.FieldFollowing:    {extract.JSONInt("following")},
}

var githubContribRules = extract.FieldRules{
	extract.FieldContributions: {
		extract.JSONInt("data", "user", "contributionsCollection", "contributionCalendar", "totalContributions"),
		extract.SelectorRegexInt("h2.f4.text-normal.mb-2", reGitHubContribs),
		extract.SelectorRegexInt("div.js-yearly-contributions h2", reGitHubContribs),
		extract.RegexInt(reGitHubContribs),
	},
}

func (p *GitHub) Fetch(ctx context.Context, username string) extract.Partial {
	partial := extract.Partial{}
	if username == "" {
		return partial
	}

	var opts []fetch.Option
	if p.token != "" {
		opts = append(opts, fetch.WithBearer(p.token))
	}

	user := p.client.GetJSON(ctx, fmt.Sprintf("%s/users/%s", p.apiURL, url.PathEscape(username)), opts...)
	if !user.OK {
		logger.Warn("GitHub user fetch failed",
			zap.String("username", username),
			zap.String("reason", string(user.Reason)),
			zap.Error(user.Err),
		)
		return partial
	}
	extract.Run(partial, []extract.Payload{user.Payload}, githubUserRules)

	payloads := make([]extract.Payload, 0, 2)

	if p.token != "" {
		gql := p.client.PostJSON(ctx, p.graphqlURL, map[string]any{
			"query":     githubContributionsQuery,
			"variables": map[string]any{"login": username},
		}, fetch.WithBearer(p.token))
		if gql.OK {
			payloads = append(payloads, gql.Payload)
		}
	}

	// The profile page carries the contribution calendar; streaks only
	// exist there, so it is fetched even when GraphQL covered the total.
	html := p.client.GetHTML(ctx, fmt.Sprintf("%s/%s", p.profileURL, url.PathEscape(username)))
	if html.OK {
		payloads = append(payloads, html.Payload)
	} else {
		logger.Warn("GitHub profile fetch failed",
			zap.String("username", username),
			zap.String("reason", string(html.Reason)),
			zap.Error(html.Err),
		)
	}

	extract.Run(partial, payloads, githubContribRules)

	if html.OK {
		if days := parseContributionCalendar(html.Payload.Doc); len(days) > 0 {
			summary := streaks.Compute(streaks.Dedupe(days), time.Now())
			partial.Set(extract.FieldStreak, summary.CurrentStreak)
			partial.Set(extract.FieldLongestStreak, summary.LongestStreak)
		}
	}

	return partial
}

// parseContributionCalendar reads the calendar graph cells. Each cell carries
// the day's date and an activity level from 0 to 4; exact counts are not in
// the markup, so levels become count estimates.
func parseContributionCalendar(doc *goquery.Document) []models.ContributionDay {
	var days []models.ContributionDay
	doc.Find("svg.js-calendar-graph-svg rect").Each(func(_ int, s *goquery.Selection) {
		dateAttr, ok := s.Attr("data-date")
		if !ok {
			return
		}
		date, err := time.Parse("2006-01-02", dateAttr)
		if err != nil {
			return
		}
		levelAttr, _ := s.Attr("data-level")
		level, _ := strconv.Atoi(levelAttr)
		days = append(days, models.ContributionDay{
			Date:  date,
			Count: streaks.EstimateCount(level),
			Level: level,
		})
	})
	return days
}
