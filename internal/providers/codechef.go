package providers

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/kitcsbs/go-tracker/internal/extract"
	"github.com/kitcsbs/go-tracker/internal/fetch"
	"github.com/kitcsbs/go-tracker/internal/models"
	"github.com/kitcsbs/go-tracker/pkg/logger"
	"go.uber.org/zap"
)

const (
	defaultCodeChefAPIURL     = "https://codechef-api.vercel.app"
	defaultCodeChefProfileURL = "https://www.codechef.com/users"
)

var (
	reCodeChefHighest  = regexp.MustCompile(`Highest Rating\s*(\d+)`)
	reCodeChefProblems = regexp.MustCompile(`(?i)Total Problems Solved[:\s]*([\d,]+)`)
	reCodeChefContests = regexp.MustCompile(`(?i)Contests\s*\((\d+)\)`)
)

// CodeChef fetches profile data from the community JSON API and falls back
// to scraping the public profile page for fields the API missed.
type CodeChef struct {
	client     *fetch.Client
	apiURL     string
	profileURL string
}

func NewCodeChef(client *fetch.Client) *CodeChef {
	return &CodeChef{
		client:     client,
		apiURL:     defaultCodeChefAPIURL,
		profileURL: defaultCodeChefProfileURL,
	}
}

func (p *CodeChef) Platform() models.Platform {
	return models.PlatformCodeChef
}

var codechefRules = extract.FieldRules{
	extract.FieldRating: {
		extract.JSONInt("currentRating"),
		extract.SelectorInt("div.rating-number"),
	},
	extract.FieldMaxRating: {
		extract.JSONInt("highestRating"),
		extract.SelectorRegexInt("div.rating-header", reCodeChefHighest),
		extract.RegexInt(reCodeChefHighest),
	},
	extract.FieldProblemsSolved: {
		extract.JSONLen("fully_solved"),
		extract.SelectorRegexInt("h1, h2, h3, h4, h5", reCodeChefProblems),
		extract.RegexInt(reCodeChefProblems),
		codechefStatsSection,
	},
	extract.FieldRank: {
		extract.JSONInt("global_rank"),
	},
	extract.FieldStars: {
		extract.JSONString("stars"),
	},
	extract.FieldContests: {
		extract.SelectorRegexInt("h1, h2, h3, h4, h5", reCodeChefContests),
		extract.RegexInt(reCodeChefContests),
	},
}

func (p *CodeChef) Fetch(ctx context.Context, username string) extract.Partial {
	partial := extract.Partial{}
	if username == "" {
		return partial
	}

	payloads := make([]extract.Payload, 0, 2)

	api := p.client.GetJSON(ctx, fmt.Sprintf("%s/%s", p.apiURL, username))
	if api.OK {
		payloads = append(payloads, api.Payload)
	} else {
		logger.Warn("CodeChef API fetch failed",
			zap.String("username", username),
			zap.String("reason", string(api.Reason)),
			zap.Error(api.Err),
		)
	}

	extract.Run(partial, payloads, codechefRules)

	// The profile page is slow; only scrape it when the API left gaps.
	if codechefNeedsProfile(partial) {
		html := p.client.GetHTML(ctx, fmt.Sprintf("%s/%s", p.profileURL, username))
		if html.OK {
			payloads = append(payloads, html.Payload)
			extract.Run(partial, payloads, codechefRules)
		} else {
			logger.Warn("CodeChef profile fetch failed",
				zap.String("username", username),
				zap.String("reason", string(html.Reason)),
				zap.Error(html.Err),
			)
		}
	}

	return partial
}

func codechefNeedsProfile(p extract.Partial) bool {
	for _, f := range []extract.Field{
		extract.FieldRating,
		extract.FieldMaxRating,
		extract.FieldProblemsSolved,
		extract.FieldContests,
	} {
		if !p.Has(f) {
			return true
		}
	}
	return false
}

var reCodeChefStatNumber = regexp.MustCompile(`([\d,]+)`)

// codechefStatsSection scans the rating sidebar for a solved-count line.
// Layout there shifts often, so this stays the lowest-priority strategy.
func codechefStatsSection(p extract.Payload) (any, bool) {
	if p.Doc == nil {
		return nil, false
	}
	var result any
	found := false
	p.Doc.Find("section.rating-data-section div, section.rating-data-section h3").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		if !strings.Contains(text, "Fully Solved") && !strings.Contains(text, "Problems Solved") {
			return true
		}
		m := reCodeChefStatNumber.FindStringSubmatch(text)
		if m == nil {
			return true
		}
		if n, ok := parseCount(m[1]); ok && n > 0 {
			result = n
			found = true
			return false
		}
		return true
	})
	return result, found
}

func parseCount(s string) (int, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, false
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}
