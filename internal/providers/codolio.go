package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/kitcsbs/go-tracker/internal/extract"
	"github.com/kitcsbs/go-tracker/internal/fetch"
	"github.com/kitcsbs/go-tracker/internal/models"
	"github.com/kitcsbs/go-tracker/pkg/logger"
	"go.uber.org/zap"
)

const defaultCodolioProfileURL = "https://codolio.com/profile"

// Codolio scrapes the public profile page. The page is server-rendered with
// label/value stat pairs and a badge gallery; there is no public API.
type Codolio struct {
	client     *fetch.Client
	profileURL string
}

func NewCodolio(client *fetch.Client) *Codolio {
	return &Codolio{
		client:     client,
		profileURL: defaultCodolioProfileURL,
	}
}

func (p *Codolio) Platform() models.Platform {
	return models.PlatformCodolio
}

var codolioRules = extract.FieldRules{
	extract.FieldActiveDays: {
		codolioStat("Total Active Days"),
		extract.SelectorInt("#total_questions span"),
	},
	extract.FieldContests: {
		codolioStat("Total Contests"),
	},
	extract.FieldSubmissions: {
		codolioStat("Total Questions"),
	},
}

func (p *Codolio) Fetch(ctx context.Context, username string) extract.Partial {
	partial := extract.Partial{}
	if username == "" {
		return partial
	}

	// Codolio usernames may contain spaces.
	escaped := strings.ReplaceAll(username, " ", "%20")
	res := p.client.GetHTML(ctx, fmt.Sprintf("%s/%s", p.profileURL, escaped))
	if !res.OK {
		logger.Warn("Codolio profile fetch failed",
			zap.String("username", username),
			zap.String("reason", string(res.Reason)),
			zap.Error(res.Err),
		)
		return partial
	}

	extract.Run(partial, []extract.Payload{res.Payload}, codolioRules)

	if badges := parseCodolioBadges(res.Payload.Doc); len(badges) > 0 {
		partial.Set(extract.FieldBadges, badges)
	}

	return partial
}

// codolioStat finds the stat card whose label matches, then reads the
// sibling span holding the value.
func codolioStat(label string) extract.Rule {
	return func(p extract.Payload) (any, bool) {
		if p.Doc == nil {
			return nil, false
		}
		var result any
		found := false
		p.Doc.Find("div").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := strings.TrimSpace(s.Text())
			if !strings.Contains(text, label) || len(text) > len(label)+24 {
				return true
			}
			value := strings.TrimSpace(s.Siblings().Filter("span").First().Text())
			if value == "" {
				value = strings.TrimSpace(s.Find("span").Last().Text())
			}
			if n, ok := parseCount(value); ok && n > 0 {
				result = n
				found = true
				return false
			}
			return true
		})
		return result, found
	}
}

func parseCodolioBadges(doc *goquery.Document) []models.Badge {
	var badges []models.Badge
	doc.Find("#badges img").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		alt, _ := s.Attr("alt")
		name := badgeName(src, alt)
		if name == "" {
			return
		}
		badges = append(badges, models.Badge{
			Name:        name,
			Icon:        src,
			Description: alt,
		})
	})
	return badges
}

// badgeName classifies a badge by keywords in its image source. Unknown
// badges fall back to the alt text.
func badgeName(src, alt string) string {
	lower := strings.ToLower(src)
	switch {
	case strings.Contains(lower, "sql"):
		return "SQL Badge"
	case strings.Contains(lower, "java"):
		return "Java Badge"
	case strings.Contains(lower, "python"):
		return "Python Badge"
	case strings.Contains(lower, "streak"):
		return "Streak Badge"
	}
	return strings.TrimSpace(alt)
}
