// Package extract turns raw fetch payloads into sparse field sets using
// ordered extraction rules. Each target field carries its own priority list
// of rules (structured lookup, markup selector, full-text regex); the first
// rule that yields a non-default value wins the field. Fields are extracted
// independently, so one field may come from an API payload while another
// comes from scraped HTML of the same profile.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Source tags where a payload came from.
type Source string

const (
	SourceAPI  Source = "api"
	SourceHTML Source = "html"
)

// Payload is one raw fetch result in a form rules can probe. JSON is set for
// structured payloads, Doc for parsed markup; Text always holds the raw body.
type Payload struct {
	Source Source
	JSON   map[string]any
	Doc    *goquery.Document
	Text   string
}

// Field names one extractable metric.
type Field string

const (
	FieldRating         Field = "rating"
	FieldMaxRating      Field = "maxRating"
	FieldProblemsSolved Field = "problemsSolved"
	FieldRank           Field = "rank"
	FieldStars          Field = "stars"
	FieldContests       Field = "contests"
	FieldRepositories   Field = "repositories"
	FieldFollowers      Field = "followers"
	FieldFollowing      Field = "following"
	FieldContributions  Field = "contributions"
	FieldStreak         Field = "streak"
	FieldLongestStreak  Field = "longestStreak"
	FieldActiveDays     Field = "totalActiveDays"
	FieldSubmissions    Field = "totalSubmissions"
	FieldBadges         Field = "badges"
)

// Partial is a sparse set of extracted field values. Absent fields take the
// platform default during normalization.
type Partial map[Field]any

// Set stores a value for a field, overwriting any previous one.
func (p Partial) Set(f Field, v any) {
	p[f] = v
}

// Has reports whether the field has been extracted.
func (p Partial) Has(f Field) bool {
	_, ok := p[f]
	return ok
}

// Int returns the field as an int.
func (p Partial) Int(f Field) (int, bool) {
	v, ok := p[f]
	if !ok {
		return 0, false
	}
	return toInt(v)
}

// IntOr returns the field as an int, or fallback when absent or non-numeric.
func (p Partial) IntOr(f Field, fallback int) int {
	if n, ok := p.Int(f); ok {
		return n
	}
	return fallback
}

// StringOr returns the field as a string, or fallback when absent.
func (p Partial) StringOr(f Field, fallback string) string {
	if v, ok := p[f]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return fallback
}

// Rule probes one payload for one field value. It returns false when the
// payload does not carry the value; rules never error, a miss just moves
// evaluation to the next rule.
type Rule func(Payload) (any, bool)

// FieldRules holds the ordered rule chain per field.
type FieldRules map[Field][]Rule

// Run evaluates rule chains against payloads in strategy-priority order and
// merges results into partial, first non-default value per field wins.
// Fields already present in partial are left untouched.
func Run(partial Partial, payloads []Payload, rules FieldRules) {
	for field, chain := range rules {
		if partial.Has(field) {
			continue
		}
		for _, rule := range chain {
			var done bool
			for _, payload := range payloads {
				if v, ok := rule(payload); ok {
					partial.Set(field, v)
					done = true
					break
				}
			}
			if done {
				break
			}
		}
	}
}

// JSONInt looks up a numeric value by key path in a structured payload.
// Array elements are addressed by decimal index. Zero values are misses so a
// lower-priority strategy can still fill the field.
func JSONInt(path ...string) Rule {
	return func(p Payload) (any, bool) {
		v, ok := jsonLookup(p.JSON, path)
		if !ok {
			return nil, false
		}
		n, ok := toInt(v)
		if !ok || n == 0 {
			return nil, false
		}
		return n, true
	}
}

// JSONString looks up a non-empty string by key path.
func JSONString(path ...string) Rule {
	return func(p Payload) (any, bool) {
		v, ok := jsonLookup(p.JSON, path)
		if !ok {
			return nil, false
		}
		s, ok := v.(string)
		if !ok || s == "" {
			return nil, false
		}
		return s, true
	}
}

// JSONLen yields the length of a non-empty array at the key path.
func JSONLen(path ...string) Rule {
	return func(p Payload) (any, bool) {
		v, ok := jsonLookup(p.JSON, path)
		if !ok {
			return nil, false
		}
		arr, ok := v.([]any)
		if !ok || len(arr) == 0 {
			return nil, false
		}
		return len(arr), true
	}
}

// SelectorInt matches a markup selector and parses the first matched
// element's text as a positive integer.
func SelectorInt(selector string) Rule {
	return func(p Payload) (any, bool) {
		if p.Doc == nil {
			return nil, false
		}
		var result any
		found := false
		p.Doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if n, ok := parseNumber(strings.TrimSpace(s.Text())); ok && n > 0 {
				result = n
				found = true
				return false
			}
			return true
		})
		return result, found
	}
}

// SelectorRegexInt matches a selector, then applies re to each matched
// element's text, yielding the first capture group as an integer.
func SelectorRegexInt(selector string, re *regexp.Regexp) Rule {
	return func(p Payload) (any, bool) {
		if p.Doc == nil {
			return nil, false
		}
		var result any
		found := false
		p.Doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if m := re.FindStringSubmatch(s.Text()); m != nil {
				if n, ok := parseNumber(m[1]); ok && n > 0 {
					result = n
					found = true
					return false
				}
			}
			return true
		})
		return result, found
	}
}

// RegexInt scans the raw page body as a last resort, yielding the first
// capture group as an integer.
func RegexInt(re *regexp.Regexp) Rule {
	return func(p Payload) (any, bool) {
		if p.Text == "" {
			return nil, false
		}
		m := re.FindStringSubmatch(p.Text)
		if m == nil {
			return nil, false
		}
		n, ok := parseNumber(m[1])
		if !ok || n == 0 {
			return nil, false
		}
		return n, true
	}
}

func jsonLookup(data map[string]any, path []string) (any, bool) {
	if data == nil {
		return nil, false
	}
	var cur any = data
	for _, key := range path {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[key]
			if !ok || v == nil {
				return nil, false
			}
			cur = v
		case []any:
			idx, err := strconv.Atoi(key)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			cur = node[idx]
		default:
			return nil, false
		}
	}
	return cur, true
}

// parseNumber parses an integer that may carry thousands separators
// ("1,234") or a decimal tail (ratings arrive as JSON floats).
func parseNumber(s string) (int, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f), true
	}
	return 0, false
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case string:
		return parseNumber(n)
	default:
		return 0, false
	}
}
