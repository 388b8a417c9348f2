// Package identity derives platform usernames from the profile links
// operators supply at import time. Links arrive in many shapes: full profile
// URLs, bare handles, pasted tab titles ("name - LeetCode Profile"), the
// literal placeholders NULL/CODOLIO, or unresolved URL-shortener links.
package identity

import (
	"strings"

	"github.com/kitcsbs/go-tracker/internal/models"
)

// shortenerDomain marks links that point at a redirect service instead of a
// real profile; those never yield a usable username.
const shortenerDomain = "share.google"

// DeriveUsername extracts a platform username from a raw profile link or
// label. It is pure and total: malformed input yields "", never an error.
// Sentinel inputs ("", "NULL", "CODOLIO", shortener links) yield "" for
// every platform.
func DeriveUsername(platform models.Platform, raw string) string {
	raw = strings.TrimSpace(raw)
	upper := strings.ToUpper(raw)
	if raw == "" || upper == "NULL" || upper == "CODOLIO" {
		return ""
	}
	if strings.Contains(raw, shortenerDomain) {
		return ""
	}

	switch platform {
	case models.PlatformLeetCode:
		return deriveLeetCode(raw)
	case models.PlatformCodeChef:
		return deriveCodeChef(raw)
	case models.PlatformCodeforces:
		return deriveCodeforces(raw)
	case models.PlatformGitHub:
		return deriveGitHub(raw)
	case models.PlatformCodolio:
		return deriveCodolio(raw)
	}
	return ""
}

func deriveLeetCode(raw string) string {
	if _, after, ok := strings.Cut(raw, "leetcode.com/u/"); ok {
		return firstSegment(after)
	}
	if before, _, ok := strings.Cut(raw, " - LeetCode Profile"); ok && before != raw {
		return strings.TrimSpace(before)
	}
	// Bare handle or an unrecognized URL: take the last path segment.
	parts := strings.Split(strings.TrimRight(raw, "/"), "/")
	return parts[len(parts)-1]
}

func deriveCodeChef(raw string) string {
	if _, after, ok := strings.Cut(raw, "codechef.com/users/"); ok {
		return firstSegment(after)
	}
	if isBareHandle(raw) {
		return raw
	}
	return ""
}

func deriveCodeforces(raw string) string {
	if _, after, ok := strings.Cut(raw, "codeforces.com/profile/"); ok {
		return firstSegment(after)
	}
	if before, _, ok := strings.Cut(raw, " - Codeforces"); ok && before != raw {
		return strings.TrimSpace(before)
	}
	if isBareHandle(raw) {
		return raw
	}
	return ""
}

func deriveGitHub(raw string) string {
	if _, after, ok := strings.Cut(raw, "github.com/"); ok {
		return firstSegment(after)
	}
	if isBareHandle(raw) {
		return raw
	}
	return ""
}

func deriveCodolio(raw string) string {
	if _, after, ok := strings.Cut(raw, "codolio.com/profile/"); ok {
		// Codolio usernames may contain spaces, percent-encoded in links.
		return firstSegment(strings.ReplaceAll(after, "%20", " "))
	}
	if isBareHandle(raw) && !strings.Contains(raw, "|") {
		return raw
	}
	return ""
}

// firstSegment returns the first path segment of s, without a trailing slash.
func firstSegment(s string) string {
	s = strings.TrimRight(s, "/")
	if i := strings.IndexByte(s, '/'); i >= 0 {
		return s[:i]
	}
	return s
}

// isBareHandle reports whether the operator pasted a plain username rather
// than a link.
func isBareHandle(s string) bool {
	return !strings.Contains(s, "http") && !strings.Contains(s, "/")
}
