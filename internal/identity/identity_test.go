package identity

import (
	"testing"

	"github.com/kitcsbs/go-tracker/internal/models"
)

func TestDeriveUsername(t *testing.T) {
	tests := []struct {
		name     string
		platform models.Platform
		raw      string
		expected string
	}{
		{
			name:     "leetcode profile URL",
			platform: models.PlatformLeetCode,
			raw:      "https://leetcode.com/u/Aadhamsharief/",
			expected: "Aadhamsharief",
		},
		{
			name:     "leetcode URL with trailing path",
			platform: models.PlatformLeetCode,
			raw:      "https://leetcode.com/u/alice/submissions/",
			expected: "alice",
		},
		{
			name:     "leetcode tab title",
			platform: models.PlatformLeetCode,
			raw:      "AbinayaRenganathan - LeetCode Profile",
			expected: "AbinayaRenganathan",
		},
		{
			name:     "leetcode bare handle",
			platform: models.PlatformLeetCode,
			raw:      "kit27csbs63",
			expected: "kit27csbs63",
		},
		{
			name:     "codechef users URL",
			platform: models.PlatformCodeChef,
			raw:      "https://www.codechef.com/users/kit27csbs01",
			expected: "kit27csbs01",
		},
		{
			name:     "codechef bare handle",
			platform: models.PlatformCodeChef,
			raw:      "durga0103",
			expected: "durga0103",
		},
		{
			name:     "codechef unrelated URL",
			platform: models.PlatformCodeChef,
			raw:      "https://example.com/foo",
			expected: "",
		},
		{
			name:     "codeforces profile URL",
			platform: models.PlatformCodeforces,
			raw:      "https://codeforces.com/profile/kit27.csbs01",
			expected: "kit27.csbs01",
		},
		{
			name:     "codeforces tab title",
			platform: models.PlatformCodeforces,
			raw:      "kit27.csbs04 - Codeforces",
			expected: "kit27.csbs04",
		},
		{
			name:     "github profile URL",
			platform: models.PlatformGitHub,
			raw:      "https://github.com/Dinesh0203s/",
			expected: "Dinesh0203s",
		},
		{
			name:     "github URL with repo path",
			platform: models.PlatformGitHub,
			raw:      "https://github.com/alice/some-repo",
			expected: "alice",
		},
		{
			name:     "codolio percent-encoded space",
			platform: models.PlatformCodolio,
			raw:      "https://codolio.com/profile/abinaya%20rajkumar",
			expected: "abinaya rajkumar",
		},
		{
			name:     "codolio URL with trailing path",
			platform: models.PlatformCodolio,
			raw:      "https://codolio.com/profile/vignesh_59/problemSolving/codechef",
			expected: "vignesh_59",
		},
		{
			name:     "codolio pasted label with pipe",
			platform: models.PlatformCodolio,
			raw:      "Swathi Karuppaiya | Codolio",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveUsername(tt.platform, tt.raw)
			if got != tt.expected {
				t.Errorf("DeriveUsername(%s, %q) = %q, want %q", tt.platform, tt.raw, got, tt.expected)
			}
		})
	}
}

func TestDeriveUsernameSentinels(t *testing.T) {
	sentinels := []string{
		"",
		"NULL",
		"null",
		"CODOLIO",
		"Codolio",
		"https://share.google/zoOEZ7F8PJfMq2JG2",
	}

	for _, platform := range models.AllPlatforms() {
		for _, raw := range sentinels {
			if got := DeriveUsername(platform, raw); got != "" {
				t.Errorf("DeriveUsername(%s, %q) = %q, want empty", platform, raw, got)
			}
		}
	}
}

func TestDeriveUsernameIdempotent(t *testing.T) {
	inputs := map[models.Platform]string{
		models.PlatformLeetCode:   "https://leetcode.com/u/alice/",
		models.PlatformCodeChef:   "https://www.codechef.com/users/alice",
		models.PlatformCodeforces: "https://codeforces.com/profile/alice",
		models.PlatformGitHub:     "https://github.com/alice",
		models.PlatformCodolio:    "https://codolio.com/profile/alice",
	}

	for platform, raw := range inputs {
		once := DeriveUsername(platform, raw)
		twice := DeriveUsername(platform, once)
		if once != twice {
			t.Errorf("%s: DeriveUsername not idempotent: %q -> %q", platform, once, twice)
		}
	}
}
