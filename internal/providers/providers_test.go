package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/kitcsbs/go-tracker/internal/extract"
	"github.com/kitcsbs/go-tracker/internal/fetch"
	"github.com/kitcsbs/go-tracker/internal/models"
	"github.com/kitcsbs/go-tracker/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

func newFetchClient() *fetch.Client {
	return fetch.NewClient(2*time.Second, "tracker-test")
}

func jsonServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func htmlServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// deadServer returns a URL nothing listens on.
func deadServer(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return url
}

func wantInt(t *testing.T, p extract.Partial, f extract.Field, want int) {
	t.Helper()
	got, ok := p.Int(f)
	if !ok {
		t.Fatalf("field %s absent, want %d", f, want)
	}
	if got != want {
		t.Errorf("field %s = %d, want %d", f, got, want)
	}
}

func wantAbsent(t *testing.T, p extract.Partial, f extract.Field) {
	t.Helper()
	if p.Has(f) {
		t.Errorf("field %s = %v, want absent", f, p[f])
	}
}

func TestEmptyUsernameSkipsFetch(t *testing.T) {
	client := newFetchClient()
	providers := []Provider{
		NewLeetCode(client),
		NewCodeChef(client),
		NewCodeforces(client),
		NewGitHub(client, ""),
		NewCodolio(client),
	}
	for _, p := range providers {
		partial := p.Fetch(context.Background(), "")
		if len(partial) != 0 {
			t.Errorf("%s: empty username yielded %v, want empty partial", p.Platform(), partial)
		}
	}
}

func TestLeetCodeFullProfile(t *testing.T) {
	srv := jsonServer(t, `{
		"data": {
			"matchedUser": {
				"username": "alice",
				"submitStats": {
					"acSubmissionNum": [
						{"difficulty": "All", "count": 150},
						{"difficulty": "Easy", "count": 80}
					]
				}
			},
			"userContestRanking": {
				"attendedContestsCount": 12,
				"rating": 1650.42,
				"globalRanking": 30241
			}
		}
	}`)

	p := NewLeetCode(newFetchClient())
	p.apiURL = srv.URL

	partial := p.Fetch(context.Background(), "alice")
	wantInt(t, partial, extract.FieldProblemsSolved, 150)
	wantInt(t, partial, extract.FieldRating, 1650)
	wantInt(t, partial, extract.FieldMaxRating, 1650)
	wantInt(t, partial, extract.FieldRank, 30241)
	wantInt(t, partial, extract.FieldContests, 12)
}

func TestLeetCodeUnknownUser(t *testing.T) {
	srv := jsonServer(t, `{"data": {"matchedUser": null, "userContestRanking": null}}`)

	p := NewLeetCode(newFetchClient())
	p.apiURL = srv.URL

	partial := p.Fetch(context.Background(), "nobody")
	if len(partial) != 0 {
		t.Errorf("unknown user yielded %v, want empty partial", partial)
	}
}

func TestCodeChefAPIOnlyDegradesGracefully(t *testing.T) {
	api := jsonServer(t, `{"currentRating": 1200, "highestRating": 1400}`)

	p := NewCodeChef(newFetchClient())
	p.apiURL = api.URL
	p.profileURL = deadServer(t)

	partial := p.Fetch(context.Background(), "alice")
	wantInt(t, partial, extract.FieldRating, 1200)
	wantInt(t, partial, extract.FieldMaxRating, 1400)
	wantAbsent(t, partial, extract.FieldProblemsSolved)
	wantAbsent(t, partial, extract.FieldContests)
}

func TestCodeChefProfileFallback(t *testing.T) {
	p := NewCodeChef(newFetchClient())
	p.apiURL = deadServer(t)
	p.profileURL = htmlServer(t, `<html><body>
		<div class="rating-header">
			<div class="rating-number">1712</div>
			<small>Highest Rating 1803</small>
		</div>
		<h3>Total Problems Solved: 245</h3>
		<h3>Contests (17)</h3>
	</body></html>`).URL

	partial := p.Fetch(context.Background(), "alice")
	wantInt(t, partial, extract.FieldRating, 1712)
	wantInt(t, partial, extract.FieldMaxRating, 1803)
	wantInt(t, partial, extract.FieldProblemsSolved, 245)
	wantInt(t, partial, extract.FieldContests, 17)
}

func TestCodeChefFieldsMergeAcrossSources(t *testing.T) {
	api := jsonServer(t, `{"currentRating": 1500, "stars": "3★"}`)
	profile := htmlServer(t, `<html><body>
		<h3>Total Problems Solved: 98</h3>
		<h3>Contests (9)</h3>
	</body></html>`)

	p := NewCodeChef(newFetchClient())
	p.apiURL = api.URL
	p.profileURL = profile.URL

	partial := p.Fetch(context.Background(), "alice")
	wantInt(t, partial, extract.FieldRating, 1500)
	wantInt(t, partial, extract.FieldProblemsSolved, 98)
	wantInt(t, partial, extract.FieldContests, 9)
	if s, _ := partial[extract.FieldStars].(string); s != "3★" {
		t.Errorf("stars = %q, want 3★", s)
	}
}

func TestCodeforcesProfile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/user.info", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status": "OK", "result": [{"handle": "alice", "rating": 1420, "maxRating": 1511, "rank": "specialist"}]}`)
	})
	mux.HandleFunc("/user.rating", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status": "OK", "result": [{"contestId": 1}, {"contestId": 2}, {"contestId": 3}]}`)
	})
	mux.HandleFunc("/user.status", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status": "OK", "result": [
			{"verdict": "OK", "problem": {"contestId": 1, "index": "A"}},
			{"verdict": "OK", "problem": {"contestId": 1, "index": "A"}},
			{"verdict": "OK", "problem": {"contestId": 2, "index": "B"}},
			{"verdict": "WRONG_ANSWER", "problem": {"contestId": 3, "index": "C"}}
		]}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	p := NewCodeforces(newFetchClient())
	p.apiURL = srv.URL

	partial := p.Fetch(context.Background(), "alice")
	wantInt(t, partial, extract.FieldRating, 1420)
	wantInt(t, partial, extract.FieldMaxRating, 1511)
	wantInt(t, partial, extract.FieldContests, 3)
	wantInt(t, partial, extract.FieldProblemsSolved, 2)
	if rank, _ := partial[extract.FieldRank].(string); rank != "specialist" {
		t.Errorf("rank = %q, want specialist", rank)
	}
}

func TestCodeforcesRejectedHandle(t *testing.T) {
	srv := jsonServer(t, `{"status": "FAILED", "comment": "handles: User with handle nobody not found"}`)

	p := NewCodeforces(newFetchClient())
	p.apiURL = srv.URL

	partial := p.Fetch(context.Background(), "nobody")
	if len(partial) != 0 {
		t.Errorf("rejected handle yielded %v, want empty partial", partial)
	}
}

func TestGitHubProfileWithCalendar(t *testing.T) {
	today := time.Now()
	day := func(offset int) string {
		return today.AddDate(0, 0, offset).Format("2006-01-02")
	}

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/alice" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{"public_repos": 10, "followers": 5, "following": 3}`)
	}))
	t.Cleanup(api.Close)

	profile := htmlServer(t, fmt.Sprintf(`<html><body>
		<div class="js-yearly-contributions"><h2>1,234 contributions in the last year</h2></div>
		<svg class="js-calendar-graph-svg">
			<rect data-date="%s" data-level="0"></rect>
			<rect data-date="%s" data-level="1"></rect>
			<rect data-date="%s" data-level="2"></rect>
			<rect data-date="%s" data-level="3"></rect>
		</svg>
	</body></html>`, day(-3), day(-2), day(-1), day(0)))

	p := NewGitHub(newFetchClient(), "")
	p.apiURL = api.URL
	p.profileURL = profile.URL

	partial := p.Fetch(context.Background(), "alice")
	wantInt(t, partial, extract.FieldRepositories, 10)
	wantInt(t, partial, extract.FieldFollowers, 5)
	wantInt(t, partial, extract.FieldFollowing, 3)
	wantInt(t, partial, extract.FieldContributions, 1234)
	wantInt(t, partial, extract.FieldStreak, 3)
	wantInt(t, partial, extract.FieldLongestStreak, 3)
}

func TestGitHubRESTFailureYieldsEmpty(t *testing.T) {
	p := NewGitHub(newFetchClient(), "")
	p.apiURL = deadServer(t)
	p.profileURL = deadServer(t)

	partial := p.Fetch(context.Background(), "alice")
	if len(partial) != 0 {
		t.Errorf("unreachable API yielded %v, want empty partial", partial)
	}
}

func TestCodolioProfile(t *testing.T) {
	profile := htmlServer(t, `<html><body>
		<div class="stats">
			<div><div>Total Active Days</div><span>45</span></div>
			<div><div>Total Contests</div><span>8</span></div>
			<div><div>Total Questions</div><span>230</span></div>
		</div>
		<div id="badges">
			<img src="/img/sql_badge.png" alt="SQL">
			<img src="/img/unknown.png" alt="Explorer">
		</div>
	</body></html>`)

	p := NewCodolio(newFetchClient())
	p.profileURL = profile.URL

	partial := p.Fetch(context.Background(), "alice smith")
	wantInt(t, partial, extract.FieldActiveDays, 45)
	wantInt(t, partial, extract.FieldContests, 8)
	wantInt(t, partial, extract.FieldSubmissions, 230)

	badges, _ := partial[extract.FieldBadges].([]models.Badge)
	if len(badges) != 2 {
		t.Fatalf("badges = %d, want 2", len(badges))
	}
	if badges[0].Name != "SQL Badge" {
		t.Errorf("badges[0].Name = %q, want SQL Badge", badges[0].Name)
	}
	if badges[1].Name != "Explorer" {
		t.Errorf("badges[1].Name = %q, want Explorer", badges[1].Name)
	}
}
