package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kitcsbs/go-tracker/internal/extract"
	"github.com/kitcsbs/go-tracker/internal/models"
	"github.com/kitcsbs/go-tracker/internal/providers"
	"github.com/kitcsbs/go-tracker/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

type fakeStore struct {
	students  []*models.Student
	snapshots map[string]any
	touched   map[uint]time.Time
	contests  map[uint]int
	upsertErr error
}

func newFakeStore(students ...*models.Student) *fakeStore {
	return &fakeStore{
		students:  students,
		snapshots: make(map[string]any),
		touched:   make(map[uint]time.Time),
		contests:  make(map[uint]int),
	}
}

func snapshotKey(studentID uint, platform models.Platform) string {
	return fmt.Sprintf("%d/%s", studentID, platform)
}

func (f *fakeStore) ActiveStudents(ctx context.Context) ([]*models.Student, error) {
	return f.students, nil
}

func (f *fakeStore) UpsertSnapshot(ctx context.Context, studentID uint, platform models.Platform, metrics any, at time.Time) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.snapshots[snapshotKey(studentID, platform)] = metrics
	return nil
}

func (f *fakeStore) TouchLastScraped(ctx context.Context, studentID uint, at time.Time) error {
	f.touched[studentID] = at
	return nil
}

func (f *fakeStore) UpdateCodeChefContests(ctx context.Context, studentID uint, contests int, at time.Time) error {
	f.contests[studentID] = contests
	return nil
}

func (f *fakeStore) GetStats(ctx context.Context) (map[string]interface{}, error) {
	return map[string]interface{}{"total_students": int64(len(f.students))}, nil
}

// fakeProvider returns a canned partial, or panics for usernames in its
// panic set.
type fakeProvider struct {
	platform models.Platform
	partial  extract.Partial
	panicFor map[string]bool
	calls    []string
}

func (f *fakeProvider) Platform() models.Platform {
	return f.platform
}

func (f *fakeProvider) Fetch(ctx context.Context, username string) extract.Partial {
	f.calls = append(f.calls, username)
	if f.panicFor[username] {
		panic("unexpected markup shape")
	}
	out := extract.Partial{}
	for k, v := range f.partial {
		out[k] = v
	}
	return out
}

func student(id uint, roll, leetcode string) *models.Student {
	return &models.Student{
		ID:               id,
		RollNumber:       roll,
		Name:             "Student " + roll,
		LeetCodeUsername: leetcode,
		IsActive:         true,
	}
}

func ratingPartial(rating int) extract.Partial {
	p := extract.Partial{}
	p.Set(extract.FieldRating, rating)
	return p
}

func TestRunBatchIsolatesFailures(t *testing.T) {
	store := newFakeStore(
		student(1, "21CS001", "alice"),
		student(2, "21CS002", "bob"),
		student(3, "21CS003", "carol"),
	)
	provider := &fakeProvider{
		platform: models.PlatformLeetCode,
		partial:  ratingPartial(1500),
		panicFor: map[string]bool{"bob": true},
	}

	svc := NewScraperService(store, []providers.Provider{provider}, NewDelayLimiter(0), "")
	report, err := svc.RunBatch(context.Background())
	if err != nil {
		t.Fatalf("RunBatch returned error: %v", err)
	}

	if report.Updated != 2 || report.Failed != 1 || report.Total != 3 {
		t.Errorf("counts = %d/%d/%d, want 2 updated, 1 failed, 3 total",
			report.Updated, report.Failed, report.Total)
	}

	for _, id := range []uint{1, 3} {
		m, ok := store.snapshots[snapshotKey(id, models.PlatformLeetCode)]
		if !ok {
			t.Fatalf("student %d has no snapshot", id)
		}
		if m.(models.LeetCodeMetrics).Rating != 1500 {
			t.Errorf("student %d rating = %d, want 1500", id, m.(models.LeetCodeMetrics).Rating)
		}
	}

	// The failing student still gets a structurally complete default record.
	m, ok := store.snapshots[snapshotKey(2, models.PlatformLeetCode)]
	if !ok {
		t.Fatal("failing student has no snapshot, want defaults persisted")
	}
	if m.(models.LeetCodeMetrics).Rating != 0 {
		t.Errorf("failing student rating = %d, want default 0", m.(models.LeetCodeMetrics).Rating)
	}

	failures := report.Failures()
	if len(failures) != 1 || failures[0].RollNumber != "21CS002" {
		t.Errorf("failures = %+v, want one failure for 21CS002", failures)
	}
}

func TestRunBatchSkipsEmptyUsernames(t *testing.T) {
	store := newFakeStore(
		student(1, "21CS001", ""),
		student(2, "21CS002", "bob"),
	)
	provider := &fakeProvider{
		platform: models.PlatformLeetCode,
		partial:  ratingPartial(1200),
	}

	svc := NewScraperService(store, []providers.Provider{provider}, NewDelayLimiter(0), "")
	report, err := svc.RunBatch(context.Background())
	if err != nil {
		t.Fatalf("RunBatch returned error: %v", err)
	}

	if len(provider.calls) != 1 || provider.calls[0] != "bob" {
		t.Errorf("provider calls = %v, want [bob]", provider.calls)
	}
	if _, ok := store.snapshots[snapshotKey(1, models.PlatformLeetCode)]; ok {
		t.Error("student without username got a snapshot")
	}
	// A student with no scrapeable platforms is not counted at all.
	if report.Total != 1 {
		t.Errorf("total = %d, want 1", report.Total)
	}
}

func TestRunBatchTouchesLastScrapedOnlyOnSuccess(t *testing.T) {
	store := newFakeStore(
		student(1, "21CS001", "alice"),
		student(2, "21CS002", "bob"),
	)
	provider := &fakeProvider{
		platform: models.PlatformLeetCode,
		partial:  ratingPartial(1400),
		panicFor: map[string]bool{"bob": true},
	}

	svc := NewScraperService(store, []providers.Provider{provider}, NewDelayLimiter(0), "")
	if _, err := svc.RunBatch(context.Background()); err != nil {
		t.Fatalf("RunBatch returned error: %v", err)
	}

	if _, ok := store.touched[1]; !ok {
		t.Error("successful student missing last-scraped timestamp")
	}
	if _, ok := store.touched[2]; ok {
		t.Error("failed student got a last-scraped timestamp")
	}
}

func TestRunBatchStopsOnCancelledContext(t *testing.T) {
	store := newFakeStore(
		student(1, "21CS001", "alice"),
		student(2, "21CS002", "bob"),
	)
	provider := &fakeProvider{
		platform: models.PlatformLeetCode,
		partial:  ratingPartial(1400),
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewScraperService(store, []providers.Provider{provider}, NewDelayLimiter(0), "")
	report, err := svc.RunBatch(ctx)
	if err == nil {
		t.Fatal("expected context error")
	}
	if report.Total != 0 {
		t.Errorf("total = %d, want 0 after immediate cancellation", report.Total)
	}
	if len(provider.calls) != 0 {
		t.Errorf("provider was called %d times after cancellation", len(provider.calls))
	}
}

func TestRunBatchWritesReportFile(t *testing.T) {
	store := newFakeStore(student(1, "21CS001", "alice"))
	provider := &fakeProvider{
		platform: models.PlatformLeetCode,
		partial:  ratingPartial(1500),
	}

	path := filepath.Join(t.TempDir(), "report.json")
	svc := NewScraperService(store, []providers.Provider{provider}, NewDelayLimiter(0), path)
	report, err := svc.RunBatch(context.Background())
	if err != nil {
		t.Fatalf("RunBatch returned error: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("report file not written: %v", err)
	}
	var decoded models.BatchReport
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("report file is not valid JSON: %v", err)
	}
	if decoded.RunID != report.RunID {
		t.Errorf("report RunID = %q, want %q", decoded.RunID, report.RunID)
	}
}

func TestRefreshCodeChefContests(t *testing.T) {
	withContests := student(1, "21CS001", "")
	withContests.CodeChefUsername = "cc_alice"
	noContests := student(2, "21CS002", "")
	noContests.CodeChefUsername = "cc_bob"
	noHandle := student(3, "21CS003", "")

	store := newFakeStore(withContests, noContests, noHandle)

	contestsPartial := extract.Partial{}
	contestsPartial.Set(extract.FieldContests, 7)
	provider := &contestProvider{
		byUsername: map[string]extract.Partial{
			"cc_alice": contestsPartial,
			"cc_bob":   {},
		},
	}

	svc := NewScraperService(store, []providers.Provider{provider}, NewDelayLimiter(0), "")
	updated, err := svc.RefreshCodeChefContests(context.Background())
	if err != nil {
		t.Fatalf("RefreshCodeChefContests returned error: %v", err)
	}

	if updated != 1 {
		t.Errorf("updated = %d, want 1", updated)
	}
	if store.contests[1] != 7 {
		t.Errorf("student 1 contests = %d, want 7", store.contests[1])
	}
	if _, ok := store.contests[2]; ok {
		t.Error("zero-contest fetch should not patch the snapshot")
	}
}

type contestProvider struct {
	byUsername map[string]extract.Partial
}

func (c *contestProvider) Platform() models.Platform {
	return models.PlatformCodeChef
}

func (c *contestProvider) Fetch(ctx context.Context, username string) extract.Partial {
	if p, ok := c.byUsername[username]; ok {
		return p
	}
	return extract.Partial{}
}
