package status

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adrianpk/stopgate/internal/config"
)

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

// fakeStore serves artifacts from memory.
type fakeStore struct {
	modified map[string]time.Time
	errs     map[string]error
	lookups  []string
}

func (s *fakeStore) Lookup(path string) (Artifact, error) {
	s.lookups = append(s.lookups, path)
	if err, ok := s.errs[path]; ok {
		return Artifact{Path: path, Exists: true}, err
	}
	if mt, ok := s.modified[path]; ok {
		return Artifact{Path: path, Exists: true, LastModified: mt}, nil
	}
	return Artifact{Path: path}, nil
}

func newFakeChecker(store *fakeStore) *Checker {
	return NewChecker(nil, WithStore(store), WithClock(func() time.Time { return testNow }))
}

func ago(d time.Duration) time.Time {
	return testNow.Add(-d)
}

func TestCheck(t *testing.T) {
	const dir = "/work/project"
	session := SessionPath(dir, "abc")
	legacy := LegacyPath(dir)

	tests := []struct {
		name      string
		sessionID string
		modified  map[string]time.Time
		wantState State
		wantPath  string
	}{
		{
			name:      "session fresh legacy stale",
			sessionID: "abc",
			modified:  map[string]time.Time{session: ago(time.Minute), legacy: ago(time.Hour)},
			wantState: StateFresh,
			wantPath:  session,
		},
		{
			name:      "session fresh legacy missing",
			sessionID: "abc",
			modified:  map[string]time.Time{session: ago(10 * time.Second)},
			wantState: StateFresh,
			wantPath:  session,
		},
		{
			name:      "session stale does not fall back to fresh legacy",
			sessionID: "abc",
			modified:  map[string]time.Time{session: ago(time.Hour), legacy: ago(time.Second)},
			wantState: StateStale,
			wantPath:  session,
		},
		{
			name:      "session missing legacy fresh",
			sessionID: "abc",
			modified:  map[string]time.Time{legacy: ago(time.Minute)},
			wantState: StateFresh,
			wantPath:  legacy,
		},
		{
			name:      "no session id uses legacy",
			sessionID: "",
			modified:  map[string]time.Time{legacy: ago(time.Minute)},
			wantState: StateFresh,
			wantPath:  legacy,
		},
		{
			name:      "neither exists reports session path",
			sessionID: "abc",
			wantState: StateMissing,
			wantPath:  session,
		},
		{
			name:      "neither exists without session reports legacy path",
			sessionID: "",
			wantState: StateMissing,
			wantPath:  legacy,
		},
		{
			name:      "legacy stale",
			sessionID: "",
			modified:  map[string]time.Time{legacy: ago(2 * time.Hour)},
			wantState: StateStale,
			wantPath:  legacy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newFakeChecker(&fakeStore{modified: tt.modified})

			got := c.Check(dir, tt.sessionID)

			assert.Equal(t, tt.wantState, got.State)
			assert.Equal(t, tt.wantPath, got.Path)
			assert.Equal(t, tt.wantState == StateFresh, got.Valid())
		})
	}
}

func TestCheckMissingPathEndsWithSessionFile(t *testing.T) {
	c := newFakeChecker(&fakeStore{})

	got := c.Check("/work", "abc")

	assert.False(t, got.Valid())
	assert.True(t, strings.HasSuffix(got.Path, "status.abc.md"), "path = %s", got.Path)
}

func TestCheckEmptyDirSkips(t *testing.T) {
	store := &fakeStore{}
	c := newFakeChecker(store)

	got := c.Check("", "abc")

	assert.Equal(t, StateSkipped, got.State)
	assert.True(t, got.Valid())
	assert.Empty(t, store.lookups, "no artifact expected, nothing looked up")
}

func TestCheckBoundary(t *testing.T) {
	const dir = "/work"
	legacy := LegacyPath(dir)

	tests := []struct {
		name      string
		age       time.Duration
		wantState State
	}{
		{"just under", 299 * time.Second, StateFresh},
		{"exactly max age", 300 * time.Second, StateFresh},
		{"one second over", 301 * time.Second, StateStale},
		{"modified in the future", -time.Minute, StateFresh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newFakeChecker(&fakeStore{modified: map[string]time.Time{legacy: ago(tt.age)}})

			got := c.Check(dir, "")

			assert.Equal(t, tt.wantState, got.State)
			assert.Equal(t, tt.age, got.Age)
		})
	}
}

func TestCheckStaleAgeMinutes(t *testing.T) {
	legacy := LegacyPath("/work")
	c := newFakeChecker(&fakeStore{modified: map[string]time.Time{legacy: ago(17*time.Minute + 59*time.Second)}})

	got := c.Check("/work", "")

	require.Equal(t, StateStale, got.State)
	assert.Equal(t, 17, got.AgeMinutes())
}

func TestCheckUnreadable(t *testing.T) {
	session := SessionPath("/work", "abc")
	denied := errors.New("permission denied")
	c := newFakeChecker(&fakeStore{errs: map[string]error{session: denied}})

	got := c.Check("/work", "abc")

	assert.Equal(t, StateUnreadable, got.State)
	assert.Equal(t, session, got.Path)
	assert.ErrorIs(t, got.Err, denied)
	assert.False(t, got.Valid())
}

func TestNewCheckerMaxAge(t *testing.T) {
	tests := []struct {
		name string
		cfg  *config.StatusConfig
		want time.Duration
	}{
		{"nil config", nil, 300 * time.Second},
		{"zero max age", &config.StatusConfig{}, 300 * time.Second},
		{"negative max age", &config.StatusConfig{MaxAge: -time.Second}, 300 * time.Second},
		{"custom", &config.StatusConfig{MaxAge: time.Minute}, time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewChecker(tt.cfg).MaxAge(); got != tt.want {
				t.Errorf("MaxAge() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPaths(t *testing.T) {
	assert.Equal(t, filepath.Join("/w", ".claude", "status.s1.md"), SessionPath("/w", "s1"))
	assert.Equal(t, filepath.Join("/w", ".claude", "status.md"), LegacyPath("/w"))
	assert.Equal(t, SessionPath("/w", "s1"), ExpectedPath("/w", "s1"))
	assert.Equal(t, LegacyPath("/w"), ExpectedPath("/w", ""))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "fresh", StateFresh.String())
	assert.Equal(t, "unreadable", StateUnreadable.String())
	assert.Equal(t, "unknown", State(42).String())
}

func writeStatus(t *testing.T, path string, modified time.Time) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("---\nstatus: working\n---\n"), 0644))
	require.NoError(t, os.Chtimes(path, modified, modified))
}

func TestFileStoreCheck(t *testing.T) {
	dir := t.TempDir()
	now := time.Now().Truncate(time.Second)
	clock := func() time.Time { return now }

	writeStatus(t, LegacyPath(dir), now.Add(-time.Hour))
	writeStatus(t, SessionPath(dir, "abc"), now.Add(-time.Minute))

	c := NewChecker(nil, WithClock(clock))

	got := c.Check(dir, "abc")
	assert.Equal(t, StateFresh, got.State)
	assert.Equal(t, SessionPath(dir, "abc"), got.Path)

	got = c.Check(dir, "other")
	assert.Equal(t, StateStale, got.State, "unknown session falls back to stale legacy file")
	assert.Equal(t, 60, got.AgeMinutes())
}

func TestFileStoreLookup(t *testing.T) {
	dir := t.TempDir()

	a, err := FileStore{}.Lookup(filepath.Join(dir, "nope.md"))
	require.NoError(t, err)
	assert.False(t, a.Exists)

	notDir := filepath.Join(dir, ".claude")
	require.NoError(t, os.WriteFile(notDir, []byte("x"), 0644))
	a, err = FileStore{}.Lookup(filepath.Join(notDir, "status.md"))
	require.NoError(t, err)
	assert.False(t, a.Exists, "a file in place of the directory means no status file")

	path := filepath.Join(dir, "status.md")
	mt := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, os.WriteFile(path, nil, 0644))
	require.NoError(t, os.Chtimes(path, mt, mt))

	a, err = FileStore{}.Lookup(path)
	require.NoError(t, err)
	assert.True(t, a.Exists)
	assert.True(t, a.LastModified.Equal(mt))
}

func TestFileStoreLookupPermissionDenied(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}

	dir := t.TempDir()
	claudeDir := filepath.Join(dir, ".claude")
	require.NoError(t, os.MkdirAll(claudeDir, 0755))
	require.NoError(t, os.Chmod(claudeDir, 0))
	t.Cleanup(func() { _ = os.Chmod(claudeDir, 0755) })

	got := NewChecker(nil).Check(dir, "")

	assert.Equal(t, StateUnreadable, got.State)
	assert.Error(t, got.Err)
}
