// Package status checks the freshness of the status file the monitored agent
// keeps under .claude/. The file is owned by the agent; this package only stats it.
package status

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/adrianpk/stopgate/internal/config"
)

const statusDir = ".claude"

// Artifact is a read-only view of a status file.
type Artifact struct {
	Path         string
	Exists       bool
	LastModified time.Time
}

// Store looks up status files. A missing file is not an error: it is reported
// with Exists false.
type Store interface {
	Lookup(path string) (Artifact, error)
}

// FileStore is a Store backed by the local filesystem.
type FileStore struct{}

// Lookup stats path. A parent that is not a directory counts as missing.
func (FileStore) Lookup(path string) (Artifact, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
		return Artifact{Path: path}, nil
	}
	if err != nil {
		return Artifact{Path: path, Exists: true}, err
	}
	return Artifact{Path: path, Exists: true, LastModified: info.ModTime()}, nil
}

// State classifies a status check.
type State int

const (
	// StateSkipped means no working directory was given, so nothing is expected.
	StateSkipped State = iota
	StateFresh
	StateMissing
	StateStale
	// StateUnreadable means the file exists but could not be stat'ed.
	StateUnreadable
)

func (s State) String() string {
	switch s {
	case StateSkipped:
		return "skipped"
	case StateFresh:
		return "fresh"
	case StateMissing:
		return "missing"
	case StateStale:
		return "stale"
	case StateUnreadable:
		return "unreadable"
	default:
		return "unknown"
	}
}

// Result is the outcome of a status check.
type Result struct {
	State State
	// Path is the file that was evaluated, or the expected path when missing.
	Path string
	Age  time.Duration
	Err  error
}

// Valid reports whether stopping may proceed as far as the status file is concerned.
func (r Result) Valid() bool {
	return r.State == StateSkipped || r.State == StateFresh
}

// AgeMinutes returns the age in whole minutes, truncated.
func (r Result) AgeMinutes() int {
	return int(r.Age / time.Minute)
}

// Checker resolves and evaluates the status file for a session.
type Checker struct {
	store  Store
	maxAge time.Duration
	now    func() time.Time
}

// Option configures a Checker.
type Option func(*Checker)

// WithStore replaces the filesystem store.
func WithStore(s Store) Option {
	return func(c *Checker) { c.store = s }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Checker) { c.now = now }
}

// NewChecker creates a checker. A nil cfg or non-positive max age uses the default.
func NewChecker(cfg *config.StatusConfig, opts ...Option) *Checker {
	c := &Checker{
		store:  FileStore{},
		maxAge: config.DefaultStatusMaxAge,
		now:    time.Now,
	}
	if cfg != nil && cfg.MaxAge > 0 {
		c.maxAge = cfg.MaxAge
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MaxAge returns the freshness threshold.
func (c *Checker) MaxAge() time.Duration {
	return c.maxAge
}

// SessionPath returns the session-specific status file path.
func SessionPath(dir, sessionID string) string {
	return filepath.Join(dir, statusDir, fmt.Sprintf("status.%s.md", sessionID))
}

// LegacyPath returns the project-level status file path.
func LegacyPath(dir string) string {
	return filepath.Join(dir, statusDir, "status.md")
}

// ExpectedPath is the file an agent is asked to write: the session file when a
// session id is known, otherwise the legacy one.
func ExpectedPath(dir, sessionID string) string {
	if sessionID != "" {
		return SessionPath(dir, sessionID)
	}
	return LegacyPath(dir)
}

// Check resolves the status file for dir and sessionID and evaluates its age.
// An existing session file is evaluated on its own, with no legacy fallback.
func (c *Checker) Check(dir, sessionID string) Result {
	if dir == "" {
		return Result{State: StateSkipped}
	}

	if sessionID != "" {
		if res, ok := c.evaluateIfExists(SessionPath(dir, sessionID)); ok {
			return res
		}
	}

	if res, ok := c.evaluateIfExists(LegacyPath(dir)); ok {
		return res
	}

	return Result{State: StateMissing, Path: ExpectedPath(dir, sessionID)}
}

// evaluateIfExists returns false when path does not exist.
func (c *Checker) evaluateIfExists(path string) (Result, bool) {
	a, err := c.store.Lookup(path)
	if err != nil {
		return Result{State: StateUnreadable, Path: path, Err: err}, true
	}
	if !a.Exists {
		return Result{}, false
	}
	return c.evaluate(a), true
}

func (c *Checker) evaluate(a Artifact) Result {
	age := c.now().Sub(a.LastModified)
	if age > c.maxAge {
		return Result{State: StateStale, Path: a.Path, Age: age}
	}
	return Result{State: StateFresh, Path: a.Path, Age: age}
}
