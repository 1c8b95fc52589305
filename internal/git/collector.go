// Package git collects staged and unstaged changes for classification. Every
// query is read-only and individually time-bounded; failures degrade to empty output.
package git

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/adrianpk/stopgate/internal/config"
)

// waitDelay bounds how long a killed git may hold its output pipes open.
const waitDelay = time.Second

// Runner runs the source-control tool in dir and returns its stdout.
type Runner func(ctx context.Context, dir string, args ...string) (string, error)

// Query is one read-only git invocation.
type Query struct {
	Name string
	Args []string
}

// queries run in this order and their output is joined in this order.
var queries = []Query{
	{Name: "staged-files", Args: []string{"--no-optional-locks", "diff", "--cached", "--name-only"}},
	{Name: "unstaged-files", Args: []string{"--no-optional-locks", "diff", "--name-only"}},
	{Name: "staged-diff", Args: []string{"--no-optional-locks", "diff", "--cached"}},
	{Name: "unstaged-diff", Args: []string{"--no-optional-locks", "diff"}},
}

// Queries returns the git queries the collector runs, in order.
func Queries() []Query {
	out := make([]Query, len(queries))
	copy(out, queries)
	return out
}

// Collector gathers the diff corpus.
type Collector struct {
	run     Runner
	timeout time.Duration
	log     *zap.Logger
}

// Option configures a Collector.
type Option func(*Collector)

// WithRunner replaces the process runner.
func WithRunner(r Runner) Option {
	return func(c *Collector) { c.run = r }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Collector) { c.log = l }
}

// NewCollector creates a collector. A nil cfg uses the default binary and timeout.
func NewCollector(cfg *config.GitConfig, opts ...Option) *Collector {
	binary := config.DefaultGitBinary
	timeout := config.DefaultGitTimeout
	if cfg != nil {
		if cfg.Binary != "" {
			binary = cfg.Binary
		}
		if cfg.Timeout > 0 {
			timeout = cfg.Timeout
		}
	}

	c := &Collector{
		run:     ExecRunner(binary),
		timeout: timeout,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect runs every query sequentially against dir and joins the results:
// staged names, unstaged names, staged diff, unstaged diff. A failed query
// contributes an empty string and does not stop the others. An empty dir
// runs in the process working directory.
func (c *Collector) Collect(ctx context.Context, dir string) string {
	parts := make([]string, 0, len(queries))
	for _, q := range queries {
		parts = append(parts, c.query(ctx, dir, q))
	}
	return strings.Join(parts, "\n")
}

func (c *Collector) query(ctx context.Context, dir string, q Query) string {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	out, err := c.run(ctx, dir, q.Args...)
	elapsed := time.Since(start)

	if err != nil {
		c.log.Debug("git query failed",
			zap.String("query", q.Name),
			zap.Duration("elapsed", elapsed),
			zap.Bool("timeout", errors.Is(err, context.DeadlineExceeded)),
			zap.Error(err))
		return ""
	}

	c.log.Debug("git query",
		zap.String("query", q.Name),
		zap.Duration("elapsed", elapsed),
		zap.Int("bytes", len(out)))
	return out
}

// ExecRunner returns a Runner that executes binary as a child process.
// Non-zero exits, a missing binary and deadline expiry are all errors.
func ExecRunner(binary string) Runner {
	return func(ctx context.Context, dir string, args ...string) (string, error) {
		cmd := exec.CommandContext(ctx, binary, args...)
		cmd.Dir = dir
		cmd.WaitDelay = waitDelay

		var stdout strings.Builder
		cmd.Stdout = &stdout

		if err := cmd.Run(); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", fmt.Errorf("%s %s: %w", binary, strings.Join(args, " "), ctxErr)
			}
			return "", fmt.Errorf("%s %s: %w", binary, strings.Join(args, " "), err)
		}
		return stdout.String(), nil
	}
}
