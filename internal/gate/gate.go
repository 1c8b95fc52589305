// Package gate decides whether the agent may stop.
package gate

import (
	"context"

	"go.uber.org/zap"

	"github.com/adrianpk/stopgate/internal/hook"
	"github.com/adrianpk/stopgate/internal/message"
	"github.com/adrianpk/stopgate/internal/policy"
	"github.com/adrianpk/stopgate/internal/status"
)

// Phase is the stage of the stop sequence a request belongs to.
type Phase int

const (
	// FirstStop is a stop attempt not caused by a previous block.
	FirstStop Phase = iota
	// SecondStop follows a block issued by this gate.
	SecondStop
)

// PhaseOf maps the host's stop_hook_active flag to a phase.
func PhaseOf(stopHookActive bool) Phase {
	if stopHookActive {
		return SecondStop
	}
	return FirstStop
}

func (p Phase) String() string {
	if p == SecondStop {
		return "second-stop"
	}
	return "first-stop"
}

// StatusChecker reports the state of the status file for a workspace.
type StatusChecker interface {
	Check(dir, sessionID string) status.Result
}

// DiffSource returns the pending change corpus for a workspace.
type DiffSource interface {
	Collect(ctx context.Context, dir string) string
}

// Classifier maps a corpus to detected change types.
type Classifier interface {
	Classify(corpus string) policy.Classification
}

// Gate evaluates stop requests.
type Gate struct {
	status     StatusChecker
	diff       DiffSource
	classifier Classifier
	log        *zap.Logger
}

// Option configures a Gate.
type Option func(*Gate)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(g *Gate) {
		if l != nil {
			g.log = l
		}
	}
}

// New creates a gate from its collaborators.
func New(st StatusChecker, diff DiffSource, classifier Classifier, opts ...Option) *Gate {
	g := &Gate{
		status:     st,
		diff:       diff,
		classifier: classifier,
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Evaluate returns the decision for req. It never fails: every path ends in
// an allow or a block.
func (g *Gate) Evaluate(ctx context.Context, req hook.Request) hook.Decision {
	phase := PhaseOf(req.StopHookActive)
	log := g.log.With(zap.Stringer("phase", phase), zap.String("session", req.SessionID))

	switch phase {
	case SecondStop:
		return g.secondStop(req, log)
	default:
		return g.firstStop(ctx, req, log)
	}
}

// firstStop always blocks with the full checklist.
func (g *Gate) firstStop(ctx context.Context, req hook.Request, log *zap.Logger) hook.Decision {
	st := g.status.Check(req.Cwd, req.SessionID)
	corpus := g.diff.Collect(ctx, req.Cwd)
	detected := g.classifier.Classify(corpus)

	log.Info("blocking first stop",
		zap.Stringer("status", st.State),
		zap.String("status_path", st.Path),
		zap.Int("corpus_bytes", len(corpus)),
		zap.Strings("detected", detected.IDs()),
	)
	return hook.Block(message.FullChecklist(st, detected))
}

// secondStop only checks that the status file is fresh.
func (g *Gate) secondStop(req hook.Request, log *zap.Logger) hook.Decision {
	st := g.status.Check(req.Cwd, req.SessionID)
	if st.Valid() {
		log.Info("allowing stop", zap.Stringer("status", st.State))
		return hook.Allow("")
	}

	log.Info("blocking second stop",
		zap.Stringer("status", st.State),
		zap.String("status_path", st.Path),
		zap.Error(st.Err),
	)
	return hook.Block(message.StatusOnly(st))
}
