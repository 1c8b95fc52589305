package hook

import (
	"fmt"
	"io"
)

// ExitSignal is the process exit status a hook reports.
type ExitSignal int

const (
	// ExitAllow lets the agent proceed. Stdout is shown as context.
	ExitAllow ExitSignal = 0
	// ExitFailure is a generic error. The stop path never produces it.
	ExitFailure ExitSignal = 1
	// ExitBlock stops the agent. Stderr is fed back to it.
	ExitBlock ExitSignal = 2
)

// Code returns the numeric exit status.
func (e ExitSignal) Code() int {
	return int(e)
}

func (e ExitSignal) String() string {
	switch e {
	case ExitAllow:
		return "allow"
	case ExitFailure:
		return "failure"
	case ExitBlock:
		return "block"
	default:
		return fmt.Sprintf("exit(%d)", int(e))
	}
}

// Decision is the outcome of one hook invocation.
type Decision struct {
	Allow   bool
	Message string
	Exit    ExitSignal
}

// Allow returns an allowing decision with an optional note for stdout.
func Allow(message string) Decision {
	return Decision{Allow: true, Message: message, Exit: ExitAllow}
}

// Block returns a blocking decision with the message for stderr.
func Block(message string) Decision {
	return Decision{Allow: false, Message: message, Exit: ExitBlock}
}

// FailOpen is the decision for input that cannot be understood: allow silently.
func FailOpen() Decision {
	return Allow("")
}

// Write emits the message on the channel matching the decision and returns
// the exit code to terminate with.
func (d Decision) Write(stdout, stderr io.Writer) (int, error) {
	if d.Message == "" {
		return d.Exit.Code(), nil
	}

	w := stdout
	if !d.Allow {
		w = stderr
	}
	if _, err := fmt.Fprintln(w, d.Message); err != nil {
		return d.Exit.Code(), fmt.Errorf("write %s message: %w", d.Exit, err)
	}
	return d.Exit.Code(), nil
}
