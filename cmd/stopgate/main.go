package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/adrianpk/stopgate/internal/cli"
	"github.com/adrianpk/stopgate/internal/config"
	"github.com/adrianpk/stopgate/internal/gate"
	"github.com/adrianpk/stopgate/internal/git"
	"github.com/adrianpk/stopgate/internal/hook"
	"github.com/adrianpk/stopgate/internal/logging"
	"github.com/adrianpk/stopgate/internal/message"
	"github.com/adrianpk/stopgate/internal/policy"
	"github.com/adrianpk/stopgate/internal/status"
)

// exitError carries a hook exit status back to main.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// app holds what every subcommand shares.
type app struct {
	configDir string
	cfg       *config.Config
	cfgErr    error
	log       *zap.Logger
	now       func() time.Time
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{log: zap.NewNop(), now: time.Now}

	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	_ = a.log.Sync()

	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	fmt.Fprintln(stderr, err)
	return hook.ExitFailure.Code()
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "stopgate",
		Short:         "Claude Code hooks that keep the agent from stopping before the work is done",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.setup(cmd.Name())
		},
	}
	root.PersistentFlags().StringVar(&a.configDir, "config-dir", "", "directory searched for .stopgate.yml (default: current directory)")

	root.AddCommand(
		newStopCmd(a),
		newStatusReminderCmd(a),
		newReadDocsCmd(a),
		newRulesCmd(a),
		newInitCmd(a),
	)
	return root
}

// setup loads the configuration and builds the logger. Neither step may
// prevent a hook from answering, so failures fall back to defaults.
func (a *app) setup(command string) {
	dir := a.configDir
	if dir == "" {
		if cwd, err := os.Getwd(); err == nil {
			dir = cwd
		}
	}

	cfg, err := config.Load(dir)
	if err != nil {
		a.cfgErr = err
		cfg = config.Default()
	}
	a.cfg = cfg

	logger, err := logging.New(&cfg.Logging)
	if err != nil {
		logger = zap.NewNop()
	}
	a.log = logging.ForInvocation(logger, command)

	if a.cfgErr != nil {
		a.log.Warn("config not loaded, using defaults", zap.Error(a.cfgErr))
	}
}

// registry returns the configured registry, or the default one when the
// configured rules are invalid.
func (a *app) registry() *policy.Registry {
	reg, err := policy.DefaultRegistry().Extend(&a.cfg.Rules)
	if err != nil {
		a.log.Warn("invalid rules config, using defaults", zap.Error(err))
		return policy.DefaultRegistry()
	}
	return reg
}

func newStopCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop hook: block until the checklist is done and the status file is fresh",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := hook.Decode(cmd.InOrStdin())
			if err != nil {
				a.log.Warn("failing open", zap.Error(err))
				return respond(hook.FailOpen(), cmd, a.log)
			}

			g := gate.New(
				status.NewChecker(&a.cfg.Status),
				git.NewCollector(&a.cfg.Git, git.WithLogger(a.log)),
				a.registry(),
				gate.WithLogger(a.log),
			)
			return respond(g.Evaluate(cmd.Context(), req), cmd, a.log)
		},
	}
}

func newStatusReminderCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status-reminder",
		Short: "UserPromptSubmit hook: ask the agent to keep its status file current",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := hook.DecodePrompt(cmd.InOrStdin())
			if err != nil || req.Cwd == "" {
				return respond(hook.FailOpen(), cmd, a.log)
			}

			path := status.ExpectedPath(req.Cwd, req.SessionID)
			a.log.Debug("status reminder", zap.String("status_path", path))
			return respond(hook.Allow(message.StatusReminder(path, a.now())), cmd, a.log)
		},
	}
}

func newReadDocsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "read-docs",
		Short: "UserPromptSubmit hook: remind the agent how to read the docs when asked to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := hook.DecodePrompt(cmd.InOrStdin())
			if err != nil || !message.WantsDocs(req.Text()) {
				return respond(hook.FailOpen(), cmd, a.log)
			}
			return respond(hook.Allow(message.ReadDocsReminder()), cmd, a.log)
		},
	}
}

func newRulesCmd(a *app) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Print the change types checked on the first stop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfgErr != nil {
				return a.cfgErr
			}
			reg, err := policy.DefaultRegistry().Extend(&a.cfg.Rules)
			if err != nil {
				return err
			}
			return cli.RunRules(reg, verbose, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print patterns and checks")
	return cmd
}

func newInitCmd(a *app) *cobra.Command {
	var local bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunInit(local, a.configDir, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&local, "local", false, "create .stopgate.yml in the config directory instead of the global config")
	return cmd
}

// respond writes the decision and turns a non-zero exit into an exitError.
func respond(d hook.Decision, cmd *cobra.Command, log *zap.Logger) error {
	code, err := d.Write(cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		log.Warn("cannot write hook response", zap.Error(err))
	}
	if code != hook.ExitAllow.Code() {
		return &exitError{code: code}
	}
	return nil
}
