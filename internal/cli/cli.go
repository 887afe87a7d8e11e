// Package cli is the thin command surface over the scheduler core. It
// owns argument parsing, user-facing formatting, and exit-status mapping;
// all scheduling logic lives in internal/scheduler.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os/signal"
	"strconv"
	"syscall"

	"taskq/internal/config"
	"taskq/internal/scheduler"
	"taskq/internal/storage"
	"taskq/internal/task"
	logx "taskq/pkg/logx"
)

const usageText = `taskq manages and executes tasks by unique priority (lower runs first).

Usage:
  taskq [-config path] <command> [args]

Commands:
  add <description> <priority>   Add a task with a unique pending priority
  execute <priority>             Execute the single pending task with that priority
  run-all                        Execute all pending tasks in priority order
  view                           List all tasks sorted by priority
  clear-history                  Remove every task, pending and completed
  watch                          Follow the task file and reprint on change
`

// usageError marks bad invocations (unknown command, unparsable
// arguments, validation failures). They exit with code 2; everything else
// non-zero exits with 1.
type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// Run executes one invocation and returns the process exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("taskq", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgPath := fs.String("config", "./taskq.yaml", "path to config file (yaml or json)")
	fs.Usage = func() {
		fmt.Fprint(stderr, usageText)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return 2
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	err := dispatch(ctx, *cfgPath, rest[0], rest[1:], stdout)
	if err == nil {
		return 0
	}
	fmt.Fprintln(stderr, "error:", err)
	var uerr *usageError
	if errors.As(err, &uerr) || errors.Is(err, task.ErrEmptyDescription) {
		return 2
	}
	return 1
}

func dispatch(ctx context.Context, cfgPath, command string, args []string, stdout io.Writer) error {
	cfg, err := config.Load(cfgPath, false)
	if err != nil {
		return fmt.Errorf("load config %s: %w", cfgPath, err)
	}

	log, closeLog, err := logx.New(cfg.LoggingSettings())
	if err != nil {
		return err
	}
	defer closeLog()

	storeCfg, err := cfg.StorageSettings()
	if err != nil {
		return err
	}
	store, err := storage.Open(storeCfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	svc := scheduler.New(store, scheduler.NewRunner(cfg.RunnerSettings(), log), log)
	app := &app{cfg: cfg, log: log, svc: svc, stdout: stdout}

	switch command {
	case "add":
		return app.add(ctx, args)
	case "execute":
		return app.execute(ctx, args)
	case "run-all":
		return app.runAll(ctx, args)
	case "view":
		return app.view(ctx, args)
	case "clear-history":
		return app.clearHistory(ctx, args)
	case "watch":
		return app.watch(ctx, args)
	default:
		return usagef("unknown command %q", command)
	}
}

type app struct {
	cfg    *config.Config
	log    logx.Logger
	svc    *scheduler.Service
	stdout io.Writer
}

func parsePriority(s string) (int, error) {
	p, err := strconv.Atoi(s)
	if err != nil {
		return 0, usagef("priority must be an integer, got %q", s)
	}
	return p, nil
}
