package cli

import (
	"context"
	"errors"
	"fmt"

	"taskq/internal/watch"
)

func (a *app) add(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usagef("usage: taskq add <description> <priority>")
	}
	priority, err := parsePriority(args[1])
	if err != nil {
		return err
	}
	t, err := a.svc.Add(ctx, args[0], priority)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Task %q (priority %d) added with id %s\n", t.Description, t.Priority, t.ID)
	return nil
}

func (a *app) execute(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usagef("usage: taskq execute <priority>")
	}
	priority, err := parsePriority(args[0])
	if err != nil {
		return err
	}
	t, err := a.svc.ExecuteOne(ctx, priority)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Task %q (priority %d) completed\n", t.Description, t.Priority)
	return nil
}

func (a *app) runAll(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return usagef("usage: taskq run-all")
	}
	rep, err := a.svc.RunAll(ctx)
	if rep.Executed > 0 || err == nil {
		fmt.Fprintf(a.stdout, "Executed %d of %d pending tasks\n", rep.Executed, rep.Total)
	}
	return err
}

func (a *app) view(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return usagef("usage: taskq view")
	}
	set, err := a.svc.View(ctx)
	if err != nil {
		return err
	}
	renderTasks(a.stdout, set)
	return nil
}

func (a *app) clearHistory(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return usagef("usage: taskq clear-history")
	}
	if err := a.svc.ClearHistory(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, "Task history cleared")
	return nil
}

func (a *app) watch(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return usagef("usage: taskq watch")
	}
	err := watch.Run(ctx, a.cfg.Storage.Path, a.log, func() error {
		set, err := a.svc.View(ctx)
		if err != nil {
			return err
		}
		renderTasks(a.stdout, set)
		return nil
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
