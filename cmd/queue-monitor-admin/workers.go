package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/target/mmk-queue-monitor/internal/bootstrap"
	"github.com/target/mmk-queue-monitor/internal/domain/model"
	"github.com/target/mmk-queue-monitor/internal/service"
)

type workersOptions struct {
	Sender string
	Active bool
	Limit  int
	Offset int
	JSON   bool
}

func parseWorkersFlags(args []string) (workersOptions, error) {
	fs := flag.NewFlagSet("workers", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts workersOptions
	fs.StringVar(&opts.Sender, "sender", "", "Only workers of this sender")
	fs.BoolVar(&opts.Active, "active", false, "Only workers that have not finished")
	fs.IntVar(&opts.Limit, "limit", model.DefaultWorkerPageSize, "Maximum rows to print")
	fs.IntVar(&opts.Offset, "offset", 0, "Rows to skip")
	fs.BoolVar(&opts.JSON, "json", false, "Print JSON instead of a table")

	if err := fs.Parse(args); err != nil {
		return workersOptions{}, err
	}
	if opts.Limit < 0 || opts.Offset < 0 {
		return workersOptions{}, errors.New("--limit and --offset must not be negative")
	}
	return opts, nil
}

func runWorkers(cmdCtx *commandContext, args []string) error {
	opts, err := parseWorkersFlags(args)
	if err != nil {
		return err
	}
	return withServices(cmdCtx, defaultCommandTimeout, func(ctx context.Context, svcs bootstrap.ServiceContainer) error {
		workers, err := svcs.Workers.List(ctx, model.WorkerListOptions{
			Sender:     opts.Sender,
			ActiveOnly: opts.Active,
			Limit:      opts.Limit,
			Offset:     opts.Offset,
		})
		if err != nil {
			return err
		}
		views := make([]*service.WorkerView, 0, len(workers))
		for _, w := range workers {
			v, err := w.View(ctx)
			if err != nil {
				return err
			}
			views = append(views, v)
		}
		if opts.JSON {
			return printJSON(cmdCtx.Out, views)
		}
		return printWorkerTable(cmdCtx.Out, views, svcs.Location)
	})
}

func printWorkerTable(w io.Writer, views []*service.WorkerView, loc *time.Location) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if err := writeln(tw, "ID\tSENDER\tPID\tSTATE\tSTARTED\tDURATION\tEXECS (DONE/STARTED)"); err != nil {
		return err
	}
	for _, v := range views {
		if err := writef(tw, "%d\t%s\t%d\t%s\t%s\t%s\t%d/%d\n",
			v.ID, v.SenderName, v.PID, v.State, formatUnix(v.StartedAt, loc),
			time.Duration(v.DurationSeconds)*time.Second, v.ExecTotalDone, v.ExecTotalStarted,
		); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func runStopWorker(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("stop-worker", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	yes := fs.Bool("yes", false, "Skip confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, _, err := parseIDFlags("stop-worker", fs.Args())
	if err != nil {
		return err
	}
	if err := confirmAction(cmdCtx, *yes, fmt.Sprintf("About to mark worker %d as stopped.", id)); err != nil {
		return err
	}

	return withServices(cmdCtx, defaultCommandTimeout, func(ctx context.Context, svcs bootstrap.ServiceContainer) error {
		w, err := svcs.Workers.Stop(ctx, id)
		if err != nil {
			return err
		}
		return writef(cmdCtx.Out, "worker %d (pid %d) marked as stopped\n", id, w.Record().PID)
	})
}
