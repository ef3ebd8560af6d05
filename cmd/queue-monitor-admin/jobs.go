package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/target/mmk-queue-monitor/internal/bootstrap"
	"github.com/target/mmk-queue-monitor/internal/domain/filter"
	"github.com/target/mmk-queue-monitor/internal/domain/model"
	"github.com/target/mmk-queue-monitor/internal/service"
	"github.com/target/mmk-queue-monitor/internal/validation"
)

const timeLayout = "2006-01-02 15:04:05"

type searchOptions struct {
	Values url.Values
	Limit  int
	Offset int
	JSON   bool
}

func parseSearchFlags(name string, args []string, paged bool) (searchOptions, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var (
		opts   searchOptions
		fields = map[string]*string{}
	)
	for _, f := range []struct{ name, usage string }{
		{filter.FieldIs, "Scope: waiting, in-progress, done, success, buried, failed or stopped"},
		{filter.FieldSender, "Exact sender name"},
		{filter.FieldClass, "Substring of the job class"},
		{filter.FieldPushed, `Pushed date range, "YYYY-MM-DD - YYYY-MM-DD"`},
		{filter.FieldContains, "Case-sensitive substring of the job payload"},
	} {
		fields[f.name] = fs.String(f.name, "", f.usage)
	}
	if paged {
		fs.IntVar(&opts.Limit, "limit", model.DefaultPushPageSize, "Maximum rows to print")
		fs.IntVar(&opts.Offset, "offset", 0, "Rows to skip")
	}
	fs.BoolVar(&opts.JSON, "json", false, "Print JSON instead of a table")

	if err := fs.Parse(args); err != nil {
		return searchOptions{}, err
	}
	if fs.NArg() > 0 {
		return searchOptions{}, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	if opts.Limit < 0 || opts.Offset < 0 {
		return searchOptions{}, errors.New("--limit and --offset must not be negative")
	}

	opts.Values = url.Values{}
	fs.Visit(func(f *flag.Flag) {
		if p, ok := fields[f.Name]; ok {
			opts.Values.Set(f.Name, *p)
		}
	})
	return opts, nil
}

func printFilterErrors(w io.Writer, errs validation.Errors) error {
	for _, field := range errs.Fields() {
		if err := writef(w, "filter %s: %s\n", field, errs[field]); err != nil {
			return err
		}
	}
	return nil
}

func runSearch(cmdCtx *commandContext, args []string) error {
	opts, err := parseSearchFlags("search", args, true)
	if err != nil {
		return err
	}
	return withServices(cmdCtx, defaultCommandTimeout, func(ctx context.Context, svcs bootstrap.ServiceContainer) error {
		f := filter.FromValues(opts.Values, filter.WithLocation(svcs.Location))
		if errs := f.Validate(); len(errs) > 0 {
			if err := printFilterErrors(os.Stderr, errs); err != nil {
				return err
			}
		}
		page, err := svcs.Jobs.Search(ctx, f, model.PushListOptions{Limit: opts.Limit, Offset: opts.Offset})
		if err != nil {
			return err
		}
		if opts.JSON {
			return printJSON(cmdCtx.Out, page)
		}
		return printPushTable(cmdCtx.Out, page, svcs.Location)
	})
}

func printPushTable(w io.Writer, page *model.PushPage, loc *time.Location) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if err := writeln(tw, "ID\tSENDER\tCLASS\tPUSHED\tLAST EXEC\tSTOPPED"); err != nil {
		return err
	}
	for _, p := range page.Items {
		if err := writef(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			p.ID, p.SenderName, p.JobClass, formatUnix(p.PushedAt, loc), formatID(p.LastExecID), formatUnixPtr(p.StoppedAt, loc),
		); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return writef(w, "\nShowing %d of %d (limit %d, offset %d)\n", len(page.Items), page.Total, page.Limit, page.Offset)
}

func runJob(cmdCtx *commandContext, args []string) error {
	id, jsonOut, err := parseIDFlags("job", args)
	if err != nil {
		return err
	}
	return withServices(cmdCtx, defaultCommandTimeout, func(ctx context.Context, svcs bootstrap.ServiceContainer) error {
		details, err := svcs.Jobs.GetJob(ctx, id)
		if err != nil {
			return err
		}
		if jsonOut {
			return printJSON(cmdCtx.Out, details)
		}
		return printJobDetails(cmdCtx.Out, details, svcs.Location)
	})
}

func printJobDetails(w io.Writer, d *service.JobDetails, loc *time.Location) error {
	p := d.Push
	scopes := make([]string, len(d.Scopes))
	for i, s := range d.Scopes {
		scopes[i] = string(s)
	}
	if err := writef(w, "Job %d (%s)\n  Sender: %s\n  Class:  %s\n  Pushed: %s\n  TTR:    %ds  Delay: %ds\n  Scopes: %s\n  Data:   %s\n",
		p.ID, p.JobUID, p.SenderName, p.JobClass, formatUnix(p.PushedAt, loc), p.TTR, p.Delay,
		strings.Join(scopes, ", "), p.JobData,
	); err != nil {
		return err
	}
	if len(d.Execs) == 0 {
		return writeln(w, "\n(no attempts)")
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if err := writeln(tw, "\nATTEMPT\tWORKER\tSTARTED\tDONE\tRETRY\tERROR"); err != nil {
		return err
	}
	for _, e := range d.Execs {
		errText := ""
		if e.Error != nil {
			errText = firstLine(*e.Error)
		}
		if err := writef(tw, "%d\t%s\t%s\t%s\t%t\t%s\n",
			e.Attempt, formatID(e.WorkerID), formatUnix(e.StartedAt, loc), formatUnixPtr(e.DoneAt, loc), e.Retry, errText,
		); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func runStopJob(cmdCtx *commandContext, args []string) error {
	id, _, err := parseIDFlags("stop-job", args)
	if err != nil {
		return err
	}
	return withServices(cmdCtx, defaultCommandTimeout, func(ctx context.Context, svcs bootstrap.ServiceContainer) error {
		if err := svcs.Jobs.StopJob(ctx, id); err != nil {
			return err
		}
		return writef(cmdCtx.Out, "job %d marked as stopped\n", id)
	})
}

func runClasses(cmdCtx *commandContext, args []string) error {
	return runGroups(cmdCtx, "classes", args)
}

func runSenders(cmdCtx *commandContext, args []string) error {
	return runGroups(cmdCtx, "senders", args)
}

func runGroups(cmdCtx *commandContext, name string, args []string) error {
	opts, err := parseSearchFlags(name, args, false)
	if err != nil {
		return err
	}
	return withServices(cmdCtx, defaultCommandTimeout, func(ctx context.Context, svcs bootstrap.ServiceContainer) error {
		f := filter.FromValues(opts.Values, filter.WithLocation(svcs.Location))
		if errs := f.Validate(); len(errs) > 0 {
			if err := printFilterErrors(os.Stderr, errs); err != nil {
				return err
			}
		}
		var rows []model.NamedCount
		if name == "classes" {
			rows, err = svcs.Jobs.SearchClasses(ctx, f)
		} else {
			rows, err = svcs.Jobs.SearchSenders(ctx, f)
		}
		if err != nil {
			return err
		}
		if opts.JSON {
			return printJSON(cmdCtx.Out, rows)
		}
		tw := tabwriter.NewWriter(cmdCtx.Out, 0, 0, 2, ' ', 0)
		if err := writeln(tw, "NAME\tJOBS"); err != nil {
			return err
		}
		for _, r := range rows {
			if err := writef(tw, "%s\t%d\n", r.Name, r.Count); err != nil {
				return err
			}
		}
		return tw.Flush()
	})
}

func parseIDFlags(name string, args []string) (int64, bool, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	jsonOut := fs.Bool("json", false, "Print JSON instead of text")
	if err := fs.Parse(args); err != nil {
		return 0, false, err
	}
	if fs.NArg() != 1 {
		return 0, false, fmt.Errorf("usage: queue-monitor-admin %s [--json] <id>", name)
	}
	id, err := strconv.ParseInt(fs.Arg(0), 10, 64)
	if err != nil || id <= 0 {
		return 0, false, fmt.Errorf("invalid id %q", fs.Arg(0))
	}
	return id, *jsonOut, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatUnix(ts int64, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return time.Unix(ts, 0).In(loc).Format(timeLayout)
}

func formatUnixPtr(ts *int64, loc *time.Location) string {
	if ts == nil {
		return "-"
	}
	return formatUnix(*ts, loc)
}

func formatID(id *int64) string {
	if id == nil {
		return "-"
	}
	return strconv.FormatInt(*id, 10)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
