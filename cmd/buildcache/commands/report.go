package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/buildcache/internal/history"
	"git.home.luguber.info/inful/buildcache/internal/report"
)

// ReportCmd implements the 'report' command.
type ReportCmd struct {
	Limit    int  `short:"n" default:"10" help:"How many invocations to list"`
	Problems bool `short:"p" help:"Print the problems of the most recent invocation"`
}

func (r *ReportCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if !cfg.History.Enabled {
		return fmt.Errorf("invocation history is disabled; enable history in the configuration")
	}
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	if r.Problems {
		return printLastProblems(ctx, store)
	}
	return printRecent(ctx, store, r.Limit)
}

func printRecent(ctx context.Context, store *history.Store, limit int) error {
	invocations, err := store.Recent(ctx, limit)
	if err != nil {
		return err
	}
	if len(invocations) == 0 {
		fmt.Println("No recorded invocations.")
		return nil
	}
	for _, inv := range invocations {
		line := fmt.Sprintf("%s  %-20s  %s", inv.CreatedAt.Format("2006-01-02 15:04:05"), inv.Outcome, inv.ID)
		if inv.Reused {
			line += "  (cache reused)"
		}
		if inv.TotalProblems > 0 {
			line += fmt.Sprintf("  %s", report.SummaryHeader(inv.TotalProblems, inv.UniqueProblems))
		}
		fmt.Println(line)
	}
	return nil
}

func printLastProblems(ctx context.Context, store *history.Store) error {
	last, err := store.Last(ctx)
	if err != nil {
		return err
	}
	if last == nil {
		fmt.Println("No recorded invocations.")
		return nil
	}
	if last.ReportFile == "" {
		fmt.Println("The most recent invocation produced no problem report.")
		return nil
	}
	dataFile := filepath.Join(filepath.Dir(last.ReportFile), report.DataFileName)
	records, truncated, err := report.ParseDataFile(dataFile)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, report.SummaryHeader(last.TotalProblems, last.UniqueProblems))
	seen := make(map[string]bool, len(records))
	for _, rec := range records {
		if seen[rec.Message] {
			continue
		}
		seen[rec.Message] = true
		fmt.Fprintf(os.Stdout, "> %s\n", rec.Message)
	}
	fmt.Fprintf(os.Stdout, "See the complete report at %s\n", last.ReportFile)
	if truncated {
		fmt.Fprintln(os.Stdout, "The report is partial; the walk stopped at the configured problem limit.")
	}
	return nil
}
