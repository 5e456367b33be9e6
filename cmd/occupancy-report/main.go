// Command occupancy-report prints per-hall bed occupancy for the configured
// camp. It loads the camp definition, opens the persistent store selected by
// the environment, seeds missing halls and categories, and emits summaries
// as JSON or a plain table.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"campcore/internal/config"
	"campcore/internal/core"
	"campcore/pkg/domain"
)

var exitFunc = os.Exit

func main() {
	code := cli(os.Args[1:], os.Stdout, os.Stderr)
	exitFunc(code)
}

func cli(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("occupancy-report", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		configPath string
		hallName   string
		format     string
	)
	fs.StringVar(&configPath, "config", config.PathFromEnv(), "path to camp definition toml")
	fs.StringVar(&hallName, "hall", "", "restrict the report to one hall")
	fs.StringVar(&format, "format", "json", "output format: json|table")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if err := run(context.Background(), stdout, configPath, hallName, format); err != nil {
		fmt.Fprintf(stderr, "occupancy-report: %v\n", err)
		return 1
	}
	return 0
}

func run(ctx context.Context, stdout io.Writer, configPath, hallName, format string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	store, err := core.OpenPersistentStore(core.NewDefaultRulesEngine())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	svc := core.NewService(store, core.WithLogger(core.NewStdLogger()))
	if err := config.Seed(ctx, svc, cfg); err != nil {
		return err
	}

	halls := cfg.Halls
	if hallName != "" {
		halls = nil
		for _, hall := range cfg.Halls {
			if domain.NormalizeHallName(hall.Name) == domain.NormalizeHallName(hallName) {
				halls = append(halls, hall)
			}
		}
		if len(halls) == 0 {
			return fmt.Errorf("hall %q is not configured", hallName)
		}
	}

	summaries := make([]core.OccupancySummary, 0, len(halls))
	for _, hall := range halls {
		summary, err := svc.OccupancySummary(ctx, hall.Name)
		if err != nil {
			return err
		}
		summaries = append(summaries, summary)
	}

	switch format {
	case "json":
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	case "table":
		tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "HALL\tTOTAL\tOCCUPIED\tVERIFIED\tREMAINING")
		for _, s := range summaries {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\n", s.HallName, s.TotalBeds, s.Occupied, s.Verified, s.Remaining)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
