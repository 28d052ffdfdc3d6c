// Command report loads one broker export and prints its dashboard as JSON.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"

	"trade-journal/internal/api"
	"trade-journal/internal/filter"
	"trade-journal/internal/ingest"
	"trade-journal/internal/interfaces"
	"trade-journal/internal/journal"
	"trade-journal/internal/journal/journalobs"
	"trade-journal/internal/logger"
	"trade-journal/internal/store"
	"trade-journal/internal/tradeview"
	"trade-journal/internal/types"
)

type options struct {
	file       string
	config     string
	timezone   string
	from, to   string
	direction  string
	instrument string
	search     string
	sortKey    string
	sortOrder  string
	exportPath string
	log        bool
	remote     string
}

type output struct {
	Load        types.LoadReport `json:"load"`
	Instruments []string         `json:"instruments"`
	Dashboard   types.Dashboard  `json:"dashboard"`
	Trades      []types.Trade    `json:"trades,omitempty"`
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	fs.StringVar(&o.file, "file", "", "broker CSV export to load (- for stdin)")
	fs.StringVar(&o.config, "config", "", "optional YAML or TOML config (timezone)")
	fs.StringVar(&o.timezone, "tz", "", "IANA timezone overriding the config")
	fs.StringVar(&o.from, "from", "", "first day to include, YYYY-MM-DD")
	fs.StringVar(&o.to, "to", "", "last day to include, YYYY-MM-DD")
	fs.StringVar(&o.direction, "direction", types.All, "all, Long or Short")
	fs.StringVar(&o.instrument, "instrument", types.All, "instrument to include, or all")
	fs.StringVar(&o.search, "q", "", "trade log search text")
	fs.StringVar(&o.sortKey, "sort", "", "trade log sort key")
	fs.StringVar(&o.sortOrder, "order", "", "asc or desc")
	fs.StringVar(&o.exportPath, "export", "", "write the trade log as CSV to this path (- for stdout)")
	fs.BoolVar(&o.log, "log", false, "include the trade log in the JSON output")
	fs.StringVar(&o.remote, "remote", "", "base URL of a running journal service; the file is uploaded there")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.file == "" {
		return o, errors.New("-file is required")
	}
	return o, nil
}

func location(o options) (*time.Location, error) {
	cfg, err := store.LoadConfig(o.config)
	if err != nil {
		return nil, err
	}
	if o.timezone != "" {
		cfg.Timezone = o.timezone
	}
	return cfg.Location()
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

func run(ctx context.Context, o options, stdout io.Writer) error {
	if o.remote != "" {
		return runRemote(ctx, o, stdout)
	}
	loc, err := location(o)
	if err != nil {
		return err
	}
	f, err := filter.Criteria(o.from, o.to, o.direction, o.instrument, loc)
	if err != nil {
		return err
	}
	q, err := tradeview.Query(o.search, o.sortKey, o.sortOrder)
	if err != nil {
		return err
	}

	var j interfaces.Journal = journalobs.Wrap(journal.New(journal.Options{Location: loc}))

	in, err := openInput(o.file)
	if err != nil {
		return ingest.ReadFailure(err)
	}
	defer in.Close()

	report, err := j.Load(ctx, in)
	if err != nil {
		return err
	}

	d, err := j.Dashboard(ctx, f)
	if err != nil {
		return err
	}
	out := output{Load: report, Instruments: j.Instruments(ctx), Dashboard: d}
	if o.log {
		if out.Trades, err = j.LogView(ctx, f, q); err != nil {
			return err
		}
	}

	if o.exportPath != "" {
		csv, err := j.Export(ctx, f, q)
		if err != nil {
			return err
		}
		if done, err := writeExport(o.exportPath, csv, stdout); done || err != nil {
			return err
		}
	}
	return writeOutput(stdout, out)
}

// runRemote does the same through a journal service, which then keeps the
// uploaded trades.
func runRemote(ctx context.Context, o options, stdout io.Writer) error {
	c := api.NewClient(o.remote, api.WithLogging(true))
	p := api.ViewParams{
		From:       o.from,
		To:         o.to,
		Direction:  o.direction,
		Instrument: o.instrument,
		Search:     o.search,
		Sort:       o.sortKey,
		Order:      o.sortOrder,
	}

	in, err := openInput(o.file)
	if err != nil {
		return ingest.ReadFailure(err)
	}
	defer in.Close()

	var out output
	if out.Load, err = c.Load(ctx, in); err != nil {
		return err
	}
	if out.Dashboard, err = c.Dashboard(ctx, p); err != nil {
		return err
	}
	if out.Instruments, err = c.Instruments(ctx); err != nil {
		return err
	}
	if o.log {
		if out.Trades, err = c.LogView(ctx, p); err != nil {
			return err
		}
	}
	if o.exportPath != "" {
		csv, err := c.Export(ctx, p)
		if err != nil {
			return err
		}
		if done, err := writeExport(o.exportPath, csv, stdout); done || err != nil {
			return err
		}
	}
	return writeOutput(stdout, out)
}

// writeExport writes csv to path. Exporting to stdout replaces the JSON
// output, reported by done.
func writeExport(path, csv string, stdout io.Writer) (done bool, err error) {
	if path == "-" {
		_, err = io.WriteString(stdout, csv)
		return true, err
	}
	if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
		return false, fmt.Errorf("write export: %w", err)
	}
	return false, nil
}

func writeOutput(stdout io.Writer, out output) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func main() {
	_ = godotenv.Load()

	o, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg := logger.LoadConfigFromEnv()
	cfg.ServiceName = "trade-journal-report"
	cfg.Output = os.Stderr
	if err := logger.InitWithConfig(cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx := context.Background()
	err = run(ctx, o, os.Stdout)

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_ = logger.Shutdown(shutdownCtx)

	if err != nil {
		fmt.Fprintln(os.Stderr, "report:", err)
		os.Exit(1)
	}
}
