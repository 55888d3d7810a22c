// Command normalize reads a raw conversation export and prints the
// canonical conversations or the dashboard computed from them as JSON.
//
//	normalize -in export.json
//	normalize -in - -view dashboard < export.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/anaypant/acs-next-js-dev-sub002/internal/analytics"
	"github.com/anaypant/acs-next-js-dev-sub002/internal/dashboard"
	"github.com/anaypant/acs-next-js-dev-sub002/internal/domain"
	"github.com/anaypant/acs-next-js-dev-sub002/internal/normalize"
	"github.com/anaypant/acs-next-js-dev-sub002/internal/pkg/logger"
)

const (
	viewConversations = "conversations"
	viewDashboard     = "dashboard"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "normalize: %v\n", err)
		os.Exit(1)
	}
}

// payloadLoader serves an already-read export to the dashboard service.
type payloadLoader struct {
	name string
	data []byte
}

func (l *payloadLoader) Name() string { return l.name }

func (l *payloadLoader) Load(ctx context.Context) ([]interface{}, error) {
	return normalize.DecodePayload(l.data)
}

type dashboardView struct {
	Metrics   analytics.DashboardMetrics   `json:"metrics"`
	Analytics analytics.DashboardAnalytics `json:"analytics"`
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("normalize", flag.ContinueOnError)
	fs.SetOutput(stderr)
	in := fs.String("in", "", "export file to read, or - for stdin")
	view := fs.String("view", viewConversations, "output: conversations or dashboard")
	status := fs.String("status", "", "comma-separated statuses to keep (conversations view)")
	query := fs.String("q", "", "search text (conversations view)")
	sortField := fs.String("sort", "date", "sort field: date, name, ev, status")
	order := fs.String("order", "desc", "sort order: asc or desc")
	window := fs.Int("window", analytics.DefaultWindowDays, "trend window in days")
	level := fs.String("log-level", "warn", "log level for diagnostics on stderr")
	compact := fs.Bool("compact", false, "print compact JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *in == "" {
		fs.Usage()
		return fmt.Errorf("-in is required")
	}
	if *view != viewConversations && *view != viewDashboard {
		return fmt.Errorf("unknown view %q", *view)
	}
	field, ok := analytics.ParseSortField(*sortField)
	if !ok {
		return fmt.Errorf("unknown sort field %q", *sortField)
	}
	sortOrder, ok := analytics.ParseSortOrder(*order)
	if !ok {
		return fmt.Errorf("unknown sort order %q", *order)
	}

	data, name, err := readInput(*in, stdin)
	if err != nil {
		return err
	}

	sink := logger.New(stderr, logger.ParseLevel(*level), true)
	svc := dashboard.NewService(&payloadLoader{name: name, data: data},
		dashboard.WithLogger(sink),
		dashboard.WithNormalizer(normalize.New(normalize.WithLogger(sink))),
		dashboard.WithAnalyzer(analytics.New(analytics.WithLogger(sink), analytics.WithWindowDays(*window))),
	)

	snap, err := svc.Refresh(ctx)
	if err != nil {
		return err
	}

	var out interface{}
	switch *view {
	case viewDashboard:
		out = dashboardView{Metrics: snap.Metrics, Analytics: snap.Analytics}
	default:
		f := analytics.Filter{Search: *query}
		for _, s := range strings.Split(*status, ",") {
			if s = strings.TrimSpace(s); s == "" {
				continue
			}
			st := domain.Status(strings.ToLower(s))
			if !st.Valid() {
				return fmt.Errorf("unknown status %q", s)
			}
			f.Statuses = append(f.Statuses, st)
		}
		items, err := svc.Conversations(ctx, f, field, sortOrder)
		if err != nil {
			return err
		}
		out = items
	}

	enc := json.NewEncoder(stdout)
	if !*compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(out)
}

func readInput(path string, stdin io.Reader) ([]byte, string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, "", fmt.Errorf("reading stdin: %w", err)
		}
		return data, "stdin", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", path, err)
	}
	return data, "file:" + path, nil
}
