// Command reportctl runs one report cycle from the command line, prints the
// summary and writes the exported document.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/sahakari/internal/auth"
	"example.com/sahakari/internal/config"
	"example.com/sahakari/internal/document"
	"example.com/sahakari/internal/domain"
	"example.com/sahakari/internal/report"
	"example.com/sahakari/internal/source"
	"example.com/sahakari/internal/source/postgres"
	"example.com/sahakari/internal/source/rest"
)

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)
	subtle      = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	accent      = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

type options struct {
	year     string
	branch   string
	activity string
	format   string
	out      string
}

func main() {
	var opts options
	flag.StringVar(&opts.year, "year", "", "report year (required)")
	flag.StringVar(&opts.branch, "branch", "", "restrict to one branch")
	flag.StringVar(&opts.activity, "activity", "", "restrict to one master activity id or name")
	flag.StringVar(&opts.format, "format", "pdf", "export format: pdf or xlsx")
	flag.StringVar(&opts.out, "out", "", "output file or directory (default: generated file name in the working directory)")
	flag.Parse()

	cfg := config.Load()
	ctx, cancel := context.WithTimeout(context.Background(), cfg.FetchTimeout+5*time.Second)
	defer cancel()

	records, summaries, closeSource, err := openSource(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer closeSource()

	ctrlOpts := []report.Option{report.WithTimeout(cfg.FetchTimeout), report.WithLogger(log.New(io.Discard, "", 0))}
	if summaries != nil {
		ctrlOpts = append(ctrlOpts, report.WithSummaryFetcher(summaries))
	}
	ctrl := report.NewController(auth.Session{Subject: "reportctl", Role: auth.RoleAdmin}, records, ctrlOpts...)

	path, err := run(ctx, ctrl, opts, os.Stdout)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Fprintln(os.Stdout, subtle.Render("wrote "+path))
}

// run applies the filter described by opts, prints the summary to w and
// writes the document. It returns the path written.
func run(ctx context.Context, ctrl *report.Controller, opts options, w io.Writer) (string, error) {
	renderer, err := document.RendererFor(opts.format)
	if err != nil {
		return "", err
	}
	filter, err := domain.ParseFilter(opts.year, opts.branch, opts.activity)
	if err != nil {
		return "", err
	}
	view, err := ctrl.Apply(ctx, filter)
	if err != nil {
		return "", err
	}
	fmt.Fprintln(w, renderSummary(*view.Summary))

	doc, err := ctrl.Export()
	if err != nil {
		return "", err
	}
	path := opts.out
	if path == "" {
		path = doc.FileName(renderer.Extension())
	} else if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
		path = filepath.Join(path, doc.FileName(renderer.Extension()))
	}

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := renderer.Render(f, doc); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}

func renderSummary(s domain.ReportSummary) string {
	rows := make([][]string, 0, len(s.Breakdown))
	for _, row := range s.Breakdown {
		rows = append(rows, []string{row.ActivityName, strconv.Itoa(row.Participants)})
	}
	if len(rows) == 0 {
		rows = append(rows, []string{"No data available", ""})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(subtle).
		Headers("Activity Name", "Participants").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 1 {
				return cellStyle.Align(lipgloss.Right)
			}
			return cellStyle
		})

	header := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(fmt.Sprintf("Activity Report Summary - %d", s.Year)),
		subtle.Render("Branch: ")+s.Branch,
		subtle.Render("Total Activities: ")+accent.Render(strconv.Itoa(s.TotalActivities)),
		subtle.Render("Total Participants: ")+accent.Render(strconv.Itoa(s.TotalParticipants)),
	)
	return lipgloss.JoinVertical(lipgloss.Left, header, t.Render())
}

func openSource(ctx context.Context, cfg config.Config) (source.RecordFetcher, source.SummaryFetcher, func(), error) {
	switch {
	case cfg.RecordsAPIURL != "":
		client := rest.New(cfg.RecordsAPIURL,
			rest.WithToken(cfg.RecordsAPIToken),
			rest.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
			rest.WithLogger(log.New(os.Stderr, "[source] ", 0)),
		)
		if cfg.SummaryAPIEnabled {
			return client, client, func() {}, nil
		}
		return client, nil, func() {}, nil
	case cfg.PostgresURL != "":
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		return postgres.NewRepository(pool), nil, pool.Close, nil
	default:
		return nil, nil, nil, errors.New("set RECORDS_API_URL or POSTGRES_URL")
	}
}
