// Command reconcile runs one reconciliation pass over local files and writes
// the payment batches, exceptions, invalid rows, ledger and report to a
// directory.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"supplier-payment-backend/internal/config"
	"supplier-payment-backend/internal/export"
	"supplier-payment-backend/internal/logger"
	"supplier-payment-backend/internal/models"
	"supplier-payment-backend/internal/services/normalize"
	"supplier-payment-backend/internal/services/reconciliation"
	"supplier-payment-backend/internal/services/registry"
	"supplier-payment-backend/internal/tabular"
)

const (
	exitOK         = 0
	exitUnverified = 1
	exitFailed     = 2
)

func main() {
	_ = godotenv.Load()
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFailed
	}
	rc := cfg.Reconciliation

	fs := flag.NewFlagSet("reconcile", flag.ContinueOnError)
	fs.SetOutput(stderr)
	salesPath := fs.String("sales", "", "Specify file path for the sales export (csv or xlsx)")
	registryPath := fs.String("registry", "", "Specify file path for the supplier registry")
	ledgerPath := fs.String("ledger", "", "Specify file path for the existing ledger (optional)")
	threshold := rc.ThresholdAmount()
	fs.TextVar(&threshold, "threshold", threshold, "Amount from which suppliers are paid by bank")
	org := fs.String("org", rc.Organization, "Organization name used in generated payment references")
	outDir := fs.String("out", "out", "Directory the output files are written to")
	format := fs.String("format", tabular.FormatCSV, "Output format: csv or xlsx")
	encoding := fs.String("encoding", rc.InputEncoding, "CSV input encoding: auto, utf-8 or windows-1252")
	verbose := fs.Bool("v", false, "Log every invalid row and exception")
	if err := fs.Parse(args); err != nil {
		return exitFailed
	}

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log := logger.NewWithWriter(zerolog.ConsoleWriter{Out: stderr, NoColor: true}).Level(level)

	if *salesPath == "" || *registryPath == "" {
		fmt.Fprintln(stderr, "-sales and -registry are required")
		fs.Usage()
		return exitFailed
	}
	if *format != tabular.FormatCSV && *format != tabular.FormatXLSX {
		fmt.Fprintf(stderr, "unsupported format %q\n", *format)
		return exitFailed
	}
	if threshold.IsNegative() {
		fmt.Fprintf(stderr, "invalid threshold %s\n", threshold)
		return exitFailed
	}

	opts := tabular.Options{Encoding: *encoding}
	normOpts := normalize.Options{RequirePeriod: rc.RequirePeriod, HeaderScanRows: rc.HeaderScanRows}

	sales, err := readTable(*salesPath, opts)
	if err != nil {
		log.Error().Err(err).Msg("read sales")
		return exitFailed
	}
	regTable, err := readTable(*registryPath, opts)
	if err != nil {
		log.Error().Err(err).Msg("read registry")
		return exitFailed
	}
	suppliers, err := registry.ParseRows(regTable, rc.HeaderScanRows)
	if err != nil {
		return structural(log, err)
	}

	var ledger []models.LedgerEntry
	if *ledgerPath != "" {
		ledgerTable, err := readTable(*ledgerPath, opts)
		if err != nil {
			log.Error().Err(err).Msg("read ledger")
			return exitFailed
		}
		if ledger, err = normalize.UpgradeLedger(ledgerTable, normOpts); err != nil {
			return structural(log, err)
		}
	}

	res, err := reconciliation.Run(reconciliation.Input{
		Sales:        sales,
		Registry:     suppliers.Records,
		Ledger:       ledger,
		Threshold:    threshold,
		Organization: *org,
		Tolerance:    rc.ToleranceAmount(),
		Normalize:    normOpts,
	})
	if err != nil {
		return structural(log, err)
	}
	for _, inv := range res.Buckets.Invalid {
		log.Debug().Int("row", inv.RowNumber).Str("issue", inv.Issue).Msg("invalid row")
	}
	for _, exc := range res.Buckets.Exceptions {
		log.Debug().Str("company", exc.CompanyName).Str("issue", exc.Issue).Msg("exception")
	}

	report := res.Metrics.Report()
	out := export.Outputs{
		Buckets:      res.Buckets,
		NewLedger:    res.NewLedger,
		MergedLedger: res.MergedLedger,
		Report:       report,
	}
	if err := writeOutputs(*outDir, *format, out); err != nil {
		log.Error().Err(err).Msg("write outputs")
		return exitFailed
	}

	fmt.Fprintln(stdout, "Reconciliation Summary")
	fmt.Fprintln(stdout, "----------------------")
	for _, line := range report {
		fmt.Fprintf(stdout, "%-24s %s\n", line.Label+":", line.Value)
	}
	fmt.Fprintf(stdout, "\nFiles written to %s\n", *outDir)

	if !res.Metrics.Passed {
		log.Warn().Msg("verification failed: check the report before using the batch files")
		return exitUnverified
	}
	return exitOK
}

func readTable(path string, opts tabular.Options) (tabular.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return tabular.Table{}, err
	}
	defer f.Close()
	return tabular.Read(path, f, opts)
}

func writeOutputs(dir, format string, out export.Outputs) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, b := range export.Buckets {
		path := filepath.Join(dir, export.Filename("", b, format))
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		werr := out.Write(f, b, format)
		if cerr := f.Close(); werr == nil {
			werr = cerr
		}
		if werr != nil {
			return fmt.Errorf("%s: %w", path, werr)
		}
	}
	return nil
}

func structural(log zerolog.Logger, err error) int {
	var serr *normalize.StructuralError
	if errors.As(err, &serr) {
		log.Error().Strs("missing", serr.Missing).Msg(serr.Error())
	} else {
		log.Error().Err(err).Msg("reconciliation halted")
	}
	return exitFailed
}
