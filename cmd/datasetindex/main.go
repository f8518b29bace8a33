// Command datasetindex walks a downloaded cloud image dataset and writes an
// index of its images with the split, category, and catalog cloud type
// derived from each path.
//
// Usage:
//
//	go run ./cmd/datasetindex \
//	  -dir ~/datasets/cloud-image-classification \
//	  -out data/index.csv \
//	  -format csv
//
// Logs go to stdout through the shared logger (LOG_LEVEL, LOG_FORMAT). Set
// LOG_LEVEL=error when piping an index written to stdout.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/cloud-classification-api/internal/dataset"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

func main() {
	logger := sharedobs.NewLogger(
		sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		sharedcfg.EnvOrDefault("LOG_FORMAT", "text"),
	)
	if err := run(os.Args[1:], os.Stdout, logger); err != nil {
		logger.Error("dataset index failed", "error", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer, logger *slog.Logger) error {
	fs := flag.NewFlagSet("datasetindex", flag.ContinueOnError)
	dir := fs.String("dir", "", "dataset root directory")
	out := fs.String("out", "", "output file (default stdout)")
	format := fs.String("format", "csv", "output format: csv or json")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *dir == "" {
		fs.Usage()
		return fmt.Errorf("missing required flag: -dir")
	}
	write, err := writerFor(*format)
	if err != nil {
		return err
	}

	entries, err := dataset.Scan(*dir)
	if err != nil {
		return err
	}

	w := stdout
	if *out != "" {
		if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
			return err
		}
		f, err := os.Create(*out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if err := write(w, entries); err != nil {
		return err
	}

	s := dataset.Summarize(entries)
	logger.Info("dataset indexed",
		"dir", *dir,
		"total", s.Total,
		"train", s.Train,
		"test", s.Test,
	)
	for _, c := range s.TrainDistribution {
		logger.Info("train distribution", "cloud_type", c.CloudType, "count", c.Count)
	}
	if *out != "" {
		logger.Info("wrote index", "path", *out, "format", *format)
	}
	return nil
}

func writerFor(format string) (func(io.Writer, []dataset.Entry) error, error) {
	switch strings.ToLower(format) {
	case "csv":
		return dataset.WriteCSV, nil
	case "json":
		return dataset.WriteJSON, nil
	default:
		return nil, fmt.Errorf("unknown format %q (want csv or json)", format)
	}
}
