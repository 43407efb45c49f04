// Package cli implements the sdag command-line interface.
//
// This package provides commands for building subsplit DAGs from collections
// of rooted binary trees, validating the DAG and its edge choice map,
// extracting embedded tree topologies, and rendering the DAG as a node-link
// diagram. The CLI is built using cobra and supports verbose logging via the
// charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - extract: Build a DAG from trees and extract embedded topologies
//   - validate: Check DAG structure, choice map, and extracted tree masks
//   - render: Generate DOT, SVG, or PNG visualizations of the DAG
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/phylobits/sdag/pkg/sdag"
	"github.com/phylobits/sdag/pkg/tree"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with
// elapsed duration. It is safe for sequential use by a single goroutine.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Built DAG over 12 taxa (142ms)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// ctxKey is the type for context keys used in this package.
type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default() if none
// is attached. This ensures commands always have a valid logger.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// loadDAG parses a newick forest file and builds the subsplit DAG over it.
func loadDAG(ctx context.Context, path string) (*sdag.DAG, error) {
	logger := loggerFromContext(ctx)
	p := newProgress(logger)

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	topologies, names, err := tree.ParseForest(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	logger.Debugf("Parsed %d trees over %d taxa", len(topologies), len(names))

	d, err := sdag.FromTopologies(names, topologies)
	if err != nil {
		return nil, fmt.Errorf("build DAG: %w", err)
	}
	p.done(fmt.Sprintf("Built DAG: %d nodes, %d edges over %d taxa",
		d.NodeCount(), d.EdgeCount(), d.TaxonCount()))
	return d, nil
}

// openOutput opens path for writing, or stdout if path is "-" or empty.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
