package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/phylobits/sdag/pkg/choicemap"
	"github.com/phylobits/sdag/pkg/sdag"
)

// errInvalid signals a failed validation after diagnostics have been printed.
var errInvalid = errors.New("validation failed")

// newValidateCmd creates the validate command. It builds the subsplit DAG
// from a newick forest and checks, in order: DAG structural integrity, the
// seeded edge choice map, and the tree mask extracted through every edge.
func newValidateCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "validate [trees.nwk]",
		Short: "Check DAG structure, choice map, and extracted tree masks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.Context(), args[0], quiet)
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress per-edge diagnostics")

	return cmd
}

func runValidate(ctx context.Context, input string, quiet bool) error {
	logger := loggerFromContext(ctx)

	d, err := loadDAG(ctx, input)
	if err != nil {
		return err
	}

	var diag io.Writer
	if !quiet {
		diag = os.Stderr
	}

	if err := d.Validate(); err != nil {
		printError("DAG structure: %v", err)
		return errInvalid
	}
	printSuccess("DAG structure")

	m := choicemap.New(d)
	if err := m.SelectFirstEdges(); err != nil {
		return err
	}
	if !m.SelectionIsValid(diag) {
		printError("choice map selection")
		return errInvalid
	}
	printSuccess("choice map selection")

	p := newProgress(logger)
	for id := sdag.EdgeID(0); int(id) < d.EdgeCount(); id++ {
		mask, err := m.ExtractTreeMask(id)
		if err != nil {
			printError("tree mask through edge %s: %v", id, err)
			return errInvalid
		}
		if !m.TreeMaskIsValid(mask, diag) {
			printError("tree mask through edge %s", id)
			return errInvalid
		}
		if want := 2*d.TaxonCount() - 1; len(mask) != want {
			printError("tree mask through edge %s: %d edges, want %d", id, len(mask), want)
			return errInvalid
		}
	}
	p.done(fmt.Sprintf("Checked tree masks through all %d edges", d.EdgeCount()))
	printSuccess("tree masks")
	printStats(d.TaxonCount(), d.NodeCount(), d.EdgeCount())
	return nil
}
