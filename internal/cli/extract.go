package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phylobits/sdag/pkg/choicemap"
	"github.com/phylobits/sdag/pkg/sdag"
)

// extractOpts holds the command-line flags for the extract command.
type extractOpts struct {
	output string // output file path, "-" or empty for stdout
	edge   int    // central edge id, -1 for the first root edge
	all    bool   // extract one topology per edge
	mask   bool   // also print the tree mask edge list
}

// newExtractCmd creates the extract command. It builds the subsplit DAG from
// a newick forest, seeds the edge choice map with first-edge selections, and
// writes the extracted topologies as newick strings.
func newExtractCmd() *cobra.Command {
	var opts extractOpts

	cmd := &cobra.Command{
		Use:   "extract [trees.nwk]",
		Short: "Extract embedded tree topologies from a subsplit DAG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFromContext(cmd.Context()).Extract
			if !cmd.Flags().Changed("edge") {
				opts.edge = cfg.Edge
			}
			if !cmd.Flags().Changed("all") {
				opts.all = cfg.All
			}
			if !cmd.Flags().Changed("mask") {
				opts.mask = cfg.Mask
			}
			return runExtract(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().IntVar(&opts.edge, "edge", -1, "central edge id to extract from (default: first root edge)")
	cmd.Flags().BoolVar(&opts.all, "all", false, "extract one topology per DAG edge, deduplicated")
	cmd.Flags().BoolVar(&opts.mask, "mask", false, "also print the tree mask edge list (single-edge mode)")

	return cmd
}

func runExtract(ctx context.Context, input string, opts *extractOpts) error {
	logger := loggerFromContext(ctx)

	d, err := loadDAG(ctx, input)
	if err != nil {
		return err
	}

	m := choicemap.New(d)
	if err := m.SelectFirstEdges(); err != nil {
		return err
	}

	out, err := openOutput(opts.output)
	if err != nil {
		return err
	}
	defer out.Close()

	names := d.TaxonNames()
	if opts.all {
		p := newProgress(logger)
		seen := make(map[string]bool)
		count := 0
		for id := sdag.EdgeID(0); int(id) < d.EdgeCount(); id++ {
			topology, err := m.ExtractTopology(id)
			if err != nil {
				return fmt.Errorf("edge %s: %w", id, err)
			}
			nwk := topology.Newick(names)
			if seen[nwk] {
				continue
			}
			seen[nwk] = true
			count++
			if _, err := fmt.Fprintln(out, nwk); err != nil {
				return err
			}
		}
		p.done(fmt.Sprintf("Extracted %d distinct topologies from %d edges", count, d.EdgeCount()))
		return nil
	}

	central := sdag.EdgeID(opts.edge)
	if opts.edge < 0 {
		central, err = firstRootEdge(d)
		if err != nil {
			return err
		}
		logger.Debugf("Using first root edge %s as central edge", central)
	}

	if opts.mask {
		mask, err := m.ExtractTreeMask(central)
		if err != nil {
			return fmt.Errorf("edge %s: %w", central, err)
		}
		if _, err := fmt.Fprintln(out, m.TreeMaskString(mask)); err != nil {
			return err
		}
	}

	topology, err := m.ExtractTopology(central)
	if err != nil {
		return fmt.Errorf("edge %s: %w", central, err)
	}
	if _, err := fmt.Fprintln(out, topology.Newick(names)); err != nil {
		return err
	}
	logger.Infof("Extracted topology through edge %s", central)
	return nil
}

// firstRootEdge returns the lowest-id edge descending from the root node.
func firstRootEdge(d *sdag.DAG) (sdag.EdgeID, error) {
	for id := sdag.EdgeID(0); int(id) < d.EdgeCount(); id++ {
		if d.IsEdgeRoot(id) {
			return id, nil
		}
	}
	return sdag.NoEdge, fmt.Errorf("%w: DAG has no root edge", sdag.ErrNoSuchEdge)
}
