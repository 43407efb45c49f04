package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeTrees(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trees.nwk")
	if err := os.WriteFile(path, []byte("((A,B),(C,D));\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunRenderWritesSVG(t *testing.T) {
	in := writeTrees(t)
	out := filepath.Join(t.TempDir(), "dag.svg")

	opts := &renderOpts{output: out, format: "svg", edge: -1}
	if err := runRender(quietContext(), in, opts); err != nil {
		t.Fatalf("runRender: %v", err)
	}

	info, err := os.Stat(out)
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	if info.Size() == 0 {
		t.Error("output file is empty")
	}
}

func TestRunRenderWritesDOT(t *testing.T) {
	in := writeTrees(t)
	out := filepath.Join(t.TempDir(), "dag.dot")

	opts := &renderOpts{output: out, format: "dot", edge: -1}
	if err := runRender(quietContext(), in, opts); err != nil {
		t.Fatalf("runRender: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	if len(data) == 0 || string(data[:7]) != "digraph" {
		t.Errorf("output does not look like DOT: %q", data[:min(len(data), 20)])
	}
}

func TestRunRenderCancelledContext(t *testing.T) {
	in := writeTrees(t)
	out := filepath.Join(t.TempDir(), "dag.svg")

	ctx, cancel := context.WithCancel(quietContext())
	cancel()

	opts := &renderOpts{output: out, format: "svg", edge: -1}
	err := runRender(ctx, in, opts)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("cancelled render should not write output")
	}
}
