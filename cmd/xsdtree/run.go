package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jacoelho/xsdtree"
	xsderrors "github.com/jacoelho/xsdtree/errors"
	"github.com/jacoelho/xsdtree/internal/config"
	"github.com/jacoelho/xsdtree/internal/locator"
	"github.com/jacoelho/xsdtree/internal/report"
)

var (
	failColor = color.New(color.FgRed, color.Bold)
	codeColor = color.New(color.FgYellow)
	okColor   = color.New(color.FgGreen)
	skipColor = color.New(color.Faint)
)

// result is the outcome of flattening one schema.
type result struct {
	schema  config.Schema
	tree    *xsdtree.Tree
	err     error
	skipped bool
}

func (r *runner) runFlatten(cmd *cobra.Command, args []string) error {
	cfg, err := r.resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	format, err := report.ParseFormat(cfg.Format)
	if err != nil {
		return usageError{err: err}
	}
	return r.withProfiles(func() error {
		results := r.flattenAll(cmd.Context(), cfg)

		var rows []report.Row
		alloc := locator.NewAllocator(cfg.MaxDepth)
		for _, res := range results {
			if res.tree == nil {
				continue
			}
			schemaRows, err := report.Rows(config.SourceOf(res.schema), res.tree, alloc)
			if err != nil {
				return fmt.Errorf("%s: %w", res.schema.Path, err)
			}
			rows = append(rows, schemaRows...)
		}
		if err := r.writeRows(cfg, format, rows); err != nil {
			return err
		}
		return r.reportFailures(results)
	})
}

func (r *runner) runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := r.resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	return r.withProfiles(func() error {
		results := r.flattenAll(cmd.Context(), cfg)
		for _, res := range results {
			if res.tree == nil {
				continue
			}
			if _, err := okColor.Fprintf(r.stdout, "%s: ok (%d entries)\n", res.schema.Path, res.tree.Len()); err != nil {
				return err
			}
		}
		return r.reportFailures(results)
	})
}

// flattenAll runs every configured schema, up to cfg.Jobs at a time. With
// FailFast the first failure cancels the schemas not yet started.
func (r *runner) flattenAll(ctx context.Context, cfg config.Config) []result {
	if ctx == nil {
		ctx = context.Background()
	}
	fsys := os.DirFS(cfg.Root)
	opts := cfg.Options(r.logger(), xsdtree.NewCache())

	results := make([]result, len(cfg.Schemas))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(cfg.Jobs, len(cfg.Schemas)))
	for i, s := range cfg.Schemas {
		g.Go(func() error {
			if gctx.Err() != nil {
				results[i] = result{schema: s, skipped: true}
				return nil
			}
			t, err := xsdtree.Flatten(fsys, s.Path, opts)
			results[i] = result{schema: s, tree: t, err: err}
			if err != nil && cfg.FailFast {
				return err
			}
			return nil
		})
	}
	// Failures are kept per result.
	_ = g.Wait()
	return results
}

func (r *runner) writeRows(cfg config.Config, format report.Format, rows []report.Row) (err error) {
	if cfg.Output == "" {
		return report.Write(r.stdout, format, rows, cfg.MaxDepth)
	}
	f, err := os.Create(cfg.Output)
	if err != nil {
		return fmt.Errorf("create output %s: %w", cfg.Output, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close output %s: %w", cfg.Output, closeErr)
		}
	}()
	if err := report.Write(f, format, rows, cfg.MaxDepth); err != nil {
		return fmt.Errorf("write output %s: %w", cfg.Output, err)
	}
	return nil
}

// reportFailures writes every failed or skipped schema to stderr and
// returns errReported when there was any.
func (r *runner) reportFailures(results []result) error {
	failed := false
	for _, res := range results {
		switch {
		case res.skipped:
			failed = true
			if _, err := skipColor.Fprintf(r.stderr, "%s: skipped\n", res.schema.Path); err != nil {
				return err
			}
		case res.err != nil:
			failed = true
			if err := r.writeFailure(r.stderr, res); err != nil {
				return err
			}
		}
	}
	if failed {
		return errReported
	}
	return nil
}

func (r *runner) writeFailure(w io.Writer, res result) error {
	v, ok := xsderrors.AsViolation(res.err)
	if !ok {
		_, err := failColor.Fprintf(w, "%s: %v\n", res.schema.Path, res.err)
		return err
	}
	if _, err := failColor.Fprintf(w, "%s: ", res.schema.Path); err != nil {
		return err
	}
	if _, err := codeColor.Fprintf(w, "[%s]", v.Code); err != nil {
		return err
	}
	if err := writef(w, " %s\n", v.Message); err != nil {
		return err
	}
	if v.Path != "" {
		if err := writef(w, "  at %s\n", v.Path); err != nil {
			return err
		}
	}
	if v.Snapshot != "" {
		if err := writef(w, "  node %s\n", v.Snapshot); err != nil {
			return err
		}
	}
	return nil
}

func (r *runner) withProfiles(fn func() error) error {
	p := profiler{cpuPath: r.flags.cpuProfile, memPath: r.flags.memProfile}
	if err := p.start(); err != nil {
		return err
	}
	err := fn()
	if stopErr := p.stop(); stopErr != nil {
		return errors.Join(err, stopErr)
	}
	return err
}
