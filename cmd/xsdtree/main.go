package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jacoelho/xsdtree/internal/config"
	"github.com/jacoelho/xsdtree/internal/report"
)

func main() {
	os.Exit(run())
}

func run() int {
	return runWithArgs(os.Args[1:], os.Stdout, os.Stderr)
}

// usageError marks errors caused by how the command was invoked.
type usageError struct {
	err error
}

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

// errReported signals a failure whose details were already written.
var errReported = errors.New("failures reported")

func runWithArgs(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	err := root.Execute()
	if err == nil {
		return 0
	}
	if errors.Is(err, errReported) {
		return 1
	}
	var usage usageError
	if errors.As(err, &usage) || strings.HasPrefix(err.Error(), "unknown command") {
		if writeErr := writef(stderr, "error: %v\n", err); writeErr != nil {
			return 1
		}
		if writeErr := writeln(stderr, root.UsageString()); writeErr != nil {
			return 1
		}
		return 2
	}
	if writeErr := writef(stderr, "error: %v\n", err); writeErr != nil {
		return 1
	}
	return 1
}

// flags holds the raw command-line values; only flags the user set
// override the configuration file.
type flags struct {
	configPath       string
	follow           bool
	root             string
	format           string
	output           string
	maxDepth         int
	neverFollow      []string
	controlAttribute string
	jobs             int
	failFast         bool
	verbose          bool
	cpuProfile       string
	memProfile       string
}

type runner struct {
	stdout io.Writer
	stderr io.Writer
	flags  flags
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	r := &runner{stdout: stdout, stderr: stderr}
	defaults := config.Default()

	root := &cobra.Command{
		Use:           "xsdtree",
		Short:         "Flatten XML Schema documents into addressable entry rows",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err: err}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&r.flags.configPath, "config", "", "TOML configuration file")
	pf.BoolVar(&r.flags.follow, "follow", defaults.Follow, "resolve references across included and imported documents")
	pf.StringVar(&r.flags.root, "root", defaults.Root, "directory schema paths are relative to")
	pf.IntVar(&r.flags.maxDepth, "max-depth", defaults.MaxDepth, "number of reserved locator levels")
	pf.StringSliceVar(&r.flags.neverFollow, "never-follow", nil, "reference names treated as built-in types")
	pf.StringVar(&r.flags.controlAttribute, "control-attribute", defaults.ControlAttribute, "attribute merged into its owning element (empty disables)")
	pf.IntVar(&r.flags.jobs, "jobs", defaults.Jobs, "number of schemas processed concurrently")
	pf.BoolVar(&r.flags.failFast, "fail-fast", defaults.FailFast, "stop at the first failing schema")
	pf.BoolVarP(&r.flags.verbose, "verbose", "v", false, "log debug traces to stderr")
	pf.StringVar(&r.flags.cpuProfile, "cpuprofile", "", "write CPU profile to file")
	pf.StringVar(&r.flags.memProfile, "memprofile", "", "write memory profile to file")

	flatten := &cobra.Command{
		Use:   "flatten [flags] [schema.xsd...]",
		Short: "Write one row per flattened entry of every schema",
		RunE:  r.runFlatten,
	}
	flatten.Flags().StringVar(&r.flags.format, "format", defaults.Format, "output format ("+strings.Join(report.Formats(), "|")+")")
	flatten.Flags().StringVarP(&r.flags.output, "output", "o", "", "output file (default stdout)")

	check := &cobra.Command{
		Use:   "check [flags] [schema.xsd...]",
		Short: "Report shape violations without writing rows",
		RunE:  r.runCheck,
	}

	root.AddCommand(flatten, check)
	return root
}

// resolveConfig layers the configuration file, changed flags, and schema
// arguments over the defaults.
func (r *runner) resolveConfig(cmd *cobra.Command, args []string) (config.Config, error) {
	cfg := config.Default()
	if r.flags.configPath != "" {
		loaded, err := config.Load(r.flags.configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	changed := cmd.Flags().Changed
	if changed("follow") {
		cfg.Follow = r.flags.follow
	}
	if changed("root") {
		cfg.Root = r.flags.root
	}
	if changed("format") {
		cfg.Format = r.flags.format
	}
	if changed("output") {
		cfg.Output = r.flags.output
	}
	if changed("max-depth") {
		cfg.MaxDepth = r.flags.maxDepth
	}
	if changed("never-follow") {
		cfg.NeverFollow = r.flags.neverFollow
	}
	if changed("control-attribute") {
		cfg.ControlAttribute = r.flags.controlAttribute
	}
	if changed("jobs") {
		cfg.Jobs = r.flags.jobs
	}
	if changed("fail-fast") {
		cfg.FailFast = r.flags.failFast
	}
	cfg.AddSchemas(args...)

	if len(cfg.Schemas) == 0 {
		return config.Config{}, usageError{err: errors.New("at least one schema is required")}
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, usageError{err: err}
	}
	return cfg, nil
}

func (r *runner) logger() *slog.Logger {
	level := slog.LevelWarn
	if r.flags.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(r.stderr, &slog.HandlerOptions{Level: level}))
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func writeln(w io.Writer, args ...any) error {
	_, err := fmt.Fprintln(w, args...)
	return err
}
