// Package cmd implements the CLI commands for bookpipe using Cobra.
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	verbose    bool
	quiet      bool

	logger *slog.Logger
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	g := &globalOptions{}

	root := &cobra.Command{
		Use:   "bookpipe",
		Short: "bookpipe converts e-books into structured text",
		Long: `bookpipe converts EPUB, MOBI and PDF e-books into JSON, Markdown,
plain text or a paginated PDF.

Usage:
  bookpipe convert <file|dir>... [flags]`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if g.verbose && g.quiet {
				return fmt.Errorf("%w: --verbose and --quiet are mutually exclusive", ErrUsage)
			}
			g.logger = newLogger(cmd.ErrOrStderr(), g)
			setMaxProcs(g)
			return nil
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	})

	pf := root.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "Config file (default: ./bookpipe.yaml, then the user config dir)")
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "Log debug details to stderr")
	pf.BoolVarP(&g.quiet, "quiet", "q", false, "Only print errors")

	root.AddCommand(newConvertCmd(g), newFormatsCmd())
	return root
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	return run(NewRootCmd(), os.Args[1:])
}

func run(root *cobra.Command, args []string) int {
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(root.ErrOrStderr(), "Error: %v\n", err)
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// newLogger logs to w at Warn, Debug with --verbose and Error with --quiet.
func newLogger(w io.Writer, g *globalOptions) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case g.verbose:
		level = slog.LevelDebug
	case g.quiet:
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// setMaxProcs matches GOMAXPROCS to the container CPU quota.
// Error ignored: maxprocs.Set only fails on an invalid GOMAXPROCS variable,
// in which case the runtime default stays.
func setMaxProcs(g *globalOptions) {
	_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		g.logger.Debug(fmt.Sprintf(format, args...))
	}))
}

// flagChanged reports whether the named flag was set on the command line.
func flagChanged(fs *pflag.FlagSet, name string) bool {
	f := fs.Lookup(name)
	return f != nil && f.Changed
}
