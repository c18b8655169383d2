// Package cmd — convert command.
// This is the main command that orchestrates the pipeline:
// discover → process → render → write, once per input file.
//
// It merges the config file with the flags, confirms --clean and prints one
// summary per file.
package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/bookpipe/core"
	"github.com/gaurav-prasanna/bookpipe/core/config"
	"github.com/gaurav-prasanna/bookpipe/core/pipeline"
	"github.com/gaurav-prasanna/bookpipe/crawl"
)

// convertOptions holds the convert flags.
type convertOptions struct {
	inputs       []string
	format       string
	output       string
	clean        bool
	yes          bool
	noMetadata   bool
	noTOC        bool
	headingLevel int
	css          string
	compact      bool
	recursive    bool
	maxFiles     int
	workers      int
}

func newConvertCmd(g *globalOptions) *cobra.Command {
	o := &convertOptions{}

	cmd := &cobra.Command{
		Use:   "convert <file|dir>... [flags]",
		Short: "Convert e-books to the specified output format",
		Long: `Convert reads EPUB, MOBI or PDF files, normalizes their content and
writes it as JSON, Markdown, plain text or PDF.

Without --output, files are written to ./converted/ and named after the input.
Directories are scanned for supported files; use --recursive to descend.

Examples:
  bookpipe convert book.epub
  bookpipe convert book.mobi -f json -o ./output/book-data.json
  bookpipe convert book.pdf -f text
  bookpipe convert book.epub --no-metadata --no-toc
  bookpipe convert book.epub --heading-level=2 --css='body { font-family: Arial; }'
  bookpipe convert ./library -r -f pdf -o ./pdfs/`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, g, o, args)
		},
	}

	f := cmd.Flags()
	f.StringArrayVarP(&o.inputs, "input", "i", nil, "Input e-book file or directory (repeatable; positional arguments work too)")
	f.StringVarP(&o.format, "format", "f", core.OutputMarkdown.String(), "Output format: json, markdown (md), text (txt) or pdf")
	f.StringVarP(&o.output, "output", "o", "", "Output file or directory (default: ./converted/)")
	f.BoolVarP(&o.clean, "clean", "c", false, "Delete the files in the default output directory before converting")
	f.BoolVarP(&o.yes, "yes", "y", false, "Do not ask for confirmation before --clean")
	f.BoolVar(&o.noMetadata, "no-metadata", false, "Exclude metadata from the output")
	f.BoolVar(&o.noTOC, "no-toc", false, "Exclude the table of contents from the output")
	f.IntVar(&o.headingLevel, "heading-level", 1, "Base heading level for markdown output: 1-6")
	f.StringVar(&o.css, "css", "", "Custom CSS to include in markdown output")
	f.BoolVar(&o.compact, "compact", false, "Write compact JSON instead of indented JSON")
	f.BoolVarP(&o.recursive, "recursive", "r", false, "Descend into subdirectories")
	f.IntVar(&o.maxFiles, "max-files", 0, "Stop after this many discovered files (0: no limit)")
	f.IntVarP(&o.workers, "workers", "w", 0, "Concurrent chapter extraction per EPUB (0: one per CPU)")

	return cmd
}

func runConvert(cmd *cobra.Command, g *globalOptions, o *convertOptions, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	stdout := cmd.OutOrStdout()
	logger := g.logger

	cfg, cfgPath, err := config.Load(g.configPath)
	if err != nil {
		return err
	}
	if cfgPath != "" {
		logger.Debug("loaded config", "path", cfgPath)
	}
	opts := mergeConfig(cmd, o, cfg)

	if _, err := core.ParseOutputFormat(o.format); err != nil {
		return err
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	args = slices.Concat(o.inputs, args)
	if len(args) == 0 {
		return fmt.Errorf("%w: at least one input file or directory is required", ErrUsage)
	}
	files, err := crawl.Discover(ctx, args, crawl.Options{
		Recursive: o.recursive,
		MaxFiles:  o.maxFiles,
		Logger:    logger,
	})
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("%w in %s", ErrNoInput, strings.Join(args, ", "))
	}

	output := o.output
	if len(files) > 1 && output != "" && !strings.HasSuffix(output, string(filepath.Separator)) {
		// Several inputs never share one output file.
		output += string(filepath.Separator)
	}

	var bar *progressBar
	var progress core.Progress = core.NopProgress
	if stderr := cmd.ErrOrStderr(); !g.quiet && interactive(stderr) {
		bar = newProgressBar(stderr)
		progress = bar
	}
	p := pipeline.New(pipeline.Config{
		Logger:   logger,
		Progress: progress,
		Workers:  o.workers,
	})

	if o.clean && output == "" {
		dir := p.Writer().DefaultDir
		if !o.yes {
			ok, err := confirm(cmd.InOrStdin(), stdout,
				fmt.Sprintf("Are you sure you want to clean %s? All files will be deleted. (yes/no): ", dir))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(stdout, "Operation cancelled by user.")
				return nil
			}
		}
		cleanDefaultDir(cmd.ErrOrStderr(), logger.With("dir", dir), p.Writer().Clean)
	}

	var firstErr error
	failed := 0
	for i, file := range files {
		if len(files) > 1 && !g.quiet {
			fmt.Fprintf(stdout, "[%d/%d] Processing %s\n", i+1, len(files), file)
		}
		res := p.Convert(ctx, pipeline.Request{
			Input:        file,
			OutputFormat: o.format,
			OutputPath:   output,
			Options:      &opts,
		})
		if bar != nil {
			bar.Done()
		}
		if !res.Success {
			fmt.Fprintf(cmd.ErrOrStderr(), "✗ Conversion failed: %s\n", res.Error)
			failed++
			if firstErr == nil {
				firstErr = res.Err
			}
			continue
		}
		if !g.quiet {
			printResult(stdout, res)
		}
	}

	if failed == 0 {
		return nil
	}
	if len(files) == 1 {
		return fmt.Errorf("converting %s: %w", files[0], firstErr)
	}
	return fmt.Errorf("%d/%d files failed: %w", failed, len(files), firstErr)
}

// mergeConfig applies config file values, then overrides them with every
// flag set explicitly on the command line.
func mergeConfig(cmd *cobra.Command, o *convertOptions, cfg *config.Config) core.Options {
	fs := cmd.Flags()
	if !flagChanged(fs, "format") && cfg.Format != "" {
		o.format = cfg.Format
	}
	if !flagChanged(fs, "output") {
		o.output = cfg.Output
	}
	if !flagChanged(fs, "clean") {
		o.clean = cfg.Clean
	}
	if !flagChanged(fs, "recursive") {
		o.recursive = cfg.Recursive
	}
	if !flagChanged(fs, "workers") {
		o.workers = cfg.Workers
	}

	opts := cfg.Options()
	if flagChanged(fs, "no-metadata") {
		opts.IncludeMetadata = !o.noMetadata
	}
	if flagChanged(fs, "no-toc") {
		opts.IncludeTOC = !o.noTOC
	}
	if flagChanged(fs, "heading-level") {
		opts.HeadingLevel = o.headingLevel
	}
	if flagChanged(fs, "css") {
		opts.CustomCSS = o.css
	}
	if flagChanged(fs, "compact") {
		opts.Pretty = !o.compact
	}
	return opts
}

// cleanDefaultDir runs clean and reports a failure on w. Conversion goes on
// after a partial clean.
func cleanDefaultDir(w io.Writer, logger *slog.Logger, clean func() error) bool {
	if err := clean(); err != nil {
		logger.Warn("output directory not fully cleaned", "error", err)
		fmt.Fprintf(w, "⚠ %s\n", pipeline.CleanWarning(err))
		return false
	}
	return true
}

// confirm asks question on w and reads the answer from r.
// Only "y" and "yes" (any case) confirm; end of input declines.
func confirm(r io.Reader, w io.Writer, question string) (bool, error) {
	fmt.Fprint(w, question)
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("reading confirmation: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func printResult(w io.Writer, res pipeline.Result) {
	fmt.Fprintln(w, "✓ Conversion successful!")
	fmt.Fprintf(w, "  Input:  %s\n", res.InputFile)
	fmt.Fprintf(w, "  Output: %s\n", res.OutputFile)
	fmt.Fprintf(w, "  Format: %s\n", res.OutputFormat)
	if res.Warning != "" {
		fmt.Fprintf(w, "  Warning: %s\n", res.Warning)
	}
}

// interactive reports whether w is a terminal or an in-memory writer.
// The bar is not drawn into redirected files or pipes.
func interactive(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return true
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}
