package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/bookpipe/core"
)

func newFormatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List supported input and output formats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, "Input formats:")
			for _, f := range core.InputFormats {
				note := ""
				if f == core.InputMOBI {
					note = " (limited: placeholder content only)"
				}
				fmt.Fprintf(w, "  %-10s %s%s\n", f, f.Extension(), note)
			}
			fmt.Fprintln(w, "Output formats:")
			for _, f := range core.OutputFormats {
				fmt.Fprintf(w, "  %-10s %-5s %s\n", f, f.Extension(), strings.Join(f.Aliases(), ", "))
			}
			return nil
		},
	}
}
