// File: cmd/probe.go
package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/scalpel-dom/internal/browser/host"
	"github.com/xkilldash9x/scalpel-dom/internal/observability"
)

const blankDocument = `<!DOCTYPE html><html><head></head><body></body></html>`

// newProbeCmd creates the `probe` command.
func newProbeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probe [file]",
		Short: "Prints the capability flags and strategy bindings for the configured host",
		Long: `Probes a host document once, the way the element engine does at startup, and
prints every capability flag followed by the implementation bound to each
operation. Without a file a blank document is probed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := getConfig(cmd)
			if err != nil {
				return err
			}
			logger := observability.GetLogger().Named("probe")

			var doc *host.Document
			if len(args) == 1 {
				doc, err = openDocument(cfg, args[0], logger)
			} else {
				var opts []host.Option
				opts, err = cfg.Host().Options()
				if err == nil {
					doc, err = host.NewDocument(blankDocument, append(opts, host.WithLogger(logger))...)
				}
			}
			if err != nil {
				return err
			}
			s := newSession(cfg, doc, logger)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "PROFILE\t%s\n\n", doc.Profile().Name)
			fmt.Fprintln(w, "FLAG\tVALUE")
			for _, r := range s.engine.Probes().Snapshot() {
				value := fmt.Sprint(r.Value)
				if !r.Determined {
					value = "(pending)"
				}
				fmt.Fprintf(w, "%s\t%s\n", r.Name, value)
			}
			fmt.Fprintln(w)
			fmt.Fprintln(w, "OPERATION\tVARIANT")
			for _, b := range s.engine.Strategies().Bindings() {
				variant := b.Variant
				if b.Pending {
					variant += " (pending)"
				}
				fmt.Fprintf(w, "%s\t%s\n", b.Op, variant)
			}
			return w.Flush()
		},
	}
}
