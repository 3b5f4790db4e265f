// File: cmd/measure.go
package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/scalpel-dom/internal/browser/dom"
	"github.com/xkilldash9x/scalpel-dom/internal/observability"
)

// newMeasureCmd creates the `measure` command.
func newMeasureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "measure FILE XPATH",
		Short: "Prints the dimensions and offsets of an element",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := getConfig(cmd)
			if err != nil {
				return err
			}
			logger := observability.GetLogger().Named("measure")

			doc, err := openDocument(cfg, args[0], logger)
			if err != nil {
				return err
			}
			s := newSession(cfg, doc, logger)
			n, err := s.find(args[1])
			if err != nil {
				return err
			}
			logger.Debug("Measuring element.", zap.String("xpath", dom.GenerateUniqueXPath(n)))

			e := s.engine
			dims := e.GetDimensions(n)
			cumulative := e.CumulativeOffset(n)
			positioned := e.PositionedOffset(n)
			viewport := e.ViewportOffset(n)
			position, _ := e.GetStyle(n, "position")

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "element\t%s\n", dom.GenerateUniqueXPath(n))
			fmt.Fprintf(w, "profile\t%s\n", doc.Profile().Name)
			fmt.Fprintf(w, "visible\t%t\n", e.Visible(n))
			fmt.Fprintf(w, "position\t%s\n", position)
			fmt.Fprintf(w, "dimensions\t%gx%g\n", dims.Width, dims.Height)
			fmt.Fprintf(w, "cumulative\t%g,%g\n", cumulative.Left, cumulative.Top)
			fmt.Fprintf(w, "positioned\t%g,%g\n", positioned.Left, positioned.Top)
			fmt.Fprintf(w, "viewport\t%g,%g\n", viewport.Left, viewport.Top)
			if parent := e.GetOffsetParent(n); parent != nil {
				fmt.Fprintf(w, "offset parent\t%s\n", dom.GenerateUniqueXPath(parent))
			}
			return w.Flush()
		},
	}
}
