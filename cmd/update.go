// File: cmd/update.go
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/xkilldash9x/scalpel-dom/internal/element"
	"github.com/xkilldash9x/scalpel-dom/internal/observability"
)

// newUpdateCmd creates the `update` command.
func newUpdateCmd() *cobra.Command {
	var (
		position string
		replace  bool
	)
	cmd := &cobra.Command{
		Use:   "update FILE XPATH MARKUP",
		Short: "Applies markup to an element and prints the resulting document",
		Long: `Replaces the content of the element matched by XPATH with MARKUP, or inserts
MARKUP at --position (before, top, bottom, after), or replaces the element
itself with --replace. Scripts in MARKUP run afterwards unless scripts are
disabled in the configuration.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := getConfig(cmd)
			if err != nil {
				return err
			}
			logger := observability.GetLogger().Named("update")

			doc, err := openDocument(cfg, args[0], logger)
			if err != nil {
				return err
			}
			s := newSession(cfg, doc, logger)
			n, err := s.find(args[1])
			if err != nil {
				return err
			}

			markup := args[2]
			switch {
			case replace:
				_, err = s.engine.ReplaceContent(n, markup)
			case position != "":
				_, err = s.engine.InsertContent(n, element.Insertions{position: markup})
			default:
				_, err = s.engine.UpdateContent(n, markup)
			}
			if err != nil {
				return err
			}

			if cfg.Scripts().Enabled {
				if err := s.engine.Flush(cmd.Context()); err != nil {
					return fmt.Errorf("deferred scripts failed: %w", err)
				}
			} else if pending := s.runtime.Pending(); pending > 0 {
				logger.Info("Scripts disabled; skipping extracted scripts.", zap.Int("count", pending))
			}

			var sb strings.Builder
			if err := html.Render(&sb, doc.Document()); err != nil {
				return fmt.Errorf("failed to render document: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), sb.String())
			return nil
		},
	}
	cmd.Flags().StringVarP(&position, "position", "p", "", "insert instead of update: before, top, bottom or after")
	cmd.Flags().BoolVar(&replace, "replace", false, "replace the element itself")
	cmd.MarkFlagsMutuallyExclusive("position", "replace")
	return cmd
}
