package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yungbote/lo-analysis-backend/internal/app"
	"github.com/yungbote/lo-analysis-backend/internal/lexicon"
	"github.com/yungbote/lo-analysis-backend/internal/platform/dbctx"
)

var overlapFlags struct {
	taxonomy string
	asJSON   bool
}

var overlapCmd = &cobra.Command{
	Use:   "overlap",
	Short: "Print the category overlap matrix of a taxonomy",
	RunE:  runOverlap,
}

func init() {
	f := overlapCmd.Flags()
	f.StringVar(&overlapFlags.taxonomy, "taxonomy", "", "Taxonomy ID (required)")
	f.BoolVar(&overlapFlags.asJSON, "json", false, "Print JSON instead of a table")

	_ = overlapCmd.MarkFlagRequired("taxonomy")
}

func runOverlap(cmd *cobra.Command, _ []string) error {
	taxonomyID, err := uuid.Parse(overlapFlags.taxonomy)
	if err != nil {
		return fmt.Errorf("--taxonomy: %w", err)
	}
	return withApp(cmd, app.Options{}, func(ctx context.Context, a *app.App) error {
		m, err := a.Services.Taxonomies.OverlapMatrix(dbctx.Context{Ctx: ctx}, taxonomyID)
		if err != nil {
			return err
		}
		if overlapFlags.asJSON {
			return writeJSON(cmd.OutOrStdout(), m)
		}
		return printMatrix(cmd, m)
	})
}

func printMatrix(cmd *cobra.Command, m lexicon.Matrix) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "\t%s\t\n", strings.Join(m.Labels, "\t"))
	for i, row := range m.Cells {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = fmt.Sprint(v)
		}
		fmt.Fprintf(tw, "%s\t%s\t\n", m.Labels[i], strings.Join(cells, "\t"))
	}
	fmt.Fprintf(tw, "total overlap\t%d\t\n", m.TotalOverlap)
	return tw.Flush()
}
