package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yungbote/lo-analysis-backend/internal/app"
	"github.com/yungbote/lo-analysis-backend/internal/platform/dbctx"
	"github.com/yungbote/lo-analysis-backend/internal/services"
)

var analyzeFlags struct {
	curriculum string
	taxonomy   string
	title      string
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run a full analysis inline and print the report as JSON",
	RunE:  runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVar(&analyzeFlags.curriculum, "curriculum", "", "Curriculum ID (required)")
	f.StringVar(&analyzeFlags.taxonomy, "taxonomy", "", "Taxonomy ID (required)")
	f.StringVar(&analyzeFlags.title, "title", "", "Analysis title")

	_ = analyzeCmd.MarkFlagRequired("curriculum")
	_ = analyzeCmd.MarkFlagRequired("taxonomy")
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	curriculumID, err := uuid.Parse(analyzeFlags.curriculum)
	if err != nil {
		return fmt.Errorf("--curriculum: %w", err)
	}
	taxonomyID, err := uuid.Parse(analyzeFlags.taxonomy)
	if err != nil {
		return fmt.Errorf("--taxonomy: %w", err)
	}

	return withApp(cmd, app.Options{}, func(ctx context.Context, a *app.App) error {
		ca, err := a.Services.Analyses.CreateAnalysis(dbctx.Context{Ctx: ctx}, services.CreateAnalysisInput{
			CurriculumID: curriculumID,
			TaxonomyID:   taxonomyID,
			Title:        analyzeFlags.title,
		})
		if err != nil {
			return err
		}
		rep, runErr := a.Services.Analyses.RunFullAnalysis(ctx, ca.ID)
		if rep != nil {
			if err := writeJSON(cmd.OutOrStdout(), rep); err != nil {
				return err
			}
		}
		if runErr != nil {
			var se *services.StrandError
			if errors.As(runErr, &se) {
				fmt.Fprintf(cmd.ErrOrStderr(), "some strands failed; committed strands are reported above\n")
			}
			return runErr
		}
		return nil
	})
}
