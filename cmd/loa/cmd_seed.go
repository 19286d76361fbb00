package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/lo-analysis-backend/internal/app"
	"github.com/yungbote/lo-analysis-backend/internal/platform/dbctx"
	"github.com/yungbote/lo-analysis-backend/internal/seed"
)

var seedFlags struct {
	file   string
	blooms bool
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Import taxonomies and curricula from a YAML file",
	RunE:  runSeed,
}

func init() {
	f := seedCmd.Flags()
	f.StringVarP(&seedFlags.file, "file", "f", "", "Seed YAML file")
	f.BoolVar(&seedFlags.blooms, "blooms", false, "Import the built-in Bloom's taxonomy")
}

func runSeed(cmd *cobra.Command, _ []string) error {
	var files []*seed.File
	if seedFlags.blooms {
		files = append(files, seed.Blooms())
	}
	if seedFlags.file != "" {
		f, err := seed.LoadFile(seedFlags.file)
		if err != nil {
			return err
		}
		files = append(files, f)
	}
	if len(files) == 0 {
		return fmt.Errorf("nothing to seed: pass -f <file> or --blooms")
	}

	return withApp(cmd, app.Options{}, func(ctx context.Context, a *app.App) error {
		out := cmd.OutOrStdout()
		for _, f := range files {
			imp, err := seed.Import(dbctx.Context{Ctx: ctx}, a.Services.Taxonomies, a.Services.Curricula, f)
			if err != nil {
				return err
			}
			for _, t := range imp.Taxonomies {
				fmt.Fprintf(out, "taxonomy   %s  %s\n", t.ID, t.Title)
			}
			for _, c := range imp.Curricula {
				fmt.Fprintf(out, "curriculum %s  %s (%d strands)\n", c.ID, c.Title, len(imp.Strands[c.ID]))
			}
		}
		return nil
	})
}
