package services

import (
	"github.com/google/uuid"

	"github.com/yungbote/lo-analysis-backend/internal/data/repos"
	"github.com/yungbote/lo-analysis-backend/internal/platform/dbctx"
)

// analysisPurger deletes curriculum analyses with all derived rows. There
// are no FK cascades, so every level is removed explicitly.
type analysisPurger struct {
	repos repos.Set
}

func newAnalysisPurger(set repos.Set) *analysisPurger {
	return &analysisPurger{repos: set}
}

func (p *analysisPurger) purge(dbc dbctx.Context, analysisIDs []uuid.UUID) error {
	if len(analysisIDs) == 0 {
		return nil
	}
	saIDs, err := p.repos.StrandAnalyses.IDsByAnalyses(dbc, analysisIDs)
	if err != nil {
		return err
	}
	if err := p.purgeStrandAnalyses(dbc, saIDs); err != nil {
		return err
	}
	for _, id := range analysisIDs {
		if err := p.repos.NonCatVerbs.UnlinkAnalysis(dbc, id); err != nil {
			return err
		}
		if err := p.repos.Analyses.Delete(dbc, id); err != nil {
			return err
		}
	}
	_, err = p.repos.NonCatVerbs.CollectOrphans(dbc)
	return err
}

func (p *analysisPurger) purgeStrandAnalyses(dbc dbctx.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	if err := p.repos.OutcomeAnalyses.DeleteByStrandAnalyses(dbc, ids); err != nil {
		return err
	}
	if err := p.repos.StrandResults.DeleteByStrandAnalyses(dbc, ids); err != nil {
		return err
	}
	return p.repos.StrandAnalyses.DeleteByIDs(dbc, ids)
}
