package services

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/lo-analysis-backend/internal/data/db"
	"github.com/yungbote/lo-analysis-backend/internal/data/repos"
	"github.com/yungbote/lo-analysis-backend/internal/data/repos/curricula"
	types "github.com/yungbote/lo-analysis-backend/internal/domain"
	"github.com/yungbote/lo-analysis-backend/internal/domain/curriculum"
	"github.com/yungbote/lo-analysis-backend/internal/platform/dbctx"
	"github.com/yungbote/lo-analysis-backend/internal/platform/logger"
)

var colourPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

type CreateCurriculumInput struct {
	Title      string     `json:"title"`
	AuthorID   *uuid.UUID `json:"author_id,omitempty"`
	Public     bool       `json:"public"`
	Country    string     `json:"country,omitempty"`
	ISCEDLevel string     `json:"isced_level,omitempty"`
}

type CreateStrandInput struct {
	Title  string `json:"title"`
	Colour string `json:"colour,omitempty"`
	Text   string `json:"text"`
}

type CurriculumStats struct {
	NumStrands          int64 `json:"num_strands"`
	NumLearningOutcomes int64 `json:"num_learning_outcomes"`
	NumAnalyses         int64 `json:"num_analyses"`
}

type CurriculumService interface {
	CreateCurriculum(dbc dbctx.Context, in CreateCurriculumInput) (*types.Curriculum, error)
	GetCurriculum(dbc dbctx.Context, id uuid.UUID) (*types.Curriculum, error)
	ListCurricula(dbc dbctx.Context, f curricula.ListFilter) ([]*types.Curriculum, error)
	// DeleteCurriculum removes the curriculum, its strands and outcomes, and
	// every analysis bound to it.
	DeleteCurriculum(dbc dbctx.Context, id uuid.UUID) error
	Stats(dbc dbctx.Context, id uuid.UUID) (CurriculumStats, error)

	// CreateStrand appends a strand and derives its learning outcomes from
	// in.Text.
	CreateStrand(dbc dbctx.Context, curriculumID uuid.UUID, in CreateStrandInput) (*types.Strand, error)
	// SetStrandSourceText stores text only; outcomes are untouched until
	// RebuildLearningOutcomes.
	SetStrandSourceText(dbc dbctx.Context, strandID uuid.UUID, text string) error
	RebuildLearningOutcomes(dbc dbctx.Context, strandID uuid.UUID) ([]*types.LearningOutcome, error)
	ListStrands(dbc dbctx.Context, curriculumID uuid.UUID) ([]*types.Strand, error)
	ListLearningOutcomes(dbc dbctx.Context, strandID uuid.UUID) ([]*types.LearningOutcome, error)
}

type curriculumService struct {
	log      *logger.Logger
	tx       db.TxRunner
	repos    repos.Set
	analyses *analysisPurger
}

func NewCurriculumService(baseLog *logger.Logger, tx db.TxRunner, set repos.Set) CurriculumService {
	return &curriculumService{
		log:      baseLog.With("service", "CurriculumService"),
		tx:       tx,
		repos:    set,
		analyses: newAnalysisPurger(set),
	}
}

func (s *curriculumService) CreateCurriculum(dbc dbctx.Context, in CreateCurriculumInput) (*types.Curriculum, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, types.Validation("curriculum.create", "title is required")
	}
	c := &types.Curriculum{
		ID:         uuid.New(),
		AuthorID:   in.AuthorID,
		Title:      title,
		Public:     in.Public,
		Country:    strings.ToUpper(strings.TrimSpace(in.Country)),
		ISCEDLevel: strings.TrimSpace(in.ISCEDLevel),
	}
	if err := s.repos.Curricula.Create(dbc, c); err != nil {
		s.log.Error("CreateCurriculum failed", "error", err)
		return nil, fmt.Errorf("create curriculum: %w", err)
	}
	s.log.Info("Curriculum created", "curriculum_id", c.ID, "author_id", in.AuthorID)
	return c, nil
}

func (s *curriculumService) GetCurriculum(dbc dbctx.Context, id uuid.UUID) (*types.Curriculum, error) {
	return s.repos.Curricula.GetByID(dbc, id)
}

func (s *curriculumService) ListCurricula(dbc dbctx.Context, f curricula.ListFilter) ([]*types.Curriculum, error) {
	return s.repos.Curricula.List(dbc, f)
}

func (s *curriculumService) DeleteCurriculum(dbc dbctx.Context, id uuid.UUID) error {
	err := inTx(s.tx, dbc, func(dbc dbctx.Context) error {
		if _, err := s.repos.Curricula.GetByID(dbc, id); err != nil {
			return err
		}
		analyses, err := s.repos.Analyses.ListByCurriculum(dbc, id)
		if err != nil {
			return err
		}
		ids := make([]uuid.UUID, 0, len(analyses))
		for _, a := range analyses {
			ids = append(ids, a.ID)
		}
		if err := s.analyses.purge(dbc, ids); err != nil {
			return err
		}
		strandIDs, err := s.repos.Strands.DeleteByCurriculum(dbc, id)
		if err != nil {
			return err
		}
		if err := s.repos.LearningOutcomes.DeleteByStrands(dbc, strandIDs); err != nil {
			return err
		}
		return s.repos.Curricula.Delete(dbc, id)
	})
	if err != nil {
		return fmt.Errorf("delete curriculum: %w", err)
	}
	s.log.Info("Curriculum deleted", "curriculum_id", id)
	return nil
}

func (s *curriculumService) Stats(dbc dbctx.Context, id uuid.UUID) (CurriculumStats, error) {
	var out CurriculumStats
	if _, err := s.repos.Curricula.GetByID(dbc, id); err != nil {
		return out, err
	}
	strands, err := s.repos.Strands.ListByCurriculum(dbc, id)
	if err != nil {
		return out, err
	}
	ids := make([]uuid.UUID, 0, len(strands))
	for _, st := range strands {
		ids = append(ids, st.ID)
	}
	out.NumStrands = int64(len(strands))
	if out.NumLearningOutcomes, err = s.repos.LearningOutcomes.CountByStrands(dbc, ids); err != nil {
		return out, err
	}
	if out.NumAnalyses, err = s.repos.Analyses.CountByCurriculum(dbc, id); err != nil {
		return out, err
	}
	return out, nil
}

func (s *curriculumService) CreateStrand(dbc dbctx.Context, curriculumID uuid.UUID, in CreateStrandInput) (*types.Strand, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, types.Validation("strand.create", "title is required")
	}
	colour := strings.TrimSpace(in.Colour)
	if colour == "" {
		colour = types.DefaultStrandColour
	}
	if !colourPattern.MatchString(colour) {
		return nil, types.Validation("strand.create", "colour must look like #rrggbb")
	}
	strand := &types.Strand{
		ID:           uuid.New(),
		CurriculumID: curriculumID,
		Title:        title,
		Colour:       strings.ToLower(colour),
		SourceText:   in.Text,
	}
	err := inTx(s.tx, dbc, func(dbc dbctx.Context) error {
		if _, err := s.repos.Curricula.GetByID(dbc, curriculumID); err != nil {
			return err
		}
		if err := s.repos.Strands.Create(dbc, strand); err != nil {
			return err
		}
		_, err := s.rebuild(dbc, strand)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create strand: %w", err)
	}
	s.log.Info("Strand created", "curriculum_id", curriculumID, "strand_id", strand.ID, "position", strand.Position)
	return strand, nil
}

func (s *curriculumService) SetStrandSourceText(dbc dbctx.Context, strandID uuid.UUID, text string) error {
	if err := s.repos.Strands.UpdateFields(dbc, strandID, map[string]interface{}{"source_text": text}); err != nil {
		return fmt.Errorf("set strand text: %w", err)
	}
	return nil
}

func (s *curriculumService) RebuildLearningOutcomes(dbc dbctx.Context, strandID uuid.UUID) ([]*types.LearningOutcome, error) {
	var out []*types.LearningOutcome
	err := inTx(s.tx, dbc, func(dbc dbctx.Context) error {
		strand, err := s.repos.Strands.GetByID(dbc, strandID)
		if err != nil {
			return err
		}
		out, err = s.rebuild(dbc, strand)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("rebuild learning outcomes: %w", err)
	}
	return out, nil
}

func (s *curriculumService) rebuild(dbc dbctx.Context, strand *types.Strand) ([]*types.LearningOutcome, error) {
	existing, err := s.repos.LearningOutcomes.ListByStrand(dbc, strand.ID)
	if err != nil {
		return nil, err
	}
	plan := curriculum.PlanOutcomes(strand.ID, existing, strand.SourceText)
	if err := s.repos.LearningOutcomes.ApplyPlan(dbc, plan); err != nil {
		return nil, err
	}
	s.log.Debug("Learning outcomes rebuilt",
		"strand_id", strand.ID,
		"kept", len(plan.Keep),
		"created", len(plan.Create),
		"removed", len(plan.Remove),
	)
	return s.repos.LearningOutcomes.ListByStrand(dbc, strand.ID)
}

func (s *curriculumService) ListStrands(dbc dbctx.Context, curriculumID uuid.UUID) ([]*types.Strand, error) {
	if _, err := s.repos.Curricula.GetByID(dbc, curriculumID); err != nil {
		return nil, err
	}
	return s.repos.Strands.ListByCurriculum(dbc, curriculumID)
}

func (s *curriculumService) ListLearningOutcomes(dbc dbctx.Context, strandID uuid.UUID) ([]*types.LearningOutcome, error) {
	if _, err := s.repos.Strands.GetByID(dbc, strandID); err != nil {
		return nil, err
	}
	return s.repos.LearningOutcomes.ListByStrand(dbc, strandID)
}
