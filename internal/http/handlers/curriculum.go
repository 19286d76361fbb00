package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/lo-analysis-backend/internal/data/repos/curricula"
	"github.com/yungbote/lo-analysis-backend/internal/http/response"
	"github.com/yungbote/lo-analysis-backend/internal/platform/logger"
	"github.com/yungbote/lo-analysis-backend/internal/services"
)

type CurriculumHandler struct {
	log       *logger.Logger
	curricula services.CurriculumService
}

func NewCurriculumHandler(log *logger.Logger, curricula services.CurriculumService) *CurriculumHandler {
	return &CurriculumHandler{
		log:       log.With("handler", "CurriculumHandler"),
		curricula: curricula,
	}
}

// POST /api/curricula
func (h *CurriculumHandler) CreateCurriculum(c *gin.Context) {
	var in services.CreateCurriculumInput
	if !bindJSON(c, &in) {
		return
	}
	cur, err := h.curricula.CreateCurriculum(requestDB(c), in)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"curriculum": cur})
}

// GET /api/curricula?public=true
func (h *CurriculumHandler) ListCurricula(c *gin.Context) {
	out, err := h.curricula.ListCurricula(requestDB(c), curricula.ListFilter{PublicOnly: c.Query("public") == "true"})
	if err != nil {
		h.log.Error("list curricula failed", "error", err)
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"curricula": out})
}

// GET /api/curricula/:id
func (h *CurriculumHandler) GetCurriculum(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	cur, err := h.curricula.GetCurriculum(requestDB(c), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	stats, err := h.curricula.Stats(requestDB(c), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"curriculum": cur, "stats": stats})
}

// DELETE /api/curricula/:id
func (h *CurriculumHandler) DeleteCurriculum(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.curricula.DeleteCurriculum(requestDB(c), id); err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// POST /api/curricula/:id/strands
func (h *CurriculumHandler) CreateStrand(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in services.CreateStrandInput
	if !bindJSON(c, &in) {
		return
	}
	st, err := h.curricula.CreateStrand(requestDB(c), id, in)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"strand": st})
}

// GET /api/curricula/:id/strands
func (h *CurriculumHandler) ListStrands(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	out, err := h.curricula.ListStrands(requestDB(c), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"strands": out})
}

type strandTextRequest struct {
	Text string `json:"text"`
}

// PUT /api/strands/:id/text
// Stores the text and re-derives the strand's learning outcomes.
func (h *CurriculumHandler) SetStrandText(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req strandTextRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.curricula.SetStrandSourceText(requestDB(c), id, req.Text); err != nil {
		response.RespondDomainError(c, err)
		return
	}
	los, err := h.curricula.RebuildLearningOutcomes(requestDB(c), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"learning_outcomes": los})
}

// GET /api/strands/:id/learning-outcomes
func (h *CurriculumHandler) ListLearningOutcomes(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	los, err := h.curricula.ListLearningOutcomes(requestDB(c), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"learning_outcomes": los})
}
