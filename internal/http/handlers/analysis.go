package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/lo-analysis-backend/internal/http/response"
	"github.com/yungbote/lo-analysis-backend/internal/platform/logger"
	"github.com/yungbote/lo-analysis-backend/internal/services"
)

type AnalysisHandler struct {
	log      *logger.Logger
	analyses services.AnalysisService
	jobs     services.JobService
}

func NewAnalysisHandler(log *logger.Logger, analyses services.AnalysisService, jobs services.JobService) *AnalysisHandler {
	return &AnalysisHandler{
		log:      log.With("handler", "AnalysisHandler"),
		analyses: analyses,
		jobs:     jobs,
	}
}

type createAnalysisRequest struct {
	TaxonomyID uuid.UUID `json:"taxonomy_id"`
	Title      string    `json:"title"`
}

// POST /api/curricula/:id/analyses
func (h *AnalysisHandler) CreateAnalysis(c *gin.Context) {
	curriculumID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req createAnalysisRequest
	if !bindJSON(c, &req) {
		return
	}
	ca, err := h.analyses.CreateAnalysis(requestDB(c), services.CreateAnalysisInput{
		CurriculumID: curriculumID,
		TaxonomyID:   req.TaxonomyID,
		Title:        req.Title,
	})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"analysis": ca})
}

// POST /api/analyses/:id/run
// Queues a curriculum_analysis job, or returns the one already in flight.
func (h *AnalysisHandler) RunAnalysis(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	job, created, err := h.jobs.EnqueueAnalysis(requestDB(c), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	view, err := h.jobs.GetStatus(requestDB(c), job.ID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	if created {
		h.log.Info("analysis queued", "analysis_id", id, "job_id", job.ID)
	}
	c.JSON(http.StatusAccepted, gin.H{"job": view, "created": created})
}

// GET /api/analyses/:id/report
func (h *AnalysisHandler) GetReport(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	rep, err := h.analyses.Report(requestDB(c), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	out := gin.H{"report": rep}
	if latest, err := h.jobs.GetLatestForAnalysis(requestDB(c), id); err == nil {
		out["job"] = latest
	}
	response.RespondOK(c, out)
}

// GET /api/analyses/:id/non-categorised-verbs
func (h *AnalysisHandler) ListNonCatVerbs(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	verbs, err := h.analyses.NonCatVerbs(requestDB(c), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"verbs": verbs})
}
