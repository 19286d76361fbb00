package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/lo-analysis-backend/internal/http/response"
	"github.com/yungbote/lo-analysis-backend/internal/services"
)

type JobHandler struct {
	jobs services.JobService
}

func NewJobHandler(jobs services.JobService) *JobHandler {
	return &JobHandler{jobs: jobs}
}

// GET /api/jobs/:id?events=20
func (h *JobHandler) GetJob(c *gin.Context) {
	jobID, ok := pathID(c, "id")
	if !ok {
		return
	}
	job, err := h.jobs.GetStatus(requestDB(c), jobID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	out := gin.H{"job": job}
	if n, err := strconv.Atoi(c.Query("events")); err == nil && n > 0 {
		events, err := h.jobs.Events(requestDB(c), jobID, n)
		if err != nil {
			response.RespondDomainError(c, err)
			return
		}
		out["events"] = events
	}
	response.RespondOK(c, out)
}
