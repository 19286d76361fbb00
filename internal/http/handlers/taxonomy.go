package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/lo-analysis-backend/internal/data/repos/taxonomies"
	"github.com/yungbote/lo-analysis-backend/internal/http/response"
	"github.com/yungbote/lo-analysis-backend/internal/platform/logger"
	"github.com/yungbote/lo-analysis-backend/internal/services"
)

type TaxonomyHandler struct {
	log        *logger.Logger
	taxonomies services.TaxonomyService
}

func NewTaxonomyHandler(log *logger.Logger, taxonomies services.TaxonomyService) *TaxonomyHandler {
	return &TaxonomyHandler{
		log:        log.With("handler", "TaxonomyHandler"),
		taxonomies: taxonomies,
	}
}

// POST /api/taxonomies
func (h *TaxonomyHandler) CreateTaxonomy(c *gin.Context) {
	var in services.CreateTaxonomyInput
	if !bindJSON(c, &in) {
		return
	}
	tax, err := h.taxonomies.CreateTaxonomy(requestDB(c), in)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"taxonomy": tax})
}

// GET /api/taxonomies?public=true
func (h *TaxonomyHandler) ListTaxonomies(c *gin.Context) {
	out, err := h.taxonomies.ListTaxonomies(requestDB(c), taxonomies.ListFilter{PublicOnly: c.Query("public") == "true"})
	if err != nil {
		h.log.Error("list taxonomies failed", "error", err)
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"taxonomies": out})
}

// GET /api/taxonomies/:id
func (h *TaxonomyHandler) GetTaxonomy(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	tax, err := h.taxonomies.GetTaxonomy(requestDB(c), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	cats, err := h.taxonomies.ListCategories(requestDB(c), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	stats, err := h.taxonomies.Stats(requestDB(c), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"taxonomy": tax, "categories": cats, "stats": stats})
}

// POST /api/taxonomies/:id/public
func (h *TaxonomyHandler) TogglePublic(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	tax, err := h.taxonomies.TogglePublic(requestDB(c), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"taxonomy": tax})
}

// POST /api/taxonomies/:id/categories
func (h *TaxonomyHandler) CreateCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in services.CategoryInput
	if !bindJSON(c, &in) {
		return
	}
	cat, err := h.taxonomies.CreateCategory(requestDB(c), id, in)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"category": cat})
}

// PUT /api/categories/:id
func (h *TaxonomyHandler) UpdateCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in services.CategoryInput
	if !bindJSON(c, &in) {
		return
	}
	cat, err := h.taxonomies.UpdateCategory(requestDB(c), id, in)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"category": cat})
}

// DELETE /api/categories/:id
func (h *TaxonomyHandler) DeleteCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.taxonomies.DeleteCategory(requestDB(c), id); err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// GET /api/taxonomies/:id/overlap
func (h *TaxonomyHandler) GetOverlap(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	m, err := h.taxonomies.OverlapMatrix(requestDB(c), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"overlap": m})
}

// GET /api/taxonomies/:id/element-counts
func (h *TaxonomyHandler) GetElementCounts(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	counts, err := h.taxonomies.ElementCounts(requestDB(c), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"element_counts": counts})
}
