package api

import (
	"net/http"
	"strconv"

	"github.com/YourStyle/moodsprint/internal/constants"

	"github.com/gin-gonic/gin"
)

// ServeCardAsset serves a card template's PNG stored in the DB. Art is
// generated asynchronously after mint; until then this returns 404 and
// clients fall back to a rarity placeholder.
func (h *Handler) ServeCardAsset(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("templateID"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	img, err := h.repo.GetTemplateImage(uint(id))
	if err != nil || len(img) == 0 {
		c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrCardImageNotFound})
		return
	}
	c.Header(constants.HeaderContentType, constants.ContentTypePNG)
	c.Writer.WriteHeader(http.StatusOK)
	_, _ = c.Writer.Write(img)
}
