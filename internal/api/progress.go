package api

import (
	"net/http"

	"github.com/YourStyle/moodsprint/internal/constants"

	"github.com/gin-gonic/gin"
)

// SpendEnergy consumes one campaign energy point, crediting pending
// regeneration first. Used by campaign content with no monster battle.
func (h *Handler) SpendEnergy(c *gin.Context) {
	email, ok := userEmail(c)
	if !ok {
		return
	}
	p, err := h.svc.SpendEnergy(email)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

type addXPRequest struct {
	Amount int64 `json:"amount" binding:"required"`
}

// AddXP credits progression XP from a completed productivity event and
// returns the profile plus any level rewards the credit unlocked.
func (h *Handler) AddXP(c *gin.Context) {
	email, ok := userEmail(c)
	if !ok {
		return
	}
	var req addXPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	p, granted, err := h.svc.AddXP(email, req.Amount)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": p, "granted": granted})
}

// CheckStreak grants any streak milestone the caller's current streak
// entitles them to. Repeat calls before the streak grows are no-ops.
func (h *Handler) CheckStreak(c *gin.Context) {
	email, ok := userEmail(c)
	if !ok {
		return
	}
	p, granted, err := h.svc.CheckStreakMilestone(email)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": p, "granted": granted})
}
