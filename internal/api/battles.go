package api

import (
	"net/http"

	"github.com/YourStyle/moodsprint/internal/constants"

	"github.com/gin-gonic/gin"
)

type startBattleRequest struct {
	Monster string `json:"monster" binding:"required"`
}

// StartBattle begins a battle against the named monster using the
// caller's current deck.
func (h *Handler) StartBattle(c *gin.Context) {
	email, ok := userEmail(c)
	if !ok {
		return
	}
	var req startBattleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	b, err := h.svc.StartBattle(email, req.Monster)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// GetActiveBattle returns the caller's current non-terminal battle.
func (h *Handler) GetActiveBattle(c *gin.Context) {
	email, ok := userEmail(c)
	if !ok {
		return
	}
	b, err := h.svc.GetActiveBattle(email)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrNoActiveBattle})
		return
	}
	c.JSON(http.StatusOK, b)
}

type advanceRoundRequest struct {
	// TargetID optionally focuses the player's cards on one monster-side
	// participant this round; 0 keeps lowest-HP-first targeting.
	TargetID int `json:"target_id"`
}

// AdvanceBattleRound resolves one round of the battle.
func (h *Handler) AdvanceBattleRound(c *gin.Context) {
	email, ok := userEmail(c)
	if !ok {
		return
	}
	var req advanceRoundRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	b, err := h.svc.AdvanceBattleRound(email, c.Param("battleID"), req.TargetID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// AbandonBattle cancels the caller's battle without rewards.
func (h *Handler) AbandonBattle(c *gin.Context) {
	email, ok := userEmail(c)
	if !ok {
		return
	}
	b, err := h.svc.AbandonBattle(email, c.Param("battleID"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}
