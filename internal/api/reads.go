package api

import (
	"net/http"
	"strconv"

	"github.com/YourStyle/moodsprint/internal/constants"
	"github.com/YourStyle/moodsprint/internal/version"

	"github.com/gin-gonic/gin"
)

// GetProfile returns the caller's profile, creating it on first sight.
// Pending energy regeneration is credited before the response.
func (h *Handler) GetProfile(c *gin.Context) {
	email, ok := userEmail(c)
	if !ok {
		return
	}
	name := c.GetHeader(constants.HeaderUserName)
	p, err := h.svc.GetProfile(email, name)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// ListCards returns every card the caller owns, destroyed ones included
// (clients render those greyed out).
func (h *Handler) ListCards(c *gin.Context) {
	email, ok := userEmail(c)
	if !ok {
		return
	}
	p, err := h.repo.GetProfileByEmail(email)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrProfileNotFound})
		return
	}
	cards, err := h.repo.GetCardsByUser(p.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchCards})
		return
	}
	c.JSON(http.StatusOK, cards)
}

// ListMonsters returns the configured campaign monsters.
func (h *Handler) ListMonsters(c *gin.Context) {
	monsters, err := h.repo.GetMonsters()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchMonsters})
		return
	}
	c.JSON(http.StatusOK, monsters)
}

// ListLeaderboard returns the top profiles by level then XP, top 10 by
// default (?limit=N, capped at 100).
func (h *Handler) ListLeaderboard(c *gin.Context) {
	limit := 10
	if s := c.Query("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	profiles, err := h.repo.GetTopProfiles(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchLeaders})
		return
	}
	c.JSON(http.StatusOK, profiles)
}

// Version reports the build version.
func (h *Handler) Version(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"version": version.Version, "build": version.String()})
}
