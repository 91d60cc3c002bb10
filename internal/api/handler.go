package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/YourStyle/moodsprint/internal/apperr"
	"github.com/YourStyle/moodsprint/internal/constants"
	"github.com/YourStyle/moodsprint/internal/service"
	"github.com/YourStyle/moodsprint/internal/storage"

	"github.com/gin-gonic/gin"
)

// Handler wires HTTP routes to the battle and progression service.
type Handler struct {
	repo storage.Repository
	svc  *service.Service
}

func NewHandler(repo storage.Repository, svc *service.Service) *Handler {
	return &Handler{repo: repo, svc: svc}
}

// RegisterRoutes mounts every API route under the /api prefix.
func RegisterRoutes(r *gin.Engine, h *Handler) {
	g := r.Group(constants.RouteAPIPrefix)

	g.GET(constants.RouteProfile, h.GetProfile)
	g.GET(constants.RouteCards, h.ListCards)
	g.GET(constants.RouteMonsters, h.ListMonsters)
	g.GET(constants.RouteLeaderboard, h.ListLeaderboard)

	g.POST(constants.RouteBattles, h.StartBattle)
	g.GET(constants.RouteActiveBattle, h.GetActiveBattle)
	g.POST(constants.RouteBattleRound, h.AdvanceBattleRound)
	g.POST(constants.RouteBattleAbandon, h.AbandonBattle)

	g.POST(constants.RouteEnergySpend, h.SpendEnergy)
	g.POST(constants.RouteProgressXP, h.AddXP)
	g.POST(constants.RouteStreakCheck, h.CheckStreak)

	g.GET(constants.RouteCardAsset, h.ServeCardAsset)
	g.GET("/version", h.Version)
}

// userEmail extracts the caller identity from the X-User-Email header.
// Identity is supplied by the fronting gateway; this service trusts it.
func userEmail(c *gin.Context) (string, bool) {
	email := strings.TrimSpace(c.GetHeader(constants.HeaderUserEmail))
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrUserRequired})
		return "", false
	}
	return email, true
}

// statusFor maps the error taxonomy to HTTP status codes.
func statusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict, apperr.KindInvalidState:
		return http.StatusConflict
	case apperr.KindInsufficient:
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

// fail writes a taxonomy error as JSON. Internal causes never leak: the
// client sees the presentable message only.
func fail(c *gin.Context, err error) {
	var ae *apperr.Error
	msg := constants.ErrInvalidRequest
	if errors.As(err, &ae) {
		msg = ae.Message
	}
	c.JSON(statusFor(err), gin.H{constants.JSONKeyError: msg})
}
