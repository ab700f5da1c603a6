package recommend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/roamly/internal/app/domain"
	"github.com/FACorreiaa/roamly/internal/app/models"
	"github.com/FACorreiaa/roamly/internal/pkg/middleware"
	"github.com/FACorreiaa/roamly/internal/pkg/utils"
)

// UserStore is the slice of the user domain the chat surface needs.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	UpdatePreferences(ctx context.Context, id string, prefs models.UserPreferences) error
}

// CandidateSource supplies nearby cached places for prompt grounding.
type CandidateSource interface {
	GetNearby(ctx context.Context, point models.GeoPoint, radiusMeters float64, limit int) ([]models.Place, error)
}

type ChatHandlers struct {
	*domain.BaseHandler
	service    Service
	analyzer   *Analyzer
	users      UserStore
	candidates CandidateSource
}

func NewChatHandlers(service Service, analyzer *Analyzer, users UserStore, candidates CandidateSource, logger *zap.Logger) *ChatHandlers {
	return &ChatHandlers{
		BaseHandler: domain.NewBaseHandler(logger),
		service:     service,
		analyzer:    analyzer,
		users:       users,
		candidates:  candidates,
	}
}

type chatMessageRequest struct {
	Message string `json:"message" binding:"required,min=1,max=1000"`
	LL      string `json:"ll,omitempty"`
}

// Message handles POST /chat/message.
func (h *ChatHandlers) Message(c *gin.Context) {
	var req chatMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondValidation(c, err)
		return
	}

	userID := middleware.GetUserIDFromContext(c)
	user, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	intent := h.service.ExtractIntent(c.Request.Context(), req.Message)

	candidates := h.loadCandidates(c.Request.Context(), req.LL, user)

	reply, err := h.service.Converse(c.Request.Context(), req.Message, user, candidates)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	// Preference learning is a side effect of chatting; a failed profile
	// write never fails the turn.
	if delta := h.analyzer.Analyze(req.Message); !delta.IsEmpty() {
		h.analyzer.Apply(&user.Preferences, delta)
		if err := h.users.UpdatePreferences(c.Request.Context(), user.ID, user.Preferences); err != nil {
			h.Logger.Warn("failed to persist learned preferences",
				zap.String("user_id", user.ID), zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"reply":  reply,
		"intent": intent,
	})
}

type recommendationsRequest struct {
	Location string `json:"location,omitempty" binding:"max=100"`
	Context  string `json:"context,omitempty" binding:"max=500"`
}

// Recommendations handles POST /chat/recommendations.
func (h *ChatHandlers) Recommendations(c *gin.Context) {
	var req recommendationsRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.RespondValidation(c, err)
			return
		}
	}

	userID := middleware.GetUserIDFromContext(c)
	user, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	locationHint := req.Location
	if locationHint == "" {
		locationHint = user.City
	}
	if locationHint == "" && user.Location != nil {
		locationHint = fmt.Sprintf("%f,%f", user.Location.Lat(), user.Location.Lon())
	}
	if locationHint == "" {
		h.RespondError(c, fmt.Errorf("no location for recommendations: %w", models.ErrMissingLocation))
		return
	}

	recommendations, err := h.service.GenerateRecommendations(c.Request.Context(), user.Preferences, locationHint, req.Context)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"recommendations": recommendations,
		"count":           len(recommendations),
	})
}

func (h *ChatHandlers) loadCandidates(ctx context.Context, ll string, user *models.User) []models.Place {
	var point *models.GeoPoint
	if ll != "" {
		if parsed, err := utils.ParseLL(ll); err == nil {
			point = &parsed
		}
	}
	if point == nil {
		point = user.Location
	}
	if point == nil {
		return nil
	}

	candidates, err := h.candidates.GetNearby(ctx, *point, 2000, maxCandidatePlaces)
	if err != nil {
		h.Logger.Debug("candidate lookup failed, prompting without candidates", zap.Error(err))
		return nil
	}
	return candidates
}
