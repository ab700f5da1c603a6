package itineraries

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/roamly/internal/app/domain"
	"github.com/FACorreiaa/roamly/internal/app/models"
	"github.com/FACorreiaa/roamly/internal/pkg/middleware"
	"github.com/FACorreiaa/roamly/internal/pkg/utils"
)

const (
	defaultListLimit = 20
	maxListLimit     = 50

	minDiscoveryRadius = 1000
	maxDiscoveryRadius = 100000
)

type Handlers struct {
	*domain.BaseHandler
	service Service
}

func NewHandlers(service Service, logger *zap.Logger) *Handlers {
	return &Handlers{
		BaseHandler: domain.NewBaseHandler(logger),
		service:     service,
	}
}

type generateRequest struct {
	Prompt      string                  `json:"prompt" binding:"required,min=10,max=500"`
	LL          string                  `json:"ll,omitempty"`
	Type        string                  `json:"type,omitempty"`
	Public      bool                    `json:"public,omitempty"`
	Preferences *models.UserPreferences `json:"preferences,omitempty"`
}

// Generate handles POST /itineraries/generate.
func (h *Handlers) Generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondValidation(c, err)
		return
	}

	params := GenerateParams{
		UserID:      middleware.GetUserIDFromContext(c),
		Prompt:      req.Prompt,
		Public:      req.Public,
		Preferences: req.Preferences,
	}

	if req.LL != "" {
		point, err := utils.ParseLL(req.LL)
		if err != nil {
			h.RespondError(c, err)
			return
		}
		params.Point = &point
	}

	if req.Type != "" {
		t := models.ItineraryType(req.Type)
		if !models.ValidItineraryType(t) {
			h.RespondError(c, fmt.Errorf("unknown itinerary type %q: %w", req.Type, models.ErrValidation))
			return
		}
		params.Type = t
	}

	it, err := h.service.Generate(c.Request.Context(), params)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, it)
}

// List handles GET /itineraries with page/limit pagination and optional
// type/status filters.
func (h *Handlers) List(c *gin.Context) {
	filter := ListFilter{Limit: defaultListLimit}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxListLimit {
			h.RespondError(c, fmt.Errorf("limit must be 1 to %d: %w", maxListLimit, models.ErrValidation))
			return
		}
		filter.Limit = limit
	}

	page := 1
	if raw := c.Query("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			h.RespondError(c, fmt.Errorf("page must be a positive integer: %w", models.ErrValidation))
			return
		}
		page = parsed
	}
	filter.Offset = (page - 1) * filter.Limit

	if raw := c.Query("type"); raw != "" {
		t := models.ItineraryType(raw)
		if !models.ValidItineraryType(t) {
			h.RespondError(c, fmt.Errorf("unknown itinerary type %q: %w", raw, models.ErrValidation))
			return
		}
		filter.Type = t
	}
	switch status := c.Query("status"); status {
	case "":
	case "completed":
		completed := true
		filter.Completed = &completed
	case "active":
		completed := false
		filter.Completed = &completed
	default:
		h.RespondError(c, fmt.Errorf("status must be completed or active: %w", models.ErrValidation))
		return
	}

	results, err := h.service.ListMine(c.Request.Context(), middleware.GetUserIDFromContext(c), filter)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"itineraries": results,
		"count":       len(results),
		"page":        page,
	})
}

// Popular handles GET /itineraries/popular.
func (h *Handlers) Popular(c *gin.Context) {
	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxListLimit {
			h.RespondError(c, fmt.Errorf("limit must be 1 to %d: %w", maxListLimit, models.ErrValidation))
			return
		}
		limit = parsed
	}

	results, err := h.service.Popular(c.Request.Context(), limit)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"itineraries": results, "count": len(results)})
}

// ByLocation handles GET /itineraries/location. ll is required here; there
// is no profile fallback for anonymous discovery.
func (h *Handlers) ByLocation(c *gin.Context) {
	ll := c.Query("ll")
	if ll == "" {
		h.RespondError(c, fmt.Errorf("ll query parameter is required: %w", models.ErrValidation))
		return
	}
	point, err := utils.ParseLL(ll)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	radius := minDiscoveryRadius
	if raw := c.Query("radius"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < minDiscoveryRadius || parsed > maxDiscoveryRadius {
			h.RespondError(c, fmt.Errorf("radius must be %d to %d meters: %w",
				minDiscoveryRadius, maxDiscoveryRadius, models.ErrValidation))
			return
		}
		radius = parsed
	}

	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxListLimit {
			h.RespondError(c, fmt.Errorf("limit must be 1 to %d: %w", maxListLimit, models.ErrValidation))
			return
		}
		limit = parsed
	}

	results, err := h.service.ByLocation(c.Request.Context(), point, float64(radius), limit)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"itineraries": results, "count": len(results)})
}

// Get handles GET /itineraries/:id.
func (h *Handlers) Get(c *gin.Context) {
	it, err := h.service.Get(c.Request.Context(), c.Param("id"), middleware.GetUserIDFromContext(c))
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, it)
}

type updatePlaceEntry struct {
	PlaceID           string `json:"place_id,omitempty"`
	Name              string `json:"name" binding:"required,min=1,max=200"`
	Category          string `json:"category,omitempty" binding:"omitempty,max=100"`
	EstimatedDuration int    `json:"estimated_duration,omitempty" binding:"omitempty,min=15,max=480"`
	Notes             string `json:"notes,omitempty" binding:"omitempty,max=500"`
}

type updateRequest struct {
	Title       *string            `json:"title,omitempty" binding:"omitempty,min=1,max=100"`
	Description *string            `json:"description,omitempty" binding:"omitempty,max=500"`
	IsPublic    *bool              `json:"is_public,omitempty"`
	Tags        []string           `json:"tags,omitempty" binding:"omitempty,max=20,dive,min=1,max=50"`
	Places      []updatePlaceEntry `json:"places,omitempty" binding:"omitempty,max=50,dive"`
}

// Update handles PUT /itineraries/:id.
func (h *Handlers) Update(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondValidation(c, err)
		return
	}

	update := MetaUpdate{
		Title:       req.Title,
		Description: req.Description,
		IsPublic:    req.IsPublic,
		Tags:        req.Tags,
	}
	if req.Places != nil {
		update.Places = make([]models.ItineraryPlace, len(req.Places))
		for i, entry := range req.Places {
			ref := models.UnresolvedRef(i)
			if entry.PlaceID != "" {
				ref = models.ResolvedRef(entry.PlaceID)
			}
			duration := entry.EstimatedDuration
			if duration <= 0 {
				duration = models.DefaultVisitDuration
			}
			update.Places[i] = models.ItineraryPlace{
				Ref:               ref,
				Name:              entry.Name,
				Category:          entry.Category,
				EstimatedDuration: duration,
				Notes:             entry.Notes,
			}
		}
	}

	it, err := h.service.Update(c.Request.Context(), c.Param("id"), middleware.GetUserIDFromContext(c), update)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, it)
}

// Delete handles DELETE /itineraries/:id.
func (h *Handlers) Delete(c *gin.Context) {
	err := h.service.Delete(c.Request.Context(), c.Param("id"), middleware.GetUserIDFromContext(c))
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type addPlaceRequest struct {
	PlaceID           string `json:"place_id" binding:"required,min=1,max=100"`
	EstimatedDuration int    `json:"estimated_duration,omitempty" binding:"omitempty,min=15,max=480"`
	Notes             string `json:"notes,omitempty" binding:"omitempty,max=500"`
}

// AddPlace handles POST /itineraries/:id/places.
func (h *Handlers) AddPlace(c *gin.Context) {
	var req addPlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondValidation(c, err)
		return
	}

	it, err := h.service.AddStop(c.Request.Context(), c.Param("id"), middleware.GetUserIDFromContext(c), PlaceUpdate{
		ExternalID:        req.PlaceID,
		EstimatedDuration: req.EstimatedDuration,
		Notes:             req.Notes,
	})
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, it)
}

// RemovePlace handles DELETE /itineraries/:id/places/:ref.
func (h *Handlers) RemovePlace(c *gin.Context) {
	ref := models.ParsePlaceRefKey(c.Param("ref"))
	it, err := h.service.RemoveStop(c.Request.Context(), c.Param("id"), middleware.GetUserIDFromContext(c), ref)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, it)
}

type markVisitedRequest struct {
	Rating *int `json:"rating,omitempty" binding:"omitempty,min=1,max=5"`
}

// MarkVisited handles PUT /itineraries/:id/places/:ref/visited.
func (h *Handlers) MarkVisited(c *gin.Context) {
	var req markVisitedRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.RespondValidation(c, err)
			return
		}
	}

	ref := models.ParsePlaceRefKey(c.Param("ref"))
	it, err := h.service.MarkStopVisited(c.Request.Context(), c.Param("id"), middleware.GetUserIDFromContext(c), ref, req.Rating)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, it)
}

// ToggleLike handles POST /itineraries/:id/like.
func (h *Handlers) ToggleLike(c *gin.Context) {
	liked, count, err := h.service.ToggleLike(c.Request.Context(), c.Param("id"), middleware.GetUserIDFromContext(c))
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": liked, "like_count": count})
}

// Share handles POST /itineraries/:id/share.
func (h *Handlers) Share(c *gin.Context) {
	it, err := h.service.Share(c.Request.Context(), c.Param("id"), middleware.GetUserIDFromContext(c))
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"share_count": it.ShareCount, "itinerary": it})
}
