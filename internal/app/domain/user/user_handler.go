package user

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/roamly/internal/app/domain"
	"github.com/FACorreiaa/roamly/internal/app/models"
	"github.com/FACorreiaa/roamly/internal/pkg/middleware"
	"github.com/FACorreiaa/roamly/internal/pkg/utils"
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

// Me handles GET /users/me.
func (h *Handlers) Me(c *gin.Context) {
	u, err := h.service.GetByID(c.Request.Context(), middleware.GetUserIDFromContext(c))
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

type updateProfileRequest struct {
	Username *string `json:"username,omitempty" binding:"omitempty,min=3,max=30"`
	City     *string `json:"city,omitempty" binding:"omitempty,max=100"`
	Country  *string `json:"country,omitempty" binding:"omitempty,max=100"`
	LL       *string `json:"ll,omitempty"`
}

// UpdateMe handles PUT /users/me.
func (h *Handlers) UpdateMe(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondValidation(c, err)
		return
	}

	update := ProfileUpdate{
		Username: req.Username,
		City:     req.City,
		Country:  req.Country,
	}
	if req.LL != nil {
		point, err := utils.ParseLL(*req.LL)
		if err != nil {
			h.RespondError(c, err)
			return
		}
		update.Location = &point
	}

	u, err := h.service.UpdateProfile(c.Request.Context(), middleware.GetUserIDFromContext(c), update)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

type preferencesRequest struct {
	Cuisines    []string `json:"cuisines,omitempty" binding:"omitempty,max=30,dive,min=1,max=50"`
	Atmospheres []string `json:"atmospheres,omitempty" binding:"omitempty,max=30,dive,min=1,max=50"`
	PriceRange  string   `json:"price_range,omitempty" binding:"omitempty,oneof=budget moderate upscale"`
	Interests   []string `json:"interests,omitempty" binding:"omitempty,max=30,dive,min=1,max=50"`
}

// UpdatePreferences handles PUT /users/me/preferences.
func (h *Handlers) UpdatePreferences(c *gin.Context) {
	var req preferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondValidation(c, err)
		return
	}

	prefs := models.UserPreferences{
		Cuisines:    req.Cuisines,
		Atmospheres: req.Atmospheres,
		PriceRange:  req.PriceRange,
		Interests:   req.Interests,
	}
	err := h.service.UpdatePreferences(c.Request.Context(), middleware.GetUserIDFromContext(c), prefs)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"preferences": prefs})
}

// ListFavorites handles GET /users/me/favorites.
func (h *Handlers) ListFavorites(c *gin.Context) {
	favorites, err := h.service.ListFavorites(c.Request.Context(), middleware.GetUserIDFromContext(c))
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorites": favorites, "count": len(favorites)})
}

// AddFavorite handles POST /users/me/favorites/:placeId.
func (h *Handlers) AddFavorite(c *gin.Context) {
	externalID := c.Param("placeId")
	if externalID == "" {
		h.RespondError(c, fmt.Errorf("place id is required: %w", models.ErrValidation))
		return
	}

	err := h.service.AddFavorite(c.Request.Context(), middleware.GetUserIDFromContext(c), externalID)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RemoveFavorite handles DELETE /users/me/favorites/:placeId.
func (h *Handlers) RemoveFavorite(c *gin.Context) {
	externalID := c.Param("placeId")
	if externalID == "" {
		h.RespondError(c, fmt.Errorf("place id is required: %w", models.ErrValidation))
		return
	}

	err := h.service.RemoveFavorite(c.Request.Context(), middleware.GetUserIDFromContext(c), externalID)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
