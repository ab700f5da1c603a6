package places

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/roamly/internal/app/domain"
	"github.com/FACorreiaa/roamly/internal/app/models"
	"github.com/FACorreiaa/roamly/internal/pkg/middleware"
	"github.com/FACorreiaa/roamly/internal/pkg/utils"
)

// UserLocator resolves an authenticated user's stored location, used when a
// request omits ll.
type UserLocator interface {
	GetLocation(ctx context.Context, userID string) (*models.GeoPoint, error)
}

type Handlers struct {
	*domain.BaseHandler
	service Service
	users   UserLocator
}

func NewHandlers(service Service, users UserLocator, logger *zap.Logger) *Handlers {
	return &Handlers{
		BaseHandler: domain.NewBaseHandler(logger),
		service:     service,
		users:       users,
	}
}

const (
	minSearchRadius = 100
	maxSearchRadius = 50000
	maxLimit        = 50
	defaultLimit    = 20
	defaultRadius   = 1000
)

// Search handles GET /places/search.
func (h *Handlers) Search(c *gin.Context) {
	params := SearchParams{
		Query: strings.TrimSpace(c.Query("query")),
		Near:  strings.TrimSpace(c.Query("near")),
		Sort:  strings.ToUpper(strings.TrimSpace(c.Query("sort"))),
	}

	var err error
	params.RadiusMeters, err = parseRadius(c.Query("radius"), minSearchRadius, maxSearchRadius, defaultRadius)
	if err != nil {
		h.RespondValidation(c, err)
		return
	}
	params.Limit, err = parseLimit(c.Query("limit"))
	if err != nil {
		h.RespondValidation(c, err)
		return
	}

	if params.Sort != "" && params.Sort != SortRating && params.Sort != SortPopularity && params.Sort != SortDistance {
		h.RespondValidation(c, fmt.Errorf("sort must be one of RATING, POPULARITY, DISTANCE"))
		return
	}

	if cat := strings.TrimSpace(c.Query("categories")); cat != "" {
		categoryID, ok := lookupCategory(cat)
		if !ok {
			h.RespondError(c, fmt.Errorf("category %q: %w", cat, models.ErrUnknownCategory))
			return
		}
		params.CategoryID = categoryID
	}

	if point, ok := h.resolvePoint(c, params.Near == ""); ok {
		params.Point = point
	}
	if params.Point == nil && params.Near == "" {
		h.RespondError(c, fmt.Errorf("ll or near required: %w", models.ErrMissingLocation))
		return
	}

	results, degraded, err := h.service.SearchPlaces(c.Request.Context(), params)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"results":  results,
		"count":    len(results),
		"degraded": degraded,
	})
}

// Nearby handles GET /places/nearby: cached places only, no provider call.
func (h *Handlers) Nearby(c *gin.Context) {
	point, ok := h.resolvePoint(c, true)
	if !ok || point == nil {
		h.RespondError(c, fmt.Errorf("ll required: %w", models.ErrMissingLocation))
		return
	}

	radius, err := parseRadius(c.Query("radius"), minSearchRadius, maxSearchRadius, defaultRadius)
	if err != nil {
		h.RespondValidation(c, err)
		return
	}
	limit, err := parseLimit(c.Query("limit"))
	if err != nil {
		h.RespondValidation(c, err)
		return
	}

	results, err := h.service.GetNearby(c.Request.Context(), *point, float64(radius), limit)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results, "count": len(results)})
}

// Trending handles GET /places/trending.
func (h *Handlers) Trending(c *gin.Context) {
	point, ok := h.resolvePoint(c, true)
	if !ok || point == nil {
		h.RespondError(c, fmt.Errorf("ll required: %w", models.ErrMissingLocation))
		return
	}

	limit, err := parseLimit(c.Query("limit"))
	if err != nil {
		h.RespondValidation(c, err)
		return
	}

	results, err := h.service.GetTrending(c.Request.Context(), *point, limit)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results, "count": len(results)})
}

// Category handles GET /places/category/:name.
func (h *Handlers) Category(c *gin.Context) {
	point, ok := h.resolvePoint(c, true)
	if !ok || point == nil {
		h.RespondError(c, fmt.Errorf("ll required: %w", models.ErrMissingLocation))
		return
	}

	radius, err := parseRadius(c.Query("radius"), minSearchRadius, maxSearchRadius, defaultRadius)
	if err != nil {
		h.RespondValidation(c, err)
		return
	}
	limit, err := parseLimit(c.Query("limit"))
	if err != nil {
		h.RespondValidation(c, err)
		return
	}

	results, degraded, err := h.service.SearchCategory(c.Request.Context(), c.Param("name"), *point, radius, limit)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"results":  results,
		"count":    len(results),
		"degraded": degraded,
	})
}

// Details handles GET /places/:id.
func (h *Handlers) Details(c *gin.Context) {
	place, err := h.service.GetPlaceDetails(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, place)
}

// Photos handles GET /places/:id/photos.
func (h *Handlers) Photos(c *gin.Context) {
	limit, err := parseLimit(c.Query("limit"))
	if err != nil {
		h.RespondValidation(c, err)
		return
	}

	photos, err := h.service.GetPhotos(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"photos": photos, "count": len(photos)})
}

// Tips handles GET /places/:id/tips.
func (h *Handlers) Tips(c *gin.Context) {
	limit, err := parseLimit(c.Query("limit"))
	if err != nil {
		h.RespondValidation(c, err)
		return
	}

	tips, err := h.service.GetTips(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tips": tips, "count": len(tips)})
}

// resolvePoint parses ll, falling back to the authenticated user's stored
// location when allowed. The bool reports whether parsing succeeded (an
// invalid ll is reported to the client inside this helper).
func (h *Handlers) resolvePoint(c *gin.Context, allowUserFallback bool) (*models.GeoPoint, bool) {
	if ll := strings.TrimSpace(c.Query("ll")); ll != "" {
		point, err := utils.ParseLL(ll)
		if err != nil {
			h.RespondValidation(c, err)
			return nil, false
		}
		return &point, true
	}

	if !allowUserFallback {
		return nil, true
	}

	userID := middleware.GetUserIDFromContext(c)
	if userID == "" {
		return nil, true
	}

	location, err := h.users.GetLocation(c.Request.Context(), userID)
	if err != nil {
		h.Logger.Debug("no stored location for user", zap.String("user_id", userID), zap.Error(err))
		return nil, true
	}
	return location, true
}

func parseRadius(raw string, min, max, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	radius, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("radius must be an integer")
	}
	if radius < min || radius > max {
		return 0, fmt.Errorf("radius must be between %d and %d", min, max)
	}
	return radius, nil
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return defaultLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("limit must be an integer")
	}
	if limit < 1 || limit > maxLimit {
		return 0, fmt.Errorf("limit must be between 1 and %d", maxLimit)
	}
	return limit, nil
}
