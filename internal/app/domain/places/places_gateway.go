package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/FACorreiaa/roamly/internal/app/models"
	"github.com/FACorreiaa/roamly/internal/pkg/config"
)

// Sort modes accepted by Search.
const (
	SortRating     = "RATING"
	SortPopularity = "POPULARITY"
	SortDistance   = "DISTANCE"
)

// SearchParams describes one provider search. Exactly one of Near/Point is
// expected to be meaningful; empty fields are omitted from the outbound
// request rather than sent as empty strings.
type SearchParams struct {
	Query        string
	Near         string
	Point        *models.GeoPoint
	RadiusMeters int
	CategoryID   string
	Limit        int
	Sort         string
}

var _ Gateway = (*GatewayImpl)(nil)

// Gateway fronts the external places provider. Every successful search
// write-through populates the cache store as a side effect.
type Gateway interface {
	Search(ctx context.Context, params SearchParams) ([]models.Place, error)
	GetDetails(ctx context.Context, externalID string) (*models.Place, error)
	GetPhotos(ctx context.Context, externalID string, limit int) ([]models.Photo, error)
	GetTips(ctx context.Context, externalID string, limit int) ([]models.Tip, error)
	SearchByCategoryName(ctx context.Context, label string, point models.GeoPoint, radiusMeters, limit int) ([]models.Place, error)
	GetTrending(ctx context.Context, point models.GeoPoint, limit int) ([]models.Place, error)
}

type GatewayImpl struct {
	logger     *zap.Logger
	repo       Repository
	httpClient *http.Client
	baseURL    string
	apiKey     string
	memo       *cache.Cache
}

func NewGatewayImpl(cfg config.PlacesProviderConfig, repo Repository, logger *zap.Logger) *GatewayImpl {
	return &GatewayImpl{
		logger:     logger,
		repo:       repo,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		memo:       cache.New(5*time.Minute, 10*time.Minute),
	}
}

// provider wire shapes

type venueEnvelope struct {
	Response struct {
		Venues []venue `json:"venues"`
		Venue  *venue  `json:"venue"`
	} `json:"response"`
}

type venue struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Categories []struct {
		Name string `json:"name"`
	} `json:"categories"`
	Location struct {
		Lat     float64 `json:"lat"`
		Lng     float64 `json:"lng"`
		Address string  `json:"address"`
		City    string  `json:"city"`
		Country string  `json:"country"`
	} `json:"location"`
	Contact struct {
		Phone string `json:"phone"`
		Email string `json:"email"`
	} `json:"contact"`
	URL   string `json:"url"`
	Price *struct {
		Tier int `json:"tier"`
	} `json:"price"`
	Rating *float64 `json:"rating"`
	Hours  *struct {
		IsOpen bool `json:"isOpen"`
	} `json:"hours"`
	Stats struct {
		CheckinsCount int `json:"checkinsCount"`
		TipCount      int `json:"tipCount"`
		PhotoCount    int `json:"photoCount"`
	} `json:"stats"`
}

type photoEnvelope struct {
	Response struct {
		Photos struct {
			Items []struct {
				ID        string `json:"id"`
				Prefix    string `json:"prefix"`
				Suffix    string `json:"suffix"`
				Width     int    `json:"width"`
				Height    int    `json:"height"`
				CreatedAt int64  `json:"createdAt"`
			} `json:"items"`
		} `json:"photos"`
	} `json:"response"`
}

type tipEnvelope struct {
	Response struct {
		Tips struct {
			Items []struct {
				ID        string `json:"id"`
				Text      string `json:"text"`
				CreatedAt int64  `json:"createdAt"`
			} `json:"items"`
		} `json:"tips"`
	} `json:"response"`
}

func (v venue) toPlace() models.Place {
	p := models.Place{
		ExternalID: v.ID,
		Name:       v.Name,
		Location:   models.NewGeoPoint(v.Location.Lng, v.Location.Lat),
		Address:    v.Location.Address,
		City:       v.Location.City,
		Country:    v.Location.Country,
		Phone:      v.Contact.Phone,
		Email:      v.Contact.Email,
		Website:    v.URL,
		Rating:     v.Rating,
		Stats: models.PlaceStats{
			CheckinCount: v.Stats.CheckinsCount,
			TipCount:     v.Stats.TipCount,
			PhotoCount:   v.Stats.PhotoCount,
		},
		IsActive: true,
	}
	if len(v.Categories) > 0 {
		p.Category = v.Categories[0].Name
		for _, c := range v.Categories {
			p.CategoryTags = append(p.CategoryTags, c.Name)
		}
	}
	if v.Price != nil {
		tier := v.Price.Tier
		p.PriceTier = &tier
	}
	if v.Hours != nil {
		open := v.Hours.IsOpen
		p.OpenNow = &open
	}
	p.RecomputePopularity()
	return p
}

// Search queries the provider and mirrors every result into the cache store.
// A provider failure surfaces as models.ErrUpstreamUnavailable and leaves
// the cache untouched; the caller decides whether to degrade to cached data.
func (g *GatewayImpl) Search(ctx context.Context, params SearchParams) ([]models.Place, error) {
	ctx, span := otel.Tracer("PlacesGateway").Start(ctx, "Search", trace.WithAttributes(
		attribute.String("search.query", params.Query),
		attribute.Int("search.radius", params.RadiusMeters),
	))
	defer span.End()

	memoKey := searchMemoKey(params)
	if cached, found := g.memo.Get(memoKey); found {
		span.SetAttributes(attribute.Bool("search.memoized", true))
		return cached.([]models.Place), nil
	}

	q := url.Values{}
	if params.Query != "" {
		q.Set("query", params.Query)
	}
	if params.Point != nil {
		// provider convention is latitude first
		q.Set("ll", fmt.Sprintf("%f,%f", params.Point.Lat(), params.Point.Lon()))
	} else if params.Near != "" {
		q.Set("near", params.Near)
	}
	if params.RadiusMeters > 0 {
		q.Set("radius", strconv.Itoa(params.RadiusMeters))
	}
	if params.CategoryID != "" {
		q.Set("categoryId", params.CategoryID)
	}
	if params.Limit > 0 {
		q.Set("limit", strconv.Itoa(params.Limit))
	}
	if params.Sort != "" {
		q.Set("sort", params.Sort)
	}

	var envelope venueEnvelope
	if err := g.doGet(ctx, "/venues/search", q, &envelope); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "provider search failed")
		return nil, err
	}

	results := g.mirror(ctx, envelope.Response.Venues)
	g.memo.SetDefault(memoKey, results)

	span.SetAttributes(attribute.Int("result.count", len(results)))
	span.SetStatus(codes.Ok, "search completed")
	return results, nil
}

// GetDetails is cache-first: a fresh cached record short-circuits the remote
// call. A stale record is refreshed remotely; if the provider is down the
// stale record is still better than nothing and is returned with a warning.
func (g *GatewayImpl) GetDetails(ctx context.Context, externalID string) (*models.Place, error) {
	ctx, span := otel.Tracer("PlacesGateway").Start(ctx, "GetDetails", trace.WithAttributes(
		attribute.String("place.external_id", externalID),
	))
	defer span.End()

	cached, cacheErr := g.repo.GetByExternalID(ctx, externalID)
	if cacheErr == nil && !cached.IsStale(time.Now()) {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return cached, nil
	}
	if cacheErr != nil && !errors.Is(cacheErr, models.ErrNotFound) {
		// cache outage degrades to remote-only, never fails the read
		g.logger.Warn("place cache read failed, falling through to provider",
			zap.String("external_id", externalID),
			zap.Error(cacheErr))
		cached = nil
	}

	var envelope venueEnvelope
	err := g.doGet(ctx, "/venues/"+url.PathEscape(externalID), nil, &envelope)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) && cached == nil {
			return nil, models.ErrNotFound
		}
		if cached != nil {
			g.logger.Warn("provider detail fetch failed, serving stale cache",
				zap.String("external_id", externalID),
				zap.Error(err))
			return cached, nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "detail fetch failed")
		return nil, err
	}
	if envelope.Response.Venue == nil {
		if cached != nil {
			return cached, nil
		}
		return nil, models.ErrNotFound
	}

	place := envelope.Response.Venue.toPlace()
	if err := g.repo.Upsert(ctx, &place); err != nil {
		g.logger.Warn("failed to cache place details", zap.String("external_id", externalID), zap.Error(err))
	}

	span.SetStatus(codes.Ok, "details fetched")
	return &place, nil
}

// GetPhotos degrades to an empty list on any provider failure; photos are an
// enrichment, never fatal.
func (g *GatewayImpl) GetPhotos(ctx context.Context, externalID string, limit int) ([]models.Photo, error) {
	ctx, span := otel.Tracer("PlacesGateway").Start(ctx, "GetPhotos")
	defer span.End()

	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var envelope photoEnvelope
	if err := g.doGet(ctx, "/venues/"+url.PathEscape(externalID)+"/photos", q, &envelope); err != nil {
		g.logger.Warn("photo fetch failed, returning empty set",
			zap.String("external_id", externalID),
			zap.Error(err))
		return []models.Photo{}, nil
	}

	photos := make([]models.Photo, 0, len(envelope.Response.Photos.Items))
	for _, item := range envelope.Response.Photos.Items {
		photos = append(photos, models.Photo{
			ID:        item.ID,
			URL:       item.Prefix + "original" + item.Suffix,
			Width:     item.Width,
			Height:    item.Height,
			CreatedAt: time.Unix(item.CreatedAt, 0),
		})
	}
	return photos, nil
}

// GetTips has the same degrade-to-empty contract as GetPhotos.
func (g *GatewayImpl) GetTips(ctx context.Context, externalID string, limit int) ([]models.Tip, error) {
	ctx, span := otel.Tracer("PlacesGateway").Start(ctx, "GetTips")
	defer span.End()

	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var envelope tipEnvelope
	if err := g.doGet(ctx, "/venues/"+url.PathEscape(externalID)+"/tips", q, &envelope); err != nil {
		g.logger.Warn("tip fetch failed, returning empty set",
			zap.String("external_id", externalID),
			zap.Error(err))
		return []models.Tip{}, nil
	}

	tips := make([]models.Tip, 0, len(envelope.Response.Tips.Items))
	for _, item := range envelope.Response.Tips.Items {
		tips = append(tips, models.Tip{
			ID:        item.ID,
			Text:      item.Text,
			CreatedAt: time.Unix(item.CreatedAt, 0),
		})
	}
	return tips, nil
}

// SearchByCategoryName resolves the label through the static taxonomy table.
func (g *GatewayImpl) SearchByCategoryName(ctx context.Context, label string, point models.GeoPoint, radiusMeters, limit int) ([]models.Place, error) {
	categoryID, ok := lookupCategory(label)
	if !ok {
		return nil, fmt.Errorf("category %q: %w", label, models.ErrUnknownCategory)
	}

	return g.Search(ctx, SearchParams{
		Point:        &point,
		RadiusMeters: radiusMeters,
		CategoryID:   categoryID,
		Limit:        limit,
	})
}

// GetTrending mirrors the provider's trending query with search semantics.
func (g *GatewayImpl) GetTrending(ctx context.Context, point models.GeoPoint, limit int) ([]models.Place, error) {
	ctx, span := otel.Tracer("PlacesGateway").Start(ctx, "GetTrending")
	defer span.End()

	q := url.Values{}
	q.Set("ll", fmt.Sprintf("%f,%f", point.Lat(), point.Lon()))
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var envelope venueEnvelope
	if err := g.doGet(ctx, "/venues/trending", q, &envelope); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "trending fetch failed")
		return nil, err
	}

	results := g.mirror(ctx, envelope.Response.Venues)
	span.SetStatus(codes.Ok, "trending fetched")
	return results, nil
}

// mirror normalizes provider venues and write-through upserts each into the
// cache store. Cache failures are logged and swallowed.
func (g *GatewayImpl) mirror(ctx context.Context, venues []venue) []models.Place {
	results := make([]models.Place, 0, len(venues))
	for _, v := range venues {
		place := v.toPlace()
		if err := g.repo.Upsert(ctx, &place); err != nil {
			g.logger.Warn("best-effort place cache write failed",
				zap.String("external_id", place.ExternalID),
				zap.Error(err))
		}
		results = append(results, place)
	}
	return results
}

func (g *GatewayImpl) doGet(ctx context.Context, path string, q url.Values, out interface{}) error {
	reqURL := g.baseURL + path
	if len(q) > 0 {
		reqURL += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build provider request: %w", err)
	}
	req.Header.Set("Authorization", g.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("provider call %s: %w: %s", path, models.ErrUpstreamUnavailable, err.Error())
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return models.ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("provider call %s returned %d: %w", path, resp.StatusCode, models.ErrUpstreamUnavailable)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("provider call %s decode: %w", path, models.ErrUpstreamUnavailable)
	}
	return nil
}

func searchMemoKey(params SearchParams) string {
	ll := ""
	if params.Point != nil {
		ll = fmt.Sprintf("%f,%f", params.Point.Lon(), params.Point.Lat())
	}
	return fmt.Sprintf("search:%s:%s:%s:%d:%s:%d:%s",
		params.Query, params.Near, ll, params.RadiusMeters, params.CategoryID, params.Limit, params.Sort)
}
