package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/FACorreiaa/roamly/internal/app/models"
)

const maxCandidatePlaces = 10

// AIClient is the slice of the LLM SDK this service needs; the production
// implementation is go-genai-sdk's chat client, tests swap in a fake.
type AIClient interface {
	GenerateResponse(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

var _ Service = (*ServiceImpl)(nil)

// Service is the recommendation gateway: every call is one prompt-templated
// LLM round trip plus response parsing. Only skeleton generation treats a
// parse failure as fatal; everything else degrades.
type Service interface {
	ExtractIntent(ctx context.Context, message string) models.Intent
	Converse(ctx context.Context, message string, user *models.User, candidates []models.Place) (*models.ChatReply, error)
	GenerateItinerarySkeleton(ctx context.Context, freeTextPrompt string, prefs models.UserPreferences, locationHint string) (*models.ItinerarySkeleton, error)
	GenerateRecommendations(ctx context.Context, prefs models.UserPreferences, locationHint, context string) ([]models.Recommendation, error)
}

type ServiceImpl struct {
	logger   *zap.Logger
	aiClient AIClient
}

func NewServiceImpl(aiClient AIClient, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:   logger,
		aiClient: aiClient,
	}
}

// ExtractIntent classifies a chat message. Intent extraction is advisory:
// any failure, including unparseable model output, degrades to the default
// search intent rather than an error.
func (s *ServiceImpl) ExtractIntent(ctx context.Context, message string) models.Intent {
	ctx, span := otel.Tracer("RecommendService").Start(ctx, "ExtractIntent")
	defer span.End()

	text, err := s.generate(ctx, intentSystemPrompt(), "User message: "+message, 0.2)
	if err != nil {
		s.logger.Warn("intent extraction call failed, using default intent", zap.Error(err))
		span.SetAttributes(attribute.Bool("intent.defaulted", true))
		return models.DefaultIntent()
	}

	var intent models.Intent
	if err := json.Unmarshal([]byte(cleanJSONResponse(text)), &intent); err != nil || intent.Intent == "" {
		s.logger.Debug("intent reply unparseable, using default intent", zap.Error(err))
		span.SetAttributes(attribute.Bool("intent.defaulted", true))
		return models.DefaultIntent()
	}

	if intent.Entities == nil {
		intent.Entities = map[string]string{}
	}
	if intent.Context == nil {
		intent.Context = map[string]string{}
	}
	return intent
}

// Converse runs one conversational turn. A strict-JSON reply is preferred;
// otherwise the raw text is returned with suggestions pulled from its
// bullet lines.
func (s *ServiceImpl) Converse(ctx context.Context, message string, user *models.User, candidates []models.Place) (*models.ChatReply, error) {
	ctx, span := otel.Tracer("RecommendService").Start(ctx, "Converse")
	defer span.End()

	text, err := s.generate(ctx, conversationSystemPrompt(), conversationUserPrompt(message, user, candidates), 0.7)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "conversation call failed")
		return nil, err
	}

	var structured struct {
		Message     string   `json:"message"`
		Suggestions []string `json:"suggestions"`
	}
	if jsonErr := json.Unmarshal([]byte(cleanJSONResponse(text)), &structured); jsonErr == nil && structured.Message != "" {
		span.SetStatus(codes.Ok, "structured reply")
		return &models.ChatReply{
			Message:     structured.Message,
			Suggestions: structured.Suggestions,
			Structured:  true,
		}, nil
	}

	span.SetAttributes(attribute.Bool("reply.fallback", true))
	span.SetStatus(codes.Ok, "plain-text reply")
	return &models.ChatReply{
		Message:     strings.TrimSpace(text),
		Suggestions: extractBulletSuggestions(text),
		Structured:  false,
	}, nil
}

// GenerateItinerarySkeleton asks for a structured itinerary. Unlike the
// conversational paths, an unparseable reply here is fatal: no itinerary may
// be built from a skeleton that did not parse.
func (s *ServiceImpl) GenerateItinerarySkeleton(ctx context.Context, freeTextPrompt string, prefs models.UserPreferences, locationHint string) (*models.ItinerarySkeleton, error) {
	ctx, span := otel.Tracer("RecommendService").Start(ctx, "GenerateItinerarySkeleton", tracePromptLength(freeTextPrompt))
	defer span.End()

	text, err := s.generate(ctx, skeletonSystemPrompt(), skeletonUserPrompt(freeTextPrompt, prefs, locationHint), 0.6)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "skeleton call failed")
		return nil, fmt.Errorf("skeleton call: %w: %s", models.ErrGenerationFailed, err.Error())
	}

	var skeleton models.ItinerarySkeleton
	if err := json.Unmarshal([]byte(cleanJSONResponse(text)), &skeleton); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "skeleton unparseable")
		return nil, fmt.Errorf("skeleton parse: %w: %s", models.ErrGenerationFailed, err.Error())
	}
	if skeleton.Title == "" || len(skeleton.Places) == 0 {
		span.SetStatus(codes.Error, "skeleton incomplete")
		return nil, fmt.Errorf("skeleton missing title or places: %w", models.ErrGenerationFailed)
	}

	for i := range skeleton.Places {
		if skeleton.Places[i].EstimatedDuration <= 0 {
			skeleton.Places[i].EstimatedDuration = models.DefaultVisitDuration
		}
	}
	if !models.ValidItineraryType(skeleton.Type) {
		skeleton.Type = models.TypeCustom
	}

	span.SetAttributes(attribute.Int("skeleton.places", len(skeleton.Places)))
	span.SetStatus(codes.Ok, "skeleton generated")
	return &skeleton, nil
}

// GenerateRecommendations has the same strict-parse-or-fail contract as
// skeleton generation.
func (s *ServiceImpl) GenerateRecommendations(ctx context.Context, prefs models.UserPreferences, locationHint, promptContext string) ([]models.Recommendation, error) {
	ctx, span := otel.Tracer("RecommendService").Start(ctx, "GenerateRecommendations")
	defer span.End()

	text, err := s.generate(ctx, recommendationsSystemPrompt(), recommendationsUserPrompt(prefs, locationHint, promptContext), 0.6)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "recommendations call failed")
		return nil, fmt.Errorf("recommendations call: %w: %s", models.ErrGenerationFailed, err.Error())
	}

	var wrapper struct {
		Recommendations []models.Recommendation `json:"recommendations"`
	}
	if err := json.Unmarshal([]byte(cleanJSONResponse(text)), &wrapper); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "recommendations unparseable")
		return nil, fmt.Errorf("recommendations parse: %w: %s", models.ErrGenerationFailed, err.Error())
	}

	span.SetAttributes(attribute.Int("recommendations.count", len(wrapper.Recommendations)))
	span.SetStatus(codes.Ok, "recommendations generated")
	return wrapper.Recommendations, nil
}

// generate runs one system+user prompt round trip and flattens the reply to
// text.
func (s *ServiceImpl) generate(ctx context.Context, systemPrompt, userPrompt string, temperature float32) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](temperature),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		},
	}

	response, err := s.aiClient.GenerateResponse(ctx, userPrompt, config)
	if err != nil {
		return "", fmt.Errorf("%w: %s", models.ErrUpstreamUnavailable, err.Error())
	}
	if response == nil || len(response.Candidates) == 0 || response.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty model response: %w", models.ErrUpstreamUnavailable)
	}

	var text strings.Builder
	for _, part := range response.Candidates[0].Content.Parts {
		if part.Text != "" {
			text.WriteString(part.Text)
		}
	}
	return text.String(), nil
}

func tracePromptLength(prompt string) trace.SpanStartOption {
	return trace.WithAttributes(attribute.Int("prompt.length", len(prompt)))
}
