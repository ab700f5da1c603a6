package recommend

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/FACorreiaa/roamly/internal/app/models"
)

type MockAIClient struct {
	mock.Mock
}

func (m *MockAIClient) GenerateResponse(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	args := m.Called(ctx, prompt, config)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*genai.GenerateContentResponse), args.Error(1)
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Parts: []*genai.Part{{Text: text}},
			},
		}},
	}
}

func newTestRecommendService(ai *MockAIClient) *ServiceImpl {
	return NewServiceImpl(ai, zap.NewNop())
}

func TestExtractIntent(t *testing.T) {
	t.Run("parses structured reply", func(t *testing.T) {
		ai := new(MockAIClient)
		svc := newTestRecommendService(ai)

		ai.On("GenerateResponse", mock.Anything, mock.Anything, mock.Anything).
			Return(textResponse("```json\n{\"intent\":\"search_place\",\"confidence\":0.9,\"entities\":{\"cuisine\":\"thai\"}}\n```"), nil)

		intent := svc.ExtractIntent(context.Background(), "find me thai food")
		assert.Equal(t, "search_place", intent.Intent)
		assert.Equal(t, "thai", intent.Entities["cuisine"])
		assert.NotNil(t, intent.Context)
	})

	t.Run("junk reply degrades to default intent", func(t *testing.T) {
		ai := new(MockAIClient)
		svc := newTestRecommendService(ai)

		ai.On("GenerateResponse", mock.Anything, mock.Anything, mock.Anything).
			Return(textResponse("I don't know what you mean"), nil)

		intent := svc.ExtractIntent(context.Background(), "???")
		assert.Equal(t, models.DefaultIntent().Intent, intent.Intent)
	})

	t.Run("model outage degrades to default intent", func(t *testing.T) {
		ai := new(MockAIClient)
		svc := newTestRecommendService(ai)

		ai.On("GenerateResponse", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, errors.New("quota exceeded"))

		intent := svc.ExtractIntent(context.Background(), "coffee nearby")
		assert.Equal(t, models.DefaultIntent().Intent, intent.Intent)
	})
}

func TestConverse(t *testing.T) {
	u := &models.User{ID: "u-1", Username: "ana"}

	t.Run("structured reply wins", func(t *testing.T) {
		ai := new(MockAIClient)
		svc := newTestRecommendService(ai)

		ai.On("GenerateResponse", mock.Anything, mock.Anything, mock.Anything).
			Return(textResponse(`{"message":"Try Fabrica.","suggestions":["Fabrica Coffee Roasters"]}`), nil)

		reply, err := svc.Converse(context.Background(), "coffee?", u, nil)
		require.NoError(t, err)
		assert.True(t, reply.Structured)
		assert.Equal(t, "Try Fabrica.", reply.Message)
		assert.Equal(t, []string{"Fabrica Coffee Roasters"}, reply.Suggestions)
	})

	t.Run("plain text falls back to bullet extraction", func(t *testing.T) {
		ai := new(MockAIClient)
		svc := newTestRecommendService(ai)

		ai.On("GenerateResponse", mock.Anything, mock.Anything, mock.Anything).
			Return(textResponse("Two good options:\n- Fabrica\n- Hello Kristof\n"), nil)

		reply, err := svc.Converse(context.Background(), "coffee?", u, nil)
		require.NoError(t, err)
		assert.False(t, reply.Structured)
		assert.Equal(t, []string{"Fabrica", "Hello Kristof"}, reply.Suggestions)
	})

	t.Run("outage is an error", func(t *testing.T) {
		ai := new(MockAIClient)
		svc := newTestRecommendService(ai)

		ai.On("GenerateResponse", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, errors.New("connection reset"))

		reply, err := svc.Converse(context.Background(), "coffee?", u, nil)
		assert.Nil(t, reply)
		assert.ErrorIs(t, err, models.ErrUpstreamUnavailable)
	})
}

func TestGenerateItinerarySkeleton(t *testing.T) {
	prefs := models.UserPreferences{Cuisines: []string{"japanese"}}

	t.Run("valid skeleton", func(t *testing.T) {
		ai := new(MockAIClient)
		svc := newTestRecommendService(ai)

		ai.On("GenerateResponse", mock.Anything, mock.Anything, mock.Anything).
			Return(textResponse(`{
				"title": "A Day in Alfama",
				"type": "full_day",
				"places": [
					{"name": "Castelo de S. Jorge", "category": "attraction", "estimated_duration": 90},
					{"name": "Ramiro", "category": "restaurant"}
				]
			}`), nil)

		skeleton, err := svc.GenerateItinerarySkeleton(context.Background(), "one day in Lisbon", prefs, "Lisbon")
		require.NoError(t, err)
		assert.Equal(t, "A Day in Alfama", skeleton.Title)
		require.Len(t, skeleton.Places, 2)
		assert.Equal(t, 90, skeleton.Places[0].EstimatedDuration)
		// missing durations get the default
		assert.Equal(t, models.DefaultVisitDuration, skeleton.Places[1].EstimatedDuration)
	})

	t.Run("unknown type becomes custom", func(t *testing.T) {
		ai := new(MockAIClient)
		svc := newTestRecommendService(ai)

		ai.On("GenerateResponse", mock.Anything, mock.Anything, mock.Anything).
			Return(textResponse(`{"title":"T","type":"space_voyage","places":[{"name":"P","category":"cafe"}]}`), nil)

		skeleton, err := svc.GenerateItinerarySkeleton(context.Background(), "anything", prefs, "Lisbon")
		require.NoError(t, err)
		assert.Equal(t, models.TypeCustom, skeleton.Type)
	})

	t.Run("unparseable reply is fatal", func(t *testing.T) {
		ai := new(MockAIClient)
		svc := newTestRecommendService(ai)

		ai.On("GenerateResponse", mock.Anything, mock.Anything, mock.Anything).
			Return(textResponse("sorry, I cannot plan that"), nil)

		skeleton, err := svc.GenerateItinerarySkeleton(context.Background(), "one day in Lisbon", prefs, "Lisbon")
		assert.Nil(t, skeleton)
		assert.ErrorIs(t, err, models.ErrGenerationFailed)
	})

	t.Run("skeleton without places is fatal", func(t *testing.T) {
		ai := new(MockAIClient)
		svc := newTestRecommendService(ai)

		ai.On("GenerateResponse", mock.Anything, mock.Anything, mock.Anything).
			Return(textResponse(`{"title":"Empty","type":"custom","places":[]}`), nil)

		skeleton, err := svc.GenerateItinerarySkeleton(context.Background(), "one day in Lisbon", prefs, "Lisbon")
		assert.Nil(t, skeleton)
		assert.ErrorIs(t, err, models.ErrGenerationFailed)
	})
}

func TestGenerateRecommendations(t *testing.T) {
	t.Run("parses wrapper", func(t *testing.T) {
		ai := new(MockAIClient)
		svc := newTestRecommendService(ai)

		ai.On("GenerateResponse", mock.Anything, mock.Anything, mock.Anything).
			Return(textResponse(`{"recommendations":[{"place":"Ramiro","category":"restaurant","reasoning":"seafood institution","match_score":0.92}]}`), nil)

		recs, err := svc.GenerateRecommendations(context.Background(), models.UserPreferences{}, "Lisbon", "dinner")
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, "Ramiro", recs[0].Place)
		assert.InDelta(t, 0.92, recs[0].MatchScore, 1e-9)
	})

	t.Run("junk reply is fatal", func(t *testing.T) {
		ai := new(MockAIClient)
		svc := newTestRecommendService(ai)

		ai.On("GenerateResponse", mock.Anything, mock.Anything, mock.Anything).
			Return(textResponse("no recommendations today"), nil)

		recs, err := svc.GenerateRecommendations(context.Background(), models.UserPreferences{}, "Lisbon", "dinner")
		assert.Nil(t, recs)
		assert.ErrorIs(t, err, models.ErrGenerationFailed)
	})
}
