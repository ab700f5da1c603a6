package models

// Intent is the advisory classification of a chat message. Extraction
// failures degrade to the default search intent and never block a reply.
type Intent struct {
	Intent   string            `json:"intent"`
	Entities map[string]string `json:"entities"`
	Context  map[string]string `json:"context"`
}

// DefaultIntent is returned when the model's reply cannot be parsed.
func DefaultIntent() Intent {
	return Intent{
		Intent:   "search",
		Entities: map[string]string{},
		Context:  map[string]string{},
	}
}

// SkeletonPlace is an AI-authored place stub, not yet resolved against the
// places provider.
type SkeletonPlace struct {
	Name              string `json:"name"`
	Category          string `json:"category"`
	Description       string `json:"description,omitempty"`
	EstimatedDuration int    `json:"estimated_duration"`
	Notes             string `json:"notes,omitempty"`
}

// ItinerarySkeleton is the structured itinerary the LLM proposes before the
// orchestrator resolves its stubs to real places.
type ItinerarySkeleton struct {
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	Type          ItineraryType    `json:"type"`
	Mood          ItineraryMood    `json:"mood"`
	Purpose       ItineraryPurpose `json:"purpose"`
	Places        []SkeletonPlace  `json:"places"`
	TotalDuration int              `json:"total_duration"`
	EstimatedCost string           `json:"estimated_cost,omitempty"`
	Tags          []string         `json:"tags,omitempty"`
}

// Recommendation is a single LLM-suggested place name with reasoning.
type Recommendation struct {
	Place      string  `json:"place"`
	Category   string  `json:"category"`
	Reasoning  string  `json:"reasoning"`
	MatchScore float64 `json:"match_score"`
}

// ChatReply is the assistant's answer to a conversational turn. When the
// model does not return strict JSON the message carries the raw text and
// Suggestions holds whatever bullet lines could be pulled out of it.
type ChatReply struct {
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions,omitempty"`
	Structured  bool     `json:"structured"`
}
