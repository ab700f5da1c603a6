package recommend

import (
	"fmt"
	"strings"

	"github.com/FACorreiaa/roamly/internal/app/models"
)

// System prompts carry the static behavioral rules and output schema; the
// per-call user prompts carry only the variable payload. Keeping the two
// apart lets tests assert on the schema the system prompt demands without
// coupling to request wording.

func intentSystemPrompt() string {
	return `You are an intent classifier for a travel assistant.
Classify the user's message and respond STRICTLY as a JSON object with:
{
"intent": "one of: search, recommend, itinerary, smalltalk",
"entities": { "free-form string keys": "string values extracted from the message" },
"context": { "free-form string keys": "string values" }
}
Respond with JSON only, no prose.`
}

func conversationSystemPrompt() string {
	return `You are a friendly, concise travel and lifestyle assistant.
Prefer places from the candidate list when they fit the request.
Respond STRICTLY as a JSON object with:
{
"message": "your conversational reply",
"suggestions": ["short place or activity suggestions, max 5"]
}
Respond with JSON only, no prose.`
}

func skeletonSystemPrompt() string {
	return `You are an itinerary planner.
Respond STRICTLY as a JSON object with:
{
"title": "a creative itinerary title, max 100 characters",
"description": "1-2 sentences, max 500 characters",
"type": "one of: morning, afternoon, evening, night, full-day, custom",
"mood": "one of: relaxed, energetic, romantic, adventurous, social, productive, cultural",
"purpose": "one of: work, relax, explore, dine, nightlife, culture, shopping, outdoor",
"places": [
  {
  "name": "Name of the place to visit",
  "category": "Primary category (e.g., Museum, Park, Restaurant, Bar)",
  "description": "why this place fits, 1-2 sentences",
  "estimated_duration": <minutes as integer>,
  "notes": "optional practical tip"
  }
],
"total_duration": <sum of estimated durations, minutes>,
"estimated_cost": "rough budget as a short string",
"tags": ["a few", "short", "tags"]
}
Respond with JSON only, no prose.`
}

func recommendationsSystemPrompt() string {
	return `You are a local recommendations engine.
Respond STRICTLY as a JSON object with:
{
"recommendations": [
  {
  "place": "place name",
  "category": "primary category",
  "reasoning": "one sentence on why it matches",
  "match_score": <0.0 to 1.0>
  }
]
}
Respond with JSON only, no prose.`
}

func conversationUserPrompt(message string, user *models.User, candidates []models.Place) string {
	var b strings.Builder

	if user != nil {
		fmt.Fprintf(&b, "User preferences: cuisines [%s], atmospheres [%s], price range %q.\n",
			strings.Join(user.Preferences.Cuisines, ", "),
			strings.Join(user.Preferences.Atmospheres, ", "),
			user.Preferences.PriceRange)
		if user.City != "" {
			fmt.Fprintf(&b, "User is in %s.\n", user.City)
		}
	}

	if len(candidates) > 0 {
		b.WriteString("Candidate places nearby:\n")
		for i, p := range candidates {
			if i >= maxCandidatePlaces {
				break
			}
			fmt.Fprintf(&b, "- %s (%s)\n", p.Name, p.Category)
		}
	}

	fmt.Fprintf(&b, "\nUser message: %s", message)
	return b.String()
}

func skeletonUserPrompt(freeTextPrompt string, prefs models.UserPreferences, locationHint string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Plan an itinerary near %s.\n", locationHint)
	if len(prefs.Cuisines) > 0 || len(prefs.Interests) > 0 {
		fmt.Fprintf(&b, "The user likes: %s.\n",
			strings.Join(append(append([]string{}, prefs.Cuisines...), prefs.Interests...), ", "))
	}
	if prefs.PriceRange != "" {
		fmt.Fprintf(&b, "Preferred price range: %s.\n", prefs.PriceRange)
	}
	fmt.Fprintf(&b, "\nRequest: %s", freeTextPrompt)
	return b.String()
}

func recommendationsUserPrompt(prefs models.UserPreferences, locationHint, context string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Recommend places near %s.\n", locationHint)
	if len(prefs.Cuisines) > 0 {
		fmt.Fprintf(&b, "Cuisines the user enjoys: %s.\n", strings.Join(prefs.Cuisines, ", "))
	}
	if len(prefs.Atmospheres) > 0 {
		fmt.Fprintf(&b, "Preferred atmosphere: %s.\n", strings.Join(prefs.Atmospheres, ", "))
	}
	if prefs.PriceRange != "" {
		fmt.Fprintf(&b, "Price range: %s.\n", prefs.PriceRange)
	}
	if context != "" {
		fmt.Fprintf(&b, "Additional context: %s.\n", context)
	}
	return b.String()
}
