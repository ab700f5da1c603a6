package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/FACorreiaa/roamly/internal/app/models"
)

func TestAnalyzerAnalyze(t *testing.T) {
	a := NewAnalyzer()

	tests := []struct {
		name        string
		text        string
		cuisines    []string
		atmospheres []string
		priceRange  string
	}{
		{
			name:     "single cuisine",
			text:     "I'm craving sushi tonight",
			cuisines: []string{"japanese"},
		},
		{
			name:     "synonyms collapse to one canonical value",
			text:     "Pizza or pasta, anything Italian really",
			cuisines: []string{"italian"},
		},
		{
			name:        "mixed signals",
			text:        "a cozy spot with cheap tacos",
			cuisines:    []string{"mexican"},
			atmospheres: []string{"cozy"},
			priceRange:  "budget",
		},
		{
			name:       "later price word wins",
			text:       "nothing cheap, I want something fancy",
			priceRange: "upscale",
		},
		{
			name:        "case insensitive",
			text:        "ROMANTIC ROOFTOP dinner",
			atmospheres: []string{"romantic", "rooftop"},
		},
		{
			name: "partial words do not match",
			text: "the sushiya district has italianate architecture",
		},
		{
			name: "no signals",
			text: "what time does the museum open?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delta := a.Analyze(tt.text)
			assert.Equal(t, tt.cuisines, delta.Cuisines)
			assert.Equal(t, tt.atmospheres, delta.Atmospheres)
			assert.Equal(t, tt.priceRange, delta.PriceRange)
		})
	}
}

func TestPreferenceDeltaIsEmpty(t *testing.T) {
	assert.True(t, PreferenceDelta{}.IsEmpty())
	assert.False(t, PreferenceDelta{Cuisines: []string{"thai"}}.IsEmpty())
	assert.False(t, PreferenceDelta{Atmospheres: []string{"quiet"}}.IsEmpty())
	assert.False(t, PreferenceDelta{PriceRange: "moderate"}.IsEmpty())
}

func TestAnalyzerApply(t *testing.T) {
	a := NewAnalyzer()

	prefs := models.UserPreferences{
		Cuisines:   []string{"italian"},
		PriceRange: "moderate",
	}

	a.Apply(&prefs, PreferenceDelta{
		Cuisines:    []string{"italian", "thai"},
		Atmospheres: []string{"outdoor"},
	})

	assert.Equal(t, []string{"italian", "thai"}, prefs.Cuisines)
	assert.Equal(t, []string{"outdoor"}, prefs.Atmospheres)
	// no price signal in the delta keeps the stored range
	assert.Equal(t, "moderate", prefs.PriceRange)

	a.Apply(&prefs, PreferenceDelta{PriceRange: "budget"})
	assert.Equal(t, "budget", prefs.PriceRange)
}

func TestAnalyzerApplyIsIdempotent(t *testing.T) {
	a := NewAnalyzer()
	delta := a.Analyze("cozy ramen place")

	var prefs models.UserPreferences
	a.Apply(&prefs, delta)
	a.Apply(&prefs, delta)

	assert.Equal(t, []string{"japanese"}, prefs.Cuisines)
	assert.Equal(t, []string{"cozy"}, prefs.Atmospheres)
}

func TestAnalyzerDisplayName(t *testing.T) {
	a := NewAnalyzer()
	assert.Equal(t, "Japanese", a.DisplayName("japanese"))
	assert.Equal(t, "Family-Friendly", a.DisplayName("family-friendly"))
}
