package recommend

import (
	"strings"

	ahocorasick "github.com/petar-dambovaliev/aho-corasick"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/FACorreiaa/roamly/internal/app/models"
)

// PreferenceDelta is what one pass of the analyzer extracts from a message.
type PreferenceDelta struct {
	Cuisines    []string
	Atmospheres []string
	PriceRange  string
}

// IsEmpty reports whether the message yielded no signals.
func (d PreferenceDelta) IsEmpty() bool {
	return len(d.Cuisines) == 0 && len(d.Atmospheres) == 0 && d.PriceRange == ""
}

type signalKind int

const (
	signalCuisine signalKind = iota
	signalAtmosphere
	signalPrice
)

type signal struct {
	kind      signalKind
	canonical string
}

// The word tables are data, not logic: each keyword maps to a canonical
// preference value. Extend by adding rows.
var signalTable = []struct {
	keyword string
	signal  signal
}{
	{"italian", signal{signalCuisine, "italian"}},
	{"pasta", signal{signalCuisine, "italian"}},
	{"pizza", signal{signalCuisine, "italian"}},
	{"sushi", signal{signalCuisine, "japanese"}},
	{"ramen", signal{signalCuisine, "japanese"}},
	{"japanese", signal{signalCuisine, "japanese"}},
	{"mexican", signal{signalCuisine, "mexican"}},
	{"tacos", signal{signalCuisine, "mexican"}},
	{"thai", signal{signalCuisine, "thai"}},
	{"indian", signal{signalCuisine, "indian"}},
	{"curry", signal{signalCuisine, "indian"}},
	{"chinese", signal{signalCuisine, "chinese"}},
	{"korean", signal{signalCuisine, "korean"}},
	{"vegan", signal{signalCuisine, "vegan"}},
	{"vegetarian", signal{signalCuisine, "vegan"}},
	{"seafood", signal{signalCuisine, "seafood"}},
	{"steak", signal{signalCuisine, "steakhouse"}},
	{"bbq", signal{signalCuisine, "barbecue"}},
	{"barbecue", signal{signalCuisine, "barbecue"}},

	{"cozy", signal{signalAtmosphere, "cozy"}},
	{"quiet", signal{signalAtmosphere, "quiet"}},
	{"calm", signal{signalAtmosphere, "quiet"}},
	{"lively", signal{signalAtmosphere, "lively"}},
	{"buzzing", signal{signalAtmosphere, "lively"}},
	{"romantic", signal{signalAtmosphere, "romantic"}},
	{"rooftop", signal{signalAtmosphere, "rooftop"}},
	{"outdoor", signal{signalAtmosphere, "outdoor"}},
	{"outside", signal{signalAtmosphere, "outdoor"}},
	{"terrace", signal{signalAtmosphere, "outdoor"}},
	{"family", signal{signalAtmosphere, "family-friendly"}},

	{"cheap", signal{signalPrice, "budget"}},
	{"budget", signal{signalPrice, "budget"}},
	{"affordable", signal{signalPrice, "budget"}},
	{"moderate", signal{signalPrice, "moderate"}},
	{"fancy", signal{signalPrice, "upscale"}},
	{"upscale", signal{signalPrice, "upscale"}},
	{"expensive", signal{signalPrice, "upscale"}},
	{"luxury", signal{signalPrice, "upscale"}},
}

// Analyzer scans conversation text for preference keywords. It is a pure
// text-to-delta function; applying the delta to a stored profile is the
// caller's call.
type Analyzer struct {
	matcher ahocorasick.AhoCorasick
	signals []signal
	titler  cases.Caser
}

func NewAnalyzer() *Analyzer {
	patterns := make([]string, len(signalTable))
	signals := make([]signal, len(signalTable))
	for i, row := range signalTable {
		patterns[i] = row.keyword
		signals[i] = row.signal
	}

	builder := ahocorasick.NewAhoCorasickBuilder(ahocorasick.Opts{
		AsciiCaseInsensitive: true,
		MatchOnlyWholeWords:  true,
		MatchKind:            ahocorasick.LeftMostLongestMatch,
	})

	return &Analyzer{
		matcher: builder.Build(patterns),
		signals: signals,
		titler:  cases.Title(language.English),
	}
}

// Analyze extracts a preferences delta from free conversation text.
func (a *Analyzer) Analyze(text string) PreferenceDelta {
	var delta PreferenceDelta
	seen := map[string]bool{}

	for _, match := range a.matcher.FindAll(strings.ToLower(text)) {
		sig := a.signals[match.Pattern()]
		key := string(rune('0'+int(sig.kind))) + sig.canonical
		if seen[key] {
			continue
		}
		seen[key] = true

		switch sig.kind {
		case signalCuisine:
			delta.Cuisines = append(delta.Cuisines, sig.canonical)
		case signalAtmosphere:
			delta.Atmospheres = append(delta.Atmospheres, sig.canonical)
		case signalPrice:
			// last price word in the table order wins within one message
			delta.PriceRange = sig.canonical
		}
	}

	return delta
}

// Apply merges a delta into stored preferences, deduplicating.
func (a *Analyzer) Apply(prefs *models.UserPreferences, delta PreferenceDelta) {
	prefs.Cuisines = mergeUnique(prefs.Cuisines, delta.Cuisines)
	prefs.Atmospheres = mergeUnique(prefs.Atmospheres, delta.Atmospheres)
	if delta.PriceRange != "" {
		prefs.PriceRange = delta.PriceRange
	}
}

// DisplayName renders a canonical preference value for UI copy.
func (a *Analyzer) DisplayName(canonical string) string {
	return a.titler.String(canonical)
}

func mergeUnique(existing, incoming []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, v := range existing {
		seen[v] = true
	}
	for _, v := range incoming {
		if !seen[v] {
			existing = append(existing, v)
			seen[v] = true
		}
	}
	return existing
}
