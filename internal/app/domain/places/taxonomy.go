package places

import "strings"

// categoryTaxonomy maps human category labels to provider taxonomy ids.
// The table is intentionally static; unknown labels are a caller error
// (models.ErrUnknownCategory), not a remote lookup.
var categoryTaxonomy = map[string]string{
	"coffee":        "4bf58dd8d48988d1e0931735",
	"cafe":          "4bf58dd8d48988d16d941735",
	"restaurant":    "4d4b7105d754a06374d81259",
	"bar":           "4bf58dd8d48988d116941735",
	"nightlife":     "4d4b7105d754a06376d81259",
	"museum":        "4bf58dd8d48988d181941735",
	"art":           "4bf58dd8d48988d1e2931735",
	"park":          "4bf58dd8d48988d163941735",
	"outdoors":      "4d4b7105d754a06377d81259",
	"shopping":      "4d4b7104d754a06370d81259",
	"hotel":         "4bf58dd8d48988d1fa931735",
	"gym":           "4bf58dd8d48988d175941735",
	"bakery":        "4bf58dd8d48988d16a941735",
	"brewery":       "50327c8591d4c4b30a586d5d",
	"theater":       "4bf58dd8d48988d137941735",
	"entertainment": "4d4b7104d754a06370d81259",
	"landmark":      "4bf58dd8d48988d12d941735",
	"beach":         "4bf58dd8d48988d1e2941735",
	"market":        "4bf58dd8d48988d1fa941735",
	"music":         "4bf58dd8d48988d1e5931735",
}

// lookupCategory resolves a human label to a provider taxonomy id.
func lookupCategory(label string) (string, bool) {
	id, ok := categoryTaxonomy[strings.ToLower(strings.TrimSpace(label))]
	return id, ok
}
