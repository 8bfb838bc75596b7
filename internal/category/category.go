// Package category classifies activity names into a fixed set of
// category labels used for daily rollups.
package category

import "strings"

// Category labels produced by Classify.
const (
	Sleep         = "Sleep"
	Entertainment = "Entertainment"
	Hygiene       = "Hygiene"
	Food          = "Food"
	Preparation   = "Preparation"
	Transit       = "Transit"
	Computer      = "Computer"
	Gaming        = "Gaming"
	Study         = "Study"
	Chores        = "Chores"
	Rest          = "Rest"
	Other         = "Other"
)

// CustomPrefix marks activities entered as free text rather than picked
// from the catalog. Names carrying it always classify as Other.
const CustomPrefix = "Other: "

// ActivitySleep is the reserved activity opened when a user reports going
// to sleep. The engine starts it on the sleep transition and on shutdown
// summaries; its open interval is closed by the next morning's activity.
const ActivitySleep = "Sleep"

// catalog is the fixed table of known activity names. Lookup is exact and
// case-sensitive; anything outside the table is Other.
var catalog = map[string]string{
	// morning
	"Woke up":           Sleep,
	"Scrolled the feed": Entertainment,
	"Bathroom":          Hygiene,
	"Hygiene":           Hygiene,
	"Breakfast":         Food,
	"Getting dressed":   Preparation,
	"Heading home":      Transit,

	// daytime
	"At the computer": Computer,
	"Gaming":          Gaming,
	"Study":           Study,
	"Lunch/Dinner":    Food,
	"Rest":            Entertainment,
	"Cleaning":        Chores,

	// evening
	"Evening hygiene": Hygiene,
	"In bed":          Rest,
	"Evening surfing": Entertainment,
	"Sleep":           Sleep,
}

// Classify maps an activity name to its category label. Names carrying
// CustomPrefix and names outside the catalog map to Other.
func Classify(activity string) string {
	if strings.HasPrefix(activity, CustomPrefix) {
		return Other
	}
	if c, ok := catalog[activity]; ok {
		return c
	}
	return Other
}

// Known reports whether activity is part of the fixed catalog.
func Known(activity string) bool {
	_, ok := catalog[activity]
	return ok
}

// IsCustom reports whether activity was entered as free text.
func IsCustom(activity string) bool {
	return strings.HasPrefix(activity, CustomPrefix)
}

// CustomName returns the user-entered portion of a custom activity name.
func CustomName(activity string) string {
	return strings.TrimPrefix(activity, CustomPrefix)
}

// MakeCustom normalizes user-entered text into a custom activity name.
func MakeCustom(text string) string {
	return CustomPrefix + strings.TrimSpace(text)
}
