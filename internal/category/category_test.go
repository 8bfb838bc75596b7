package category

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifyKnownActivities(t *testing.T) {
	cases := map[string]string{
		"Woke up":           Sleep,
		"Scrolled the feed": Entertainment,
		"Bathroom":          Hygiene,
		"Hygiene":           Hygiene,
		"Breakfast":         Food,
		"Getting dressed":   Preparation,
		"Heading home":      Transit,
		"At the computer":   Computer,
		"Gaming":            Gaming,
		"Study":             Study,
		"Lunch/Dinner":      Food,
		"Rest":              Entertainment,
		"Cleaning":          Chores,
		"Evening hygiene":   Hygiene,
		"In bed":            Rest,
		"Evening surfing":   Entertainment,
		"Sleep":             Sleep,
	}
	for activity, want := range cases {
		require.Equal(t, want, Classify(activity), "activity %q", activity)
		require.True(t, Known(activity), "activity %q", activity)
	}
}

func TestClassifyUnknownFallsBackToOther(t *testing.T) {
	require.Equal(t, Other, Classify("Juggling"))
	require.Equal(t, Other, Classify(""))
	require.False(t, Known("Juggling"))
}

func TestClassifyIsCaseSensitive(t *testing.T) {
	require.Equal(t, Other, Classify("woke up"))
	require.Equal(t, Other, Classify("SLEEP"))
}

func TestCustomPrefixAlwaysOther(t *testing.T) {
	// Even a catalog name behind the prefix counts as free text.
	require.Equal(t, Other, Classify(CustomPrefix+"Breakfast"))
	require.Equal(t, Other, Classify(MakeCustom("Read a book")))
}

func TestMakeCustomTrimsText(t *testing.T) {
	name := MakeCustom("  Read a book \n")
	require.Equal(t, "Other: Read a book", name)
	require.True(t, IsCustom(name))
	require.Equal(t, "Read a book", CustomName(name))
}

func TestSleepActivityClassifiesAsSleep(t *testing.T) {
	require.Equal(t, Sleep, Classify(ActivitySleep))
}
