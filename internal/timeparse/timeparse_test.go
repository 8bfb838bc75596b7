package timeparse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseAtAcceptedLayouts(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	ref := time.Date(2025, 5, 20, 18, 30, 0, 0, loc)

	cases := []struct {
		in   string
		want time.Time
	}{
		{"13:45", time.Date(2025, 5, 20, 13, 45, 0, 0, loc)},
		{"13:45:30", time.Date(2025, 5, 20, 13, 45, 30, 0, loc)},
		{"13.45", time.Date(2025, 5, 20, 13, 45, 0, 0, loc)},
		{"13.45.30", time.Date(2025, 5, 20, 13, 45, 30, 0, loc)},
		{"7:05", time.Date(2025, 5, 20, 7, 5, 0, 0, loc)},
		{"  9.15  ", time.Date(2025, 5, 20, 9, 15, 0, 0, loc)},
		{"00:00", time.Date(2025, 5, 20, 0, 0, 0, 0, loc)},
	}
	for _, tc := range cases {
		got, err := ParseAt(tc.in, ref)
		require.NoError(t, err, "input %q", tc.in)
		require.True(t, tc.want.Equal(got), "input %q: want %v got %v", tc.in, tc.want, got)
		require.Equal(t, loc, got.Location())
	}
}

func TestParseAtRejectsGarbage(t *testing.T) {
	ref := time.Date(2025, 5, 20, 18, 30, 0, 0, time.UTC)

	for _, in := range []string{"", "tomorrow", "25:99", "13:60", "12-30", "13:45 pm", "1345"} {
		_, err := ParseAt(in, ref)
		require.ErrorIs(t, err, ErrUnrecognized, "input %q", in)
	}
}

func TestParseAtRejectsFutureTimes(t *testing.T) {
	ref := time.Date(2025, 5, 20, 18, 30, 0, 0, time.UTC)

	_, err := ParseAt("18:31", ref)
	require.ErrorIs(t, err, ErrFuture)

	_, err = ParseAt("23:59", ref)
	require.ErrorIs(t, err, ErrFuture)

	// The reference instant itself is not in the future.
	got, err := ParseAt("18:30", ref)
	require.NoError(t, err)
	require.True(t, got.Equal(ref))
}
