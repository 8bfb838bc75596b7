package model

import "time"

// Session is the single open activity a user may have at any moment.
// Absence of a session is a valid state and is represented by a nil
// pointer, not an error.
type Session struct {
	UserID    int64     `json:"userId"`
	Activity  string    `json:"activity"`
	StartedAt time.Time `json:"startedAt"`
}

// ActivityRecord is one closed interval in the daily ledger. Records are
// immutable once appended. Duration is fixed at close time and may be
// negative when the opening timestamp was backdated past the previous
// record's start.
type ActivityRecord struct {
	RecordID  string        `json:"recordId"`
	UserID    int64         `json:"userId"`
	Activity  string        `json:"activity"`
	Category  string        `json:"category"`
	StartedAt time.Time     `json:"startedAt"`
	EndedAt   time.Time     `json:"endedAt"`
	Duration  time.Duration `json:"duration"`
}

// CategoryTotal is the summed duration of one category within a day.
type CategoryTotal struct {
	Category string        `json:"category"`
	Total    time.Duration `json:"total"`
}

// CustomTotal is the summed duration of one free-text activity within a
// day, keyed by the name with the custom prefix stripped.
type CustomTotal struct {
	Name  string        `json:"name"`
	Total time.Duration `json:"total"`
}

// TimelineRow is one closed interval rendered for the detailed report.
// Start and End are preformatted clock times in the report's location.
type TimelineRow struct {
	Activity string        `json:"activity"`
	Category string        `json:"category"`
	Start    string        `json:"start"`
	End      string        `json:"end"`
	Duration time.Duration `json:"duration"`
}

// StatsReport aggregates one user's closed intervals for one day.
// Categories and Custom are sorted by total descending; ties keep the
// order the rows were first encountered in the ledger.
type StatsReport struct {
	UserID     int64           `json:"userId"`
	Date       string          `json:"date"`
	Categories []CategoryTotal `json:"categories"`
	Custom     []CustomTotal   `json:"custom,omitempty"`
	Total      time.Duration   `json:"total"`
	Timeline   []TimelineRow   `json:"timeline,omitempty"`
}
