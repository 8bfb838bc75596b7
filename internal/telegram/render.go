package telegram

import (
	"fmt"
	"strings"
	"time"

	"github.com/daytrace/daytrace/internal/model"
	"github.com/daytrace/daytrace/internal/stats"
)

const welcomeText = "🏠 Hi! I track where your time goes.\n\n" +
	"✅ I am online around the clock!\n" +
	"📝 The 'Other' button takes free-text activities!\n" +
	"📊 Every finished activity lands in your stats!\n\n" +
	"Pick a section and start tracking."

const (
	mainMenuText    = "📋 Main menu:"
	morningMenuText = "🌅 Morning activities:"
	dayMenuText     = "💻 Day activities:"
	eveningMenuText = "🌙 Evening activities:"

	customPromptText = "📝 Type your activity:\n\n" +
		"For example: 'Read a book', 'Cooked dinner', 'Went for a run'\n" +
		"Or press '❌ Cancel' to go back"
	customTooLongText = "❌ That name is too long (100 characters max)\nTry again:"
	canceledText      = "❌ Input canceled"

	backdateActivityPromptText = "✏️ Which activity should I backdate?\nType its name, or press '❌ Cancel'"
	backdateUnreadableText     = "❌ I could not read that time. Send something like 7:45 or 07:45:30"
	backdateFutureText         = "❌ That time is in the future. Send a time earlier than now"

	emptyStatsText       = "📊 No activities yet today"
	unknownText          = "🤔 I did not get that. Pick a button:"
	invalidNameText      = "❌ That does not look like a valid activity name"
	transitionFailedText = "⚠️ Could not record that. Try again in a moment"
)

func backdateTimePrompt(activity string) string {
	return fmt.Sprintf("🕐 When did '%s' start?\nSend a time like 7:45 or 07:45:30", activity)
}

func startedText(s model.Session, loc *time.Location) string {
	return fmt.Sprintf("🔄 Started: %s\n🕐 %s", s.Activity, s.StartedAt.In(loc).Format("15:04:05"))
}

func finishedText(rec *model.ActivityRecord) string {
	return fmt.Sprintf("✅ Finished: %s\n⏰ Time: %s", rec.Activity, stats.FormatDurationExact(rec.Duration))
}

// renderStats lays the daily summary out as categories sorted by time, a
// total line, free-text activities when present, and the timeline for
// detailed reports.
func renderStats(rep *model.StatsReport) string {
	if len(rep.Categories) == 0 {
		return emptyStatsText
	}

	var b strings.Builder
	b.WriteString("📊 Stats for today:\n\n")
	for _, ct := range rep.Categories {
		fmt.Fprintf(&b, "• %s: %s\n", ct.Category, stats.FormatDuration(ct.Total))
	}
	fmt.Fprintf(&b, "\n🕐 Total: %s", stats.FormatDuration(rep.Total))

	if len(rep.Custom) > 0 {
		b.WriteString("\n\n📝 Your activities:\n")
		for _, cu := range rep.Custom {
			fmt.Fprintf(&b, "• %s: %s\n", cu.Name, stats.FormatDuration(cu.Total))
		}
	}

	if len(rep.Timeline) > 0 {
		b.WriteString("\n\n📈 Timeline:\n")
		for _, row := range rep.Timeline {
			fmt.Fprintf(&b, "• %s-%s %s (%s)\n", row.Start, row.End, row.Activity, stats.FormatDuration(row.Duration))
		}
	}

	return strings.TrimRight(b.String(), "\n")
}
