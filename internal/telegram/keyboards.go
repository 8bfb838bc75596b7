package telegram

import "strings"

// Control button labels. Activity buttons live in activityButtons; the
// catalog name of an activity button is its label with the emoji prefix
// stripped.
const (
	btnMorning  = "🌅 Morning"
	btnDay      = "💻 Day"
	btnEvening  = "🌙 Evening"
	btnStats    = "📊 Stats"
	btnTimeline = "📈 Timeline"
	btnBackdate = "✏️ Backdate"
	btnMainMenu = "📋 Main menu"
	btnOther    = "📝 Other"
	btnCancel   = "❌ Cancel"
)

var activityButtons = []string{
	"⏰ Woke up", "📱 Scrolled the feed", "🚽 Bathroom", "🚿 Hygiene",
	"🍳 Breakfast", "👔 Getting dressed", "🏠 Heading home",
	"💻 At the computer", "🎮 Gaming", "📚 Study", "🍽️ Lunch/Dinner",
	"📺 Rest", "🧹 Cleaning",
	"🚿 Evening hygiene", "🛏️ In bed", "📱 Evening surfing", "💤 Sleep",
}

// buttonActivity maps each activity button label to its catalog name.
var buttonActivity = func() map[string]string {
	m := make(map[string]string, len(activityButtons))
	for _, label := range activityButtons {
		name := label
		if i := strings.IndexByte(label, ' '); i >= 0 {
			name = label[i+1:]
		}
		m[label] = name
	}
	return m
}()

func mainMenuKeyboard() *ReplyKeyboardMarkup {
	return &ReplyKeyboardMarkup{
		ResizeKeyboard: true,
		Keyboard: [][]KeyboardButton{
			{{Text: btnMorning}, {Text: btnDay}},
			{{Text: btnEvening}, {Text: btnStats}},
			{{Text: btnTimeline}, {Text: btnBackdate}},
		},
	}
}

func morningKeyboard() *ReplyKeyboardMarkup {
	return &ReplyKeyboardMarkup{
		ResizeKeyboard: true,
		Keyboard: [][]KeyboardButton{
			{{Text: "⏰ Woke up"}, {Text: "📱 Scrolled the feed"}},
			{{Text: "🚽 Bathroom"}, {Text: "🚿 Hygiene"}},
			{{Text: "🍳 Breakfast"}, {Text: "👔 Getting dressed"}},
			{{Text: "🏠 Heading home"}},
			{{Text: btnOther}},
			{{Text: btnMainMenu}},
		},
	}
}

func dayKeyboard() *ReplyKeyboardMarkup {
	return &ReplyKeyboardMarkup{
		ResizeKeyboard: true,
		Keyboard: [][]KeyboardButton{
			{{Text: "💻 At the computer"}, {Text: "🎮 Gaming"}},
			{{Text: "📚 Study"}, {Text: "🍽️ Lunch/Dinner"}},
			{{Text: "📺 Rest"}, {Text: "🧹 Cleaning"}},
			{{Text: btnOther}},
			{{Text: btnMainMenu}},
		},
	}
}

func eveningKeyboard() *ReplyKeyboardMarkup {
	return &ReplyKeyboardMarkup{
		ResizeKeyboard: true,
		Keyboard: [][]KeyboardButton{
			{{Text: "🚿 Evening hygiene"}, {Text: "🛏️ In bed"}},
			{{Text: "📱 Evening surfing"}, {Text: "💤 Sleep"}},
			{{Text: btnOther}},
			{{Text: btnMainMenu}},
		},
	}
}

func cancelKeyboard() *ReplyKeyboardMarkup {
	return &ReplyKeyboardMarkup{
		ResizeKeyboard: true,
		Keyboard:       [][]KeyboardButton{{{Text: btnCancel}}},
	}
}
