package telegram

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/daytrace/daytrace/internal/category"
	"github.com/daytrace/daytrace/internal/dispatch"
	"github.com/daytrace/daytrace/internal/model"
	"github.com/daytrace/daytrace/internal/timeparse"
	"github.com/daytrace/daytrace/internal/tracker"
)

// dialogState tracks what the next free-text message from a chat means.
type dialogState int

const (
	stateIdle dialogState = iota
	stateAwaitingCustomText
	stateAwaitingBackdateActivity
	stateAwaitingBackdateTime
)

// dialog is the per-chat conversation state. The dispatcher serializes
// updates per chat, so each dialog has a single writer; only the map
// holding them needs the bot's mutex.
type dialog struct {
	state            dialogState
	backdateActivity string
}

func (d *dialog) reset() {
	d.state = stateIdle
	d.backdateActivity = ""
}

// Bot interprets chat messages, drives the session engine through its
// action entry point, and renders replies.
type Bot struct {
	api    API
	engine *tracker.Engine
	loc    *time.Location
	log    zerolog.Logger

	mu      sync.Mutex
	dialogs map[int64]*dialog
}

// NewBot wires the transport. loc is the timezone clock times are
// rendered in; nil falls back to UTC.
func NewBot(api API, engine *tracker.Engine, loc *time.Location, log zerolog.Logger) *Bot {
	if loc == nil {
		loc = time.UTC
	}
	return &Bot{
		api:     api,
		engine:  engine,
		loc:     loc,
		log:     log,
		dialogs: make(map[int64]*dialog),
	}
}

func (b *Bot) dialogFor(chatID int64) *dialog {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.dialogs[chatID]
	if !ok {
		d = &dialog{}
		b.dialogs[chatID] = d
	}
	return d
}

// HandleMessage consumes one user message. The dispatcher guarantees
// messages for the same chat arrive here one at a time and in order.
//
// Errors it returns are marked irrecoverable: a transition either
// committed or failed as a unit, and re-running the whole handler could
// apply it twice.
func (b *Bot) HandleMessage(ctx context.Context, msg *Message) error {
	err := b.handle(ctx, msg)
	if err == nil || dispatch.IsIrrecoverable(err) {
		return err
	}
	return &dispatch.ClassifiedError{Category: dispatch.Irrecoverable, Underlying: err}
}

func (b *Bot) handle(ctx context.Context, msg *Message) error {
	if msg == nil || msg.From == nil || strings.TrimSpace(msg.Text) == "" {
		return nil
	}

	chatID := msg.Chat.ID
	userID := msg.From.ID
	text := strings.TrimSpace(msg.Text)
	d := b.dialogFor(chatID)

	b.log.Debug().Int64("chat_id", chatID).Int64("user_id", userID).Str("text", text).Msg("update received")

	// Recognized buttons always act as buttons, even mid-dialog; only
	// unrecognized text feeds the pending dialog state.
	switch text {
	case "/start":
		d.reset()
		return b.send(ctx, chatID, welcomeText, mainMenuKeyboard())
	case btnMainMenu:
		d.reset()
		return b.send(ctx, chatID, mainMenuText, mainMenuKeyboard())
	case btnMorning:
		d.reset()
		return b.send(ctx, chatID, morningMenuText, morningKeyboard())
	case btnDay:
		d.reset()
		return b.send(ctx, chatID, dayMenuText, dayKeyboard())
	case btnEvening:
		d.reset()
		return b.send(ctx, chatID, eveningMenuText, eveningKeyboard())
	case btnCancel:
		return b.handleCancel(ctx, chatID, userID, d)
	case btnOther:
		return b.handleOtherButton(ctx, chatID, d)
	case btnBackdate:
		return b.handleBackdateButton(ctx, chatID, userID, d)
	case btnStats:
		return b.handleStats(ctx, chatID, userID, false)
	case btnTimeline:
		return b.handleStats(ctx, chatID, userID, true)
	}

	if name, ok := buttonActivity[text]; ok {
		d.reset()
		if name == category.ActivitySleep {
			return b.handleSleep(ctx, chatID, userID)
		}
		return b.startKnown(ctx, chatID, userID, name, nil)
	}

	switch d.state {
	case stateAwaitingCustomText:
		return b.handleCustomText(ctx, chatID, userID, d, text)
	case stateAwaitingBackdateActivity:
		d.backdateActivity = text
		d.state = stateAwaitingBackdateTime
		return b.send(ctx, chatID, backdateTimePrompt(text), cancelKeyboard())
	case stateAwaitingBackdateTime:
		return b.handleBackdateTime(ctx, chatID, userID, d, text)
	}

	return b.send(ctx, chatID, unknownText, mainMenuKeyboard())
}

func (b *Bot) handleCancel(ctx context.Context, chatID, userID int64, d *dialog) error {
	if _, err := b.engine.Apply(ctx, userID, tracker.Cancel{}); err != nil {
		return b.replyEngineError(ctx, chatID, err)
	}
	d.reset()
	return b.send(ctx, chatID, canceledText, mainMenuKeyboard())
}

func (b *Bot) handleOtherButton(ctx context.Context, chatID int64, d *dialog) error {
	d.reset()
	d.state = stateAwaitingCustomText
	return b.send(ctx, chatID, customPromptText, cancelKeyboard())
}

func (b *Bot) handleBackdateButton(ctx context.Context, chatID, userID int64, d *dialog) error {
	if _, err := b.engine.Apply(ctx, userID, tracker.RequestBackdate{}); err != nil {
		return b.replyEngineError(ctx, chatID, err)
	}
	d.reset()
	d.state = stateAwaitingBackdateActivity
	return b.send(ctx, chatID, backdateActivityPromptText, cancelKeyboard())
}

func (b *Bot) handleStats(ctx context.Context, chatID, userID int64, detailed bool) error {
	out, err := b.engine.Apply(ctx, userID, tracker.ShowStats{Detailed: detailed})
	if err != nil {
		return b.replyEngineError(ctx, chatID, err)
	}
	return b.send(ctx, chatID, renderStats(out.Stats), nil)
}

func (b *Bot) handleSleep(ctx context.Context, chatID, userID int64) error {
	out, err := b.engine.Apply(ctx, userID, tracker.Sleep{})
	if err != nil {
		return b.replyEngineError(ctx, chatID, err)
	}
	if err := b.sendTransition(ctx, chatID, out.Transition); err != nil {
		return err
	}
	return b.send(ctx, chatID, renderStats(out.Stats), nil)
}

func (b *Bot) handleCustomText(ctx context.Context, chatID, userID int64, d *dialog, text string) error {
	out, err := b.engine.Apply(ctx, userID, tracker.StartCustomActivity{Text: text})
	if errors.Is(err, model.ErrValidation) {
		// Keep the dialog open so the user can try again.
		return b.send(ctx, chatID, customTooLongText, cancelKeyboard())
	}
	if err != nil {
		return b.replyEngineError(ctx, chatID, err)
	}
	d.reset()
	return b.sendTransition(ctx, chatID, out.Transition)
}

func (b *Bot) handleBackdateTime(ctx context.Context, chatID, userID int64, d *dialog, text string) error {
	at, err := timeparse.ParseAt(text, b.engine.Now())
	if err != nil {
		// Re-prompt and keep waiting; the pending activity name survives.
		if errors.Is(err, timeparse.ErrFuture) {
			return b.send(ctx, chatID, backdateFutureText, cancelKeyboard())
		}
		return b.send(ctx, chatID, backdateUnreadableText, cancelKeyboard())
	}

	name := d.backdateActivity
	d.reset()
	if category.Known(name) {
		return b.startKnown(ctx, chatID, userID, name, &at)
	}
	return b.startCustom(ctx, chatID, userID, name, &at)
}

func (b *Bot) startKnown(ctx context.Context, chatID, userID int64, name string, at *time.Time) error {
	out, err := b.engine.Apply(ctx, userID, tracker.StartKnownActivity{Name: name, At: at})
	if err != nil {
		return b.replyEngineError(ctx, chatID, err)
	}
	return b.sendTransition(ctx, chatID, out.Transition)
}

func (b *Bot) startCustom(ctx context.Context, chatID, userID int64, text string, at *time.Time) error {
	out, err := b.engine.Apply(ctx, userID, tracker.StartCustomActivity{Text: text, At: at})
	if err != nil {
		return b.replyEngineError(ctx, chatID, err)
	}
	return b.sendTransition(ctx, chatID, out.Transition)
}

// sendTransition mirrors the two-message shape of an activity switch: a
// completion note for the closed interval, then the started confirmation
// restoring the main menu.
func (b *Bot) sendTransition(ctx context.Context, chatID int64, tr *tracker.Transition) error {
	if tr.Closed != nil {
		if err := b.send(ctx, chatID, finishedText(tr.Closed), nil); err != nil {
			return err
		}
	}
	return b.send(ctx, chatID, startedText(tr.Opened, b.loc), mainMenuKeyboard())
}

// replyEngineError tells the user what happened. Validation problems are
// user errors and are swallowed after the reply; anything else counts as
// a failed transition and propagates.
func (b *Bot) replyEngineError(ctx context.Context, chatID int64, err error) error {
	if errors.Is(err, model.ErrValidation) {
		_ = b.send(ctx, chatID, invalidNameText, mainMenuKeyboard())
		return nil
	}
	b.log.Error().Err(err).Int64("chat_id", chatID).Msg("transition failed")
	_ = b.send(ctx, chatID, transitionFailedText, nil)
	return err
}

func (b *Bot) send(ctx context.Context, chatID int64, text string, keyboard *ReplyKeyboardMarkup) error {
	if err := b.api.SendMessage(ctx, chatID, text, keyboard); err != nil {
		b.log.Error().Err(err).Int64("chat_id", chatID).Msg("send message failed")
		return err
	}
	return nil
}
