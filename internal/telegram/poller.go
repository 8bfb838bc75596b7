package telegram

import (
	"context"
	"fmt"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/daytrace/daytrace/internal/dispatch"
)

// Poller long-polls getUpdates and fans messages out to the dispatcher,
// keyed by chat so each conversation is handled strictly in order.
type Poller struct {
	api     API
	bot     *Bot
	exec    *dispatch.Executor
	log     zerolog.Logger
	timeout time.Duration

	// poll failure backoff, overridable in tests
	backoffInitial time.Duration
	backoffMax     time.Duration
}

// NewPoller wires the update loop. timeout is the getUpdates long-poll
// window; zero falls back to 50 seconds.
func NewPoller(api API, bot *Bot, exec *dispatch.Executor, timeout time.Duration, log zerolog.Logger) *Poller {
	if timeout <= 0 {
		timeout = 50 * time.Second
	}
	return &Poller{
		api:            api,
		bot:            bot,
		exec:           exec,
		log:            log,
		timeout:        timeout,
		backoffInitial: time.Second,
		backoffMax:     30 * time.Second,
	}
}

// Run validates the token, then polls until ctx is cancelled. Poll
// failures back off exponentially and reset on the next success.
func (p *Poller) Run(ctx context.Context) error {
	var me *User
	err := backoff.Retry(func() error {
		var gerr error
		me, gerr = p.api.GetMe(ctx)
		if gerr != nil && dispatch.IsIrrecoverable(gerr) {
			return backoff.Permanent(gerr)
		}
		return gerr
	}, backoff.WithContext(backoff.NewExponentialBackOff(), ctx))
	if err != nil {
		return fmt.Errorf("validate bot token: %w", err)
	}
	p.log.Info().Int64("bot_id", me.ID).Str("username", me.Username).Msg("telegram poller started")

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.backoffInitial
	exp.MaxInterval = p.backoffMax
	exp.MaxElapsedTime = 0 // poll forever
	exp.Reset()

	var offset int64
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		updates, err := p.api.GetUpdates(ctx, offset, p.timeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			wait := exp.NextBackOff()
			p.log.Error().Err(err).Dur("retry_in", wait).Msg("getUpdates failed")
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}
		exp.Reset()

		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			p.dispatchUpdate(u)
		}
	}
}

func (p *Poller) dispatchUpdate(u Update) {
	msg := u.Message
	if msg == nil || msg.From == nil || msg.From.IsBot || msg.Text == "" {
		return
	}

	// Jobs run on a background context so updates already queued still
	// complete while the executor drains after shutdown.
	job := dispatch.JobFunc(func(jctx context.Context) error {
		return p.bot.HandleMessage(jctx, msg)
	})
	if err := p.exec.Submit(context.Background(), msg.Chat.ID, job); err != nil {
		p.log.Error().Err(err).
			Int64("chat_id", msg.Chat.ID).
			Int64("update_id", u.UpdateID).
			Msg("dropping update")
	}
}
