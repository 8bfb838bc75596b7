package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/daytrace/daytrace/internal/dispatch"
)

const defaultBaseURL = "https://api.telegram.org"

// Client talks to the Telegram Bot API over HTTPS. Transient HTTP
// failures are retried at this layer; the errors it returns carry
// dispatch retry categories so callers can tell rejected requests from
// outages.
type Client struct {
	http *resty.Client
	log  zerolog.Logger
}

// NewClient builds a client for the given bot token. baseURL overrides
// the public endpoint for tests; pass "" for the default.
//
// The request timeout must exceed the getUpdates long-poll window, which
// the config caps well below it.
func NewClient(token, baseURL string, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	c := resty.New().
		SetBaseURL(fmt.Sprintf("%s/bot%s", baseURL, token)).
		SetHeader("Content-Type", "application/json").
		SetTimeout(90 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(250 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() >= 500 || r.StatusCode() == http.StatusTooManyRequests
		})
	return &Client{http: c, log: log}
}

// apiResponse is the envelope every Bot API method returns.
type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	Description string          `json:"description,omitempty"`
	ErrorCode   int             `json:"error_code,omitempty"`
}

func (c *Client) call(ctx context.Context, method string, body, out interface{}) error {
	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}
	resp, err := req.Post("/" + method)
	if err != nil {
		// Network-level failures may be transient.
		return &dispatch.ClassifiedError{
			Category:   dispatch.Recoverable,
			Underlying: fmt.Errorf("%s: %w", method, err),
		}
	}

	var envelope apiResponse
	if uerr := json.Unmarshal(resp.Body(), &envelope); uerr != nil {
		return dispatch.ClassifyStatus(resp.StatusCode(), resp.String(),
			fmt.Errorf("%s: decode response: %w", method, uerr))
	}
	if !envelope.OK {
		code := envelope.ErrorCode
		if code == 0 {
			code = resp.StatusCode()
		}
		return dispatch.ClassifyStatus(code, envelope.Description,
			fmt.Errorf("%s: api error: %s", method, envelope.Description))
	}
	if out != nil {
		if uerr := json.Unmarshal(envelope.Result, out); uerr != nil {
			return &dispatch.ClassifiedError{
				Category:   dispatch.Irrecoverable,
				Underlying: fmt.Errorf("%s: decode result: %w", method, uerr),
			}
		}
	}
	return nil
}

// GetMe validates the token and returns the bot's own identity.
func (c *Client) GetMe(ctx context.Context) (*User, error) {
	var u User
	if err := c.call(ctx, "getMe", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

type getUpdatesRequest struct {
	Offset  int64 `json:"offset,omitempty"`
	Timeout int   `json:"timeout,omitempty"`
}

// GetUpdates long-polls for updates with IDs at or above offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error) {
	req := getUpdatesRequest{Offset: offset, Timeout: int(timeout / time.Second)}
	var updates []Update
	if err := c.call(ctx, "getUpdates", &req, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

type sendMessageRequest struct {
	ChatID      int64                `json:"chat_id"`
	Text        string               `json:"text"`
	ReplyMarkup *ReplyKeyboardMarkup `json:"reply_markup,omitempty"`
}

// SendMessage posts text to a chat, optionally attaching a reply keyboard.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, keyboard *ReplyKeyboardMarkup) error {
	req := sendMessageRequest{ChatID: chatID, Text: text, ReplyMarkup: keyboard}
	return c.call(ctx, "sendMessage", &req, nil)
}
