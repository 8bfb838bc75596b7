package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/daytrace/daytrace/internal/dispatch"
)

func TestClientSendMessage(t *testing.T) {
	var got sendMessageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/bottest-token/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":5}}`))
	}))
	defer srv.Close()

	c := NewClient("test-token", srv.URL, zerolog.Nop())
	err := c.SendMessage(context.Background(), 77, "hello", mainMenuKeyboard())
	require.NoError(t, err)
	require.Equal(t, int64(77), got.ChatID)
	require.Equal(t, "hello", got.Text)
	require.NotNil(t, got.ReplyMarkup)
	require.Equal(t, btnMorning, got.ReplyMarkup.Keyboard[0][0].Text)
}

func TestClientGetUpdates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/bottest-token/getUpdates", r.URL.Path)
		var req getUpdatesRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, int64(100), req.Offset)
		require.Equal(t, 30, req.Timeout)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"result":[
			{"update_id":100,"message":{"message_id":1,"from":{"id":7,"first_name":"Alice"},"chat":{"id":7,"type":"private"},"text":"🍳 Breakfast"}},
			{"update_id":101}
		]}`))
	}))
	defer srv.Close()

	c := NewClient("test-token", srv.URL, zerolog.Nop())
	updates, err := c.GetUpdates(context.Background(), 100, 30*time.Second)
	require.NoError(t, err)
	require.Len(t, updates, 2)
	require.Equal(t, int64(100), updates[0].UpdateID)
	require.Equal(t, "🍳 Breakfast", updates[0].Message.Text)
	require.Equal(t, int64(7), updates[0].Message.Chat.ID)
	require.Nil(t, updates[1].Message)
}

func TestClientGetMe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"result":{"id":42,"is_bot":true,"username":"daytrace_bot"}}`))
	}))
	defer srv.Close()

	c := NewClient("test-token", srv.URL, zerolog.Nop())
	me, err := c.GetMe(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(42), me.ID)
	require.Equal(t, "daytrace_bot", me.Username)
}

func TestClientRejectionIsIrrecoverable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":403,"description":"Forbidden: bot was blocked by the user"}`))
	}))
	defer srv.Close()

	c := NewClient("test-token", srv.URL, zerolog.Nop())
	err := c.SendMessage(context.Background(), 77, "hello", nil)
	require.Error(t, err)
	require.True(t, dispatch.IsIrrecoverable(err))

	var ce *dispatch.ClassifiedError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, 403, ce.StatusCode)
	require.Contains(t, ce.Body, "blocked")
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"ok":false,"error_code":500,"description":"Internal Server Error"}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":6}}`))
	}))
	defer srv.Close()

	c := NewClient("test-token", srv.URL, zerolog.Nop())
	err := c.SendMessage(context.Background(), 77, "hello", nil)
	require.NoError(t, err)
	require.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClientNetworkErrorIsRecoverable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections from here on

	c := NewClient("test-token", srv.URL, zerolog.Nop())
	err := c.SendMessage(context.Background(), 77, "hello", nil)
	require.Error(t, err)
	require.False(t, dispatch.IsIrrecoverable(err))

	var ce *dispatch.ClassifiedError
	require.True(t, errors.As(err, &ce))
	require.Equal(t, dispatch.Recoverable, ce.Category)
}
