package notify

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dnldd/htfbot/shared"
	"github.com/peterldowns/testy/assert"
	"github.com/tidwall/gjson"
)

func testSignal() *shared.Signal {
	signal := shared.NewSignal("NIFTY", shared.Buy, 24105.5, "bullish reaction at support 24012.00",
		time.Date(2025, 2, 4, 10, 30, 0, 0, time.UTC))
	signal.LevelKind = shared.Support
	signal.LevelPrice = 24012
	signal.DistancePercent = 0.08
	signal.Strength = 8
	signal.StopLoss = 23988
	signal.Target = 24340.5

	return &signal
}

func setupTelegramClient(t *testing.T, handler http.HandlerFunc) *TelegramClient {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewTelegramClient(&TelegramConfig{
		BotToken: "bottoken",
		ChatID:   "chat",
		BaseURL:  server.URL,
	})
	assert.NoError(t, err)

	return client
}

func TestNewTelegramClientRequiresCredentials(t *testing.T) {
	_, err := NewTelegramClient(&TelegramConfig{BotToken: "token"})
	assert.Error(t, err)

	_, err = NewTelegramClient(&TelegramConfig{ChatID: "chat"})
	assert.Error(t, err)
}

func TestRenderSignal(t *testing.T) {
	message := RenderSignal(testSignal())

	for _, want := range []string{"BUY SIGNAL", "NIFTY", "24105.50", "support", "8/10"} {
		if !strings.Contains(message, want) {
			t.Errorf("expected rendered message to contain %q:\n%s", want, message)
		}
	}

	if strings.Contains(message, "synthetic") {
		t.Errorf("unexpected synthetic warning in message:\n%s", message)
	}
}

func TestRenderSignalSyntheticWarning(t *testing.T) {
	signal := testSignal()
	signal.Synthetic = true

	message := RenderSignal(signal)
	if !strings.Contains(message, "synthetic") {
		t.Errorf("expected a synthetic data warning in message:\n%s", message)
	}
}

func TestTelegramNotify(t *testing.T) {
	var gotPath string
	var gotBody gjson.Result
	client := setupTelegramClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path

		body, _ := io.ReadAll(r.Body)
		gotBody = gjson.ParseBytes(body)

		w.Write([]byte(`{"ok":true}`))
	})

	err := client.Notify(context.Background(), testSignal())
	assert.NoError(t, err)

	assert.Equal(t, gotPath, "/botbottoken/sendMessage")
	assert.Equal(t, gotBody.Get("chat_id").String(), "chat")
	assert.Equal(t, gotBody.Get("parse_mode").String(), "HTML")
	assert.True(t, strings.Contains(gotBody.Get("text").String(), "BUY SIGNAL"))
}

func TestTelegramNotifyRejected(t *testing.T) {
	client := setupTelegramClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"ok":false,"description":"bot was blocked"}`))
	})

	err := client.Notify(context.Background(), testSignal())
	assert.Error(t, err)
}

func TestTelegramNotifyProviderFailure(t *testing.T) {
	// A 2xx response can still carry a send failure.
	client := setupTelegramClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":false,"description":"chat not found"}`))
	})

	err := client.Notify(context.Background(), testSignal())
	assert.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "chat not found"))
}
