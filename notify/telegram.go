// Package notify dispatches rendered signal alerts to a notification channel.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dnldd/htfbot/shared"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

const (
	// BaseURL is the telegram bot api base url.
	BaseURL = "https://api.telegram.org"

	// requestTimeout bounds every outbound telegram call.
	requestTimeout = time.Second * 5

	// maxTruncatedBody is the maximum number of response body bytes kept
	// when reporting a send failure.
	maxTruncatedBody = 200
)

// TelegramConfig represents the configuration for the telegram client.
type TelegramConfig struct {
	// BotToken is the telegram bot token.
	BotToken string
	// ChatID is the destination chat id.
	ChatID string
	// BaseURL is the telegram api base url.
	BaseURL string
}

// TelegramClient represents the telegram bot api client.
type TelegramClient struct {
	cfg   *TelegramConfig
	httpc http.Client
}

// Ensure the telegram client implements the Notifier interface.
var _ shared.Notifier = (*TelegramClient)(nil)

// NewTelegramClient instantiates a new telegram client.
func NewTelegramClient(cfg *TelegramConfig) (*TelegramClient, error) {
	if cfg.BotToken == "" || cfg.ChatID == "" {
		return nil, fmt.Errorf("telegram credentials cannot be empty strings")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = BaseURL
	}

	return &TelegramClient{
		cfg:   cfg,
		httpc: http.Client{Timeout: requestTimeout},
	}, nil
}

// RenderSignal renders the provided signal into an html alert message.
func RenderSignal(signal *shared.Signal) string {
	var b strings.Builder

	fmt.Fprintf(&b, "<b>%s SIGNAL</b>\n\n", signal.Type.String())
	fmt.Fprintf(&b, "<b>Instrument:</b> %s\n", signal.Market)
	fmt.Fprintf(&b, "<b>Price:</b> %.2f\n", signal.Price)
	fmt.Fprintf(&b, "<b>Time:</b> %s\n\n", signal.CreatedOn.Format("15:04:05 MST"))
	fmt.Fprintf(&b, "<b>Reason:</b> %s\n\n", signal.Reason)
	fmt.Fprintf(&b, "<b>Level:</b> %s @ %.2f (%.2f%% away)\n", signal.LevelKind.String(),
		signal.LevelPrice, signal.DistancePercent)
	fmt.Fprintf(&b, "<b>Stop Loss:</b> %.2f\n", signal.StopLoss)
	fmt.Fprintf(&b, "<b>Target:</b> %.2f\n", signal.Target)
	fmt.Fprintf(&b, "<b>Strength:</b> %d/10\n", signal.Strength)

	if signal.Synthetic {
		b.WriteString("\n<b>Warning:</b> derived from synthetic data, not live market data.\n")
	}

	return b.String()
}

// Notify sends the provided signal to the configured telegram chat.
func (c *TelegramClient) Notify(ctx context.Context, signal *shared.Signal) error {
	payload := map[string]string{
		"chat_id":    c.cfg.ChatID,
		"text":       RenderSignal(signal),
		"parse_mode": "HTML",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshalling telegram payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.cfg.BaseURL, c.cfg.BotToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating telegram request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("sending telegram message: %w", err)
	}

	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading telegram response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(respBody) > maxTruncatedBody {
			respBody = respBody[:maxTruncatedBody]
		}
		return fmt.Errorf("telegram rejected message (%d): %s", resp.StatusCode, respBody)
	}

	if !gjson.GetBytes(respBody, "ok").Bool() {
		return fmt.Errorf("telegram send failed: %s",
			gjson.GetBytes(respBody, "description").String())
	}

	return nil
}

// LogNotifier logs alerts instead of dispatching them, used when no telegram
// credentials are configured.
type LogNotifier struct {
	logger *zerolog.Logger
}

// Ensure the log notifier implements the Notifier interface.
var _ shared.Notifier = (*LogNotifier)(nil)

// NewLogNotifier instantiates a new log notifier.
func NewLogNotifier(logger *zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the provided signal.
func (n *LogNotifier) Notify(ctx context.Context, signal *shared.Signal) error {
	n.logger.Info().Msgf("%s signal for %s at %.2f: %s", signal.Type.String(),
		signal.Market, signal.Price, signal.Reason)
	return nil
}
