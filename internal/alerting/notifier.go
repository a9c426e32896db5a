package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"lcr-engine/internal/lcr"
)

// Notification bundles the alerts for a reporting date with the snapshot
// they were derived from.
type Notification struct {
	AsOfDate time.Time
	Snapshot lcr.Snapshot
	Alerts   []Alert
}

// Notifier delivers alert notifications to an external channel.
type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}

// TelegramNotifier pushes alert summaries through the Telegram Bot API.
type TelegramNotifier struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
	logger   zerolog.Logger
}

// NewTelegramNotifier constructs a Telegram-backed notifier.
func NewTelegramNotifier(botToken, chatID, baseURL string, timeout time.Duration, logger zerolog.Logger) *TelegramNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}

	return &TelegramNotifier{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		logger:   logger.With().Str("component", "alert_telegram").Logger(),
	}
}

// Notify renders the notification as text and calls the sendMessage API.
func (n *TelegramNotifier) Notify(ctx context.Context, note Notification) error {
	payload := map[string]string{
		"chat_id": n.chatID,
		"text":    renderMessage(note),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal telegram payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send telegram request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("telegram responded with status %d", resp.StatusCode)
	}

	var result struct {
		OK bool `json:"ok"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err == nil {
		if !result.OK {
			return fmt.Errorf("telegram returned ok=false")
		}
	}

	n.logger.Info().Time("as_of_date", note.AsOfDate).
		Int("alerts", len(note.Alerts)).
		Msg("alert notification sent")
	return nil
}

func renderMessage(note Notification) string {
	builder := strings.Builder{}
	builder.WriteString("[LCR Compliance Alert]\n")
	builder.WriteString(fmt.Sprintf("Date: %s\n", note.AsOfDate.UTC().Format("2006-01-02")))
	builder.WriteString(fmt.Sprintf("LCR: %s%% (%s)\n", note.Snapshot.Ratio.StringFixed(2), note.Snapshot.Status))
	builder.WriteString(fmt.Sprintf("HQLA: %s / Outflow: %s\n", note.Snapshot.TotalHQLA.StringFixed(2), note.Snapshot.TotalOutflow.StringFixed(2)))
	for _, alert := range note.Alerts {
		builder.WriteString(fmt.Sprintf("\n[%s] %s\n%s\nAction: %s\n", alert.Severity, alert.Type, alert.Message, alert.RecommendedAction))
	}
	return builder.String()
}

var _ Notifier = (*TelegramNotifier)(nil)
