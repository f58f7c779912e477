package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// TelegramNotifier sends messages via the Telegram Bot API.
type TelegramNotifier struct {
	BotToken   string
	Client     *http.Client
	MaxRetries int
}

func NewTelegramNotifier(botToken string, maxRetries int) *TelegramNotifier {
	return &TelegramNotifier{
		BotToken:   botToken,
		MaxRetries: maxRetries,
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (t *TelegramNotifier) NotifyTrainingComplete(ctx context.Context, telegramID int64, petName string, rewardEstimate decimal.Decimal) error {
	text := fmt.Sprintf("🎓 <b>%s</b> закончил тренировку!\nЗабери прибыль: ~%s 💰", petName, rewardEstimate.StringFixed(2))
	return t.sendWithRetry(ctx, telegramID, text)
}

func (t *TelegramNotifier) NotifyEvolved(ctx context.Context, telegramID int64, petName string, totalEarned decimal.Decimal) error {
	text := fmt.Sprintf("✨ <b>%s</b> эволюционировал!\nВсего заработано: %s 💎", petName, totalEarned.StringFixed(2))
	return t.sendWithRetry(ctx, telegramID, text)
}

func (t *TelegramNotifier) send(ctx context.Context, telegramID int64, text string) error {
	apiURL := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", t.BotToken)
	payload := map[string]string{
		"chat_id":    strconv.FormatInt(telegramID, 10),
		"text":       text,
		"parse_mode": "HTML",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := t.Client.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("telegram API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

func (t *TelegramNotifier) sendWithRetry(ctx context.Context, telegramID int64, text string) error {
	var lastErr error
	for i := 0; i <= t.MaxRetries; i++ {
		if err := t.send(ctx, telegramID, text); err != nil {
			lastErr = err
			backoff := time.Duration(1<<uint(i)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			continue
		}
		return nil
	}
	return lastErr
}
