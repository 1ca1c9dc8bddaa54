// Package telegram provides a client for sending notifications via Telegram Bot API.
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rewired-gh/venueoracle/internal/models"
)

// maxDigestLines caps how many flagged records one digest lists.
const maxDigestLines = 20

// sender is the slice of the bot API the client needs.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Client handles Telegram notifications.
type Client struct {
	bot            sender
	chatID         int64
	maxRetries     int
	retryDelayBase time.Duration
}

// NewClient creates a new Telegram client.
func NewClient(botToken, chatID string, maxRetries int, retryDelayBase time.Duration) (*Client, error) {
	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}

	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	return newClient(bot, chatIDInt, maxRetries, retryDelayBase), nil
}

func newClient(bot sender, chatID int64, maxRetries int, retryDelayBase time.Duration) *Client {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryDelayBase <= 0 {
		retryDelayBase = time.Second
	}
	return &Client{
		bot:            bot,
		chatID:         chatID,
		maxRetries:     maxRetries,
		retryDelayBase: retryDelayBase,
	}
}

// sendMarkdownV2 sends a MarkdownV2 message with exponential-backoff retry.
func (c *Client) sendMarkdownV2(ctx context.Context, text string) error {
	msg := tgbotapi.NewMessage(c.chatID, text)
	msg.ParseMode = "MarkdownV2"

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = c.retryDelayBase
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(c.maxRetries-1)), ctx)

	err := backoff.Retry(func() error {
		_, err := c.bot.Send(msg)
		return err
	}, policy)
	if err != nil {
		return fmt.Errorf("failed after %d retries: %w", c.maxRetries, err)
	}
	return nil
}

// SendError sends a pipeline failure notification.
func (c *Client) SendError(ctx context.Context, runErr error) error {
	text := fmt.Sprintf("⚠️ *Detection run failed*\n`%s`", escapeMarkdownV2(runErr.Error()))
	return c.sendMarkdownV2(ctx, text)
}

// Send sends a digest of flagged records from one run. Runs without flags send nothing.
func (c *Client) Send(ctx context.Context, run *models.Run, records []models.BenchmarkRecord) error {
	text := formatDigest(run, records)
	if text == "" {
		return nil
	}
	return c.sendMarkdownV2(ctx, text)
}

// formatDigest formats flagged records into a Telegram MarkdownV2 message.
func formatDigest(run *models.Run, records []models.BenchmarkRecord) string {
	var flagged []models.BenchmarkRecord
	for _, r := range records {
		if r.Flagged() {
			flagged = append(flagged, r)
		}
	}
	if len(flagged) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("🚨 *Benchmark anomalies*\n\n")
	if run != nil {
		fmt.Fprintf(&b, "🧾 Run: `%s` \\(%s\\)\n", escapeMarkdownV2(run.ID), escapeMarkdownV2(run.Source))
	}
	fmt.Fprintf(&b, "📊 %d of %d records flagged\n\n", len(flagged), len(records))

	for i, r := range flagged {
		if i == maxDigestLines {
			fmt.Fprintf(&b, "…and %d more\n", len(flagged)-maxDigestLines)
			break
		}
		line := fmt.Sprintf("%s  %s  [%s]",
			r.Timestamp.UTC().Format("15:04:05"), r.Benchmark, strings.Join(r.Flags(), ", "))
		fmt.Fprintf(&b, "%d\\. %s\n", i+1, escapeMarkdownV2(line))
	}

	return b.String()
}

// escapeMarkdownV2 escapes special characters for Telegram MarkdownV2.
func escapeMarkdownV2(text string) string {
	var b strings.Builder
	b.Grow(len(text) + len(text)/4) // pre-allocate with room for escapes
	for _, char := range text {
		switch char {
		case '_', '*', '[', ']', '(', ')', '~', '`', '>', '#', '+', '-', '=', '|', '{', '}', '.', '!':
			b.WriteByte('\\')
		}
		b.WriteRune(char)
	}
	return b.String()
}
