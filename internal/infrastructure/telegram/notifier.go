package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"NewsRecommender/internal/domain"
	"NewsRecommender/internal/ports"
)

const defaultDigestSize = 5

// Settings carries bot credentials and digest shape.
type Settings struct {
	BotToken    string
	ChatID      string
	APIEndpoint string
	DigestSize  int
}

// Notifier sends recommendation digests to a Telegram chat via bot API.
type Notifier struct {
	token      string
	endpoint   string
	chatID     int64
	digestSize int
	client     *http.Client
	logger     *slog.Logger

	mu  sync.Mutex
	bot *tgbotapi.BotAPI
}

var _ ports.Publisher = (*Notifier)(nil)

// NewNotifier validates settings. The bot handshake happens on first publish.
func NewNotifier(settings Settings, client *http.Client, logger *slog.Logger) (*Notifier, error) {
	if settings.BotToken == "" || settings.ChatID == "" {
		return nil, fmt.Errorf("telegram notifier misconfigured")
	}
	chatID, err := strconv.ParseInt(settings.ChatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse telegram chat id: %w", err)
	}
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	if settings.APIEndpoint == "" {
		settings.APIEndpoint = tgbotapi.APIEndpoint
	}
	if settings.DigestSize <= 0 {
		settings.DigestSize = defaultDigestSize
	}
	return &Notifier{
		token:      settings.BotToken,
		endpoint:   settings.APIEndpoint,
		chatID:     chatID,
		digestSize: settings.DigestSize,
		client:     client,
		logger:     logger,
	}, nil
}

// Publish posts the top of the list as one message. Empty lists are skipped.
func (n *Notifier) Publish(ctx context.Context, set domain.RecommendationSet) error {
	if len(set.Items) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	bot, err := n.botAPI()
	if err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(n.chatID, FormatDigest(set, n.digestSize))
	msg.DisableWebPagePreview = true

	if _, err := bot.Send(msg); err != nil {
		return fmt.Errorf("send telegram digest: %w", err)
	}
	if n.logger != nil {
		n.logger.Debug("telegram digest sent", "user", set.UserID, "items", min(len(set.Items), n.digestSize))
	}
	return nil
}

func (n *Notifier) botAPI() (*tgbotapi.BotAPI, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.bot != nil {
		return n.bot, nil
	}
	bot, err := tgbotapi.NewBotAPIWithClient(n.token, n.endpoint, n.client)
	if err != nil {
		return nil, fmt.Errorf("connect telegram bot: %w", err)
	}
	n.bot = bot
	return bot, nil
}

// FormatDigest renders up to limit items as plain text.
func FormatDigest(set domain.RecommendationSet, limit int) string {
	var b strings.Builder
	if set.UserID != "" {
		fmt.Fprintf(&b, "Top news for %s\n", set.UserID)
	} else {
		b.WriteString("Top news\n")
	}

	for i, item := range set.Items {
		if i >= limit {
			break
		}
		fmt.Fprintf(&b, "\n%d. %s\n%s · %.2f\n", i+1, item.Title, item.Category, item.RecommendationScore)
		if item.URL != "" {
			b.WriteString(item.URL)
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
