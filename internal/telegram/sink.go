package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	errs "github.com/edgard/avitobridge/internal/errors"
)

// MaxMessageLength is Telegram's limit for a single text message.
const MaxMessageLength = 4096

// Sender is the part of *bot.Bot the sink uses.
type Sender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// Sink posts relay summaries to one channel.
type Sink struct {
	sender    Sender
	channelID any
	logger    *slog.Logger
}

// NewSink creates a sink for channelID, which is either a numeric chat id
// such as -1001234567890 or a public @username.
func NewSink(sender Sender, channelID string, log *slog.Logger) (*Sink, error) {
	channelID = strings.TrimSpace(channelID)
	if channelID == "" {
		return nil, errs.NewConfigError("telegram channel id is required", nil)
	}
	if log == nil {
		log = slog.Default()
	}

	var target any = channelID
	if id, err := strconv.ParseInt(channelID, 10, 64); err == nil {
		target = id
	}

	return &Sink{
		sender:    sender,
		channelID: target,
		logger:    log.With("component", "telegram_sink", "channel_id", channelID),
	}, nil
}

// Send delivers text, split into several messages when it exceeds
// MaxMessageLength. The first failed part aborts the rest.
func (s *Sink) Send(ctx context.Context, text string) error {
	parts := SplitText(text, MaxMessageLength)
	for i, part := range parts {
		msg, err := s.sender.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: s.channelID,
			Text:   part,
		})
		if err != nil {
			return errs.NewSinkError(fmt.Sprintf("send part %d/%d", i+1, len(parts)), err)
		}
		if msg != nil {
			s.logger.DebugContext(ctx, "Sent message", "part", i+1, "parts", len(parts), "message_id", msg.ID)
		}
	}
	return nil
}

// SplitText cuts text into chunks of at most limit runes, preferring line
// boundaries. Lines longer than limit are cut mid-line.
func SplitText(text string, limit int) []string {
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var parts []string
	var cur strings.Builder
	curLen := 0

	flush := func() {
		if curLen > 0 {
			parts = append(parts, cur.String())
			cur.Reset()
			curLen = 0
		}
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		n := utf8.RuneCountInString(line)
		if curLen+n <= limit {
			cur.WriteString(line)
			curLen += n
			continue
		}
		flush()
		for n > limit {
			runes := []rune(line)
			parts = append(parts, string(runes[:limit]))
			line = string(runes[limit:])
			n -= limit
		}
		cur.WriteString(line)
		curLen = n
	}
	flush()
	return parts
}
