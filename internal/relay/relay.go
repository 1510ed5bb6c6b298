// Package relay runs one polling pass: list the user's chats, then for each
// chat fetch its detail and recent messages, keep the text messages and hand
// a formatted summary to an optional sink. Failures are recorded per chat and
// never stop the pass.
package relay

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/edgard/avitobridge/internal/avito"
	errs "github.com/edgard/avitobridge/internal/errors"
	"github.com/edgard/avitobridge/internal/logger"
	"github.com/edgard/avitobridge/internal/metrics"
)

// Sink receives one formatted summary per chat.
type Sink interface {
	Send(ctx context.Context, text string) error
}

// Options bounds a pass.
type Options struct {
	ChatLimit    int
	MessageLimit int
	// SkipEmpty suppresses forwarding for chats without text messages.
	SkipEmpty bool
}

// Relay wires a source, an optional sink and a console writer.
type Relay struct {
	source avito.Source
	sink   Sink
	out    io.Writer
	opts   Options
	logger *slog.Logger
}

// New creates a Relay. sink may be nil to only print messages; out may be
// nil to suppress the console transcript.
func New(source avito.Source, sink Sink, out io.Writer, opts Options, log *slog.Logger) *Relay {
	if out == nil {
		out = io.Discard
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Relay{
		source: source,
		sink:   sink,
		out:    out,
		opts:   opts,
		logger: log.With("component", "relay"),
	}
}

// Run performs one pass and always returns a report.
func (r *Relay) Run(ctx context.Context) *Report {
	report := newReport()
	log := r.logger.With("run_id", report.RunID.String())
	defer func() {
		report.FinishedAt = time.Now().UTC()
		metrics.ObserveRun(report.ListErr == nil, report.Duration())
		log.InfoContext(ctx, "Relay pass finished",
			"chats_listed", report.ChatsListed,
			"chats_failed", report.Failed(),
			"chats_forwarded", report.Forwarded(),
			"duration", report.Duration())
	}()

	log.InfoContext(ctx, "Starting relay pass", "chat_limit", r.opts.ChatLimit, "message_limit", r.opts.MessageLimit)

	chatIDs, err := r.source.ListChatIDs(ctx, r.opts.ChatLimit)
	if err != nil {
		report.ListErr = err
		r.printf("Error fetching chats: %v\n", err)
		log.ErrorContext(ctx, "Failed to list chats", "error", err, "code", errs.Code(err))
		return report
	}
	report.ChatsListed = len(chatIDs)

	if len(chatIDs) == 0 {
		r.printf("No chats found.\n")
		log.InfoContext(ctx, "No chats found")
		return report
	}

	r.printf("Chat IDs:\n")
	for _, id := range chatIDs {
		r.printf("%s\n", id)
	}
	r.printf("\n")

	for _, chatID := range chatIDs {
		if ctx.Err() != nil {
			log.WarnContext(ctx, "Relay pass cancelled", "error", ctx.Err(), "processed", len(report.Chats))
			break
		}
		result := r.processChat(ctx, log.With("chat_id", chatID.String()), chatID)
		metrics.IncChat(string(result.Stage), result.OK())
		report.Chats = append(report.Chats, result)
	}

	return report
}

func (r *Relay) processChat(ctx context.Context, log *slog.Logger, chatID avito.ChatID) ChatResult {
	result := ChatResult{ChatID: chatID, Stage: StageDetail}

	detail, err := r.source.GetChat(ctx, chatID)
	if err != nil {
		result.Err = err
		r.printf("Error fetching chat details for chat ID %s: %v\n", chatID, err)
		log.ErrorContext(ctx, "Failed to fetch chat detail", "error", err, "code", errs.Code(err))
		return result
	}
	r.printf("Chat information for chat ID %s:\n%s\n\n", chatID, detail)

	result.Stage = StageMessages
	messages, err := r.source.ListMessages(ctx, chatID, r.opts.MessageLimit)
	if err != nil {
		result.Err = err
		r.printf("Error fetching messages for chat ID %s: %v\n", chatID, err)
		log.ErrorContext(ctx, "Failed to fetch messages", "error", err, "code", errs.Code(err))
		return result
	}
	r.printf("Last %d messages for chat ID %s:\n", r.opts.MessageLimit, chatID)

	texts := FilterText(messages)
	result.TextMessages = len(texts)
	for _, m := range texts {
		r.printf("%s\n\n", m.Line())
	}
	log.DebugContext(ctx, "Fetched messages", "total", len(messages), "text", len(texts))

	if r.sink == nil || (r.opts.SkipEmpty && len(texts) == 0) {
		result.Stage = StageDone
		return result
	}

	result.Stage = StageForward
	summary := FormatSummary(chatID, texts)
	if err := r.sink.Send(ctx, summary); err != nil {
		result.Err = errs.NewSinkError("forward summary", err)
		r.printf("Failed to send messages for chat ID %s: %v\n", chatID, err)
		log.ErrorContext(ctx, "Failed to forward messages", "error", err, "preview", logger.Preview(summary, 64))
		return result
	}

	result.Stage = StageDone
	result.Forwarded = true
	metrics.AddForwarded(len(texts))
	r.printf("Messages for chat ID %s sent successfully.\n", chatID)
	log.InfoContext(ctx, "Forwarded messages", "count", len(texts))
	return result
}

func (r *Relay) printf(format string, args ...any) {
	if _, err := fmt.Fprintf(r.out, format, args...); err != nil {
		r.logger.Warn("Failed to write console output", "error", err)
	}
}
