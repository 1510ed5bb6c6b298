package relay

import (
	"fmt"
	"strings"

	"github.com/edgard/avitobridge/internal/avito"
)

const unknownDirection = "unknown"

// TextMessage is a text message kept for output and forwarding.
type TextMessage struct {
	Text      string
	Direction string
}

// Line renders the message as "text [direction]".
func (m TextMessage) Line() string {
	dir := m.Direction
	if dir == "" {
		dir = unknownDirection
	}
	return fmt.Sprintf("%s [%s]", m.Text, dir)
}

// FilterText keeps messages of type text with non-empty text, in order.
func FilterText(messages []avito.Message) []TextMessage {
	out := make([]TextMessage, 0, len(messages))
	for _, m := range messages {
		if m.Type != avito.TypeText {
			continue
		}
		text := m.Text()
		if text == "" {
			continue
		}
		out = append(out, TextMessage{Text: text, Direction: m.Direction})
	}
	return out
}

// FormatSummary builds the forwarded text for one chat:
// a "Last K messages for chat ID X:" header, a blank line and one
// "text [direction]" line per message.
func FormatSummary(chatID avito.ChatID, messages []TextMessage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Last %d messages for chat ID %s:\n\n", len(messages), chatID)
	for _, m := range messages {
		b.WriteString(m.Line())
		b.WriteByte('\n')
	}
	return b.String()
}
