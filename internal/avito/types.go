package avito

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// ChatID is an opaque chat identifier. The API has returned it both as a
// JSON string and as a number, so both are accepted.
type ChatID string

// UnmarshalJSON accepts strings, numbers and null. Null, empty strings and
// the number zero all decode to the empty ChatID.
func (c *ChatID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = ChatID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if f, err := strconv.ParseFloat(n.String(), 64); err == nil && f == 0 {
		*c = ""
		return nil
	}
	*c = ChatID(n.String())
	return nil
}

func (c ChatID) String() string { return string(c) }

// Chat is one entry of the chat listing. Only the id is used.
type Chat struct {
	ID ChatID `json:"id"`
}

type chatsResponse struct {
	Chats []Chat `json:"chats"`
}

// Message types and directions reported by the messenger API.
const (
	TypeText = "text"

	DirectionIn  = "in"
	DirectionOut = "out"
)

// MessageContent is the payload of a message. Only text is used.
type MessageContent struct {
	Text string `json:"text"`
}

// Message is one entry of a chat's message listing.
type Message struct {
	Type      string          `json:"type"`
	Direction string          `json:"direction"`
	Content   *MessageContent `json:"content"`
}

// Text returns the message text, or "" when the content is missing.
func (m Message) Text() string {
	if m.Content == nil {
		return ""
	}
	return m.Content.Text
}

type messagesResponse struct {
	Messages []Message `json:"messages"`
}

// ChatDetail is the chat metadata object. The API returns an arbitrary
// object, so it is kept as raw JSON.
type ChatDetail json.RawMessage

// String renders the detail as compact JSON for console dumps.
func (d ChatDetail) String() string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, d); err != nil {
		return string(d)
	}
	return buf.String()
}
