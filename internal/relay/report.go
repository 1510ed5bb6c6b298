package relay

import (
	"time"

	"github.com/google/uuid"

	"github.com/edgard/avitobridge/internal/avito"
	errs "github.com/edgard/avitobridge/internal/errors"
)

// Stage is the last step a chat reached during a pass.
type Stage string

const (
	StageDetail   Stage = "detail"
	StageMessages Stage = "messages"
	StageForward  Stage = "forward"
	StageDone     Stage = "done"
)

// ChatResult is the outcome of processing one chat. Err is nil when the
// chat reached StageDone.
type ChatResult struct {
	ChatID       avito.ChatID
	Stage        Stage
	TextMessages int
	Forwarded    bool
	Err          error
}

// OK reports whether the chat was processed without error.
func (r ChatResult) OK() bool { return r.Err == nil }

// ErrorCode returns the application error code of Err, or "".
func (r ChatResult) ErrorCode() string { return errs.Code(r.Err) }

// Report collects the per-chat results of one relay pass.
type Report struct {
	RunID       uuid.UUID
	StartedAt   time.Time
	FinishedAt  time.Time
	ChatsListed int
	ListErr     error
	Chats       []ChatResult
}

func newReport() *Report {
	return &Report{
		RunID:     uuid.New(),
		StartedAt: time.Now().UTC(),
	}
}

// Duration is the wall time of the pass.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Failed counts chats that stopped on an error.
func (r *Report) Failed() int {
	n := 0
	for _, c := range r.Chats {
		if !c.OK() {
			n++
		}
	}
	return n
}

// Forwarded counts chats whose summary was delivered to the sink.
func (r *Report) Forwarded() int {
	n := 0
	for _, c := range r.Chats {
		if c.Forwarded {
			n++
		}
	}
	return n
}
