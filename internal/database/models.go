package database

import (
	"time"

	"github.com/edgard/avitobridge/internal/relay"
)

// Run is one recorded relay pass.
type Run struct {
	ID             string    `db:"id"`
	StartedAt      time.Time `db:"started_at"`
	FinishedAt     time.Time `db:"finished_at"`
	ChatsListed    int       `db:"chats_listed"`
	ChatsFailed    int       `db:"chats_failed"`
	ChatsForwarded int       `db:"chats_forwarded"`
	ListError      string    `db:"list_error"`
}

// ChatResult is the recorded outcome of one chat within a run.
type ChatResult struct {
	ID           int64  `db:"id"`
	RunID        string `db:"run_id"`
	Position     int    `db:"position"`
	ChatID       string `db:"chat_id"`
	Stage        string `db:"stage"`
	TextMessages int    `db:"text_messages"`
	Forwarded    bool   `db:"forwarded"`
	ErrorCode    string `db:"error_code"`
	Error        string `db:"error"`
}

// RecordsFromReport converts a relay report into storable rows.
func RecordsFromReport(report *relay.Report) (*Run, []ChatResult) {
	run := &Run{
		ID:             report.RunID.String(),
		StartedAt:      report.StartedAt.UTC(),
		FinishedAt:     report.FinishedAt.UTC(),
		ChatsListed:    report.ChatsListed,
		ChatsFailed:    report.Failed(),
		ChatsForwarded: report.Forwarded(),
	}
	if report.ListErr != nil {
		run.ListError = report.ListErr.Error()
	}

	results := make([]ChatResult, 0, len(report.Chats))
	for i, c := range report.Chats {
		r := ChatResult{
			RunID:        run.ID,
			Position:     i,
			ChatID:       c.ChatID.String(),
			Stage:        string(c.Stage),
			TextMessages: c.TextMessages,
			Forwarded:    c.Forwarded,
			ErrorCode:    c.ErrorCode(),
		}
		if c.Err != nil {
			r.Error = c.Err.Error()
		}
		results = append(results, r)
	}
	return run, results
}
