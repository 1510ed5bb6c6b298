package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	errs "github.com/edgard/avitobridge/internal/errors"
	"github.com/edgard/avitobridge/internal/logger"
	"github.com/edgard/avitobridge/internal/relay"
)

// Store defines the run history operations.
// Methods accept context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// SaveReport records a relay pass and its per-chat results atomically.
	SaveReport(ctx context.Context, report *relay.Report) error

	// RecentRuns returns up to limit runs, newest first.
	RecentRuns(ctx context.Context, limit int) ([]Run, error)

	// ChatResults returns the per-chat results of a run in processing order.
	ChatResults(ctx context.Context, runID string) ([]ChatResult, error)

	// PruneRuns deletes runs that started before cutoff and returns how many were removed.
	PruneRuns(ctx context.Context, cutoff time.Time) (int64, error)

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx.
func NewStore(db *sqlx.DB, log *slog.Logger) Store {
	if log == nil {
		log = logger.Discard()
	}
	return &sqlxStore{
		db:     db,
		logger: log.With("component", "store"),
	}
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlxStore) SaveReport(ctx context.Context, report *relay.Report) error {
	if report == nil {
		return errs.NewValidationError("cannot save nil report", nil)
	}
	run, results := RecordsFromReport(report)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errs.NewDatabaseError("failed to begin transaction", err)
	}
	defer func() {
		if tx != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rbErr)
			}
		}
	}()

	_, err = tx.NamedExecContext(ctx, `
        INSERT INTO relay_runs (id, started_at, finished_at, chats_listed, chats_failed, chats_forwarded, list_error)
        VALUES (:id, :started_at, :finished_at, :chats_listed, :chats_failed, :chats_forwarded, :list_error);
    `, run)
	if err != nil {
		return errs.NewDatabaseError(fmt.Sprintf("failed to save run %s", run.ID), err)
	}

	for i := range results {
		_, err = tx.NamedExecContext(ctx, `
            INSERT INTO relay_chat_results (run_id, position, chat_id, stage, text_messages, forwarded, error_code, error)
            VALUES (:run_id, :position, :chat_id, :stage, :text_messages, :forwarded, :error_code, :error);
        `, &results[i])
		if err != nil {
			return errs.NewDatabaseError(fmt.Sprintf("failed to save result for chat %s", results[i].ChatID), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errs.NewDatabaseError("failed to commit transaction", err)
	}
	tx = nil

	s.logger.DebugContext(ctx, "Run saved", "run_id", run.ID, "chat_results", len(results))
	return nil
}

func (s *sqlxStore) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	} else if limit > 500 {
		limit = 500
	}

	var runs []Run
	err := s.db.SelectContext(ctx, &runs, `
        SELECT id, started_at, finished_at, chats_listed, chats_failed, chats_forwarded, list_error
        FROM relay_runs
        ORDER BY started_at DESC
        LIMIT ?;
    `, limit)
	if err != nil {
		return nil, errs.NewDatabaseError("failed to query recent runs", err)
	}
	return runs, nil
}

func (s *sqlxStore) ChatResults(ctx context.Context, runID string) ([]ChatResult, error) {
	var results []ChatResult
	err := s.db.SelectContext(ctx, &results, `
        SELECT id, run_id, position, chat_id, stage, text_messages, forwarded, error_code, error
        FROM relay_chat_results
        WHERE run_id = ?
        ORDER BY position ASC;
    `, runID)
	if err != nil {
		return nil, errs.NewDatabaseError(fmt.Sprintf("failed to query results for run %s", runID), err)
	}
	return results, nil
}

func (s *sqlxStore) PruneRuns(ctx context.Context, cutoff time.Time) (int64, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, errs.NewDatabaseError("failed to begin transaction", err)
	}
	defer func() {
		if tx != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rbErr)
			}
		}
	}()

	cutoff = cutoff.UTC()
	if _, err := tx.ExecContext(ctx, `
        DELETE FROM relay_chat_results
        WHERE run_id IN (SELECT id FROM relay_runs WHERE started_at < ?);
    `, cutoff); err != nil {
		return 0, errs.NewDatabaseError("failed to prune chat results", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM relay_runs WHERE started_at < ?;`, cutoff)
	if err != nil {
		return 0, errs.NewDatabaseError("failed to prune runs", err)
	}
	deleted, _ := res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return 0, errs.NewDatabaseError("failed to commit transaction", err)
	}
	tx = nil

	s.logger.InfoContext(ctx, "Pruned old runs", "deleted", deleted, "cutoff", cutoff)
	return deleted, nil
}

func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	for _, stmt := range []string{"VACUUM;", "ANALYZE;"} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return errs.NewDatabaseError("maintenance statement "+stmt+" failed", err)
		}
	}
	s.logger.InfoContext(ctx, "SQL maintenance completed")
	return nil
}
