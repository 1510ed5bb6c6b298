package tasks_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/edgard/avitobridge/internal/app/tasks"
	"github.com/edgard/avitobridge/internal/config"
	"github.com/edgard/avitobridge/internal/database"
	"github.com/edgard/avitobridge/internal/logger"
	"github.com/edgard/avitobridge/internal/relay"
)

type fakeRunner struct {
	calls int
}

func (r *fakeRunner) Run(context.Context) *relay.Report {
	r.calls++
	now := time.Now().UTC()
	return &relay.Report{RunID: uuid.New(), StartedAt: now, FinishedAt: now}
}

type fakeStore struct {
	saved       []*relay.Report
	saveErr     error
	pruneCutoff time.Time
	pruneErr    error
	maintained  bool
}

func (s *fakeStore) Ping(context.Context) error { return nil }

func (s *fakeStore) SaveReport(_ context.Context, r *relay.Report) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, r)
	return nil
}

func (s *fakeStore) RecentRuns(context.Context, int) ([]database.Run, error) { return nil, nil }

func (s *fakeStore) ChatResults(context.Context, string) ([]database.ChatResult, error) {
	return nil, nil
}

func (s *fakeStore) PruneRuns(_ context.Context, cutoff time.Time) (int64, error) {
	s.pruneCutoff = cutoff
	return 2, s.pruneErr
}

func (s *fakeStore) RunSQLMaintenance(context.Context) error {
	s.maintained = true
	return nil
}

func newDeps(runner tasks.Runner, store database.Store) tasks.TaskDeps {
	return tasks.TaskDeps{
		Logger: logger.Discard(),
		Relay:  runner,
		Store:  store,
		Config: &config.Config{Database: config.DatabaseConfig{Retention: 24 * time.Hour}},
	}
}

func TestRegisterAllTasks(t *testing.T) {
	t.Parallel()

	withoutStore := tasks.RegisterAllTasks(newDeps(&fakeRunner{}, nil))
	if _, ok := withoutStore[tasks.TaskRelay]; !ok || len(withoutStore) != 1 {
		t.Errorf("without store: got %d tasks, want only %q", len(withoutStore), tasks.TaskRelay)
	}

	withStore := tasks.RegisterAllTasks(newDeps(&fakeRunner{}, &fakeStore{}))
	if _, ok := withStore[tasks.TaskHistoryMaintenance]; !ok || len(withStore) != 2 {
		t.Errorf("with store: got %d tasks, want relay and %q", len(withStore), tasks.TaskHistoryMaintenance)
	}
}

func TestRelayTask(t *testing.T) {
	t.Parallel()

	t.Run("without store", func(t *testing.T) {
		t.Parallel()
		runner := &fakeRunner{}
		if err := tasks.NewRelayTask(newDeps(runner, nil))(context.Background()); err != nil {
			t.Fatalf("relay task error = %v", err)
		}
		if runner.calls != 1 {
			t.Errorf("runner calls = %d, want 1", runner.calls)
		}
	})

	t.Run("saves report", func(t *testing.T) {
		t.Parallel()
		store := &fakeStore{}
		if err := tasks.NewRelayTask(newDeps(&fakeRunner{}, store))(context.Background()); err != nil {
			t.Fatalf("relay task error = %v", err)
		}
		if len(store.saved) != 1 {
			t.Errorf("saved reports = %d, want 1", len(store.saved))
		}
	})

	t.Run("save failure", func(t *testing.T) {
		t.Parallel()
		store := &fakeStore{saveErr: errors.New("disk full")}
		if err := tasks.NewRelayTask(newDeps(&fakeRunner{}, store))(context.Background()); err == nil {
			t.Fatal("relay task error = nil, want save failure")
		}
	})

	t.Run("canceled context still saves", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		store := &fakeStore{}
		if err := tasks.NewRelayTask(newDeps(&fakeRunner{}, store))(ctx); err != nil {
			t.Fatalf("relay task error = %v", err)
		}
		if len(store.saved) != 1 {
			t.Errorf("saved reports = %d, want 1", len(store.saved))
		}
	})
}

func TestHistoryMaintenanceTask(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	task := tasks.RegisterAllTasks(newDeps(&fakeRunner{}, store))[tasks.TaskHistoryMaintenance]

	before := time.Now()
	if err := task(context.Background()); err != nil {
		t.Fatalf("maintenance task error = %v", err)
	}
	if !store.maintained {
		t.Error("RunSQLMaintenance was not called")
	}
	if want := before.Add(-24 * time.Hour); store.pruneCutoff.Before(want.Add(-time.Second)) || store.pruneCutoff.After(want.Add(time.Second)) {
		t.Errorf("prune cutoff = %v, want about %v", store.pruneCutoff, want)
	}

	failing := &fakeStore{pruneErr: errors.New("locked")}
	task = tasks.RegisterAllTasks(newDeps(&fakeRunner{}, failing))[tasks.TaskHistoryMaintenance]
	if err := task(context.Background()); err == nil {
		t.Error("maintenance task error = nil, want prune failure")
	}
	if failing.maintained {
		t.Error("RunSQLMaintenance ran after prune failure")
	}
}
