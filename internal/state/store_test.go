package state

import (
	"context"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/envset/internal/testutil"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:", testutil.NewTestLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_RecordAndRecent(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	runs := []*Run{
		{Project: "/a/envset.yaml", Setup: "api", Env: "dev", StartedAt: base, Duration: 1500 * time.Millisecond},
		{Project: "/a/envset.yaml", Setup: "api", Env: "prod", Args: []string{"deploy", "--now"}, StartedAt: base.Add(time.Minute), ExitCode: 2},
		{Project: "/b/envset.yaml", Setup: "web", Env: "dev", StartedAt: base.Add(2 * time.Minute)},
	}
	for _, run := range runs {
		require.NoError(t, store.Record(ctx, run))
		assert.NotEmpty(t, run.ID)
	}

	got, err := store.Recent(ctx, "/a/envset.yaml", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "prod", got[0].Env)
	assert.Equal(t, []string{"deploy", "--now"}, got[0].Args)
	assert.Equal(t, 2, got[0].ExitCode)
	assert.Equal(t, base.Add(time.Minute), got[0].StartedAt)
	assert.Equal(t, 1500*time.Millisecond, got[1].Duration)
	assert.Nil(t, got[1].Args)

	all, err := store.Recent(ctx, "", 2)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "web", all[0].Setup)
}

func TestStore_OpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", DefaultFileName)
	store, err := Open(path, nil)
	require.NoError(t, err)

	version, err := store.MigrationVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)
	require.NoError(t, store.Close())

	// Reopening applies no new migration and keeps data.
	store, err = Open(path, nil)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	require.NoError(t, store.Record(context.Background(), &Run{Project: "/p", Setup: "s", Env: "e", StartedAt: time.Now()}))
}

func TestStore_SQLErrors(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		call      func(s *Store) error
		errMsg    string
	}{
		{
			name: "record fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(regexp.QuoteMeta("INSERT INTO runs")).WillReturnError(assert.AnError)
			},
			call: func(s *Store) error {
				return s.Record(context.Background(), &Run{ID: "x"})
			},
			errMsg: "failed to record run",
		},
		{
			name: "query fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT id, project").WillReturnError(assert.AnError)
			},
			call: func(s *Store) error {
				_, err := s.Recent(context.Background(), "", 5)
				return err
			},
			errMsg: "failed to query runs",
		},
		{
			name: "scan fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"id", "project", "setup", "env", "args", "started_at", "duration_ms", "exit_code"}).
					AddRow("x", "/p", "s", "e", "", "not-a-number", 0, 0)
				mock.ExpectQuery("SELECT id, project").WillReturnRows(rows)
			},
			call: func(s *Store) error {
				_, err := s.Recent(context.Background(), "", 5)
				return err
			},
			errMsg: "failed to scan run",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer func() { _ = db.Close() }()
			tt.setupMock(mock)

			err = tt.call(NewWithDB(db, nil))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestStore_NotOpened(t *testing.T) {
	s := &Store{}
	assert.Error(t, s.Record(context.Background(), &Run{}))
	_, err := s.Recent(context.Background(), "", 1)
	assert.Error(t, err)
	assert.Error(t, s.Migrate())
	assert.NoError(t, s.Close())
}
