package database

import (
	"context"
	"fmt"
	"testing"
	"testing/fstest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/golang-migrate/migrate/v4/database/stub"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/quizler/internal/config"
	"github.com/at-ishikawa/quizler/schemas"
)

func TestOpen(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.DatabaseConfig
	}{
		{
			name: "creates connection with valid config",
			cfg: config.DatabaseConfig{
				Host:     "localhost",
				Port:     3306,
				Database: "testdb",
				Username: "testuser",
				Password: "testpass",
			},
		},
		{
			name: "creates connection with pool settings and params",
			cfg: config.DatabaseConfig{
				Host:            "db.example.com",
				Port:            3307,
				Database:        "quizler",
				Username:        "admin",
				Password:        "secret",
				TLS:             true,
				Params:          map[string]string{"charset": "utf8mb4"},
				MaxOpenConns:    25,
				MaxIdleConns:    5,
				ConnMaxLifetime: 300,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Open(tt.cfg)
			require.NoError(t, err)
			require.NotNil(t, got)
			defer got.Close()

			assert.Equal(t, "mysql", got.DriverName())
		})
	}
}

func TestRunInTx(t *testing.T) {
	tests := []struct {
		name      string
		fn        func(ctx context.Context, tx *sqlx.Tx) error
		setupMock func(mock sqlmock.Sqlmock)
		wantErr   bool
		errMsg    string
	}{
		{
			name: "commits on success",
			fn: func(ctx context.Context, tx *sqlx.Tx) error {
				return nil
			},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectCommit()
			},
		},
		{
			name: "rolls back on error",
			fn: func(ctx context.Context, tx *sqlx.Tx) error {
				return fmt.Errorf("something failed")
			},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectRollback()
			},
			wantErr: true,
			errMsg:  "something failed",
		},
		{
			name: "begin error",
			fn: func(ctx context.Context, tx *sqlx.Tx) error {
				return nil
			},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin().WillReturnError(fmt.Errorf("begin failed"))
			},
			wantErr: true,
			errMsg:  "begin transaction",
		},
		{
			name: "commit error",
			fn: func(ctx context.Context, tx *sqlx.Tx) error {
				return nil
			},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectCommit().WillReturnError(fmt.Errorf("commit failed"))
			},
			wantErr: true,
			errMsg:  "commit transaction",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			sqlxDB := sqlx.NewDb(db, "mysql")
			tt.setupMock(mock)

			err = RunInTx(context.Background(), sqlxDB, tt.fn)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRunMigrations(t *testing.T) {
	t.Run("applies pending migrations once", func(t *testing.T) {
		migrations := fstest.MapFS{
			"migrations/000002_second.up.sql":   {Data: []byte("CREATE TABLE b (id INT)")},
			"migrations/000002_second.down.sql": {Data: []byte("DROP TABLE b")},
			"migrations/000001_first.up.sql":    {Data: []byte("CREATE TABLE a (id INT)")},
			"migrations/000001_first.down.sql":  {Data: []byte("DROP TABLE a")},
			"migrations/README.md":              {Data: []byte("ignored")},
		}
		driver, err := stub.WithInstance(nil, &stub.Config{})
		require.NoError(t, err)
		s := driver.(*stub.Stub)

		require.NoError(t, runMigrations(migrations, "stub", driver))
		assert.Equal(t, []string{"CREATE TABLE a (id INT)", "CREATE TABLE b (id INT)"}, s.MigrationSequence)
		assert.Equal(t, 2, s.CurrentVersion)
		assert.False(t, s.IsDirty)

		// Applied versions are not run again.
		require.NoError(t, runMigrations(migrations, "stub", driver))
		assert.Len(t, s.MigrationSequence, 2)

		migrations["migrations/000003_alter.up.sql"] = &fstest.MapFile{Data: []byte("ALTER TABLE a ADD COLUMN name TEXT")}
		require.NoError(t, runMigrations(migrations, "stub", driver))
		assert.Equal(t, []string{
			"CREATE TABLE a (id INT)",
			"CREATE TABLE b (id INT)",
			"ALTER TABLE a ADD COLUMN name TEXT",
		}, s.MigrationSequence)
		assert.Equal(t, 3, s.CurrentVersion)
	})

	t.Run("embedded migrations", func(t *testing.T) {
		driver, err := stub.WithInstance(nil, &stub.Config{})
		require.NoError(t, err)

		require.NoError(t, runMigrations(schemas.Migrations, "stub", driver))
		s := driver.(*stub.Stub)
		require.Len(t, s.MigrationSequence, 1)
		assert.Contains(t, s.MigrationSequence[0], "CREATE TABLE IF NOT EXISTS quiz_history")
		assert.Equal(t, 1, s.CurrentVersion)
	})

	t.Run("missing migrations directory", func(t *testing.T) {
		driver, err := stub.WithInstance(nil, &stub.Config{})
		require.NoError(t, err)

		err = runMigrations(fstest.MapFS{}, "stub", driver)
		assert.ErrorContains(t, err, "iofs.New")
	})
}

func TestMigrate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT DATABASE()").WillReturnError(fmt.Errorf("access denied"))

	err = Migrate(context.Background(), sqlx.NewDb(db, "mysql"), schemas.Migrations)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mysql.WithConnection")
	assert.Contains(t, err.Error(), "access denied")
	assert.NoError(t, mock.ExpectationsWereMet())
}
