package database

import (
	"context"
	"regexp"
	"testing"
	"testing/fstest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMigrator(t *testing.T, fsys fstest.MapFS) (*Migrator, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	m, err := NewMigratorFS(sqlx.NewDb(mockDB, "sqlmock"), fsys, "m")
	require.NoError(t, err)
	return m, mock
}

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"m/000001_levels.up.sql":      {Data: []byte("CREATE TABLE levels (id VARCHAR2(26));")},
		"m/000001_levels.down.sql":    {Data: []byte("DROP TABLE levels;")},
		"m/000002_questions.up.sql":   {Data: []byte("-- questions\nCREATE TABLE questions (id VARCHAR2(26));\nCREATE INDEX idx_q ON questions(id);\n")},
		"m/000002_questions.down.sql": {Data: []byte("DROP TABLE questions;")},
	}
}

func TestMigrator_Up(t *testing.T) {
	m, mock := setupMigrator(t, testFS())

	mock.ExpectQuery(regexp.QuoteMeta("FROM user_tables WHERE table_name = 'SCHEMA_MIGRATIONS'")).
		WillReturnRows(sqlmock.NewRows([]string{"COUNT"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE schema_migrations")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT version FROM schema_migrations")).
		WillReturnRows(sqlmock.NewRows([]string{"VERSION"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE questions (id VARCHAR2(26))")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE INDEX idx_q ON questions(id)")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schema_migrations")).
		WithArgs(int64(2), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ran, err := m.Up(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []uint{2}, ran)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrator_Down(t *testing.T) {
	m, mock := setupMigrator(t, testFS())

	mock.ExpectQuery(regexp.QuoteMeta("FROM user_tables")).
		WillReturnRows(sqlmock.NewRows([]string{"COUNT"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT NVL(MAX(version), 0) FROM schema_migrations")).
		WillReturnRows(sqlmock.NewRows([]string{"V"}).AddRow(2))
	mock.ExpectExec(regexp.QuoteMeta("DROP TABLE questions")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM schema_migrations WHERE version = :1")).
		WithArgs(int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	v, err := m.Down(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint(2), v)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmbeddedMigrations(t *testing.T) {
	m, err := NewMigrator(nil)
	require.NoError(t, err)
	defer m.Close()

	first, err := m.src.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), first)

	count := 1
	for v, err := m.src.Next(first); err == nil; v, err = m.src.Next(v) {
		count++
	}
	assert.Equal(t, 4, count)
}

func TestSplitStatements(t *testing.T) {
	stmts := SplitStatements("-- header\nCREATE TABLE a (x NUMBER);\n\n  ;CREATE INDEX i ON a(x);\n")
	assert.Equal(t, []string{"CREATE TABLE a (x NUMBER)", "CREATE INDEX i ON a(x)"}, stmts)
	assert.Empty(t, SplitStatements("  \n-- only a comment\n"))
}
