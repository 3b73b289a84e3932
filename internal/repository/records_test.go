package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/erfms/internal/db"
	"github.com/atinyakov/erfms/internal/models"
)

func setupMock(t *testing.T) (*RecordRepository, sqlmock.Sqlmock, func()) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	repo := NewRecordRepository(db.NewHandle(conn, db.DriverPostgres))
	cleanup := func() {
		conn.Close()
	}
	return repo, mock, cleanup
}

func setupSQLite(t *testing.T) *RecordRepository {
	t.Helper()
	h, err := db.Open(context.Background(), db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })
	return NewRecordRepository(h)
}

func TestInsertOne_Postgres(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO records (id, collection, data) VALUES ($1, $2, $3)`)).
		WithArgs(sqlmock.AnyArg(), "project", `{"title":"Roof"}`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := repo.InsertOne(context.Background(), "project", models.Record{"title": "Roof"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("expected uuid identifier, got %q", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestInsertOne_PostgresError(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO records`)).
		WillReturnError(&pq.Error{Code: "53300", Message: "too many connections"})

	_, err := repo.InsertOne(context.Background(), "task", models.Record{"title": "x"})
	if err == nil || !strings.Contains(err.Error(), "InsertOne failed") {
		t.Fatalf("expected InsertOne failed error, got %v", err)
	}
	if !strings.Contains(err.Error(), "SQLSTATE 53300") {
		t.Errorf("expected SQLSTATE in error, got %v", err)
	}
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		t.Errorf("expected wrapped *pq.Error, got %T", err)
	}
}

func TestFindMany_Postgres(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"id", "data"}).
		AddRow("a1", []byte(`{"title":"Roof","budget_eur":1200.5}`)).
		AddRow("a2", []byte(`{"title":"Walls","version":3}`))

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, data FROM records WHERE collection = $1 LIMIT $2`)).
		WithArgs("project", 10).
		WillReturnRows(rows)

	docs, err := repo.FindMany(context.Background(), "project", nil, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if docs[0][models.NativeIDKey] != "a1" || docs[1][models.NativeIDKey] != "a2" {
		t.Errorf("unexpected identifiers: %v, %v", docs[0][models.NativeIDKey], docs[1][models.NativeIDKey])
	}
	if docs[1]["version"] != json.Number("3") {
		t.Errorf("expected integer to survive as json.Number, got %#v", docs[1]["version"])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestFindMany_PostgresFilter(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT id, data FROM records WHERE collection = $1 AND data @> $2::jsonb LIMIT $3`)).
		WithArgs("task", `{"status":"done"}`, 5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "data"}))

	docs, err := repo.FindMany(context.Background(), "task", map[string]any{"status": "done"}, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if docs == nil || len(docs) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", docs)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestFindMany_PostgresError(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, data FROM records`)).
		WillReturnError(sql.ErrConnDone)

	_, err := repo.FindMany(context.Background(), "audit", nil, 100)
	if !errors.Is(err, sql.ErrConnDone) {
		t.Errorf("expected wrapped sql.ErrConnDone, got %v", err)
	}
}

func TestFindMany_PostgresCorruptDocument(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, data FROM records`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "data"}).AddRow("bad", []byte(`not json`)))

	_, err := repo.FindMany(context.Background(), "audit", nil, 100)
	if err == nil || !strings.Contains(err.Error(), "decode document bad") {
		t.Errorf("expected decode error, got %v", err)
	}
}

func TestCollectionNames_Postgres(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT DISTINCT collection FROM records ORDER BY collection LIMIT $1`)).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"collection"}).AddRow("client").AddRow("project"))

	names, err := repo.CollectionNames(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assert.Equal(t, []string{"client", "project"}, names)
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestAvailable(t *testing.T) {
	repo := NewRecordRepository(db.Unavailable(db.DriverPostgres))
	assert.False(t, repo.Available())

	repo, _, cleanup := setupMock(t)
	defer cleanup()
	assert.True(t, repo.Available())
}

func TestSQLite_RoundTrip(t *testing.T) {
	repo := setupSQLite(t)
	ctx := context.Background()

	doc := models.Record{
		"title":      "Quote",
		"version":    int64(2),
		"file_url":   nil,
		"project_id": "p1",
	}
	id, err := repo.InsertOne(ctx, "document", doc)
	require.NoError(t, err)

	_, err = repo.InsertOne(ctx, "project", models.Record{"title": "Roof"})
	require.NoError(t, err)

	docs, err := repo.FindMany(ctx, "document", nil, 100)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	got := docs[0]
	assert.Equal(t, id, got[models.NativeIDKey])
	assert.Equal(t, "Quote", got["title"])
	assert.Equal(t, json.Number("2"), got["version"])
	assert.Contains(t, got, "file_url")
	assert.Nil(t, got["file_url"])
}

func TestSQLite_FindManyLimitAndFilter(t *testing.T) {
	repo := setupSQLite(t)
	ctx := context.Background()

	for _, status := range []string{"todo", "done", "done", "in_progress"} {
		_, err := repo.InsertOne(ctx, "task", models.Record{"title": "t", "status": status})
		require.NoError(t, err)
	}

	docs, err := repo.FindMany(ctx, "task", nil, 2)
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	docs, err = repo.FindMany(ctx, "task", map[string]any{"status": "done"}, 100)
	require.NoError(t, err)
	assert.Len(t, docs, 2)
	for _, d := range docs {
		assert.Equal(t, "done", d["status"])
	}

	docs, err = repo.FindMany(ctx, "audit", nil, 100)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestSQLite_CollectionNames(t *testing.T) {
	repo := setupSQLite(t)
	ctx := context.Background()

	for _, c := range []string{"project", "client", "project"} {
		_, err := repo.InsertOne(ctx, c, models.Record{"title": "x"})
		require.NoError(t, err)
	}

	names, err := repo.CollectionNames(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"client", "project"}, names)

	names, err = repo.CollectionNames(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"client"}, names)
}
