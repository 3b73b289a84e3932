// Package repository provides the document store adapter backed by the
// records table of a PostgreSQL or SQLite database.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/atinyakov/erfms/internal/db"
	"github.com/atinyakov/erfms/internal/models"
)

// RecordRepository stores schemaless JSON documents grouped by collection.
type RecordRepository struct {
	h *db.Handle
}

// NewRecordRepository creates a RecordRepository over h. The SQL dialect
// follows h.Driver.
func NewRecordRepository(h *db.Handle) *RecordRepository {
	return &RecordRepository{h: h}
}

// Available reports whether the underlying store is initialized and reachable.
func (r *RecordRepository) Available() bool {
	return r.h.Available()
}

func (r *RecordRepository) sqlite() bool {
	return r.h.Driver == db.DriverSQLite
}

// arg returns the n-th (1-based) bind placeholder of the dialect.
func (r *RecordRepository) arg(n int) string {
	if r.sqlite() {
		return "?"
	}
	return "$" + strconv.Itoa(n)
}

// InsertOne stores doc in collection under a freshly generated identifier
// and returns that identifier.
func (r *RecordRepository) InsertOne(ctx context.Context, collection string, doc models.Record) (string, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}

	id := uuid.NewString()
	query := fmt.Sprintf(
		`INSERT INTO records (id, collection, data) VALUES (%s, %s, %s)`,
		r.arg(1), r.arg(2), r.arg(3),
	)
	if _, err := r.h.DB.ExecContext(ctx, query, id, collection, string(data)); err != nil {
		return "", fmt.Errorf("InsertOne failed: %w", describe(err))
	}
	return id, nil
}

// FindMany returns at most limit documents of collection whose top-level
// keys equal every entry of filter. Each document carries its identifier
// under models.NativeIDKey. Result order is unspecified.
func (r *RecordRepository) FindMany(
	ctx context.Context,
	collection string,
	filter map[string]any,
	limit int,
) ([]models.Document, error) {
	args := []any{collection}
	var b strings.Builder
	b.WriteString(`SELECT id, data FROM records WHERE collection = ` + r.arg(1))

	if len(filter) > 0 {
		if r.sqlite() {
			keys := make([]string, 0, len(filter))
			for k := range filter {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				v, err := json.Marshal(filter[k])
				if err != nil {
					return nil, fmt.Errorf("encode filter %q: %w", k, err)
				}
				b.WriteString(` AND json_extract(data, ?) = json_extract(?, '$')`)
				args = append(args, jsonPath(k), string(v))
			}
		} else {
			f, err := json.Marshal(filter)
			if err != nil {
				return nil, fmt.Errorf("encode filter: %w", err)
			}
			args = append(args, string(f))
			b.WriteString(` AND data @> ` + r.arg(len(args)) + `::jsonb`)
		}
	}

	args = append(args, limit)
	b.WriteString(` LIMIT ` + r.arg(len(args)))

	rows, err := r.h.DB.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("FindMany failed: %w", describe(err))
	}
	defer rows.Close()

	docs := make([]models.Document, 0)
	for rows.Next() {
		var (
			id   string
			data []byte
		)
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		doc, err := decodeDocument(data)
		if err != nil {
			return nil, fmt.Errorf("decode document %s: %w", id, err)
		}
		doc[models.NativeIDKey] = id
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("FindMany failed: %w", describe(err))
	}
	return docs, nil
}

// CollectionNames lists up to limit distinct collection names holding at
// least one document, in lexical order.
func (r *RecordRepository) CollectionNames(ctx context.Context, limit int) ([]string, error) {
	rows, err := r.h.DB.QueryContext(ctx,
		`SELECT DISTINCT collection FROM records ORDER BY collection LIMIT `+r.arg(1), limit)
	if err != nil {
		return nil, fmt.Errorf("CollectionNames failed: %w", describe(err))
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// decodeDocument keeps numbers as json.Number so integers survive the
// round-trip unchanged.
func decodeDocument(data []byte) (models.Document, error) {
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	doc := models.Document{}
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func jsonPath(key string) string {
	return `$."` + strings.ReplaceAll(key, `"`, `\"`) + `"`
}

// describe enriches PostgreSQL server errors with their SQLSTATE.
func describe(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return fmt.Errorf("%s (SQLSTATE %s): %w", pqErr.Message, pqErr.Code, err)
	}
	return err
}
