// Package service implements the record gateway and schema introspection on
// top of the store adapter and the schema registry.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/atinyakov/erfms/internal/models"
	"github.com/atinyakov/erfms/internal/schema"
	"github.com/atinyakov/erfms/internal/validation"
)

// DefaultLimit is the number of records listed when the caller gives none.
const DefaultLimit = 100

// ErrServiceUnavailable is returned when the store is unreachable or was
// never initialized. No store call has been made when it is returned.
var ErrServiceUnavailable = errors.New("document store unavailable")

var (
	recordsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "erfms_records_created_total",
			Help: "Number of records stored, by collection.",
		},
		[]string{"collection"},
	)
	validationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "erfms_validation_failures_total",
			Help: "Number of rejected create payloads, by collection and reason.",
		},
		[]string{"collection", "reason"},
	)
)

// StoreError reports a store failure on an operation issued while the store
// was reported available.
type StoreError struct {
	// Op is the store operation, "insert" or "find".
	Op         string
	Collection string
	Err        error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s on %s: %v", e.Op, e.Collection, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// RecordStore defines the store operations needed by the RecordService.
type RecordStore interface {
	// Available reports whether the store can currently serve requests.
	Available() bool
	// InsertOne stores doc and returns the identifier the store assigned.
	InsertOne(ctx context.Context, collection string, doc models.Record) (string, error)
	// FindMany returns up to limit documents of collection matching filter,
	// each carrying its identifier under models.NativeIDKey.
	FindMany(ctx context.Context, collection string, filter map[string]any, limit int) ([]models.Document, error)
}

// RecordService is the generic collection gateway: it validates writes and
// normalizes identifiers on reads.
type RecordService struct {
	store     RecordStore
	registry  *schema.Registry
	validator *validation.Validator
}

// NewRecordService constructs a RecordService over store, validating
// against the schemas of registry.
func NewRecordService(store RecordStore, registry *schema.Registry) *RecordService {
	return &RecordService{
		store:     store,
		registry:  registry,
		validator: validation.New(registry),
	}
}

// ListRecords returns up to limit records of collection, each with its
// identifier under "id". A non-positive limit means DefaultLimit.
func (s *RecordService) ListRecords(ctx context.Context, collection string, limit int) ([]models.Record, error) {
	if !s.store.Available() {
		return nil, ErrServiceUnavailable
	}
	if _, err := s.registry.Lookup(collection); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	docs, err := s.store.FindMany(ctx, collection, map[string]any{}, limit)
	if err != nil {
		return nil, &StoreError{Op: "find", Collection: collection, Err: err}
	}

	out := make([]models.Record, 0, len(docs))
	for _, doc := range docs {
		out = append(out, normalizeID(doc))
	}
	return out, nil
}

// CreateRecord validates payload against the schema of collection and
// stores the normalized record. Validation failures are returned as
// *validation.Error and never reach the store.
func (s *RecordService) CreateRecord(ctx context.Context, collection string, payload map[string]any) (models.CreateResult, error) {
	if !s.store.Available() {
		return models.CreateResult{}, ErrServiceUnavailable
	}

	rec, err := s.validator.Validate(collection, payload)
	if err != nil {
		validationFailures.WithLabelValues(collection, failureReason(err)).Inc()
		return models.CreateResult{}, err
	}

	id, err := s.store.InsertOne(ctx, collection, rec)
	if err != nil {
		return models.CreateResult{}, &StoreError{Op: "insert", Collection: collection, Err: err}
	}
	recordsCreated.WithLabelValues(collection).Inc()
	return models.CreateResult{ID: id}, nil
}

// normalizeID moves the store-native identifier to the "id" key.
func normalizeID(doc models.Document) models.Record {
	rec := make(models.Record, len(doc))
	for k, v := range doc {
		if k == models.NativeIDKey {
			continue
		}
		rec[k] = v
	}
	if native, ok := doc[models.NativeIDKey]; ok {
		if id, ok := native.(string); ok {
			rec[models.IDKey] = id
		} else {
			rec[models.IDKey] = fmt.Sprint(native)
		}
	}
	return rec
}

func failureReason(err error) string {
	var verr *validation.Error
	if errors.As(err, &verr) {
		return string(verr.Reason)
	}
	if errors.Is(err, schema.ErrUnknownCollection) {
		return "unknown_collection"
	}
	return "other"
}
