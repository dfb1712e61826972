// internal/journal/journal.go
package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var marshal = jsoniter.ConfigFastest

// Entry is one audit record. Entries are append-only and written inside the
// same transaction as the state change they describe, so the journal never
// disagrees with the tables it shadows.
type Entry struct {
	ID         int64           `db:"id" json:"id"`
	EntityType string          `db:"entity_type" json:"entity_type"`
	EntityID   uuid.UUID       `db:"entity_id" json:"entity_id"`
	EventType  string          `db:"event_type" json:"event_type"`
	Payload    json.RawMessage `db:"payload" json:"payload"`
	RecordedAt time.Time       `db:"recorded_at" json:"recorded_at"`
}

// Journal appends audit entries for the circulation engine.
type Journal struct {
	db     *sqlx.DB
	tracer trace.Tracer
}

func New(db *sqlx.DB) *Journal {
	return &Journal{
		db:     db,
		tracer: otel.Tracer("librakeep/journal"),
	}
}

// Record appends one entry using the caller's transaction. The entry commits
// or rolls back together with the rest of the composite operation.
func (j *Journal) Record(ctx context.Context, tx *sqlx.Tx, entityType string, entityID uuid.UUID, eventType string, payload any) error {
	ctx, span := j.tracer.Start(ctx, "journal.record",
		trace.WithAttributes(
			attribute.String("entity.type", entityType),
			attribute.String("entity.id", entityID.String()),
			attribute.String("event.type", eventType),
		),
	)
	defer span.End()

	data, err := marshal.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal journal payload: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO journal (entity_type, entity_id, event_type, payload, recorded_at)
		VALUES ($1, $2, $3, $4, $5)
	`, entityType, entityID, eventType, data, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("append journal entry: %w", err)
	}

	return nil
}

// Entries returns the audit trail for one entity, oldest first.
func (j *Journal) Entries(ctx context.Context, entityID uuid.UUID) ([]Entry, error) {
	ctx, span := j.tracer.Start(ctx, "journal.entries",
		trace.WithAttributes(attribute.String("entity.id", entityID.String())),
	)
	defer span.End()

	var entries []Entry
	err := j.db.SelectContext(ctx, &entries, `
		SELECT id, entity_type, entity_id, event_type, payload, recorded_at
		FROM journal
		WHERE entity_id = $1
		ORDER BY id ASC
	`, entityID)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}

	span.SetAttributes(attribute.Int("entries.loaded", len(entries)))
	return entries, nil
}
