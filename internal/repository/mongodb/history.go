package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/planbird/planbird/internal/domain"
)

// HistoryRepository is the append-only audit store backed by a MongoDB
// collection. Records are inserted and deleted (with their task), never
// updated.
type HistoryRepository struct {
	collection *mongo.Collection
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(client *Client, collection string) *HistoryRepository {
	return &HistoryRepository{collection: client.Collection(collection)}
}

// Create appends an audit record
func (r *HistoryRepository) Create(ctx context.Context, record *domain.History) error {
	doc := bson.M{
		"_id":            record.ID.String(),
		"task_id":        record.TaskID.String(),
		"editor_id":      record.EditorID.String(),
		"changed_fields": record.ChangedFields,
		"old_values":     normalizeValues(record.OldValues),
		"new_values":     normalizeValues(record.NewValues),
		"created_at":     record.CreatedAt,
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert history record: %w", err)
	}

	return nil
}

// ListByTask returns all records for a task, newest first
func (r *HistoryRepository) ListByTask(ctx context.Context, taskID uuid.UUID) ([]domain.History, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"task_id": taskID.String()}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list history records: %w", err)
	}
	defer cursor.Close(ctx)

	records := []domain.History{}
	for cursor.Next(ctx) {
		var doc historyDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode history record: %w", err)
		}

		record, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("history cursor error: %w", err)
	}

	return records, nil
}

// DeleteByTask removes all records of a task. Used only by the task delete
// cascade; history rows never outlive their task.
func (r *HistoryRepository) DeleteByTask(ctx context.Context, taskID uuid.UUID) error {
	if _, err := r.collection.DeleteMany(ctx, bson.M{"task_id": taskID.String()}); err != nil {
		return fmt.Errorf("failed to delete history records: %w", err)
	}

	return nil
}

// normalizeValues flattens typed diff values to plain strings/numbers so the
// stored documents stay readable and id references can be resolved back into
// names on read.
func normalizeValues(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		switch typed := v.(type) {
		case uuid.UUID:
			out[k] = typed.String()
		case time.Time:
			out[k] = typed.Format(time.RFC3339)
		case fmt.Stringer:
			out[k] = typed.String()
		default:
			out[k] = v
		}
	}
	return out
}

// historyDoc is the stored shape; ids persist as strings for readable
// documents and simple filters.
type historyDoc struct {
	ID            string         `bson:"_id"`
	TaskID        string         `bson:"task_id"`
	EditorID      string         `bson:"editor_id"`
	ChangedFields []string       `bson:"changed_fields"`
	OldValues     map[string]any `bson:"old_values"`
	NewValues     map[string]any `bson:"new_values"`
	CreatedAt     time.Time      `bson:"created_at"`
}

func (d historyDoc) toDomain() (*domain.History, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid history id %q: %w", d.ID, err)
	}
	taskID, err := uuid.Parse(d.TaskID)
	if err != nil {
		return nil, fmt.Errorf("invalid task id %q: %w", d.TaskID, err)
	}
	editorID, err := uuid.Parse(d.EditorID)
	if err != nil {
		return nil, fmt.Errorf("invalid editor id %q: %w", d.EditorID, err)
	}

	return &domain.History{
		ID:            id,
		TaskID:        taskID,
		EditorID:      editorID,
		ChangedFields: d.ChangedFields,
		OldValues:     d.OldValues,
		NewValues:     d.NewValues,
		CreatedAt:     d.CreatedAt,
	}, nil
}
