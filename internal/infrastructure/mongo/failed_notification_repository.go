package mongo

import (
	"context"
	"time"

	"github.com/sngm3741/rank-relay/api/internal/relay/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const maxRecentLimit = 200

// FailedNotificationRepository は Webhook 配信失敗の記録を MongoDB に保存するリポジトリ。
type FailedNotificationRepository struct {
	collection *mongo.Collection
}

// NewFailedNotificationRepository は failed_notifications コレクションを束縛したリポジトリを生成する。
func NewFailedNotificationRepository(db *mongo.Database, collectionName string) *FailedNotificationRepository {
	return &FailedNotificationRepository{collection: db.Collection(collectionName)}
}

// EnsureIndexes は一覧表示と status 絞り込み用のインデックスを作成する。
func (r *FailedNotificationRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("idx_failed_created"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("idx_failed_status_created"),
		},
	})
	return err
}

// Record は配信失敗を 1 件追加する。再送は行わない。
func (r *FailedNotificationRepository) Record(ctx context.Context, failure *domain.FailedNotification) error {
	if failure == nil {
		return nil
	}
	doc := toFailedNotificationDocument(*failure)
	_, err := r.collection.InsertOne(ctx, doc)
	return err
}

// Recent は新しい順に最大 limit 件の配信失敗を返す。
func (r *FailedNotificationRepository) Recent(ctx context.Context, limit int) ([]domain.FailedNotification, error) {
	if limit <= 0 || limit > maxRecentLimit {
		limit = maxRecentLimit
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]domain.FailedNotification, 0)
	for cursor.Next(ctx) {
		var doc FailedNotificationDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		items = append(items, fromFailedNotificationDocument(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func toFailedNotificationDocument(f domain.FailedNotification) FailedNotificationDocument {
	createdAt := f.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	return FailedNotificationDocument{
		ID:          f.ID,
		Target:      f.Source,
		Reference:   f.Reference,
		Payload:     f.Payload,
		Error:       f.Error,
		Attempts:    f.Attempts,
		Status:      f.Status,
		CreatedAt:   createdAt,
		LastTriedAt: createdAt,
	}
}

func fromFailedNotificationDocument(doc FailedNotificationDocument) domain.FailedNotification {
	return domain.FailedNotification{
		ID:        doc.ID,
		Source:    doc.Target,
		Reference: doc.Reference,
		Payload:   doc.Payload,
		Error:     doc.Error,
		Attempts:  doc.Attempts,
		Status:    doc.Status,
		CreatedAt: doc.CreatedAt,
	}
}
