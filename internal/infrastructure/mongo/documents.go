package mongo

import "time"

// FailedNotificationDocument は failed_notifications コレクションのスキーマを Go 構造体として表現したもの。
type FailedNotificationDocument struct {
	ID          string    `bson:"_id"`
	Target      string    `bson:"target"`
	Reference   string    `bson:"reference,omitempty"`
	Payload     string    `bson:"payload"`
	Error       string    `bson:"error"`
	Attempts    int       `bson:"attempts"`
	Status      string    `bson:"status"`
	CreatedAt   time.Time `bson:"createdAt"`
	LastTriedAt time.Time `bson:"lastTriedAt"`
}
