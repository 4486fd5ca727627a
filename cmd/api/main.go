package main

import (
	"context"
	"log"

	"github.com/sngm3741/rank-relay/api/internal/config"
	mongodoc "github.com/sngm3741/rank-relay/api/internal/infrastructure/mongo"
	"github.com/sngm3741/rank-relay/api/internal/server"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	cfg := config.Load()

	var client *mongo.Client
	if cfg.MongoEnabled() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.MongoTimeout)
		defer cancel()

		clientOptions := options.Client().ApplyURI(cfg.MongoURI).SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))
		c, err := mongo.Connect(ctx, clientOptions)
		if err != nil {
			cfg.ServerLog.Fatalf("MongoDB 接続に失敗しました: %v", err)
		}
		client = c

		repo := mongodoc.NewFailedNotificationRepository(client.Database(cfg.MongoDatabase), cfg.FailedNotificationCollection)
		if err := repo.EnsureIndexes(ctx); err != nil {
			cfg.ServerLog.Printf("failed_notifications のインデックス作成に失敗: %v", err)
		}
	}

	app, err := server.New(cfg, client)
	if err != nil {
		log.Fatalf("サーバーの初期化に失敗: %v", err)
	}
	if err := app.Run(); err != nil {
		log.Fatalf("サーバー起動に失敗: %v", err)
	}
}
