package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	mongodoc "github.com/sngm3741/rank-relay/api/internal/infrastructure/mongo"
	"github.com/sngm3741/rank-relay/api/internal/relay/domain"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type seedOptions struct {
	envFile        string
	failureCount   int
	dropCollection bool
	randomSeed     int64
}

var (
	playerNames = []string{"Steve99", "AlexTheGreat", "creeper_hunter", "NotchFan", "redstone_kid", "EnderQueen"}
	ranks       = []string{"VIP", "VIP+", "MVP", "MVP+", "Legend"}
	prices      = map[string]string{"VIP": "3.00", "VIP+": "5.00", "MVP": "8.00", "MVP+": "12.00", "Legend": "20.00"}
	failures    = []string{
		"discord webhook status=429: You are being rate limited.",
		"discord webhook status=500: Internal Server Error",
		"context deadline exceeded (Client.Timeout exceeded while awaiting headers)",
		"Discord Webhook URL が設定されていません",
	}
)

func main() {
	opts := parseFlags()

	if err := godotenv.Load(opts.envFile); err != nil {
		log.Printf("WARN: %s を読み込めませんでした (環境変数のみ使用): %v", opts.envFile, err)
	}

	mongoURI := envOrDefault("MONGO_URI", "mongodb://localhost:27017")
	dbName := envOrDefault("MONGO_DB", "rank-relay")
	collectionName := envOrDefault("FAILED_NOTIFICATION_COLLECTION", "failed_notifications")

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatalf("MongoDB 接続に失敗しました: %v", err)
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	db := client.Database(dbName)

	if opts.dropCollection {
		if err := db.Collection(collectionName).Drop(ctx); err != nil {
			// Drop は存在しない場合も err を返すので warning ログにとどめる
			log.Printf("WARN: コレクション %s の削除に失敗: %v", collectionName, err)
		} else {
			log.Printf("既存コレクションを削除しました")
		}
	}

	repo := mongodoc.NewFailedNotificationRepository(db, collectionName)
	if err := repo.EnsureIndexes(ctx); err != nil {
		log.Fatalf("インデックス作成に失敗しました: %v", err)
	}

	rng := rand.New(rand.NewSource(opts.randomSeed))
	items := generateFailedNotifications(rng, opts.failureCount, time.Now())
	for i := range items {
		if err := repo.Record(ctx, &items[i]); err != nil {
			log.Fatalf("通知失敗データの挿入に失敗しました: %v", err)
		}
	}

	log.Printf("Seed 完了: failedNotifications=%d", len(items))
	log.Printf("Mongo: %s / %s.%s (seed=%d)", mongoURI, dbName, collectionName, opts.randomSeed)
}

func parseFlags() seedOptions {
	var opts seedOptions
	flag.StringVar(&opts.envFile, "env", ".env", "読み込む env ファイルのパス")
	flag.IntVar(&opts.failureCount, "count", 20, "生成する配信失敗レコード数")
	flag.BoolVar(&opts.dropCollection, "drop", true, "既存コレクションを削除してから投入する")
	defaultSeed := time.Now().UnixNano()
	flag.Int64Var(&opts.randomSeed, "seed", defaultSeed, "乱数シード（再現用）")
	flag.Parse()

	if opts.failureCount < 0 {
		opts.failureCount = 0
	}
	return opts
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// generateFailedNotifications は本番と同じ Embed 生成処理で payload を組み立てた配信失敗レコードを返す。
// 直近 72 時間に散らばった createdAt を持つ。
func generateFailedNotifications(rng *rand.Rand, count int, now time.Time) []domain.FailedNotification {
	items := make([]domain.FailedNotification, 0, count)
	for i := 0; i < count; i++ {
		created := now.Add(-time.Duration(rng.Intn(72*60)) * time.Minute).UTC()
		player := playerNames[rng.Intn(len(playerNames))]
		rank := ranks[rng.Intn(len(ranks))]

		var (
			source    string
			reference string
			msg       domain.WebhookMessage
		)
		if rng.Intn(2) == 0 {
			source = domain.SourceProof
			reference = player
			msg = domain.NewProofMessage(domain.Submission{
				Minecraft: player,
				Discord:   fmt.Sprintf("%s#%04d", strings.ToLower(player), rng.Intn(10000)),
				Rank:      rank,
			}, created)
		} else {
			source = domain.SourcePayPal
			reference = fmt.Sprintf("%017X", rng.Int63())
			body := fmt.Sprintf("payment_status=Completed&custom=%s&txn_id=%s&mc_gross=%s&mc_currency=USD",
				player, reference, prices[rank])
			msg = domain.NewPaymentMessage(domain.ParsePaymentCallback([]byte(body)), created)
		}

		payload, err := json.Marshal(msg)
		if err != nil {
			payload = []byte("{}")
		}
		items = append(items, domain.FailedNotification{
			ID:        uuid.NewString(),
			Source:    source,
			Reference: reference,
			Payload:   string(payload),
			Error:     failures[rng.Intn(len(failures))],
			Attempts:  1,
			Status:    domain.FailureStatus,
			CreatedAt: created,
		})
	}
	return items
}
