package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sngm3741/rank-relay/api/internal/config"
	"github.com/sngm3741/rank-relay/api/internal/infrastructure/discord"
	mongodoc "github.com/sngm3741/rank-relay/api/internal/infrastructure/mongo"
	"github.com/sngm3741/rank-relay/api/internal/infrastructure/paypal"
	"github.com/sngm3741/rank-relay/api/internal/infrastructure/upload"
	adminhttp "github.com/sngm3741/rank-relay/api/internal/interfaces/http/admin"
	commonhttp "github.com/sngm3741/rank-relay/api/internal/interfaces/http/common"
	publichttp "github.com/sngm3741/rank-relay/api/internal/interfaces/http/public"
	relayapp "github.com/sngm3741/rank-relay/api/internal/relay/application"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Server は HTTP サーバーのライフサイクルを管理し、Public/Admin の各ハンドラへ依存注入するコンポジションルート。
type Server struct {
	logger         *log.Logger
	client         *mongo.Client
	addr           string
	allowedOrigins []string
	adminJWT       *config.JWTConfig
	maxUploadBytes int64
	uploads        *upload.Stager
	proofService   relayapp.ProofService
	paymentService relayapp.PaymentService
	failureQuery   relayapp.FailureQuery
}

// Run はHTTPサーバーを起動し、シグナル受信まで待機する。
func (s *Server) Run() error {
	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Printf("HTTP サーバー起動: http://localhost%s", s.addr)
		errChan <- httpServer.ListenAndServe()
	}()

	return waitForShutdown(httpServer, errChan, s)
}

// Routes はミドルウェアとルーティングを組み立てたハンドラを返す。
func (s *Server) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(withCORS(s.allowedOrigins))

	router.Get("/healthz", s.healthHandler())

	publicHandler := publichttp.NewHandler(publichttp.Config{
		Logger:         s.logger,
		Proofs:         s.proofService,
		Payments:       s.paymentService,
		Uploads:        s.uploads,
		MaxUploadBytes: s.maxUploadBytes,
	})
	publicHandler.Register(router)

	if s.failureQuery != nil && s.adminJWT != nil {
		adminHandler := adminhttp.NewHandler(adminhttp.Config{
			Logger:   s.logger,
			Failures: s.failureQuery,
		})
		router.Route("/admin", func(r chi.Router) {
			r.Use(s.authMiddleware)
			adminHandler.Register(r)
		})
	}

	return router
}

// withCORS は許可されたオリジン情報をもとに CORS ヘッダーを付与するミドルウェアを返す。
func withCORS(origins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{})
	allowAll := false
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if origin == "*" {
			allowAll = true
			continue
		}
		allowed[origin] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			if origin == "" || (!allowAll && !originAllowed(origin, allowed)) {
				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusNoContent)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization,Content-Type")
			w.Header().Set("Access-Control-Max-Age", "300")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// originAllowed は指定された Origin が許可リストに含まれるか判定する。
func originAllowed(origin string, allowed map[string]struct{}) bool {
	if len(allowed) == 0 {
		return true
	}
	_, ok := allowed[origin]
	return ok
}

// healthHandler は MongoDB が構成されていれば疎通確認も行う。
func (s *Server) healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.client != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()

			if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
				s.logger.Printf("MongoDB への疎通確認に失敗: %v", err)
				commonhttp.WriteJSON(s.logger, w, http.StatusServiceUnavailable, map[string]string{
					"status": "degraded",
				})
				return
			}
		}

		commonhttp.WriteJSON(s.logger, w, http.StatusOK, map[string]string{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	}
}

// authMiddleware は Authorization ヘッダーから JWT を検証し、運用者をコンテキストへ詰める。
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
		if authHeader == "" {
			commonhttp.WriteError(s.logger, w, http.StatusUnauthorized, "Authorization ヘッダーがありません")
			return
		}

		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			commonhttp.WriteError(s.logger, w, http.StatusUnauthorized, "Bearer トークンを指定してください")
			return
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
		if tokenString == "" {
			commonhttp.WriteError(s.logger, w, http.StatusUnauthorized, "アクセストークンが空です")
			return
		}

		claims, err := s.parseAuthToken(tokenString)
		if err != nil {
			commonhttp.WriteError(s.logger, w, http.StatusUnauthorized, err.Error())
			return
		}

		ctx := commonhttp.ContextWithOperator(r.Context(), commonhttp.Operator{
			Subject: claims.Subject,
			Name:    claims.Name,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type authClaims struct {
	jwt.RegisteredClaims
	Name string `json:"name,omitempty"`
}

// parseAuthToken は HS256 署名と Issuer/Audience を検証する。
func (s *Server) parseAuthToken(tokenString string) (*authClaims, error) {
	if s.adminJWT == nil {
		return nil, fmt.Errorf("認証設定が構成されていません")
	}

	opts := []jwt.ParserOption{
		jwt.WithLeeway(30 * time.Second),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if s.adminJWT.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.adminJWT.Issuer))
	}
	if s.adminJWT.Audience != "" {
		opts = append(opts, jwt.WithAudience(s.adminJWT.Audience))
	}

	claims := &authClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.adminJWT.Secret, nil
	}, opts...)
	if err != nil || !token.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("アクセストークンが無効です")
	}
	return claims, nil
}

// shutdown は MongoDB クライアントをタイムアウト付きで切断する。
func (s *Server) shutdown(ctx context.Context) {
	if s.client == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.client.Disconnect(shutdownCtx); err != nil {
		s.logger.Printf("MongoDB 切断時にエラー: %v", err)
	}
}

// waitForShutdown は ListenAndServe の終了と OS シグナルを監視し、graceful shutdown を実現する。
func waitForShutdown(httpServer *http.Server, errChan <-chan error, srv *Server) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	var runErr error
	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			runErr = err
		}
	case sig := <-sigChan:
		srv.logger.Printf("シグナル %s を受信。サーバー停止処理を開始します。", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			srv.logger.Printf("サーバー停止時にエラー: %v", err)
		}
	}

	srv.shutdown(context.Background())
	return runErr
}

// New は Config と (任意の) Mongo クライアントからアプリケーションサービスとハンドラを組み立てる。
func New(cfg config.Config, client *mongo.Client) (*Server, error) {
	logger := cfg.ServerLog
	if logger == nil {
		logger = log.Default()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		loc = time.Local
		logger.Printf("タイムゾーン %s の読み込みに失敗: %v, ローカル時刻を使用します", cfg.Timezone, err)
	}

	stager, err := upload.NewStager(cfg.UploadDir)
	if err != nil {
		return nil, err
	}

	srv := &Server{
		logger:         logger,
		client:         client,
		addr:           cfg.Addr,
		allowedOrigins: append([]string(nil), cfg.AllowedOrigins...),
		adminJWT:       cfg.AdminJWT,
		maxUploadBytes: cfg.MaxUploadBytes,
		uploads:        stager,
	}

	var recorder relayapp.FailureRecorder
	if client != nil {
		repo := mongodoc.NewFailedNotificationRepository(client.Database(cfg.MongoDatabase), cfg.FailedNotificationCollection)
		recorder = repo
		srv.failureQuery = repo
	}

	webhook := discord.NewClient(&http.Client{Timeout: cfg.WebhookTimeout}, cfg.DiscordWebhookURL)
	verifier := paypal.NewVerifier(&http.Client{Timeout: cfg.PayPalTimeout}, cfg.PayPalIPNURL)

	srv.proofService = relayapp.NewProofService(webhook, recorder, loc, logger)
	srv.paymentService = relayapp.NewPaymentService(verifier, webhook, recorder, logger)

	return srv, nil
}
