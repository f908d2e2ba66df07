package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gookit/color"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	goslack "github.com/slack-go/slack"

	"secret-reactor/project/domain"
	"secret-reactor/project/handler"
	"secret-reactor/project/infrastructure/config"
	"secret-reactor/project/infrastructure/diagnostics"
	"secret-reactor/project/infrastructure/logging"
	"secret-reactor/project/infrastructure/secret"
	"secret-reactor/project/infrastructure/slack"
	"secret-reactor/project/infrastructure/store"
	"secret-reactor/project/service"
)

// listener は受信方式ごとの受信ループです
type listener interface {
	Start(ctx context.Context) error
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("異常終了: %v", err)
	}
}

// run は起動から停止までを行います。defer した Close はすべて run の終了時に実行されます
func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. 設定を読み込む
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf(".env 読み込み失敗: %v", err)
	}

	cfg, err := config.NewConfig()
	if err != nil {
		return fmt.Errorf("設定読み込み失敗: %w", err)
	}

	logger, logCloser, err := logging.New(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("ログ初期化失敗: %w", err)
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	// Secret Manager（SLACK_TOKEN_SECRET 指定時のみ）
	if cfg.UsesSecretManager() && cfg.SlackBotToken == "" {
		secretMgr, err := secret.NewManager(ctx, cfg.GcpProject)
		if err != nil {
			return fmt.Errorf("Secret Manager 初期化失敗: %w", err)
		}
		err = cfg.ResolveToken(ctx, secretMgr)
		secretMgr.Close()
		if err != nil {
			return fmt.Errorf("トークン取得失敗: %w", err)
		}
	}

	// 2. 依存関係を初期化
	var opts []goslack.Option
	if cfg.Transport == config.TransportSocket {
		opts = append(opts, goslack.OptionAppLevelToken(cfg.SlackAppToken))
	}
	if cfg.SlackAPIURL != "" {
		opts = append(opts, goslack.OptionAPIURL(cfg.SlackAPIURL))
	}
	slackClient := slack.NewSlackClient(cfg.SlackBotToken, cfg.SlackCookie, cfg.APITimeout, opts...)

	self, err := slackClient.AuthTest(ctx)
	if err != nil {
		return fmt.Errorf("Slack 認証失敗: %w", err)
	}
	logger.Info("認証成功", "user_id", self.UserID, "team", self.Team)

	// 検知レコード
	var detections domain.DetectionRepository
	if cfg.UsesFirestore() {
		repo, err := store.NewFirestoreRepo(ctx, cfg.FirestoreProjectID, cfg.CollectionDetections)
		if err != nil {
			return fmt.Errorf("Firestore 初期化失敗: %w", err)
		}
		defer repo.Close()
		detections = repo
	} else {
		detections = store.NewMemoryRepo()
	}

	// 3. サービス層を初期化
	resolver, err := service.NewIdentityResolver(slackClient, cfg.IdentityCacheSize, logger)
	if err != nil {
		return fmt.Errorf("名前解決キャッシュ初期化失敗: %w", err)
	}
	console := service.NewConsole(os.Stdout, resolver, logger)
	dispatcher := service.NewReactionDispatcher(cfg.ReactionEmoji, cfg.RedactionText, resolver, console, logger)
	messages := service.NewMessageHandler(resolver, dispatcher, detections, console, logger)

	router := service.NewEventRouter(logger)
	router.Subscribe(service.EventTypeMessage, messages.Handle)

	// 4. 受信方式を選択
	var servers []*http.Server
	var recv listener
	switch cfg.Transport {
	case config.TransportSocket:
		recv = slack.NewSocketModeListener(slackClient, router, logger)
	case config.TransportEvents:
		r := mux.NewRouter()
		r.Handle("/slack/events", handler.NewEventsHandler(cfg.SlackSigningSecret, slackClient, router, logger)).Methods(http.MethodPost)
		r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ok"))
		}).Methods(http.MethodGet)
		servers = append(servers, &http.Server{
			Addr:              fmt.Sprintf(":%s", cfg.Port),
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		})
	default:
		recv = slack.NewRTMListener(slackClient, router, logger)
	}

	fmt.Println(color.Bold.Sprint("Auth successful. Bot/client connected."))
	fmt.Printf("Starting %s on %s workspace!\n", cfg.Transport, color.Bold.Sprint(self.Team))

	// 5. 起動
	diag := diagnostics.New(cfg.DiagAddr, resolver, logger)

	var wg sync.WaitGroup
	errCh := make(chan error, 2+len(servers))

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := diag.Start(); err != nil {
			errCh <- err
		}
	}()

	for _, srv := range servers {
		wg.Add(1)
		go func(srv *http.Server) {
			defer wg.Done()
			logger.Info("サーバー起動", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("サーバーエラー: %w", err)
			}
		}(srv)
	}

	if recv != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := recv.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				errCh <- err
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("停止シグナルを受信")
	case runErr = <-errCh:
		logger.Error("受信停止", "error", runErr)
		stop()
	}

	// 6. 停止（30秒の猶予）
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := diag.Shutdown(shutdownCtx); err != nil {
		logger.Error("診断サーバー停止失敗", "error", err)
	}
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("サーバー停止失敗", "error", err)
		}
	}
	wg.Wait()

	return runErr
}
