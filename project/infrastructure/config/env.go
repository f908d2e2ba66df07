package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

// 受信方式
const (
	TransportRTM    = "rtm"
	TransportSocket = "socket"
	TransportEvents = "events"
)

// Config は環境変数から読み込まれるアプリケーション設定を表します
type Config struct {
	// Slack API設定
	SlackBotToken      string
	SlackCookie        string // ブラウザセッションの cookie ヘッダ（任意）
	SlackAppToken      string // Socket Mode 用 xapp- トークン
	SlackSigningSecret string // Events API 用
	Transport          string
	APITimeout         time.Duration
	SlackAPIURL        string // 既定の https://slack.com/api/ を差し替える場合のみ

	// Secret Manager からトークンを読む場合の設定
	GcpProject      string
	TokenSecretName string

	// Firestore設定（未設定なら検知レコードはメモリ上のみ）
	FirestoreProjectID   string
	CollectionDetections string

	// HTTP設定
	Port     string // Events API 受信用
	DiagAddr string // キャッシュ統計エンドポイント

	// ログ設定
	LogFile  string
	LogLevel slog.Level

	// 検知時の動作
	IdentityCacheSize int
	ReactionEmoji     string
	RedactionText     string
}

// SecretSource はシークレット値を取得します
type SecretSource interface {
	GetSecret(ctx context.Context, secretName string) (string, error)
}

// NewConfig は環境変数から設定を読み込み、Config構造体を返します
func NewConfig() (*Config, error) {
	cfg := &Config{
		SlackBotToken:      os.Getenv("SLACK_BOT_TOKEN"),
		SlackCookie:        os.Getenv("SLACK_COOKIE"),
		SlackAppToken:      os.Getenv("SLACK_APP_TOKEN"),
		SlackSigningSecret: os.Getenv("SLACK_SIGNING_SECRET"),
		Transport:          getEnvDefault("SLACK_TRANSPORT", TransportRTM),
		SlackAPIURL:        os.Getenv("SLACK_API_URL"),

		GcpProject:      os.Getenv("GCP_PROJECT"),
		TokenSecretName: os.Getenv("SLACK_TOKEN_SECRET"),

		FirestoreProjectID:   os.Getenv("FIRESTORE_PROJECT_ID"),
		CollectionDetections: getEnvDefault("FS_COLLECTION_DETECTIONS", "detections"),

		Port:     getEnvDefault("PORT", "8080"),
		DiagAddr: getEnvDefault("DIAG_ADDR", "127.0.0.1:5000"),

		LogFile: getEnvDefault("LOG_FILE", "slackbot.log"),

		ReactionEmoji: getEnvDefault("REACTION_EMOJI", "scream"),
		RedactionText: getEnvDefault("REDACTION_TEXT", "ooops"),
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnvDefault("LOG_LEVEL", "debug"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL format: %v", err)
	}

	timeout, err := time.ParseDuration(getEnvDefault("SLACK_API_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SLACK_API_TIMEOUT format: %v", err)
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("SLACK_API_TIMEOUT は0より大きい必要があります: %s", timeout)
	}
	cfg.APITimeout = timeout

	cacheSize, err := strconv.Atoi(getEnvDefault("IDENTITY_CACHE_SIZE", "0"))
	if err != nil || cacheSize < 0 {
		return nil, fmt.Errorf("invalid IDENTITY_CACHE_SIZE: %q", os.Getenv("IDENTITY_CACHE_SIZE"))
	}
	cfg.IdentityCacheSize = cacheSize

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate は起動に必要な設定の組み合わせを検証します
func (c *Config) validate() error {
	if c.SlackBotToken == "" && !c.UsesSecretManager() {
		return fmt.Errorf("required environment variable not set: SLACK_BOT_TOKEN (または SLACK_TOKEN_SECRET と GCP_PROJECT)")
	}

	switch c.Transport {
	case TransportRTM:
	case TransportSocket:
		if c.SlackAppToken == "" {
			return fmt.Errorf("SLACK_TRANSPORT=socket には SLACK_APP_TOKEN が必要です")
		}
	case TransportEvents:
		if c.SlackSigningSecret == "" {
			return fmt.Errorf("SLACK_TRANSPORT=events には SLACK_SIGNING_SECRET が必要です")
		}
	default:
		return fmt.Errorf("invalid SLACK_TRANSPORT: %q (rtm, socket, events のいずれか)", c.Transport)
	}

	return nil
}

// UsesSecretManager はトークンを Secret Manager から取得するかどうかを返します
func (c *Config) UsesSecretManager() bool {
	return c.TokenSecretName != "" && c.GcpProject != ""
}

// UsesFirestore は検知レコードを Firestore に保存するかどうかを返します
func (c *Config) UsesFirestore() bool {
	return c.FirestoreProjectID != ""
}

// ResolveToken は SLACK_BOT_TOKEN が未設定の場合に Secret Manager からトークンを取得します
func (c *Config) ResolveToken(ctx context.Context, src SecretSource) error {
	if c.SlackBotToken != "" {
		return nil
	}
	if !c.UsesSecretManager() {
		return fmt.Errorf("required environment variable not set: SLACK_BOT_TOKEN")
	}

	token, err := src.GetSecret(ctx, c.TokenSecretName)
	if err != nil {
		return fmt.Errorf("SLACK_BOT_TOKEN 取得失敗: %w", err)
	}
	c.SlackBotToken = token
	return nil
}

// getEnvDefault は環境変数を取得し、未設定の場合は def を返します
func getEnvDefault(key, def string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return def
}
