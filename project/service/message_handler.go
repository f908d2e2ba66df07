package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"secret-reactor/project/domain"
)

// 検知対象外のサブタイプ（自分の編集やリアクションで再検知しないため）
const (
	SubTypeMessageChanged = "message_changed"
	SubTypeBotMessage     = "bot_message"
	SubTypeMessageReplied = "message_replied"
)

// 投稿者・チャンネルが欠けているイベントの表示名
const (
	MissingUser    = "missing user"
	MissingChannel = "missing channel"
)

// SecretDispatcher は検知時の対応を行います
type SecretDispatcher interface {
	OnSecretDetected(ctx context.Context, client SlackPort, ev *InboundEvent) DispatchOutcome
}

// MessageHandler はメッセージイベントごとの検知パイプラインです
type MessageHandler struct {
	names      NameResolver
	dispatcher SecretDispatcher
	detections domain.DetectionRepository
	console    *Console
	logger     *slog.Logger

	detect func(text string) bool
	now    func() time.Time
}

// NewMessageHandler は MessageHandler を作成します
// detections が nil の場合は検知レコードを残しません
func NewMessageHandler(
	names NameResolver,
	dispatcher SecretDispatcher,
	detections domain.DetectionRepository,
	console *Console,
	logger *slog.Logger,
) *MessageHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &MessageHandler{
		names:      names,
		dispatcher: dispatcher,
		detections: detections,
		console:    console,
		logger:     logger,
		detect:     LooksLikeSecret,
		now:        time.Now,
	}
}

// Handle は EventRouter に登録するハンドラーです
func (h *MessageHandler) Handle(ctx context.Context, env *Envelope) error {
	ev := env.Event
	if ev == nil {
		return fmt.Errorf("message handler: イベント本体がありません (type=%s)", env.Type)
	}
	h.logger.Debug("受信", "event", fmt.Sprintf("%+v", *ev))

	switch ev.SubType {
	case SubTypeMessageChanged, SubTypeBotMessage:
		h.logger.Warn("未対応のサブタイプ", "subtype", ev.SubType)
		return nil
	case SubTypeMessageReplied:
		h.logger.Info("スレッド返信", "message", fmt.Sprintf("%+v", ev.SubMessage))
	}

	h.logger.Info("受信メッセージ", "user_id", ev.AuthorID)

	ev.AuthorName = MissingUser
	if ev.AuthorID != "" {
		ev.AuthorName = h.names.ResolveName(ctx, ev.AuthorID, domain.KindUser)
	}

	ev.ChannelName = MissingChannel
	if ev.ChannelID != "" {
		ev.ChannelName = h.names.ResolveName(ctx, ev.ChannelID, domain.KindChannel)
	}

	text := extractText(ev)
	if text == "" {
		h.logger.Warn("本文が見つからないため処理しません", "channel", ev.ChannelID, "ts", ev.TS, "user_id", ev.AuthorID)
		return nil
	}

	if ts, err := strconv.ParseFloat(ev.TS, 64); err != nil {
		h.logger.Warn("タイムスタンプ解析失敗", "ts", ev.TS, "error", err)
	} else {
		ev.Timestamp = ts
	}
	h.logger.Info("メッセージタイムスタンプ", "timestamp", ev.Timestamp)

	if !h.detect(text) {
		return nil
	}

	if env.Client == nil {
		return fmt.Errorf("message handler: Slack クライアントがありません (channel=%s, ts=%s)", ev.ChannelID, ev.TS)
	}

	if dup := h.record(ctx, ev); dup {
		h.logDuplicate(ctx, ev)
		return nil
	}

	if h.console != nil {
		h.console.Print(ctx, fmt.Sprintf("%s@%s: %s", ev.AuthorName, ev.ChannelName, Highlight(text)))
	}

	outcome := h.dispatcher.OnSecretDetected(ctx, env.Client, ev)
	h.logger.Debug("ディスパッチ結果", "channel", ev.ChannelID, "ts", ev.TS,
		"reacted", outcome.Reacted, "redaction_attempted", outcome.RedactionAttempted, "redacted", outcome.Redacted)

	if h.detections != nil {
		if err := h.detections.MarkOutcome(ctx, ev.ChannelID, ev.TS, outcome.Reacted, outcome.Redacted); err != nil {
			h.logger.Error("検知結果の記録失敗", "channel", ev.ChannelID, "ts", ev.TS, "error", err)
		}
	}

	return nil
}

// record は検知レコードを作成し、既に記録済みなら true を返します
func (h *MessageHandler) record(ctx context.Context, ev *InboundEvent) bool {
	if h.detections == nil {
		return false
	}

	d := &domain.Detection{
		ChannelID:   ev.ChannelID,
		MessageTS:   ev.TS,
		AuthorID:    ev.AuthorID,
		AuthorName:  ev.AuthorName,
		ChannelName: ev.ChannelName,
		DetectedAt:  h.now().Unix(),
	}
	err := h.detections.Create(ctx, d)
	switch {
	case err == nil:
		return false
	case errors.Is(err, domain.ErrAlreadyRecorded):
		return true
	default:
		// 記録に失敗しても対応は続ける
		h.logger.Error("検知レコード作成失敗", "channel", ev.ChannelID, "ts", ev.TS, "error", err)
		return false
	}
}

// logDuplicate は既存の検知レコードの内容を添えてスキップをログに残します
func (h *MessageHandler) logDuplicate(ctx context.Context, ev *InboundEvent) {
	prev, err := h.detections.Find(ctx, ev.ChannelID, ev.TS)
	if err != nil {
		h.logger.Info("検知済みのメッセージのためスキップ", "channel", ev.ChannelID, "ts", ev.TS, "error", err)
		return
	}
	h.logger.Info("検知済みのメッセージのためスキップ", "channel", ev.ChannelID, "ts", ev.TS,
		"detected_at", prev.DetectedAt, "reacted", prev.Reacted, "redacted", prev.Redacted)
}

// extractText はトップレベルの本文、なければ入れ子 message の本文を返します
func extractText(ev *InboundEvent) string {
	if ev.Text != "" {
		return ev.Text
	}
	if ev.SubMessage != nil {
		return ev.SubMessage.Text
	}
	return ""
}
