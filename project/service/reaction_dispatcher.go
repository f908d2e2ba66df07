package service

import (
	"context"
	"fmt"
	"log/slog"

	"secret-reactor/project/domain"
)

// 元の投稿を上書きする既定の文字列と既定の絵文字
const (
	DefaultReactionEmoji   = "scream"
	DefaultReplacementText = "ooops"
)

// ReactionDispatcher はシークレット検知時にリアクション付与と自分の投稿の上書きを行います。
// どの段階の失敗もログに残すだけで呼び出し元には返しません
type ReactionDispatcher struct {
	emoji       string
	replacement string
	names       NameResolver
	console     *Console
	logger      *slog.Logger
}

// NewReactionDispatcher は ReactionDispatcher を作成します
// emoji, replacement が空の場合は既定値を使います。names, console は nil でも構いません
func NewReactionDispatcher(emoji, replacement string, names NameResolver, console *Console, logger *slog.Logger) *ReactionDispatcher {
	if emoji == "" {
		emoji = DefaultReactionEmoji
	}
	if replacement == "" {
		replacement = DefaultReplacementText
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ReactionDispatcher{
		emoji:       emoji,
		replacement: replacement,
		names:       names,
		console:     console,
		logger:      logger,
	}
}

// OnSecretDetected は ev のメッセージにリアクションを付け、投稿者が自分自身なら本文を上書きします
func (d *ReactionDispatcher) OnSecretDetected(ctx context.Context, client SlackPort, ev *InboundEvent) DispatchOutcome {
	var out DispatchOutcome

	// 1. リアクション付与（失敗しても上書き判定は続行）
	reaction := ReactionRequest{ChannelID: ev.ChannelID, MessageTS: ev.TS, Emoji: d.emoji}
	if err := client.AddReaction(ctx, reaction); err != nil {
		out.ReactionErr = err
		d.logger.Error("リアクション付与失敗",
			"channel", ev.ChannelID, "ts", ev.TS, "author", ev.AuthorID, "emoji", d.emoji, "error", err)
	} else {
		out.Reacted = true
		d.logger.Debug("リアクション付与成功", "channel", ev.ChannelID, "ts", ev.TS, "emoji", d.emoji)
	}

	// 2. 自分自身の確認（毎回 auth.test を呼ぶ）
	self, err := client.AuthTest(ctx)
	if err != nil {
		out.AuthErr = err
		d.logger.Error("auth.test 失敗のため上書きをスキップ",
			"channel", ev.ChannelID, "ts", ev.TS, "author", ev.AuthorID, "error", err)
		return out
	}
	out.ActingUserID = self.UserID

	actor := self.UserID
	if d.names != nil {
		actor = d.names.ResolveName(ctx, self.UserID, domain.KindUser)
	}
	d.logger.Info("上書き判定", "actor", actor, "actor_id", self.UserID, "author", ev.AuthorID)
	if d.console != nil {
		d.console.Print(ctx, fmt.Sprintf("%s is going to do an update", actor))
	}

	// 3. 他人の投稿は編集できない
	if self.UserID != ev.AuthorID {
		d.logger.Info("投稿者が自分ではないため上書きしません",
			"channel", ev.ChannelID, "ts", ev.TS, "author", ev.AuthorID, "actor_id", self.UserID)
		return out
	}

	out.RedactionAttempted = true
	redaction := RedactionRequest{ChannelID: ev.ChannelID, MessageTS: ev.TS, ReplacementText: d.replacement}
	if err := client.UpdateMessage(ctx, redaction); err != nil {
		out.RedactionErr = err
		d.logger.Error("メッセージ上書き失敗",
			"channel", ev.ChannelID, "ts", ev.TS, "author", ev.AuthorID, "error", err)
		return out
	}

	out.Redacted = true
	d.logger.Info("メッセージ上書き成功", "channel", ev.ChannelID, "ts", ev.TS, "author", ev.AuthorID)
	return out
}
