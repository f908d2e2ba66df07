package service

import "secret-reactor/project/domain"

// IdentityKind は domain.IdentityKind の別名です
type IdentityKind = domain.IdentityKind

// EventTypeMessage はメッセージイベントの種別名です
const EventTypeMessage = "message"

// InboundEvent は受信したSlackメッセージイベントを表します
type InboundEvent struct {
	// Text はメッセージ本文（トップレベル）
	Text string

	// AuthorID はメッセージ投稿者のユーザーID
	AuthorID string

	// ChannelID はメッセージが投稿されたチャンネルのID
	ChannelID string

	// TS はSlack上のメッセージタイムスタンプ（文字列のまま保持）
	TS string

	// SubType は "message_changed", "bot_message" などのサブタイプ
	SubType string

	// SubMessage はスレッド返信などで入れ子になった message フィールド
	SubMessage *SubMessage

	// 以下はルーターが付与する情報
	AuthorName  string
	ChannelName string
	Timestamp   float64
}

// SubMessage は入れ子の message フィールドです
type SubMessage struct {
	User string
	Text string
	TS   string
}

// UserProfile は users.info の結果のうち名前解決に使う項目です
type UserProfile struct {
	ID                    string
	Name                  string
	DisplayNameNormalized string
	RealNameNormalized    string
}

// AuthIdentity は auth.test の結果です
type AuthIdentity struct {
	UserID string
	User   string
	TeamID string
	Team   string
}

// ReactionRequest はリアクション付与の要求です
type ReactionRequest struct {
	ChannelID string
	MessageTS string
	Emoji     string
}

// RedactionRequest はメッセージ上書きの要求です
type RedactionRequest struct {
	ChannelID       string
	MessageTS       string
	ReplacementText string
}

// DispatchOutcome はリアクションディスパッチの結果です
type DispatchOutcome struct {
	Reacted     bool
	ReactionErr error

	// ActingUserID は auth.test で確認した自分自身のID（取得失敗時は空）
	ActingUserID string
	AuthErr      error

	RedactionAttempted bool
	Redacted           bool
	RedactionErr       error
}
