package domain

import (
	"fmt"
	"strings"
)

// IdentityKind は名前解決の対象種別です
type IdentityKind int

const (
	// KindUser はSlackユーザー
	KindUser IdentityKind = iota
	// KindChannel はSlackチャンネル
	KindChannel
)

// String は種別名を返します
func (k IdentityKind) String() string {
	switch k {
	case KindUser:
		return "user"
	case KindChannel:
		return "channel"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// IdentityEntry は解決済みの ID と表示名の組です。
// 一度作られたら変更されません
type IdentityEntry struct {
	ID   string
	Kind IdentityKind
	Name string
}

// Detection はシークレット検知の記録です
type Detection struct {
	// ChannelID は検知メッセージのチャンネルID
	ChannelID string `firestore:"channel_id"`

	// MessageTS は検知メッセージのタイムスタンプ
	MessageTS string `firestore:"message_ts"`

	// AuthorID はメッセージ投稿者のユーザーID
	AuthorID string `firestore:"author_id"`

	// AuthorName と ChannelName は検知時点の表示名
	AuthorName  string `firestore:"author_name"`
	ChannelName string `firestore:"channel_name"`

	// DetectedAt は検知時刻（Unix秒）
	DetectedAt int64 `firestore:"detected_at"`

	// Reacted はリアクション付与に成功したかどうか
	Reacted bool `firestore:"reacted"`

	// Redacted はメッセージの上書きに成功したかどうか
	Redacted bool `firestore:"redacted"`
}

// DetectionKey は検知レコードの一意キーを生成します
func DetectionKey(channelID, messageTS string) string {
	return fmt.Sprintf("%s:%s", channelID, messageTS)
}

// Validate はDetectionの必須項目を検証します
func (d Detection) Validate() error {
	if strings.TrimSpace(d.ChannelID) == "" {
		return fmt.Errorf("%w: ChannelIDは必須項目です", ErrInvalid)
	}
	if strings.TrimSpace(d.MessageTS) == "" {
		return fmt.Errorf("%w: MessageTSは必須項目です", ErrInvalid)
	}
	if d.DetectedAt <= 0 {
		return fmt.Errorf("%w: DetectedAtは0より大きい必要があります", ErrInvalid)
	}
	return nil
}
