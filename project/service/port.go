package service

import "context"

// SlackPort は Slack API 呼び出しのポートです
type SlackPort interface {
	// GetUserProfile は users.info でユーザー情報を取得します
	GetUserProfile(ctx context.Context, userID string) (*UserProfile, error)

	// GetChannelName は conversations.info でチャンネル名を取得します
	GetChannelName(ctx context.Context, channelID string) (string, error)

	// AuthTest は現在認証されている自分自身のIDを確認します
	AuthTest(ctx context.Context) (*AuthIdentity, error)

	// AddReaction はメッセージに絵文字リアクションを付与します
	AddReaction(ctx context.Context, req ReactionRequest) error

	// UpdateMessage はメッセージ本文を上書きします（自分の投稿のみ可能）
	UpdateMessage(ctx context.Context, req RedactionRequest) error
}

// DirectoryPort は名前解決に必要な参照系の Slack API です
type DirectoryPort interface {
	GetUserProfile(ctx context.Context, userID string) (*UserProfile, error)
	GetChannelName(ctx context.Context, channelID string) (string, error)
}

// NameResolver は ID を表示名に解決します
type NameResolver interface {
	ResolveName(ctx context.Context, id string, kind IdentityKind) string
}
