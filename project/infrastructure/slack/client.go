package slack

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/slack-go/slack"

	"secret-reactor/project/service"
)

// SlackClient は service.SlackPort の Slack SDK 実装です
type SlackClient struct {
	api    *slack.Client
	cookie string
}

// NewSlackClient は Slack クライアントを初期化します
// cookie が空でなければすべての API リクエストに Cookie ヘッダとして付与します
func NewSlackClient(token, cookie string, timeout time.Duration, opts ...slack.Option) *SlackClient {
	httpClient := &http.Client{
		Timeout:   timeout,
		Transport: &cookieTransport{cookie: cookie, base: http.DefaultTransport},
	}

	options := append([]slack.Option{slack.OptionHTTPClient(httpClient)}, opts...)
	return &SlackClient{
		api:    slack.New(token, options...),
		cookie: cookie,
	}
}

// GetUserProfile は users.info でユーザー情報を取得します
func (sc *SlackClient) GetUserProfile(ctx context.Context, userID string) (*service.UserProfile, error) {
	u, err := sc.api.GetUserInfoContext(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("slack: ユーザー情報取得失敗 (user=%s): %w", userID, err)
	}

	return &service.UserProfile{
		ID:                    u.ID,
		Name:                  u.Name,
		DisplayNameNormalized: u.Profile.DisplayNameNormalized,
		RealNameNormalized:    u.Profile.RealNameNormalized,
	}, nil
}

// GetChannelName は conversations.info でチャンネル名を取得します
func (sc *SlackClient) GetChannelName(ctx context.Context, channelID string) (string, error) {
	ch, err := sc.api.GetConversationInfoContext(ctx, &slack.GetConversationInfoInput{
		ChannelID: channelID,
	})
	if err != nil {
		return "", fmt.Errorf("slack: チャンネル情報取得失敗 (channel=%s): %w", channelID, err)
	}
	return ch.Name, nil
}

// AuthTest は auth.test で現在のトークンのユーザーを確認します
func (sc *SlackClient) AuthTest(ctx context.Context) (*service.AuthIdentity, error) {
	resp, err := sc.api.AuthTestContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("slack: auth.test 失敗: %w", err)
	}

	return &service.AuthIdentity{
		UserID: resp.UserID,
		User:   resp.User,
		TeamID: resp.TeamID,
		Team:   resp.Team,
	}, nil
}

// AddReaction はメッセージに絵文字リアクションを付与します
func (sc *SlackClient) AddReaction(ctx context.Context, req service.ReactionRequest) error {
	item := slack.NewRefToMessage(req.ChannelID, req.MessageTS)
	if err := sc.api.AddReactionContext(ctx, req.Emoji, item); err != nil {
		return fmt.Errorf("slack: リアクション付与失敗 (channel=%s, ts=%s, emoji=%s): %w", req.ChannelID, req.MessageTS, req.Emoji, err)
	}
	return nil
}

// UpdateMessage はメッセージ本文を上書きします
func (sc *SlackClient) UpdateMessage(ctx context.Context, req service.RedactionRequest) error {
	_, _, _, err := sc.api.UpdateMessageContext(
		ctx,
		req.ChannelID,
		req.MessageTS,
		slack.MsgOptionText(req.ReplacementText, false),
	)
	if err != nil {
		return fmt.Errorf("slack: メッセージ更新失敗 (channel=%s, ts=%s): %w", req.ChannelID, req.MessageTS, err)
	}
	return nil
}
