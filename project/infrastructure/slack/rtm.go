package slack

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/slack-go/slack"

	"secret-reactor/project/service"
)

// Dispatcher は受信イベントの配送先です
type Dispatcher interface {
	Dispatch(ctx context.Context, env *service.Envelope)
}

// ErrInvalidAuth は接続中に認証が無効になった場合のエラーです
var ErrInvalidAuth = errors.New("slack: 認証が無効です")

// RTMListener は RTM の WebSocket 接続からメッセージイベントを受信します
type RTMListener struct {
	client *SlackClient
	router Dispatcher
	logger *slog.Logger
}

// NewRTMListener は RTMListener を作成します
func NewRTMListener(client *SlackClient, router Dispatcher, logger *slog.Logger) *RTMListener {
	if logger == nil {
		logger = slog.Default()
	}
	return &RTMListener{client: client, router: router, logger: logger}
}

// Start は ctx がキャンセルされるまでイベントを受信し続けます
func (l *RTMListener) Start(ctx context.Context) error {
	dialer, err := cookieDialer(l.client.cookie)
	if err != nil {
		return err
	}

	rtm := l.client.api.NewRTM(slack.RTMOptionDialer(dialer))
	go rtm.ManageConnection()
	defer func() {
		if err := rtm.Disconnect(); err != nil {
			l.logger.Debug("RTM 切断エラー", "error", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-rtm.IncomingEvents:
			if !ok {
				return fmt.Errorf("slack: RTM イベントチャネルが閉じられました")
			}
			if err := l.handle(ctx, msg); err != nil {
				return err
			}
		}
	}
}

func (l *RTMListener) handle(ctx context.Context, msg slack.RTMEvent) error {
	switch ev := msg.Data.(type) {
	case *slack.ConnectedEvent:
		l.logger.Info("RTM 接続", "connection_count", ev.ConnectionCount)
	case *slack.MessageEvent:
		l.router.Dispatch(ctx, &service.Envelope{
			Type:   service.EventTypeMessage,
			Client: l.client,
			Event:  fromRTMMessage(ev),
		})
	case *slack.RTMError:
		l.logger.Error("RTM エラー", "code", ev.Code, "error", ev.Msg)
	case *slack.InvalidAuthEvent:
		return ErrInvalidAuth
	default:
		l.logger.Debug("RTM イベント", "type", msg.Type)
	}
	return nil
}
