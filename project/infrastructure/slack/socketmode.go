package slack

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"

	"secret-reactor/project/service"
)

// SocketModeListener は Socket Mode でメッセージイベントを受信します
// client は slack.OptionAppLevelToken 付きで作成されている必要があります
type SocketModeListener struct {
	client *SlackClient
	router Dispatcher
	logger *slog.Logger
}

// NewSocketModeListener は SocketModeListener を作成します
func NewSocketModeListener(client *SlackClient, router Dispatcher, logger *slog.Logger) *SocketModeListener {
	if logger == nil {
		logger = slog.Default()
	}
	return &SocketModeListener{client: client, router: router, logger: logger}
}

// Start は ctx がキャンセルされるまでイベントを受信し続けます
func (l *SocketModeListener) Start(ctx context.Context) error {
	sm := socketmode.New(l.client.api)

	runErr := make(chan error, 1)
	go func() {
		runErr <- sm.RunContext(ctx)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-runErr:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("slack: Socket Mode 接続終了: %w", err)
		case evt, ok := <-sm.Events:
			if !ok {
				return fmt.Errorf("slack: Socket Mode イベントチャネルが閉じられました")
			}
			l.handle(ctx, sm, evt)
		}
	}
}

// acknowledger は Socket Mode のエンベロープに受信確認を返します
type acknowledger interface {
	Ack(req socketmode.Request, payload ...interface{})
}

func (l *SocketModeListener) handle(ctx context.Context, sm acknowledger, evt socketmode.Event) {
	switch evt.Type {
	case socketmode.EventTypeConnecting:
		l.logger.Info("Socket Mode 接続中")
	case socketmode.EventTypeConnected:
		l.logger.Info("Socket Mode 接続")
	case socketmode.EventTypeConnectionError:
		l.logger.Error("Socket Mode 接続エラー", "data", fmt.Sprintf("%v", evt.Data))
	case socketmode.EventTypeEventsAPI:
		if evt.Request != nil {
			sm.Ack(*evt.Request)
		}
		apiEvent, ok := evt.Data.(slackevents.EventsAPIEvent)
		if !ok {
			l.logger.Warn("Events API ペイロードの型が不正です", "type", fmt.Sprintf("%T", evt.Data))
			return
		}
		if msg, ok := apiEvent.InnerEvent.Data.(*slackevents.MessageEvent); ok {
			l.router.Dispatch(ctx, &service.Envelope{
				Type:   service.EventTypeMessage,
				Client: l.client,
				Event:  FromEventsAPIMessage(msg),
			})
		}
	default:
		l.logger.Debug("Socket Mode イベント", "type", string(evt.Type))
	}
}
