package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Envelope はルーターに渡される1件のイベントです
// Client はイベントを受信したワークスペースの Slack クライアントです
type Envelope struct {
	Type   string
	Client SlackPort
	Event  *InboundEvent
}

// HandlerFunc はイベント種別ごとに登録する処理です
type HandlerFunc func(ctx context.Context, env *Envelope) error

// EventRouter は受信イベントを購読ハンドラーへ配送します。
// ハンドラーのエラーや panic はログに残すだけで受信ループには返しません
type EventRouter struct {
	mu       sync.RWMutex
	handlers map[string][]HandlerFunc
	logger   *slog.Logger
}

// NewEventRouter は EventRouter を作成します
func NewEventRouter(logger *slog.Logger) *EventRouter {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventRouter{
		handlers: make(map[string][]HandlerFunc),
		logger:   logger,
	}
}

// Subscribe は eventType のイベントを受け取るハンドラーを登録します
func (r *EventRouter) Subscribe(eventType string, h HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[eventType] = append(r.handlers[eventType], h)
}

// Dispatch は env を登録順にハンドラーへ渡します
func (r *EventRouter) Dispatch(ctx context.Context, env *Envelope) {
	if env == nil {
		return
	}

	r.mu.RLock()
	handlers := r.handlers[env.Type]
	r.mu.RUnlock()

	if len(handlers) == 0 {
		r.logger.Debug("購読ハンドラーなし", "type", env.Type)
		return
	}

	for _, h := range handlers {
		if err := r.call(ctx, h, env); err != nil {
			r.logger.Error("イベント処理エラー", "type", env.Type, "error", err)
		}
	}
}

func (r *EventRouter) call(ctx context.Context, h HandlerFunc, env *Envelope) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("router: ハンドラーが panic しました (type=%s): %v", env.Type, p)
		}
	}()
	return h(ctx, env)
}
