package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/slack-go/slack/slackevents"

	"secret-reactor/project/infrastructure/httpsec"
	infraslack "secret-reactor/project/infrastructure/slack"
	"secret-reactor/project/service"
)

// EventsHandler は Slack Events API からのイベントを処理します
type EventsHandler struct {
	signingSecret string
	client        service.SlackPort
	router        infraslack.Dispatcher
	logger        *slog.Logger
}

// NewEventsHandler はイベントハンドラーを作成します
func NewEventsHandler(signingSecret string, client service.SlackPort, router infraslack.Dispatcher, logger *slog.Logger) *EventsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventsHandler{
		signingSecret: signingSecret,
		client:        client,
		router:        router,
		logger:        logger,
	}
}

// ServeHTTP は Slack イベント受信エンドポイントです
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// リクエスト本体を読み込む
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "リクエスト本体の読み込み失敗", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	// url_verification を含めすべて署名を検証する
	if err := httpsec.VerifySlackRequest(h.signingSecret, r.Header, body); err != nil {
		h.logger.Warn("署名検証失敗", "error", err)
		http.Error(w, "署名検証失敗", http.StatusUnauthorized)
		return
	}

	event, err := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
	if err != nil {
		http.Error(w, "JSON パース失敗", http.StatusBadRequest)
		return
	}

	switch event.Type {
	case slackevents.URLVerification:
		var challenge slackevents.ChallengeResponse
		if err := json.Unmarshal(body, &challenge); err != nil {
			http.Error(w, "JSON パース失敗", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(challenge.Challenge))
		return
	case slackevents.CallbackEvent:
		// 下へ
	default:
		w.WriteHeader(http.StatusOK)
		return
	}

	msg, ok := event.InnerEvent.Data.(*slackevents.MessageEvent)
	if !ok {
		h.logger.Debug("対象外のイベント", "type", event.InnerEvent.Type)
		w.WriteHeader(http.StatusOK)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// エラーはルーター側でログに残るので、Slack には常に成功を返す
	h.router.Dispatch(ctx, &service.Envelope{
		Type:   service.EventTypeMessage,
		Client: h.client,
		Event:  infraslack.FromEventsAPIMessage(msg),
	})

	w.WriteHeader(http.StatusOK)
}
