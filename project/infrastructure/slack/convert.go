package slack

import (
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"

	"secret-reactor/project/service"
)

// fromRTMMessage は RTM の MessageEvent を service.InboundEvent に変換します
func fromRTMMessage(ev *slack.MessageEvent) *service.InboundEvent {
	in := &service.InboundEvent{
		Text:      ev.Text,
		AuthorID:  ev.User,
		ChannelID: ev.Channel,
		TS:        ev.Timestamp,
		SubType:   ev.SubType,
	}
	if ev.SubMessage != nil {
		in.SubMessage = fromMsg(ev.SubMessage)
	}
	return in
}

// FromEventsAPIMessage は Events API / Socket Mode の MessageEvent を service.InboundEvent に変換します
func FromEventsAPIMessage(ev *slackevents.MessageEvent) *service.InboundEvent {
	in := &service.InboundEvent{
		Text:      ev.Text,
		AuthorID:  ev.User,
		ChannelID: ev.Channel,
		TS:        ev.TimeStamp,
		SubType:   ev.SubType,
	}
	if ev.Message != nil {
		in.SubMessage = fromMsg(ev.Message)
	}
	return in
}

func fromMsg(m *slack.Msg) *service.SubMessage {
	return &service.SubMessage{
		User: m.User,
		Text: m.Text,
		TS:   m.Timestamp,
	}
}
