package slack

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secret-reactor/project/service"
)

type fakeSlackAPI struct {
	mu       sync.Mutex
	cookies  []string
	forms    map[string]url.Values
	handlers map[string]string
}

func newFakeSlackAPI(t *testing.T, responses map[string]string) (*fakeSlackAPI, *httptest.Server) {
	t.Helper()
	f := &fakeSlackAPI{forms: make(map[string]url.Values), handlers: responses}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		method := strings.TrimPrefix(r.URL.Path, "/")

		f.mu.Lock()
		f.cookies = append(f.cookies, r.Header.Get("Cookie"))
		f.forms[method] = r.Form
		f.mu.Unlock()

		body, ok := f.handlers[method]
		if !ok {
			body = `{"ok":false,"error":"unknown_method"}`
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return f, srv
}

func newTestClient(srv *httptest.Server, cookie string) *SlackClient {
	return NewSlackClient("xoxc-test", cookie, 5*time.Second, slack.OptionAPIURL(srv.URL+"/"))
}

func TestSlackClientGetUserProfile(t *testing.T) {
	api, srv := newFakeSlackAPI(t, map[string]string{
		"users.info": `{"ok":true,"user":{"id":"U1","name":"alice.w","profile":{"display_name_normalized":"alice","real_name_normalized":"Alice W"}}}`,
	})
	client := newTestClient(srv, "d=xoxd-abc")

	p, err := client.GetUserProfile(context.Background(), "U1")
	require.NoError(t, err)

	assert.Equal(t, &service.UserProfile{
		ID:                    "U1",
		Name:                  "alice.w",
		DisplayNameNormalized: "alice",
		RealNameNormalized:    "Alice W",
	}, p)
	assert.Equal(t, "U1", api.forms["users.info"].Get("user"))
	assert.Equal(t, []string{"d=xoxd-abc"}, api.cookies)
}

func TestSlackClientGetUserProfileError(t *testing.T) {
	_, srv := newFakeSlackAPI(t, map[string]string{
		"users.info": `{"ok":false,"error":"user_not_found"}`,
	})
	client := newTestClient(srv, "")

	_, err := client.GetUserProfile(context.Background(), "U404")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user_not_found")
	assert.Contains(t, err.Error(), "U404")
}

func TestSlackClientGetChannelName(t *testing.T) {
	api, srv := newFakeSlackAPI(t, map[string]string{
		"conversations.info": `{"ok":true,"channel":{"id":"C1","name":"general"}}`,
	})
	client := newTestClient(srv, "")

	name, err := client.GetChannelName(context.Background(), "C1")
	require.NoError(t, err)
	assert.Equal(t, "general", name)
	assert.Equal(t, "C1", api.forms["conversations.info"].Get("channel"))
	assert.Equal(t, []string{""}, api.cookies)
}

func TestSlackClientAuthTest(t *testing.T) {
	_, srv := newFakeSlackAPI(t, map[string]string{
		"auth.test": `{"ok":true,"url":"https://test.slack.com/","team":"Test","user":"bot","team_id":"T1","user_id":"U1"}`,
	})
	client := newTestClient(srv, "")

	id, err := client.AuthTest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &service.AuthIdentity{UserID: "U1", User: "bot", TeamID: "T1", Team: "Test"}, id)
}

func TestSlackClientAddReaction(t *testing.T) {
	api, srv := newFakeSlackAPI(t, map[string]string{
		"reactions.add": `{"ok":true}`,
	})
	client := newTestClient(srv, "")

	err := client.AddReaction(context.Background(), service.ReactionRequest{ChannelID: "C1", MessageTS: "1000.5", Emoji: "scream"})
	require.NoError(t, err)

	form := api.forms["reactions.add"]
	assert.Equal(t, "C1", form.Get("channel"))
	assert.Equal(t, "1000.5", form.Get("timestamp"))
	assert.Equal(t, "scream", form.Get("name"))
}

func TestSlackClientUpdateMessage(t *testing.T) {
	api, srv := newFakeSlackAPI(t, map[string]string{
		"chat.update": `{"ok":true,"channel":"C1","ts":"1000.5","text":"ooops"}`,
	})
	client := newTestClient(srv, "")

	err := client.UpdateMessage(context.Background(), service.RedactionRequest{ChannelID: "C1", MessageTS: "1000.5", ReplacementText: "ooops"})
	require.NoError(t, err)

	form := api.forms["chat.update"]
	assert.Equal(t, "C1", form.Get("channel"))
	assert.Equal(t, "1000.5", form.Get("ts"))
	assert.Equal(t, "ooops", form.Get("text"))
}

func TestSlackClientUpdateMessageError(t *testing.T) {
	_, srv := newFakeSlackAPI(t, map[string]string{
		"chat.update": `{"ok":false,"error":"cant_update_message"}`,
	})
	client := newTestClient(srv, "")

	err := client.UpdateMessage(context.Background(), service.RedactionRequest{ChannelID: "C1", MessageTS: "1", ReplacementText: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cant_update_message")
}

func TestCookieDialer(t *testing.T) {
	d, err := cookieDialer("")
	require.NoError(t, err)
	assert.Nil(t, d.Jar)

	d, err = cookieDialer("d=xoxd-abc; d-s=123")
	require.NoError(t, err)
	require.NotNil(t, d.Jar)

	got := d.Jar.Cookies(&url.URL{Scheme: "https", Host: "wss-primary.slack.com", Path: "/"})
	names := make(map[string]string)
	for _, c := range got {
		names[c.Name] = c.Value
	}
	assert.Equal(t, map[string]string{"d": "xoxd-abc", "d-s": "123"}, names)
}
