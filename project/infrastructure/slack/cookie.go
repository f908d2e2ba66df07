package slack

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"

	"github.com/gorilla/websocket"
)

// cookieTransport は API リクエストに Cookie ヘッダを付与します
type cookieTransport struct {
	cookie string
	base   http.RoundTripper
}

func (t *cookieTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.cookie != "" {
		req = req.Clone(req.Context())
		req.Header.Set("Cookie", t.cookie)
	}
	return t.base.RoundTrip(req)
}

// cookieDialer は RTM の WebSocket 接続にも同じ cookie を送る Dialer を作ります
func cookieDialer(cookie string) (*websocket.Dialer, error) {
	dialer := &websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: websocket.DefaultDialer.HandshakeTimeout,
	}
	if cookie == "" {
		return dialer, nil
	}

	cookies, err := http.ParseCookie(cookie)
	if err != nil {
		return nil, fmt.Errorf("slack: SLACK_COOKIE の形式が不正です: %w", err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("slack: cookie jar 作成失敗: %w", err)
	}
	for _, c := range cookies {
		c.Domain = ".slack.com"
		c.Path = "/"
	}
	jar.SetCookies(&url.URL{Scheme: "https", Host: "slack.com", Path: "/"}, cookies)

	dialer.Jar = jar
	return dialer, nil
}
