package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type stubLookup map[string]string

func (s stubLookup) Resolve(ctx context.Context, id string, kind IdentityKind) (string, error) {
	if name, ok := s[id]; ok {
		return name, nil
	}
	return "", errors.New("user_not_found")
}

func TestExpandMentions(t *testing.T) {
	names := stubLookup{"U123": "alice", "U456": "bob", "W789": "enterprise"}

	tests := []struct {
		name string
		text string
		want string
	}{
		{"メンションなし", "hello world", "hello world"},
		{"単一メンション", "hello <@U123> !", "hello alice !"},
		{"複数メンション", "<@U123> and <@U456>", "alice and bob"},
		{"同じメンションの繰り返し", "<@U123> <@U123>", "alice alice"},
		{"エンタープライズユーザー", "hi <@W789>", "hi enterprise"},
		{"解決できないメンションは残す", "hi <@U999>", "hi <@U999>"},
		{"チャンネル参照は対象外", "see <#C123>", "see <#C123>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandMentions(context.Background(), names, tt.text))
		})
	}
}

func TestExpandMentionsUsesResolverCache(t *testing.T) {
	mock := NewMockSlackPort()
	mock.MockGetUserProfile = func(ctx context.Context, userID string) (*UserProfile, error) {
		return &UserProfile{DisplayNameNormalized: "alice"}, nil
	}
	r := newTestResolver(t, mock, 0)

	got := ExpandMentions(context.Background(), r, "<@U123> <@U123> <@U123>")

	assert.Equal(t, "alice alice alice", got)
	assert.Equal(t, 1, mock.CallCount("GetUserProfile"))
}

func TestUnescape(t *testing.T) {
	assert.Equal(t, "<a> & <b>", Unescape("&lt;a&gt; &amp; &lt;b&gt;"))
	assert.Equal(t, "&lt;", Unescape("&amp;lt;"))
	assert.Equal(t, "plain", Unescape("plain"))
}

func TestConsolePrint(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, stubLookup{"U123": "alice"}, discardLogger())
	c.now = func() time.Time { return time.Date(2024, 3, 7, 9, 5, 1, 0, time.Local) }

	c.Print(context.Background(), "bob@general: ping &lt;@U123&gt;")

	assert.Equal(t, "03-07 09:05:01 bob@general: ping alice\n", buf.String())
}

func TestHighlightKeepsText(t *testing.T) {
	assert.True(t, strings.Contains(Highlight("secret"), "secret"))
}
