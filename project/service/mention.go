package service

import (
	"context"
	"regexp"
	"strings"

	"secret-reactor/project/domain"
)

// Slack メンション形式: <@USERID>
var mentionRegex = regexp.MustCompile(`<@([UW]\w+)>`)

// IdentityLookup はエラーを返す形の名前解決です
type IdentityLookup interface {
	Resolve(ctx context.Context, id string, kind IdentityKind) (string, error)
}

// ExpandMentions は text 中の <@U123> を解決済みの表示名に置き換えます
// 解決できなかったメンションは元の形式のまま残します
func ExpandMentions(ctx context.Context, names IdentityLookup, text string) string {
	if !strings.Contains(text, "<@") {
		return text
	}

	return mentionRegex.ReplaceAllStringFunc(text, func(match string) string {
		sub := mentionRegex.FindStringSubmatch(match)
		if len(sub) < 2 {
			return match
		}
		name, err := names.Resolve(ctx, sub[1], domain.KindUser)
		if err != nil {
			return match
		}
		return name
	})
}

// Unescape は Slack がエスケープした &lt; &gt; &amp; を元の文字に戻します
func Unescape(text string) string {
	text = strings.ReplaceAll(text, "&lt;", "<")
	text = strings.ReplaceAll(text, "&gt;", ">")
	// &amp; は最後
	return strings.ReplaceAll(text, "&amp;", "&")
}
