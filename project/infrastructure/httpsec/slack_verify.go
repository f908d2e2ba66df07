package httpsec

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"

	"github.com/slack-go/slack"
)

// VerifySlackRequest は Slack からのリクエストの署名を検証します
// X-Slack-Signature と X-Slack-Request-Timestamp を確認し、改ざんやリプレイ攻撃から保護します
func VerifySlackRequest(signingSecret string, header http.Header, body []byte) error {
	sv, err := slack.NewSecretsVerifier(header, signingSecret)
	if err != nil {
		return fmt.Errorf("httpsec: 署名ヘッダ不正: %w", err)
	}

	if _, err := sv.Write(body); err != nil {
		return fmt.Errorf("httpsec: 署名計算失敗: %w", err)
	}

	if err := sv.Ensure(); err != nil {
		return fmt.Errorf("httpsec: signature mismatch: %w", err)
	}

	return nil
}

// ComputeSignature は Slack 署名 "v0=<hex(HMAC-SHA256("v0:<timestamp>:<body>"))>" を計算します
func ComputeSignature(signingSecret, timestamp string, body []byte) string {
	h := hmac.New(sha256.New, []byte(signingSecret))
	h.Write([]byte("v0:" + timestamp + ":"))
	h.Write(body)
	return "v0=" + hex.EncodeToString(h.Sum(nil))
}
