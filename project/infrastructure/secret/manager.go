package secret

import (
	"context"
	"fmt"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

// Manager は Slack トークンを Secret Manager から読み出します。
// SLACK_BOT_TOKEN を環境変数に置かない運用で起動時に一度だけ使います
type Manager struct {
	client    *secretmanager.Client
	projectID string
}

// NewManager は Secret Manager クライアントを初期化します
func NewManager(ctx context.Context, projectID string) (*Manager, error) {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("secret manager: クライアント初期化失敗 (project=%s): %w", projectID, err)
	}

	return &Manager{
		client:    client,
		projectID: projectID,
	}, nil
}

// GetSecret は secretName の最新版から Slack トークンを読み出します
func (m *Manager) GetSecret(ctx context.Context, secretName string) (string, error) {
	name := tokenVersionName(m.projectID, secretName)

	result, err := m.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		return "", fmt.Errorf("secret manager: トークン取得失敗 (name=%s): %w", name, err)
	}

	return parseToken(result.GetPayload().GetData(), secretName)
}

// Close は Secret Manager クライアントを閉じます
func (m *Manager) Close() error {
	if m.client != nil {
		return m.client.Close()
	}
	return nil
}

// tokenVersionName は projects/{project}/secrets/{name}/versions/latest を返します
func tokenVersionName(projectID, secretName string) string {
	return fmt.Sprintf("projects/%s/secrets/%s/versions/latest", projectID, secretName)
}

// parseToken は前後の空白や改行を除き、Slack トークン (xox?-) の形をしているか確認します
func parseToken(data []byte, secretName string) (string, error) {
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", fmt.Errorf("secret manager: トークンが空です (name=%s)", secretName)
	}
	if !strings.HasPrefix(token, "xox") {
		return "", fmt.Errorf("secret manager: Slack トークンの形式ではありません (name=%s)", secretName)
	}
	return token, nil
}
