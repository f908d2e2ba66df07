package store

import (
	"context"
	"fmt"

	"secret-reactor/project/domain"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// isNotFound は Firestore の NotFound エラーを判定するヘルパー関数です
func isNotFound(err error) bool {
	st, ok := status.FromError(err)
	return ok && st.Code() == codes.NotFound
}

// isAlreadyExists は Firestore の AlreadyExists エラーを判定するヘルパー関数です
func isAlreadyExists(err error) bool {
	st, ok := status.FromError(err)
	return ok && st.Code() == codes.AlreadyExists
}

// FirestoreRepo は domain.DetectionRepository の Firestore 実装です
type FirestoreRepo struct {
	cli           *firestore.Client
	detectionsCol string
}

// NewFirestoreRepo は Firestore リポジトリを初期化します
func NewFirestoreRepo(ctx context.Context, projectID, collection string) (*FirestoreRepo, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("firestore: クライアント初期化失敗: %w", err)
	}

	return &FirestoreRepo{
		cli:           client,
		detectionsCol: collection,
	}, nil
}

// Create は検知レコードを新規作成します
func (repo *FirestoreRepo) Create(ctx context.Context, d *domain.Detection) error {
	if err := d.Validate(); err != nil {
		return fmt.Errorf("firestore: Create検証失敗: %w", err)
	}

	docID := detectionDocID(d.ChannelID, d.MessageTS)
	docRef := repo.cli.Collection(repo.detectionsCol).Doc(docID)

	if _, err := docRef.Create(ctx, detectionData(d)); err != nil {
		if isAlreadyExists(err) {
			return domain.ErrAlreadyRecorded
		}
		return fmt.Errorf("firestore: 検知レコード保存失敗 (docID=%s): %w", docID, err)
	}

	return nil
}

// MarkOutcome はリアクション・上書きの結果を更新します
func (repo *FirestoreRepo) MarkOutcome(ctx context.Context, channelID, messageTS string, reacted, redacted bool) error {
	docID := detectionDocID(channelID, messageTS)
	docRef := repo.cli.Collection(repo.detectionsCol).Doc(docID)

	_, err := docRef.Update(ctx, []firestore.Update{
		{Path: "reacted", Value: reacted},
		{Path: "redacted", Value: redacted},
	})
	if err != nil {
		if isNotFound(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("firestore: 検知結果更新失敗 (docID=%s): %w", docID, err)
	}

	return nil
}

// Find は指定キーの検知レコードを取得します
func (repo *FirestoreRepo) Find(ctx context.Context, channelID, messageTS string) (*domain.Detection, error) {
	docID := detectionDocID(channelID, messageTS)
	docRef := repo.cli.Collection(repo.detectionsCol).Doc(docID)

	snapshot, err := docRef.Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("firestore: 検知レコード取得失敗 (docID=%s): %w", docID, err)
	}

	var d domain.Detection
	if err := snapshot.DataTo(&d); err != nil {
		return nil, fmt.Errorf("firestore: 検知レコード変換失敗 (docID=%s): %w", docID, err)
	}

	return &d, nil
}

// Close は Firestore クライアントを閉じます
func (repo *FirestoreRepo) Close() error {
	if repo.cli != nil {
		return repo.cli.Close()
	}
	return nil
}

// detectionDocID は検知レコードのドキュメントID を生成します
// 形式: "channel:ts"
func detectionDocID(channelID, messageTS string) string {
	return domain.DetectionKey(channelID, messageTS)
}

// detectionData は Firestore 保存用のマップを作成します
func detectionData(d *domain.Detection) map[string]interface{} {
	return map[string]interface{}{
		"channel_id":   d.ChannelID,
		"message_ts":   d.MessageTS,
		"author_id":    d.AuthorID,
		"author_name":  d.AuthorName,
		"channel_name": d.ChannelName,
		"detected_at":  d.DetectedAt,
		"reacted":      d.Reacted,
		"redacted":     d.Redacted,
	}
}
