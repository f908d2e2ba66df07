package domain

import (
	"context"
)

// DetectionRepository はシークレット検知レコードの永続化を担当します
type DetectionRepository interface {
	// Create は検知レコードを新規作成します
	// 同一キー(channel:ts)のレコードが既にある場合は domain.ErrAlreadyRecorded を返します
	// バリデーションエラー時は domain.ErrInvalid を返します
	Create(ctx context.Context, d *Detection) error

	// MarkOutcome はリアクション・上書きの結果を記録します
	// 対象レコードが存在しない場合は domain.ErrNotFound を返します
	MarkOutcome(ctx context.Context, channelID, messageTS string, reacted, redacted bool) error

	// Find は指定キーの検知レコードを取得します
	// 存在しない場合は domain.ErrNotFound を返します
	Find(ctx context.Context, channelID, messageTS string) (*Detection, error)
}
