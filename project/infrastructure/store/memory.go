package store

import (
	"context"
	"fmt"
	"sync"

	"secret-reactor/project/domain"
)

// MemoryRepo は domain.DetectionRepository のプロセス内実装です
// Firestore を設定しない場合に使います
type MemoryRepo struct {
	mu         sync.Mutex
	detections map[string]domain.Detection
}

// NewMemoryRepo は MemoryRepo を作成します
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{detections: make(map[string]domain.Detection)}
}

// Create は検知レコードを新規作成します
func (repo *MemoryRepo) Create(ctx context.Context, d *domain.Detection) error {
	if err := d.Validate(); err != nil {
		return fmt.Errorf("memory: Create検証失敗: %w", err)
	}

	repo.mu.Lock()
	defer repo.mu.Unlock()

	key := detectionDocID(d.ChannelID, d.MessageTS)
	if _, exists := repo.detections[key]; exists {
		return domain.ErrAlreadyRecorded
	}
	repo.detections[key] = *d
	return nil
}

// MarkOutcome はリアクション・上書きの結果を更新します
func (repo *MemoryRepo) MarkOutcome(ctx context.Context, channelID, messageTS string, reacted, redacted bool) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	key := detectionDocID(channelID, messageTS)
	d, exists := repo.detections[key]
	if !exists {
		return domain.ErrNotFound
	}
	d.Reacted = reacted
	d.Redacted = redacted
	repo.detections[key] = d
	return nil
}

// Find は検知レコードを取得します
func (repo *MemoryRepo) Find(ctx context.Context, channelID, messageTS string) (*domain.Detection, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	d, exists := repo.detections[detectionDocID(channelID, messageTS)]
	if !exists {
		return nil, domain.ErrNotFound
	}
	return &d, nil
}
