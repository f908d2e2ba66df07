package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"secret-reactor/project/domain"
)

// 名前解決できなかった場合の表示名
const (
	UnknownName    = "unknown"
	UnknownUser    = "unknown user"
	UnknownChannel = "unknown channel"
)

// CacheStats はキャッシュのヒット・ミス統計です
type CacheStats struct {
	Kind     IdentityKind
	Hits     int64
	Misses   int64
	Lookups  int64
	Failures int64
	MaxSize  int
	CurrSize int
}

// String は統計を CacheInfo(hits=..., misses=..., maxsize=..., currsize=...) 形式で返します
func (s CacheStats) String() string {
	maxSize := "None"
	if s.MaxSize > 0 {
		maxSize = strconv.Itoa(s.MaxSize)
	}
	return fmt.Sprintf("CacheInfo(hits=%d, misses=%d, maxsize=%s, currsize=%d)", s.Hits, s.Misses, maxSize, s.CurrSize)
}

type cacheCounters struct {
	hits     atomic.Int64
	misses   atomic.Int64
	lookups  atomic.Int64
	failures atomic.Int64
}

// IdentityResolver はユーザー・チャンネルIDを表示名に解決し、結果をメモ化します
type IdentityResolver struct {
	directory DirectoryPort
	logger    *slog.Logger
	maxSize   int

	caches   map[IdentityKind]identityCache
	counters map[IdentityKind]*cacheCounters

	// 同一キーの同時ミスでは Slack API を1回だけ呼びます
	flights singleflight.Group
}

// NewIdentityResolver は IdentityResolver を初期化します
// maxSize が 0 以下の場合キャッシュは無制限です
func NewIdentityResolver(directory DirectoryPort, maxSize int, logger *slog.Logger) (*IdentityResolver, error) {
	if logger == nil {
		logger = slog.Default()
	}

	r := &IdentityResolver{
		directory: directory,
		logger:    logger,
		maxSize:   maxSize,
		caches:    make(map[IdentityKind]identityCache),
		counters:  make(map[IdentityKind]*cacheCounters),
	}

	for _, kind := range []IdentityKind{domain.KindUser, domain.KindChannel} {
		c, err := newIdentityCache(maxSize)
		if err != nil {
			return nil, err
		}
		r.caches[kind] = c
		r.counters[kind] = &cacheCounters{}
	}

	return r, nil
}

// Resolve は id を表示名に解決します
// キャッシュヒット時は Slack API を呼びません。解決失敗はキャッシュしません
func (r *IdentityResolver) Resolve(ctx context.Context, id string, kind IdentityKind) (string, error) {
	cache, counters, ok := r.cacheFor(kind)
	if !ok {
		return "", fmt.Errorf("resolver: 未対応の種別です (kind=%s): %w", kind, domain.ErrInvalid)
	}

	if entry, hit := cache.Get(id); hit {
		counters.hits.Add(1)
		return entry.Name, nil
	}
	counters.misses.Add(1)

	v, err, _ := r.flights.Do(kind.String()+":"+id, func() (interface{}, error) {
		// 先行した呼び出しが既に埋めている場合
		if entry, hit := cache.Get(id); hit {
			return entry.Name, nil
		}

		counters.lookups.Add(1)
		name, err := r.lookup(ctx, id, kind)
		if err != nil {
			counters.failures.Add(1)
			return "", err
		}

		cache.Add(domain.IdentityEntry{ID: id, Kind: kind, Name: name})
		return name, nil
	})

	r.logger.Info("キャッシュ統計", "kind", kind.String(), "stats", r.Stats(kind).String())

	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// ResolveName は Resolve の結果を返し、失敗時は "unknown user" などの代替名を返します
func (r *IdentityResolver) ResolveName(ctx context.Context, id string, kind IdentityKind) string {
	name, err := r.Resolve(ctx, id, kind)
	if err == nil {
		return name
	}

	r.logger.Warn("名前解決に失敗しました", "kind", kind.String(), "id", id, "error", err)
	if kind == domain.KindChannel {
		return UnknownChannel
	}
	return UnknownUser
}

// Stats は指定種別のキャッシュ統計を返します。別 goroutine から読んでも安全です
func (r *IdentityResolver) Stats(kind IdentityKind) CacheStats {
	cache, counters, ok := r.cacheFor(kind)
	if !ok {
		return CacheStats{Kind: kind}
	}
	return CacheStats{
		Kind:     kind,
		Hits:     counters.hits.Load(),
		Misses:   counters.misses.Load(),
		Lookups:  counters.lookups.Load(),
		Failures: counters.failures.Load(),
		MaxSize:  r.maxSize,
		CurrSize: cache.Len(),
	}
}

func (r *IdentityResolver) cacheFor(kind IdentityKind) (identityCache, *cacheCounters, bool) {
	cache, ok := r.caches[kind]
	if !ok {
		return nil, nil, false
	}
	return cache, r.counters[kind], true
}

// lookup は Slack API で表示名を取得します
func (r *IdentityResolver) lookup(ctx context.Context, id string, kind IdentityKind) (string, error) {
	switch kind {
	case domain.KindUser:
		r.logger.Debug("ユーザーID検索", "user_id", id)
		profile, err := r.directory.GetUserProfile(ctx, id)
		if err != nil {
			r.logger.Debug("ユーザーIDが見つかりません", "user_id", id, "error", err)
			return "", fmt.Errorf("resolver: ユーザー取得失敗 (user=%s): %w", id, err)
		}
		name := userDisplayName(profile)
		r.logger.Debug("ユーザーID解決", "user_id", id, "name", name)
		return name, nil

	case domain.KindChannel:
		r.logger.Debug("チャンネルID検索", "channel_id", id)
		name, err := r.directory.GetChannelName(ctx, id)
		if err != nil {
			return "", fmt.Errorf("resolver: チャンネル取得失敗 (channel=%s): %w", id, err)
		}
		if name == "" {
			name = UnknownName
		}
		return name, nil
	}

	return "", fmt.Errorf("resolver: 未対応の種別です (kind=%s): %w", kind, domain.ErrInvalid)
}

// userDisplayName は display_name_normalized > name > real_name_normalized の順で
// 最初に空でない名前を返します。すべて空なら UnknownName です
func userDisplayName(p *UserProfile) string {
	if p == nil {
		return UnknownName
	}
	for _, name := range []string{p.DisplayNameNormalized, p.Name, p.RealNameNormalized} {
		if name != "" {
			return name
		}
	}
	return UnknownName
}
