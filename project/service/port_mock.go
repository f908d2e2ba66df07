package service

import (
	"context"
	"sync"
)

// MockSlackPort はテスト用の SlackPort 実装です。
// Mock* が nil の場合は成功扱いのデフォルト値を返します
type MockSlackPort struct {
	MockGetUserProfile func(ctx context.Context, userID string) (*UserProfile, error)
	MockGetChannelName func(ctx context.Context, channelID string) (string, error)
	MockAuthTest       func(ctx context.Context) (*AuthIdentity, error)
	MockAddReaction    func(ctx context.Context, req ReactionRequest) error
	MockUpdateMessage  func(ctx context.Context, req RedactionRequest) error

	mu        sync.Mutex
	Reactions []ReactionRequest
	Updates   []RedactionRequest
	Calls     map[string]int
}

// NewMockSlackPort は MockSlackPort を作成します
func NewMockSlackPort() *MockSlackPort {
	return &MockSlackPort{Calls: make(map[string]int)}
}

func (m *MockSlackPort) count(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Calls == nil {
		m.Calls = make(map[string]int)
	}
	m.Calls[name]++
}

// CallCount は指定メソッドの呼び出し回数を返します
func (m *MockSlackPort) CallCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls[name]
}

// GetUserProfile implements SlackPort
func (m *MockSlackPort) GetUserProfile(ctx context.Context, userID string) (*UserProfile, error) {
	m.count("GetUserProfile")
	if m.MockGetUserProfile != nil {
		return m.MockGetUserProfile(ctx, userID)
	}
	return &UserProfile{ID: userID, Name: "testuser", DisplayNameNormalized: "Test User"}, nil
}

// GetChannelName implements SlackPort
func (m *MockSlackPort) GetChannelName(ctx context.Context, channelID string) (string, error) {
	m.count("GetChannelName")
	if m.MockGetChannelName != nil {
		return m.MockGetChannelName(ctx, channelID)
	}
	return "general", nil
}

// AuthTest implements SlackPort
func (m *MockSlackPort) AuthTest(ctx context.Context) (*AuthIdentity, error) {
	m.count("AuthTest")
	if m.MockAuthTest != nil {
		return m.MockAuthTest(ctx)
	}
	return &AuthIdentity{UserID: "U123456789", TeamID: "T123456789", Team: "Test Team"}, nil
}

// AddReaction implements SlackPort
func (m *MockSlackPort) AddReaction(ctx context.Context, req ReactionRequest) error {
	m.count("AddReaction")
	m.mu.Lock()
	m.Reactions = append(m.Reactions, req)
	m.mu.Unlock()
	if m.MockAddReaction != nil {
		return m.MockAddReaction(ctx, req)
	}
	return nil
}

// UpdateMessage implements SlackPort
func (m *MockSlackPort) UpdateMessage(ctx context.Context, req RedactionRequest) error {
	m.count("UpdateMessage")
	m.mu.Lock()
	m.Updates = append(m.Updates, req)
	m.mu.Unlock()
	if m.MockUpdateMessage != nil {
		return m.MockUpdateMessage(ctx, req)
	}
	return nil
}
