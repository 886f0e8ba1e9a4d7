package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/federico-pizz/piranha2/core"
)

// MemoryPreferenceStore 是内存实现的偏好存储。
// Update 按用户粒度加锁串行化，防止并发提交丢失更新。
type MemoryPreferenceStore struct {
	mu    sync.RWMutex
	prefs map[string][]byte // userID -> JSON 编码的 Preferences

	lockMu sync.Mutex
	locks  map[string]*sync.Mutex // 用户级锁
}

func NewMemoryPreferenceStore() *MemoryPreferenceStore {
	return &MemoryPreferenceStore{
		prefs: make(map[string][]byte),
		locks: make(map[string]*sync.Mutex),
	}
}

func (s *MemoryPreferenceStore) userLock(userID string) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()

	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	return l
}

func (s *MemoryPreferenceStore) Get(ctx context.Context, userID string) (*core.Preferences, error) {
	s.mu.RLock()
	raw, ok := s.prefs[userID]
	s.mu.RUnlock()

	if !ok {
		return core.NewPreferences(), nil
	}

	p := core.NewPreferences()
	if err := json.Unmarshal(raw, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Update 对单个用户执行串行化的读-改-写。
func (s *MemoryPreferenceStore) Update(ctx context.Context, userID string, fn func(*core.Preferences) bool) error {
	l := s.userLock(userID)
	l.Lock()
	defer l.Unlock()

	p, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}

	if !fn(p) {
		return nil // 无变化，跳过写回
	}

	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.prefs[userID] = raw
	s.mu.Unlock()
	return nil
}

var _ core.PreferenceStore = (*MemoryPreferenceStore)(nil)
