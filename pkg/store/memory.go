package store

import "sync"

// Memory 内存实现，用于测试与未配置数据库的部署
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// Ensure Memory implements Store
var _ Store = (*Memory)(nil)

// NewMemory 创建内存存储
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// Get implements Store
func (m *Memory) Get(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Set implements Store
func (m *Memory) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	m.data[key] = v
	return nil
}
