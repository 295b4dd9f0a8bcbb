package scheduler

import (
	"sync"
	"time"
)

// Scheduler 按业务键登记一次性延迟任务，支持按键取消
type Scheduler interface {
	// Schedule 在 delay 后执行 action；同一 id 重复登记时替换旧任务
	Schedule(id string, delay time.Duration, action func())
	// Cancel 取消并移除 id 对应任务；任务不存在（已触发或已取消）时返回 false
	Cancel(id string) bool
	// Pending 当前登记中的任务数
	Pending() int
	// Stop 取消全部任务，之后的 Schedule 调用被忽略
	Stop()
}

type entry struct {
	timer Timer
}

// TimerRegistry 进程内定时任务登记表
// 仅作尽力而为的加速通道，进程重启后丢失
type TimerRegistry struct {
	clock   Clock
	mu      sync.Mutex
	entries map[string]*entry
	stopped bool
}

// NewTimerRegistry 创建定时任务登记表
func NewTimerRegistry(clock Clock) *TimerRegistry {
	if clock == nil {
		clock = RealClock{}
	}
	return &TimerRegistry{clock: clock, entries: make(map[string]*entry)}
}

func (r *TimerRegistry) Schedule(id string, delay time.Duration, action func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped {
		return
	}
	if old, ok := r.entries[id]; ok {
		old.timer.Stop()
	}

	e := &entry{}
	e.timer = r.clock.AfterFunc(delay, func() {
		// 触发时先摘除登记项；若已被替换或取消则放弃执行
		r.mu.Lock()
		cur, ok := r.entries[id]
		if !ok || cur != e {
			r.mu.Unlock()
			return
		}
		delete(r.entries, id)
		r.mu.Unlock()

		action()
	})
	r.entries[id] = e
}

func (r *TimerRegistry) Cancel(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return false
	}
	delete(r.entries, id)
	e.timer.Stop()
	return true
}

func (r *TimerRegistry) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *TimerRegistry) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stopped = true
	for id, e := range r.entries {
		e.timer.Stop()
		delete(r.entries, id)
	}
}
