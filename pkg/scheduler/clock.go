package scheduler

import "time"

// Timer 可取消的一次性定时器
type Timer interface {
	// Stop 取消定时器；已触发或已取消时返回 false
	Stop() bool
}

// Ticker 周期触发器
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Clock 时间来源，测试中以 FakeClock 替换以避免真实等待
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
	NewTicker(d time.Duration) Ticker
}

// RealClock 基于标准库计时器的系统时钟
type RealClock struct{}

// Now 返回当前 UTC 时间
func (RealClock) Now() time.Time { return time.Now().UTC() }

// AfterFunc 在 d 之后于独立 goroutine 中执行 f
func (RealClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// NewTicker 创建周期为 d 的触发器
func (RealClock) NewTicker(d time.Duration) Ticker { return &realTicker{t: time.NewTicker(d)} }

type realTicker struct{ t *time.Ticker }

func (r *realTicker) C() <-chan time.Time { return r.t.C }
func (r *realTicker) Stop()               { r.t.Stop() }
