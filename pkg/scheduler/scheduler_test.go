package scheduler

import (
	"sync/atomic"
	"testing"
	"time"
)

var epoch = time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

func TestTimerRegistry_FiresOnceAndRemovesEntry(t *testing.T) {
	clock := NewFakeClock(epoch)
	reg := NewTimerRegistry(clock)

	var fired int32
	reg.Schedule("enr-1", 5*time.Minute, func() { atomic.AddInt32(&fired, 1) })

	if reg.Pending() != 1 {
		t.Fatalf("期望登记1个任务，实际=%d", reg.Pending())
	}

	clock.Advance(4 * time.Minute)
	if atomic.LoadInt32(&fired) != 0 {
		t.Fatal("未到期不应触发")
	}

	clock.Advance(time.Minute)
	if atomic.LoadInt32(&fired) != 1 {
		t.Fatalf("到期应触发一次，实际=%d", fired)
	}
	if reg.Pending() != 0 {
		t.Errorf("触发后登记项应移除，实际=%d", reg.Pending())
	}

	clock.Advance(time.Hour)
	if atomic.LoadInt32(&fired) != 1 {
		t.Errorf("不应重复触发，实际=%d", fired)
	}
}

func TestTimerRegistry_CancelBeforeFire(t *testing.T) {
	clock := NewFakeClock(epoch)
	reg := NewTimerRegistry(clock)

	var fired int32
	reg.Schedule("enr-1", 5*time.Minute, func() { atomic.AddInt32(&fired, 1) })

	if !reg.Cancel("enr-1") {
		t.Fatal("首次取消应返回 true")
	}
	if reg.Cancel("enr-1") {
		t.Error("重复取消应返回 false")
	}

	clock.Advance(10 * time.Minute)
	if atomic.LoadInt32(&fired) != 0 {
		t.Error("已取消的任务不应触发")
	}
	if clock.PendingTimers() != 0 {
		t.Errorf("底层定时器应已停止，实际=%d", clock.PendingTimers())
	}
}

func TestTimerRegistry_CancelAfterFireIsNoop(t *testing.T) {
	clock := NewFakeClock(epoch)
	reg := NewTimerRegistry(clock)

	reg.Schedule("enr-1", time.Minute, func() {})
	clock.Advance(time.Minute)

	if reg.Cancel("enr-1") {
		t.Error("已触发任务的取消应返回 false")
	}
	if reg.Cancel("unknown") {
		t.Error("未登记任务的取消应返回 false")
	}
}

func TestTimerRegistry_RescheduleReplacesPrevious(t *testing.T) {
	clock := NewFakeClock(epoch)
	reg := NewTimerRegistry(clock)

	var first, second int32
	reg.Schedule("enr-1", time.Minute, func() { atomic.AddInt32(&first, 1) })
	reg.Schedule("enr-1", 3*time.Minute, func() { atomic.AddInt32(&second, 1) })

	clock.Advance(5 * time.Minute)
	if first != 0 {
		t.Error("被替换的任务不应触发")
	}
	if second != 1 {
		t.Errorf("新任务应触发一次，实际=%d", second)
	}
}

func TestTimerRegistry_StopCancelsAll(t *testing.T) {
	clock := NewFakeClock(epoch)
	reg := NewTimerRegistry(clock)

	var fired int32
	reg.Schedule("a", time.Minute, func() { atomic.AddInt32(&fired, 1) })
	reg.Schedule("b", time.Minute, func() { atomic.AddInt32(&fired, 1) })
	reg.Stop()
	reg.Schedule("c", time.Minute, func() { atomic.AddInt32(&fired, 1) })

	clock.Advance(time.Hour)
	if fired != 0 {
		t.Errorf("Stop 后不应有任务触发，实际=%d", fired)
	}
	if reg.Pending() != 0 {
		t.Errorf("Stop 后登记表应为空，实际=%d", reg.Pending())
	}
}

func TestTimerRegistry_RealClock(t *testing.T) {
	reg := NewTimerRegistry(nil)
	done := make(chan struct{})
	reg.Schedule("enr-1", 10*time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("真实时钟下任务未触发")
	}
}

func TestFakeClock_TickerDelivers(t *testing.T) {
	clock := NewFakeClock(epoch)
	tk := clock.NewTicker(time.Minute)

	clock.Advance(30 * time.Second)
	select {
	case <-tk.C():
		t.Fatal("未满一个周期不应触发")
	default:
	}

	clock.Advance(30 * time.Second)
	select {
	case got := <-tk.C():
		if !got.Equal(epoch.Add(time.Minute)) {
			t.Errorf("触发时间不符: %v", got)
		}
	default:
		t.Fatal("满一个周期应触发")
	}

	tk.Stop()
	clock.Advance(time.Minute)
	select {
	case <-tk.C():
		t.Error("停止后不应触发")
	default:
	}
}
