package service

import (
	"sync"
	"time"
)

// Debouncer 按目标标识合并请求的去抖器
// 同一目标在静默窗口内的连续调度只执行最后一次（合并而不仅是延迟）；
// 不同目标互相独立，触发顺序之间没有约束。
// gens 为每目标单调递增的代号：已到期但还卡在锁上的旧定时器持有
// 过期代号，不会提前执行替换后的任务。
type Debouncer struct {
	mu      sync.Mutex
	quiet   time.Duration
	timers  map[string]*time.Timer
	gens    map[string]uint64
	pending map[string]func()
}

// NewDebouncer 创建去抖器；quiet 为静默窗口
func NewDebouncer(quiet time.Duration) *Debouncer {
	return &Debouncer{
		quiet:   quiet,
		timers:  make(map[string]*time.Timer),
		gens:    make(map[string]uint64),
		pending: map[string]func(){},
	}
}

// Schedule 调度一次执行；同目标已有待执行任务时替换并重置静默窗口
func (d *Debouncer) Schedule(target string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gens[target]++
	gen := d.gens[target]
	d.pending[target] = fn
	if timer, ok := d.timers[target]; ok {
		timer.Stop()
	}
	d.timers[target] = time.AfterFunc(d.quiet, func() {
		d.fire(target, gen)
	})
}

// fire 取出并执行目标的待执行任务；代号过期说明任务已被替换或冲掉
func (d *Debouncer) fire(target string, gen uint64) {
	d.mu.Lock()
	if d.gens[target] != gen {
		d.mu.Unlock()
		return
	}
	fn := d.pending[target]
	delete(d.pending, target)
	delete(d.timers, target)
	d.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Flush 立即执行全部待执行任务（服务停机前调用，避免丢失最后的编辑）
func (d *Debouncer) Flush() {
	d.mu.Lock()
	for target, timer := range d.timers {
		timer.Stop()
		d.gens[target]++
		delete(d.timers, target)
	}
	fns := make([]func(), 0, len(d.pending))
	for target, fn := range d.pending {
		fns = append(fns, fn)
		delete(d.pending, target)
	}
	d.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// PendingCount 当前待执行任务数（测试用）
func (d *Debouncer) PendingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}
