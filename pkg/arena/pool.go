package arena

import (
	"context"
	"fmt"
	"time"
)

// Pool 是固定数量的独立互斥锁，下标 0..Len()-1，锁之间无任何顺序约束。
//
// 每把锁是一个 size=1 的 channel：发送成功即持有，接收即释放。
// channel 本身保证同一时刻至多一个持有者；释放时至多唤醒一个等待者，
// 唤醒顺序不做公平性保证。
type Pool struct {
	slots []chan struct{}
}

// NewPool 创建 count 把互斥锁。count 必须为正。
func NewPool(count int) (*Pool, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: lock count must be positive, got %d", ErrInvalidConfig, count)
	}
	slots := make([]chan struct{}, count)
	for i := range slots {
		slots[i] = make(chan struct{}, 1)
	}
	return &Pool{slots: slots}, nil
}

// Len 返回锁的数量。
func (p *Pool) Len() int {
	return len(p.slots)
}

// slot 返回下标 l 对应的 channel。下标越界属于编程错误，直接 panic。
func (p *Pool) slot(l int) chan struct{} {
	if l < 0 || l >= len(p.slots) {
		panic(fmt.Sprintf("arena: lock index %d out of range [0,%d)", l, len(p.slots)))
	}
	return p.slots[l]
}

// Acquire 阻塞式获取锁 l，直到获得或 ctx 结束。
// ctx 结束时返回 ctx.Err()，不改变锁的状态。ctx 不得为 nil。
func (p *Pool) Acquire(ctx context.Context, l int) error {
	if ctx == nil {
		panic("arena: nil Context")
	}
	s := p.slot(l)
	// 快路径：锁空闲时不建 ctx 监听。
	select {
	case s <- struct{}{}:
		return nil
	default:
	}
	select {
	case s <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AcquireTimeout 限时获取锁 l，绝对截止点为 now + d。
// 截止前未获得则返回 [ErrTimeout]，不改变任何共享状态。
func (p *Pool) AcquireTimeout(l int, d time.Duration) error {
	s := p.slot(l)
	select {
	case s <- struct{}{}:
		return nil
	default:
	}
	if d <= 0 {
		return ErrTimeout
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case s <- struct{}{}:
		return nil
	case <-t.C:
		return ErrTimeout
	}
}

// TryAcquire 非阻塞获取锁 l，获得返回 true。
func (p *Pool) TryAcquire(l int) bool {
	select {
	case p.slot(l) <- struct{}{}:
		return true
	default:
		return false
	}
}

// Release 释放锁 l，至多唤醒一个等待者。
// 释放未被持有的锁属于编程错误，直接 panic。
func (p *Pool) Release(l int) {
	select {
	case <-p.slot(l):
	default:
		panic(fmt.Sprintf("arena: release of free lock %d", l))
	}
}
