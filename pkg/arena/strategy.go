package arena

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Kind 标识一种获取策略。
type Kind int

const (
	// KindNaive 直接阻塞获取，无任何协调，可能真死锁。
	KindNaive Kind = iota
	// KindMatrix 基于等待图做成环预判，拒绝不安全的获取。
	KindMatrix
	// KindTimed 限时等待，超时视为疑似死锁。
	KindTimed
)

// String 返回策略的配置名（naive/matrix/timedlock）。
func (k Kind) String() string {
	switch k {
	case KindNaive:
		return "naive"
	case KindMatrix:
		return "matrix"
	case KindTimed:
		return "timedlock"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind 解析策略名，大小写不敏感。
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "naive":
		return KindNaive, nil
	case "matrix":
		return KindMatrix, nil
	case "timedlock", "timed":
		return KindTimed, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
	}
}

// MarshalText 实现 encoding.TextMarshaler。
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler，供配置反序列化使用。
func (k *Kind) UnmarshalText(data []byte) error {
	parsed, err := ParseKind(string(data))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Strategy 是三种获取策略的统一能力：获取与释放。
// 启动时选定一次，之后所有 worker 共用同一实例。
//
// Acquire 的失败（[ErrWouldDeadlock]、[ErrTimeout]、ctx 错误）都是同步的
// 本地结果：不自动重试，由调用方决定是否释放已持有的锁稍后再来。
// ctx 是 driver 的硬停止上下文，不用于轮内的协作取消——它只在收尾阶段
// 解救卡在真死锁里的 worker。
type Strategy interface {
	// Name 返回策略的展示名，用于启动横幅与报告。
	Name() string

	// Acquire 为 worker t 获取锁 l。
	Acquire(ctx context.Context, t, l int) error

	// Release 释放 worker t 持有的锁 l。
	Release(t, l int)
}

// NewStrategy 按 kind 构建策略。
// matrix 需要非 nil 的 graph；timedlock 需要正的 timeout；
// 其余组合下这两个参数被忽略。
func NewStrategy(kind Kind, pool *Pool, graph *WaitGraph, timeout time.Duration) (Strategy, error) {
	if pool == nil {
		return nil, fmt.Errorf("%w: nil pool", ErrInvalidConfig)
	}
	switch kind {
	case KindNaive:
		return &naiveStrategy{pool: pool}, nil
	case KindMatrix:
		if graph == nil {
			return nil, fmt.Errorf("%w: matrix strategy requires a wait graph", ErrInvalidConfig)
		}
		return &matrixStrategy{pool: pool, graph: graph}, nil
	case KindTimed:
		if timeout <= 0 {
			return nil, fmt.Errorf("%w: timedlock strategy requires a positive timeout", ErrInvalidConfig)
		}
		return &timedStrategy{pool: pool, timeout: timeout}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownStrategy, int(kind))
	}
}

// naiveStrategy 无协调直接获取。两个 worker 以相反顺序申请重叠的锁集合
// 即可永久死锁；该策略不检测也不恢复，存在的意义就是刻画基线失败模式。
type naiveStrategy struct {
	pool *Pool
}

func (s *naiveStrategy) Name() string { return "Just take it" }

func (s *naiveStrategy) Acquire(ctx context.Context, _, l int) error {
	return s.pool.Acquire(ctx, l)
}

func (s *naiveStrategy) Release(_, l int) {
	s.pool.Release(l)
}

// matrixStrategy 先在等待图上声明意图并做成环检查，通过后才对真实的锁
// 做阻塞获取。协调锁绝不跨阻塞获取持有。
type matrixStrategy struct {
	pool  *Pool
	graph *WaitGraph
}

func (s *matrixStrategy) Name() string { return "Matrix" }

func (s *matrixStrategy) Acquire(ctx context.Context, t, l int) error {
	first, err := s.graph.Claim(t, l)
	if err != nil || !first {
		// 被拒绝，或是可重入嵌套（真实的锁早已持有）。
		return err
	}
	if err := s.pool.Acquire(ctx, l); err != nil {
		// 硬停止打断了阻塞获取：撤销刚声明的意图，保持图与真实持有一致。
		if last := s.graph.Release(t, l); !last {
			panic("arena: first-level claim rollback left residual recursion")
		}
		return err
	}
	return nil
}

func (s *matrixStrategy) Release(t, l int) {
	if s.graph.Release(t, l) {
		s.pool.Release(l)
	}
}

// timedStrategy 限时等待。超时换得 O(1) 内存与零全局协调，
// 代价是重度但合法的争用会被误判为死锁。
type timedStrategy struct {
	pool    *Pool
	timeout time.Duration
}

func (s *timedStrategy) Name() string { return "TimedLock" }

func (s *timedStrategy) Acquire(_ context.Context, _, l int) error {
	return s.pool.AcquireTimeout(l, s.timeout)
}

func (s *timedStrategy) Release(_, l int) {
	s.pool.Release(l)
}

// 编译期接口检查。
var (
	_ Strategy = (*naiveStrategy)(nil)
	_ Strategy = (*matrixStrategy)(nil)
	_ Strategy = (*timedStrategy)(nil)
)
