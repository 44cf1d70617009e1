package arena

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.opentelemetry.io/otel/metric"
)

// Stats 是进程生命周期内单调递增的轮次计数，worker 无锁并发累加。
// 计数单位是"轮"：一次随机锁集合的完整尝试记一次 rounds，
// 中途任何一次获取失败记一次 failed。恒有 rounds ≥ failed。
type Stats struct {
	rounds atomic.Uint64
	failed atomic.Uint64

	// 可选的 OpenTelemetry 镜像计数，见 [Stats.EnableMetrics]。
	otelRounds metric.Int64Counter
	otelFailed metric.Int64Counter
	otelOpts   []metric.AddOption
}

// NewStats 创建归零的计数器。
func NewStats() *Stats {
	return &Stats{}
}

// Round 记一次轮开始。
func (s *Stats) Round(ctx context.Context) {
	s.rounds.Add(1)
	if s.otelRounds != nil {
		s.otelRounds.Add(ctx, 1, s.otelOpts...)
	}
}

// Fail 记一次轮失败。
func (s *Stats) Fail(ctx context.Context) {
	s.failed.Add(1)
	if s.otelFailed != nil {
		s.otelFailed.Add(ctx, 1, s.otelOpts...)
	}
}

// Rounds 返回累计轮数。
func (s *Stats) Rounds() uint64 { return s.rounds.Load() }

// Failed 返回累计失败轮数。
func (s *Stats) Failed() uint64 { return s.failed.Load() }

// Report 是一次运行的汇总。Rounds 与 Failed 的读取无跨计数器的原子性——
// 两者只在 worker 全部停止后才被当作最终结果。
type Report struct {
	// RunID 是本次运行的标识，用于日志关联。
	RunID string
	// Strategy 是策略的展示名。
	Strategy string
	// Rounds 是尝试的总轮数。
	Rounds uint64
	// Failed 是失败的轮数。
	Failed uint64
}

// Granted 返回完整获得锁集合的轮数（Rounds - Failed）。
func (r Report) Granted() uint64 {
	return r.Rounds - r.Failed
}

// FailureRate 返回失败轮数占比（百分数）。零轮时为 0。
func (r Report) FailureRate() float64 {
	if r.Rounds == 0 {
		return 0
	}
	return 100 * float64(r.Failed) / float64(r.Rounds)
}

// String 返回单行人类可读汇总。
func (r Report) String() string {
	return fmt.Sprintf("%d locks granted, %d errors (%.2f%%)", r.Granted(), r.Failed, r.FailureRate())
}

// snapshot 以当前计数生成 Report。
func (s *Stats) snapshot(runID, strategy string) Report {
	return Report{
		RunID:    runID,
		Strategy: strategy,
		Rounds:   s.rounds.Load(),
		Failed:   s.failed.Load(),
	}
}
