package arena

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/omeyang/lockarena/pkg/xlog"
)

// worker 是一个模拟客户端：反复尝试一组随机大小、随机选取的锁，
// 全部到手后短暂持有，再按获取的逆序释放，直到被告知停止。
//
// 每个 worker 带独立的 PCG 随机源，由 driver 的种子派生，
// 保证同种子的两次运行产生相同的申请序列。
type worker struct {
	id       int
	strategy Strategy
	stats    *Stats
	logger   xlog.Logger
	rng      *rand.Rand

	locks     int
	maxClaims int
	maxHold   time.Duration
}

func newWorker(id int, strategy Strategy, stats *Stats, logger xlog.Logger, seed uint64, locks, maxClaims int, maxHold time.Duration) *worker {
	return &worker{
		id:        id,
		strategy:  strategy,
		stats:     stats,
		logger:    logger,
		rng:       rand.New(rand.NewPCG(seed, uint64(id))),
		locks:     locks,
		maxClaims: maxClaims,
		maxHold:   maxHold,
	}
}

// run 执行外层循环。停止是协作式的：每轮开始前检查一次 runCtx，
// 轮内一旦阻塞在 Acquire 里就不会再观察停止信号——停机延迟等于
// 最慢的一次在途获取。killCtx 是 driver 的硬停止上下文，只在
// 宽限期耗尽后用来解救卡死的获取。
func (w *worker) run(runCtx, killCtx context.Context) error {
	w.logger.Debug(runCtx, "worker starting", slog.Int("worker", w.id))
	claimed := make([]int, 0, w.maxClaims)
	for {
		select {
		case <-runCtx.Done():
			w.logger.Debug(killCtx, "worker stopped", slog.Int("worker", w.id))
			return nil
		default:
		}
		claimed = w.round(killCtx, claimed[:0])
	}
}

// round 执行一轮：随机挑 k 把锁依次获取，k 可能为 0。
// 任何一次获取失败即记一次失败并提前终止本轮（剩余的申请不再尝试）；
// 全部到手才按 [0,maxHold) 的均匀随机时长持锁睡眠。
// 无论成败，已持有的锁都按逆序释放。
func (w *worker) round(ctx context.Context, claimed []int) []int {
	k := w.rng.IntN(w.maxClaims)
	w.stats.Round(ctx)

	full := true
	for i := 0; i < k; i++ {
		l := w.rng.IntN(w.locks)
		w.logger.Debug(ctx, "taking lock", slog.Int("worker", w.id), slog.Int("lock", l))
		if err := w.strategy.Acquire(ctx, w.id, l); err != nil {
			w.stats.Fail(ctx)
			w.logger.Debug(ctx, "failed to lock",
				slog.Int("worker", w.id),
				slog.Int("lock", l),
				slog.Any("error", err),
			)
			full = false
			break
		}
		claimed = append(claimed, l)
		w.logger.Debug(ctx, "took lock", slog.Int("worker", w.id), slog.Int("lock", l))
	}

	if full && w.maxHold > 0 {
		time.Sleep(time.Duration(w.rng.Int64N(int64(w.maxHold))))
	}

	for i := len(claimed) - 1; i >= 0; i-- {
		w.strategy.Release(w.id, claimed[i])
		w.logger.Debug(ctx, "released lock", slog.Int("worker", w.id), slog.Int("lock", claimed[i]))
	}
	return claimed
}
