package arena

import (
	"fmt"
	"sync"
)

// WaitGraph 是 matrix 策略的共享协调状态：一张 workers×locks 的布尔矩阵，
// edge(t,l) 表示 "worker t 正在持有或等待锁 l"，另有一张同形的可重入计数表。
//
// 不变量：把 edge 解释为 worker→lock→worker 的依赖关系时，整张图始终无环。
// 该不变量在授予前强制成立（[WaitGraph.Claim] 拒绝会成环的声明），
// 事后永不修正。
//
// 矩阵与计数表由一把协调锁保护，唯一的例外：worker 在首次（经过成环检查的）
// 获取之后，可以不持协调锁直接读写自己的 recurs(t,·) 条目——此后只有
// 持有者本人会动这些条目。
type WaitGraph struct {
	mu      sync.Mutex // 协调锁，绝不跨真实的阻塞获取持有
	workers int
	locks   int
	edge    []bool // workers×locks，按行展平
	recurs  []int  // 同形，可重入嵌套深度
}

// NewWaitGraph 创建 workers×locks 的等待图，初始无任何边。
func NewWaitGraph(workers, locks int) *WaitGraph {
	if workers <= 0 || locks <= 0 {
		panic(fmt.Sprintf("arena: wait graph dimensions must be positive, got %d×%d", workers, locks))
	}
	return &WaitGraph{
		workers: workers,
		locks:   locks,
		edge:    make([]bool, workers*locks),
		recurs:  make([]int, workers*locks),
	}
}

func (g *WaitGraph) idx(t, l int) int {
	if t < 0 || t >= g.workers || l < 0 || l >= g.locks {
		panic(fmt.Sprintf("arena: wait graph index (%d,%d) out of range %d×%d", t, l, g.workers, g.locks))
	}
	return t*g.locks + l
}

// Claim 声明 worker t 打算获取锁 l。
//
// 返回 first=true 表示这是首层声明，调用方必须紧接着对真实的锁做阻塞获取；
// first=false 表示可重入嵌套（真实的锁早已持有），无需再碰锁本身。
// 返回 [ErrWouldDeadlock] 表示授予会让等待图成环，调用方不得碰真实的锁。
//
// 首层声明在协调锁内完成成环检查并置位 edge(t,l)，随后立即释放协调锁：
// 意图一经公示，任何后来者的成环路径都必然经过这条边而被拒绝，
// 因此真实的阻塞获取可以安全地在协调锁之外进行。
func (g *WaitGraph) Claim(t, l int) (first bool, err error) {
	i := g.idx(t, l)
	if g.recurs[i] > 0 {
		// 可重入：只有持有者本人会走到这里，无需协调锁。
		g.recurs[i]++
		return false, nil
	}

	g.mu.Lock()
	if g.edge[i] {
		g.mu.Unlock()
		panic(fmt.Sprintf("arena: edge (%d,%d) already set with zero recursion count", t, l))
	}
	for tt := 0; tt < g.workers; tt++ {
		if tt == t || !g.edge[g.idx(tt, l)] {
			continue
		}
		if g.reachable(tt, l, t, g.workers*g.locks) {
			g.mu.Unlock()
			return false, ErrWouldDeadlock
		}
	}
	g.edge[i] = true
	g.mu.Unlock()

	g.recurs[i] = 1
	return true, nil
}

// reachable 判断从 worker from 出发、不经由锁 via、能否沿
// 持有/等待 关系走回 target。
//
// 图始终无环，因此搜索不需要访问标记即可终止；budget 是防御性的步数上限，
// 耗尽说明无环不变量早已被破坏，属于不可恢复的编程错误。
// 仅在持有协调锁时调用。
func (g *WaitGraph) reachable(from, via, target, budget int) bool {
	if budget <= 0 {
		panic("arena: wait-for cycle search exceeded bound; acyclicity invariant broken")
	}
	for ll := 0; ll < g.locks; ll++ {
		if ll == via || !g.edge[g.idx(from, ll)] {
			continue
		}
		for tt := 0; tt < g.workers; tt++ {
			if tt == from || !g.edge[g.idx(tt, ll)] {
				continue
			}
			if tt == target {
				return true
			}
			if g.reachable(tt, ll, target, budget-1) {
				return true
			}
		}
	}
	return false
}

// Release 撤销 worker t 对锁 l 的一层声明。
//
// 返回 last=true 表示嵌套已归零、edge(t,l) 已清除，调用方必须释放真实的锁；
// last=false 表示仍有嵌套，真实的锁继续由 t 持有。
// 对嵌套为零的条目调用属于编程错误，直接 panic。
func (g *WaitGraph) Release(t, l int) (last bool) {
	i := g.idx(t, l)
	if g.recurs[i] <= 0 {
		panic(fmt.Sprintf("arena: release of lock %d not claimed by worker %d", l, t))
	}
	g.recurs[i]--
	if g.recurs[i] > 0 {
		return false
	}
	g.mu.Lock()
	g.edge[i] = false
	g.mu.Unlock()
	return true
}

// Snapshot 返回 edge 矩阵的一份拷贝，仅供测试与调试做独立校验。
func (g *WaitGraph) Snapshot() [][]bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([][]bool, g.workers)
	for t := 0; t < g.workers; t++ {
		row := make([]bool, g.locks)
		copy(row, g.edge[t*g.locks:(t+1)*g.locks])
		out[t] = row
	}
	return out
}
