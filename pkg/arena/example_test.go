package arena_test

import (
	"errors"
	"fmt"
	"time"

	"github.com/omeyang/lockarena/pkg/arena"
)

// 构造经典的交叉获取局面：worker 0 持有锁 0 并等待锁 1，
// worker 1 持有锁 1，此时 worker 1 再声明锁 0 会成环，被直接拒绝。
func ExampleWaitGraph_Claim() {
	g := arena.NewWaitGraph(2, 2)

	_, _ = g.Claim(0, 0)
	_, _ = g.Claim(1, 1)
	_, _ = g.Claim(0, 1)

	_, err := g.Claim(1, 0)
	fmt.Println(errors.Is(err, arena.ErrWouldDeadlock))
	// Output: true
}

func ExamplePool_AcquireTimeout() {
	pool, _ := arena.NewPool(1)
	_ = pool.AcquireTimeout(0, time.Millisecond)

	// 锁已被持有，限时等待以超时收场。
	err := pool.AcquireTimeout(0, time.Millisecond)
	fmt.Println(errors.Is(err, arena.ErrTimeout))

	pool.Release(0)
	// Output: true
}

func ExampleReport_String() {
	r := arena.Report{Rounds: 100, Failed: 10}
	fmt.Println(r)
	// Output: 90 locks granted, 10 errors (10.00%)
}

func ExampleParseKind() {
	kind, _ := arena.ParseKind("timedlock")
	fmt.Println(kind)
	// Output: timedlock
}
