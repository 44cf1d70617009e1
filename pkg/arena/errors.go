package arena

import "errors"

var (
	// ErrWouldDeadlock 表示 matrix 策略拒绝了一次会让等待图成环的获取。
	// worker 应放弃本轮，释放已持有的锁后重试下一轮。
	ErrWouldDeadlock = errors.New("arena: acquisition would close a wait-for cycle")

	// ErrTimeout 表示 timedlock 策略在限定时间内未能获得锁。
	// 在该策略下被视为疑似死锁，恢复方式与 [ErrWouldDeadlock] 相同。
	ErrTimeout = errors.New("arena: lock wait timed out")

	// ErrStalledWorkers 表示停止信号发出后，仍有 worker 在宽限期内
	// 未能退出——naive 策略下通常意味着真死锁已经发生。
	// 返回此错误时 [Report] 仍然有效。
	ErrStalledWorkers = errors.New("arena: workers stalled past stop grace")

	// ErrInvalidConfig 表示配置校验失败。
	ErrInvalidConfig = errors.New("arena: invalid config")

	// ErrUnknownStrategy 表示无法识别的策略名。
	ErrUnknownStrategy = errors.New("arena: unknown strategy")
)
