// Package xrun 基于 errgroup + context 管理一组并发任务的运行与协调关闭。
//
// [Group] 启动的任一任务返回错误，或 [Group.Cancel] 被调用，
// 所有任务都会通过派生 context 收到取消信号。[Timer] 与 [WaitForDone]
// 是常用的辅助任务；[WithSignals] 可让 Group 自带系统信号监听，
// 收到信号时以 [SignalError] 为原因取消。
//
//	g, ctx := xrun.NewGroup(ctx, xrun.WithName("app"), xrun.WithSignals(xrun.DefaultSignals()))
//	g.Go(runWorkers)
//	g.Go(xrun.Timer(time.Minute, func(context.Context) error { return errDone }))
//	err := g.Wait()
package xrun
