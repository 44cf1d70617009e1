// Package arena 实现多锁获取策略的压测内核。
//
// 一组 worker 在共享的锁池上随机申请多把互斥锁，用于对比三种
// 获取策略在随机争用下的表现：
//
//	策略        行为                              失败模式
//	────────────────────────────────────────────────────────────
//	naive       直接阻塞获取，无任何协调            真死锁（不检测、不恢复）
//	matrix      等待图 + 成环预判，拒绝不安全获取    ErrWouldDeadlock（本地恢复）
//	timedlock   限时等待，超时视为疑似死锁          ErrTimeout（本地恢复）
//
// 核心构件：
//
//   - [Pool]：固定数量的独立互斥锁，基于 size=1 channel 实现，
//     支持阻塞、限时与非阻塞三种获取方式。
//   - [WaitGraph]：等待图，记录 (worker, lock) 的 持有/等待 关系
//     及可重入计数，在授予前做成环检查。
//   - [Strategy]：三种策略的统一接口，启动时选定一次。
//   - [Driver]：组装以上构件，按配置时长驱动 worker 并产出 [Report]。
//
// 失败都是普通的返回值，不跨层抛出。内部一致性被破坏
// （释放未持有的锁、等待图成环不变量失效）属于编程错误，直接 panic。
package arena
