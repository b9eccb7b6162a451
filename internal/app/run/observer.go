package run

import (
	"time"

	"github.com/John-Robertt/VLCML/internal/config"
)

// Observer 用于把"运行进度/阶段/条目结果"从核心执行流程中解耦出来。
//
// 约束：
// - run 包只负责发事件，不做任何输出（避免污染 stdout 的文档契约）。
// - 事件全部来自同一个 goroutine（流水线是串行的）；实现若自带
//   ticker 之类的后台输出，需要自己对内部状态加锁。
type Observer interface {
	// OnStart 在 ExecuteWithObserver 开始时调用（应尽量早，保证用户 1 秒内看到输出）。
	OnStart(eff config.EffectiveConfig)
	// OnPhaseDone 在阶段结束时调用（用于打印阶段统计与耗时）。
	OnPhaseDone(name string, fields map[string]any, dur time.Duration)
	// OnItemDone 在单个候选文件处理完成时调用。ok 表示它进入了曲目表；
	// 探测失败与重复路径都算 ok=false（按静默跳过的契约，失败不单独成行）。
	OnItemDone(idx, total int, path string, ok bool, dur time.Duration)
	// OnProgress 用于 keepalive（通常由 CLI 自己 ticker 触发；run 层不强制调用）。
	OnProgress(done, total, tracks, skipped int, elapsed time.Duration)
}
