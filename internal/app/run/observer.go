package run

import (
	"time"

	"github.com/John-Robertt/hancov/internal/config"
	"github.com/John-Robertt/hancov/internal/domain"
)

// Observer 用于把“运行进度/阶段/字表结果”从核心执行流程中解耦出来。
//
// 约束：
// - run 包只负责发事件，不做任何输出（避免污染 stdout 上的报告）。
// - 事件按顺序在调用 Execute 的 goroutine 上发出。
type Observer interface {
	// OnStart 在 ExecuteWithObserver 开始时调用。
	OnStart(eff config.EffectiveConfig)
	// OnInventoryLoaded 在每个字表读入并解析后调用（idx 从 1 开始）。
	OnInventoryLoaded(idx, total int, info domain.InventoryInfo, dur time.Duration)
	// OnPhaseDone 在阶段（load/read/analyze）结束时调用（用于打印阶段统计与耗时）。
	OnPhaseDone(name string, fields map[string]any, dur time.Duration)
}
