package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"github.com/John-Robertt/hancov/internal/app/run"
	"github.com/John-Robertt/hancov/internal/config"
	"github.com/John-Robertt/hancov/internal/domain"
)

var _ run.Observer = (*progressUI)(nil)

// progressUI 是交互终端下的阶段进度输出。
//
// - 所有过程信息写到 stderr，不污染 stdout 上的报告
// - 事件驱动：run 层只发事件，CLI 决定如何展示
type progressUI struct {
	w io.Writer

	mu        sync.Mutex
	startedAt time.Time
}

func newProgressUI(w io.Writer) *progressUI {
	return &progressUI{w: w}
}

func (p *progressUI) OnStart(eff config.EffectiveConfig) {
	now := time.Now()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.startedAt.IsZero() {
		p.startedAt = now
	}

	fmt.Fprintf(p.w, "[%s] hancov\n", now.Format("15:04:05"))
	fmt.Fprintln(p.w, "配置（生效）:")
	if eff.ConfigPath != "" {
		fmt.Fprintf(p.w, "  config: %s\n", eff.ConfigPath)
	}
	fmt.Fprintf(p.w, "  inventories: %s\n", formatStringListJSON(eff.Inventories))
	fmt.Fprintf(p.w, "  input: %s\n", formatInput(eff.Input))
	fmt.Fprintf(p.w, "  mode: %s\n", formatMode(eff.HanOnly))
	fmt.Fprintf(p.w, "  union: %s  per_line: %s  top_unknown: %d\n", onOff(eff.Union), onOff(eff.PerLine), eff.TopUnknown)
	fmt.Fprintf(p.w, "  encoding: %s  html: %s  format: %s\n", eff.Encoding, eff.HTML, eff.Format)
	if len(eff.ExcludeDirs) > 0 {
		fmt.Fprintf(p.w, "  exclude_dirs: %s\n", formatStringListJSON(eff.ExcludeDirs))
	}
	if eff.Output != "" {
		fmt.Fprintf(p.w, "  output: %s\n", truncate(eff.Output, 120))
	}
	fmt.Fprintln(p.w)
}

func (p *progressUI) OnInventoryLoaded(idx, total int, info domain.InventoryInfo, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	note := ""
	if info.Size == 0 {
		note = " (没有汉字)"
	}
	fmt.Fprintf(p.w, "[%d/%d] %s: %s 字%s (%s)\n",
		idx, total, info.Label, humanize.Comma(int64(info.Size)), note, formatShortDuration(dur),
	)
}

func (p *progressUI) OnPhaseDone(name string, fields map[string]any, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch name {
	case run.PhaseLoad:
		fmt.Fprintf(p.w, "加载字表: inventories=%d raw_size=%s (%s)\n",
			intField(fields, "inventories"), humanize.Comma(int64(intField(fields, "raw_size"))), formatShortDuration(dur),
		)
	case run.PhaseRead:
		fmt.Fprintf(p.w, "读取输入: %s runes=%s (%s)\n",
			truncate(stringField(fields, "input"), 120), humanize.Comma(int64(intField(fields, "runes"))), formatShortDuration(dur),
		)
	case run.PhaseAnalyze:
		fmt.Fprintf(p.w, "分析: results=%d total_chars=%s (%s)\n",
			intField(fields, "results"), humanize.Comma(int64(intField(fields, "total_chars"))), formatShortDuration(dur),
		)
		fmt.Fprintf(p.w, "完成：耗时 %s\n\n", formatShortDuration(time.Since(p.startedAt)))
	default:
		// 兜底：未知阶段也不要静默（便于调试/演进）。
		fmt.Fprintf(p.w, "%s (%s)\n", name, formatShortDuration(dur))
	}
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func formatMode(hanOnly bool) string {
	if hanOnly {
		return "han-only"
	}
	return "all-chars"
}

func formatInput(path string) string {
	if strings.TrimSpace(path) == "" {
		return "<stdin>"
	}
	return truncate(path, 120)
}

func formatStringListJSON(xs []string) string {
	// json.Marshal(nil slice) => "null"；对用户更友好的是 "[]"
	if xs == nil {
		xs = []string{}
	}
	b, err := json.Marshal(xs)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 || len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:runeCut(s, max)]
	}
	return s[:runeCut(s, max-3)] + "..."
}

// runeCut 返回不超过 n 且落在字符边界上的切点。
func runeCut(s string, n int) int {
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return n
}

func formatShortDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func intField(fields map[string]any, key string) int {
	if fields == nil {
		return 0
	}
	v, ok := fields[key]
	if !ok {
		return 0
	}
	switch x := v.(type) {
	case int:
		return x
	case int32:
		return int(x)
	case int64:
		return int(x)
	default:
		return 0
	}
}

func stringField(fields map[string]any, key string) string {
	s, _ := fields[key].(string)
	return s
}
