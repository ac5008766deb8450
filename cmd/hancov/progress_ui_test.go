package main

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/John-Robertt/hancov/internal/app/run"
	"github.com/John-Robertt/hancov/internal/config"
	"github.com/John-Robertt/hancov/internal/domain"
)

func TestProgressUI_PhaseLines(t *testing.T) {
	var b strings.Builder
	p := newProgressUI(&b)

	eff := config.EffectiveConfig{
		Options:     domain.DefaultOptions(),
		Inventories: []string{"/w/a.txt"},
		Format:      "text",
		Encoding:    "utf-8",
		HTML:        "auto",
	}
	p.OnStart(eff)
	p.OnInventoryLoaded(1, 2, domain.InventoryInfo{Label: "a", Size: 1234}, 200*time.Millisecond)
	p.OnInventoryLoaded(2, 2, domain.InventoryInfo{Label: "b", Size: 0}, 0)
	p.OnPhaseDone(run.PhaseLoad, map[string]any{"inventories": 2, "raw_size": 1234}, time.Second)
	p.OnPhaseDone(run.PhaseRead, map[string]any{"input": "<stdin>", "runes": 5000}, 0)
	p.OnPhaseDone(run.PhaseAnalyze, map[string]any{"results": 2, "total_chars": 4200}, 0)

	out := b.String()
	for _, want := range []string{
		`  inventories: ["/w/a.txt"]`,
		"  input: <stdin>",
		"  mode: han-only",
		"[1/2] a: 1,234 字 (0.2s)",
		"[2/2] b: 0 字 (没有汉字) (0.0s)",
		"加载字表: inventories=2 raw_size=1,234 (1.0s)",
		"读取输入: <stdin> runes=5,000",
		"分析: results=2 total_chars=4,200",
		"完成：耗时",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("输出缺少 %q：\n%s", want, out)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("  abc  ", 10); got != "abc" {
		t.Fatalf("期望 abc，实际 %q", got)
	}
	if got := truncate("abcdefghij", 6); got != "abc..." {
		t.Fatalf("期望 abc...，实际 %q", got)
	}
	// “三百千”每字 3 字节，切点 5 落在“百”中间，应回退到 3。
	if got := truncate("/三百千.txt", 8); got != "/三..." || !utf8.ValidString(got) {
		t.Fatalf("期望 /三...，实际 %q", got)
	}
	if got := truncate("三百千", 2); got != "" {
		t.Fatalf("期望空串，实际 %q", got)
	}
}

func TestIntField(t *testing.T) {
	fields := map[string]any{"a": 3, "b": int64(4), "c": "x"}
	if intField(fields, "a") != 3 || intField(fields, "b") != 4 || intField(fields, "c") != 0 || intField(nil, "a") != 0 {
		t.Fatalf("intField 结果不符")
	}
}
