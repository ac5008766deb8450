// Package report 把覆盖率结果组装成确定性的结构化文档与人类可读的文本报告。
//
// 文本格式（章节标记 "=== … ===" 与字段顺序）是对外契约：下游会直接 diff 不同批次的报告。
package report

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/John-Robertt/hancov/internal/coverage"
	"github.com/John-Robertt/hancov/internal/domain"
	"github.com/John-Robertt/hancov/internal/inventory"
)

// UnionLabel 是并集块的标题。
const UnionLabel = "UNION of inventories"

// Build 等价于 Render(Compile(...))。
func Build(text string, invs *inventory.Collection, opts domain.Options, names Namer) string {
	return Render(Compile(text, invs, opts, names))
}

// Compile 计算各字表（以及可选并集）的覆盖率，返回结构化文档。
//
// 并集只在 opts.Union 且字表数 ≥2 时计算；逐行明细不作用于并集。
func Compile(text string, invs *inventory.Collection, opts domain.Options, names Namer) domain.Document {
	doc := domain.Document{
		Options:     opts,
		Inventories: make([]domain.InventoryInfo, 0, invs.Len()),
		Results:     make([]domain.Result, 0, invs.Len()),
	}

	for _, e := range invs.Entries() {
		doc.Inventories = append(doc.Inventories, domain.InventoryInfo{Label: e.Label, Size: e.Set.Len()})
	}

	for _, e := range invs.Entries() {
		res := result(e.Label, coverage.Analyze(text, e.Set, opts.HanOnly), opts.TopUnknown, names)
		if opts.PerLine {
			res.Lines = lineRows(coverage.Lines(text, e.Set, opts.HanOnly))
		}
		doc.Results = append(doc.Results, res)
	}

	if opts.Union && invs.Len() > 1 {
		u := invs.Union()
		doc.Union = &domain.UnionInfo{RawSize: invs.RawSize(), UniqueSize: u.Len()}
		res := result(UnionLabel, coverage.Analyze(text, u, opts.HanOnly), opts.TopUnknown, names)
		doc.UnionResult = &res
	}

	doc.Finalize()
	return doc
}

func result(label string, rep coverage.Report, topN int, names Namer) domain.Result {
	res := domain.Result{
		Label:       label,
		Total:       rep.Total,
		Known:       rep.Known,
		Unknown:     rep.Unknown,
		CoveragePct: rep.Percent,
	}
	if rep.Unknown == 0 {
		return res
	}
	res.UniqueOOV = coverage.UniqueOOV(rep)
	res.Top = charCounts(coverage.Top(rep.UnknownFreq, topN), names)
	res.Bottom = charCounts(coverage.Bottom(rep.UnknownFreq, topN), names)
	return res
}

func charCounts(es []coverage.Entry, names Namer) []domain.CharCount {
	out := make([]domain.CharCount, 0, len(es))
	for _, e := range es {
		out = append(out, domain.CharCount{
			Char:  string(e.Char),
			Count: e.Count,
			Code:  CodePoint(e.Char),
			Name:  charName(names, e.Char),
		})
	}
	return out
}

func lineRows(ls []coverage.Line) []domain.LineRow {
	out := make([]domain.LineRow, 0, len(ls))
	for _, l := range ls {
		out = append(out, domain.LineRow{
			No:          l.No,
			Total:       l.Total,
			Known:       l.Known,
			CoveragePct: l.Percent,
			Text:        l.Text,
		})
	}
	return out
}

// CodePoint 返回 "U+XXXX"（至少 4 位十六进制，大写）。
func CodePoint(r rune) string {
	return fmt.Sprintf("U+%04X", r)
}

func charName(names Namer, r rune) string {
	if names == nil {
		return domain.UnnamedChar
	}
	n, ok := names.Name(r)
	if !ok || n == "" {
		return domain.UnnamedChar
	}
	return n
}

// Render 把文档渲染为文本报告（行之间以 '\n' 连接，末尾无换行）。
func Render(doc domain.Document) string {
	var w lineWriter

	w.add("=== Inventories Loaded ===")
	for _, inv := range doc.Inventories {
		w.addf("- %s: %s characters", inv.Label, comma(inv.Size))
	}
	if doc.Union != nil {
		w.addf("- <union>: %s (raw sum; union unique size %s)", comma(doc.Union.RawSize), comma(doc.Union.UniqueSize))
	}

	for _, res := range doc.Results {
		renderResult(&w, res, doc.Options.TopUnknown, "No unknown characters. 🎉", doc.Options.PerLine)
	}
	if doc.UnionResult != nil {
		renderResult(&w, *doc.UnionResult, doc.Options.TopUnknown, "No unknown characters under union. 🎉", false)
	}

	return w.String()
}

func renderResult(w *lineWriter, res domain.Result, topN int, noUnknown string, perLine bool) {
	w.addf("\n=== Results for [%s] ===", res.Label)
	w.addf("Total counted chars: %s", comma(res.Total))
	w.addf("Known (in-inventory): %s", comma(res.Known))
	w.addf("Unknown (OOV): %s", comma(res.Unknown))
	w.addf("Coverage: %.2f%%", res.CoveragePct)

	if res.Unknown > 0 {
		w.add("\nList of characters not present (unique OOV, freq-desc):")
		w.add(res.UniqueOOV)

		w.addf("\nTop %d unknown characters (high frequency):", topN)
		for _, c := range res.Top {
			w.addf("%s\t%d\t%s\t%s", c.Char, c.Count, c.Code, c.Name)
		}

		w.addf("\nBottom %d unknown characters (low frequency):", topN)
		for _, c := range res.Bottom {
			w.addf("%s\t%d\t%s\t%s", c.Char, c.Count, c.Code, c.Name)
		}
	} else {
		w.add("\n" + noUnknown)
	}

	if perLine {
		w.add("\nPer-line coverage:")
		for _, l := range res.Lines {
			w.addf("%4d: %4d/%-4d %6.2f%% | %s", l.No, l.Known, l.Total, l.CoveragePct, l.Text)
		}
	}
}

func comma(n int) string { return humanize.Comma(int64(n)) }

type lineWriter struct {
	lines []string
}

func (w *lineWriter) add(s string) { w.lines = append(w.lines, s) }

func (w *lineWriter) addf(format string, args ...any) {
	w.lines = append(w.lines, fmt.Sprintf(format, args...))
}

func (w *lineWriter) String() string { return strings.Join(w.lines, "\n") }
