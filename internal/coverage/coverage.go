// Package coverage 计算一段文本相对某个字表的覆盖率与频次表。
//
// 所有函数都是纯函数：不持有可变状态，每次调用分配新的结果。
package coverage

import (
	"sort"
	"strings"
	"unicode"

	"github.com/John-Robertt/hancov/internal/han"
)

// Membership 是字表的最小能力：成员判定。inventory.Set 满足该接口。
type Membership interface {
	Has(r rune) bool
}

// Freq 是字符 → 出现次数的多重集，本身无序；排序只在出报告时显式进行。
type Freq map[rune]int

// Report 是一次 (text, inventory) 计算的结果，构造后只读。
type Report struct {
	Total   int
	Known   int
	Unknown int
	// Percent = Known / Total * 100；Total 为 0 时定义为 100。
	Percent float64

	KnownFreq   Freq
	UnknownFreq Freq
}

// IsBlank 判断 r 是否为空白（等价于“strip 后为空”）。
// unicode.IsSpace 之外还包含 U+001C..U+001F（信息分隔符也算空白）。
func IsBlank(r rune) bool {
	if unicode.IsSpace(r) {
		return true
	}
	return r >= 0x1C && r <= 0x1F
}

// Counted 按原文顺序返回计入统计的字符：空白永远不计；hanOnly 时只保留汉字。
func Counted(text string, hanOnly bool) []rune {
	out := make([]rune, 0, len(text)/3)
	for _, r := range text {
		if hanOnly && !han.Is(r) {
			continue
		}
		if IsBlank(r) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Analyze 计算 text 相对 inv 的覆盖率报告。
func Analyze(text string, inv Membership, hanOnly bool) Report {
	chars := Counted(text, hanOnly)
	rep := Report{
		Total:       len(chars),
		KnownFreq:   make(Freq),
		UnknownFreq: make(Freq),
	}
	for _, r := range chars {
		if has(inv, r) {
			rep.Known++
			rep.KnownFreq[r]++
			continue
		}
		rep.Unknown++
		rep.UnknownFreq[r]++
	}
	rep.Percent = percent(rep.Known, rep.Total)
	return rep
}

func has(inv Membership, r rune) bool {
	if inv == nil {
		return false
	}
	return inv.Has(r)
}

func percent(known, total int) float64 {
	if total == 0 {
		return 100.0
	}
	return float64(known) / float64(total) * 100.0
}

// Entry 是排序后的一行：字符与次数。
type Entry struct {
	Char  rune
	Count int
}

func entries(f Freq) []Entry {
	out := make([]Entry, 0, len(f))
	for r, n := range f {
		out = append(out, Entry{Char: r, Count: n})
	}
	return out
}

// RankDesc：次数降序，次数相同按码点升序。
func RankDesc(f Freq) []Entry {
	out := entries(f)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Char < out[j].Char
	})
	return out
}

// RankAsc：次数升序，次数相同按码点升序（不是 RankDesc 的简单反转）。
func RankAsc(f Freq) []Entry {
	out := entries(f)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count < out[j].Count
		}
		return out[i].Char < out[j].Char
	})
	return out
}

// Top 是高频前 n 个；Bottom 是低频前 n 个。两者在不同字符较少时可能重叠，不去重。
func Top(f Freq, n int) []Entry { return head(RankDesc(f), n) }

func Bottom(f Freq, n int) []Entry { return head(RankAsc(f), n) }

func head(es []Entry, n int) []Entry {
	if n <= 0 {
		return []Entry{}
	}
	if n > len(es) {
		n = len(es)
	}
	return es[:n]
}

// UniqueOOV 把全部未登录字按 RankDesc 顺序拼成一个字符串。
func UniqueOOV(rep Report) string {
	var b strings.Builder
	for _, e := range RankDesc(rep.UnknownFreq) {
		b.WriteRune(e.Char)
	}
	return b.String()
}
