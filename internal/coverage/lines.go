package coverage

import "strings"

// Line 是逐行明细中的一行。
type Line struct {
	No      int // 从 1 开始
	Total   int
	Known   int
	Percent float64 // Total 为 0 时为 100
	Text    string  // 原文，不含行尾换行
}

// SplitLines 以 '\n' 切分行：
// - 空文本没有行
// - 末尾没有换行的残段自成一行；以换行结尾不会多出一个空行
// - 行尾的 '\r'（包括末尾残段的）视为换行的一部分
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	parts := strings.Split(text, "\n")
	if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	for i, p := range parts {
		parts[i] = strings.TrimSuffix(p, "\r")
	}
	return parts
}

// Lines 对每一行独立做与 Analyze 相同的过滤与划分，结果顺序与原文一致。
func Lines(text string, inv Membership, hanOnly bool) []Line {
	raw := SplitLines(text)
	out := make([]Line, 0, len(raw))
	for i, s := range raw {
		chars := Counted(s, hanOnly)
		known := 0
		for _, r := range chars {
			if has(inv, r) {
				known++
			}
		}
		out = append(out, Line{
			No:      i + 1,
			Total:   len(chars),
			Known:   known,
			Percent: percent(known, len(chars)),
			Text:    s,
		})
	}
	return out
}
