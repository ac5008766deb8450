// Package han 判定单个字符是否属于汉字（CJK 统一表意文字及其扩展区、兼容表意文字）。
//
// 判定只看原始码点：不做规范化、不做大小写折叠、不做分解。
package han

import (
	"unicode"
	"unicode/utf8"
)

// Range 是闭区间 [Lo, Hi] 的码点范围。
type Range struct {
	Lo rune
	Hi rune
}

// Ranges 是“汉字”的权威定义：12 个闭区间，按码点升序且互不重叠。
//
// 注意：Extension I（U+2EBF0..U+2EE5D）在码点上位于 F 与 G 之间，因此排在这里。
var Ranges = [...]Range{
	{0x3400, 0x4DBF},   // CJK Unified Ideographs Extension A
	{0x4E00, 0x9FFF},   // CJK Unified Ideographs
	{0xF900, 0xFAFF},   // CJK Compatibility Ideographs
	{0x20000, 0x2A6DF}, // Extension B
	{0x2A700, 0x2B73F}, // Extension C
	{0x2B740, 0x2B81F}, // Extension D
	{0x2B820, 0x2CEAF}, // Extension E
	{0x2CEB0, 0x2EBEF}, // Extension F
	{0x2EBF0, 0x2EE5D}, // Extension I
	{0x30000, 0x3134F}, // Extension G
	{0x31350, 0x323AF}, // Extension H
	{0x323B0, 0x33479}, // Extension J
}

// Table 与 Ranges 等价，供 unicode.Is 做二分查找。
var Table = newTable(Ranges[:])

func newTable(rs []Range) *unicode.RangeTable {
	rt := &unicode.RangeTable{}
	for _, r := range rs {
		if r.Hi <= 0xFFFF {
			rt.R16 = append(rt.R16, unicode.Range16{Lo: uint16(r.Lo), Hi: uint16(r.Hi), Stride: 1})
			continue
		}
		rt.R32 = append(rt.R32, unicode.Range32{Lo: uint32(r.Lo), Hi: uint32(r.Hi), Stride: 1})
	}
	return rt
}

// Is 判断 r 是否落在任一汉字区间内。
func Is(r rune) bool {
	return unicode.Is(Table, r)
}

// IsChar 判断 s 是否恰好是一个汉字。空串或多于一个字符时返回 false。
func IsChar(s string) bool {
	if s == "" {
		return false
	}
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) {
		return false
	}
	if r == utf8.RuneError && size == 1 {
		return false
	}
	return Is(r)
}
