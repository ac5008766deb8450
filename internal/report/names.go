package report

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/runenames"

	"github.com/John-Robertt/hancov/internal/han"
)

// Namer 是只读的字符名查询服务。查不到时返回 ok=false（由调用方替换为占位符）。
type Namer interface {
	Name(r rune) (name string, ok bool)
}

// RuneNames 基于 Unicode 字符数据库（x/text/unicode/runenames）查询字符名。
//
// UCD 对表意文字只登记区段标签（如 "<CJK Ideograph Extension A>"），
// 这里按 UCD 的命名规则还原为 "CJK UNIFIED IDEOGRAPH-XXXX"；其它尖括号标签（<control> 等）视为无名。
type RuneNames struct{}

func (RuneNames) Name(r rune) (string, bool) {
	n := runenames.Name(r)
	switch {
	case n == "" && han.Is(r):
		// x/text 的 UCD 数据尚未收录的扩展区（如扩展 I、J）。
		return fmt.Sprintf("CJK UNIFIED IDEOGRAPH-%04X", r), true
	case n == "":
		return "", false
	case strings.HasPrefix(n, "<CJK Ideograph"):
		return fmt.Sprintf("CJK UNIFIED IDEOGRAPH-%04X", r), true
	case strings.HasPrefix(n, "<Tangut Ideograph"):
		return fmt.Sprintf("TANGUT IDEOGRAPH-%04X", r), true
	case strings.HasPrefix(n, "<"):
		return "", false
	default:
		return n, true
	}
}

// NamerFunc 让普通函数满足 Namer（测试里用来注入“字典缺失”的情况）。
type NamerFunc func(r rune) (string, bool)

func (f NamerFunc) Name(r rune) (string, bool) { return f(r) }
