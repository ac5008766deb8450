// Package inventory 把字表文件内容变成去重的汉字集合，并按加载顺序管理多个字表。
package inventory

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/John-Robertt/hancov/internal/han"
)

// Set 是一个字表：汉字集合。构造后只读。
type Set map[rune]struct{}

// Parse 逐字符扫描 text，只保留汉字。
//
// 文件结构（单行/多行）、空白、标点都不需要特殊处理：分类器本身会把它们排除。
func Parse(text string) Set {
	s := make(Set)
	for _, r := range text {
		if han.Is(r) {
			s[r] = struct{}{}
		}
	}
	return s
}

// Of 用给定字符构造集合；非汉字同样被丢弃。主要供测试与程序化调用使用。
func Of(chars ...string) Set {
	return Parse(strings.Join(chars, ""))
}

func (s Set) Has(r rune) bool {
	_, ok := s[r]
	return ok
}

func (s Set) Len() int { return len(s) }

// Union 返回 sets 的并集（新集合，不修改入参）。
func Union(sets ...Set) Set {
	n := 0
	for _, s := range sets {
		n += len(s)
	}
	out := make(Set, n)
	for _, s := range sets {
		for r := range s {
			out[r] = struct{}{}
		}
	}
	return out
}

// Entry 是有序集合中的一项。
type Entry struct {
	Label string
	Set   Set
}

// Collection 是“label → 字表”的有序映射：遍历顺序等于插入顺序。
//
// 约束：label 唯一；重名时依次追加 -2、-3……
type Collection struct {
	entries []Entry
	index   map[string]int
}

func NewCollection() *Collection {
	return &Collection{index: make(map[string]int)}
}

// Add 以 stem 为基础 label 加入字表，返回最终使用的 label。
func (c *Collection) Add(stem string, s Set) string {
	if c.index == nil {
		c.index = make(map[string]int)
	}
	base := stem
	if base == "" {
		base = "inventory"
	}
	label := base
	for n := 2; ; n++ {
		if _, taken := c.index[label]; !taken {
			break
		}
		label = fmt.Sprintf("%s-%d", base, n)
	}
	if s == nil {
		s = Set{}
	}
	c.index[label] = len(c.entries)
	c.entries = append(c.entries, Entry{Label: label, Set: s})
	return label
}

func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Entries 返回按插入顺序排列的副本。
func (c *Collection) Entries() []Entry {
	if c == nil {
		return nil
	}
	return append([]Entry(nil), c.entries...)
}

func (c *Collection) Labels() []string {
	out := make([]string, 0, c.Len())
	for _, e := range c.Entries() {
		out = append(out, e.Label)
	}
	return out
}

func (c *Collection) Get(label string) (Set, bool) {
	if c == nil {
		return nil, false
	}
	i, ok := c.index[label]
	if !ok {
		return nil, false
	}
	return c.entries[i].Set, true
}

// RawSize 是各字表大小之和（不去重）。
func (c *Collection) RawSize() int {
	n := 0
	for _, e := range c.Entries() {
		n += e.Set.Len()
	}
	return n
}

// Union 返回全部字表的并集。
func (c *Collection) Union() Set {
	sets := make([]Set, 0, c.Len())
	for _, e := range c.Entries() {
		sets = append(sets, e.Set)
	}
	return Union(sets...)
}

// Stem 返回路径的基名去掉最后一个扩展名：dir/a.b.txt → a.b。
// 以 '.' 开头且没有其它 '.' 的文件名（如 .hidden）原样返回。
func Stem(path string) string {
	base := filepath.Base(path)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	ext := filepath.Ext(base)
	if ext == base {
		return base
	}
	return strings.TrimSuffix(base, ext)
}

// ReadFunc 读取一个字表文件的完整文本（边界层负责解码）。
type ReadFunc func(path string) (string, error)

// Load 按 paths 顺序读取并解析字表，label 取自文件 stem。
//
// 注意：文件是否存在由上层在加载前统一检查；这里遇到读取错误直接返回。
func Load(paths []string, read ReadFunc) (*Collection, error) {
	c := NewCollection()
	for _, p := range paths {
		text, err := read(p)
		if err != nil {
			return nil, err
		}
		label := Stem(p)
		if label == "" {
			label = p
		}
		c.Add(label, Parse(text))
	}
	return c, nil
}
