// Package wizard 是交互式向导：逐项询问参数，产出等价的 hancov 命令行参数。
//
// 向导只负责问答与拼参数；真正的分析由 CLI 以这些参数在进程内执行。
package wizard

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/John-Robertt/hancov/internal/config"
	"github.com/John-Robertt/hancov/internal/domain"
)

const (
	// DefaultInput 与 DefaultOutput 只有在 cwd 下存在（输入）或作为建议值（输出）时才作为默认答案。
	DefaultInput  = "my_text.txt"
	DefaultOutput = "coverage_report.txt"

	// SkipAnswer 作为报告路径的回答时表示不保存。
	SkipAnswer = "-"
)

// Prompter 在 out 上提问并从 in 读取一行回答。读到 EOF 后所有问题都取默认值。
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
	eof bool
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Ask 提问并返回去掉首尾空白的回答；空回答或 EOF 返回 def。
func (p *Prompter) Ask(question, def string) string {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", question, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", question)
	}
	ans := p.readLine()
	if ans == "" {
		return def
	}
	return ans
}

// YesNo 询问是/否；无法识别的回答会重新提问。
func (p *Prompter) YesNo(question string, def bool) bool {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	for {
		switch strings.ToLower(p.Ask(fmt.Sprintf("%s (%s)", question, hint), "")) {
		case "":
			return def
		case "y", "yes":
			return true
		case "n", "no":
			return false
		}
		fmt.Fprintln(p.out, "Please answer y or n.")
	}
}

// Int 询问一个整数；无法解析或为负数时返回 def。
func (p *Prompter) Int(question string, def int) int {
	n, err := strconv.Atoi(p.Ask(question, strconv.Itoa(def)))
	if err != nil || n < 0 {
		return def
	}
	return n
}

func (p *Prompter) readLine() string {
	if p.eof {
		fmt.Fprintln(p.out)
		return ""
	}
	line, err := p.in.ReadString('\n')
	if err != nil {
		// EOF（或读失败）之后不再阻塞等待输入。
		p.eof = true
		if line == "" {
			fmt.Fprintln(p.out)
		}
	}
	return strings.TrimSpace(line)
}

// Answers 是向导收集到的全部答案。
type Answers struct {
	Inventories []string
	Input       string
	Output      string
	Union       bool
	PerLine     bool
	AllChars    bool
	TopUnknown  int
}

// Ask 依次提问。exists 用于判断默认文件是否存在于 dir（通常为 cwd）。
func Ask(p *Prompter, dir string, exists func(path string) bool) Answers {
	var invDef, inputDef string
	if f := filepath.Join(dir, config.DefaultInventory); exists(f) {
		invDef = f
	}
	if f := filepath.Join(dir, DefaultInput); exists(f) {
		inputDef = f
	}
	outDef := filepath.Join(dir, DefaultOutput)

	var a Answers
	for _, s := range strings.Split(p.Ask("Inventory file(s), comma-separated", invDef), ",") {
		if s = strings.TrimSpace(s); s != "" {
			a.Inventories = append(a.Inventories, absFrom(dir, s))
		}
	}
	if in := p.Ask("Path to the input text", inputDef); in != "" {
		a.Input = absFrom(dir, in)
	}
	if out := p.Ask("Path to save the report ('-' to skip)", outDef); out != "" && out != SkipAnswer {
		a.Output = absFrom(dir, out)
	}

	a.Union = p.YesNo("Treat multiple inventories as a UNION (any match counts as known)?", false)
	a.PerLine = p.YesNo("Show per-line breakdown?", false)
	a.AllChars = p.YesNo("Include non-Han characters in counts (i.e., not Han-only)?", false)
	a.TopUnknown = p.Int("Top-N unknown characters to list", domain.DefaultTopUnknown)
	return a
}

// Args 返回与答案等价的 hancov 参数（不含程序名）。
func (a Answers) Args() []string {
	var args []string
	if len(a.Inventories) > 0 {
		args = append(args, "-i")
		args = append(args, a.Inventories...)
	}
	if a.Input != "" {
		args = append(args, "--input", a.Input)
	}
	if a.Output != "" {
		args = append(args, "-o", a.Output)
	}
	if a.AllChars {
		args = append(args, "--all-chars")
	}
	if a.PerLine {
		args = append(args, "--per-line")
	}
	if a.Union {
		args = append(args, "--union")
	}
	if a.TopUnknown != domain.DefaultTopUnknown {
		args = append(args, "--top-unknown", strconv.Itoa(a.TopUnknown))
	}
	return args
}

// CommandLine 把参数拼成可直接粘贴到 POSIX shell 的命令行。
func CommandLine(prog string, args []string) string {
	return shellquote.Join(append([]string{prog}, args...)...)
}

func absFrom(dir, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(dir, p)
}
