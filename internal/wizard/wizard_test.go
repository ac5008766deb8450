package wizard

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func existsIn(names ...string) func(string) bool {
	return func(p string) bool {
		for _, n := range names {
			if filepath.Base(p) == n {
				return true
			}
		}
		return false
	}
}

func TestAsk_AllDefaults(t *testing.T) {
	dir := filepath.Join(string(filepath.Separator), "work")
	var out strings.Builder
	p := NewPrompter(strings.NewReader("\n\n\n\n\n\n\n"), &out)

	a := Ask(p, dir, existsIn("inventory_traditional.txt", "my_text.txt"))
	want := Answers{
		Inventories: []string{filepath.Join(dir, "inventory_traditional.txt")},
		Input:       filepath.Join(dir, "my_text.txt"),
		Output:      filepath.Join(dir, "coverage_report.txt"),
		TopUnknown:  15,
	}
	if diff := cmp.Diff(want, a); diff != "" {
		t.Fatalf("答案不符 (-want +got):\n%s", diff)
	}
	assert.Contains(t, out.String(), "Inventory file(s), comma-separated ["+filepath.Join(dir, "inventory_traditional.txt")+"]: ")
	assert.Contains(t, out.String(), "Show per-line breakdown? (y/N): ")
	assert.Contains(t, out.String(), "Top-N unknown characters to list [15]: ")

	// 默认答案不产生多余参数。
	wantArgs := []string{
		"-i", filepath.Join(dir, "inventory_traditional.txt"),
		"--input", filepath.Join(dir, "my_text.txt"),
		"-o", filepath.Join(dir, "coverage_report.txt"),
	}
	assert.Equal(t, wantArgs, a.Args())
}

func TestAsk_CustomAnswers(t *testing.T) {
	dir := filepath.Join(string(filepath.Separator), "work")
	input := strings.Join([]string{
		"a.txt, /abs/b.txt ,",
		"book.txt",
		"-",
		"maybe",
		"y",
		"yes",
		"N",
		"3",
	}, "\n") + "\n"
	var out strings.Builder
	a := Ask(NewPrompter(strings.NewReader(input), &out), dir, existsIn())

	want := Answers{
		Inventories: []string{filepath.Join(dir, "a.txt"), filepath.Join(string(filepath.Separator), "abs", "b.txt")},
		Input:       filepath.Join(dir, "book.txt"),
		Union:       true,
		PerLine:     true,
		AllChars:    false,
		TopUnknown:  3,
	}
	if diff := cmp.Diff(want, a); diff != "" {
		t.Fatalf("答案不符 (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, strings.Count(out.String(), "Please answer y or n."))

	assert.Equal(t, []string{
		"-i", filepath.Join(dir, "a.txt"), filepath.Join(string(filepath.Separator), "abs", "b.txt"),
		"--input", filepath.Join(dir, "book.txt"),
		"--per-line",
		"--union",
		"--top-unknown", "3",
	}, a.Args())
}

func TestAsk_EOFTakesDefaults(t *testing.T) {
	dir := filepath.Join(string(filepath.Separator), "work")
	var out strings.Builder
	a := Ask(NewPrompter(strings.NewReader("x.txt"), &out), dir, existsIn())

	assert.Equal(t, []string{filepath.Join(dir, "x.txt")}, a.Inventories)
	assert.Equal(t, "", a.Input)
	assert.Equal(t, filepath.Join(dir, "coverage_report.txt"), a.Output)
	assert.False(t, a.Union)
	assert.Equal(t, 15, a.TopUnknown)
	assert.NotContains(t, out.String(), "Please answer y or n.")
}

func TestPrompter_IntInvalidFallsBack(t *testing.T) {
	for _, in := range []string{"abc\n", "-4\n", "\n"} {
		p := NewPrompter(strings.NewReader(in), &strings.Builder{})
		if got := p.Int("N", 15); got != 15 {
			t.Fatalf("输入 %q 期望 15，实际 %d", in, got)
		}
	}
	p := NewPrompter(strings.NewReader("0\n"), &strings.Builder{})
	if got := p.Int("N", 15); got != 0 {
		t.Fatalf("期望 0，实际 %d", got)
	}
}

func TestCommandLine(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"-i", "a b.txt", "--union"}, "hancov -i 'a b.txt' --union"},
		{[]string{"--input", ""}, "hancov --input ''"},
		{[]string{"-i", "/a/b-c_d.txt"}, "hancov -i /a/b-c_d.txt"},
		{[]string{"-i", "字表.txt"}, "hancov -i 字表.txt"},
		{[]string{"-o", "it's.txt"}, `hancov -o it\'s.txt`},
		{[]string{"--input", "$HOME/x.txt"}, `hancov --input \$HOME/x.txt`},
	}
	for _, tt := range tests {
		if got := CommandLine("hancov", tt.args); got != tt.want {
			t.Fatalf("CommandLine(%q) 期望 %q，实际 %q", tt.args, tt.want, got)
		}
	}
}
