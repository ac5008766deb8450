package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/John-Robertt/hancov/internal/domain"
)

type cliResult struct {
	code     int
	stdout   string
	stderr   string
	progress string
}

func runCLI(t *testing.T, cwd, stdin string, args ...string) cliResult {
	t.Helper()
	var out, errb, prog bytes.Buffer
	a := &app{
		stdin:     strings.NewReader(stdin),
		stdout:    &out,
		stderr:    &errb,
		cwd:       cwd,
		level:     zap.NewAtomicLevelAt(zapcore.WarnLevel),
		newLogger: func(zap.AtomicLevel) (*zap.Logger, error) { return zap.NewNop(), nil },
		progressWriter: func() (io.Writer, bool) {
			return &prog, true
		},
	}
	code := execute(context.Background(), args, a)
	return cliResult{code: code, stdout: out.String(), stderr: errb.String(), progress: prog.String()}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("写入文件失败：%v", err)
	}
}

func TestCLI_StdinScenario(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "basic.txt"), "一二三")

	r := runCLI(t, dir, "一二三四", "-i", "basic.txt")
	require.Equal(t, 0, r.code, "stderr=%s", r.stderr)

	assert.True(t, strings.HasPrefix(r.stdout, "=== Inventories Loaded ===\n- basic: 3 characters\n"))
	assert.Contains(t, r.stdout, "Coverage: 75.00%")
	assert.Contains(t, r.stdout, "四\t1\tU+56DB\tCJK UNIFIED IDEOGRAPH-56DB")
	assert.True(t, strings.HasSuffix(r.stdout, "\n"))
	assert.Empty(t, r.progress, "未指定 --progress 时不应输出进度")
}

func TestCLI_DefaultInventoryAndPositionalInventories(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "inventory_traditional.txt"), "甲")
	writeFile(t, filepath.Join(dir, "simplified.txt"), "乙")

	r := runCLI(t, dir, "甲乙丙")
	require.Equal(t, 0, r.code, "stderr=%s", r.stderr)
	assert.Contains(t, r.stdout, "- inventory_traditional: 1 characters")

	// -i 之后的位置参数同样是字表。
	r = runCLI(t, dir, "甲乙丙", "-i", "inventory_traditional.txt", "simplified.txt", "--union")
	require.Equal(t, 0, r.code, "stderr=%s", r.stderr)
	assert.Contains(t, r.stdout, "- <union>: 2 (raw sum; union unique size 2)")
	assert.Contains(t, r.stdout, "=== Results for [UNION of inventories] ===")
	assert.Contains(t, r.stdout, "Coverage: 66.67%")
}

func TestCLI_MissingInventoriesExit2(t *testing.T) {
	dir := t.TempDir()

	r := runCLI(t, dir, "甲", "-i", "a.txt", "-i", "b.txt")
	assert.Equal(t, 2, r.code)
	assert.Empty(t, r.stdout)
	assert.Contains(t, r.stderr, "Inventory file(s) not found: "+filepath.Join(dir, "a.txt")+", "+filepath.Join(dir, "b.txt"))
}

func TestCLI_MissingInputExit2(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "甲")

	r := runCLI(t, dir, "", "-i", "a.txt", "--input", "my_text.txt")
	assert.Equal(t, 2, r.code)
	assert.Contains(t, r.stderr, "Input file not found: "+filepath.Join(dir, "my_text.txt"))
}

func TestCLI_UsageErrorsExit2(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "甲")

	tests := [][]string{
		{"-i", "a.txt", "--top-unknown", "-1"},
		{"-i", "a.txt", "--format", "xml"},
		{"-i", "a.txt", "--encoding", "klingon"},
		{"-i", "a.txt", "--no-such-flag"},
		{"-i", "a.txt", "--config", "missing.yaml"},
	}
	for _, args := range tests {
		r := runCLI(t, dir, "甲", args...)
		if r.code != 2 {
			t.Fatalf("参数 %v 期望退出码 2，实际 %d（stderr=%s）", args, r.code, r.stderr)
		}
		if r.stdout != "" {
			t.Fatalf("参数 %v 不应输出部分报告：%q", args, r.stdout)
		}
	}
}

func TestCLI_DecodeFailureExit1(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "甲")

	r := runCLI(t, dir, "\xff\xfe\xfd", "-i", "a.txt")
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.stderr, domain.ErrCodeDecodeFailed)
}

func TestCLI_SaveReport(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "甲")
	writeFile(t, filepath.Join(dir, "in.txt"), "甲乙")

	r := runCLI(t, dir, "", "-i", "a.txt", "--input", "in.txt", "-o", "reports/r.txt")
	require.Equal(t, 0, r.code, "stderr=%s", r.stderr)

	saved := filepath.Join(dir, "reports", "r.txt")
	assert.True(t, strings.HasSuffix(r.stdout, "\n[Saved report to: "+saved+"]\n"))

	b, err := os.ReadFile(saved)
	require.NoError(t, err)
	assert.Equal(t, strings.TrimSuffix(r.stdout, "[Saved report to: "+saved+"]\n"), string(b)+"\n")
}

func TestCLI_SaveFailureIsNotFatal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "甲")
	if err := os.Mkdir(filepath.Join(dir, "taken"), 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}

	r := runCLI(t, dir, "甲", "-i", "a.txt", "-o", "taken")
	assert.Equal(t, 0, r.code)
	assert.Contains(t, r.stdout, "Coverage: 100.00%")
	assert.Contains(t, r.stdout, "[Error writing report to "+filepath.Join(dir, "taken")+": ")
}

func TestCLI_JSONFormat(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "甲")

	r := runCLI(t, dir, "甲乙\n乙", "-i", "a.txt", "--format", "json", "--per-line")
	require.Equal(t, 0, r.code, "stderr=%s", r.stderr)

	var doc domain.Document
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &doc))
	require.Len(t, doc.Results, 1)
	assert.Equal(t, "乙", doc.Results[0].UniqueOOV)
	assert.Len(t, doc.Results[0].Lines, 2)
	assert.True(t, doc.Options.PerLine)
}

func TestCLI_JSONSaveKeepsStdoutClean(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "甲")

	r := runCLI(t, dir, "甲乙", "-i", "a.txt", "--format", "json", "-o", "r.json")
	require.Equal(t, 0, r.code, "stderr=%s", r.stderr)

	var doc domain.Document
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &doc))
	assert.NotContains(t, r.stdout, "[Saved report to:")

	saved := filepath.Join(dir, "r.json")
	assert.Contains(t, r.stderr, "[Saved report to: "+saved+"]")
	b, err := os.ReadFile(saved)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, &doc))
}

func TestCLI_ConfigFileAndOverride(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "lists", "a.txt"), "甲")
	writeFile(t, filepath.Join(dir, "lists", "b.txt"), "乙")
	writeFile(t, filepath.Join(dir, "hancov.yaml"), "inventories: [lists]\nunion: true\ntop_unknown: 1\n")

	r := runCLI(t, dir, "甲乙丙丙")
	require.Equal(t, 0, r.code, "stderr=%s", r.stderr)
	assert.Contains(t, r.stdout, "=== Results for [UNION of inventories] ===")
	assert.Contains(t, r.stdout, "Top 1 unknown characters (high frequency):")

	r = runCLI(t, dir, "甲乙丙丙", "--union=false")
	require.Equal(t, 0, r.code, "stderr=%s", r.stderr)
	assert.NotContains(t, r.stdout, "UNION of inventories")
}

func TestCLI_ProgressGoesToProgressWriter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "甲")

	r := runCLI(t, dir, "甲", "-i", "a.txt", "--progress")
	require.Equal(t, 0, r.code, "stderr=%s", r.stderr)
	assert.Contains(t, r.progress, "加载字表: inventories=1")
	assert.NotContains(t, r.stdout, "加载字表")
}

func TestCLI_Version(t *testing.T) {
	r := runCLI(t, t.TempDir(), "", "version")
	assert.Equal(t, 0, r.code)
	assert.Equal(t, "hancov dev\n", r.stdout)
}

func TestCLI_WizardDefaultsRunInProcess(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "inventory_traditional.txt"), "一二三")
	writeFile(t, filepath.Join(dir, "my_text.txt"), "一二三四")

	// 全部回车：采用默认值。
	r := runCLI(t, dir, strings.Repeat("\n", 7), "wizard")
	require.Equal(t, 0, r.code, "stderr=%s", r.stderr)

	assert.Contains(t, r.stdout, "\nRunning command:\n hancov -i "+filepath.Join(dir, "inventory_traditional.txt"))
	assert.Contains(t, r.stdout, "Coverage: 75.00%")

	saved := filepath.Join(dir, "coverage_report.txt")
	assert.Contains(t, r.stdout, "[Saved report to: "+saved+"]")
	_, err := os.Stat(saved)
	assert.NoError(t, err)
}

func TestCLI_WizardPropagatesFailure(t *testing.T) {
	dir := t.TempDir()

	// 没有默认字表：第一个问题回答一个不存在的文件。
	r := runCLI(t, dir, "nope.txt\n\n-\n", "wizard")
	assert.Equal(t, 2, r.code)
	assert.Contains(t, r.stderr, "Inventory file(s) not found: "+filepath.Join(dir, "nope.txt"))
	assert.Equal(t, 1, strings.Count(r.stderr, "错误："))
}
