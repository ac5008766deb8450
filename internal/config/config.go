package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/John-Robertt/hancov/internal/domain"
	"github.com/John-Robertt/hancov/internal/report"
	"github.com/John-Robertt/hancov/internal/source"
)

const (
	// ErrCodeNotFound 表示 --config 指定的文件不存在。
	ErrCodeNotFound = domain.ErrCodeConfigNotFound
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段（含 CLI 参数）不合法。
	ErrCodeInvalid = domain.ErrCodeConfigInvalid
)

const (
	// FileName 是未指定 --config 时在 cwd 下自动发现的配置文件名。
	FileName = "hancov.yaml"
	// DefaultInventory 是 CLI 与配置文件都未给出字表时使用的字表文件。
	DefaultInventory = "inventory_traditional.txt"
	// DefaultLogLevel 是日志级别的内置默认值。
	DefaultLogLevel = "warn"
)

// CLIArgs 是 CLI 层传入的参数，并保留“是否显式指定”的信息。
// 这能保证覆盖优先级可实现：例如 --union=false 必须能覆盖 config.union=true。
type CLIArgs struct {
	// ConfigPath 为 --config；空表示自动发现 <cwd>/hancov.yaml（可选）。
	ConfigPath string

	Inventories    []string
	InventoriesSet bool

	Input    string
	InputSet bool

	Output    string
	OutputSet bool

	AllChars    bool
	AllCharsSet bool

	Union    bool
	UnionSet bool

	PerLine    bool
	PerLineSet bool

	TopUnknown    int
	TopUnknownSet bool

	Format    string
	FormatSet bool

	Encoding    string
	EncodingSet bool

	HTML    string
	HTMLSet bool

	// Verbose 为 true 时日志级别固定为 debug（覆盖 log_level）。
	Verbose bool
}

// FileConfig 对应 hancov.yaml 的解析结构。指针字段用于区分“未填写”与零值。
type FileConfig struct {
	Inventories []string `yaml:"inventories"`
	Input       string   `yaml:"input"`
	Output      string   `yaml:"output"`
	AllChars    *bool    `yaml:"all_chars"`
	Union       *bool    `yaml:"union"`
	PerLine     *bool    `yaml:"per_line"`
	TopUnknown  *int     `yaml:"top_unknown"`
	Format      string   `yaml:"format"`
	Encoding    string   `yaml:"encoding"`
	HTML        string   `yaml:"html"`
	ExcludeDirs []string `yaml:"exclude_dirs"`
	LogLevel    string   `yaml:"log_level"`
}

// EffectiveConfig 是合并并做最小规范化后的最终配置（实现层直接消费，不再做二次默认/优先级判断）。
type EffectiveConfig struct {
	domain.Options

	// ConfigPath 为实际读取的配置文件；未读取任何配置文件时为空。
	ConfigPath string

	// Inventories 为 clean + absolute 的字表路径（可能是目录，由 scan 展开）。
	Inventories []string
	// Input 为 clean + absolute 的输入路径；空表示 STDIN。
	Input string
	// Output 为 clean + absolute 的报告保存路径；空表示不保存。
	Output string

	Format      string
	Encoding    string
	HTML        string
	ExcludeDirs []string
	LogLevel    zapcore.Level
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s：未找到配置文件 %q", e.Code, e.Path)
	case ErrCodeInvalid:
		if e.Path == "" {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		if e.Err != nil {
			return fmt.Sprintf("%s：配置文件 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置文件 %q 无效", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadEffective 发现并读取配置文件，然后与 CLI 参数合并为最终配置。
//
// 发现规则（固定）：
// 1) CLI 提供 --config：该文件必须存在
// 2) 否则读取 <cwd>/hancov.yaml（可选，不存在不报错）
//
// 覆盖优先级（固定）：CLI 显式指定 > 配置文件 > 内置默认。
// 路径解析：CLI 给出的相对路径相对 cwd；配置文件中的相对路径相对配置文件所在目录。
func LoadEffective(cwd string, cli CLIArgs) (EffectiveConfig, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}

	var (
		cfgPath string
		fc      FileConfig
		exists  bool
	)
	if strings.TrimSpace(cli.ConfigPath) != "" {
		cfgPath = absCleanFrom(cwdAbs, cli.ConfigPath)
		fc, exists, err = readFileConfig(cfgPath)
		if err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
		}
		if !exists {
			return EffectiveConfig{}, &Error{Code: ErrCodeNotFound, Path: cfgPath, Err: os.ErrNotExist}
		}
	} else {
		cfgPath = filepath.Join(cwdAbs, FileName)
		fc, exists, err = readFileConfig(cfgPath)
		if err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
		}
		if !exists {
			cfgPath = ""
		}
	}

	return merge(cwdAbs, cli, fc, cfgPath)
}

func merge(cwdAbs string, cli CLIArgs, fc FileConfig, cfgPath string) (EffectiveConfig, error) {
	fileBase := cwdAbs
	if cfgPath != "" {
		fileBase = filepath.Dir(cfgPath)
	}
	// 配置文件字段出错时报告配置文件路径；CLI 参数出错时 Path 为空。
	invalid := func(fromFile bool, err error) error {
		if fromFile {
			return &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
		}
		return &Error{Code: ErrCodeInvalid, Err: err}
	}

	eff := EffectiveConfig{
		Options:    domain.DefaultOptions(),
		ConfigPath: cfgPath,
	}

	// inventories：CLI > config > 默认（相对 cwd）
	switch {
	case cli.InventoriesSet && len(cli.Inventories) > 0:
		eff.Inventories = absAllFrom(cwdAbs, cli.Inventories)
	case len(fc.Inventories) > 0:
		eff.Inventories = absAllFrom(fileBase, fc.Inventories)
	default:
		eff.Inventories = []string{filepath.Join(cwdAbs, DefaultInventory)}
	}
	if len(eff.Inventories) == 0 {
		return EffectiveConfig{}, invalid(!cli.InventoriesSet, fmt.Errorf("inventories 不能为空"))
	}

	// input：CLI > config > STDIN；"-" 始终表示 STDIN
	if cli.InputSet {
		eff.Input = inputFrom(cwdAbs, cli.Input)
	} else {
		eff.Input = inputFrom(fileBase, fc.Input)
	}

	if cli.OutputSet {
		eff.Output = absCleanFrom(cwdAbs, cli.Output)
	} else {
		eff.Output = absCleanFrom(fileBase, fc.Output)
	}

	if cli.AllCharsSet {
		eff.HanOnly = !cli.AllChars
	} else if fc.AllChars != nil {
		eff.HanOnly = !*fc.AllChars
	}
	if cli.UnionSet {
		eff.Union = cli.Union
	} else if fc.Union != nil {
		eff.Union = *fc.Union
	}
	if cli.PerLineSet {
		eff.PerLine = cli.PerLine
	} else if fc.PerLine != nil {
		eff.PerLine = *fc.PerLine
	}

	topFromFile := false
	if cli.TopUnknownSet {
		eff.TopUnknown = cli.TopUnknown
	} else if fc.TopUnknown != nil {
		eff.TopUnknown = *fc.TopUnknown
		topFromFile = true
	}
	if eff.TopUnknown < 0 {
		return EffectiveConfig{}, invalid(topFromFile, fmt.Errorf("top_unknown 不能为负数，实际是 %d", eff.TopUnknown))
	}

	var fromFile bool
	eff.Format, fromFile = pick(cli.FormatSet, cli.Format, fc.Format, report.FormatText)
	eff.Format = strings.ToLower(eff.Format)
	if !report.ValidFormat(eff.Format) {
		return EffectiveConfig{}, invalid(fromFile, fmt.Errorf("format 只能是 text 或 json，实际是 %q", eff.Format))
	}

	eff.Encoding, fromFile = pick(cli.EncodingSet, cli.Encoding, fc.Encoding, "utf-8")
	if !source.ValidEncoding(eff.Encoding) {
		return EffectiveConfig{}, invalid(fromFile, fmt.Errorf("不支持的编码 %q", eff.Encoding))
	}

	eff.HTML, fromFile = pick(cli.HTMLSet, cli.HTML, fc.HTML, source.HTMLAuto)
	eff.HTML = strings.ToLower(eff.HTML)
	switch eff.HTML {
	case source.HTMLAuto, source.HTMLAlways, source.HTMLNever:
	default:
		return EffectiveConfig{}, invalid(fromFile, fmt.Errorf("html 只能是 auto、always 或 never，实际是 %q", eff.HTML))
	}

	for _, x := range fc.ExcludeDirs {
		if x = strings.TrimSpace(x); x != "" {
			eff.ExcludeDirs = append(eff.ExcludeDirs, x)
		}
	}

	level := DefaultLogLevel
	if s := strings.TrimSpace(fc.LogLevel); s != "" {
		level = s
	}
	lv, err := zapcore.ParseLevel(level)
	if err != nil {
		return EffectiveConfig{}, invalid(true, fmt.Errorf("log_level 无效：%w", err))
	}
	if cli.Verbose {
		lv = zapcore.DebugLevel
	}
	eff.LogLevel = lv

	return eff, nil
}

// pick 按 CLI > config > 默认 选出字符串值，并返回该值是否来自配置文件。
func pick(cliSet bool, cliVal, fileVal, def string) (string, bool) {
	if cliSet {
		return strings.TrimSpace(cliVal), false
	}
	if v := strings.TrimSpace(fileVal); v != "" {
		return v, true
	}
	return def, false
}

func inputFrom(base, p string) string {
	p = strings.TrimSpace(p)
	if p == "" || p == "-" {
		return ""
	}
	return absCleanFrom(base, p)
}

func absAllFrom(base string, ps []string) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		if p = absCleanFrom(base, p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
// - p 为空：返回空串
// - p 若已是绝对路径：直接 Clean
// - p 若是相对路径：Join(base, p) 后 Clean
func absCleanFrom(base, p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = filepath.Clean(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

// readFileConfig 读取并解析 YAML 配置文件（未知字段视为错误）。
// 返回值 exists 表示该文件是否存在（不存在不算错误）。
func readFileConfig(path string) (fc FileConfig, exists bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, false, nil
		}
		return FileConfig{}, false, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil {
		if errors.Is(err, io.EOF) {
			// 空文件等价于空配置。
			return FileConfig{}, true, nil
		}
		return FileConfig{}, true, err
	}
	return fc, true, nil
}
