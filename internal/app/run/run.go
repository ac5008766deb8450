package run

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/John-Robertt/hancov/internal/config"
	"github.com/John-Robertt/hancov/internal/domain"
	"github.com/John-Robertt/hancov/internal/inventory"
	"github.com/John-Robertt/hancov/internal/report"
	"github.com/John-Robertt/hancov/internal/scan"
	"github.com/John-Robertt/hancov/internal/source"
)

const (
	PhaseLoad    = "load"
	PhaseRead    = "read"
	PhaseAnalyze = "analyze"
)

// MissingError 表示字表或输入文件不存在（error_code=input_not_found）。
//
// Error() 的文本是面向用户的最终提示，CLI 原样输出。
type MissingError struct {
	// Kind 为 "inventory" 或 "input"。
	Kind  string
	Paths []string
}

func (e *MissingError) Error() string {
	if e.Kind == "input" {
		return "Input file not found: " + strings.Join(e.Paths, ", ")
	}
	return "Inventory file(s) not found: " + strings.Join(e.Paths, ", ")
}

// Code 从 error 中提取 error_code（覆盖 config/source/run 三类结构化错误）；未知错误返回空串。
func Code(err error) string {
	var me *MissingError
	if errors.As(err, &me) {
		return domain.ErrCodeInputNotFound
	}
	if c := config.Code(err); c != "" {
		return c
	}
	return source.Code(err)
}

// Env 是一次运行的外部依赖。零值可用：STDIN 取 os.Stdin，日志丢弃，字符名用 report.RuneNames。
type Env struct {
	Stdin  io.Reader
	Logger *zap.Logger
	Names  report.Namer
}

// Result 是一次运行的产物。
type Result struct {
	Document domain.Document
	// Output 为按 eff.Format 编码后的报告（text 末尾不带换行）。
	Output []byte
	// Inventories 为展开目录后的字表文件（与 Document.Inventories 一一对应）。
	Inventories []string
}

// Execute 执行一次分析：检查文件、加载字表、读取输入、计算报告。
func Execute(ctx context.Context, eff config.EffectiveConfig, env Env) (Result, error) {
	return ExecuteWithObserver(ctx, eff, env, nil)
}

// ExecuteWithObserver 与 Execute 相同，但允许传入 Observer 以输出进度/阶段信息（由上层决定是否启用）。
//
// 失败语义：任一文件缺失、读取或解码失败都会中止，不产出部分报告。
func ExecuteWithObserver(ctx context.Context, eff config.EffectiveConfig, env Env, obs Observer) (Result, error) {
	log := env.Logger
	if log == nil {
		log = zap.NewNop()
	}
	names := env.Names
	if names == nil {
		names = report.RuneNames{}
	}

	if obs != nil {
		obs.OnStart(eff)
	}

	// 先统一检查缺失，保证在读取任何内容前失败。
	paths, err := resolveInventories(eff)
	if err != nil {
		return Result{}, err
	}
	if eff.Input != "" {
		if _, err := os.Stat(eff.Input); err != nil {
			if os.IsNotExist(err) {
				return Result{}, &MissingError{Kind: "input", Paths: []string{eff.Input}}
			}
			return Result{}, &source.Error{Code: domain.ErrCodeIOFailed, Path: eff.Input, Err: err}
		}
	}

	reader, err := source.New(source.Options{Encoding: eff.Encoding, HTML: eff.HTML, Stdin: env.Stdin})
	if err != nil {
		return Result{}, &config.Error{Code: config.ErrCodeInvalid, Err: err}
	}

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	// load
	loadStarted := time.Now()
	durs := make([]time.Duration, 0, len(paths))
	invs, err := inventory.Load(paths, func(p string) (string, error) {
		started := time.Now()
		text, err := reader.ReadFile(p)
		durs = append(durs, time.Since(started))
		return text, err
	})
	if err != nil {
		return Result{}, err
	}
	for i, e := range invs.Entries() {
		info := domain.InventoryInfo{Label: e.Label, Size: e.Set.Len()}
		log.Debug("字表已加载",
			zap.String("label", e.Label),
			zap.String("path", paths[i]),
			zap.Int("size", info.Size),
			zap.Duration("dur", durs[i]),
		)
		if info.Size == 0 {
			log.Warn("字表中没有汉字", zap.String("label", e.Label), zap.String("path", paths[i]))
		}
		if obs != nil {
			obs.OnInventoryLoaded(i+1, len(paths), info, durs[i])
		}
	}
	loadDur := time.Since(loadStarted)
	if obs != nil {
		obs.OnPhaseDone(PhaseLoad, map[string]any{
			"inventories": invs.Len(),
			"raw_size":    invs.RawSize(),
		}, loadDur)
	}

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	// read
	readStarted := time.Now()
	inputName := eff.Input
	if inputName == "" {
		inputName = source.StdinName
	}
	text, err := reader.ReadFile(eff.Input)
	if err != nil {
		return Result{}, err
	}
	readDur := time.Since(readStarted)
	log.Debug("输入已读取",
		zap.String("path", inputName),
		zap.Int("bytes", len(text)),
		zap.Int("runes", utf8.RuneCountInString(text)),
		zap.Duration("dur", readDur),
	)
	if obs != nil {
		obs.OnPhaseDone(PhaseRead, map[string]any{
			"input": inputName,
			"runes": utf8.RuneCountInString(text),
		}, readDur)
	}

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	// analyze
	analyzeStarted := time.Now()
	doc := report.Compile(text, invs, eff.Options, names)
	out, err := report.Encode(doc, eff.Format)
	if err != nil {
		return Result{}, &config.Error{Code: config.ErrCodeInvalid, Err: err}
	}
	analyzeDur := time.Since(analyzeStarted)
	log.Debug("分析完成",
		zap.Int("results", len(doc.Results)),
		zap.Bool("union", doc.UnionResult != nil),
		zap.Duration("dur", analyzeDur),
	)
	if obs != nil {
		fields := map[string]any{"results": len(doc.Results)}
		if len(doc.Results) > 0 {
			fields["total_chars"] = doc.Results[0].Total
		}
		obs.OnPhaseDone(PhaseAnalyze, fields, analyzeDur)
	}

	return Result{Document: doc, Output: out, Inventories: paths}, nil
}

// resolveInventories 检查字表路径是否存在并展开目录。
// 缺失的文件与扫不到字表的目录一并报告为 MissingError。
func resolveInventories(eff config.EffectiveConfig) ([]string, error) {
	var missing []string
	for _, p := range eff.Inventories {
		if _, err := os.Stat(p); err != nil {
			if !os.IsNotExist(err) {
				return nil, &source.Error{Code: domain.ErrCodeIOFailed, Path: p, Err: err}
			}
			missing = append(missing, p)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingError{Kind: "inventory", Paths: missing}
	}

	files, empty, err := scan.Expand(eff.Inventories, eff.ExcludeDirs)
	if err != nil {
		return nil, &source.Error{Code: domain.ErrCodeIOFailed, Path: strings.Join(eff.Inventories, ", "), Err: fmt.Errorf("扫描字表目录失败：%w", err)}
	}
	if len(empty) > 0 {
		return nil, &MissingError{Kind: "inventory", Paths: empty}
	}
	return files, nil
}
