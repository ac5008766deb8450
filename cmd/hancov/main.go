package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/John-Robertt/hancov/internal/app/run"
	"github.com/John-Robertt/hancov/internal/config"
	"github.com/John-Robertt/hancov/internal/domain"
	"github.com/John-Robertt/hancov/internal/infra/fsx"
	"github.com/John-Robertt/hancov/internal/report"
	"github.com/John-Robertt/hancov/internal/wizard"
)

// version 由构建时 -ldflags "-X main.version=..." 注入。
var version = "dev"

const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], newApp())
	stop()
	os.Exit(code)
}

// app 持有一次进程运行的 IO 与日志。测试通过替换字段在进程内驱动 CLI。
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	// cwd 为空时使用 os.Getwd。
	cwd string

	level     zap.AtomicLevel
	newLogger func(level zap.AtomicLevel) (*zap.Logger, error)
	logger    *zap.Logger

	// progressWriter 决定 --progress 的输出位置；ok=false 表示不是交互终端，进度静默关闭。
	progressWriter func() (io.Writer, bool)
}

func newApp() *app {
	return &app{
		stdin:          os.Stdin,
		stdout:         os.Stdout,
		stderr:         os.Stderr,
		level:          zap.NewAtomicLevelAt(zapcore.WarnLevel),
		newLogger:      productionLogger,
		progressWriter: pickProgressWriter,
	}
}

func productionLogger(level zap.AtomicLevel) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = level
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}

// exitError 携带进程退出码。
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

func execute(ctx context.Context, args []string, a *app) int {
	root := a.newRootCmd()
	root.SetArgs(args)
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	err := root.ExecuteContext(ctx)
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	if err == nil {
		return exitOK
	}

	var ee *exitError
	if errors.As(err, &ee) {
		if !errors.Is(ee.err, errReported) {
			fmt.Fprintf(a.stderr, "错误：%v\n", ee.err)
		}
		return ee.code
	}
	// cobra 自身的参数解析错误。
	fmt.Fprintf(a.stderr, "参数错误：%v\n", err)
	fmt.Fprintf(a.stderr, "使用 %q 查看帮助。\n", root.CommandPath()+" --help")
	return exitUsage
}

type rootFlags struct {
	inventories []string
	input       string
	output      string
	allChars    bool
	perLine     bool
	union       bool
	topUnknown  int
	format      string
	encoding    string
	html        string
	configPath  string
	progress    bool
	verbose     bool
}

func (a *app) newRootCmd() *cobra.Command {
	f := &rootFlags{}

	root := &cobra.Command{
		Use:   "hancov [flags] [inventory...]",
		Short: "汉字覆盖率：文本中的汉字有多少落在给定字表内",
		Long: `hancov 统计一段文本中的汉字（或全部非空白字符）有多少出现在一个或多个字表中，
并列出未登录字（OOV）的频次、字符名与逐行覆盖率。

字表可以是文件或目录（目录下的 .txt/.html/.htm/.xhtml 按路径排序加载）；
-i 之后的其它位置参数同样视为字表。未指定 --input 时从 STDIN 读取。`,
		Example: `  hancov -i inventory_traditional.txt --input my_text.txt
  hancov -i sanbaiqian.txt simplified.txt --union --per-line < book.txt
  hancov -i lists/ --format json -o report.json --input book.html`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if f.verbose {
				a.level.SetLevel(zapcore.DebugLevel)
			}
			logger, err := a.newLogger(a.level)
			if err != nil {
				return &exitError{code: exitFailed, err: fmt.Errorf("初始化日志失败：%w", err)}
			}
			a.logger = logger
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.analyze(cmd, f, args)
		},
	}

	pf := root.PersistentFlags()
	pf.BoolVarP(&f.verbose, "verbose", "v", false, "输出 debug 日志（stderr）")
	pf.StringVar(&f.configPath, "config", "", "YAML 配置文件（默认读取当前目录的 hancov.yaml，若存在）")

	fl := root.Flags()
	fl.StringArrayVarP(&f.inventories, "inventory", "i", nil, "字表文件或目录（可重复；默认 inventory_traditional.txt）")
	fl.StringVar(&f.input, "input", "", "待分析文本（默认 STDIN；\"-\" 表示 STDIN）")
	fl.StringVarP(&f.output, "output", "o", "", "同时把报告保存到该文件")
	fl.BoolVar(&f.allChars, "all-chars", false, "统计全部非空白字符，而不只是汉字")
	fl.BoolVar(&f.perLine, "per-line", false, "每个字表附带逐行覆盖率")
	fl.BoolVar(&f.union, "union", false, "字表数 ≥2 时额外输出并集覆盖率")
	fl.IntVar(&f.topUnknown, "top-unknown", domain.DefaultTopUnknown, "高频/低频未登录字列表的长度（≥0）")
	fl.StringVar(&f.format, "format", "text", "报告格式：text|json")
	fl.StringVar(&f.encoding, "encoding", "utf-8", "字表与输入文件的编码（WHATWG 标签，如 gb18030、big5、utf-16le）")
	fl.StringVar(&f.html, "html", "auto", "HTML 正文抽取：auto|always|never（auto 按扩展名判断）")
	fl.BoolVar(&f.progress, "progress", false, "在 stderr 显示阶段进度（仅交互终端）")

	root.AddCommand(a.newWizardCmd(), a.newVersionCmd())
	return root
}

func (a *app) analyze(cmd *cobra.Command, f *rootFlags, args []string) error {
	cwd := a.cwd
	if cwd == "" {
		wd, err := os.Getwd()
		if err != nil {
			return &exitError{code: exitFailed, err: fmt.Errorf("读取当前目录失败：%w", err)}
		}
		cwd = wd
	}

	fl := cmd.Flags()
	inventories := append(append([]string(nil), f.inventories...), args...)
	eff, err := config.LoadEffective(cwd, config.CLIArgs{
		ConfigPath:     f.configPath,
		Inventories:    inventories,
		InventoriesSet: len(inventories) > 0,
		Input:          f.input,
		InputSet:       fl.Changed("input"),
		Output:         f.output,
		OutputSet:      fl.Changed("output"),
		AllChars:       f.allChars,
		AllCharsSet:    fl.Changed("all-chars"),
		Union:          f.union,
		UnionSet:       fl.Changed("union"),
		PerLine:        f.perLine,
		PerLineSet:     fl.Changed("per-line"),
		TopUnknown:     f.topUnknown,
		TopUnknownSet:  fl.Changed("top-unknown"),
		Format:         f.format,
		FormatSet:      fl.Changed("format"),
		Encoding:       f.encoding,
		EncodingSet:    fl.Changed("encoding"),
		HTML:           f.html,
		HTMLSet:        fl.Changed("html"),
		Verbose:        f.verbose,
	})
	if err != nil {
		return &exitError{code: exitUsage, err: err}
	}
	a.level.SetLevel(eff.LogLevel)

	a.logger.Debug("配置已生效",
		zap.String("config", eff.ConfigPath),
		zap.Strings("inventories", eff.Inventories),
		zap.String("input", eff.Input),
		zap.String("output", eff.Output),
		zap.Bool("han_only", eff.HanOnly),
		zap.Bool("union", eff.Union),
		zap.Bool("per_line", eff.PerLine),
		zap.Int("top_unknown", eff.TopUnknown),
		zap.String("format", eff.Format),
		zap.String("encoding", eff.Encoding),
		zap.String("html", eff.HTML),
	)

	var obs run.Observer
	if f.progress {
		if w, ok := a.progressWriter(); ok {
			obs = newProgressUI(w)
		}
	}

	res, err := run.ExecuteWithObserver(cmd.Context(), eff, run.Env{Stdin: a.stdin, Logger: a.logger}, obs)
	if err != nil {
		code := exitCodeFor(err)
		a.logger.Debug("分析失败", zap.String("error_code", run.Code(err)), zap.Error(err))
		return &exitError{code: code, err: err}
	}

	out := res.Output
	if _, err := a.stdout.Write(out); err != nil {
		return &exitError{code: exitFailed, err: fmt.Errorf("写出报告失败：%w", err)}
	}
	if len(out) == 0 || out[len(out)-1] != '\n' {
		fmt.Fprintln(a.stdout)
	}

	if eff.Output != "" {
		// JSON 模式下 stdout 只放文档本身，保存提示改走 stderr。
		msg := a.stdout
		if eff.Format == report.FormatJSON {
			msg = a.stderr
		}
		if err := fsx.SaveReport(eff.Output, out); err != nil {
			a.logger.Error("保存报告失败", zap.String("path", eff.Output), zap.Error(err))
			fmt.Fprintf(msg, "[Error writing report to %s: %v]\n", eff.Output, err)
		} else {
			fmt.Fprintf(msg, "[Saved report to: %s]\n", eff.Output)
		}
	}
	return nil
}

// exitCodeFor 映射退出码：配置错误与文件缺失为 2，读取/解码等运行期失败为 1。
func exitCodeFor(err error) int {
	switch run.Code(err) {
	case domain.ErrCodeConfigNotFound, domain.ErrCodeConfigInvalid, domain.ErrCodeInputNotFound:
		return exitUsage
	default:
		return exitFailed
	}
}

func (a *app) newWizardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "wizard",
		Short: "交互式向导：逐项询问参数，然后运行一次分析",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd := a.cwd
			if cwd == "" {
				wd, err := os.Getwd()
				if err != nil {
					return &exitError{code: exitFailed, err: fmt.Errorf("读取当前目录失败：%w", err)}
				}
				cwd = wd
			}

			p := wizard.NewPrompter(a.stdin, a.stdout)
			answers := wizard.Ask(p, cwd, fileExists)
			argv := answers.Args()

			fmt.Fprintf(a.stdout, "\nRunning command:\n %s \n\n", wizard.CommandLine("hancov", argv))
			a.logger.Debug("向导生成的参数", zap.Strings("args", argv))

			// 用同一组 IO 在进程内执行一次完整的分析命令。
			inner := &app{
				stdin:          a.stdin,
				stdout:         a.stdout,
				stderr:         a.stderr,
				cwd:            cwd,
				level:          a.level,
				newLogger:      func(zap.AtomicLevel) (*zap.Logger, error) { return a.logger, nil },
				progressWriter: a.progressWriter,
			}
			if code := execute(cmd.Context(), argv, inner); code != exitOK {
				return &exitError{code: code, err: errReported}
			}
			return nil
		},
	}
}

// errReported 表示错误已由内层命令输出，外层只传递退出码。
var errReported = errors.New("已报告")

func (a *app) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "打印版本号",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(a.stdout, "hancov %s\n", version)
			return nil
		},
	}
}

func fileExists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}

func isTTY(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func pickProgressWriter() (io.Writer, bool) {
	// 进度输出只在交互终端启用，且只走 stderr（不污染 stdout 上的报告）。
	if isTTY(os.Stderr) {
		return os.Stderr, true
	}
	return nil, false
}
