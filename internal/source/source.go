// Package source 负责把磁盘文件 / STDIN 读成纯文本：字符集解码与 HTML 正文抽取。
//
// 核心计算只接收这里产出的字符串，从不直接接触文件系统。
package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/John-Robertt/hancov/internal/domain"
)

const (
	HTMLAuto   = "auto"
	HTMLAlways = "always"
	HTMLNever  = "never"
)

// StdinName 是 STDIN 在日志与错误中的名字。
const StdinName = "<stdin>"

// Error 是读取阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case domain.ErrCodeDecodeFailed:
		return fmt.Sprintf("%s：无法解码 %q：%v", e.Code, e.Path, e.Err)
	default:
		return fmt.Sprintf("%s：读取 %q 失败：%v", e.Code, e.Path, e.Err)
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

// ErrInvalidUTF8 表示输入声明为 UTF-8 但包含非法字节序列。
var ErrInvalidUTF8 = errors.New("invalid UTF-8")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Options 控制解码与 HTML 抽取。
type Options struct {
	// Encoding 为 WHATWG 编码标签（utf-8、gb18030、big5、shift_jis、utf-16le……）；空表示 utf-8。
	Encoding string
	// HTML 为 auto|always|never；auto 按扩展名（.html/.htm/.xhtml）判断。
	HTML string
	// Stdin 为空时使用 os.Stdin。
	Stdin io.Reader
}

// Reader 按固定的解码策略读取文件。不可变，可并发使用（Stdin 除外）。
type Reader struct {
	enc   encoding.Encoding // nil 表示 utf-8（严格校验）
	html  string
	stdin io.Reader
}

// New 校验选项并创建 Reader。
func New(opts Options) (*Reader, error) {
	r := &Reader{html: HTMLAuto, stdin: opts.Stdin}
	if r.stdin == nil {
		r.stdin = os.Stdin
	}

	switch h := strings.ToLower(strings.TrimSpace(opts.HTML)); h {
	case "", HTMLAuto:
	case HTMLAlways, HTMLNever:
		r.html = h
	default:
		return nil, fmt.Errorf("html 只能是 auto、always 或 never，实际是 %q", opts.HTML)
	}

	enc, err := lookupEncoding(opts.Encoding)
	if err != nil {
		return nil, err
	}
	r.enc = enc
	return r, nil
}

// ValidEncoding 判断 name 是否为可识别的编码标签。
func ValidEncoding(name string) bool {
	_, err := lookupEncoding(name)
	return err == nil
}

func lookupEncoding(name string) (encoding.Encoding, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "", "utf-8", "utf8":
		return nil, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("不支持的编码 %q：%w", name, err)
	}
	if enc == unicode.UTF8 {
		return nil, nil
	}
	return enc, nil
}

// IsStdin 判断 path 是否表示 STDIN（空串或 "-"）。
func IsStdin(path string) bool {
	p := strings.TrimSpace(path)
	return p == "" || p == "-"
}

// ReadFile 读取并解码 path 的全部内容。
func (r *Reader) ReadFile(path string) (string, error) {
	if IsStdin(path) {
		return r.read(StdinName, r.stdin, false)
	}
	f, err := os.Open(path)
	if err != nil {
		return "", &Error{Code: domain.ErrCodeIOFailed, Path: path, Err: err}
	}
	defer f.Close()
	return r.read(path, f, isHTMLPath(path))
}

func (r *Reader) read(name string, rd io.Reader, htmlByExt bool) (string, error) {
	b, err := io.ReadAll(rd)
	if err != nil {
		return "", &Error{Code: domain.ErrCodeIOFailed, Path: name, Err: err}
	}

	text, err := r.decode(b)
	if err != nil {
		return "", &Error{Code: domain.ErrCodeDecodeFailed, Path: name, Err: err}
	}

	if r.html == HTMLAlways || (r.html == HTMLAuto && htmlByExt) {
		t, err := ExtractHTML(text)
		if err != nil {
			return "", &Error{Code: domain.ErrCodeDecodeFailed, Path: name, Err: err}
		}
		return t, nil
	}
	return text, nil
}

// decode 把原始字节转为 UTF-8 字符串。
//
// - utf-8：去掉开头的 BOM，非法序列直接报错（不做静默替换）
// - 其它编码：开头若有 UTF-8/UTF-16 BOM 则以 BOM 为准（BOMOverride）
func (r *Reader) decode(b []byte) (string, error) {
	if r.enc == nil {
		b = bytes.TrimPrefix(b, utf8BOM)
		if !utf8.Valid(b) {
			return "", ErrInvalidUTF8
		}
		return string(b), nil
	}
	out, _, err := transform.Bytes(unicode.BOMOverride(r.enc.NewDecoder()), b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func isHTMLPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm", ".xhtml":
		return true
	default:
		return false
	}
}
