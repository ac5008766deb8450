package report

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/John-Robertt/hancov/internal/domain"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// ValidFormat 判断 format 是否受支持。
func ValidFormat(format string) bool {
	return format == FormatText || format == FormatJSON
}

// Encode 按 format 序列化文档。
//
// - text：与 Render 完全一致（末尾不加换行，保存到文件时保持原样）
// - json：两空格缩进、不转义 <>&（"<unnamed>" 保持可读），末尾带一个换行
func Encode(doc domain.Document, format string) ([]byte, error) {
	switch format {
	case FormatText, "":
		return []byte(Render(doc)), nil
	case FormatJSON:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("不支持的报告格式 %q（只能是 text 或 json）", format)
	}
}
