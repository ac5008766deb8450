package domain

const (
	ErrCodeConfigNotFound = "config_not_found"
	ErrCodeConfigInvalid  = "config_invalid"
	ErrCodeInputNotFound  = "input_not_found"
	ErrCodeIOFailed       = "io_failed"
	ErrCodeDecodeFailed   = "decode_failed"
)

// UnnamedChar 是字符名查不到时的占位。
const UnnamedChar = "<unnamed>"

// Document 是一次分析的结构化结果：文本报告与 JSON 输出都由它渲染。
//
// 约束：字段顺序与文本报告的章节顺序一致；Results 的顺序等于字表加载顺序。
type Document struct {
	Options     Options         `json:"options"`
	Inventories []InventoryInfo `json:"inventories"`
	// Union 仅在请求 union 且字表数 ≥2 时存在。
	Union       *UnionInfo `json:"union,omitempty"`
	Results     []Result   `json:"results"`
	UnionResult *Result    `json:"union_result,omitempty"`
}

type InventoryInfo struct {
	Label string `json:"label"`
	Size  int    `json:"size"`
}

type UnionInfo struct {
	RawSize    int `json:"raw_size"`
	UniqueSize int `json:"unique_size"`
}

// Result 是一个字表（或并集）的覆盖率块。
type Result struct {
	Label       string  `json:"label"`
	Total       int     `json:"total_chars"`
	Known       int     `json:"known_chars"`
	Unknown     int     `json:"unknown_chars"`
	CoveragePct float64 `json:"coverage_pct"`

	UniqueOOV string      `json:"unique_oov"`
	Top       []CharCount `json:"top_unknown"`
	Bottom    []CharCount `json:"bottom_unknown"`

	// Lines 仅在 per-line 模式下填充；并集块永远为空。
	Lines []LineRow `json:"lines,omitempty"`
}

type CharCount struct {
	Char  string `json:"char"`
	Count int    `json:"count"`
	Code  string `json:"code"` // U+XXXX
	Name  string `json:"name"`
}

type LineRow struct {
	No          int     `json:"line"`
	Total       int     `json:"total"`
	Known       int     `json:"known"`
	CoveragePct float64 `json:"coverage_pct"`
	Text        string  `json:"text"`
}

// Finalize 把 nil 切片统一成空切片，保证 JSON 输出稳定（[] 而不是 null）。
func (d *Document) Finalize() {
	if d.Inventories == nil {
		d.Inventories = []InventoryInfo{}
	}
	if d.Results == nil {
		d.Results = []Result{}
	}
	for i := range d.Results {
		d.Results[i].finalize()
	}
	if d.UnionResult != nil {
		d.UnionResult.finalize()
		d.UnionResult.Lines = nil
	}
}

func (r *Result) finalize() {
	if r.Top == nil {
		r.Top = []CharCount{}
	}
	if r.Bottom == nil {
		r.Bottom = []CharCount{}
	}
}
