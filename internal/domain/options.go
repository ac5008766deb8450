package domain

// DefaultTopUnknown 是 Top-N / Bottom-N 未登录字表的默认长度。
const DefaultTopUnknown = 15

// Options 是核心计算接受的全部开关（由 CLI/配置层提供）。
type Options struct {
	// HanOnly 为 true 时只统计汉字；false 时统计全部非空白字符。
	HanOnly bool `json:"han_only"`
	// Union 为 true 且字表数 ≥2 时，额外输出并集块。
	Union bool `json:"union"`
	// TopUnknown 同时决定高频表与低频表的长度。
	TopUnknown int `json:"top_unknown"`
	// PerLine 为 true 时每个字表块附带逐行明细（并集块不附带）。
	PerLine bool `json:"per_line"`
}

func DefaultOptions() Options {
	return Options{
		HanOnly:    true,
		TopUnknown: DefaultTopUnknown,
	}
}
