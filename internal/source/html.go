package source

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// ExtractHTML 抽取 HTML 文档的可见正文。
//
// 说明：
// - script/style/noscript/template 的内容不算正文
// - <br> 视为换行，其余换行沿用源码中的文本节点（逐行统计依赖它）
func ExtractHTML(doc string) (string, error) {
	d, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
	if err != nil {
		return "", err
	}
	d.Find("script, style, noscript, template").Remove()
	d.Find("br").Each(func(_ int, br *goquery.Selection) {
		br.ReplaceWithNodes(&html.Node{Type: html.TextNode, Data: "\n"})
	})

	body := d.Find("body")
	if body.Length() == 0 {
		return d.Text(), nil
	}
	return body.Text(), nil
}
