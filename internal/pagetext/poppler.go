package pagetext

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/Open-AIP/OpenAIP/internal/entity"
	"github.com/Open-AIP/OpenAIP/internal/layout"
)

// popplerPages runs `pdftotext -bbox` and parses its XHTML.
func (e *Extractor) popplerPages(ctx context.Context, path string) ([]entity.PageInput, error) {
	stdout, stderr, err := e.runner.Run(ctx, e.cfg.PdfToText, e.logger, "-bbox", "-enc", "UTF-8", path, "-")
	if err != nil {
		return nil, fmt.Errorf("pdftotext -bbox: %w (%s)", err, truncate(string(stderr), 512))
	}
	return ParseBBoxHTML(stdout)
}

// ParseBBoxHTML reads the <page>/<word> structure emitted by pdftotext -bbox.
// Page text is rebuilt from the words, grouped into lines.
func ParseBBoxHTML(doc []byte) ([]entity.PageInput, error) {
	root, err := html.Parse(bytes.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("parse bbox html: %w", err)
	}

	var pages []entity.PageInput
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "page":
				p := entity.PageInput{
					PageNo: len(pages) + 1,
					Width:  attrFloat(n, "width"),
					Height: attrFloat(n, "height"),
				}
				pages = append(pages, p)
			case "word":
				if len(pages) == 0 {
					return
				}
				cur := &pages[len(pages)-1]
				text := strings.TrimSpace(nodeText(n))
				if text == "" {
					return
				}
				cur.Words = append(cur.Words, entity.PositionedWord{
					Text: text,
					Page: cur.PageNo,
					BBox: entity.BBox{
						X0: attrFloat(n, "xmin"),
						Y0: attrFloat(n, "ymin"),
						X1: attrFloat(n, "xmax"),
						Y1: attrFloat(n, "ymax"),
					},
				})
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	cfg := layout.DefaultConfig()
	for i := range pages {
		lines := layout.GroupLines(pages[i].Words, cfg)
		texts := make([]string, len(lines))
		for j, l := range lines {
			texts[j] = l.Text
		}
		pages[i].Text = strings.Join(texts, "\n")
	}
	return pages, nil
}

// attrFloat looks up an attribute; the HTML parser lowercases names.
func attrFloat(n *html.Node, key string) float64 {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			v, err := strconv.ParseFloat(strings.TrimSpace(a.Val), 64)
			if err != nil {
				return 0
			}
			return v
		}
	}
	return 0
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
