package pagetext

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Dim is a page size in points.
type Dim struct {
	Width, Height float64
}

// Info is the structural summary of a PDF.
type Info struct {
	PageCount int
	Dims      []Dim
}

// Inspect reads the page tree with pdfcpu.
func Inspect(path string) (Info, error) {
	ctx, err := api.ReadContextFile(path)
	if err != nil {
		return Info{}, fmt.Errorf("read pdf context: %w", err)
	}
	info := Info{PageCount: ctx.PageCount}
	dims, err := ctx.PageDims()
	if err != nil {
		return info, nil
	}
	for _, d := range dims {
		info.Dims = append(info.Dims, Dim{Width: d.Width, Height: d.Height})
	}
	return info, nil
}
