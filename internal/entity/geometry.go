package entity

// BBox is an axis-aligned box in page coordinates (origin top-left, y grows down).
type BBox struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

func (b BBox) Width() float64  { return b.X1 - b.X0 }
func (b BBox) Height() float64 { return b.Y1 - b.Y0 }
func (b BBox) XCenter() float64 {
	return (b.X0 + b.X1) / 2
}
func (b BBox) YCenter() float64 {
	return (b.Y0 + b.Y1) / 2
}

// Union returns the smallest box containing both b and o.
func (b BBox) Union(o BBox) BBox {
	return BBox{
		X0: min(b.X0, o.X0),
		Y0: min(b.Y0, o.Y0),
		X1: max(b.X1, o.X1),
		Y1: max(b.Y1, o.Y1),
	}
}

// PositionedWord is a single text token with its box, as produced by page extraction.
type PositionedWord struct {
	Text string `json:"text"`
	BBox BBox   `json:"bbox"`
	Page int    `json:"page"`
}

// PositionedLine is a run of words sharing a vertical band.
type PositionedLine struct {
	Words []PositionedWord `json:"words"`
	Text  string           `json:"text"`
	BBox  BBox             `json:"bbox"`
	Page  int              `json:"page"`
}

// ColumnBand is a horizontal x-range used to scope signature capture.
type ColumnBand struct {
	XMin   float64 `json:"x_min"`
	XMax   float64 `json:"x_max"`
	Center float64 `json:"center"`
}

// PageInput is one page as handed over by the extraction collaborator.
// Words may be empty when the page has no usable text layer.
type PageInput struct {
	PageNo      int              `json:"page_no"`
	Text        string           `json:"text"`
	Words       []PositionedWord `json:"words,omitempty"`
	Width       float64          `json:"width,omitempty"`
	Height      float64          `json:"height,omitempty"`
	DecodeError string           `json:"decode_error,omitempty"`
}

func (p PageInput) HasWords() bool { return len(p.Words) > 0 }
