package signatory

import (
	"math"
	"sort"
	"strings"

	"github.com/Open-AIP/OpenAIP/constants"
	"github.com/Open-AIP/OpenAIP/internal/entity"
	"github.com/Open-AIP/OpenAIP/internal/textnorm"
)

// DetectAnchors finds role labels in line words, either as one token
// ("PreparedBy:") or as a role verb followed by "by".
//
// When a line holds exactly two prepared/approved anchors, the left one is
// taken as prepared_by and the right one as approved_by. This follows the
// usual printed layout and is a heuristic: raw token order on these forms is
// not reliable, but unusual layouts can still be misread.
func DetectAnchors(lines []entity.PositionedLine) []entity.SignatoryAnchor {
	var anchors []entity.SignatoryAnchor
	for _, line := range lines {
		words := line.Words
		norm := make([]string, len(words))
		for i, w := range words {
			norm[i] = textnorm.LettersOnly(w.Text)
		}

		var found []entity.SignatoryAnchor
		for i := 0; i < len(words); i++ {
			role, ok := constants.RoleFromLabel(norm[i])
			end := i
			if !ok {
				if _, isVerb := constants.RoleFromToken(norm[i]); isVerb && i+1 < len(words) && norm[i+1] == "by" {
					role, ok = constants.RoleFromLabel(norm[i] + "by")
					end = i + 1
				}
			}
			if !ok {
				continue
			}
			span := words[i : end+1]
			texts := make([]string, len(span))
			box := span[0].BBox
			for j, w := range span {
				texts[j] = w.Text
				box = box.Union(w.BBox)
			}
			found = append(found, entity.SignatoryAnchor{
				Role:  role,
				Label: textnorm.Whitespace(strings.Join(texts, " ")),
				BBox:  box,
				Page:  line.Page,
			})
			i = end
		}
		anchors = append(anchors, normalizeRowRoles(found)...)
	}
	return dedupAnchors(anchors)
}

func normalizeRowRoles(row []entity.SignatoryAnchor) []entity.SignatoryAnchor {
	var family []int
	for i, a := range row {
		if a.Role.IsPrepApproveFamily() {
			family = append(family, i)
		}
	}
	if len(family) != 2 {
		return row
	}
	left, right := family[0], family[1]
	if row[right].BBox.X0 < row[left].BBox.X0 {
		left, right = right, left
	}
	out := make([]entity.SignatoryAnchor, len(row))
	copy(out, row)
	out[left].Role = constants.RolePreparedBy
	out[right].Role = constants.RoleApprovedBy
	return out
}

func dedupAnchors(anchors []entity.SignatoryAnchor) []entity.SignatoryAnchor {
	type key struct {
		role   constants.SignatoryRole
		y0, x0 float64
	}
	seen := map[key]struct{}{}
	var out []entity.SignatoryAnchor
	for _, a := range anchors {
		k := key{a.Role, round1(a.BBox.Y0), round1(a.BBox.X0)}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, a)
	}
	return out
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

// columnForAnchor derives a row-local band when other anchors share the
// anchor's printed row; otherwise the page-global band applies.
func columnForAnchor(idx int, anchors []entity.SignatoryAnchor, global entity.ColumnBand, pageWidth float64, cfg Config) entity.ColumnBand {
	self := anchors[idx]
	var row []int
	for i, a := range anchors {
		if math.Abs(a.BBox.Y0-self.BBox.Y0) <= cfg.SameRowTolerance {
			row = append(row, i)
		}
	}
	if len(row) <= 1 {
		return global
	}
	sort.SliceStable(row, func(i, j int) bool {
		return anchors[row[i]].BBox.XCenter() < anchors[row[j]].BBox.XCenter()
	})
	pos := -1
	for i, ai := range row {
		if ai == idx {
			pos = i
			break
		}
	}
	if pos < 0 {
		return global
	}
	center := self.BBox.XCenter()
	left, right := 0.0, pageWidth
	if pos > 0 {
		left = (anchors[row[pos-1]].BBox.XCenter() + center) / 2
	}
	if pos < len(row)-1 {
		right = (center + anchors[row[pos+1]].BBox.XCenter()) / 2
	}
	return entity.ColumnBand{XMin: math.Max(0, left), XMax: math.Max(left, right), Center: center}
}

type region struct {
	xMin, xMax, yMin, yMax float64
}

func (r region) holds(l entity.PositionedLine) bool {
	x, y := l.BBox.XCenter(), l.BBox.YCenter()
	return x >= r.xMin && x <= r.xMax && y >= r.yMin && y <= r.yMax
}

// captureRegion starts at the anchor's bottom edge, spans the column plus
// padding, and reaches down CaptureRegionRatio of the page. It stops early
// at the next anchor printed below in the same column.
func captureRegion(idx int, anchors []entity.SignatoryAnchor, col entity.ColumnBand, pageHeight float64, cfg Config) region {
	a := anchors[idx]
	h := math.Max(1, pageHeight)
	r := region{
		xMin: math.Max(0, col.XMin-cfg.ColumnPadding),
		xMax: col.XMax + cfg.ColumnPadding,
		yMin: math.Max(0, a.BBox.Y1),
	}
	r.yMax = math.Min(h, r.yMin+h*cfg.CaptureRegionRatio)
	for i, other := range anchors {
		if i == idx || other.BBox.Y0 <= a.BBox.Y1 {
			continue
		}
		if x := other.BBox.XCenter(); x >= r.xMin && x <= r.xMax && other.BBox.Y0 < r.yMax {
			r.yMax = other.BBox.Y0
		}
	}
	return r
}
