package layout

import (
	"sort"

	"github.com/Open-AIP/OpenAIP/internal/entity"
)

// ClusterColumns groups anchor x-centers into column bands. Sorted centers
// within ColumnClusterRatio*pageWidth of their predecessor share a band; any
// other center opens a new one. Band edges sit halfway between neighbouring
// cluster centers and run to the page edges at both ends. With no centers the
// whole page is a single band.
func ClusterColumns(xCenters []float64, pageWidth float64, cfg Config) []entity.ColumnBand {
	if pageWidth <= 0 {
		pageWidth = cfg.DefaultPageWidth
	}
	if len(xCenters) == 0 {
		return []entity.ColumnBand{{XMin: 0, XMax: pageWidth, Center: pageWidth / 2}}
	}
	sorted := make([]float64, len(xCenters))
	copy(sorted, xCenters)
	sort.Float64s(sorted)

	threshold := cfg.ColumnClusterRatio * pageWidth
	var centers []float64
	sum, n := sorted[0], 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i]-sorted[i-1] <= threshold {
			sum += sorted[i]
			n++
			continue
		}
		centers = append(centers, sum/float64(n))
		sum, n = sorted[i], 1
	}
	centers = append(centers, sum/float64(n))
	return BandsFromCenters(centers, pageWidth)
}

// BandsFromCenters bisects the space between consecutive (sorted) centers.
func BandsFromCenters(centers []float64, pageWidth float64) []entity.ColumnBand {
	bands := make([]entity.ColumnBand, len(centers))
	for i, c := range centers {
		lo, hi := 0.0, pageWidth
		if i > 0 {
			lo = (centers[i-1] + c) / 2
		}
		if i < len(centers)-1 {
			hi = (c + centers[i+1]) / 2
		}
		bands[i] = entity.ColumnBand{XMin: lo, XMax: hi, Center: c}
	}
	return bands
}

// NearestColumn returns the band containing x, or the band whose center is closest.
func NearestColumn(bands []entity.ColumnBand, x float64) (entity.ColumnBand, bool) {
	if len(bands) == 0 {
		return entity.ColumnBand{}, false
	}
	best := bands[0]
	bestDist := abs(x - best.Center)
	for _, b := range bands {
		if x >= b.XMin && x <= b.XMax {
			return b, true
		}
		if d := abs(x - b.Center); d < bestDist {
			best, bestDist = b, d
		}
	}
	return best, true
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
