package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Open-AIP/OpenAIP/internal/entity"
)

func TestClusterColumns(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		name    string
		centers []float64
		width   float64
		want    []entity.ColumnBand
	}{
		{
			name:  "no anchors covers page",
			width: 900,
			want:  []entity.ColumnBand{{XMin: 0, XMax: 900, Center: 450}},
		},
		{
			name:    "unknown width falls back",
			centers: nil,
			width:   0,
			want:    []entity.ColumnBand{{XMin: 0, XMax: 1000, Center: 500}},
		},
		{
			name:    "two distant anchors",
			centers: []float64{549.5, 69.5},
			width:   900,
			want: []entity.ColumnBand{
				{XMin: 0, XMax: 309.5, Center: 69.5},
				{XMin: 309.5, XMax: 900, Center: 549.5},
			},
		},
		{
			name:    "stacked anchors share a band",
			centers: []float64{69.5, 69.5, 549.5},
			width:   900,
			want: []entity.ColumnBand{
				{XMin: 0, XMax: 309.5, Center: 69.5},
				{XMin: 309.5, XMax: 900, Center: 549.5},
			},
		},
		{
			name:    "near anchors merge",
			centers: []float64{60, 100},
			width:   900,
			want:    []entity.ColumnBand{{XMin: 0, XMax: 900, Center: 80}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClusterColumns(tt.centers, tt.width, cfg))
		})
	}
}

func TestNearestColumn(t *testing.T) {
	bands := BandsFromCenters([]float64{100, 500}, 900)
	b, ok := NearestColumn(bands, 120)
	require.True(t, ok)
	assert.Equal(t, 100.0, b.Center)

	b, ok = NearestColumn(bands, 880)
	require.True(t, ok)
	assert.Equal(t, 500.0, b.Center)

	_, ok = NearestColumn(nil, 10)
	assert.False(t, ok)
}
