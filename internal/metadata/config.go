package metadata

import (
	"github.com/Open-AIP/OpenAIP/internal/common"
	"github.com/Open-AIP/OpenAIP/internal/jurisdiction"
	"github.com/Open-AIP/OpenAIP/internal/signatory"
	"github.com/Open-AIP/OpenAIP/internal/totals"
)

// Config bundles every resolver's thresholds. Build it once and share it.
type Config struct {
	Signatory    signatory.Config
	Jurisdiction jurisdiction.Config
	Totals       totals.Config
	Quality      QualityConfig
}

// QualityConfig holds the review-score penalties.
type QualityConfig struct {
	LowLGU          int
	SignatoryFailed int
	TotalsMissing   int
	Other           int
}

func DefaultConfig() Config {
	return Config{
		Signatory:    signatory.DefaultConfig(),
		Jurisdiction: jurisdiction.DefaultConfig(),
		Totals:       totals.DefaultConfig(),
		Quality: QualityConfig{
			LowLGU:          8,
			SignatoryFailed: 4,
			TotalsMissing:   6,
			Other:           3,
		},
	}
}

// ConfigFromSettings applies the non-zero overrides from the app config.
func ConfigFromSettings(s common.ResolverConfig) Config {
	cfg := DefaultConfig()
	if s.CaptureRegionRatio > 0 {
		cfg.Signatory.CaptureRegionRatio = s.CaptureRegionRatio
	}
	if s.PositionGapMax > 0 {
		cfg.Signatory.PositionGapMax = s.PositionGapMax
	}
	if s.ColumnClusterRatio > 0 {
		cfg.Signatory.Layout.ColumnClusterRatio = s.ColumnClusterRatio
	}
	if s.LGUAmbiguityGap > 0 {
		cfg.Jurisdiction.AmbiguityGap = s.LGUAmbiguityGap
	}
	return cfg
}
