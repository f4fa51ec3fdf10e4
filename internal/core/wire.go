package core

import (
	"log/slog"

	"github.com/Open-AIP/OpenAIP/constants"
	"github.com/Open-AIP/OpenAIP/internal/common"
	"github.com/Open-AIP/OpenAIP/internal/metadata"
	"github.com/Open-AIP/OpenAIP/internal/pagetext"
)

// NewProcessorFromConfig wires the extractor and resolver from cfg.
func NewProcessorFromConfig(cfg *common.Config, store ArtifactStore, artifactDir string, logger *slog.Logger) *Processor {
	extractor := pagetext.NewExtractor(pagetext.Config{
		PdfToText: cfg.Extraction.PdfToTextBin,
		MaxPages:  cfg.Extraction.MaxPages,
	}, logger)
	resolver := metadata.NewResolver(metadata.ConfigFromSettings(cfg.Resolver), logger)
	return NewProcessor(logger, extractor, resolver, store, constants.Scope(cfg.Resolver.Scope), artifactDir)
}
