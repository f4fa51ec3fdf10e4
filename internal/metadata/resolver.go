// Package metadata merges the individual resolvers into one document record.
package metadata

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Open-AIP/OpenAIP/constants"
	"github.com/Open-AIP/OpenAIP/internal/common"
	"github.com/Open-AIP/OpenAIP/internal/doctype"
	"github.com/Open-AIP/OpenAIP/internal/entity"
	"github.com/Open-AIP/OpenAIP/internal/fiscalyear"
	"github.com/Open-AIP/OpenAIP/internal/jurisdiction"
	"github.com/Open-AIP/OpenAIP/internal/layout"
	"github.com/Open-AIP/OpenAIP/internal/provenance"
	"github.com/Open-AIP/OpenAIP/internal/signatory"
	"github.com/Open-AIP/OpenAIP/internal/totals"
)

// Options carry per-document inputs.
type Options struct {
	// Scope forces the pipeline scope; empty or unknown means infer it.
	Scope constants.Scope
	// PageCount overrides len(pages) when the extractor knows better.
	PageCount int
	Now       fiscalyear.Clock
}

// Result is everything resolved for one document.
type Result struct {
	Metadata entity.DocumentMetadata `json:"document"`
	Warnings []entity.Warning        `json:"warnings"`
	Totals   []entity.TotalRecord    `json:"totals"`
	Quality  entity.Quality          `json:"quality"`
	Scope    constants.Scope         `json:"scope"`
}

type Resolver struct {
	cfg    Config
	logger *slog.Logger
}

func NewResolver(cfg Config, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{cfg: cfg, logger: logger}
}

// Resolve runs every resolver over the pages. Only a document without pages
// is an error; everything else degrades into warnings.
func (r *Resolver) Resolve(ctx context.Context, pages []entity.PageInput, opts Options) (Result, error) {
	if len(pages) == 0 {
		return Result{}, common.NewAppError(common.CodePDFEmpty, "document has no pages", common.ErrEmptyPDF)
	}
	res := Resolve(pages, opts, r.cfg)
	r.logger.Info("metadata.resolve.ok",
		"document_id", common.DocumentIDFromContext(ctx),
		"lgu", res.Metadata.LGU.Name,
		"lgu_type", res.Metadata.LGU.Type,
		"confidence", res.Metadata.LGU.Confidence,
		"fiscal_year", res.Metadata.FiscalYear,
		"document_type", res.Metadata.Source.DocumentType,
		"signatories", len(res.Metadata.Signatories),
		"totals", len(res.Totals),
		"warnings", len(res.Warnings),
		"quality", res.Quality.Score,
	)
	return res, nil
}

// Resolve is the pure form of Resolver.Resolve.
func Resolve(pages []entity.PageInput, opts Options, cfg Config) Result {
	pages = withText(pages, cfg.Signatory.Layout)
	texts := make([]string, len(pages))
	for i, p := range pages {
		texts[i] = p.Text
	}

	warnings := decodeWarnings(pages)

	year, yw := fiscalyear.Resolve(texts, opts.Now)
	warnings = append(warnings, yw...)

	jr := jurisdiction.Resolve(texts, cfg.Jurisdiction)
	lgu := jr.LGU
	warnings = append(warnings, jr.Warnings...)

	dt := doctype.Resolve(texts, lgu.Type)
	warnings = append(warnings, dt.Warnings...)

	scope := inferScope(opts.Scope, lgu.Type, dt)
	if lgu.Type == constants.LGUUnknown && lgu.Name != constants.UnknownLGUName && strings.TrimSpace(lgu.Name) != "" {
		lgu.Type = constants.LGUCity
		if scope == constants.ScopeBarangay {
			lgu.Type = constants.LGUBarangay
		}
		warnings = append(warnings, entity.Warning{
			Code:    constants.WarnLGUTypeInferredFromScope,
			Message: "LGU name was detected but type was ambiguous; inferred from pipeline scope.",
			Details: map[string]any{"selected_type": string(lgu.Type)},
		})
	}

	sigs, sw := signatory.Resolve(pages, cfg.Signatory)
	warnings = append(warnings, sw...)

	records, tw := totals.Resolve(texts, year, cfg.Totals)
	warnings = append(warnings, tw...)

	pageCount := opts.PageCount
	if pageCount <= 0 {
		pageCount = len(pages)
	}

	md := entity.DocumentMetadata{
		LGU:        lgu,
		FiscalYear: year,
		Source: entity.SourceInfo{
			DocumentType: doctype.Default(dt.Type, scope),
			PageCount:    pageCount,
		},
		Signatories: sigs,
	}
	return Result{
		Metadata: md,
		Warnings: warnings,
		Totals:   records,
		Quality:  Score(lgu, warnings, cfg.Quality),
		Scope:    scope,
	}
}

// withText fills empty page text from the page's grouped words so the
// text-only resolvers still see it.
func withText(pages []entity.PageInput, cfg layout.Config) []entity.PageInput {
	out := make([]entity.PageInput, len(pages))
	for i, p := range pages {
		if p.PageNo < 1 {
			p.PageNo = i + 1
		}
		if strings.TrimSpace(p.Text) == "" && p.HasWords() {
			lines := layout.GroupLines(p.Words, cfg)
			parts := make([]string, len(lines))
			for j, l := range lines {
				parts[j] = l.Text
			}
			p.Text = strings.Join(parts, "\n")
		}
		out[i] = p
	}
	return out
}

func decodeWarnings(pages []entity.PageInput) []entity.Warning {
	var out []entity.Warning
	for _, p := range pages {
		if p.DecodeError == "" {
			continue
		}
		out = append(out, entity.Warning{
			Code:       constants.WarnPageDecodeFailed,
			Message:    fmt.Sprintf("Page %d could not be decoded and was treated as empty.", p.PageNo),
			Details:    map[string]any{"error": p.DecodeError},
			SourceRefs: []entity.SourceRef{provenance.TextRef(p.PageNo, constants.KindUnknown, "", nil)},
		})
	}
	return out
}

// inferScope keeps an explicit scope and otherwise derives one from the
// resolved LGU type and BAIP evidence.
func inferScope(explicit constants.Scope, lguType constants.LGUType, dt doctype.Result) constants.Scope {
	if explicit == constants.ScopeBarangay || explicit == constants.ScopeCity {
		return explicit
	}
	switch {
	case lguType == constants.LGUBarangay || len(dt.BAIPHits) > 0:
		return constants.ScopeBarangay
	case lguType == constants.LGUCity || lguType == constants.LGUMunicipality:
		return constants.ScopeCity
	}
	return constants.ScopeUnknown
}

// Score turns warnings into a 0..100 review score.
func Score(lgu entity.LguInfo, warnings []entity.Warning, cfg QualityConfig) entity.Quality {
	q := entity.Quality{Score: 100, WarningCount: len(warnings)}
	if lgu.Confidence == constants.ConfidenceLow {
		q.Score -= cfg.LowLGU
	}
	for _, w := range warnings {
		if q.ByCode == nil {
			q.ByCode = map[string]int{}
		}
		q.ByCode[string(w.Code)]++
		switch w.Code {
		case constants.WarnSignatoryParseFailed:
			q.Score -= cfg.SignatoryFailed
		case constants.WarnTotalsNotFound:
			q.Score -= cfg.TotalsMissing
		default:
			q.Score -= cfg.Other
		}
	}
	q.Score = max(0, min(100, q.Score))
	return q
}
