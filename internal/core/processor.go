package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/Open-AIP/OpenAIP/constants"
	"github.com/Open-AIP/OpenAIP/internal/artifact"
	"github.com/Open-AIP/OpenAIP/internal/common"
	"github.com/Open-AIP/OpenAIP/internal/entity"
	"github.com/Open-AIP/OpenAIP/internal/ingest"
	"github.com/Open-AIP/OpenAIP/internal/metadata"
	"github.com/Open-AIP/OpenAIP/internal/pagetext"
)

// PageExtractor turns a file into pages.
type PageExtractor interface {
	Extract(ctx context.Context, path string) (pagetext.Document, error)
}

// ArtifactStore persists artifacts; repository.Store implements it.
type ArtifactStore interface {
	SaveArtifact(ctx context.Context, a artifact.Artifact, raw []byte) (uuid.UUID, error)
}

// Outcome is the result of processing one document.
type Outcome struct {
	Path        string
	ContentHash string
	Status      constants.JobStatus
	Artifact    artifact.Artifact
	JSON        []byte
	Persisted   bool
	OutputPath  string
	Duration    time.Duration
}

// Processor coordinates page extraction, metadata resolution, artifact
// validation and persistence.
type Processor struct {
	logger      *slog.Logger
	extractor   PageExtractor
	resolver    *metadata.Resolver
	store       ArtifactStore
	scope       constants.Scope
	artifactDir string
}

// NewProcessor wires the stages. store may be nil (no persistence) and
// artifactDir may be empty (no JSON files written).
func NewProcessor(
	logger *slog.Logger,
	extractor PageExtractor,
	resolver *metadata.Resolver,
	store ArtifactStore,
	scope constants.Scope,
	artifactDir string,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		logger:      logger,
		extractor:   extractor,
		resolver:    resolver,
		store:       store,
		scope:       scope,
		artifactDir: artifactDir,
	}
}

// ProcessFile hashes the file, extracts pages, resolves metadata, builds and
// validates the artifact, then writes and persists it when configured.
func (p *Processor) ProcessFile(ctx context.Context, path string) (Outcome, error) {
	start := time.Now()
	out := Outcome{Path: path, Status: constants.JobStatusRunning}

	abs, err := filepath.Abs(path)
	if err != nil {
		return p.fail(out, fmt.Errorf("abs path: %w", err))
	}
	out.Path = abs

	hash, _, err := ingest.HashFile(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			err = common.NewAppError(common.CodePDFNotFound, abs, common.ErrNotFound)
		}
		return p.fail(out, err)
	}
	out.ContentHash = hash
	ctx = common.WithDocumentID(ctx, hash[:12])

	doc, err := p.extractor.Extract(ctx, abs)
	if err != nil {
		return p.fail(out, err)
	}
	out.Status = constants.JobStatusExtracted
	p.logger.Debug("processor.extract.ok", "path", abs, "method", doc.Method, "pages", doc.PageCount)

	if err := p.finish(ctx, &out, doc.Pages, doc.PageCount); err != nil {
		return p.fail(out, err)
	}
	out.Duration = time.Since(start)
	p.logger.Info("processor.file.ok",
		"path", abs,
		"aip_id", out.Artifact.AIPID,
		"persisted", out.Persisted,
		"duration_ms", out.Duration.Milliseconds(),
	)
	return out, nil
}

// ProcessPages runs the same pipeline on pages supplied by a caller. The
// content hash is taken over the JSON-encoded pages.
func (p *Processor) ProcessPages(ctx context.Context, pages []entity.PageInput) (Outcome, error) {
	start := time.Now()
	out := Outcome{Status: constants.JobStatusExtracted}
	b, err := json.Marshal(pages)
	if err != nil {
		return p.fail(out, fmt.Errorf("encode pages: %w", err))
	}
	sum := sha256.Sum256(b)
	out.ContentHash = hex.EncodeToString(sum[:])
	ctx = common.WithDocumentID(ctx, out.ContentHash[:12])

	if err := p.finish(ctx, &out, pages, len(pages)); err != nil {
		return p.fail(out, err)
	}
	out.Duration = time.Since(start)
	return out, nil
}

func (p *Processor) finish(ctx context.Context, out *Outcome, pages []entity.PageInput, pageCount int) error {
	res, err := p.resolver.Resolve(ctx, pages, metadata.Options{Scope: p.scope, PageCount: pageCount})
	if err != nil {
		return err
	}
	out.Status = constants.JobStatusResolved

	out.Artifact = artifact.Build(res, artifact.Options{SourcePath: out.Path, ContentHash: out.ContentHash})
	raw, err := out.Artifact.MarshalValid()
	if err != nil {
		return err
	}
	out.JSON = raw

	if p.artifactDir != "" {
		if err := os.MkdirAll(p.artifactDir, 0o755); err != nil {
			return fmt.Errorf("create artifact dir: %w", err)
		}
		dst := filepath.Join(p.artifactDir, out.ContentHash+".json")
		if err := os.WriteFile(dst, raw, 0o644); err != nil {
			return fmt.Errorf("write artifact: %w", err)
		}
		out.OutputPath = dst
	}

	if p.store != nil {
		id, err := p.store.SaveArtifact(ctx, out.Artifact, raw)
		if err != nil {
			return common.WrapError(err, "persist artifact")
		}
		out.Artifact.AIPID = id
		out.Persisted = true
	}
	return nil
}

func (p *Processor) fail(out Outcome, err error) (Outcome, error) {
	out.Status = constants.JobStatusFailed
	p.logger.Error("processor.file.failed",
		"path", out.Path,
		"code", common.ErrorCode(err),
		"error", err,
	)
	return out, err
}
