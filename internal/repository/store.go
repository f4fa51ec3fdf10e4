package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Open-AIP/OpenAIP/internal/artifact"
	"github.com/Open-AIP/OpenAIP/internal/common"
	"github.com/Open-AIP/OpenAIP/internal/utils"
)

// Store persists whole artifacts atomically.
type Store struct {
	db     *DB
	logger *slog.Logger
}

func NewStore(db *DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

func (s *Store) Documents() DocumentRepository {
	return NewDocumentRepository(s.db.SQL(), s.db.Dialect(), s.logger)
}

func (s *Store) Totals() TotalsRepository {
	return NewTotalsRepository(s.db.SQL(), s.db.Dialect(), s.logger)
}

func (s *Store) SourceRefs() SourceRefRepository {
	return NewSourceRefRepository(s.db.SQL(), s.db.Dialect(), s.logger)
}

// SaveArtifact upserts the document row, its totals and every source ref in
// one transaction. Saving the same artifact twice leaves the row counts unchanged.
func (s *Store) SaveArtifact(ctx context.Context, a artifact.Artifact, raw []byte) (uuid.UUID, error) {
	tx, err := s.db.SQL().BeginTx(ctx, nil)
	if err != nil {
		return uuid.Nil, common.NewAppError(common.CodeDatabase, "begin tx", err)
	}
	defer func() { _ = tx.Rollback() }()

	dialect := s.db.Dialect()
	id, err := NewDocumentRepository(tx, dialect, s.logger).UpsertDocument(ctx, utils.ToDocument(a, raw))
	if err != nil {
		return uuid.Nil, err
	}
	// the stored id wins when an earlier run used a different one
	a.AIPID = id

	totals := NewTotalsRepository(tx, dialect, s.logger)
	for _, t := range utils.ToStoredTotals(id, a.Totals) {
		if err := totals.UpsertTotal(ctx, t); err != nil {
			return uuid.Nil, fmt.Errorf("total %s: %w", t.SourceLabel, err)
		}
	}
	if err := NewSourceRefRepository(tx, dialect, s.logger).UpsertRefs(ctx, utils.CollectSourceRefs(a)); err != nil {
		return uuid.Nil, err
	}
	if err := tx.Commit(); err != nil {
		return uuid.Nil, common.NewAppError(common.CodeDatabase, "commit", err)
	}
	s.logger.Info("repository.artifact.saved",
		"aip_id", id,
		"content_hash", a.SourceFile.ContentHash,
		"totals", len(a.Totals),
	)
	return id, nil
}
