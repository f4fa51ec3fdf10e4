package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Open-AIP/OpenAIP/internal/artifact"
	"github.com/Open-AIP/OpenAIP/internal/common"
	"github.com/Open-AIP/OpenAIP/internal/entity"
	"github.com/Open-AIP/OpenAIP/internal/metadata"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	ctx := context.Background()
	db, err := Open(ctx, Config{DSN: "file:" + filepath.Join(t.TempDir(), "aip.db")}, nil)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.Migrate(ctx))
	return db
}

func testArtifact(t *testing.T, hash string) (artifact.Artifact, []byte) {
	t.Helper()
	pages := []entity.PageInput{
		{PageNo: 1, Text: "BARANGAY SAN ISIDRO\nBAIP FY 2025"},
		{PageNo: 2, Text: "TOTAL INVESTMENT PROGRAM: 77,092,531.00\nPrepared by:\nJUAN DELA CRUZ\nBarangay Treasurer\nApproved by:\nMARIA SANTOS\nPunong Barangay"},
	}
	now := func() time.Time { return time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC) }
	res := metadata.Resolve(pages, metadata.Options{Now: now}, metadata.DefaultConfig())
	a := artifact.Build(res, artifact.Options{SourcePath: "/in/san-isidro.pdf", ContentHash: hash})
	raw, err := a.MarshalValid()
	require.NoError(t, err)
	return a, raw
}

func countRows(t *testing.T, db *DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.SQL().QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func TestIsPostgres(t *testing.T) {
	assert.True(t, IsPostgres("postgres://u:p@localhost/aip"))
	assert.True(t, IsPostgres("postgresql://localhost/aip"))
	assert.False(t, IsPostgres("file:aip.db"))
	assert.False(t, IsPostgres(":memory:"))
}

func TestOpenRejectsEmptyDSN(t *testing.T) {
	_, err := Open(context.Background(), Config{}, nil)
	assert.Error(t, err)
}

func TestMigrateIsRepeatable(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Migrate(context.Background()))
	require.NoError(t, db.HealthCheck(context.Background(), time.Second))
}

func TestSaveArtifactIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	store := NewStore(db, nil)
	ctx := context.Background()
	a, raw := testArtifact(t, "hash-1")

	id1, err := store.SaveArtifact(ctx, a, raw)
	require.NoError(t, err)
	assert.Equal(t, a.AIPID, id1)

	docs, totals, refs := countRows(t, db, TableDocuments), countRows(t, db, TableTotals), countRows(t, db, TableSourceRefs)
	assert.Equal(t, 1, docs)
	assert.Equal(t, 1, totals)
	assert.Positive(t, refs)

	id2, err := store.SaveArtifact(ctx, a, raw)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)
	assert.Equal(t, docs, countRows(t, db, TableDocuments))
	assert.Equal(t, totals, countRows(t, db, TableTotals))
	assert.Equal(t, refs, countRows(t, db, TableSourceRefs))

	n, err := store.SourceRefs().CountByDocument(ctx, id1)
	require.NoError(t, err)
	assert.Equal(t, refs, n)
}

func TestSaveArtifactKeepsFirstIDForSameContent(t *testing.T) {
	db := openTestDB(t)
	store := NewStore(db, nil)
	ctx := context.Background()
	a, raw := testArtifact(t, "hash-2")

	first, err := store.SaveArtifact(ctx, a, raw)
	require.NoError(t, err)

	a.AIPID = uuid.New()
	second, err := store.SaveArtifact(ctx, a, raw)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, countRows(t, db, TableDocuments))
}

func TestDocumentQueries(t *testing.T) {
	db := openTestDB(t)
	store := NewStore(db, nil)
	ctx := context.Background()
	a, raw := testArtifact(t, "hash-3")
	id, err := store.SaveArtifact(ctx, a, raw)
	require.NoError(t, err)

	doc, err := store.Documents().GetByContentHash(ctx, "hash-3")
	require.NoError(t, err)
	assert.Equal(t, id, doc.ID)
	assert.Equal(t, "Barangay San Isidro", doc.LGUName)
	assert.Equal(t, "barangay", doc.LGUType)
	assert.Equal(t, 2025, doc.FiscalYear)
	assert.Equal(t, "BAIP", doc.DocumentType)
	assert.Equal(t, 2, doc.PageCount)
	assert.JSONEq(t, string(raw), string(doc.ArtifactJSON))

	_, err = store.Documents().GetByContentHash(ctx, "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrNotFound))

	list, err := store.Documents().ListDocuments(ctx, 2025)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	list, err = store.Documents().ListDocuments(ctx, 2024)
	require.NoError(t, err)
	assert.Empty(t, list)

	totals, err := store.Totals().ListByDocument(ctx, id)
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.Equal(t, "total_investment_program", totals[0].SourceLabel)
	assert.Equal(t, "77092531", totals[0].Value)
	assert.Equal(t, 2, totals[0].PageNo)
}

func TestUpsertTotalValidation(t *testing.T) {
	db := openTestDB(t)
	repo := NewTotalsRepository(db.SQL(), db.Dialect(), nil)
	ctx := context.Background()

	err := repo.UpsertTotal(ctx, &entity.StoredTotal{AIPID: uuid.New(), SourceLabel: "total_investment_program", Value: "10"})
	assert.Error(t, err, "evidence_text is required")

	err = repo.UpsertTotal(ctx, &entity.StoredTotal{AIPID: uuid.New(), SourceLabel: "total_investment_program", EvidenceText: "TOTAL 10"})
	assert.Error(t, err, "value is required")

	err = repo.UpsertTotal(ctx, &entity.StoredTotal{SourceLabel: "total_investment_program", Value: "10", EvidenceText: "TOTAL 10"})
	assert.Error(t, err, "aip_id is required")
}
