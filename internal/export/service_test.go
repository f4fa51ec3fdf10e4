package export

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Open-AIP/OpenAIP/internal/artifact"
	"github.com/Open-AIP/OpenAIP/internal/entity"
	"github.com/Open-AIP/OpenAIP/internal/metadata"
)

func sampleArtifact(t *testing.T) artifact.Artifact {
	t.Helper()
	pages := []entity.PageInput{
		{PageNo: 1, Text: "CITY OF NAGA\nANNUAL INVESTMENT PROGRAM 2026\nGRAND TOTAL 1,500,000.00"},
		{PageNo: 2, Text: "Prepared by:\nANA LOPEZ\nCity Planning Officer"},
	}
	now := func() time.Time { return time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC) }
	res := metadata.Resolve(pages, metadata.Options{Now: now}, metadata.DefaultConfig())
	return artifact.Build(res, artifact.Options{SourcePath: "/in/naga.pdf", ContentHash: "naga", AIPID: uuid.MustParse("11111111-2222-3333-4444-555555555555")})
}

func TestWorkbookXLSX(t *testing.T) {
	svc := NewService(nil, nil)
	a := sampleArtifact(t)

	b, err := svc.WorkbookXLSX(context.Background(), []artifact.Artifact{a})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetDocuments, SheetSignatories, SheetTotals, SheetWarnings}, f.GetSheetList())

	rows, err := f.GetRows(SheetDocuments)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "AIP ID", rows[0][0])
	assert.Equal(t, "11111111-2222-3333-4444-555555555555", rows[1][0])
	assert.Equal(t, "City of Naga", rows[1][2])
	assert.Equal(t, "2026", rows[1][5])

	rows, err = f.GetRows(SheetSignatories)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "prepared_by", rows[1][1])
	assert.Equal(t, "ANA LOPEZ", rows[1][2])

	rows, err = f.GetRows(SheetTotals)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "total_investment_program", rows[1][1])
	assert.Equal(t, "1500000", rows[1][3])
}

func TestExportStoredRequiresRepository(t *testing.T) {
	_, err := NewService(nil, nil).ExportStoredXLSX(context.Background(), 0)
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab…", truncate("abcdef", 3))
}
