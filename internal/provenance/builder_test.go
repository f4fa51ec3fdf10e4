package provenance

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Open-AIP/OpenAIP/constants"
	"github.com/Open-AIP/OpenAIP/internal/entity"
)

func intPtr(v int) *int { return &v }

func TestAnchorHashIsStable(t *testing.T) {
	a := AnchorHash("TOTAL INVESTMENT PROGRAM", 3, intPtr(1), intPtr(0), constants.KindTableRow, "sig")
	b := AnchorHash("TOTAL INVESTMENT PROGRAM", 3, intPtr(1), intPtr(0), constants.KindTableRow, "sig")
	assert.Equal(t, a, b)
	assert.Len(t, a, 40)

	// whitespace differences normalize away
	c := AnchorHash("  TOTAL   INVESTMENT\nPROGRAM ", 3, intPtr(1), intPtr(0), constants.KindTableRow, " sig ")
	assert.Equal(t, a, c)
}

func TestAnchorHashDependsOnEachField(t *testing.T) {
	base := AnchorHash("x", 1, intPtr(1), intPtr(1), constants.KindTextBlock, "s")
	variants := []string{
		AnchorHash("y", 1, intPtr(1), intPtr(1), constants.KindTextBlock, "s"),
		AnchorHash("x", 2, intPtr(1), intPtr(1), constants.KindTextBlock, "s"),
		AnchorHash("x", 1, intPtr(2), intPtr(1), constants.KindTextBlock, "s"),
		AnchorHash("x", 1, intPtr(1), intPtr(2), constants.KindTextBlock, "s"),
		AnchorHash("x", 1, intPtr(1), intPtr(1), constants.KindHeader, "s"),
		AnchorHash("x", 1, intPtr(1), intPtr(1), constants.KindTextBlock, "t"),
	}
	for i, v := range variants {
		assert.NotEqual(t, base, v, "variant %d", i)
	}
}

func TestNewIgnoresBBoxForHash(t *testing.T) {
	r1 := New(Input{Page: 2, Kind: constants.KindTextBlock, EvidenceText: "PREPARED BY: JUAN"})
	r2 := New(Input{Page: 2, Kind: constants.KindTextBlock, EvidenceText: "PREPARED BY: JUAN",
		BBox: &entity.BBox{X0: 1, Y0: 2, X1: 3, Y1: 4}})
	assert.Equal(t, r1.AnchorHash, r2.AnchorHash)
}

func TestNewNormalizes(t *testing.T) {
	long := strings.Repeat("a ", 300)
	ref := New(Input{Page: 0, Kind: "weird", EvidenceText: long})
	assert.Equal(t, constants.UnknownPage, ref.Page)
	assert.Equal(t, constants.KindUnknown, ref.Kind)
	assert.Len(t, []rune(ref.EvidenceText), constants.MaxEvidenceLen)
	assert.False(t, ref.HasPage())
}

func TestDedup(t *testing.T) {
	a := TextRef(1, constants.KindHeader, "Barangay Alpha", nil)
	b := TextRef(2, constants.KindHeader, "Barangay Alpha", nil)
	out := Dedup([]entity.SourceRef{a, b, a})
	require.Len(t, out, 2)
	assert.Equal(t, a, out[0])
	assert.Equal(t, b, out[1])
	assert.Nil(t, Dedup(nil))
}

func TestMergeDoesNotMutate(t *testing.T) {
	a := []entity.SourceRef{TextRef(1, constants.KindHeader, "x", nil)}
	b := []entity.SourceRef{TextRef(1, constants.KindHeader, "x", nil), TextRef(2, constants.KindFooter, "y", nil)}
	out := Merge(a, b)
	assert.Len(t, out, 2)
	assert.Len(t, a, 1)
	assert.True(t, HasPageEvidence(out))
}
