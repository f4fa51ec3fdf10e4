package signatory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Open-AIP/OpenAIP/constants"
	"github.com/Open-AIP/OpenAIP/internal/entity"
)

func TestParseTextPairsNamesWithPositions(t *testing.T) {
	lines := []string{
		"Prepared by:",
		"JUAN DELA CRUZ",
		"Barangay Treasurer",
		"Approved by:",
		"MARIA SANTOS",
		"Punong Barangay",
	}

	sigs, warns := ParseText(lines, 2, DefaultConfig())
	assert.Empty(t, warns)
	require.Len(t, sigs, 2)

	assert.Equal(t, constants.RolePreparedBy, sigs[0].Role)
	assert.Equal(t, "JUAN DELA CRUZ", sigs[0].Name)
	assert.Equal(t, "Barangay Treasurer", sigs[0].Position)
	assert.Equal(t, "Barangay Government", sigs[0].Office)

	assert.Equal(t, constants.RoleApprovedBy, sigs[1].Role)
	assert.Equal(t, "MARIA SANTOS", sigs[1].Name)
	assert.Equal(t, "Punong Barangay", sigs[1].Position)

	require.Len(t, sigs[0].SourceRefs, 1)
	ref := sigs[0].SourceRefs[0]
	assert.Equal(t, 2, ref.Page)
	assert.Equal(t, constants.KindTextBlock, ref.Kind)
	assert.Equal(t, "PREPARED BY: JUAN DELA CRUZ", ref.EvidenceText)
	assert.NotEmpty(t, ref.AnchorHash)
}

func TestParseTextLabelsWithoutNames(t *testing.T) {
	sigs, warns := ParseText([]string{"Approved by:", "Reviewed by:", "Prepared by:"}, 1, DefaultConfig())
	assert.Empty(t, sigs)
	require.Len(t, warns, 3)

	var roles []string
	for _, w := range warns {
		assert.Equal(t, constants.WarnSignatoryParseFailed, w.Code)
		assert.Equal(t, constants.ReasonTextLayerMissing, w.Details["reason"])
		roles = append(roles, w.Details["role"].(string))
	}
	assert.Equal(t, []string{"approved_by", "reviewed_by", "prepared_by"}, roles)
}

func TestParseTextInlineLabelWarnsWithWholeLine(t *testing.T) {
	line := "This plan was prepared by the planning office"
	sigs, warns := ParseText([]string{line}, 4, DefaultConfig())
	assert.Empty(t, sigs)
	require.Len(t, warns, 1)
	assert.Equal(t, "prepared_by", warns[0].Details["role"])
	assert.Equal(t, line, warns[0].SourceRefs[0].EvidenceText)
	assert.Equal(t, 4, warns[0].Page())
}

func TestParsePageThreeColumns(t *testing.T) {
	page := pageOf(1,
		placed{"Prepared by:", 40, 50},
		placed{"Reviewed by:", 300, 50},
		placed{"Approved by:", 550, 50},
		placed{"ARLENE DELA ROSA", 40, 90},
		placed{"JOSE REYES", 300, 90},
		placed{"RAVEN SANTOS", 550, 90},
		placed{"Barangay Treasurer", 40, 104},
		placed{"Barangay Secretary", 300, 104},
		placed{"Punong Barangay", 550, 104},
	)

	sigs, warns := ParsePage(page, DefaultConfig())
	assert.Empty(t, warns)
	require.Len(t, sigs, 3)

	byRole := map[constants.SignatoryRole]entity.Signatory{}
	for _, s := range sigs {
		byRole[s.Role] = s
	}
	assert.Equal(t, "ARLENE DELA ROSA", byRole[constants.RolePreparedBy].Name)
	assert.Equal(t, "Barangay Treasurer", byRole[constants.RolePreparedBy].Position)
	assert.Equal(t, "JOSE REYES", byRole[constants.RoleReviewedBy].Name)
	assert.Equal(t, "Barangay Secretary", byRole[constants.RoleReviewedBy].Position)
	assert.Equal(t, "RAVEN SANTOS", byRole[constants.RoleApprovedBy].Name)
	assert.Equal(t, "Punong Barangay", byRole[constants.RoleApprovedBy].Position)

	box := byRole[constants.RolePreparedBy].SourceRefs[0].BBox
	require.NotNil(t, box)
	assert.Equal(t, 90.0, box.Y0)
}

func TestParsePageStopsAtNextAnchorBelow(t *testing.T) {
	page := pageOf(1,
		placed{"Prepared by:", 40, 50},
		placed{"ARLENE DELA ROSA", 40, 80},
		placed{"Barangay Treasurer", 40, 94},
		placed{"Reviewed by:", 40, 200},
		placed{"JOSE REYES", 40, 230},
		placed{"Barangay Secretary", 40, 244},
	)

	sigs, warns := ParsePage(page, DefaultConfig())
	assert.Empty(t, warns)
	require.Len(t, sigs, 2)
	assert.Equal(t, constants.RolePreparedBy, sigs[0].Role)
	assert.Equal(t, "ARLENE DELA ROSA", sigs[0].Name)
	assert.Equal(t, constants.RoleReviewedBy, sigs[1].Role)
	assert.Equal(t, "JOSE REYES", sigs[1].Name)
}

func TestParsePageLabelOnly(t *testing.T) {
	page := pageOf(3, placed{"Prepared by:", 40, 50})

	sigs, warns := ParsePage(page, DefaultConfig())
	assert.Empty(t, sigs)
	require.Len(t, warns, 1)
	assert.Equal(t, constants.WarnSignatoryParseFailed, warns[0].Code)
	assert.Equal(t, constants.ReasonNameNotFound, warns[0].Details["reason"])
	assert.Equal(t, 3, warns[0].Page())
}

func TestParsePageWithoutWordsUsesText(t *testing.T) {
	page := entity.PageInput{
		PageNo: 2,
		Text:   "Prepared by:\nJUAN DELA CRUZ\nBarangay Treasurer\n",
	}
	sigs, warns := ParsePage(page, DefaultConfig())
	assert.Empty(t, warns)
	assert.Equal(t, []string{"JUAN DELA CRUZ"}, names(sigs))
}

func TestParsePageNoLabels(t *testing.T) {
	page := pageOf(1, placed{"ANNUAL INVESTMENT PROGRAM", 40, 50})
	sigs, warns := ParsePage(page, DefaultConfig())
	assert.Empty(t, sigs)
	assert.Empty(t, warns)
}

func TestSelectPages(t *testing.T) {
	assert.Nil(t, SelectPages(nil))
	assert.Equal(t, []int{1}, SelectPages([]string{"only"}))
	assert.Equal(t, []int{1, 3, 5}, SelectPages([]string{"cover", "a", "Approved by:", "b", "end"}))
}

func TestResolveMergesDuplicateSignatories(t *testing.T) {
	text := "Prepared by:\nJUAN DELA CRUZ\nBarangay Treasurer"
	pages := []entity.PageInput{
		{PageNo: 1, Text: text},
		{PageNo: 2, Text: "annex"},
		{PageNo: 3, Text: text},
	}
	sigs, warns := Resolve(pages, DefaultConfig())
	assert.Empty(t, warns)
	require.Len(t, sigs, 1)
	require.Len(t, sigs[0].SourceRefs, 2)
	assert.Equal(t, 1, sigs[0].SourceRefs[0].Page)
	assert.Equal(t, 3, sigs[0].SourceRefs[1].Page)
}

func TestDetectAnchors(t *testing.T) {
	type anchor struct {
		role  constants.SignatoryRole
		label string
		x0    float64
	}
	tests := []struct {
		name string
		line string
		want []anchor
	}{
		{
			name: "split label",
			line: "Prepared by:",
			want: []anchor{{constants.RolePreparedBy, "Prepared by:", 40}},
		},
		{
			name: "joined label",
			line: "PreparedBy:",
			want: []anchor{{constants.RolePreparedBy, "PreparedBy:", 40}},
		},
		{
			name: "label without colon",
			line: "Approved By",
			want: []anchor{{constants.RoleApprovedBy, "Approved By", 40}},
		},
		{
			name: "same row left is prepared right is approved",
			line: "Approved by: Prepared by:",
			want: []anchor{
				{constants.RolePreparedBy, "Approved by:", 40},
				{constants.RoleApprovedBy, "Prepared by:", 103},
			},
		},
		{
			name: "reviewer between keeps its role",
			line: "Approved by: Reviewed by: Prepared by:",
			want: []anchor{
				{constants.RolePreparedBy, "Approved by:", 40},
				{constants.RoleReviewedBy, "Reviewed by:", 103},
				{constants.RoleApprovedBy, "Prepared by:", 166},
			},
		},
		{
			name: "no label",
			line: "ANNUAL INVESTMENT PROGRAM",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found := DetectAnchors([]entity.PositionedLine{lineOf(tt.line, 40, 50, 1)})
			var got []anchor
			for _, a := range found {
				assert.Equal(t, 1, a.Page)
				got = append(got, anchor{a.Role, a.Label, a.BBox.X0})
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestColumnForAnchorSplitsSharedRow(t *testing.T) {
	cfg := DefaultConfig()
	anchors := []entity.SignatoryAnchor{
		{Role: constants.RolePreparedBy, BBox: entity.BBox{X0: 80, Y0: 50, X1: 120, Y1: 60}},
		{Role: constants.RoleApprovedBy, BBox: entity.BBox{X0: 280, Y0: 56, X1: 320, Y1: 66}},
		{Role: constants.RoleReviewedBy, BBox: entity.BBox{X0: 80, Y0: 200, X1: 120, Y1: 210}},
	}
	global := entity.ColumnBand{XMin: 0, XMax: 612, Center: 200}

	left := columnForAnchor(0, anchors, global, 612, cfg)
	assert.Equal(t, entity.ColumnBand{XMin: 0, XMax: 200, Center: 100}, left)

	right := columnForAnchor(1, anchors, global, 612, cfg)
	assert.Equal(t, entity.ColumnBand{XMin: 200, XMax: 612, Center: 300}, right)

	assert.Equal(t, global, columnForAnchor(2, anchors, global, 612, cfg))
}

func TestParsePageSeveralPairsUnderOneLabel(t *testing.T) {
	page := pageOf(1,
		placed{"Prepared by:", 40, 50},
		placed{"ARLENE DELA ROSA", 40, 80},
		placed{"Barangay Treasurer", 40, 94},
		placed{"JOSE REYES", 40, 130},
		placed{"Barangay Secretary", 40, 144},
	)

	sigs, warns := ParsePage(page, DefaultConfig())
	assert.Empty(t, warns)
	require.Len(t, sigs, 2)
	for _, s := range sigs {
		assert.Equal(t, constants.RolePreparedBy, s.Role)
	}
	assert.Equal(t, []string{"ARLENE DELA ROSA", "JOSE REYES"}, names(sigs))
	assert.Equal(t, "Barangay Treasurer", sigs[0].Position)
	assert.Equal(t, "Barangay Secretary", sigs[1].Position)
}

func TestParsePageWarnsOncePerEmptyAnchor(t *testing.T) {
	t.Run("positioned", func(t *testing.T) {
		page := pageOf(2,
			placed{"Prepared by:", 40, 50},
			placed{"Prepared by:", 40, 400},
		)
		sigs, warns := ParsePage(page, DefaultConfig())
		assert.Empty(t, sigs)
		require.Len(t, warns, 2)
		for _, w := range warns {
			assert.Equal(t, constants.WarnSignatoryParseFailed, w.Code)
			assert.Equal(t, constants.ReasonNameNotFound, w.Details["reason"])
			require.NotNil(t, w.SourceRefs[0].BBox)
		}
		assert.Equal(t, 50.0, warns[0].SourceRefs[0].BBox.Y0)
		assert.Equal(t, 400.0, warns[1].SourceRefs[0].BBox.Y0)
	})

	t.Run("text only", func(t *testing.T) {
		page := entity.PageInput{PageNo: 2, Text: "Prepared by:\n\nPrepared by:\n"}
		sigs, warns := ParsePage(page, DefaultConfig())
		assert.Empty(t, sigs)
		require.Len(t, warns, 2)
		for _, w := range warns {
			assert.Equal(t, constants.ReasonTextLayerMissing, w.Details["reason"])
		}
	})
}
