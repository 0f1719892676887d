package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectCSVDelimiter(t *testing.T) {
	tests := []struct {
		name string
		data string
		want rune
	}{
		{"comma", "a,b,c\n1,2,3\n", ','},
		{"semicolon", "a;b;c\n1;2;3\n", ';'},
		{"tab", "a\tb\tc\n1\t2\t3\n", '\t'},
		{"pipe", "a|b|c\n1|2|3\n", '|'},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectCSVDelimiter([]byte(tt.data)))
		})
	}
}

func TestDetectColumns_Header(t *testing.T) {
	mapping, hasHeader := DetectColumns([]string{"Name", "Length", "Thickness", "Qty", "TL", "TR", "BL", "BR"})

	require.True(t, hasHeader)
	assert.Equal(t, 0, mapping.Label)
	assert.Equal(t, 1, mapping.Length)
	assert.Equal(t, 2, mapping.Thickness)
	assert.Equal(t, 3, mapping.Quantity)
	assert.Equal(t, 4, mapping.TopLeft)
	assert.Equal(t, 5, mapping.TopRight)
	assert.Equal(t, 6, mapping.BottomLeft)
	assert.Equal(t, 7, mapping.BottomRight)
}

func TestDetectColumns_NoHeader(t *testing.T) {
	mapping, hasHeader := DetectColumns([]string{"Frame", "2000", "20", "4"})

	assert.False(t, hasHeader)
	assert.Equal(t, 0, mapping.Label)
	assert.Equal(t, 1, mapping.Length)
}

func TestImportCSV_WithHeaderAndAngles(t *testing.T) {
	csvData := `Name,Length,Thickness,Qty,TL,TR
Frame,2000,20,4,45,
Rail,1500,20,2,32,35
`
	result := ImportCSVFromReader(strings.NewReader(csvData), ',')

	require.Empty(t, result.Errors)
	require.Len(t, result.Parts, 2)

	frame := result.Parts[0]
	assert.Equal(t, "Frame", frame.Label)
	assert.Equal(t, 2000, frame.Length)
	assert.Equal(t, 20, frame.Thickness)
	assert.Equal(t, 4, frame.Quantity)
	assert.Equal(t, 45.0, frame.Angles.TopLeft)
	assert.Zero(t, frame.Angles.TopRight)

	rail := result.Parts[1]
	assert.Equal(t, 32.0, rail.Angles.TopLeft)
	assert.Equal(t, 35.0, rail.Angles.TopRight)
}

func TestImportCSV_RejectsRightAngle(t *testing.T) {
	csvData := `Name,Length,Thickness,Qty,TL
Bad,2000,20,1,90
`
	result := ImportCSVFromReader(strings.NewReader(csvData), ',')

	assert.Empty(t, result.Parts)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "out of range")
}

func TestImportCSV_DoubleBevelOneSide(t *testing.T) {
	csvData := `Name,Length,Thickness,Qty,TL,BL
Bad,2000,20,1,45,30
`
	result := ImportCSVFromReader(strings.NewReader(csvData), ',')

	require.Len(t, result.Parts, 1)
	assert.Equal(t, 45.0, result.Parts[0].Angles.TopLeft)
	assert.Zero(t, result.Parts[0].Angles.BottomLeft, "conflicting bevel dropped")
	assert.NotEmpty(t, result.Warnings)
}

func TestImportCSV_InvalidRows(t *testing.T) {
	csvData := `Name,Length,Thickness,Qty
Good,2000,20,1
NoLength,,20,1
BadQty,1000,20,zero
`
	result := ImportCSVFromReader(strings.NewReader(csvData), ',')

	assert.Len(t, result.Parts, 1)
	assert.Len(t, result.Errors, 2)
}

func TestImportCSV_PositionalMapping(t *testing.T) {
	csvData := "Leg,800,25,4,45\nBrace,600,25,8\n"
	result := ImportCSVFromReader(strings.NewReader(csvData), ',')

	require.Empty(t, result.Errors)
	require.Len(t, result.Parts, 2)
	assert.Equal(t, 45.0, result.Parts[0].Angles.TopLeft)
	assert.False(t, result.Parts[1].Angles.HasBevel())
}

func TestImportCSV_EmptyRowsSkipped(t *testing.T) {
	csvData := "Name,Length,Thickness,Qty\nA,1000,20,1\n,,,\nB,500,20,2\n"
	result := ImportCSVFromReader(strings.NewReader(csvData), ',')

	assert.Empty(t, result.Errors)
	assert.Len(t, result.Parts, 2)
}

func TestImportMaterials(t *testing.T) {
	rows := [][]string{
		{"Material", "Length", "Qty"},
		{"Bar 6m", "6000", "10"},
		{"Bar 12m", "12000", "0"},
	}
	result := importMaterialsFromRows(rows)

	require.Empty(t, result.Errors)
	require.Len(t, result.Materials, 2)
	assert.Equal(t, 6000, result.Materials[0].Length)
	assert.Equal(t, 10, result.Materials[0].Quantity)
	assert.True(t, result.Materials[1].Unlimited())
	assert.NotEmpty(t, result.Warnings, "unlimited supply is called out")
}

func TestImportMaterials_InvalidLength(t *testing.T) {
	rows := [][]string{
		{"Material", "Length", "Qty"},
		{"Bad", "-5", "1"},
	}
	result := importMaterialsFromRows(rows)

	assert.Empty(t, result.Materials)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Invalid length")
}
