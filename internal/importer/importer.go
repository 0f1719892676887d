// Package importer provides CSV and Excel import functionality for part
// and material lists. It supports automatic delimiter detection, flexible
// column mapping, and case-insensitive header recognition.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/piwi3910/ProfileCut/internal/model"
	"github.com/xuri/excelize/v2"
)

// ImportResult holds the results of an import operation.
type ImportResult struct {
	Parts     []model.Part
	Materials []model.Material
	Errors    []string
	Warnings  []string
}

// ColumnMapping maps semantic column roles to their indices in the data.
type ColumnMapping struct {
	Label       int
	Length      int
	Thickness   int
	Quantity    int
	TopLeft     int
	TopRight    int
	BottomLeft  int
	BottomRight int
}

// headerAliases maps canonical column names to their accepted aliases (all
// lowercase).
var headerAliases = map[string][]string{
	"label":       {"label", "name", "part", "part name", "description", "desc", "piece", "item", "profile"},
	"length":      {"length", "len", "l", "size"},
	"thickness":   {"thickness", "thick", "t", "depth", "profile thickness"},
	"quantity":    {"quantity", "qty", "count", "num", "amount", "pcs", "pieces"},
	"topleft":     {"topleft", "top left", "tl", "angle tl", "left top"},
	"topright":    {"topright", "top right", "tr", "angle tr", "right top"},
	"bottomleft":  {"bottomleft", "bottom left", "bl", "angle bl", "left bottom"},
	"bottomright": {"bottomright", "bottom right", "br", "angle br", "right bottom"},
}

// DetectCSVDelimiter reads the file content and determines the most likely
// CSV delimiter. It tries comma, semicolon, tab, and pipe. The delimiter
// that produces the most consistent column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// DetectColumns examines a header row and returns a ColumnMapping. It
// performs case-insensitive matching against known aliases for each column
// role. Returns the mapping and true if a header was detected, or a
// default positional mapping and false if no header was found.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{
		Label: -1, Length: -1, Thickness: -1, Quantity: -1,
		TopLeft: -1, TopRight: -1, BottomLeft: -1, BottomRight: -1,
	}

	set := func(role string, idx int) {
		switch role {
		case "label":
			if mapping.Label == -1 {
				mapping.Label = idx
			}
		case "length":
			if mapping.Length == -1 {
				mapping.Length = idx
			}
		case "thickness":
			if mapping.Thickness == -1 {
				mapping.Thickness = idx
			}
		case "quantity":
			if mapping.Quantity == -1 {
				mapping.Quantity = idx
			}
		case "topleft":
			if mapping.TopLeft == -1 {
				mapping.TopLeft = idx
			}
		case "topright":
			if mapping.TopRight == -1 {
				mapping.TopRight = idx
			}
		case "bottomleft":
			if mapping.BottomLeft == -1 {
				mapping.BottomLeft = idx
			}
		case "bottomright":
			if mapping.BottomRight == -1 {
				mapping.BottomRight = idx
			}
		}
	}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized == alias {
					isHeader = true
					set(role, i)
				}
			}
		}
	}

	if !isHeader {
		// Fall back to positional mapping: Label, Length, Thickness,
		// Quantity, then the four corner angles.
		return ColumnMapping{
			Label: 0, Length: 1, Thickness: 2, Quantity: 3,
			TopLeft: 4, TopRight: 5, BottomLeft: 6, BottomRight: 7,
		}, false
	}

	return mapping, true
}

// getCell safely retrieves a cell value from a row by column index.
// Returns empty string if the index is out of range or negative.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseAngle parses an optional angle cell. Empty cells mean square cut.
func parseAngle(row []string, idx int, rowLabel, name string) (float64, string) {
	s := getCell(row, idx)
	if s == "" {
		return 0, ""
	}
	angle, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Sprintf("%s: Invalid %s angle '%s'", rowLabel, name, s)
	}
	if angle < 0 || angle >= 90 {
		return 0, fmt.Sprintf("%s: %s angle %g out of range [0, 90)", rowLabel, name, angle)
	}
	return angle, ""
}

// parseRow extracts a Part from a row using the given column mapping.
// Returns the part, any error message, and any warning message.
func parseRow(row []string, mapping ColumnMapping, rowLabel string, partCount int) (model.Part, string, string) {
	label := getCell(row, mapping.Label)
	if label == "" {
		label = fmt.Sprintf("Part %d", partCount+1)
	}

	lengthStr := getCell(row, mapping.Length)
	if lengthStr == "" {
		return model.Part{}, fmt.Sprintf("%s: Missing length value", rowLabel), ""
	}
	length, err := strconv.Atoi(lengthStr)
	if err != nil {
		return model.Part{}, fmt.Sprintf("%s: Invalid length '%s'", rowLabel, lengthStr), ""
	}

	thicknessStr := getCell(row, mapping.Thickness)
	if thicknessStr == "" {
		return model.Part{}, fmt.Sprintf("%s: Missing thickness value", rowLabel), ""
	}
	thickness, err := strconv.Atoi(thicknessStr)
	if err != nil {
		return model.Part{}, fmt.Sprintf("%s: Invalid thickness '%s'", rowLabel, thicknessStr), ""
	}

	qtyStr := getCell(row, mapping.Quantity)
	if qtyStr == "" {
		return model.Part{}, fmt.Sprintf("%s: Missing quantity value", rowLabel), ""
	}
	qty, err := strconv.Atoi(qtyStr)
	if err != nil {
		return model.Part{}, fmt.Sprintf("%s: Invalid quantity '%s'", rowLabel, qtyStr), ""
	}

	if length <= 0 || thickness <= 0 || qty <= 0 {
		return model.Part{}, fmt.Sprintf("%s: Length, thickness, and quantity must be positive", rowLabel), ""
	}

	var angles model.AngleSet
	for _, corner := range []struct {
		idx  int
		name string
		dst  *float64
	}{
		{mapping.TopLeft, "top-left", &angles.TopLeft},
		{mapping.TopRight, "top-right", &angles.TopRight},
		{mapping.BottomLeft, "bottom-left", &angles.BottomLeft},
		{mapping.BottomRight, "bottom-right", &angles.BottomRight},
	} {
		angle, errMsg := parseAngle(row, corner.idx, rowLabel, corner.name)
		if errMsg != "" {
			return model.Part{}, errMsg, ""
		}
		*corner.dst = angle
	}

	// On each side only one of top/bottom may carry a bevel.
	var warning string
	if model.IsBevel(angles.TopLeft) && model.IsBevel(angles.BottomLeft) {
		warning = fmt.Sprintf("%s: Both top-left and bottom-left are beveled; keeping top-left", rowLabel)
		angles.BottomLeft = 0
	}
	if model.IsBevel(angles.TopRight) && model.IsBevel(angles.BottomRight) {
		warning = fmt.Sprintf("%s: Both top-right and bottom-right are beveled; keeping top-right", rowLabel)
		angles.BottomRight = 0
	}

	return model.NewPart(label, length, thickness, qty, angles), "", warning
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportCSV imports parts from a CSV file. It automatically detects the
// delimiter and maps columns by header names. Supports comma, semicolon,
// tab, and pipe delimiters.
func ImportCSV(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}

	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		result.Warnings = append(result.Warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, "Line", result.Warnings)
}

// ImportCSVFromReader imports parts from a CSV reader with a specific
// delimiter. This is useful for testing or when the delimiter is already
// known.
func ImportCSVFromReader(reader io.Reader, delimiter rune) ImportResult {
	result := ImportResult{}

	csvReader := csv.NewReader(reader)
	csvReader.Comma = delimiter
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, "Line", nil)
}

// ImportExcel imports parts from an Excel (.xlsx) file. Reads the first
// sheet and auto-detects column mapping from headers.
func ImportExcel(path string) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "Sheet is empty")
		return result
	}

	return importFromRows(rows, "Row", nil)
}

// importFromRows is the shared import logic for both CSV and Excel data.
// It detects headers, maps columns, and parses each row into parts.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string) ImportResult {
	result := ImportResult{
		Warnings: initialWarnings,
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		missing := []string{}
		if mapping.Length == -1 {
			missing = append(missing, "Length")
		}
		if mapping.Thickness == -1 {
			missing = append(missing, "Thickness")
		}
		if mapping.Quantity == -1 {
			missing = append(missing, "Quantity")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	} else {
		// No header: check if the length column (the second column) is
		// numeric; an unrecognized header row still gets skipped.
		if len(rows[0]) >= 3 {
			if _, err := strconv.Atoi(strings.TrimSpace(rows[0][1])); err != nil {
				startRow = 1
				result.Warnings = append(result.Warnings, "Detected header row, skipping")
			}
		}
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		lineNum := i + 1

		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, lineNum)
		part, errMsg, warning := parseRow(row, mapping, rowLabel, len(result.Parts))

		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}

		result.Parts = append(result.Parts, part)
	}

	return result
}
