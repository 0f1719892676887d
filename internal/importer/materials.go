package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/piwi3910/ProfileCut/internal/model"
)

// materialHeaderAliases maps material column roles to accepted aliases.
var materialHeaderAliases = map[string][]string{
	"label":    {"label", "name", "material", "stock", "profile"},
	"length":   {"length", "len", "l", "size"},
	"quantity": {"quantity", "qty", "count", "num", "amount", "pcs", "stock qty"},
}

// MaterialColumnMapping maps material column roles to indices.
type MaterialColumnMapping struct {
	Label    int
	Length   int
	Quantity int
}

// DetectMaterialColumns maps a header row to material columns, falling
// back to positional Label, Length, Quantity.
func DetectMaterialColumns(row []string) (MaterialColumnMapping, bool) {
	mapping := MaterialColumnMapping{Label: -1, Length: -1, Quantity: -1}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range materialHeaderAliases {
			for _, alias := range aliases {
				if normalized != alias {
					continue
				}
				isHeader = true
				switch role {
				case "label":
					if mapping.Label == -1 {
						mapping.Label = i
					}
				case "length":
					if mapping.Length == -1 {
						mapping.Length = i
					}
				case "quantity":
					if mapping.Quantity == -1 {
						mapping.Quantity = i
					}
				}
			}
		}
	}

	if !isHeader {
		return MaterialColumnMapping{Label: 0, Length: 1, Quantity: 2}, false
	}
	return mapping, true
}

// ImportMaterialsCSV imports a material catalog from a CSV file. A
// quantity of 0 marks unlimited supply.
func ImportMaterialsCSV(path string) ImportResult {
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

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = DetectCSVDelimiter(data)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}
	return importMaterialsFromRows(records)
}

func importMaterialsFromRows(rows [][]string) ImportResult {
	result := ImportResult{}
	if len(rows) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
		return result
	}

	mapping, hasHeader := DetectMaterialColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		if mapping.Length == -1 {
			result.Errors = append(result.Errors, "Required column not found in header: Length")
			return result
		}
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}
		rowLabel := fmt.Sprintf("Line %d", i+1)

		label := getCell(row, mapping.Label)
		if label == "" {
			label = fmt.Sprintf("Material %d", len(result.Materials)+1)
		}

		lengthStr := getCell(row, mapping.Length)
		length, err := strconv.Atoi(lengthStr)
		if err != nil || length <= 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: Invalid length '%s'", rowLabel, lengthStr))
			continue
		}

		qty := 0
		if qtyStr := getCell(row, mapping.Quantity); qtyStr != "" {
			qty, err = strconv.Atoi(qtyStr)
			if err != nil || qty < 0 {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: Invalid quantity '%s'", rowLabel, qtyStr))
				continue
			}
		}
		if qty == 0 {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: quantity 0 means unlimited supply", rowLabel))
		}

		result.Materials = append(result.Materials, model.NewMaterial(label, length, qty))
	}
	return result
}
