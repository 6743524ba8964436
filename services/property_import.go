package services

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"terrasur_app_go/models"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ImportResult contains the summary of the import process
type ImportResult struct {
	TotalProcessed int
	SuccessCount   int
	FailedCount    int
	Errors         []string
}

// importHeaders is the column layout of the properties sheet, in order
var importHeaders = []string{
	"Título*",            // A
	"Tipo",               // B: PARCELA, URBANO, CASA, AGRICOLA, INDUSTRIAL
	"Operación",          // C: VENTA, ARRIENDO
	"Moneda*",            // D: UF, CLP
	"Precio Lista*",      // E
	"Superficie Total*",  // F: m²
	"Superficie Constr.", // G: m²
	"Comuna",             // H
	"Sector",             // I
	"Dirección",          // J
	"Rol",                // K
	"Descripción",        // L
}

const (
	importSheetInstructions = "Instrucciones"
	importSheetProperties   = "Propiedades"
)

// GenerateImportTemplate builds the Excel workbook the back office fills in
// for a bulk property load
func GenerateImportTemplate() (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", importSheetInstructions)

	f.SetCellValue(importSheetInstructions, "A1", "Carga masiva de propiedades")
	f.SetCellValue(importSheetInstructions, "A3", "Consideraciones:")
	f.SetCellValue(importSheetInstructions, "A4", "- Los campos marcados con * son obligatorios.")
	f.SetCellValue(importSheetInstructions, "A5", "- Moneda: UF o CLP. El precio se ingresa en la moneda indicada; el valor equivalente se calcula automáticamente.")
	f.SetCellValue(importSheetInstructions, "A6", "- Tipo: PARCELA, URBANO, CASA, AGRICOLA o INDUSTRIAL.")
	f.SetCellValue(importSheetInstructions, "A7", "- Operación: VENTA o ARRIENDO.")
	f.SetCellValue(importSheetInstructions, "A8", "- El número de ficha y la URL se asignan automáticamente al importar.")
	f.SetCellValue(importSheetInstructions, "A9", "- Las filas con errores se informan al final; el resto se importa igual.")

	titleStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	f.SetCellStyle(importSheetInstructions, "A1", "A1", titleStyle)
	f.SetColWidth(importSheetInstructions, "A", "A", 100)

	f.NewSheet(importSheetProperties)
	headerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	for i, header := range importHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to build header cell: %w", err)
		}
		f.SetCellValue(importSheetProperties, cell, header)
		f.SetCellStyle(importSheetProperties, cell, cell, headerStyle)
	}
	f.SetColWidth(importSheetProperties, "A", "L", 22)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write template: %w", err)
	}
	return buf, nil
}

// BulkImportFromExcel parses the workbook and runs every row through the
// property lifecycle. Row failures are collected, not fatal: a bad row never
// aborts the batch.
func BulkImportFromExcel(dbConn *gorm.DB, rates RateProvider, file io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel file: %w", err)
	}
	defer f.Close()

	sheetName := importSheetProperties
	if idx, _ := f.GetSheetIndex(sheetName); idx < 0 {
		// Accept single-sheet workbooks that skipped the instructions page
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("invalid excel format: no sheets")
		}
		sheetName = sheets[len(sheets)-1]
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read properties sheet: %w", err)
	}

	result := &ImportResult{
		Errors: []string{},
	}

	for i, row := range rows {
		if i == 0 {
			continue // Header
		}
		if len(row) == 0 || strings.TrimSpace(cell(row, 0)) == "" {
			continue // Empty row
		}

		result.TotalProcessed++

		property, err := propertyFromRow(row)
		if err != nil {
			result.FailedCount++
			result.Errors = append(result.Errors, fmt.Sprintf("Fila %d: %v", i+1, err))
			continue
		}

		if err := SaveProperty(dbConn, rates, property); err != nil {
			result.FailedCount++
			result.Errors = append(result.Errors, fmt.Sprintf("Fila %d: %v", i+1, err))
			continue
		}

		result.SuccessCount++
	}

	return result, nil
}

// propertyFromRow maps one spreadsheet row onto a new Property record
func propertyFromRow(row []string) (*models.Property, error) {
	property := &models.Property{
		Title:       strings.TrimSpace(cell(row, 0)),
		Type:        defaultIfBlank(strings.ToUpper(strings.TrimSpace(cell(row, 1))), models.PropertyTypeParcela),
		Operation:   defaultIfBlank(strings.ToUpper(strings.TrimSpace(cell(row, 2))), models.OperationSale),
		Currency:    strings.ToUpper(strings.TrimSpace(cell(row, 3))),
		Commune:     defaultIfBlank(strings.TrimSpace(cell(row, 7)), "Tomé"),
		Sector:      strings.TrimSpace(cell(row, 8)),
		Address:     strings.TrimSpace(cell(row, 9)),
		Rol:         strings.TrimSpace(cell(row, 10)),
		Description: strings.TrimSpace(cell(row, 11)),
		Status:      models.PropertyStatusAvailable,
	}

	price, err := parseNumberCell(cell(row, 4))
	if err != nil {
		return nil, fmt.Errorf("precio de lista inválido: %q", cell(row, 4))
	}
	property.ListPrice = price

	area, err := parseNumberCell(cell(row, 5))
	if err != nil || area < 0 {
		return nil, fmt.Errorf("superficie total inválida: %q", cell(row, 5))
	}
	property.TotalAreaM2 = uint(area)

	if built := strings.TrimSpace(cell(row, 6)); built != "" {
		builtArea, err := parseNumberCell(built)
		if err != nil || builtArea < 0 {
			return nil, fmt.Errorf("superficie construida inválida: %q", built)
		}
		b := uint(builtArea)
		property.BuiltAreaM2 = &b
	}

	return property, nil
}

// cell returns the trimmed-length-safe value of a column
func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return row[idx]
}

func defaultIfBlank(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// parseNumberCell accepts both "1500000" and Chilean-formatted "1.500.000,50"
// or "1.500.000". A single dot with no comma stays a decimal point.
func parseNumberCell(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if strings.Contains(value, ",") {
		value = strings.ReplaceAll(value, ".", "")
		value = strings.ReplaceAll(value, ",", ".")
	} else if strings.Count(value, ".") > 1 {
		value = strings.ReplaceAll(value, ".", "")
	}
	return strconv.ParseFloat(value, 64)
}
