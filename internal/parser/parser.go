package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/xuri/excelize/v2"

	"github.com/Johel506/intelligent-pdf-chatbot/internal/models"
)

// Parse extracts page-tagged text units from a document. Page numbers are
// 1-based where the format has pages (PDF) or page-like structure (XLSX
// sheets); DOCX has none, so its units carry page 0 and are cited as "N/A".
func Parse(filePath string) ([]models.PageUnit, error) {
	ext := strings.ToLower(filepath.Ext(filePath))
	switch ext {
	case ".pdf":
		return parsePDF(filePath)
	case ".docx":
		return parseDOCX(filePath)
	case ".xlsx":
		return parseXLSX(filePath)
	case ".txt", ".md":
		return parseText(filePath)
	default:
		return nil, fmt.Errorf("unsupported file format: %s", ext)
	}
}

func parsePDF(filePath string) ([]models.PageUnit, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}

	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return nil, err
	}

	source := filepath.Base(filePath)
	var units []models.PageUnit
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extracting page %d: %w", i, err)
		}
		if strings.TrimSpace(pageText) == "" {
			continue
		}
		units = append(units, models.PageUnit{
			Source: source,
			Number: i,
			Text:   pageText,
		})
	}
	return units, nil
}

func parseDOCX(filePath string) ([]models.PageUnit, error) {
	r, err := docx.ReadDocxFile(filePath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	content := r.Editable().GetContent()
	if strings.TrimSpace(content) == "" {
		return nil, nil
	}
	// DOCX has no page numbers
	return []models.PageUnit{{
		Source: filepath.Base(filePath),
		Number: 0,
		Text:   content,
	}}, nil
}

func parseXLSX(filePath string) ([]models.PageUnit, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	source := filepath.Base(filePath)
	var units []models.PageUnit
	for sheetNum, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			continue
		}
		var text strings.Builder
		text.WriteString(fmt.Sprintf("Sheet: %s\n", sheetName))
		for _, row := range rows {
			for _, cell := range row {
				text.WriteString(cell + "\t")
			}
			text.WriteString("\n")
		}
		if strings.TrimSpace(text.String()) == "" {
			continue
		}
		units = append(units, models.PageUnit{
			Source: source,
			Number: sheetNum + 1, // sheets stand in for pages, 1-based
			Text:   text.String(),
		})
	}
	return units, nil
}

func parseText(filePath string) ([]models.PageUnit, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, nil
	}
	return []models.PageUnit{{
		Source: filepath.Base(filePath),
		Number: 1,
		Text:   string(data),
	}}, nil
}
