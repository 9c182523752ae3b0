package tabfile

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "violens/internal/errors"
)

// RawTable is the untyped result of reading a tabular file: the header
// row plus each record as a header-keyed map of cell strings.
type RawTable struct {
	Headers []string
	Rows    []map[string]string
}

// DataReader reads CSV and XLSX files into a RawTable.
type DataReader struct {
	filePath string
	fileType string
}

// NewDataReader creates a reader, inferring the file type from the extension.
func NewDataReader(filePath string) *DataReader {
	fileType := "csv"
	if strings.EqualFold(filepath.Ext(filePath), ".xlsx") {
		fileType = "xlsx"
	}
	return &DataReader{filePath: filePath, fileType: fileType}
}

// ReadData reads the file from disk.
func (r *DataReader) ReadData() (*RawTable, error) {
	switch r.fileType {
	case "xlsx":
		f, err := excelize.OpenFile(r.filePath)
		if err != nil {
			return nil, apperrors.Wrapf(apperrors.WithCode(apperrors.CodeLoadError, err),
				"failed to open workbook %s", r.filePath)
		}
		defer f.Close()
		return readWorkbook(f)
	default:
		return readCSVPath(r.filePath)
	}
}

// ReadFrom reads an uploaded stream. The filename decides the format.
func ReadFrom(rd io.Reader, filename string) (*RawTable, error) {
	if strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		f, err := excelize.OpenReader(rd)
		if err != nil {
			return nil, apperrors.Wrapf(apperrors.WithCode(apperrors.CodeLoadError, err),
				"failed to read uploaded workbook %s", filename)
		}
		defer f.Close()
		return readWorkbook(f)
	}
	return readCSVStream(rd, filename)
}

func readCSVPath(path string) (*RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.WithCode(apperrors.CodeLoadError, err),
			"failed to open %s", path)
	}
	defer f.Close()
	return readCSVStream(f, path)
}

func readCSVStream(rd io.Reader, name string) (*RawTable, error) {
	reader := csv.NewReader(rd)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.WithCode(apperrors.CodeLoadError, err),
			"failed to parse CSV %s", name)
	}
	return recordsToTable(records, name)
}

func readWorkbook(f *excelize.File) (*RawTable, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.LoadError("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.WithCode(apperrors.CodeLoadError, err),
			"failed to read sheet %s", sheets[0])
	}
	return recordsToTable(rows, sheets[0])
}

func recordsToTable(records [][]string, name string) (*RawTable, error) {
	if len(records) == 0 {
		return nil, apperrors.LoadErrorf("%s is empty", name)
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.TrimSpace(h)
	}

	rows := make([]map[string]string, 0, len(records)-1)
	for _, record := range records[1:] {
		if isBlankRecord(record) {
			continue
		}
		row := make(map[string]string, len(headers))
		for i, header := range headers {
			if header == "" {
				continue
			}
			if i < len(record) {
				row[header] = strings.TrimSpace(record[i])
			} else {
				row[header] = ""
			}
		}
		rows = append(rows, row)
	}

	return &RawTable{Headers: headers, Rows: rows}, nil
}

func isBlankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
