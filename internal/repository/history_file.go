package repository

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"github.com/xuri/excelize/v2"

	"UniPredict/internal/domain/models"
	domrepo "UniPredict/internal/domain/repository"
)

// ErrUnsupportedFormat is returned for history files that are not csv, xlsx or json.
var ErrUnsupportedFormat = errors.New("unsupported history file format")

// historySchema accepts an array of flat objects.
const historySchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "additionalProperties": {"type": ["string", "number", "integer", "null"]}
  }
}`

var historySchemaLoader = gojsonschema.NewStringLoader(historySchema)

// FileSource reads a history table from disk on every Load, so edits to the
// file are picked up without a restart.
type FileSource struct {
	path  string
	sheet string
	cols  models.Columns
}

var _ domrepo.HistorySource = (*FileSource)(nil)

// NewFileSource reads path. sheet selects an xlsx sheet; empty means the first.
func NewFileSource(path, sheet string, cols models.Columns) *FileSource {
	return &FileSource{path: path, sheet: sheet, cols: cols}
}

func (s *FileSource) Load(ctx context.Context) ([]models.HistoricalRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		rows []models.Row
		err  error
	)
	switch strings.ToLower(filepath.Ext(s.path)) {
	case ".csv":
		rows, err = readCSV(s.path)
	case ".xlsx", ".xlsm":
		rows, err = readXLSX(s.path, s.sheet)
	case ".json":
		rows, err = readJSON(s.path)
	default:
		return nil, fmt.Errorf("%s: %w", s.path, ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, err
	}
	return models.Project(rows, s.cols), nil
}

func readCSV(path string) ([]models.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open history csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read history csv header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	var rows []models.Row
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read history csv: %w", err)
		}
		rows = append(rows, zipRow(header, rec))
	}
	return rows, nil
}

func readXLSX(path, sheet string) ([]models.Row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open history workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, nil
		}
		sheet = sheets[0]
	}
	grid, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(grid) == 0 {
		return nil, nil
	}

	header := grid[0]
	rows := make([]models.Row, 0, len(grid)-1)
	for _, rec := range grid[1:] {
		rows = append(rows, zipRow(header, rec))
	}
	return rows, nil
}

func readJSON(path string) ([]models.Row, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read history json: %w", err)
	}

	res, err := gojsonschema.Validate(historySchemaLoader, gojsonschema.NewBytesLoader(b))
	if err != nil {
		return nil, fmt.Errorf("validate history json: %w", err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("history json %s is invalid: %s", path, strings.Join(msgs, "; "))
	}

	var objs []map[string]interface{}
	if err := json.Unmarshal(b, &objs); err != nil {
		return nil, fmt.Errorf("decode history json: %w", err)
	}
	rows := make([]models.Row, 0, len(objs))
	for _, o := range objs {
		rows = append(rows, RowFromValues(o))
	}
	return rows, nil
}

// zipRow maps header names to cells. Short records leave trailing columns
// absent; blank header cells are dropped.
func zipRow(header, rec []string) models.Row {
	row := make(models.Row, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" || i >= len(rec) {
			continue
		}
		row[name] = strings.TrimSpace(rec[i])
	}
	return row
}

// RowFromValues converts decoded YAML or JSON values to a Row. Nil values are
// absent cells; numbers are formatted without trailing zeros.
func RowFromValues(values map[string]interface{}) models.Row {
	row := make(models.Row, len(values))
	for k, v := range values {
		switch val := v.(type) {
		case nil:
			continue
		case string:
			row[k] = val
		case float64:
			row[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case float32:
			row[k] = strconv.FormatFloat(float64(val), 'f', -1, 32)
		case int:
			row[k] = strconv.Itoa(val)
		case int64:
			row[k] = strconv.FormatInt(val, 10)
		case bool:
			row[k] = strconv.FormatBool(val)
		default:
			row[k] = fmt.Sprint(val)
		}
	}
	return row
}
