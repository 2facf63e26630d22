// Package importer loads the recipe dataset CSV into the recipes table.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/pantrychef/backend/internal/model"
)

const (
	// DefaultBatchSize applies when New is given a non-positive batch size
	DefaultBatchSize = 500
	maxTitleRunes    = 255
)

var requiredColumns = []string{"title", "ingredients", "directions", "link", "source", "NER", "site"}

// ErrMissingColumn is returned when the CSV header lacks a required column
var ErrMissingColumn = errors.New("missing column")

// Result counts rows written and rows skipped
type Result struct {
	Imported int
	Failed   int
}

type Importer struct {
	db        *gorm.DB
	batchSize int
	logger    *zap.Logger
}

func New(db *gorm.DB, batchSize int, logger *zap.Logger) *Importer {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Importer{db: db, batchSize: batchSize, logger: logger}
}

// ImportFile opens path and imports it
func (i *Importer) ImportFile(ctx context.Context, path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return i.Import(ctx, f)
}

// Import reads recipes from r. Rows that fail to parse or insert are
// logged and counted in Result.Failed; only I/O and header errors abort.
func (i *Importer) Import(ctx context.Context, r io.Reader) (Result, error) {
	var res Result

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return res, fmt.Errorf("read header: %w", err)
	}
	columns, err := indexColumns(header)
	if err != nil {
		return res, err
	}

	batch := make([]model.Recipe, 0, i.batchSize)
	line := 1
	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				i.logger.Warn("skipping malformed row", zap.Int("line", line), zap.Error(err))
				res.Failed++
				continue
			}
			return res, fmt.Errorf("read row %d: %w", line, err)
		}

		recipe, err := parseRow(record, columns)
		if err != nil {
			i.logger.Warn("skipping row",
				zap.Int("line", line),
				zap.String("title", field(record, columns, "title")),
				zap.Error(err),
			)
			res.Failed++
			continue
		}

		batch = append(batch, recipe)
		if len(batch) == i.batchSize {
			i.flush(ctx, batch, &res)
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		i.flush(ctx, batch, &res)
	}

	i.logger.Info("import finished", zap.Int("imported", res.Imported), zap.Int("failed", res.Failed))
	return res, nil
}

// flush inserts batch in one statement, falling back to row-by-row
// inserts when the batch fails so only the offending rows are lost.
func (i *Importer) flush(ctx context.Context, batch []model.Recipe, res *Result) {
	err := i.db.WithContext(ctx).CreateInBatches(&batch, len(batch)).Error
	if err == nil {
		res.Imported += len(batch)
		return
	}
	i.logger.Warn("batch insert failed, retrying row by row", zap.Int("rows", len(batch)), zap.Error(err))

	for n := range batch {
		recipe := batch[n]
		if err := i.db.WithContext(ctx).Create(&recipe).Error; err != nil {
			i.logger.Warn("skipping row", zap.String("title", recipe.Title), zap.Error(err))
			res.Failed++
			continue
		}
		res.Imported++
	}
}

func indexColumns(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for n, name := range header {
		columns[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = n
	}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("%w %q", ErrMissingColumn, name)
		}
	}
	return columns, nil
}

func field(record []string, columns map[string]int, name string) string {
	n := columns[name]
	if n >= len(record) {
		return ""
	}
	return record[n]
}

func parseRow(record []string, columns map[string]int) (model.Recipe, error) {
	ingredients, err := ParseList(field(record, columns, "ingredients"))
	if err != nil {
		return model.Recipe{}, fmt.Errorf("ingredients: %w", err)
	}
	directions, err := ParseList(field(record, columns, "directions"))
	if err != nil {
		return model.Recipe{}, fmt.Errorf("directions: %w", err)
	}
	ner, err := ParseList(field(record, columns, "NER"))
	if err != nil {
		return model.Recipe{}, fmt.Errorf("NER: %w", err)
	}

	title := strings.TrimSpace(field(record, columns, "title"))
	if title == "" {
		return model.Recipe{}, errors.New("empty title")
	}

	return model.Recipe{
		Title:       truncateRunes(title, maxTitleRunes),
		Ingredients: ingredients,
		Directions:  directions,
		Link:        field(record, columns, "link"),
		Source:      field(record, columns, "source"),
		NER:         ner,
		Site:        field(record, columns, "site"),
	}, nil
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
