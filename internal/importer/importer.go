package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"storefront-backend/internal/domain"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// CSVImporter reads catalog CSV exports and inserts/updates products.
type CSVImporter struct {
	reader      *csv.Reader
	productRepo ProductWriter
}

func NewCSVImporter(r io.Reader, repo ProductWriter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:      csvr,
		productRepo: repo,
	}
}

type csvRow struct {
	SKU       string
	Key       string
	Name      string
	Desc      string
	Cents     int64
	Currency  string
	Thumbnail string
	Rating    float64
	Category  string
	Deal      bool
}

// Run parses CSV rows and upserts one product per row.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	imported := 0
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}

		row := parseRow(record, index)
		if row == nil {
			continue
		}
		if err := i.save(ctx, row); err != nil {
			return imported, err
		}
		imported++
	}

	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, row *csvRow) error {
	if row.SKU == "" || row.Name == "" || row.Cents == 0 || row.Currency == "" {
		return fmt.Errorf("invalid product row (missing required fields) for sku %q", row.SKU)
	}

	key := row.Key
	if key == "" {
		key = strings.ReplaceAll(strings.ToLower(row.Name), " ", "-")
	}

	p := domain.Product{
		SKU:         row.SKU,
		Key:         key,
		Name:        row.Name,
		Description: row.Desc,
		PriceCents:  row.Cents,
		Currency:    row.Currency,
		Thumbnail:   row.Thumbnail,
		Rating:      row.Rating,
		Category:    row.Category,
		Deal:        row.Deal,
	}

	if _, err := i.productRepo.Upsert(ctx, p); err != nil {
		return fmt.Errorf("upsert product %q: %w", row.SKU, err)
	}
	return nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) *csvRow {
	sku := pick(record, index, "sku")
	name := pick(record, index, "name")
	if sku == "" && name == "" {
		return nil
	}

	var cents int64
	if centStr := pick(record, index, "price_cents"); centStr != "" {
		cents, _ = strconv.ParseInt(centStr, 10, 64)
	}
	var rating float64
	if ratingStr := pick(record, index, "rating"); ratingStr != "" {
		rating, _ = strconv.ParseFloat(ratingStr, 64)
	}
	deal := strings.EqualFold(pick(record, index, "deal"), "true")

	return &csvRow{
		SKU:       sku,
		Key:       pick(record, index, "key"),
		Name:      name,
		Desc:      pick(record, index, "description"),
		Cents:     cents,
		Currency:  pick(record, index, "currency"),
		Thumbnail: pick(record, index, "thumbnail"),
		Rating:    rating,
		Category:  pick(record, index, "category"),
		Deal:      deal,
	}
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
