package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sangkips/salespos-api/internal/domain/entity"
	"github.com/sangkips/salespos-api/pkg/apperror"
	"github.com/sangkips/salespos-api/pkg/money"
	"github.com/xuri/excelize/v2"
)

// CatalogSheetName is the worksheet written by ExportSpreadsheet
const CatalogSheetName = "Items"

// catalogSheetHeader is the first row of a catalog spreadsheet
var catalogSheetHeader = []string{"ID", "Name", "Aliases", "Cost Price", "Sell Price"}

// ExportSpreadsheet writes the catalog as an .xlsx workbook
func (s *CatalogService) ExportSpreadsheet(ctx context.Context) ([]byte, error) {
	items, err := s.catalogRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), CatalogSheetName); err != nil {
		return nil, err
	}
	header := make([]interface{}, len(catalogSheetHeader))
	for i, h := range catalogSheetHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(CatalogSheetName, "A1", &header); err != nil {
		return nil, err
	}

	for i, item := range items {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{item.ID, item.Name, item.Aliases, item.CostPrice.Float64(), item.SellPrice.Float64()}
		if err := f.SetSheetRow(CatalogSheetName, cell, &row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// ImportSpreadsheet reads items from the first worksheet of an .xlsx workbook.
// The first row is a header matched by name, so column order is free. Rows
// without a name are skipped.
func (s *CatalogService) ImportSpreadsheet(ctx context.Context, r io.Reader, replace bool) (int, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return 0, apperror.NewFieldError("file", "Not a readable .xlsx workbook")
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return 0, apperror.NewFieldError("file", "Cannot read the first worksheet")
	}
	if len(rows) == 0 {
		return 0, apperror.NewFieldError("file", "Worksheet is empty")
	}

	cols := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := cols["name"]; !ok {
		return 0, apperror.NewFieldError("file", "Header row needs a Name column")
	}
	cell := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	price := func(row []string, name string, line int) (money.Amount, error) {
		v := cell(row, name)
		if v == "" {
			return 0, nil
		}
		a, err := money.Parse(v)
		if err != nil {
			return 0, apperror.NewFieldError(fmt.Sprintf("row[%d].%s", line, strings.ReplaceAll(name, " ", "_")), "Invalid amount "+v)
		}
		return a, nil
	}

	items := make([]entity.CatalogItem, 0, len(rows)-1)
	for i, row := range rows[1:] {
		line := i + 2
		if cell(row, "name") == "" {
			continue
		}
		cost, err := price(row, "cost price", line)
		if err != nil {
			return 0, err
		}
		sell, err := price(row, "sell price", line)
		if err != nil {
			return 0, err
		}
		items = append(items, entity.CatalogItem{
			ID:        cell(row, "id"),
			Name:      cell(row, "name"),
			Aliases:   cell(row, "aliases"),
			CostPrice: cost,
			SellPrice: sell,
		})
	}
	return s.ImportItems(ctx, items, replace)
}
