package service

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tealeg/xlsx"
)

// ExportProducts writes the admin product list as an xlsx workbook
func (s *ProductService) ExportProducts(ctx context.Context, as Principal, w io.Writer) error {
	products, err := s.AdminProducts(ctx, as)
	if err != nil {
		return err
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	headers := []string{"ID", "Name", "Description", "Price", "Type", "Recommended", "Badge", "Image", "IngredientIDs"}
	headerRow := sheet.AddRow()
	for _, h := range headers {
		headerRow.AddCell().SetValue(h)
	}

	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetValue(p.ID)
		row.AddCell().SetValue(p.Name)
		row.AddCell().SetValue(p.Description)
		row.AddCell().SetString(p.Price.StringFixed(2))
		row.AddCell().SetValue(string(p.TypeProduct))
		row.AddCell().SetBool(p.IsRecommended)
		row.AddCell().SetValue(p.Badge)
		row.AddCell().SetValue(p.ImageURL)

		ids := make([]string, 0, len(p.Ingredients))
		for _, id := range p.Ingredients {
			ids = append(ids, strconv.FormatInt(id, 10))
		}
		row.AddCell().SetValue(strings.Join(ids, ","))
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
