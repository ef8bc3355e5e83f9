package services

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/stemtrack/cartline-backend/internal/pkg/logger"
	"github.com/stemtrack/cartline-backend/internal/types"
)

const (
	summarySheet = "Riepilogo Carrelli"
	detailSheet  = "Dettaglio Pacchi"
)

// ExportService serializes the completed carts into the workbook the sales
// office forwards to the auction sites: one summary row per cart, one
// detail row per package.
type ExportService interface {
	WriteWorkbook(ctx context.Context, w io.Writer) error
	Filename(now time.Time) string
}

type exportService struct {
	log   *logger.Logger
	carts CartService
}

func NewExportService(log *logger.Logger, carts CartService) ExportService {
	return &exportService{
		log:   log.With("service", "ExportService"),
		carts: carts,
	}
}

func (es *exportService) Filename(now time.Time) string {
	return fmt.Sprintf("carrelli_export_%s.xlsx", now.Format("2006-01-02"))
}

func (es *exportService) WriteWorkbook(ctx context.Context, w io.Writer) error {
	all, err := es.carts.GetAllCarts(ctx)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	var completed []*types.Cart
	for _, c := range all {
		if c.IsCompleted {
			completed = append(completed, c)
		}
	}
	sort.Slice(completed, func(i, j int) bool {
		return completed[i].CartNumber > completed[j].CartNumber
	})

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", summarySheet)
	if _, err := f.NewSheet(detailSheet); err != nil {
		return fmt.Errorf("export: create detail sheet: %w", err)
	}

	summaryHeader := []interface{}{"Carrello", "Destinazione", "Tag", "Bucket Type", "Totale Pacchi", "Data Completamento"}
	if err := writeRow(f, summarySheet, 1, summaryHeader); err != nil {
		return err
	}
	for i, cart := range completed {
		completedAt := ""
		if cart.CompletedAt != nil {
			completedAt = cart.CompletedAt.Format("02/01/2006")
		}
		row := []interface{}{
			cart.CartNumber,
			cart.Destination,
			cart.Tag,
			cart.BucketType,
			cart.TotalPackages,
			completedAt,
		}
		if err := writeRow(f, summarySheet, i+2, row); err != nil {
			return err
		}
	}

	detailHeader := []interface{}{"Carrello", "Destinazione", "Tag", "Bucket Type", "Varietà", "Lunghezza (cm)", "Quantità"}
	if err := writeRow(f, detailSheet, 1, detailHeader); err != nil {
		return err
	}
	rowNum := 2
	for _, cart := range completed {
		for _, pkg := range cart.Packages {
			row := []interface{}{
				cart.CartNumber,
				cart.Destination,
				cart.Tag,
				cart.BucketType,
				pkg.Variety,
				pkg.Length,
				pkg.Quantity,
			}
			if err := writeRow(f, detailSheet, rowNum, row); err != nil {
				return err
			}
			rowNum++
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("export: write workbook: %w", err)
	}

	es.log.Info("Workbook exported", "carts", len(completed), "package_rows", rowNum-2)
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("export: cell name: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("export: write row: %w", err)
	}
	return nil
}
