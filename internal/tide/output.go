package tide

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

const (
	columnDates = "dates"
	columnTide  = "tide"
	sheetName   = "Sheet1"
)

// WriteCSV writes "dates,tide" rows with RFC 3339 UTC timestamps.
func (s *Series) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{columnDates, columnTide}); err != nil {
		return err
	}

	for i, t := range s.Times {
		row := []string{
			t.UTC().Format(time.RFC3339),
			strconv.FormatFloat(s.Heights[i], 'f', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteFile writes the series as CSV, or as a spreadsheet for .xlsx paths.
func (s *Series) WriteFile(path string) error {
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		err = s.writeXLSX(path)
	default:
		err = s.writeCSVFile(path)
	}
	if err != nil {
		return err
	}

	log.Info().Str("path", path).Int("samples", s.Len()).Msg("Tide series written")
	return nil
}

func (s *Series) writeCSVFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := s.WriteCSV(f); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}

	return f.Close()
}

func (s *Series) writeXLSX(path string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetRow(sheetName, "A1", &[]interface{}{columnDates, columnTide}); err != nil {
		return err
	}

	for i, t := range s.Times {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &[]interface{}{t.UTC().Format(time.RFC3339), s.Heights[i]}); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}

	return nil
}
