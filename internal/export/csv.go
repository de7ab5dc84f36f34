package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/rezonia/ledgercheck/internal/model"
)

// BOM is the UTF-8 byte order mark, written ahead of CSV output opened in
// Excel on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row, one row per (document, engine) run.
var columns = []string{
	"Document ID",
	"Engine",
	"Success",
	"Status",
	"Items",
	"Items Sum",
	"Total",
	"Difference",
	"Within Tolerance",
	"Confidence",
	"Elapsed",
	"Error",
}

// Writer flattens batch results into CSV rows.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteSummary writes one row per engine run of every document
func (w *Writer) WriteSummary(summary model.BatchSummary) error {
	for i := range summary.Documents {
		if err := w.WriteDocument(&summary.Documents[i]); err != nil {
			return err
		}
	}
	return nil
}

// WriteDocument writes the rows for one document result
func (w *Writer) WriteDocument(dr *model.DocumentResult) error {
	if len(dr.EngineResults) == 0 {
		return w.csv.Write([]string{
			dr.DocumentID, "", "false", "", "", "", "", "", "", "", "", dr.ErrMessage,
		})
	}
	for i := range dr.EngineResults {
		if err := w.csv.Write(engineRow(dr, &dr.EngineResults[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer
func (w *Writer) Flush() error {
	w.csv.Flush()
	return w.csv.Error()
}

func engineRow(dr *model.DocumentResult, er *model.EngineResult) []string {
	row := []string{
		dr.DocumentID,
		er.EngineName,
		strconv.FormatBool(er.OK()),
		"", "", "", "", "", "",
		confidenceCell(er.Confidence),
		model.ISODuration(er.Elapsed),
		"",
	}
	if er.Err != nil {
		row[11] = er.Err.Error()
		return row
	}
	if v := er.Verification; v != nil {
		row[3] = string(v.Status)
		row[5] = v.ItemsSum.StringFixed(2)
		if v.Total != nil {
			row[6] = v.Total.StringFixed(2)
			row[7] = v.Difference.StringFixed(2)
		}
		row[8] = strconv.FormatBool(v.WithinTolerance)
	}
	if e := er.Extraction; e != nil {
		row[4] = strconv.Itoa(len(e.Items))
	}
	return row
}

func confidenceCell(c float64) string {
	if c < 0 {
		return ""
	}
	return strconv.FormatFloat(c, 'f', 2, 64)
}
