package engine

import (
	"bytes"
	"fmt"
	"image/png"

	fitz "github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/rezonia/ledgercheck/internal/model"
)

// Recognized raster content types.
const (
	MIMEPNG  = "image/png"
	MIMEJPEG = "image/jpeg"
	MIMETIFF = "image/tiff"
	MIMEBMP  = "image/bmp"
	MIMEPDF  = "application/pdf"
)

// DetectMIME sniffs the content type from magic bytes
func DetectMIME(data []byte) string {
	if len(data) < 4 {
		return "application/octet-stream"
	}
	switch {
	case data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47:
		return MIMEPNG
	case data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF:
		return MIMEJPEG
	case (data[0] == 0x49 && data[1] == 0x49) || (data[0] == 0x4D && data[1] == 0x4D):
		return MIMETIFF
	case data[0] == 'B' && data[1] == 'M':
		return MIMEBMP
	case data[0] == '%' && data[1] == 'P' && data[2] == 'D' && data[3] == 'F':
		return MIMEPDF
	}
	return "application/octet-stream"
}

// Prepare normalizes a document into a raster the engines accept. PDFs are
// validated and their first page rendered to PNG; supported rasters pass
// through unchanged.
func Prepare(doc model.Document) (model.Document, error) {
	if doc.MIME == "" {
		doc.MIME = DetectMIME(doc.Data)
	}
	switch doc.MIME {
	case MIMEPNG, MIMEJPEG, MIMETIFF, MIMEBMP:
		return doc, nil
	case MIMEPDF:
		data, err := renderPDFPage(doc.Data)
		if err != nil {
			return doc, model.NewDocumentError(doc.ID, err)
		}
		doc.Data = data
		doc.MIME = MIMEPNG
		return doc, nil
	}
	return doc, model.NewDocumentError(doc.ID,
		fmt.Errorf("unsupported content type %s", doc.MIME))
}

// renderPDFPage rasterizes the first page of a PDF to PNG. Scanned receipts
// are almost always single page; multi-page statements still get their first
// page, which carries the totals block in practice.
func renderPDFPage(data []byte) ([]byte, error) {
	count, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		return nil, fmt.Errorf("invalid pdf: %w", err)
	}
	if count == 0 {
		return nil, fmt.Errorf("pdf has no pages")
	}

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}
	defer doc.Close()

	img, err := doc.Image(0)
	if err != nil {
		return nil, fmt.Errorf("rendering pdf page: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}
	return buf.Bytes(), nil
}
