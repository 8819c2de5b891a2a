// Package pdf reads the text layer of PDF files.
package pdf

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/megafile/internal/core/domain"
	"github.com/custodia-labs/megafile/internal/core/ports/driven"
)

// Ensure Reader implements the interface.
var _ driven.TextLayerReader = (*Reader)(nil)

// wordGap is the horizontal gap, as a fraction of the font size, that
// separates two words drawn without an explicit space glyph.
const wordGap = 0.3

// Reader extracts text from PDF bytes.
type Reader struct{}

// NewReader creates a PDF text-layer reader.
func NewReader() *Reader {
	return &Reader{}
}

// PlainText returns the text of every page, in page order.
func (r *Reader) PlainText(data []byte) (text string, err error) {
	defer recoverMalformed(&err)

	doc, err := open(data)
	if err != nil {
		return "", err
	}

	plain, err := doc.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("reading text layer: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("reading text layer: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// Pages returns the positioned words of each page.
func (r *Reader) Pages(data []byte) (pages []domain.PageText, err error) {
	defer recoverMalformed(&err)

	doc, err := open(data)
	if err != nil {
		return nil, err
	}

	n := doc.NumPage()
	pages = make([]domain.PageText, 0, n)
	for i := 1; i <= n; i++ {
		page := doc.Page(i)
		if page.V.IsNull() {
			continue
		}
		pages = append(pages, domain.PageText{
			Number: i,
			Items:  groupWords(page.Content().Text),
		})
	}
	return pages, nil
}

func open(data []byte) (*pdf.Reader, error) {
	if !bytes.HasPrefix(bytes.TrimLeft(data, "\x00\t\r\n "), []byte("%PDF")) {
		return nil, domain.ErrNotPDF
	}
	doc, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNotPDF, err)
	}
	return doc, nil
}

// recoverMalformed turns parser panics on broken files into ErrNotPDF.
func recoverMalformed(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%w: malformed file: %v", domain.ErrNotPDF, r)
	}
}

// groupWords joins glyph runs into words. A word ends at whitespace, at a
// line change or when the next glyph starts past the previous one's end.
func groupWords(glyphs []pdf.Text) []domain.TextItem {
	var (
		items  []domain.TextItem
		word   strings.Builder
		box    domain.Box
		prev   pdf.Text
		inWord bool
	)

	flush := func() {
		if inWord && strings.TrimSpace(word.String()) != "" {
			items = append(items, domain.TextItem{Text: word.String(), Box: box})
		}
		word.Reset()
		inWord = false
	}

	for _, g := range glyphs {
		if isBlank(g.S) {
			flush()
			prev = g
			continue
		}

		if inWord && breaksWord(prev, g) {
			flush()
		}

		if !inWord {
			box = domain.Box{X: g.X, Y: g.Y, Width: g.W, Height: g.FontSize}
			inWord = true
		} else {
			right := math.Max(box.X+box.Width, g.X+g.W)
			box.X = math.Min(box.X, g.X)
			box.Width = right - box.X
			box.Height = math.Max(box.Height, g.FontSize)
		}
		word.WriteString(g.S)
		prev = g
	}
	flush()

	return items
}

func breaksWord(prev, next pdf.Text) bool {
	size := math.Max(prev.FontSize, next.FontSize)
	if size <= 0 {
		size = 1
	}
	if math.Abs(next.Y-prev.Y) > size/2 {
		return true
	}
	gap := next.X - (prev.X + prev.W)
	return gap > size*wordGap || gap < -size
}

func isBlank(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return !unicode.IsSpace(r) }) < 0
}
