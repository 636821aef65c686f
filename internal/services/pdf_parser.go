package services

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Extraction failures the handler tells apart: a file that is not readable as
// PDF versus a readable one without extractable text (image-only scans).
var (
	ErrPDFUnreadable = errors.New("pdf unreadable")
	ErrPDFNoText     = errors.New("pdf has no extractable text")
)

type PDFParserService interface {
	ExtractText(filePath string) (string, error)
	ExtractTextWithMetaData(filePath string) (*PDFContent, error)
}

// PDFContent is everything the analyzer wants from an uploaded CV.
type PDFContent struct {
	Text      string
	PageCount int
	Tables    [][]string
	URLs      []string
	Metadata  map[string]string
	FilePath  string
}

var urlPattern = regexp.MustCompile(`https?://[^\s<>"')\]]+`)

type pdfParserService struct{}

func NewPDFParserService() PDFParserService {
	return &pdfParserService{}
}

func (p *pdfParserService) ExtractText(filePath string) (string, error) {
	content, err := p.ExtractTextWithMetaData(filePath)
	if err != nil {
		return "", err
	}
	return content.Text, nil
}

func (p *pdfParserService) ExtractTextWithMetaData(filePath string) (content *PDFContent, err error) {
	// The decoder panics on some malformed documents instead of returning an
	// error; treat those files as unreadable.
	defer func() {
		if r := recover(); r != nil {
			content, err = nil, fmt.Errorf("%w: %v", ErrPDFUnreadable, r)
		}
	}()

	if _, err := os.Stat(filePath); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFUnreadable, err)
	}

	f, r, err := pdf.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFUnreadable, err)
	}
	defer f.Close()

	var textBuilder strings.Builder
	var tables [][]string
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Broken page, keep going with the rest.
			continue
		}
		textBuilder.WriteString(text)
		textBuilder.WriteString("\n\n")

		tables = append(tables, extractRows(page)...)
	}

	text := textBuilder.String()
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: %s", ErrPDFNoText, filePath)
	}

	return &PDFContent{
		Text:      text,
		PageCount: totalPage,
		Tables:    tables,
		URLs:      extractURLs(text),
		Metadata:  readInfoDict(r),
		FilePath:  filePath,
	}, nil
}

// extractRows keeps rows with more than one cell; single-cell rows are just
// running text, not table content.
func extractRows(page pdf.Page) [][]string {
	rows, err := page.GetTextByRow()
	if err != nil {
		return nil
	}

	var out [][]string
	for _, row := range rows {
		cells := make([]string, 0, len(row.Content))
		for _, word := range row.Content {
			s := strings.TrimSpace(word.S)
			if s != "" {
				cells = append(cells, s)
			}
		}
		if len(cells) > 1 {
			out = append(out, cells)
		}
	}
	return out
}

// extractURLs pulls http(s) links out of the text, deduplicated in
// first-seen order. LinkedIn and GitHub URLs are the usual payload.
func extractURLs(text string) []string {
	matches := urlPattern.FindAllString(text, -1)
	seen := make(map[string]bool, len(matches))
	urls := make([]string, 0, len(matches))
	for _, m := range matches {
		m = strings.TrimRight(m, ".,;")
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		urls = append(urls, m)
	}
	return urls
}

// readInfoDict collects the string entries of the PDF Info dictionary.
// The decoder panics on malformed dictionaries; those yield no metadata.
func readInfoDict(r *pdf.Reader) (meta map[string]string) {
	meta = map[string]string{}
	defer func() {
		_ = recover()
	}()

	info := r.Trailer().Key("Info")
	if info.IsNull() {
		return meta
	}
	for _, key := range info.Keys() {
		val := info.Key(key)
		if val.Kind() == pdf.String {
			meta[key] = val.Text()
		}
	}
	return meta
}
