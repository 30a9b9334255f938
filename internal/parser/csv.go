package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docmark/internal/doctree"
)

// CSVParser handles CSV files. Each cell is a leaf; cells are separated by
// ", " leaves and rows by a blank line so every row reads as a paragraph.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*doctree.Page, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	page := &doctree.Page{
		Title:  strings.TrimSuffix(filename, ".csv"),
		Format: "csv",
	}

	for i, row := range records {
		if i > 0 {
			page.AddLeaf("\n\n")
		}
		for j, cell := range row {
			if j > 0 {
				page.AddLeaf(", ")
			}
			page.AddLeaf(cell)
		}
	}

	page.Article = articleFromLeaves(page.Leaves)
	page.Readable = true
	return page, nil
}
