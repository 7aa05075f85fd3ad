// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"
)

const sharedStringsPath = "xl/sharedStrings.xml"

// parseXlsx extracts cell text from a .xlsx workbook. Every row becomes one
// line with cells joined by " | "; empty rows are dropped.
func parseXlsx(path string) (string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("opening xlsx: %w", err)
	}
	defer r.Close()

	var shared []string
	var sheets []*zip.File
	for _, f := range r.File {
		switch {
		case f.Name == sharedStringsPath:
			rc, err := f.Open()
			if err != nil {
				return "", fmt.Errorf("opening shared strings: %w", err)
			}
			shared, err = parseSharedStrings(rc)
			rc.Close()
			if err != nil {
				return "", err
			}
		case strings.HasPrefix(f.Name, "xl/worksheets/") && strings.HasSuffix(f.Name, ".xml"):
			sheets = append(sheets, f)
		}
	}
	if len(sheets) == 0 {
		return "", fmt.Errorf("no worksheets: not a spreadsheet")
	}
	sort.Slice(sheets, func(i, j int) bool { return sheets[i].Name < sheets[j].Name })

	var lines []string
	for _, sheet := range sheets {
		rc, err := sheet.Open()
		if err != nil {
			return "", fmt.Errorf("opening %s: %w", sheet.Name, err)
		}
		rows, err := parseSheet(rc, shared)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("parsing %s: %w", sheet.Name, err)
		}
		lines = append(lines, rows...)
	}

	return strings.Join(lines, "\n"), nil
}

// parseSharedStrings reads the shared-string table: one entry per <si>,
// concatenating its <t> runs.
func parseSharedStrings(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)

	var table []string
	var current strings.Builder
	inEntry := false
	inText := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decoding shared strings: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "si":
				inEntry = true
				current.Reset()
			case "t":
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "si":
				inEntry = false
				table = append(table, current.String())
			case "t":
				inText = false
			}
		case xml.CharData:
			if inEntry && inText {
				current.Write(t)
			}
		}
	}
	return table, nil
}

// parseSheet reads one worksheet's rows. Cells of type "s" index into the
// shared-string table; inline strings and plain values are taken as-is.
func parseSheet(r io.Reader, shared []string) ([]string, error) {
	dec := xml.NewDecoder(r)

	var rows []string
	var cells []string
	var value strings.Builder
	cellType := ""
	inValue := false

	flushCell := func() {
		v := value.String()
		if cellType == "s" {
			var idx int
			if _, err := fmt.Sscanf(v, "%d", &idx); err == nil && idx >= 0 && idx < len(shared) {
				v = shared[idx]
			}
		}
		v = cleanLine(v)
		if v != "" {
			cells = append(cells, v)
		}
		value.Reset()
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "row":
				cells = nil
			case "c":
				cellType = ""
				value.Reset()
				for _, attr := range t.Attr {
					if attr.Name.Local == "t" {
						cellType = attr.Value
					}
				}
			case "v", "t":
				inValue = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "row":
				if len(cells) > 0 {
					rows = append(rows, strings.Join(cells, " | "))
				}
			case "c":
				flushCell()
			case "v", "t":
				inValue = false
			}
		case xml.CharData:
			if inValue {
				value.Write(t)
			}
		}
	}
	return rows, nil
}
