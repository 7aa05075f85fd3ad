// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

const docxDocumentPath = "word/document.xml"

// parseDocx extracts paragraph and table text from a .docx file. Each
// paragraph becomes one line; table cells share their row's line separated
// by " | " because cell paragraphs carry no other row structure.
func parseDocx(path string) (string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("opening docx: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name == docxDocumentPath {
			rc, err := f.Open()
			if err != nil {
				return "", fmt.Errorf("opening %s: %w", docxDocumentPath, err)
			}
			defer rc.Close()
			return parseDocxXML(rc)
		}
	}
	return "", fmt.Errorf("no %s entry: not a Word document", docxDocumentPath)
}

// parseDocxXML walks the WordprocessingML token stream. Text lives in <w:t>
// elements; paragraphs (<w:p>) delimit lines; inside a table row (<w:tr>)
// cell boundaries (<w:tc>) turn into " | " separators.
func parseDocxXML(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)

	var blocks []string
	var line strings.Builder
	inText := false
	inRow := false
	cellStarted := false

	flushLine := func() {
		text := cleanLine(line.String())
		if text != "" {
			blocks = append(blocks, text)
		}
		line.Reset()
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decoding document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				line.WriteByte(' ')
			case "tr":
				inRow = true
				cellStarted = false
			case "tc":
				if cellStarted {
					line.WriteString(" | ")
				}
				cellStarted = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if !inRow {
					flushLine()
				} else {
					line.WriteByte(' ')
				}
			case "tr":
				inRow = false
				flushLine()
			case "br":
				line.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				line.Write(t)
			}
		}
	}
	flushLine()

	return strings.Join(blocks, "\n"), nil
}

// cleanLine collapses whitespace runs and non-breaking spaces inside a line.
func cleanLine(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	return strings.Join(strings.Fields(s), " ")
}
