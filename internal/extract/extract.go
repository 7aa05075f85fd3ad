// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract turns uploaded document references into plain text.
// Office formats are parsed in-process; legacy and binary formats go through
// external converter tools; archives are unpacked and their inner documents
// extracted individually.
package extract

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdiddy/tender-digest/pkg/types"
)

// maxArchiveDocuments caps how many inner documents of one archive are read.
const maxArchiveDocuments = 30

// Downloader fetches a document's bytes by its transport file ID.
type Downloader interface {
	Download(ctx context.Context, fileID, dest string) error
}

// Service downloads and extracts documents.
type Service struct {
	files Downloader
	tools *Tools
}

// NewService creates a Service using the given downloader and converter tools.
func NewService(files Downloader, tools *Tools) *Service {
	return &Service{files: files, tools: tools}
}

// Extract downloads ref and returns its extracted text. A plain document
// yields one ExtractedDocument labelled with the file name; an archive yields
// one per readable inner document, labelled "<archive> / <inner path>".
// Failures are reported as *Error carrying the document name and reason.
func (s *Service) Extract(ctx context.Context, ref types.DocumentRef) ([]types.ExtractedDocument, error) {
	if !IsSupported(ref.Extension) {
		return nil, &Error{Name: ref.Name, Err: fmt.Errorf("%w: %s", ErrUnsupported, ref.Extension)}
	}

	tmp, err := os.CreateTemp("", "tender-digest-*"+ref.Extension)
	if err != nil {
		return nil, &Error{Name: ref.Name, Err: fmt.Errorf("creating temp file: %w", err)}
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := s.files.Download(ctx, ref.ID, tmpPath); err != nil {
		return nil, &Error{Name: ref.Name, Err: fmt.Errorf("downloading: %w", err)}
	}

	if IsArchive(ref.Extension) {
		return s.extractArchive(tmpPath, ref.Name)
	}

	text, err := s.extractFile(tmpPath, ref.Extension)
	if err != nil {
		return nil, &Error{Name: ref.Name, Err: err}
	}
	if strings.TrimSpace(text) == "" {
		return nil, &Error{Name: ref.Name, Err: ErrEmptyText}
	}
	return []types.ExtractedDocument{{Label: ref.Name, Text: text}}, nil
}

// extractFile dispatches a single document file to its format handler.
func (s *Service) extractFile(path, ext string) (string, error) {
	switch ext {
	case ".docx":
		return parseDocx(path)
	case ".xlsx":
		return parseXlsx(path)
	case ".doc":
		out, err := s.tools.convertOutput(legacyDocTools, path)
		if err != nil {
			return "", fmt.Errorf("converting .doc: %w", err)
		}
		return string(out), nil
	case ".pdf":
		out, err := s.tools.convertOutput(pdfTools, path)
		if err != nil {
			return "", fmt.Errorf("converting .pdf: %w", err)
		}
		return string(out), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupported, ext)
	}
}

// extractArchive unpacks the archive and extracts every supported inner
// document, up to maxArchiveDocuments. Inner failures are tolerated as long
// as at least one document yields text.
func (s *Service) extractArchive(path, name string) ([]types.ExtractedDocument, error) {
	dir, err := os.MkdirTemp("", "tender-digest-archive-")
	if err != nil {
		return nil, &Error{Name: name, Err: fmt.Errorf("creating unpack directory: %w", err)}
	}
	defer os.RemoveAll(dir)

	if err := s.tools.unpack(path, dir); err != nil {
		return nil, &Error{Name: name, Err: fmt.Errorf("unpacking: %w", err)}
	}

	var inner []string
	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if documentExtensions[strings.ToLower(filepath.Ext(p))] {
			inner = append(inner, p)
		}
		return nil
	})
	if err != nil {
		return nil, &Error{Name: name, Err: fmt.Errorf("walking archive contents: %w", err)}
	}
	if len(inner) == 0 {
		return nil, &Error{Name: name, Err: fmt.Errorf("archive contains no supported documents")}
	}
	sort.Strings(inner)
	if len(inner) > maxArchiveDocuments {
		inner = inner[:maxArchiveDocuments]
	}

	var parts []types.ExtractedDocument
	var failures []string
	for _, p := range inner {
		rel, relErr := filepath.Rel(dir, p)
		if relErr != nil {
			rel = filepath.Base(p)
		}
		rel = filepath.ToSlash(rel)

		text, err := s.extractFile(p, strings.ToLower(filepath.Ext(p)))
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", rel, err))
			continue
		}
		if strings.TrimSpace(text) == "" {
			failures = append(failures, fmt.Sprintf("%s: %v", rel, ErrEmptyText))
			continue
		}
		parts = append(parts, types.ExtractedDocument{Label: name + " / " + rel, Text: text})
	}

	if len(parts) == 0 {
		detail := "no readable documents"
		if len(failures) > 0 {
			detail = strings.Join(failures, "; ")
		}
		return nil, &Error{Name: name, Err: fmt.Errorf("archive documents could not be parsed: %s", detail)}
	}
	return parts, nil
}
