// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"path/filepath"
	"strings"
)

// documentExtensions are single-document formats the service can read.
var documentExtensions = map[string]bool{
	".doc":  true,
	".docx": true,
	".xlsx": true,
	".pdf":  true,
}

// archiveExtensions are container formats whose inner documents are read.
var archiveExtensions = map[string]bool{
	".rar": true,
}

// mimeExtensions maps well-known MIME types to an extension, used when the
// uploaded file name carries none.
var mimeExtensions = map[string]string{
	"application/msword": ".doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",
	"application/pdf":              ".pdf",
	"application/vnd.ms-excel":     ".xlsx",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": ".xlsx",
	"application/vnd.rar":          ".rar",
	"application/x-rar-compressed": ".rar",
}

// DetectExtension returns the lowercased extension of fileName, falling back
// to the MIME type when the name has none. Unknown inputs yield "".
func DetectExtension(fileName, mimeType string) string {
	if ext := strings.ToLower(filepath.Ext(fileName)); ext != "" {
		return ext
	}
	return mimeExtensions[strings.ToLower(mimeType)]
}

// IsSupported reports whether the extension is handled, either as a document
// or as an archive.
func IsSupported(ext string) bool {
	return documentExtensions[ext] || archiveExtensions[ext]
}

// IsArchive reports whether the extension is a container format.
func IsArchive(ext string) bool {
	return archiveExtensions[ext]
}
