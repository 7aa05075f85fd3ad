// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// DocumentRef identifies one uploaded document within a submission.
type DocumentRef struct {
	// ID is the transport handle used to download the file.
	ID string `json:"id" yaml:"id"`

	// UniqueID is stable across re-sends of the same file and is used to
	// deduplicate repeats within one submission.
	UniqueID string `json:"unique_id" yaml:"unique_id"`

	// Name is the display file name as uploaded.
	Name string `json:"name" yaml:"name"`

	// Extension is the lowercased file extension including the dot,
	// possibly derived from the MIME type when the name carries none.
	Extension string `json:"extension" yaml:"extension"`
}

// ExtractedDocument is one unit of extracted text. A plain document yields
// one; an archive yields one per readable inner document.
type ExtractedDocument struct {
	// Label disambiguates multi-file and multi-entry results,
	// e.g. "bundle.rar / specs/terms.docx".
	Label string `json:"label" yaml:"label"`

	Text string `json:"text" yaml:"text"`
}
