// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import "errors"

// ErrEmptyText means a document was read successfully but yielded no text,
// e.g. a scanned PDF without an OCR layer.
var ErrEmptyText = errors.New("document contains no extractable text")

// ErrUnsupported means the file's extension is not handled.
var ErrUnsupported = errors.New("unsupported file type")

// Error is a per-document extraction failure. Within a batch it is collected
// and reported as an addendum instead of aborting the remaining documents.
type Error struct {
	// Name is the display name of the failed document.
	Name string

	// Err is the underlying cause.
	Err error
}

func (e *Error) Error() string { return e.Name + ": " + e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// Reason is the human-readable cause shown in the failure addendum.
func (e *Error) Reason() string { return e.Err.Error() }
