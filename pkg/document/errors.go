package document

import "errors"

var (
	// ErrInvalidLayout indicates the layout template is inconsistent.
	ErrInvalidLayout = errors.New("invalid layout")
	// ErrCorruptImage indicates a photo could not be decoded as its declared type.
	ErrCorruptImage = errors.New("corrupt image")
	// ErrRender indicates the PDF writer failed or produced an unexpected document.
	ErrRender = errors.New("render document")
)
