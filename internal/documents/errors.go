package documents

import "errors"

var (
	// ErrNotFound covers a document or signature that is absent or not
	// owned by the caller; ownership failures are indistinguishable from
	// absence on purpose.
	ErrNotFound = errors.New("document not found")

	// ErrSignatureNotFound is the signature-scoped variant of ErrNotFound.
	ErrSignatureNotFound = errors.New("signature not found")

	// ErrInvalidPage signals a page number outside [1, pageCount].
	ErrInvalidPage = errors.New("invalid page number")

	// ErrCannotDeleteFinalized guards the immutability of embedded
	// signatures.
	ErrCannotDeleteFinalized = errors.New("cannot delete finalized signature")

	// ErrNoSignaturesToFinalize signals a finalize call with nothing
	// pending.
	ErrNoSignaturesToFinalize = errors.New("no signatures found to finalize")

	// ErrInvalidMimeType signals an upload that is not a PDF.
	ErrInvalidMimeType = errors.New("only PDF files are allowed")

	// ErrFileMissing signals a document whose backing file is gone from
	// disk.
	ErrFileMissing = errors.New("file not found on server")
)
