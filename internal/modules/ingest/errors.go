package ingest

import "errors"

var (
	// ErrInvalidType means the declared MIME type of a part is not in the
	// allow-list. The part's stream is never opened for writing.
	ErrInvalidType = errors.New("file type is not allowed")
	// ErrFileTooLarge means the streamed byte count crossed the event's
	// ceiling. Partially written bytes are deleted before this is returned.
	ErrFileTooLarge = errors.New("file exceeds the event size limit")
	// ErrStream covers transport failures while reading the multipart body
	// or writing the destination, client disconnects included.
	ErrStream = errors.New("upload streaming failed")
)
