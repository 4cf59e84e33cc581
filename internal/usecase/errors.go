package usecase

import "errors"

var (
	// ErrNotAudioNote is returned when a transcript targets a note that is not an audio note.
	ErrNotAudioNote = errors.New("note is not an audio note")

	// ErrUnsupportedMediaType is returned when an upload's content type does not
	// match the media folder it is stored in.
	ErrUnsupportedMediaType = errors.New("unsupported media type")

	// ErrEmptyUpload is returned when an upload has no file name.
	ErrEmptyUpload = errors.New("no file provided")

	// ErrAsyncUnavailable is returned when background processing is requested
	// but no message queue is configured.
	ErrAsyncUnavailable = errors.New("asynchronous processing is not configured")

	// ErrUnknownTaskKind is returned for a processing task of an unknown kind.
	ErrUnknownTaskKind = errors.New("unknown processing task kind")
)
