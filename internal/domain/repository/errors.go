package repository

import "errors"

var (
	// ErrCanvasNotFound is returned when a canvas cannot be found.
	ErrCanvasNotFound = errors.New("canvas not found")

	// ErrDuplicateCanvas is returned when attempting to create a canvas that already exists.
	ErrDuplicateCanvas = errors.New("canvas already exists")

	// ErrNoteNotFound is returned when a note cannot be found on its canvas.
	ErrNoteNotFound = errors.New("note not found")

	// ErrMediaNotFound is returned when a media file does not exist.
	ErrMediaNotFound = errors.New("media file not found")

	// ErrInvalidMediaPath is returned when a relative media path escapes the
	// canvas directory or does not point into a known media folder.
	ErrInvalidMediaPath = errors.New("invalid media path")

	// ErrObjectNotFound is returned when an object does not exist in storage.
	ErrObjectNotFound = errors.New("object not found")

	// ErrBucketNotFound is returned when the configured bucket does not exist.
	ErrBucketNotFound = errors.New("bucket not found")
)
