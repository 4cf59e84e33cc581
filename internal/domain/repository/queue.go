package repository

import (
	"context"

	"github.com/google/uuid"
)

// TaskKind selects the recognition engine for a ProcessingTask.
type TaskKind string

const (
	TaskOCR        TaskKind = "ocr"
	TaskTranscribe TaskKind = "transcribe"
)

// ProcessingTask represents an OCR or transcription job message.
type ProcessingTask struct {
	Kind     TaskKind  `json:"kind"`
	CanvasID uuid.UUID `json:"canvas_id"`
	FilePath string    `json:"file_path"`
	Language string    `json:"language"`
	// NoteID optionally names an audio note that receives the transcript.
	NoteID     *uuid.UUID `json:"note_id,omitempty"`
	RetryCount int        `json:"retry_count"`
}

// MessageQueue defines the interface for message queue operations.
// Implementations should be provided by the infrastructure layer (e.g., RabbitMQ).
type MessageQueue interface {
	// PublishProcessingTask sends a processing task to the queue.
	// Used by the API server to run recognition in the background.
	PublishProcessingTask(ctx context.Context, task ProcessingTask) error

	// ConsumeProcessingTasks starts consuming processing tasks from the queue.
	// The handler function is called for each received task.
	// Blocks until ctx is cancelled or the broker closes the channel.
	// Used by the worker service.
	ConsumeProcessingTasks(ctx context.Context, handler func(task ProcessingTask) error) error

	// Close gracefully closes the connection to the message queue.
	Close() error
}
