package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Store backends.
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Cache    CacheConfig
	OCR      OCRConfig
	Speech   SpeechConfig
	FFmpeg   FFmpegConfig
	Worker   WorkerConfig
	Database DatabaseConfig
	MinIO    MinIOConfig
	RabbitMQ RabbitMQConfig
}

type ServerConfig struct {
	Port            int           `envconfig:"API_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"API_READ_TIMEOUT" default:"30s"`
	WriteTimeout    time.Duration `envconfig:"API_WRITE_TIMEOUT" default:"10m"`
	ShutdownTimeout time.Duration `envconfig:"API_SHUTDOWN_TIMEOUT" default:"10s"`
	MaxUploadBytes  int64         `envconfig:"API_MAX_UPLOAD_BYTES" default:"52428800"`
	ProcessingRPS   float64       `envconfig:"API_PROCESSING_RPS" default:"2"`
	ProcessingBurst int           `envconfig:"API_PROCESSING_BURST" default:"4"`
}

type StorageConfig struct {
	Backend string `envconfig:"STORE_BACKEND" default:"file"`
	DataDir string `envconfig:"DATA_DIR" default:"data/canvases"`
}

type CacheConfig struct {
	MaxEntries    int           `envconfig:"CACHE_MAX_ENTRIES" default:"0"`
	PurgeInterval time.Duration `envconfig:"CACHE_PURGE_INTERVAL" default:"1h"`
}

type OCRConfig struct {
	TesseractPath   string `envconfig:"TESSERACT_PATH" default:"tesseract"`
	DefaultLanguage string `envconfig:"OCR_DEFAULT_LANG" default:"eng"`
}

type SpeechConfig struct {
	TranscriberPath string            `envconfig:"VOSK_TRANSCRIBER_PATH" default:"vosk-transcriber"`
	Models          map[string]string `envconfig:"VOSK_MODELS" default:"en-us:models_vosk/vosk-model-small-en-us-0.15,ru-ru:models_vosk/vosk-model-ru-0.10"`
	DefaultLanguage string            `envconfig:"SPEECH_DEFAULT_LANG" default:"en-us"`
}

type FFmpegConfig struct {
	Path string `envconfig:"FFMPEG_PATH" default:"ffmpeg"`
}

type WorkerConfig struct {
	TempDir         string        `envconfig:"WORKER_TEMP_DIR" default:"/tmp/notecanvas"`
	MaxRetries      int           `envconfig:"WORKER_MAX_RETRIES" default:"3"`
	ShutdownTimeout time.Duration `envconfig:"WORKER_SHUTDOWN_TIMEOUT" default:"30s"`
	EngineTimeout   time.Duration `envconfig:"ENGINE_TIMEOUT" default:"10m"`
}

type DatabaseConfig struct {
	Host     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	Port     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER" default:"notecanvas"`
	Password string `envconfig:"POSTGRES_PASSWORD" default:"notecanvas"`
	DBName   string `envconfig:"POSTGRES_DB" default:"notecanvas"`
	SSLMode  string `envconfig:"POSTGRES_SSLMODE" default:"disable"`
	MaxConns int32  `envconfig:"POSTGRES_MAX_CONNS" default:"10"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

type MinIOConfig struct {
	Enabled        bool   `envconfig:"MINIO_ENABLED" default:"false"`
	Endpoint       string `envconfig:"MINIO_ENDPOINT" default:"localhost:9000"`
	PublicEndpoint string `envconfig:"MINIO_PUBLIC_ENDPOINT"`
	AccessKey      string `envconfig:"MINIO_ACCESS_KEY" default:"minioadmin"`
	SecretKey      string `envconfig:"MINIO_SECRET_KEY" default:"minioadmin"`
	Bucket         string `envconfig:"MINIO_BUCKET" default:"notecanvas"`
	UseSSL         bool   `envconfig:"MINIO_USE_SSL" default:"false"`
}

type RabbitMQConfig struct {
	Enabled  bool   `envconfig:"RABBITMQ_ENABLED" default:"false"`
	Host     string `envconfig:"RABBITMQ_HOST" default:"localhost"`
	Port     int    `envconfig:"RABBITMQ_PORT" default:"5672"`
	User     string `envconfig:"RABBITMQ_USER" default:"notecanvas"`
	Password string `envconfig:"RABBITMQ_PASSWORD" default:"notecanvas"`
	VHost    string `envconfig:"RABBITMQ_VHOST" default:"/"`
}

func (c RabbitMQConfig) URL() string {
	return fmt.Sprintf(
		"amqp://%s:%s@%s:%d%s",
		c.User, c.Password, c.Host, c.Port, c.VHost,
	)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects combinations envconfig cannot express with tags.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendFile, BackendPostgres:
	default:
		return fmt.Errorf("invalid STORE_BACKEND %q: must be %q or %q", c.Storage.Backend, BackendFile, BackendPostgres)
	}
	if c.Storage.DataDir == "" {
		return fmt.Errorf("DATA_DIR must not be empty")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("API_MAX_UPLOAD_BYTES must be positive, got %d", c.Server.MaxUploadBytes)
	}
	if c.Cache.PurgeInterval < 0 {
		return fmt.Errorf("CACHE_PURGE_INTERVAL must not be negative, got %s", c.Cache.PurgeInterval)
	}
	if c.Worker.EngineTimeout < 0 {
		return fmt.Errorf("ENGINE_TIMEOUT must not be negative, got %s", c.Worker.EngineTimeout)
	}
	if c.Worker.MaxRetries < 0 {
		return fmt.Errorf("WORKER_MAX_RETRIES must not be negative, got %d", c.Worker.MaxRetries)
	}
	if _, ok := c.Speech.Models[c.Speech.DefaultLanguage]; !ok {
		return fmt.Errorf("SPEECH_DEFAULT_LANG %q has no entry in VOSK_MODELS", c.Speech.DefaultLanguage)
	}
	return nil
}
