package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// GetEnv returns env var or default when empty.
func GetEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Config holds the pipeline configuration, read once at startup.
type Config struct {
	Port        string
	MongoURI    string
	DBName      string
	FFmpegPath  string
	FFprobePath string

	// Storage backend: "disk" or "minio".
	StorageBackend string
	StorageDir     string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioSecure    bool

	// Qualities enabled for transcoding, in ascending order.
	Qualities []string

	MaxUploadMB    int
	MaxTranscodes  int64
	JobTimeout     time.Duration
	StaleJobAfter  time.Duration
	DeleteOriginal bool

	ThumbnailCount   int
	ThumbnailWidth   int
	ThumbnailFormat  string
	ThumbnailQuality int
}

// Load reads configuration from environment with sensible defaults.
func Load() Config {
	cfg := Config{
		Port:        GetEnv("PORT", "8000"),
		MongoURI:    GetEnv("MONGO_URI", "mongodb://127.0.0.1:27017"),
		DBName:      GetEnv("DB_NAME", "mediacore"),
		FFmpegPath:  GetEnv("FFMPEG_PATH", "ffmpeg"),
		FFprobePath: GetEnv("FFPROBE_PATH", "ffprobe"),

		StorageBackend: GetEnv("STORAGE_BACKEND", "disk"),
		StorageDir:     GetEnv("STORAGE_DIR", "./assets"),
		MinioEndpoint:  GetEnv("MINIO_ENDPOINT", "127.0.0.1:9000"),
		MinioAccessKey: GetEnv("MINIO_ACCESS_KEY", "minioadmin"),
		MinioSecretKey: GetEnv("MINIO_SECRET_KEY", "minioadmin"),
		MinioBucket:    GetEnv("MINIO_BUCKET", "mediacore"),

		Qualities: []string{"360p", "480p", "720p", "1080p"},

		MaxUploadMB:   512,
		MaxTranscodes: 2,
		JobTimeout:    10 * time.Minute,
		StaleJobAfter: 30 * time.Minute,

		ThumbnailCount:   3,
		ThumbnailWidth:   320,
		ThumbnailFormat:  "jpg",
		ThumbnailQuality: 2,
	}
	if v := os.Getenv("QUALITIES"); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if s := strings.TrimSpace(p); s != "" {
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			cfg.Qualities = out
		}
	}
	if v := os.Getenv("MAX_UPLOAD_MB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxUploadMB = n
		}
	}
	if v := os.Getenv("MAX_TRANSCODES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.MaxTranscodes = n
		}
	}
	if v := os.Getenv("JOB_TIMEOUT_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.JobTimeout = time.Duration(n) * time.Minute
		}
	}
	if v := os.Getenv("STALE_JOB_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.StaleJobAfter = time.Duration(n) * time.Minute
		}
	}
	if v := os.Getenv("DELETE_ORIGINAL"); v != "" {
		cfg.DeleteOriginal = v == "true" || v == "1"
	}
	if v := os.Getenv("THUMBNAIL_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ThumbnailCount = n
		}
	}
	if v := os.Getenv("MINIO_SECURE"); v != "" {
		cfg.MinioSecure = v == "true" || v == "1"
	}
	return cfg
}
