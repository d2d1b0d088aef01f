package model

// AssetStatus is the lifecycle state of a MediaAsset.
type AssetStatus string

const (
	StatusUploading  AssetStatus = "uploading"
	StatusProcessing AssetStatus = "processing"
	StatusCompleted  AssetStatus = "completed"
	StatusFailed     AssetStatus = "failed"
)

// MediaAsset is the entity (video) which is uploaded by the user. It spans
// the original file and all derived renditions/thumbnails.
type MediaAsset struct {
	AssetID         string      `bson:"_id" json:"asset_id"`
	Filename        string      `bson:"filename" json:"filename"`
	SourcePath      string      `bson:"source_path" json:"source_path"`
	Size            int64       `bson:"size" json:"size"`
	ContentType     string      `bson:"content_type" json:"content_type"`
	Duration        float64     `bson:"duration" json:"duration"`
	Status          AssetStatus `bson:"status" json:"status"`
	ProcessingError string      `bson:"processing_error" json:"processing_error,omitempty"`
	ThumbnailPath   string      `bson:"thumbnail_path" json:"thumbnail_path,omitempty"`
	Qualities       []string    `bson:"qualities" json:"qualities"`
	CreatedAt       int64       `bson:"created_at" json:"created_at"`
	UpdatedAt       int64       `bson:"updated_at" json:"updated_at"`
}

// Rendition is one transcoded quality-specific copy of a source video.
// Renditions are created incrementally as each quality finishes.
type Rendition struct {
	RenditionID string `bson:"_id" json:"rendition_id"`
	AssetID     string `bson:"asset_id" json:"asset_id"`
	Quality     string `bson:"quality" json:"quality"`
	Path        string `bson:"path" json:"path"`
	Size        int64  `bson:"size" json:"size"`
	Bitrate     int64  `bson:"bitrate" json:"bitrate"`
	Resolution  string `bson:"resolution" json:"resolution"`
	CreatedAt   int64  `bson:"created_at" json:"created_at"`
}

// ProcessingJob describes the in-flight work for one MediaAsset. It exists
// only for the duration of orchestration; its outcome is folded into the
// MediaAsset/Rendition records.
type ProcessingJob struct {
	AssetID        string
	InputPath      string
	Qualities      []string
	Thumbnails     bool
	DeleteOriginal bool
}
