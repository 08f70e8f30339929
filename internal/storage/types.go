package storage

import "time"

// Upload outcome labels stored in upload_history.status.
const (
	UploadSucceeded = "succeeded"
	UploadFailed    = "failed"
)

// Upload is one recorded CSV upload attempt.
type Upload struct {
	ID         string
	Table      string
	FileName   string
	ByteSize   int64
	Status     string // UploadSucceeded or UploadFailed
	Message    string
	UploadedBy string
	UploadedAt time.Time
}

// Stats holds aggregate statistics about the local database.
type Stats struct {
	StateKeys         int64
	TotalUploads      int64
	FailedUploads     int64
	LastUpload        time.Time
	DatabaseSizeBytes int64
	TopTables         []TableCount
}

// TableCount pairs a backend table with its upload count.
type TableCount struct {
	Table string
	Count int64
}
