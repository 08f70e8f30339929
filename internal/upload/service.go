package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/runnerr0/dataportal/internal/api"
	"github.com/runnerr0/dataportal/internal/logging"
	"github.com/runnerr0/dataportal/internal/portal"
	"github.com/runnerr0/dataportal/internal/storage"
)

// Uploader sends a CSV file to the backend.
type Uploader interface {
	UploadCSV(ctx context.Context, token, table, fileName string, file io.Reader) (*api.UploadResponse, error)
}

// History records upload attempts locally.
type History interface {
	RecordUpload(ctx context.Context, u *storage.Upload) error
}

// Service runs the upload flow for one session.
type Service struct {
	uploader Uploader
	history  History
	logger   logging.Logger
}

func NewService(uploader Uploader, history History, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{uploader: uploader, history: history, logger: logger}
}

// Request describes one upload.
type Request struct {
	Table      string
	Path       string
	Token      string
	UploadedBy string
}

// PreviewFile parses the top of the file at path.
func (s *Service) PreviewFile(path string) (*Preview, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ParsePreview(f)
}

// Upload sends the whole file and records the outcome. The file is not
// inspected; a failed preview never prevents an upload.
func (s *Service) Upload(ctx context.Context, req Request) (*api.UploadResponse, error) {
	if err := checkTable(req.Table); err != nil {
		return nil, err
	}
	if req.Token == "" {
		return nil, portal.ErrNoToken
	}

	f, err := os.Open(req.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", req.Path, err)
	}
	defer f.Close()

	var size int64
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}

	name := filepath.Base(req.Path)
	resp, upErr := s.uploader.UploadCSV(ctx, req.Token, req.Table, name, f)

	rec := &storage.Upload{
		Table:      req.Table,
		FileName:   name,
		ByteSize:   size,
		UploadedBy: req.UploadedBy,
	}
	switch {
	case errors.Is(upErr, portal.ErrNoToken):
		return nil, upErr
	case upErr != nil:
		rec.Status = storage.UploadFailed
		rec.Message = upErr.Error()
	default:
		rec.Status = storage.UploadSucceeded
		rec.Message = resp.Message
	}

	if s.history != nil {
		if err := s.history.RecordUpload(ctx, rec); err != nil {
			s.logger.Warn("upload", "could not record upload history", map[string]interface{}{
				"table": req.Table,
				"error": err,
			})
		}
	}

	s.logger.Info("upload", "upload finished", map[string]interface{}{
		"table":  req.Table,
		"file":   name,
		"bytes":  size,
		"status": rec.Status,
	})

	if upErr != nil {
		return nil, upErr
	}
	return resp, nil
}
