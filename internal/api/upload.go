package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/runnerr0/dataportal/internal/portal"
)

// UploadResponse is returned by POST /api/upload-csv.
type UploadResponse struct {
	Message      string `json:"message"`
	RowsAffected int    `json:"rows_affected"`
}

// UploadCSV sends the whole file as multipart form data. The backend parses
// and validates it; nothing here looks inside the file.
func (c *Client) UploadCSV(ctx context.Context, token, table, fileName string, file io.Reader) (*UploadResponse, error) {
	if token == "" {
		return nil, portal.ErrNoToken
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("table_name", table); err != nil {
		return nil, fmt.Errorf("write table_name: %w", err)
	}
	part, err := mw.CreateFormFile("csv_file", fileName)
	if err != nil {
		return nil, fmt.Errorf("create csv_file part: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("copy csv_file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	var out UploadResponse
	err = c.do(ctx, request{
		method:       http.MethodPost,
		path:         "/api/upload-csv",
		token:        token,
		body:         &buf,
		contentType:  mw.FormDataContentType(),
		defaultMsg:   "Upload failed",
		authRequired: true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
