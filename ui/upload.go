package ui

import (
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"gosieve/adapters/excel"
	"gosieve/internal/errors"

	"github.com/gin-gonic/gin"
)

const codeUploadTooLarge = "UPLOAD_TOO_LARGE"

// readUpload returns the name and bytes of the multipart "file" field
func (s *Server) readUpload(c *gin.Context) (string, []byte, error) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		if isTooLarge(err) {
			return "", nil, s.tooLarge()
		}
		return "", nil, errors.InvalidInput("no file uploaded: send a csv or xlsx file in the \"file\" field")
	}
	defer file.Close()

	if header.Size > s.config.Server.MaxUploadBytes() {
		return "", nil, s.tooLarge()
	}
	if _, err := excel.ParseFormat(filepath.Ext(header.Filename)); err != nil {
		return "", nil, err
	}

	data, err := io.ReadAll(io.LimitReader(file, s.config.Server.MaxUploadBytes()+1))
	if err != nil {
		if isTooLarge(err) {
			return "", nil, s.tooLarge()
		}
		return "", nil, errors.Wrap(err, "failed to read upload")
	}
	if int64(len(data)) > s.config.Server.MaxUploadBytes() {
		return "", nil, s.tooLarge()
	}

	return filepath.Base(header.Filename), data, nil
}

func (s *Server) tooLarge() error {
	return errors.New(codeUploadTooLarge, fmt.Sprintf("file exceeds the %dMB limit", s.config.Server.MaxUploadMB))
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return stderrors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large")
}

// parseSentinel returns nil for an empty field so the configured default applies
func parseSentinel(raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, errors.InvalidInput(fmt.Sprintf("sentinel %q is not a number", raw))
	}
	return &v, nil
}
