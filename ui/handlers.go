package ui

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"gosieve/app"
	"gosieve/domain/table"
	"gosieve/internal/errors"
	"gosieve/ui/middleware"

	"github.com/gin-gonic/gin"
)

// cleanResponse is the JSON body of POST /api/clean
type cleanResponse struct {
	RunID        string                      `json:"run_id"`
	RequestID    string                      `json:"request_id"`
	Name         string                      `json:"name"`
	Format       string                      `json:"format"`
	Columns      []string                    `json:"columns"`
	Types        map[string]table.ColumnType `json:"types"`
	Outcome      string                      `json:"outcome"`
	Sentinel     float64                     `json:"sentinel"`
	Filter       string                      `json:"filter,omitempty"`
	SourceRows   int                         `json:"source_rows"`
	RemovedCount int                         `json:"removed_count"`
	Rows         int                         `json:"rows"`
	Removed      interface{}                 `json:"removed"`
	Preview      []map[string]interface{}    `json:"preview"`
	Summaries    interface{}                 `json:"summaries"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleClean loads and cleans the upload and returns a preview
func (s *Server) handleClean(c *gin.Context) {
	prepared, ok := s.prepare(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, cleanResponse{
		RunID:        prepared.RunID,
		RequestID:    middleware.GetRequestID(c),
		Name:         prepared.Name,
		Format:       string(prepared.Format),
		Columns:      prepared.Table.ColumnNames(),
		Types:        prepared.Table.Schema(),
		Outcome:      string(prepared.Clean.Outcome),
		Sentinel:     prepared.Clean.Sentinel,
		Filter:       prepared.Filter,
		SourceRows:   prepared.Clean.SourceRows,
		RemovedCount: len(prepared.Clean.Removed),
		Rows:         prepared.Table.Len(),
		Removed:      prepared.Clean.Removed,
		Preview:      prepared.Preview.Maps(),
		Summaries:    prepared.Summaries,
	})
}

// handleExport returns the cleaned upload as a csv or xlsx download
func (s *Server) handleExport(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")

	prepared, ok := s.prepare(c)
	if !ok {
		return
	}

	file, err := s.pipeline.Export(prepared, format)
	if err != nil {
		s.respondError(c, err)
		return
	}

	log.Printf("[handleExport] Exported %s as %s (%d bytes)", prepared.Name, file.Filename, len(file.Data))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

// handleChart melts and correlates the selected columns of the upload
func (s *Server) handleChart(c *gin.Context) {
	prepared, ok := s.prepare(c)
	if !ok {
		return
	}

	sel := table.Selection{
		X:    strings.TrimSpace(c.PostForm("x")),
		Y:    splitNames(c.PostFormArray("y")),
		Kind: table.ChartKind(strings.ToLower(strings.TrimSpace(c.PostForm("kind")))),
	}

	result, err := s.pipeline.Chart(prepared, sel)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"run_id":       prepared.RunID,
		"request_id":   middleware.GetRequestID(c),
		"selection":    result.Selection,
		"chart":        result.Chart,
		"correlations": result.Correlations,
		"unusable":     result.Unusable,
		"markdown":     result.Markdown,
		"html":         result.HTML,
	})
}

// prepare reads the upload and cleaning options shared by every endpoint.
// It writes the error response itself and reports whether to continue.
func (s *Server) prepare(c *gin.Context) (*app.Prepared, bool) {
	name, data, err := s.readUpload(c)
	if err != nil {
		s.respondError(c, err)
		return nil, false
	}

	sentinel, err := parseSentinel(c.PostForm("sentinel"))
	if err != nil {
		s.respondError(c, err)
		return nil, false
	}

	prepared, err := s.pipeline.Prepare(c.Request.Context(), app.PrepareRequest{
		Name:     name,
		Data:     data,
		Sentinel: sentinel,
		Where:    c.PostForm("where"),
	})
	if err != nil {
		s.respondError(c, err)
		return nil, false
	}

	s.metrics.ObserveClean(prepared.Clean)
	return prepared, true
}

// splitNames accepts repeated fields as well as comma separated values
func splitNames(values []string) []string {
	var names []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				names = append(names, part)
			}
		}
	}
	return names
}

func statusFor(code string) int {
	switch code {
	case errors.CodeUnsupportedFormat:
		return http.StatusUnsupportedMediaType
	case errors.CodeParseError, errors.CodeEmptyAfterCleaning:
		return http.StatusUnprocessableEntity
	case errors.CodeNoYColumns, errors.CodeColumnNotFound, errors.CodeInvalidInput, errors.CodeValidationError:
		return http.StatusBadRequest
	case codeUploadTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// respondError maps an AppError code to an HTTP status and JSON body
func (s *Server) respondError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		log.Printf("[%s] ERROR (request %s): %v", c.FullPath(), middleware.GetRequestID(c), err)
	} else {
		log.Printf("[%s] Rejected (request %s): %v", c.FullPath(), middleware.GetRequestID(c), err)
	}

	c.AbortWithStatusJSON(status, gin.H{
		"error":      err.Error(),
		"code":       code,
		"request_id": middleware.GetRequestID(c),
	})
}
