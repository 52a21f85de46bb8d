package ui

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gosieve/adapters/excel"
	"gosieve/app"
	"gosieve/internal/config"
	"gosieve/internal/errors"
	"gosieve/internal/testkit"
	"gosieve/ui/middleware"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.Server.GinMode = "test"
	cfg.Server.MaxUploadMB = 1
	return NewServer(cfg, app.NewPipelineService(cfg))
}

type formField struct {
	name  string
	value string
}

func multipartRequest(t *testing.T, target, filename string, content []byte, fields ...formField) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	for _, f := range fields {
		require.NoError(t, w.WriteField(f.name, f.value))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealthz(t *testing.T) {
	rec := serve(newTestServer(t), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
}

func TestRequestIDIsEchoed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(middleware.RequestIDHeader, "abc-123")

	rec := serve(newTestServer(t), req)
	assert.Equal(t, "abc-123", rec.Header().Get(middleware.RequestIDHeader))
}

func TestClean(t *testing.T) {
	s := newTestServer(t)
	rec := serve(s, multipartRequest(t, "/api/clean", "cast.csv", []byte(testkit.ProfileCSV)))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)

	assert.Equal(t, "cleaned", body["outcome"])
	assert.Equal(t, []interface{}{"depth", "temp", "salinity"}, body["columns"])
	assert.Equal(t, float64(3), body["source_rows"])
	assert.Equal(t, float64(1), body["removed_count"])
	assert.Equal(t, float64(2), body["rows"])
	assert.Len(t, body["preview"], 2)
	assert.Equal(t, rec.Header().Get(middleware.RequestIDHeader), body["request_id"])
}

func TestCleanEmptyOutcomeIsNotAnError(t *testing.T) {
	s := newTestServer(t)
	rec := serve(s, multipartRequest(t, "/api/clean", "bad.csv", []byte("a,b\n-9999.0,1\n")))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "empty", decode(t, rec)["outcome"])
}

func TestCleanErrors(t *testing.T) {
	tests := []struct {
		name   string
		req    func(t *testing.T) *http.Request
		status int
		code   string
	}{
		{
			name: "no file",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/api/clean", "", nil)
			},
			status: http.StatusBadRequest,
			code:   errors.CodeInvalidInput,
		},
		{
			name: "unsupported format",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/api/clean", "cast.pdf", []byte("x"))
			},
			status: http.StatusUnsupportedMediaType,
			code:   errors.CodeUnsupportedFormat,
		},
		{
			name: "parse error",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/api/clean", "cast.xlsx", []byte("not a zip"))
			},
			status: http.StatusUnprocessableEntity,
			code:   errors.CodeParseError,
		},
		{
			name: "bad sentinel",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/api/clean", "cast.csv", []byte(testkit.ProfileCSV), formField{"sentinel", "abc"})
			},
			status: http.StatusBadRequest,
			code:   errors.CodeInvalidInput,
		},
		{
			name: "too large",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/api/clean", "big.csv", bytes.Repeat([]byte("1,2\n"), 3<<18))
			},
			status: http.StatusRequestEntityTooLarge,
			code:   codeUploadTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(newTestServer(t), tt.req(t))
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.code, decode(t, rec)["code"])
		})
	}
}

func TestExportCSV(t *testing.T) {
	rec := serve(newTestServer(t), multipartRequest(t, "/api/export?format=csv", "cast.csv", []byte(testkit.ProfileCSV)))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="cleaned_file.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "depth,temp,salinity\n2,15.2,34.1\n3,15.5,34.0\n", rec.Body.String())
}

func TestExportXLSX(t *testing.T) {
	rec := serve(newTestServer(t), multipartRequest(t, "/api/export?format=xlsx", "cast.csv", []byte(testkit.ProfileCSV)))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "cleaned_file.xlsx")

	tbl, err := excel.Load(rec.Body.Bytes(), "xlsx")
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Len())
}

func TestExportEmpty(t *testing.T) {
	rec := serve(newTestServer(t), multipartRequest(t, "/api/export", "bad.csv", []byte("a,b\n-9999.0,1\n")))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, errors.CodeEmptyAfterCleaning, decode(t, rec)["code"])
}

func TestChart(t *testing.T) {
	rec := serve(newTestServer(t), multipartRequest(t, "/api/chart", "cast.csv", []byte(testkit.ProfileCSV),
		formField{"x", "depth"}, formField{"y", "temp"}, formField{"y", "salinity"}, formField{"kind", "scatter"}))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)

	chart := body["chart"].(map[string]interface{})
	assert.Equal(t, "scatter", chart["kind"])
	assert.Len(t, chart["series"], 2)
	assert.Len(t, body["correlations"], 2)
	assert.True(t, strings.Contains(body["html"].(string), "<table>"))
}

func TestChartErrors(t *testing.T) {
	tests := []struct {
		name   string
		fields []formField
		status int
		code   string
	}{
		{name: "no y", fields: []formField{{"x", "depth"}}, status: http.StatusBadRequest, code: errors.CodeNoYColumns},
		{name: "unknown column", fields: []formField{{"x", "depth"}, {"y", "oxygen"}}, status: http.StatusBadRequest, code: errors.CodeColumnNotFound},
		{name: "bad kind", fields: []formField{{"x", "depth"}, {"y", "temp"}, {"kind", "pie"}}, status: http.StatusBadRequest, code: errors.CodeValidationError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(newTestServer(t), multipartRequest(t, "/api/chart", "cast.csv", []byte(testkit.ProfileCSV), tt.fields...))
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.code, decode(t, rec)["code"])
		})
	}
}

func TestMetrics(t *testing.T) {
	s := newTestServer(t)
	serve(s, multipartRequest(t, "/api/clean", "cast.csv", []byte(testkit.ProfileCSV)))

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `gosieve_clean_outcomes_total{outcome="cleaned"} 1`)
	assert.Contains(t, rec.Body.String(), `gosieve_rows_total{stage="removed"} 1`)
	assert.Contains(t, rec.Body.String(), `gosieve_http_requests_total{method="POST",route="/api/clean",status="200"} 1`)
}

func TestSplitNames(t *testing.T) {
	assert.Equal(t, []string{"temp", "salinity", "oxygen"}, splitNames([]string{"temp, salinity", " oxygen ", ""}))
	assert.Nil(t, splitNames(nil))
}
