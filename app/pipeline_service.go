package app

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"gosieve/adapters/excel"
	"gosieve/domain/table"
	"gosieve/internal"
	"gosieve/internal/chart"
	"gosieve/internal/cleaner"
	"gosieve/internal/config"
	"gosieve/internal/correlation"
	"gosieve/internal/errors"
	"gosieve/internal/filter"
	"gosieve/internal/report"
	"gosieve/internal/reshape"
	"gosieve/internal/summary"
	"gosieve/internal/validation"

	"github.com/google/uuid"
)

// PipelineService runs load, clean, filter, melt and correlate for callers.
// It holds configuration only; every call works on the data it is given.
type PipelineService struct {
	config      *config.Config
	excelConfig excel.ExcelConfig
	reader      *excel.DataReader
	logger      *internal.Logger
}

// PrepareRequest is one uploaded file plus cleaning options
type PrepareRequest struct {
	Name     string // original file name, used for the extension when Ext is empty
	Data     []byte
	Ext      string
	Sentinel *float64 // nil uses the configured sentinel
	Where    string   // optional row filter expression
}

// Prepared is a loaded and cleaned table ready for export or charting
type Prepared struct {
	RunID     string                  `json:"run_id"`
	Name      string                  `json:"name,omitempty"`
	Format    excel.Format            `json:"format"`
	Source    *table.Table            `json:"-"`
	Clean     *cleaner.Result         `json:"clean"`
	Filter    string                  `json:"filter,omitempty"`
	Table     *table.Table            `json:"-"` // cleaned and filtered
	Summaries []summary.ColumnSummary `json:"summaries"`
	Preview   *table.Table            `json:"-"`
}

// Empty returns true if no rows survived cleaning and filtering
func (p *Prepared) Empty() bool {
	return p.Table == nil || p.Table.Len() == 0
}

// ExportFile is a rendered download
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ChartResult is everything produced for one selection
type ChartResult struct {
	Selection    table.Selection          `json:"selection"`
	Chart        *chart.Spec              `json:"chart"`
	Correlations []table.CorrelationEntry `json:"correlations"`
	Unusable     []string                 `json:"unusable"`
	Markdown     string                   `json:"markdown"`
	HTML         string                   `json:"html"`
	melted       *reshape.MeltResult
}

// NewPipelineService creates a pipeline service. A nil config uses defaults.
func NewPipelineService(cfg *config.Config) *PipelineService {
	if cfg == nil {
		cfg = config.Default()
	}
	excelConfig := excel.ExcelConfigFromExport(cfg.Export.SheetName, cfg.Export.CSVBOM)
	return &PipelineService{
		config:      cfg,
		excelConfig: excelConfig,
		reader:      excelConfig.NewReader(),
		logger:      internal.NewLoggerFromString("PipelineService", cfg.Log.Level),
	}
}

// Config returns the service configuration
func (s *PipelineService) Config() *config.Config {
	return s.config
}

// Prepare loads, cleans and optionally filters an uploaded file. An empty
// cleaning outcome is not an error; the caller checks Prepared.Empty.
func (s *PipelineService) Prepare(ctx context.Context, req PrepareRequest) (*Prepared, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	startTime := time.Now()

	ext := req.Ext
	if ext == "" {
		ext = filepath.Ext(req.Name)
	}
	format, err := excel.ParseFormat(ext)
	if err != nil {
		return nil, err
	}

	// Compile before loading so a bad expression fails fast
	rowFilter, err := filter.Compile(req.Where)
	if err != nil {
		return nil, err
	}

	source, err := s.reader.Load(req.Data, string(format))
	if err != nil {
		return nil, err
	}

	sentinel := s.config.Cleaning.Sentinel
	if req.Sentinel != nil {
		sentinel = *req.Sentinel
	}
	cleaned := cleaner.Clean(source, sentinel)

	filtered, err := rowFilter.Apply(cleaned.Table)
	if err != nil {
		return nil, err
	}

	prepared := &Prepared{
		RunID:     newRunID(),
		Name:      req.Name,
		Format:    format,
		Source:    source,
		Clean:     cleaned,
		Filter:    rowFilter.String(),
		Table:     filtered,
		Summaries: summary.Describe(filtered),
		Preview:   filtered.Head(s.config.Server.PreviewRows),
	}

	s.logger.Infof("Prepared %q (run %s): %d rows -> %d after cleaning, %d after filter in %v",
		req.Name, prepared.RunID, source.Len(), cleaned.Table.Len(), filtered.Len(), time.Since(startTime))
	return prepared, nil
}

// Export renders the prepared table as csv or xlsx. An empty table is
// refused with EMPTY_AFTER_CLEANING.
func (s *PipelineService) Export(prepared *Prepared, format string) (*ExportFile, error) {
	if prepared.Empty() {
		return nil, errors.EmptyAfterCleaning()
	}
	f, err := excel.ParseFormat(format)
	if err != nil {
		return nil, err
	}

	var data []byte
	switch f {
	case excel.FormatCSV:
		data, err = excel.ExportCSV(prepared.Table, s.excelConfig.CSVOptions())
	case excel.FormatXLSX:
		data, err = excel.ExportXLSX(prepared.Table, s.excelConfig.SheetName)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to export %s", f)
	}

	return &ExportFile{
		Filename:    "cleaned_file." + string(f),
		ContentType: f.ContentType(),
		Data:        data,
	}, nil
}

// Chart melts and correlates the selected columns and builds the chart
// spec and report
func (s *PipelineService) Chart(prepared *Prepared, sel table.Selection) (*ChartResult, error) {
	if len(sel.Y) == 0 {
		return nil, errors.NoYColumns()
	}
	if prepared.Empty() {
		return nil, errors.EmptyAfterCleaning()
	}
	if err := validation.Struct(sel); err != nil {
		return nil, err
	}
	sel = sel.Normalize()

	melted, err := reshape.Melt(prepared.Table, sel.X, sel.Y)
	if err != nil {
		return nil, err
	}
	entries, err := correlation.Correlate(prepared.Table, sel.X, sel.Y)
	if err != nil {
		return nil, err
	}
	spec, err := chart.Build(sel, melted)
	if err != nil {
		return nil, err
	}

	md := report.Markdown(report.Input{
		Name:         prepared.Name,
		Filter:       prepared.Filter,
		Clean:        prepared.Clean,
		Summaries:    prepared.Summaries,
		Selection:    &sel,
		Correlations: entries,
		Unusable:     melted.Unusable,
	})

	s.logger.Infof("Charted %s against %s (run %s): %d points, %d unusable",
		strings.Join(melted.Y, ","), sel.X, prepared.RunID, spec.PointCount(), len(melted.Unusable))

	return &ChartResult{
		Selection:    sel,
		Chart:        spec,
		Correlations: entries,
		Unusable:     melted.Unusable,
		Markdown:     md,
		HTML:         string(report.HTML(md)),
		melted:       melted,
	}, nil
}

// ChartWorkbook exports the prepared table with a native Excel chart of the
// usable selected columns
func (s *PipelineService) ChartWorkbook(prepared *Prepared, result *ChartResult) (*ExportFile, error) {
	if prepared.Empty() {
		return nil, errors.EmptyAfterCleaning()
	}
	if len(result.melted.Y) == 0 {
		return nil, errors.InvalidInput("none of the selected columns has numeric values")
	}

	data, err := excel.ExportXLSXWithChart(prepared.Table, s.excelConfig.SheetName, excel.ChartOptions{
		Kind:  result.Selection.Kind,
		Title: result.Chart.Title,
		X:     result.Selection.X,
		Y:     result.melted.Y,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to export chart workbook")
	}

	return &ExportFile{
		Filename:    "cleaned_chart.xlsx",
		ContentType: excel.FormatXLSX.ContentType(),
		Data:        data,
	}, nil
}

// Report renders the cleaning report without a selection
func (s *PipelineService) Report(prepared *Prepared) string {
	return report.Markdown(report.Input{
		Name:      prepared.Name,
		Filter:    prepared.Filter,
		Clean:     prepared.Clean,
		Summaries: prepared.Summaries,
	})
}

func newRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
