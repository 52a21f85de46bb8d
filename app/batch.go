package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gosieve/adapters/excel"
	"gosieve/internal/errors"

	"golang.org/x/sync/errgroup"
)

// BatchOutcome is the result of one file in a batch run
type BatchOutcome string

const (
	BatchCleaned BatchOutcome = "cleaned"
	BatchEmpty   BatchOutcome = "empty"
	BatchFailed  BatchOutcome = "failed"
)

// BatchItem records what happened to one input file
type BatchItem struct {
	Path       string       `json:"path"`
	Output     string       `json:"output,omitempty"`
	Outcome    BatchOutcome `json:"outcome"`
	SourceRows int          `json:"source_rows"`
	KeptRows   int          `json:"kept_rows"`
	Error      string       `json:"error,omitempty"`
	ErrorCode  string       `json:"error_code,omitempty"`
}

// BatchReport summarizes a batch run. Items follow the input order.
type BatchReport struct {
	RunID    string        `json:"run_id"`
	Items    []BatchItem   `json:"items"`
	Duration time.Duration `json:"duration"`
}

// Count returns the number of items with the given outcome
func (r *BatchReport) Count(outcome BatchOutcome) int {
	n := 0
	for _, item := range r.Items {
		if item.Outcome == outcome {
			n++
		}
	}
	return n
}

// BatchClean cleans every file independently and writes each result to
// outDir. A failing or emptied file is recorded and never stops the others;
// only cancellation of ctx aborts the run.
func (s *PipelineService) BatchClean(ctx context.Context, paths []string, outDir, format string) (*BatchReport, error) {
	startTime := time.Now()

	f, err := excel.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, errors.InvalidInput("no input files")
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create output directory %s", outDir)
	}

	report := &BatchReport{
		RunID: newRunID(),
		Items: make([]BatchItem, len(paths)),
	}
	outputs := outputNames(paths, f)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Batch.Parallelism)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			report.Items[i] = s.cleanFile(gctx, path, filepath.Join(outDir, outputs[i]), f)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report.Duration = time.Since(startTime)
	s.logger.Infof("Batch %s: %d files, %d cleaned, %d empty, %d failed in %v",
		report.RunID, len(paths), report.Count(BatchCleaned), report.Count(BatchEmpty), report.Count(BatchFailed), report.Duration)
	return report, nil
}

func (s *PipelineService) cleanFile(ctx context.Context, path, output string, f excel.Format) BatchItem {
	item := BatchItem{Path: path}
	fail := func(err error) BatchItem {
		item.Outcome = BatchFailed
		item.Error = err.Error()
		item.ErrorCode = errors.GetCode(err)
		s.logger.Warnf("Batch file %s failed: %v", path, err)
		return item
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fail(errors.Wrapf(err, "failed to read %s", path))
	}

	prepared, err := s.Prepare(ctx, PrepareRequest{Name: filepath.Base(path), Data: data})
	if err != nil {
		return fail(err)
	}
	item.SourceRows = prepared.Source.Len()
	item.KeptRows = prepared.Table.Len()

	if prepared.Empty() {
		item.Outcome = BatchEmpty
		item.Error = errors.EmptyAfterCleaning().Error()
		item.ErrorCode = errors.CodeEmptyAfterCleaning
		return item
	}

	file, err := s.Export(prepared, string(f))
	if err != nil {
		return fail(err)
	}
	if err := os.WriteFile(output, file.Data, 0o644); err != nil {
		return fail(errors.Wrapf(err, "failed to write %s", output))
	}

	item.Outcome = BatchCleaned
	item.Output = output
	s.logger.Debugf("Batch file %s -> %s (%d/%d rows kept)", path, output, item.KeptRows, item.SourceRows)
	return item
}

// outputNames derives "<base>_cleaned.<ext>" for each input, numbering
// inputs that share a base name
func outputNames(paths []string, f excel.Format) []string {
	names := make([]string, len(paths))
	seen := make(map[string]int, len(paths))
	for i, path := range paths {
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		seen[base]++
		if n := seen[base]; n > 1 {
			base = fmt.Sprintf("%s_%d", base, n)
		}
		names[i] = fmt.Sprintf("%s_cleaned.%s", base, f)
	}
	return names
}
