// Package scan walks a component library folder, extracts a record for
// every candidate source file, and feeds the records into the retrieval
// pipeline for indexing.
package scan

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/componentry/compodex/internal/domain"
	"github.com/componentry/compodex/internal/domain/component"
	"github.com/componentry/compodex/internal/metrics"
)

// skipDirs are directory names never descended into.
var skipDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	"dist":         true,
	"build":        true,
	".next":        true,
	"coverage":     true,
}

// componentExts are the extensions considered for indexing. For .ts and
// .js the base name must additionally start with an uppercase letter,
// since lowercase files in those extensions are overwhelmingly utilities.
var componentExts = map[string]bool{
	".tsx": true,
	".jsx": true,
	".ts":  true,
	".js":  true,
}

// storyExts is the probe order for correlating a storybook file with a
// component source file.
var storyExts = []string{".tsx", ".ts", ".jsx", ".js"}

// Request controls a single scan run.
type Request struct {
	Folder            string
	IncludeStorybooks bool
	IncludeTests      bool
	Recursive         bool
}

// Report summarizes one scan run. Errors holds one message per file that
// failed extraction or indexing; a failing file never aborts the run.
type Report struct {
	ComponentsFound int                   `json:"components_found"`
	Components      []component.Component `json:"components"`
	Errors          []string              `json:"errors,omitempty"`
}

// Service implements the scanner over an extractor and the pipeline.
type Service struct {
	extractor Extractor
	indexer   Indexer
	logger    *zap.Logger
}

// New creates a scanner service.
func New(extractor Extractor, indexer Indexer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		extractor: extractor,
		indexer:   indexer,
		logger:    logger,
	}
}

// Scan walks req.Folder, extracts every candidate component file, and
// indexes the results. The returned report lists what was indexed and
// which files failed; the error return covers only whole-run failures
// such as a missing folder.
func (s *Service) Scan(ctx context.Context, req Request) (Report, error) {
	info, err := os.Stat(req.Folder)
	if err != nil {
		return Report{}, fmt.Errorf("%w: folder %q: %v", domain.ErrValidation, req.Folder, err)
	}
	if !info.IsDir() {
		return Report{}, fmt.Errorf("%w: %q is not a directory", domain.ErrValidation, req.Folder)
	}

	files, err := s.collect(req)
	if err != nil {
		return Report{}, fmt.Errorf("walk folder: %w", err)
	}

	report := Report{Components: []component.Component{}}

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		storyPath := ""
		if req.IncludeStorybooks {
			storyPath = findStorybook(path)
		}

		c, err := s.extractor.Extract(path, storyPath)
		if err != nil {
			s.recordFailure(&report, path, err)
			continue
		}

		if err := s.indexer.AddComponent(ctx, &c); err != nil {
			s.recordFailure(&report, path, err)
			continue
		}

		metrics.ScanFilesTotal.WithLabelValues("indexed").Inc()
		report.Components = append(report.Components, c)
		report.ComponentsFound++
	}

	s.logger.Info("scan complete",
		zap.String("folder", req.Folder),
		zap.Int("indexed", report.ComponentsFound),
		zap.Int("errors", len(report.Errors)))

	return report, nil
}

// Rescan re-extracts a single file and replaces its existing index entry.
// The component keeps whatever identity the extractor assigns; callers
// that need stable ids should pass files previously indexed by id-stable
// extractors.
func (s *Service) Rescan(ctx context.Context, filePath string) (component.Component, error) {
	if strings.TrimSpace(filePath) == "" {
		return component.Component{}, fmt.Errorf("%w: file path is required", domain.ErrValidation)
	}
	if _, err := os.Stat(filePath); err != nil {
		return component.Component{}, fmt.Errorf("%w: file %q: %v", domain.ErrValidation, filePath, err)
	}

	c, err := s.extractor.Extract(filePath, findStorybook(filePath))
	if err != nil {
		metrics.ScanFilesTotal.WithLabelValues("error").Inc()
		return component.Component{}, fmt.Errorf("extract %s: %w", filePath, err)
	}

	if err := s.indexer.UpdateComponent(ctx, &c); err != nil {
		metrics.ScanFilesTotal.WithLabelValues("error").Inc()
		return component.Component{}, err
	}

	metrics.ScanFilesTotal.WithLabelValues("indexed").Inc()
	return c, nil
}

func (s *Service) recordFailure(report *Report, path string, err error) {
	metrics.ScanFilesTotal.WithLabelValues("error").Inc()
	report.Errors = append(report.Errors, fmt.Sprintf("error processing %s: %v", path, err))
	s.logger.Warn("scan file failed", zap.String("path", path), zap.Error(err))
}

// collect gathers candidate files in lexicographic order.
func (s *Service) collect(req Request) ([]string, error) {
	var files []string

	if !req.Recursive {
		entries, err := os.ReadDir(req.Folder)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if isCandidate(entry.Name(), req.IncludeTests) {
				files = append(files, filepath.Join(req.Folder, entry.Name()))
			}
		}
		return files, nil
	}

	err := filepath.WalkDir(req.Folder, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if isCandidate(d.Name(), req.IncludeTests) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// isCandidate decides whether a file name looks like a component source
// file worth extracting.
func isCandidate(name string, includeTests bool) bool {
	lower := strings.ToLower(name)

	if strings.HasSuffix(lower, ".d.ts") {
		return false
	}
	if strings.Contains(lower, ".stories.") {
		return false
	}
	if !includeTests && (strings.Contains(lower, ".test.") || strings.Contains(lower, ".spec.")) {
		return false
	}

	ext := filepath.Ext(name)
	if !componentExts[ext] {
		return false
	}

	if ext == ".ts" || ext == ".js" {
		base := strings.TrimSuffix(name, ext)
		if base == "" {
			return false
		}
		first := []rune(base)[0]
		return unicode.IsUpper(first)
	}

	return true
}

// findStorybook probes for a sibling storybook file, preferring .tsx.
func findStorybook(componentPath string) string {
	ext := filepath.Ext(componentPath)
	stem := strings.TrimSuffix(componentPath, ext)

	for _, se := range storyExts {
		candidate := stem + ".stories" + se
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}
