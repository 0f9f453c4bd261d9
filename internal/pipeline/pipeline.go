package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"time"

	"github.com/couchcryptid/prayer-month-builder/internal/domain"
	"github.com/couchcryptid/prayer-month-builder/internal/observability"
)

// RowExtractor reads the month CSV.
type RowExtractor interface {
	ReadRows(path string) ([]domain.Row, error)
}

// OutputLoader writes the sealed payload to its published locations.
type OutputLoader interface {
	EnsureDir(req domain.MonthRequest) error
	WriteMonth(req domain.MonthRequest, data []byte) (domain.OutputPaths, error)
}

// Publisher announces a written month. Optional.
type Publisher interface {
	Publish(ctx context.Context, pub domain.Publication) error
}

// Settings are the per-process inputs that are not part of a single request.
type Settings struct {
	DataDir         string
	PayloadVersion  int
	RegionalOffsets []domain.RegionalOffset
	PublishTimeout  time.Duration
}

// Result describes a successful build.
type Result struct {
	Paths  domain.OutputPaths
	SHA256 string
	Days   int
}

// Builder runs the month build: resolve paths, parse, normalize, seal, write.
type Builder struct {
	extractor RowExtractor
	loader    OutputLoader
	publisher Publisher
	settings  Settings
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// New creates a Builder. Pass a nil publisher to skip publication notices.
func New(e RowExtractor, l OutputLoader, p Publisher, settings Settings, logger *slog.Logger, metrics *observability.Metrics) *Builder {
	return &Builder{
		extractor: e,
		loader:    l,
		publisher: p,
		settings:  settings,
		logger:    logger,
		metrics:   metrics,
	}
}

// SourcePath returns <dataDir>/<region>/<year>/<month>.csv.
func SourcePath(dataDir string, req domain.MonthRequest) string {
	return filepath.Join(dataDir, req.Region, strconv.Itoa(req.Year), req.Month+".csv")
}

// Build runs every stage once, in order. Nothing is written unless every row
// resolves; the output directory is the only side effect before parsing.
func (b *Builder) Build(ctx context.Context, req domain.MonthRequest) (Result, error) {
	start := time.Now()

	res, err := b.build(ctx, req)
	b.metrics.BuildDuration.WithLabelValues(req.Region).Set(time.Since(start).Seconds())
	if err != nil {
		b.metrics.BuildsTotal.WithLabelValues(req.Region, "failure").Inc()
		return Result{}, err
	}

	b.metrics.BuildsTotal.WithLabelValues(req.Region, "success").Inc()
	b.metrics.DaysBuilt.WithLabelValues(req.Region).Set(float64(res.Days))
	b.metrics.LastSuccessSeconds.WithLabelValues(req.Region).SetToCurrentTime()
	b.logger.Info("month built",
		"region", req.Region,
		"month", req.MonthKey(),
		"days", res.Days,
		"path", res.Paths.Month,
		"sha256", res.SHA256,
	)
	return res, nil
}

func (b *Builder) build(ctx context.Context, req domain.MonthRequest) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	if err := b.loader.EnsureDir(req); err != nil {
		return Result{}, err
	}

	source := SourcePath(b.settings.DataDir, req)
	rows, err := b.extractor.ReadRows(source)
	if err != nil {
		return Result{}, err
	}

	days, err := transformRows(req, rows)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", source, err)
	}
	b.logger.Debug("rows normalized", "source", source, "days", len(days), "timezone", req.Timezone)

	payload := domain.NewMonthPayload(req, b.settings.PayloadVersion, days, b.settings.RegionalOffsets)
	sum, err := domain.Seal(&payload)
	if err != nil {
		return Result{}, err
	}
	data, err := domain.CompactJSON(payload)
	if err != nil {
		return Result{}, err
	}

	paths, err := b.loader.WriteMonth(req, data)
	if err != nil {
		return Result{}, err
	}

	if b.publisher != nil {
		if err := b.publish(ctx, domain.NewPublication(payload, paths.Month)); err != nil {
			return Result{}, err
		}
	}

	return Result{Paths: paths, SHA256: sum, Days: len(days)}, nil
}

func (b *Builder) publish(ctx context.Context, pub domain.Publication) error {
	timeout := b.settings.PublishTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return b.publisher.Publish(ctx, pub)
}
