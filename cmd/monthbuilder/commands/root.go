package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/prayer-month-builder/internal/adapter/csvsource"
	"github.com/couchcryptid/prayer-month-builder/internal/adapter/filestore"
	kafkaadapter "github.com/couchcryptid/prayer-month-builder/internal/adapter/kafka"
	"github.com/couchcryptid/prayer-month-builder/internal/config"
	"github.com/couchcryptid/prayer-month-builder/internal/domain"
	"github.com/couchcryptid/prayer-month-builder/internal/observability"
	"github.com/couchcryptid/prayer-month-builder/internal/pipeline"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// Deps are the process resources the commands run against.
type Deps struct {
	Fs     afero.Fs
	Stdout io.Writer
	Stderr io.Writer
}

// DefaultDeps uses the real filesystem and standard streams.
func DefaultDeps() Deps {
	return Deps{Fs: afero.NewOsFs(), Stdout: os.Stdout, Stderr: os.Stderr}
}

// usageError marks a problem with the command line itself.
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// Execute runs the command tree and returns the process exit status.
func Execute(ctx context.Context, deps Deps) int {
	return ExecuteArgs(ctx, deps, os.Args[1:])
}

// ExecuteArgs is Execute with explicit arguments.
func ExecuteArgs(ctx context.Context, deps Deps, args []string) int {
	if args == nil {
		// cobra falls back to os.Args when given nil.
		args = []string{}
	}
	root := newRootCmd(deps)
	root.SetArgs(args)
	root.SetOut(deps.Stdout)
	root.SetErr(deps.Stderr)

	cmd, err := root.ExecuteContextC(ctx)
	if err == nil {
		return 0
	}

	fmt.Fprintln(deps.Stderr, "Error:", err)
	var ue *usageError
	if errors.As(err, &ue) {
		fmt.Fprint(deps.Stderr, cmd.UsageString())
	}
	return 1
}

func newRootCmd(deps Deps) *cobra.Command {
	var req domain.MonthRequest

	root := &cobra.Command{
		Use:   "monthbuilder <region> <year> <month> <timezone>",
		Short: "Build the signed prayer-times payload for one region and month",
		Long: `Reads data/<region>/<year>/<month>.csv, resolves every "HH:MM" value in the
given IANA timezone, and writes <region>/<year>/<month>.json and
<region>/latest.json with a SHA-256 digest.`,
		Example:       "  monthbuilder Fiji 2024 03 Pacific/Fiji",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(_ *cobra.Command, args []string) error {
			var err error
			req, err = parseBuildArgs(args)
			return err
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBuild(cmd.Context(), deps, req)
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{msg: err.Error()}
	})

	root.AddCommand(newVerifyCmd(deps))
	return root
}

// parseBuildArgs checks the four positional arguments. It does not touch the
// filesystem until the argument count is right.
func parseBuildArgs(args []string) (domain.MonthRequest, error) {
	if len(args) != 4 {
		return domain.MonthRequest{}, usagef("expected 4 arguments <region> <year> <month> <timezone>, got %d", len(args))
	}
	region, yearStr, month, tz := args[0], args[1], args[2], args[3]

	if region == "" || region == "." || region == ".." || strings.ContainsAny(region, `/\`) {
		return domain.MonthRequest{}, usagef("region %q must be a single path segment", region)
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return domain.MonthRequest{}, usagef("year %q is not a number", yearStr)
	}
	req, err := domain.NewMonthRequest(region, year, month, tz)
	if err != nil {
		return domain.MonthRequest{}, &usageError{msg: err.Error()}
	}
	return req, nil
}

func runBuild(ctx context.Context, deps Deps, req domain.MonthRequest) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	offsets := domain.DefaultRegionalOffsets()
	if cfg.RegionalOffsetsFile != "" {
		offsets, err = domain.LoadRegionalOffsets(deps.Fs, cfg.RegionalOffsetsFile)
		if err != nil {
			return err
		}
		logger.Info("regional offsets loaded", "path", cfg.RegionalOffsetsFile, "entries", len(offsets))
	}

	var publisher pipeline.Publisher
	if cfg.PublishEnabled() {
		w := kafkaadapter.NewWriter(cfg, logger)
		defer func() {
			if err := w.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		publisher = w
	}

	builder := pipeline.New(
		csvsource.NewReader(deps.Fs, logger),
		filestore.NewStore(deps.Fs, cfg.OutputDir, logger),
		publisher,
		pipeline.Settings{
			DataDir:         cfg.DataDir,
			PayloadVersion:  cfg.PayloadVersion,
			RegionalOffsets: offsets,
			PublishTimeout:  cfg.PublishTimeout,
		},
		logger,
		metrics,
	)

	res, buildErr := builder.Build(ctx, req)

	if cfg.MetricsTextfile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsTextfile); err != nil {
			logger.Warn("metrics not written", "error", err)
		}
	}
	if buildErr != nil {
		return buildErr
	}

	fmt.Fprintf(deps.Stdout, "Built %s\n", res.Paths.Month)
	fmt.Fprintf(deps.Stdout, "SHA-256: %s\n", res.SHA256)
	return nil
}
