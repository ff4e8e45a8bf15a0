package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/edmv/pkg/config"
	"github.com/walteh/edmv/pkg/editor"
	"github.com/walteh/edmv/pkg/listing"
	"github.com/walteh/edmv/pkg/operation"
	"github.com/walteh/edmv/pkg/plan"
	"github.com/walteh/edmv/pkg/report"
)

var (
	// Flags
	configFile    string
	editorFlag    string
	deleteMarker  string
	includeHidden bool
	dryRun        bool
	debug         bool
	quiet         bool
)

// errAborted signals that diagnostics and the aborted notice were already
// printed; main only needs to set the exit status.
var errAborted = errors.New("aborted")

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edmv [path...]",
		Short: "Bulk-rename and delete files by editing their names in your editor",
		Long: `edmv writes the names of the given entries (or of everything in the
current directory) to a list, opens it in your editor, and applies the
edits as renames. A line equal to the deletion marker removes that entry
instead. Swaps and longer rename cycles are handled safely.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(setupLogging(cmd.Context()))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), args)
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", config.DefaultPath, "config file path")
	cmd.Flags().StringVarP(&editorFlag, "editor", "e", "", "editor command (default $VISUAL, then $EDITOR)")
	cmd.Flags().StringVar(&deleteMarker, "delete-marker", "", "line that marks an entry for deletion")
	cmd.Flags().BoolVarP(&includeHidden, "all", "a", false, "include hidden entries in the default listing")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "show the plan without changing anything")
	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress per-entry output")

	return cmd
}

// setupLogging configures zerolog based on flags and injects the logger
// into the context for zerolog.Ctx downstream.
func setupLogging(ctx context.Context) context.Context {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	return logger.WithContext(ctx)
}

// run drives the whole pipeline: collect, edit, validate, resolve,
// schedule, execute.
func run(ctx context.Context, args []string) error {
	rep := report.NewReporter()
	user := report.NewUserLogger(ctx, quiet)

	cfg, err := config.LoadConfig(ctx, configFile)
	if err != nil {
		return err
	}
	cfg.Resolve(config.Overrides{
		Editor:        editorFlag,
		DeleteMarker:  deleteMarker,
		IncludeHidden: includeHidden,
	})

	entries, err := listing.Collect(ctx, listing.Options{
		Args:           args,
		Stdin:          os.Stdin,
		StdinIsPipe:    stdinIsPipe(),
		IncludeHidden:  cfg.IncludeHidden,
		IgnorePatterns: cfg.IgnorePatterns,
	}, rep)
	if err != nil {
		return err
	}
	if rep.HasErrors() {
		rep.Flush(os.Stderr)
		return errAborted
	}
	if len(entries) == 0 {
		user.LogSummary(0, 0)
		return nil
	}

	session := editor.NewSession(cfg.Editor, cfg.DeleteMarker, nil)
	res, err := session.Edit(ctx, entries, config.IllegalNameRunes(), rep)
	if err != nil {
		rep.Flush(os.Stderr)
		return errAborted
	}

	if err := plan.Validate(ctx, res.Renames, res.Deletions, operation.OSFS{}, rep); err != nil {
		return err
	}
	if rep.HasErrors() {
		rep.Flush(os.Stderr)
		return errAborted
	}

	strategies := plan.Resolve(ctx, res.Renames)

	exec, err := operation.New(operation.Options{
		Deletions:  plan.ScheduleDeletions(res.Deletions),
		Strategies: plan.ScheduleStrategies(strategies),
		FS:         operation.OSFS{},
		User:       user,
		DryRun:     dryRun,
	})
	if err != nil {
		return err
	}

	summary, err := exec.Execute(ctx)
	if err != nil {
		kind := report.KindExec
		if errors.Is(err, operation.ErrInconsistent) {
			kind = report.KindInternal
		}
		rep.Add(kind, "", err.Error())
		rep.Flush(os.Stderr)
		return errAborted
	}

	if dryRun {
		user.LogPlannedSummary(summary.Renamed, summary.Deleted)
	} else {
		user.LogSummary(summary.Renamed, summary.Deleted)
	}
	return nil
}

// stdinIsPipe reports whether stdin carries a piped path list rather than
// the user's terminal.
func stdinIsPipe() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice == 0
}
