package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vidsift/internal/executor"
	"vidsift/internal/report"
	"vidsift/internal/scanner"
	"vidsift/internal/session"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var (
		thresholdFlag float64
		modeFlag      string
		autoFlag      bool
		applyFlag     bool
		reportFlag    bool
		jsonFlag      bool
		noCacheFlag   bool
	)

	cmd := &cobra.Command{
		Use:   "scan <directory>",
		Short: "Scan a directory tree for duplicate videos",
		Long: `Scan walks the directory tree, probes each video file, groups probable
duplicates, and ranks every group by quality. With --auto the lower quality
members are selected; with --apply the configured action mode runs against
the selection.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("threshold") {
				cfg.Similarity.Threshold = thresholdFlag
			}
			modeValue := cfg.Execution.Mode
			if cmd.Flags().Changed("mode") {
				modeValue = modeFlag
			}
			mode, err := executor.ParseMode(modeValue, cfg.Execution.MoveDest)
			if err != nil {
				return err
			}

			var probeCache scanner.Cache
			closeCache := func() {}
			if !noCacheFlag {
				probeCache, closeCache, err = ctx.openCache(logger)
				if err != nil {
					return err
				}
			}
			defer closeCache()

			sess, err := session.New(cfg, probeCache, logger)
			if err != nil {
				return err
			}
			if _, _, err := sess.ScanAndGroup(cmd.Context(), args[0]); err != nil {
				return err
			}
			if autoFlag || applyFlag {
				if _, err := sess.AutoSelect(); err != nil {
					return err
				}
			}

			var execution *executor.Result
			if applyFlag {
				snapshot, err := sess.Finalize()
				if err != nil {
					return err
				}
				exec := executor.New(mode, cfg.Paths.CacheDir, logger)
				result, err := exec.Execute(cmd.Context(), snapshot, sess.Records())
				if err != nil {
					return err
				}
				execution = &result
			}

			if jsonFlag {
				rep, err := report.Build(sess, execution)
				if err != nil {
					return err
				}
				if err := writeJSON(cmd, rep); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				snapshot, err := sess.Snapshot()
				if err != nil {
					return err
				}
				renderGroups(out, sess.Duplicates(), snapshot, sess.DisplayTitle)
				renderUnreadable(out, sess.Unreadable())
				renderSummary(out, sess.Summary())
				if execution != nil {
					renderExecution(out, *execution)
				}
			}

			if reportFlag {
				rep, err := report.Build(sess, execution)
				if err != nil {
					return err
				}
				path, err := report.Save(cfg.Paths.ReportDir, rep)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&thresholdFlag, "threshold", 0, "Similarity threshold override (0.0-1.0)")
	cmd.Flags().StringVar(&modeFlag, "mode", "", "Action mode: dry-run, move:<dest>, or delete")
	cmd.Flags().BoolVar(&autoFlag, "auto", false, "Auto-select the lower quality member of every group")
	cmd.Flags().BoolVar(&applyFlag, "apply", false, "Auto-select and run the action mode against the selection")
	cmd.Flags().BoolVar(&reportFlag, "report", false, "Write a JSON report to the report directory")
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Print the full report as JSON instead of tables")
	cmd.Flags().BoolVar(&noCacheFlag, "no-cache", false, "Skip the probe result cache")
	return cmd
}
