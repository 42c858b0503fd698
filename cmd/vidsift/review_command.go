package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"vidsift/internal/config"
	"vidsift/internal/executor"
	"vidsift/internal/grouping"
	"vidsift/internal/report"
	"vidsift/internal/selection"
	"vidsift/internal/session"
)

func newReviewCommand(ctx *commandContext) *cobra.Command {
	var modeFlag string

	cmd := &cobra.Command{
		Use:   "review <directory>",
		Short: "Interactively review and resolve duplicate groups",
		Long: `Review scans the directory, then drops into a prompt where duplicate
selections can be inspected and adjusted before applying the action mode.
Commands: list, auto, toggle <group>.<rank>, summary, apply, report, quit.`,
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
			modeValue := cfg.Execution.Mode
			if cmd.Flags().Changed("mode") {
				modeValue = modeFlag
			}
			mode, err := executor.ParseMode(modeValue, cfg.Execution.MoveDest)
			if err != nil {
				return err
			}

			probeCache, closeCache, err := ctx.openCache(logger)
			if err != nil {
				return err
			}
			defer closeCache()

			sess, err := session.New(cfg, probeCache, logger)
			if err != nil {
				return err
			}
			if _, _, err := sess.ScanAndGroup(cmd.Context(), args[0]); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			duplicates := sess.Duplicates()
			if len(duplicates) == 0 {
				fmt.Fprintln(out, "No duplicate groups found.")
				renderUnreadable(out, sess.Unreadable())
				return nil
			}

			loop := &reviewLoop{
				cfg:      cfg,
				sess:     sess,
				out:      out,
				prompt:   supportsInteractive(cmd.InOrStdin(), out),
				executor: executor.New(mode, cfg.Paths.CacheDir, logger),
			}
			return loop.run(cmd.Context(), cmd.InOrStdin())
		},
	}

	cmd.Flags().StringVar(&modeFlag, "mode", "", "Action mode: dry-run, move:<dest>, or delete")
	return cmd
}

type reviewLoop struct {
	cfg      *config.Config
	sess     *session.Session
	out      io.Writer
	prompt   bool
	executor *executor.Executor
}

func (l *reviewLoop) run(cmdCtx context.Context, in io.Reader) error {
	snapshot, err := l.sess.Snapshot()
	if err != nil {
		return err
	}
	renderGroups(l.out, l.sess.Duplicates(), snapshot, l.sess.DisplayTitle)
	fmt.Fprintln(l.out, `Type "help" for commands.`)

	reader := bufio.NewScanner(in)
	for {
		if l.prompt {
			fmt.Fprint(l.out, "vidsift> ")
		}
		if !reader.Scan() {
			return reader.Err()
		}
		fields := strings.Fields(reader.Text())
		if len(fields) == 0 {
			continue
		}
		done, err := l.dispatch(cmdCtx, fields[0], fields[1:])
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

func (l *reviewLoop) dispatch(cmdCtx context.Context, command string, args []string) (bool, error) {
	switch command {
	case "help", "h":
		fmt.Fprintln(l.out, "list            show duplicate groups and selection states")
		fmt.Fprintln(l.out, "auto [group]    select the lower quality members, everywhere or in one group")
		fmt.Fprintln(l.out, "toggle <g>.<r>  flip selection of rank r in group g")
		fmt.Fprintln(l.out, "summary         show aggregate statistics")
		fmt.Fprintln(l.out, "apply           finalize and run the action mode")
		fmt.Fprintln(l.out, "report          write a JSON report")
		fmt.Fprintln(l.out, "quit            leave without acting")
	case "list", "l":
		snapshot, err := l.sess.Snapshot()
		if err != nil {
			return false, err
		}
		renderGroups(l.out, l.sess.Duplicates(), snapshot, l.sess.DisplayTitle)
	case "auto", "a":
		if len(args) == 1 {
			groupID, err := strconv.Atoi(args[0])
			if err != nil {
				fmt.Fprintln(l.out, "usage: auto [group]")
				return false, nil
			}
			if _, err := l.sess.AutoSelectGroup(groupID); err != nil {
				fmt.Fprintf(l.out, "auto failed: %v\n", err)
				return false, nil
			}
			fmt.Fprintf(l.out, "Lower quality members selected in group %d.\n", groupID)
			return false, nil
		}
		if _, err := l.sess.AutoSelect(); err != nil {
			return false, err
		}
		fmt.Fprintln(l.out, "Lower quality members selected.")
	case "toggle", "t":
		if len(args) != 1 {
			fmt.Fprintln(l.out, "usage: toggle <group>.<rank>")
			return false, nil
		}
		l.toggle(args[0])
	case "summary", "s":
		renderSummary(l.out, l.sess.Summary())
	case "apply", "x":
		return true, l.apply(cmdCtx)
	case "report", "r":
		rep, err := report.Build(l.sess, nil)
		if err != nil {
			return false, err
		}
		path, err := report.Save(l.cfg.Paths.ReportDir, rep)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(l.out, "Report written to %s\n", path)
	case "quit", "q", "done":
		return true, nil
	default:
		fmt.Fprintf(l.out, "unknown command %q; type \"help\"\n", command)
	}
	return false, nil
}

// toggle resolves a "<group>.<rank>" reference and flips that member.
// Constraint violations are reported, never fatal.
func (l *reviewLoop) toggle(ref string) {
	member, ok := l.resolveMember(ref)
	if !ok {
		fmt.Fprintf(l.out, "no member %q; use <group>.<rank> as shown by list\n", ref)
		return
	}
	if _, err := l.sess.Toggle(member.Path); err != nil {
		var violation *selection.ConstraintViolation
		if errors.As(err, &violation) {
			fmt.Fprintf(l.out, "refused: %v\n", violation)
			return
		}
		fmt.Fprintf(l.out, "toggle failed: %v\n", err)
		return
	}
	snapshot, err := l.sess.Snapshot()
	if err != nil {
		fmt.Fprintf(l.out, "snapshot failed: %v\n", err)
		return
	}
	fmt.Fprintf(l.out, "%s is now %s\n", member.Path, snapshot.States[member.Path])
}

func (l *reviewLoop) resolveMember(ref string) (grouping.Member, bool) {
	groupStr, rankStr, found := strings.Cut(ref, ".")
	if !found {
		return grouping.Member{}, false
	}
	groupID, err := strconv.Atoi(groupStr)
	if err != nil {
		return grouping.Member{}, false
	}
	rank, err := strconv.Atoi(rankStr)
	if err != nil || rank < 1 {
		return grouping.Member{}, false
	}
	for _, group := range l.sess.Duplicates() {
		if group.ID == groupID && rank <= len(group.Members) {
			return group.Members[rank-1], true
		}
	}
	return grouping.Member{}, false
}

func (l *reviewLoop) apply(cmdCtx context.Context) error {
	snapshot, err := l.sess.Finalize()
	if err != nil {
		return err
	}
	if len(snapshot.SelectedPaths()) == 0 {
		fmt.Fprintln(l.out, "Nothing selected; no actions to run.")
		return nil
	}
	result, err := l.executor.Execute(cmdCtx, snapshot, l.sess.Records())
	if err != nil {
		return err
	}
	renderExecution(l.out, result)
	return nil
}
