package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/systemshift/gitlet/internal/repo"
)

func init() {
	rootCmd.AddCommand(
		initCmd, addCmd, rmCmd, commitCmd, logCmd, globalLogCmd, findCmd,
		statusCmd, checkoutCmd, branchCmd, rmBranchCmd, resetCmd, mergeCmd,
	)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a repository with an initial commit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := repo.Init(workDir, repo.WithLogger(logger))
		return err
	},
}

var addCmd = &cobra.Command{
	Use:   "add <file>",
	Short: "Stage a file's current content",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}
		return r.Add(args[0])
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <file>",
	Short: "Unstage a file and stop tracking it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}
		return r.Remove(args[0])
	},
}

var commitCmd = &cobra.Command{
	Use:   "commit <message>",
	Short: "Record the staged changes",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}
		var msg string
		if len(args) == 1 {
			msg = args[0]
		}
		_, err = r.Commit(msg)
		return err
	},
}

func printEntries(cmd *cobra.Command, entries []repo.LogEntry) {
	for _, e := range entries {
		fmt.Fprintln(cmd.OutOrStdout(), repo.FormatEntry(e, time.Local))
	}
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show the history of the head commit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}
		entries, err := r.Log()
		if err != nil {
			return err
		}
		printEntries(cmd, entries)
		return nil
	},
}

var globalLogCmd = &cobra.Command{
	Use:   "global-log",
	Short: "Show every commit ever made",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}
		entries, err := r.GlobalLog()
		if err != nil {
			return err
		}
		printEntries(cmd, entries)
		return nil
	},
}

var findCmd = &cobra.Command{
	Use:   "find <message>",
	Short: "Print the ids of commits with the given message",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}
		ids, err := r.Find(args[0])
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Fprintln(cmd.OutOrStdout(), id)
		}
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show branches, staged changes and working directory state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}
		st, err := r.Status()
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), formatStatus(st))
		return nil
	},
}

var checkoutCmd = &cobra.Command{
	Use:   "checkout [<commit>] -- <file> | checkout <branch>",
	Short: "Restore a file from a commit or switch branches",
	Long: `checkout -- <file>             restore file from the head commit
checkout <commit> -- <file>    restore file from a commit (prefix allowed)
checkout <branch>              switch to branch`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dash := cmd.ArgsLenAtDash()
		switch {
		case dash == 0 && len(args) == 1:
		case dash == 1 && len(args) == 2:
		case dash < 0 && len(args) == 1:
		default:
			return fmt.Errorf("incorrect operands")
		}
		r, err := openRepo()
		if err != nil {
			return err
		}
		switch dash {
		case 0:
			return r.CheckoutFile(repo.HeadRef, args[0])
		case 1:
			return r.CheckoutFile(args[0], args[1])
		default:
			return r.CheckoutBranch(args[0])
		}
	},
}

var branchCmd = &cobra.Command{
	Use:   "branch <name>",
	Short: "Create a branch at the head commit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}
		return r.CreateBranch(args[0])
	},
}

var rmBranchCmd = &cobra.Command{
	Use:   "rm-branch <name>",
	Short: "Delete a branch pointer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}
		return r.RemoveBranch(args[0])
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset <commit>",
	Short: "Check out every file of a commit and make it the head",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}
		return r.Reset(args[0])
	},
}

var mergeCmd = &cobra.Command{
	Use:   "merge <branch>",
	Short: "Merge a branch into the current branch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}
		res, err := r.Merge(args[0])
		if err != nil {
			return err
		}
		if msg := mergeMessage(res); msg != "" {
			fmt.Fprintln(cmd.OutOrStdout(), msg)
		}
		return nil
	},
}

func mergeMessage(res repo.MergeResult) string {
	switch {
	case res.Outcome == repo.AlreadyAncestor:
		return "Given branch is an ancestor of the current branch."
	case res.Outcome == repo.FastForward:
		return "Current branch fast-forwarded."
	case res.Conflicted():
		return "Encountered a merge conflict."
	default:
		return ""
	}
}
