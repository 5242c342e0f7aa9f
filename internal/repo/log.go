package repo

import (
	"fmt"
	"strings"
	"time"

	"github.com/systemshift/gitlet/internal/dag"
	"github.com/systemshift/gitlet/internal/errs"
	"github.com/systemshift/gitlet/internal/stage"
	"github.com/systemshift/gitlet/internal/worktree"
)

// DateLayout is the timestamp format of log entries.
const DateLayout = "Mon Jan 02 15:04:05 2006 -0700"

// LogEntry is one commit as shown by log and global-log.
type LogEntry struct {
	ID        dag.ID
	Parents   []dag.ID
	Timestamp time.Time
	Message   string
}

func entryOf(id dag.ID, c *dag.Commit) LogEntry {
	return LogEntry{ID: id, Parents: c.Parents, Timestamp: c.Timestamp, Message: c.Message}
}

// FormatEntry renders e with its timestamp in loc.
func FormatEntry(e LogEntry, loc *time.Location) string {
	var b strings.Builder
	b.WriteString("===\n")
	fmt.Fprintf(&b, "commit %s\n", e.ID)
	if len(e.Parents) > 1 {
		fmt.Fprintf(&b, "Merge: %s %s\n", e.Parents[0].Short(7), e.Parents[1].Short(7))
	}
	fmt.Fprintf(&b, "Date: %s\n", e.Timestamp.In(loc).Format(DateLayout))
	b.WriteString(e.Message)
	b.WriteString("\n")
	return b.String()
}

// Log returns the first-parent history of the head commit, newest first.
func (r *Repository) Log() ([]LogEntry, error) {
	var out []LogEntry
	for id := r.state.Head; !id.IsZero(); {
		c, err := r.Store.GetCommit(id)
		if err != nil {
			return nil, fmt.Errorf("log %s: %w", id.Short(7), err)
		}
		out = append(out, entryOf(id, c))
		id = c.Parent()
	}
	return out, nil
}

// GlobalLog returns every commit in the store, in store order.
func (r *Repository) GlobalLog() ([]LogEntry, error) {
	ids, err := r.Store.List(dag.KindCommit)
	if err != nil {
		return nil, err
	}
	out := make([]LogEntry, 0, len(ids))
	for _, id := range ids {
		c, err := r.Store.GetCommit(id)
		if err != nil {
			return nil, fmt.Errorf("global-log %s: %w", id.Short(7), err)
		}
		out = append(out, entryOf(id, c))
	}
	return out, nil
}

// Find returns the commits whose message is exactly message.
func (r *Repository) Find(message string) ([]dag.ID, error) {
	entries, err := r.GlobalLog()
	if err != nil {
		return nil, err
	}
	var out []dag.ID
	for _, e := range entries {
		if e.Message == message {
			out = append(out, e.ID)
		}
	}
	if len(out) == 0 {
		return nil, errs.NotFound("Found no commit with that message.")
	}
	return out, nil
}

// StatusReport is the status of the branches, stage and working directory.
type StatusReport struct {
	Branches []string
	Current  string
	stage.Status
}

// Status derives the status lists. It reads the working directory but
// changes nothing.
func (r *Repository) Status() (StatusReport, error) {
	branches, err := r.Branches.List()
	if err != nil {
		return StatusReport{}, err
	}
	head, err := r.HeadCommit()
	if err != nil {
		return StatusReport{}, err
	}
	snap, err := worktree.Snapshot(r.work)
	if err != nil {
		return StatusReport{}, err
	}
	return StatusReport{
		Branches: branches,
		Current:  r.state.Branch,
		Status:   r.stage.Status(head.Tree, snap),
	}, nil
}
