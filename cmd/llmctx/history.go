package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/llmctx/internal/model"
	"github.com/nao1215/llmctx/internal/report"
	"github.com/nao1215/llmctx/internal/store"
	"github.com/nao1215/llmctx/internal/workspace"
)

// defaultHistoryLimit is the number of snapshots listed by default.
const defaultHistoryLimit = 20

// absentValue marks a field missing from one side of a comparison.
const absentValue = "(absent)"

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List, show, compare and restore saved documents",
		Long: `History works with the snapshots recorded every time data.json is saved.

A save that produces the same document as the previous snapshot (apart
from the timestamp) is not recorded again.

Examples:
  # List the latest snapshots
  llmctx history

  # Print a snapshot
  llmctx history --show 2f0c1b9e-...

  # Show what changed between a snapshot and the current data.json
  llmctx history --compare 2f0c1b9e-...

  # Make a snapshot the current data.json again
  llmctx history --restore 2f0c1b9e-...`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", defaultHistoryLimit, "Number of snapshots to list (0 lists all)")
	cmd.Flags().StringP("show", "s", "", "Print the snapshot with this ID")
	cmd.Flags().String("compare", "", "Compare the snapshot with this ID to the current data.json")
	cmd.Flags().StringP("restore", "r", "", "Write the snapshot with this ID to data.json")
	cmd.MarkFlagsMutuallyExclusive("show", "compare", "restore")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	logger := setupLogger(cmd.ErrOrStderr(), cfg.Verbose)
	out := cmd.OutOrStdout()

	if cfg.HistoryDir == "" {
		return workspace.ErrHistoryDisabled
	}
	db, err := openHistory(cfg, false)
	if errors.Is(err, store.ErrDatabaseNotFound) {
		fmt.Fprintln(out, "No history found.")
		fmt.Fprintln(out, "\nUse 'llmctx generate' or 'llmctx serve' to save data.json.")
		return nil
	}
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := signalContext()
	defer cancel()

	flags := cmd.Flags()
	switch {
	case flags.Changed("show"):
		id, err := flags.GetString("show")
		if err != nil {
			return err
		}
		return showSnapshot(ctx, out, db, id)
	case flags.Changed("compare"):
		id, err := flags.GetString("compare")
		if err != nil {
			return err
		}
		ws := workspace.New(cfg.DataFile(), nil, workspace.WithLogger(logger))
		current, err := ws.Latest()
		if err != nil {
			return err
		}
		return compareSnapshot(ctx, out, db, id, current)
	case flags.Changed("restore"):
		id, err := flags.GetString("restore")
		if err != nil {
			return err
		}
		ws := workspace.New(cfg.DataFile(), nil, workspace.WithHistory(db), workspace.WithLogger(logger))
		return restoreSnapshot(ctx, out, ws, id)
	}

	limit, err := flags.GetInt("limit")
	if err != nil {
		return err
	}
	return listHistory(ctx, out, db, limit)
}

// listHistory prints the newest snapshots first.
func listHistory(ctx context.Context, w io.Writer, db *store.HistoryDB, limit int) error {
	metas, err := db.List(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to get history: %w", err)
	}

	if len(metas) == 0 {
		fmt.Fprintln(w, "No history found.")
		fmt.Fprintln(w, "\nUse 'llmctx generate' or 'llmctx serve' to save data.json.")
		return nil
	}

	fmt.Fprintf(w, "History (%d snapshots):\n\n", len(metas))
	fmt.Fprintf(w, "  %-36s  %-19s  %-10s  %s\n", "ID", "Saved", "OS", "IDE")
	fmt.Fprintln(w, "  "+strings.Repeat("-", 80))
	for _, m := range metas {
		fmt.Fprintf(w, "  %-36s  %-19s  %-10s  %s\n",
			m.ID,
			m.SavedAt.Local().Format(model.TimestampLayout),
			m.OS,
			m.IDE,
		)
	}

	fmt.Fprintln(w, "\nUse 'llmctx history --show <id>' to print a snapshot.")
	fmt.Fprintln(w, "Use 'llmctx history --restore <id>' to make it the current data.json.")
	return nil
}

// showSnapshot prints a snapshot in the data.json layout.
func showSnapshot(ctx context.Context, w io.Writer, db *store.HistoryDB, id string) error {
	snap, err := db.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get snapshot %s: %w", id, err)
	}
	_, err = report.NewJSONWriter(w, report.WithPrettyPrint()).Write(snap.Document)
	return err
}

// restoreSnapshot writes a snapshot to data.json.
func restoreSnapshot(ctx context.Context, w io.Writer, ws *workspace.Workspace, id string) error {
	doc, err := ws.Restore(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to restore snapshot %s: %w", id, err)
	}
	fmt.Fprintf(w, "Restored %s from snapshot %s (last updated %s)\n", ws.DataFile(), id, doc.Metadata.LastUpdated)
	return nil
}

// compareSnapshot prints the fields that differ between a snapshot and current.
func compareSnapshot(ctx context.Context, w io.Writer, db *store.HistoryDB, id string, current *model.Document) error {
	if current == nil {
		return errNoDocument
	}
	snap, err := db.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get snapshot %s: %w", id, err)
	}

	changes, err := diffDocuments(snap.Document, current)
	if err != nil {
		return err
	}
	changes = slices.DeleteFunc(changes, func(c fieldChange) bool {
		return c.Path == "metadata.last_updated"
	})

	fmt.Fprintf(w, "Snapshot %s (%s) vs current data.json (%s):\n\n",
		id, snap.Document.Metadata.LastUpdated, current.Metadata.LastUpdated)
	if len(changes) == 0 {
		fmt.Fprintln(w, "  No changes")
		return nil
	}
	for _, c := range changes {
		fmt.Fprintf(w, "  %s\n    - %s\n    + %s\n", c.Path, c.Old, c.New)
	}
	return nil
}

// fieldChange is one leaf value that differs between two documents.
type fieldChange struct {
	Path string
	Old  string
	New  string
}

// diffDocuments compares the JSON form of two documents leaf by leaf.
// Paths use the data.json keys joined with dots, in sorted order.
func diffDocuments(old, cur *model.Document) ([]fieldChange, error) {
	oldLeaves, err := documentLeaves(old)
	if err != nil {
		return nil, err
	}
	curLeaves, err := documentLeaves(cur)
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(oldLeaves)+len(curLeaves))
	for p := range oldLeaves {
		paths = append(paths, p)
	}
	for p := range curLeaves {
		if _, ok := oldLeaves[p]; !ok {
			paths = append(paths, p)
		}
	}
	slices.Sort(paths)

	var changes []fieldChange
	for _, p := range paths {
		o, inOld := oldLeaves[p]
		n, inCur := curLeaves[p]
		if inOld && inCur && o == n {
			continue
		}
		if !inOld {
			o = absentValue
		}
		if !inCur {
			n = absentValue
		}
		changes = append(changes, fieldChange{Path: p, Old: o, New: n})
	}
	return changes, nil
}

// documentLeaves flattens doc into path -> JSON-encoded value.
func documentLeaves(doc *model.Document) (map[string]string, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize document: %w", err)
	}
	var tree any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	leaves := make(map[string]string)
	var walk func(prefix string, v any)
	walk = func(prefix string, v any) {
		obj, ok := v.(map[string]any)
		if !ok || len(obj) == 0 {
			b, _ := json.Marshal(v) //nolint:errcheck // values came from json.Unmarshal
			leaves[prefix] = string(b)
			return
		}
		for k, child := range obj {
			path := k
			if prefix != "" {
				path = prefix + "." + k
			}
			walk(path, child)
		}
	}
	walk("", tree)
	return leaves, nil
}
