package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"villagerlink.ai/internal/persistence/indexdb"
	"villagerlink.ai/internal/sim/link"
)

const usage = `usage: admin <audits|links|scans|catalogs> [flags]`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err := run(context.Background(), os.Args[1], os.Args[2:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd string, args []string, out io.Writer) error {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	dbPath := fs.String("db", "", "sqlite db path (default: <data>/index/linker.sqlite)")
	agent := fs.String("agent", "", "agent id prefix (audits)")
	action := fs.String("action", "", "audit action filter (audits)")
	since := fs.Uint64("since_tick", 0, "first tick (audits)")
	limit := fs.Int("limit", 20, "result limit (audits)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	path := strings.TrimSpace(*dbPath)
	if path == "" {
		path = filepath.Join(*dataDir, "index", "linker.sqlite")
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("open index: %w", err)
	}
	db, err := indexdb.Open(path)
	if err != nil {
		return fmt.Errorf("open index: %w", err)
	}
	defer db.Close()

	switch cmd {
	case "audits":
		return auditsCmd(ctx, db, indexdb.AuditFilter{Agent: *agent, Action: *action, Since: *since, Limit: *limit}, out)
	case "links":
		return linksCmd(ctx, db, out)
	case "scans":
		return scansCmd(ctx, db, out)
	case "catalogs":
		return catalogsCmd(ctx, db, out)
	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
}

func auditsCmd(ctx context.Context, db *sql.DB, f indexdb.AuditFilter, out io.Writer) error {
	entries, err := indexdb.QueryAudits(ctx, db, f)
	if err != nil {
		return fmt.Errorf("query audits: %w", err)
	}
	for _, e := range entries {
		fmt.Fprintf(out, "%d\t%s\t%s\t%s\t%s\t%s\t%.1f,%.1f,%.1f\t%s\n",
			e.Tick, e.Action, link.AgentID(e.Agent).Short(), e.Operator, e.Anchor, e.World, e.Pos[0], e.Pos[1], e.Pos[2], e.Reason)
	}
	return nil
}

func linksCmd(ctx context.Context, db *sql.DB, out io.Writer) error {
	rows, err := indexdb.QueryLinks(ctx, db)
	if err != nil {
		return fmt.Errorf("query links: %w", err)
	}
	for _, r := range rows {
		fmt.Fprintf(out, "%s\t%s\t%s\t%.1f,%.1f,%.1f\ttick=%d\top=%s\n",
			r.Agent, r.Anchor, r.World, r.Pos[0], r.Pos[1], r.Pos[2], r.Tick, r.Operator)
	}
	return nil
}

func scansCmd(ctx context.Context, db *sql.DB, out io.Writer) error {
	s, err := indexdb.QueryScanSummary(ctx, db)
	if err != nil {
		return fmt.Errorf("query scans: %w", err)
	}
	fmt.Fprintf(out, "runs=%d changed=%d triggered=%d suppressed=%d cleared=%d last_tick=%d\n",
		s.Runs, s.Changed, s.Triggered, s.Suppressed, s.Cleared, s.LastTick)
	return nil
}

func catalogsCmd(ctx context.Context, db *sql.DB, out io.Writer) error {
	rows, err := db.QueryContext(ctx, `SELECT name, digest, updated_at FROM catalogs ORDER BY name`)
	if err != nil {
		return fmt.Errorf("query catalogs: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name, digest, updated string
		if err := rows.Scan(&name, &digest, &updated); err != nil {
			return err
		}
		if len(digest) > 12 {
			digest = digest[:12]
		}
		fmt.Fprintf(out, "%s\t%s\t%s\n", name, digest, updated)
	}
	return rows.Err()
}
