package indexdb

import (
	"context"
	"database/sql"
	"strings"

	"villagerlink.ai/internal/sim/link"
)

type AuditFilter struct {
	Agent  string
	Action string
	Since  uint64
	Limit  int
}

// QueryAudits returns matching audit entries, newest first.
func QueryAudits(ctx context.Context, db *sql.DB, f AuditFilter) ([]link.AuditEntry, error) {
	var where []string
	var args []any
	if f.Agent != "" {
		where = append(where, "agent LIKE ?")
		args = append(args, f.Agent+"%")
	}
	if f.Action != "" {
		where = append(where, "action = ?")
		args = append(args, strings.ToUpper(f.Action))
	}
	if f.Since > 0 {
		where = append(where, "tick >= ?")
		args = append(args, int64(f.Since))
	}
	q := `SELECT tick,action,operator,agent,anchor,world,x,y,z,COALESCE(reason,'') FROM audits`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY tick DESC, seq DESC"
	if f.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []link.AuditEntry
	for rows.Next() {
		var e link.AuditEntry
		var tick int64
		if err := rows.Scan(&tick, &e.Action, &e.Operator, &e.Agent, &e.Anchor, &e.World, &e.Pos[0], &e.Pos[1], &e.Pos[2], &e.Reason); err != nil {
			return nil, err
		}
		e.Tick = uint64(tick)
		out = append(out, e)
	}
	return out, rows.Err()
}

// LinkRow is the latest operator link recorded for one agent anchor.
type LinkRow struct {
	Agent    string
	Anchor   string
	Operator string
	World    string
	Pos      [3]float64
	Tick     uint64
}

func QueryLinks(ctx context.Context, db *sql.DB) ([]LinkRow, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT a.agent, a.anchor, a.operator, a.world, a.x, a.y, a.z, a.tick
		FROM audits a
		JOIN (
			SELECT agent, anchor, MAX(tick * 1000000 + seq) AS k
			FROM audits WHERE action = 'LINK' GROUP BY agent, anchor
		) latest ON latest.agent = a.agent AND latest.anchor = a.anchor AND latest.k = a.tick * 1000000 + a.seq
		WHERE a.action = 'LINK'
		ORDER BY a.agent, a.anchor`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []LinkRow
	for rows.Next() {
		var r LinkRow
		var tick int64
		if err := rows.Scan(&r.Agent, &r.Anchor, &r.Operator, &r.World, &r.Pos[0], &r.Pos[1], &r.Pos[2], &tick); err != nil {
			return nil, err
		}
		r.Tick = uint64(tick)
		out = append(out, r)
	}
	return out, rows.Err()
}

type ScanSummary struct {
	Runs       int
	Changed    int
	Triggered  int
	Suppressed int
	Cleared    int
	LastTick   uint64
}

func QueryScanSummary(ctx context.Context, db *sql.DB) (ScanSummary, error) {
	var s ScanSummary
	var last int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(changed),0), COALESCE(SUM(triggered),0),
		COALESCE(SUM(suppressed),0), COALESCE(SUM(cleared),0), COALESCE(MAX(tick),0) FROM scans`).
		Scan(&s.Runs, &s.Changed, &s.Triggered, &s.Suppressed, &s.Cleared, &last)
	s.LastTick = uint64(last)
	return s, err
}
