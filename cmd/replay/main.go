package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	persistlog "villagerlink.ai/internal/persistence/log"
	"villagerlink.ai/internal/sim/link"
)

func main() {
	var (
		dataDir    = flag.String("data", "./data", "runtime data directory")
		auditDir   = flag.String("audit", "", "audit dir containing audit-*.jsonl.zst (default: <data>/audit)")
		agent      = flag.String("agent", "", "only entries for agents with this id prefix")
		fromTick   = flag.Uint64("from_tick", 0, "first tick (inclusive, optional)")
		toTick     = flag.Uint64("to_tick", 0, "last tick (inclusive, optional)")
		schemaPath = flag.String("schema", "", "validate every entry against this JSON schema (optional)")
		verbose    = flag.Bool("v", false, "print every matching entry")
	)
	flag.Parse()

	dir := *auditDir
	if dir == "" {
		dir = filepath.Join(*dataDir, "audit")
	}
	files, err := listAuditFiles(dir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "list audit:", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "no audit files found in", dir)
		os.Exit(1)
	}

	r := replayer{agent: *agent, from: *fromTick, to: *toTick}
	if *schemaPath != "" {
		if r.schema, err = jsonschema.Compile(*schemaPath); err != nil {
			fmt.Fprintln(os.Stderr, "compile schema:", err)
			os.Exit(1)
		}
	}
	if *verbose {
		r.onEntry = func(e link.AuditEntry) {
			fmt.Printf("%8d %-9s agent=%s op=%s anchor=%s world=%s pos=%v %s\n",
				e.Tick, e.Action, link.AgentID(e.Agent).Short(), e.Operator, e.Anchor, e.World, e.Pos, e.Reason)
		}
	}
	for _, path := range files {
		if err := r.replayFile(path); err != nil {
			fmt.Fprintln(os.Stderr, "replay:", err)
			os.Exit(1)
		}
	}
	r.print()
}

func listAuditFiles(dir string) ([]string, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ents))
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, "audit-") && strings.HasSuffix(name, ".jsonl.zst") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, filepath.Join(dir, name))
	}
	return out, nil
}

type linkKey struct {
	agent  string
	anchor string
}

// replayer folds audit entries into per-action counts and the links that
// were in force at the end of the range.
type replayer struct {
	agent    string
	from, to uint64
	schema   *jsonschema.Schema
	onEntry  func(e link.AuditEntry)

	entries  int
	byAction map[string]int
	links    map[linkKey]link.AuditEntry
	lastTick uint64
}

func (r *replayer) replayFile(path string) error {
	if r.byAction == nil {
		r.byAction = map[string]int{}
		r.links = map[linkKey]link.AuditEntry{}
	}
	line := 0
	return persistlog.ReadJSONL(path, func(b []byte) error {
		line++
		if r.schema != nil {
			var doc any
			if err := json.Unmarshal(b, &doc); err != nil {
				return fmt.Errorf("%s:%d: %w", filepath.Base(path), line, err)
			}
			if err := r.schema.Validate(doc); err != nil {
				return fmt.Errorf("%s:%d: %w", filepath.Base(path), line, err)
			}
		}
		var e link.AuditEntry
		if err := json.Unmarshal(b, &e); err != nil {
			return fmt.Errorf("%s:%d: unmarshal: %w", filepath.Base(path), line, err)
		}
		if e.Tick < r.from || (r.to != 0 && e.Tick > r.to) {
			return nil
		}
		if r.agent != "" && !strings.HasPrefix(e.Agent, r.agent) {
			return nil
		}
		r.entries++
		r.byAction[e.Action]++
		if e.Tick > r.lastTick {
			r.lastTick = e.Tick
		}
		if e.Action == link.AuditLink {
			r.links[linkKey{agent: e.Agent, anchor: e.Anchor}] = e
		}
		if r.onEntry != nil {
			r.onEntry(e)
		}
		return nil
	})
}

func (r *replayer) print() {
	fmt.Printf("entries=%d last_tick=%d\n", r.entries, r.lastTick)
	actions := make([]string, 0, len(r.byAction))
	for a := range r.byAction {
		actions = append(actions, a)
	}
	sort.Strings(actions)
	for _, a := range actions {
		fmt.Printf("  %-9s %d\n", a, r.byAction[a])
	}
	keys := make([]linkKey, 0, len(r.links))
	for k := range r.links {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].agent != keys[j].agent {
			return keys[i].agent < keys[j].agent
		}
		return keys[i].anchor < keys[j].anchor
	})
	for _, k := range keys {
		e := r.links[k]
		fmt.Printf("link %s %-4s -> %s %v (tick %d by %s)\n", link.AgentID(k.agent).Short(), k.anchor, e.World, e.Pos, e.Tick, e.Operator)
	}
}
