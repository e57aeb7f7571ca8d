package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"villagerlink.ai/internal/persistence/indexdb"
	"villagerlink.ai/internal/sim/catalogs"
	"villagerlink.ai/internal/sim/link"
	"villagerlink.ai/internal/sim/link/scan"
	"villagerlink.ai/internal/sim/multiworld"
	"villagerlink.ai/internal/sim/tuning"
)

type runtimeIndex interface {
	link.AuditLogger
	multiworld.ScanLogger
	Close() error
	UpsertCatalogs(cats *catalogs.Catalogs, tune tuning.Tuning) error
}

func openRuntimeIndex(dataDir, backend string, disableDB bool) (runtimeIndex, error) {
	if disableDB {
		return nil, nil
	}
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", "sqlite":
		return indexdb.OpenSQLite(filepath.Join(dataDir, "index", "linker.sqlite"))
	case "none", "off", "disabled":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported VL_INDEX_BACKEND: %s", backend)
	}
}

type multiScanLogger []multiworld.ScanLogger

func (m multiScanLogger) WriteScan(st scan.Stats) error {
	var first error
	for _, l := range m {
		if l == nil {
			continue
		}
		if err := l.WriteScan(st); err != nil && first == nil {
			first = err
		}
	}
	return first
}
