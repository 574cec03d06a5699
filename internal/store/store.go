// Package store holds the GORM-backed data access layer for the admin panel.
// Every mutating operation validates before writing and emits one audit
// record after a successful commit.
package store

import (
	"sort"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/magpress/magpress/internal/audit"
)

// Store is the data-access handle. It is constructed once at startup and
// injected into handlers; there is no package-level database state.
type Store struct {
	db  *gorm.DB
	rec *audit.Recorder
	log *zap.SugaredLogger
}

func New(db *gorm.DB, rec *audit.Recorder, log *zap.SugaredLogger) *Store {
	return &Store{db: db, rec: rec, log: log}
}

// dedupeIDs drops zero and repeated ids, preserving first-seen order.
func dedupeIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// diffRefs computes added (after − before) and removed (before − after).
func diffRefs(before, after []audit.EntityRef) (added, removed []audit.EntityRef) {
	inBefore := make(map[uint]struct{}, len(before))
	for _, r := range before {
		inBefore[r.ID] = struct{}{}
	}
	inAfter := make(map[uint]struct{}, len(after))
	for _, r := range after {
		inAfter[r.ID] = struct{}{}
	}
	added = []audit.EntityRef{}
	removed = []audit.EntityRef{}
	for _, r := range after {
		if _, ok := inBefore[r.ID]; !ok {
			added = append(added, r)
		}
	}
	for _, r := range before {
		if _, ok := inAfter[r.ID]; !ok {
			removed = append(removed, r)
		}
	}
	return added, removed
}

func sortRefs(refs []audit.EntityRef) {
	sort.Slice(refs, func(i, j int) bool { return refs[i].ID < refs[j].ID })
}

func refNames(refs []audit.EntityRef) []string {
	names := make([]string, 0, len(refs))
	for _, r := range refs {
		names = append(names, r.Name)
	}
	return names
}
