package store

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/sahilm/fuzzy"

	"liz/internal/ident"
	"liz/internal/types"
)

var ErrShortcutNotFound = errors.New("shortcut not found")

type Collection int

const (
	CollectionActive Collection = iota
	CollectionDeleted
)

const (
	ColumnID          = "id"
	ColumnHitNumber   = "hit_number"
	ColumnApplication = "application"
	ColumnDescription = "description"
)

// Sheet is the in-memory shortcut collection: the active records plus the
// soft-deleted ones kept for audit and export. It is not safe for
// concurrent use; the dispatcher serializes access.
type Sheet struct {
	active  []*types.Shortcut
	deleted []*types.Shortcut
}

func NewSheet(active, deleted []*types.Shortcut) *Sheet {
	return &Sheet{
		active:  compact(active),
		deleted: compact(deleted),
	}
}

func compact(in []*types.Shortcut) []*types.Shortcut {
	out := make([]*types.Shortcut, 0, len(in))
	for _, sc := range in {
		if sc != nil {
			out = append(out, sc)
		}
	}
	return out
}

func (s *Sheet) Active() []*types.Shortcut {
	return slices.Clone(s.active)
}

func (s *Sheet) Deleted() []*types.Shortcut {
	return slices.Clone(s.deleted)
}

func (s *Sheet) Len() int {
	return len(s.active)
}

// Add appends records to the active collection. With dedup set, the whole
// active collection is filtered afterwards so that neither an id nor a
// dedup key appears twice; the first occurrence wins.
func (s *Sheet) Add(records []*types.Shortcut, dedup bool) {
	s.active = append(s.active, compact(records)...)
	if dedup {
		s.active = removeDuplicates(s.active)
	}
}

func removeDuplicates(in []*types.Shortcut) []*types.Shortcut {
	seenKeys := make(map[types.DedupKey]struct{}, len(in))
	seenIDs := make(map[ident.ID]struct{}, len(in))
	out := in[:0]
	for _, sc := range in {
		key := sc.DedupKey()
		if _, ok := seenKeys[key]; ok {
			continue
		}
		if _, ok := seenIDs[sc.ID]; ok {
			continue
		}
		seenKeys[key] = struct{}{}
		seenIDs[sc.ID] = struct{}{}
		out = append(out, sc)
	}
	clear(in[len(out):])
	return out
}

func (s *Sheet) Get(id ident.ID, from Collection) (*types.Shortcut, bool) {
	list := s.active
	if from == CollectionDeleted {
		list = s.deleted
	}
	for _, sc := range list {
		if sc.ID == id {
			return sc, true
		}
	}
	return nil, false
}

// Search returns the active records whose haystack contains every
// whitespace separated part of query. An empty query returns everything.
func (s *Sheet) Search(query string) []*types.Shortcut {
	parts := strings.Fields(strings.ToLower(query))
	if len(parts) == 0 {
		return s.Active()
	}
	var out []*types.Shortcut
	for _, sc := range s.active {
		hay := haystack(sc)
		matched := true
		for _, part := range parts {
			if !strings.Contains(hay, part) {
				matched = false
				break
			}
		}
		if matched {
			out = append(out, sc)
		}
	}
	return out
}

func haystack(sc *types.Shortcut) string {
	joined := strings.ToLower(sc.Application + sc.Description + sc.Shortcut)
	return strings.ReplaceAll(joined, " ", "")
}

type haystackSource []*types.Shortcut

func (h haystackSource) String(i int) string { return haystack(h[i]) }
func (h haystackSource) Len() int            { return len(h) }

// RankedSearch scores active records by subsequence match against the
// same haystack as Search, best match first.
func (s *Sheet) RankedSearch(query string) []*types.Shortcut {
	pattern := strings.ReplaceAll(strings.ToLower(query), " ", "")
	if pattern == "" {
		return s.Active()
	}
	matches := fuzzy.FindFrom(pattern, haystackSource(s.active))
	out := make([]*types.Shortcut, 0, len(matches))
	for _, match := range matches {
		out = append(out, s.active[match.Index])
	}
	return out
}

// Delete moves every active record whose id is listed to the deleted
// collection. Survivors keep their relative order.
func (s *Sheet) Delete(ids []ident.ID) {
	if len(ids) == 0 {
		return
	}
	targets := make(map[ident.ID]struct{}, len(ids))
	for _, id := range ids {
		targets[id] = struct{}{}
	}
	kept := make([]*types.Shortcut, 0, len(s.active))
	for _, sc := range s.active {
		if _, ok := targets[sc.ID]; ok {
			s.deleted = append(s.deleted, sc)
			continue
		}
		kept = append(kept, sc)
	}
	s.active = kept
}

// Update overwrites active records in place from records with the same id.
// The previous value of each record goes to the deleted collection. Records
// without an active match are returned untouched.
func (s *Sheet) Update(records []*types.Shortcut) []*types.Shortcut {
	var unmatched []*types.Shortcut
	var previous []*types.Shortcut
	for _, next := range records {
		if next == nil {
			continue
		}
		current, ok := s.Get(next.ID, CollectionActive)
		if !ok {
			unmatched = append(unmatched, next)
			continue
		}
		previous = append(previous, current.Clone())
		current.Apply(next)
	}
	s.deleted = append(s.deleted, previous...)
	return unmatched
}

func (s *Sheet) IncrementHits(id ident.ID) error {
	sc, ok := s.Get(id, CollectionActive)
	if !ok {
		return fmt.Errorf("%w: %s", ErrShortcutNotFound, id)
	}
	sc.HitNumber++
	return nil
}

func (s *Sheet) ClearDeleted() {
	s.deleted = nil
}

// Sort stably orders the active collection by column. Unknown columns
// leave the order unchanged.
func (s *Sheet) Sort(column string, ascending bool) {
	compare := columnComparator(column)
	if compare == nil {
		return
	}
	slices.SortStableFunc(s.active, func(a, b *types.Shortcut) int {
		if ascending {
			return compare(a, b)
		}
		return compare(b, a)
	})
}

// Rank groups records by application (ascending) with the most used
// shortcuts first inside each group.
func (s *Sheet) Rank() {
	slices.SortStableFunc(s.active, func(a, b *types.Shortcut) int {
		if c := strings.Compare(a.Application, b.Application); c != 0 {
			return c
		}
		return cmp.Compare(b.HitNumber, a.HitNumber)
	})
}

func columnComparator(column string) func(a, b *types.Shortcut) int {
	switch column {
	case ColumnID:
		return func(a, b *types.Shortcut) int { return ident.Compare(a.ID, b.ID) }
	case ColumnHitNumber, "hit_count":
		return func(a, b *types.Shortcut) int { return cmp.Compare(a.HitNumber, b.HitNumber) }
	case ColumnApplication:
		return func(a, b *types.Shortcut) int { return strings.Compare(a.Application, b.Application) }
	case ColumnDescription:
		return func(a, b *types.Shortcut) int { return strings.Compare(a.Description, b.Description) }
	default:
		return nil
	}
}

// IsSortColumn reports whether column is accepted by Sort.
func IsSortColumn(column string) bool {
	return columnComparator(column) != nil
}
