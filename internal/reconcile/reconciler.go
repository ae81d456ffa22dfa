// Package reconcile derives the create, update and delete operations that
// move the server's ticket categories to an organizer's edited working set,
// and replays them against a persistence collaborator.
package reconcile

import (
	"sort"

	"event-ticketing-console/internal/models"
)

// Policy selects which surviving original records are updated
type Policy int

const (
	// UpdateAll updates every record that still exists in the working set
	UpdateAll Policy = iota
	// UpdateDirty updates only records the editor marked dirty
	UpdateDirty
)

func (p Policy) String() string {
	switch p {
	case UpdateAll:
		return "update_all"
	case UpdateDirty:
		return "update_dirty"
	default:
		return "unknown"
	}
}

// PolicyFor returns the update policy used by the console for a ticket kind
func PolicyFor(kind models.TicketKind) Policy {
	if kind == models.KindGroupTicket {
		return UpdateDirty
	}
	return UpdateAll
}

// DirtySet holds ids of existing records edited since load. Marks are
// sticky: reverting an edit does not unmark the record.
type DirtySet map[string]struct{}

// NewDirtySet returns a set containing ids
func NewDirtySet(ids ...string) DirtySet {
	s := make(DirtySet, len(ids))
	for _, id := range ids {
		s.Mark(id)
	}
	return s
}

// Mark records id as edited
func (s DirtySet) Mark(id string) {
	s[id] = struct{}{}
}

// Has reports whether id was marked
func (s DirtySet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// IDs returns the marked ids in sorted order
func (s DirtySet) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Options configures one reconciliation pass
type Options struct {
	Policy Policy
	Dirty  DirtySet
}

// Change is a record scheduled for create or update with its resolved payload
type Change struct {
	Record  models.TicketRecord
	Payload models.TicketPayload
}

// Rejected is a record that could not be resolved into a payload
type Rejected struct {
	Record models.TicketRecord
	Err    error
}

// Diff is the result of one reconciliation pass
type Diff struct {
	ToCreate []Change
	ToUpdate []Change
	ToDelete []string
	Rejected []Rejected
}

// IsEmpty reports whether the diff carries no operations
func (d Diff) IsEmpty() bool {
	return len(d.ToCreate) == 0 && len(d.ToUpdate) == 0 && len(d.ToDelete) == 0
}

// Reconcile compares the server's original records with the organizer's
// current working set. Ids from original are the only boundary between
// existing and new records: anything else in current is created, and the
// local id it carries is dropped. Reconcile is pure and deterministic.
func Reconcile(original, current []models.TicketRecord, opts Options) Diff {
	originalIDs := make(map[string]struct{}, len(original))
	for _, r := range original {
		originalIDs[r.ID] = struct{}{}
	}

	var diff Diff
	seen := make(map[string]struct{}, len(current))

	for _, c := range current {
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}

		_, existing := originalIDs[c.ID]
		if existing && !shouldUpdate(c.ID, opts) {
			continue
		}

		payload, err := c.Payload()
		if err != nil {
			diff.Rejected = append(diff.Rejected, Rejected{Record: c, Err: err})
			continue
		}

		change := Change{Record: c, Payload: payload}
		if existing {
			diff.ToUpdate = append(diff.ToUpdate, change)
		} else {
			diff.ToCreate = append(diff.ToCreate, change)
		}
	}

	for id := range originalIDs {
		if _, kept := seen[id]; !kept {
			diff.ToDelete = append(diff.ToDelete, id)
		}
	}

	sort.Strings(diff.ToDelete)
	sort.SliceStable(diff.ToUpdate, func(i, j int) bool {
		return diff.ToUpdate[i].Record.ID < diff.ToUpdate[j].Record.ID
	})

	return diff
}

func shouldUpdate(id string, opts Options) bool {
	if opts.Policy == UpdateDirty {
		return opts.Dirty.Has(id)
	}
	return true
}
