package middleware

import (
	"fmt"
	"net/http"

	"event-ticketing-console/internal/reconcile"

	"github.com/gorilla/sessions"
)

// WorkingSetSessionName is the cookie holding the organizer's working set marks
const WorkingSetSessionName = "console_working_set"

// WorkingSetStore keeps the dirty group ticket ids of the organizer's
// working set in a session, one set per event
type WorkingSetStore struct {
	store sessions.Store
}

// NewWorkingSetStore creates a working set store backed by store
func NewWorkingSetStore(store sessions.Store) *WorkingSetStore {
	return &WorkingSetStore{store: store}
}

func dirtyKey(eventID int) string {
	return fmt.Sprintf("dirty:%d", eventID)
}

func (s *WorkingSetStore) session(r *http.Request) (*sessions.Session, error) {
	session, err := s.store.Get(r, WorkingSetSessionName)
	// An undecodable cookie comes back as a fresh session plus an error
	if err != nil && session == nil {
		return nil, fmt.Errorf("failed to load working set session: %w", err)
	}
	return session, nil
}

// Dirty returns the ids marked dirty for an event
func (s *WorkingSetStore) Dirty(r *http.Request, eventID int) (reconcile.DirtySet, error) {
	session, err := s.session(r)
	if err != nil {
		return nil, err
	}

	ids, _ := session.Values[dirtyKey(eventID)].([]string)
	return reconcile.NewDirtySet(ids...), nil
}

// MarkDirty records that the organizer committed an edit to id
func (s *WorkingSetStore) MarkDirty(w http.ResponseWriter, r *http.Request, eventID int, id string) error {
	dirty, err := s.Dirty(r, eventID)
	if err != nil {
		return err
	}

	dirty.Mark(id)
	return s.save(w, r, eventID, dirty)
}

// ClearDirty removes ids from an event's dirty set
func (s *WorkingSetStore) ClearDirty(w http.ResponseWriter, r *http.Request, eventID int, ids ...string) error {
	dirty, err := s.Dirty(r, eventID)
	if err != nil {
		return err
	}

	for _, id := range ids {
		delete(dirty, id)
	}
	return s.save(w, r, eventID, dirty)
}

func (s *WorkingSetStore) save(w http.ResponseWriter, r *http.Request, eventID int, dirty reconcile.DirtySet) error {
	session, err := s.session(r)
	if err != nil {
		return err
	}

	ids := dirty.IDs()
	if len(ids) == 0 {
		delete(session.Values, dirtyKey(eventID))
	} else {
		session.Values[dirtyKey(eventID)] = ids
	}

	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("failed to save working set session: %w", err)
	}
	return nil
}
