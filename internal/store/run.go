package store

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/ukydev/pantry-finder/internal/location"
	"github.com/ukydev/pantry-finder/internal/models"
)

// run is the owner goroutine. Every read and write of the store's inputs happens here.
func (s *Store) run(ctx context.Context, locEvents <-chan location.Event) {
	defer func() {
		s.closeSubscribers()
		close(s.done)
	}()
	s.log.Debug("Pantry store started")

	for {
		select {
		case <-ctx.Done():
			s.log.Debug("Pantry store stopped")
			return
		case cmd := <-s.cmds:
			cmd()
		case res := <-s.fetched:
			s.completeFetch(res)
		case evt, ok := <-locEvents:
			if !ok {
				locEvents = nil
				continue
			}
			s.applyLocation(evt)
		}
	}
}

// startFetch issues one fetch. Its result is marshalled back through s.fetched and
// discarded if the store stops first.
func (s *Store) startFetch(ctx context.Context) {
	s.fetchSeq++
	seq := s.fetchSeq
	s.log.WithFields(logrus.Fields{
		"fetch_seq":  seq,
		"load_state": s.loadState,
	}).Info("Fetching pantries")

	go func() {
		fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
		defer cancel()
		pantries, err := s.src.Fetch(fetchCtx)
		select {
		case s.fetched <- fetchResult{seq: seq, pantries: pantries, err: err}:
		case <-ctx.Done():
		}
	}()
}

func (s *Store) completeFetch(res fetchResult) {
	if res.seq != s.fetchSeq || !s.loadState.InFlight() {
		s.log.WithField("fetch_seq", res.seq).Warn("Discarding stale fetch result")
		return
	}

	if res.err != nil {
		s.fetchErr = res.err
		s.loadState = LoadFailed
		s.log.WithError(res.err).WithFields(logrus.Fields{
			"fetch_seq":    res.seq,
			"pantry_count": len(s.in.canonical),
		}).Warn("Pantry fetch failed, keeping previous data")
		s.recompute()
		return
	}

	pantries := res.pantries
	if pantries == nil {
		pantries = []models.Pantry{}
	}
	s.in.canonical = pantries
	s.everLoaded = true
	s.fetchErr = nil
	s.loadState = Loaded
	if s.selectedID != "" && indexOf(pantries, s.selectedID) < 0 {
		s.selectedID = ""
	}
	s.log.WithFields(logrus.Fields{
		"fetch_seq":    res.seq,
		"pantry_count": len(pantries),
	}).Info("Pantries loaded")
	s.recompute()
}

// applyLocation folds one graded tracker event into the inputs. Revocation clears the
// location; coordinates arriving without authorization are ignored; a coarse fix never
// replaces a trusted one. An event with an Unreported authorization keeps the current
// state, except that a coordinate delivered before any state was reported counts as
// while-in-use access.
func (s *Store) applyLocation(evt location.Event) {
	if evt.Err != nil {
		s.locationErr = evt.Err
	}

	auth := evt.Authorization
	if auth == location.Unreported {
		auth = s.in.authorization
		if auth == location.NotDetermined && evt.Coordinate != nil {
			auth = location.AuthorizedWhenInUse
		}
	}
	s.in.authorization = auth

	switch {
	case evt.Authorization.Revoked():
		if s.in.location != nil {
			s.log.WithField("authorization", auth).Info("Location access revoked")
		}
		s.in.location = nil
		s.in.locationTrusted = false
	case evt.Coordinate == nil || !auth.Allows():
		if evt.Coordinate != nil {
			s.log.WithField("authorization", auth).Debug("Ignoring fix without location access")
		}
	case evt.Trusted:
		c := *evt.Coordinate
		s.in.location = &c
		s.in.locationTrusted = true
		s.locationErr = evt.Err
	case !s.in.locationTrusted:
		c := *evt.Coordinate
		s.in.location = &c
	default:
		s.log.Debug("Ignoring low-accuracy fix")
	}
	s.recompute()
}

// recompute derives the view from the current inputs and publishes a new snapshot.
func (s *Store) recompute() {
	v := derive(s.in)
	s.version++

	snap := &Snapshot{
		Version:          s.version,
		LoadState:        s.loadState,
		Err:              s.fetchErr,
		LocationErr:      s.locationErr,
		Derived:          v.derived,
		Distances:        v.distances,
		SortMode:         s.in.sortMode,
		EffectiveSort:    v.effective,
		NearestAvailable: s.in.nearestAvailable(),
		SearchText:       s.in.searchText,
		LocationTrusted:  s.in.locationTrusted,
		Authorization:    s.in.authorization,
		Total:            len(s.in.canonical),
	}
	if s.in.location != nil {
		c := *s.in.location
		snap.Location = &c
	}
	if i := indexOf(s.in.canonical, s.selectedID); s.selectedID != "" && i >= 0 {
		p := s.in.canonical[i]
		snap.Selected = &p
	}

	s.current.Store(snap)
	s.publish(*snap)
}

func (s *Store) publish(snap Snapshot) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

func (s *Store) closeSubscribers() {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for ch := range s.subs {
		close(ch)
	}
	s.subs = nil
	s.subsClosed = true
}

func indexOf(pantries []models.Pantry, id string) int {
	if id == "" {
		return -1
	}
	for i, p := range pantries {
		if p.ID() == id {
			return i
		}
	}
	return -1
}
