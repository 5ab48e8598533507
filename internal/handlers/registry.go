package handlers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ukydev/pantry-finder/internal/location"
	"github.com/ukydev/pantry-finder/internal/source"
	"github.com/ukydev/pantry-finder/internal/store"
)

var ErrSessionNotFound = errors.New("session not found")

// feedBuffer is the number of location events queued per session.
const feedBuffer = 16

// Relay routes externally published location fixes into a session feed.
// *location.MQTTRelay implements it.
type Relay interface {
	Attach(topic string, feed *location.Feed) (func(), error)
}

// Session is one presentation session: a store fed by its own location feed.
type Session struct {
	ID      string
	Store   *store.Store
	Feed    *location.Feed
	Created time.Time
	// Expires is when the session's token lapses. Zero means never.
	Expires time.Time

	detach func()
}

// close stops relaying, rejects further fixes and stops the store.
func (s *Session) close() {
	if s.detach != nil {
		s.detach()
	}
	s.Feed.Close()
	s.Store.Close()
}

// RegistryConfig configures a Registry.
type RegistryConfig struct {
	Source            source.Source
	Relay             Relay
	TopicPrefix       string
	AccuracyThreshold float64
	FetchTimeout      time.Duration
	// SessionTTL bounds a session to its token lifetime. Zero keeps sessions until
	// they are removed.
	SessionTTL        time.Duration
	Logger            logrus.FieldLogger
}

// Registry owns every live presentation session.
type Registry struct {
	cfg RegistryConfig
	log logrus.FieldLogger

	mu       sync.RWMutex
	sessions map[string]*Session
	closed   bool
}

// NewRegistry creates an empty registry. It panics without a source.
func NewRegistry(cfg RegistryConfig) *Registry {
	if cfg.Source == nil {
		panic("handlers: registry requires a pantry source")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Registry{
		cfg:      cfg,
		log:      logger,
		sessions: make(map[string]*Session),
	}
}

// Topic returns the MQTT topic carrying fixes for session id.
func (r *Registry) Topic(id string) string {
	return r.cfg.TopicPrefix + "/" + id
}

// Create starts a new session and kicks off its initial pantry fetch.
func (r *Registry) Create() (*Session, error) {
	id := uuid.NewString()
	logger := r.log.WithField("session_id", id)

	feed := location.NewFeed(feedBuffer)
	tracker := location.NewTracker(feed, r.cfg.AccuracyThreshold, logger)
	st, err := store.New(context.Background(), r.cfg.Source,
		store.WithTracker(tracker),
		store.WithLogger(logger),
		store.WithFetchTimeout(r.cfg.FetchTimeout),
	)
	if err != nil {
		feed.Close()
		return nil, fmt.Errorf("failed to start session store: %w", err)
	}

	sess := &Session{ID: id, Store: st, Feed: feed, Created: time.Now()}
	if r.cfg.SessionTTL > 0 {
		sess.Expires = sess.Created.Add(r.cfg.SessionTTL)
	}
	if r.cfg.Relay != nil {
		detach, err := r.cfg.Relay.Attach(r.Topic(id), feed)
		if err != nil {
			sess.close()
			return nil, fmt.Errorf("failed to relay location fixes: %w", err)
		}
		sess.detach = detach
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		sess.close()
		return nil, store.ErrStoreClosed
	}
	r.sessions[id] = sess
	r.mu.Unlock()

	if _, err := st.RequestRefresh(); err != nil {
		logger.WithError(err).Warn("Initial refresh not started")
	}
	logger.Info("Session created")
	return sess, nil
}

// Get returns the session with the given id.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Remove closes and forgets the session with the given id.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	sess, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	sess.close()
	r.log.WithField("session_id", id).Info("Session closed")
	return nil
}

// Sweep closes every session that has expired at now and returns how many it closed.
func (r *Registry) Sweep(now time.Time) int {
	var expired []*Session
	r.mu.Lock()
	for id, sess := range r.sessions {
		if !sess.Expires.IsZero() && !now.Before(sess.Expires) {
			expired = append(expired, sess)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, sess := range expired {
		sess.close()
		r.log.WithFields(logrus.Fields{
			"session_id": sess.ID,
			"expired_at": sess.Expires,
		}).Info("Session expired")
	}
	return len(expired)
}

// RunSweeper sweeps expired sessions every interval until ctx is done.
func (r *Registry) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			r.Sweep(now)
		}
	}
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Close closes every session. Create fails afterwards.
func (r *Registry) Close() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.closed = true
	r.mu.Unlock()

	for _, sess := range sessions {
		sess.close()
	}
	r.log.WithField("session_count", len(sessions)).Info("All sessions closed")
}
