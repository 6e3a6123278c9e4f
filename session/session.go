package session

import (
	"context"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/google/uuid"
	"github.com/jsphweid/retune31/model"
	"github.com/jsphweid/retune31/processor"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("pkg", "session")

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionClosed   = errors.New("session closed")
)

// NewProcessorFunc builds the processor a new session starts with.
type NewProcessorFunc func() (*processor.Processor, error)

// Manager keeps one processor per session. Sessions that see no requests
// for the idle timeout are closed.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	newProc  NewProcessorFunc
	ttl      time.Duration
}

func NewManager(newProc NewProcessorFunc, ttl time.Duration) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		newProc:  newProc,
		ttl:      ttl,
	}
}

func (m *Manager) Create() (*Session, error) {
	proc, err := m.newProc()
	if err != nil {
		return nil, errors.Wrap(err, "new processor")
	}

	s := &Session{
		Id:       uuid.New().String(),
		requests: make(chan request),
		done:     make(chan struct{}),
	}
	s.onClose = func() { m.remove(s.Id) }
	if m.ttl > 0 {
		debounced := debounce.New(m.ttl)
		s.touch = func() {
			debounced(func() {
				log.WithField("session", s.Id).Info("session idle, closing")
				s.Close()
			})
		}
	} else {
		s.touch = func() {}
	}

	m.mu.Lock()
	m.sessions[s.Id] = s
	m.mu.Unlock()

	go s.loop(proc)
	s.touch()
	log.WithField("session", s.Id).Info("session created")
	return s, nil
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, errors.Wrapf(ErrSessionNotFound, "%q", id)
	}
	return s, nil
}

func (m *Manager) Delete(id string) error {
	s, err := m.Get(id)
	if err != nil {
		return err
	}
	s.Close()
	return nil
}

func (m *Manager) remove(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Close ends every session.
func (m *Manager) Close() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}

type request struct {
	events []model.Event
	reply  chan response
}

type response struct {
	decisions []model.Decision
	pitches   []model.ActivePitch
	stopped   bool
}

// Session serializes requests onto a goroutine that owns the processor.
type Session struct {
	Id string

	requests chan request
	done     chan struct{}
	once     sync.Once
	touch    func()
	onClose  func()
}

func (s *Session) loop(proc *processor.Processor) {
	for {
		select {
		case req := <-s.requests:
			res := response{decisions: make([]model.Decision, 0, len(req.events))}
			for _, ev := range req.events {
				if ev.Kind == model.Stop {
					res.stopped = true
					break
				}
				if d, ok := proc.Handle(ev); ok {
					res.decisions = append(res.decisions, d)
				}
			}
			res.pitches = proc.Snapshot()
			req.reply <- res
			if res.stopped {
				s.Close()
				return
			}
		case <-s.done:
			return
		}
	}
}

func (s *Session) do(ctx context.Context, events []model.Event) (response, error) {
	req := request{events: events, reply: make(chan response, 1)}
	select {
	case s.requests <- req:
	case <-s.done:
		return response{}, errors.Wrapf(ErrSessionClosed, "%q", s.Id)
	case <-ctx.Done():
		return response{}, ctx.Err()
	}
	s.touch()

	select {
	case res := <-req.reply:
		return res, nil
	case <-ctx.Done():
		return response{}, ctx.Err()
	}
}

// Apply runs events through the session's processor in order. A Stop event
// ends the session; the events after it are dropped.
func (s *Session) Apply(ctx context.Context, events []model.Event) ([]model.Decision, error) {
	res, err := s.do(ctx, events)
	if err != nil {
		return nil, err
	}
	return res.decisions, nil
}

// Space returns the tonal space in recency order.
func (s *Session) Space(ctx context.Context) ([]model.ActivePitch, error) {
	res, err := s.do(ctx, nil)
	if err != nil {
		return nil, err
	}
	return res.pitches, nil
}

func (s *Session) Close() {
	s.once.Do(func() {
		s.onClose()
		close(s.done)
		log.WithField("session", s.Id).Info("session closed")
	})
}

func (s *Session) Done() <-chan struct{} {
	return s.done
}
