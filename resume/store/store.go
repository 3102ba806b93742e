package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"resume-builder/resume/model"
)

// ErrPersist wraps failures of the configured Persister. The in-memory
// mutation has already been applied when it is returned.
var ErrPersist = errors.New("persist resume state")

// State is everything the builder keeps for one person. Its JSON form is the
// persisted "resume-storage" blob.
type State struct {
	ResumeData       model.Document    `json:"resumeData"`
	SelectedTemplate model.TemplateID  `json:"selectedTemplate"`
	CurrentStep      model.BuilderStep `json:"currentStep"`
}

// DefaultState is the state of a builder nobody has touched yet.
func DefaultState() State {
	return State{
		ResumeData:       model.Empty(),
		SelectedTemplate: model.DefaultTemplate,
		CurrentStep:      model.FirstStep(),
	}
}

// Clone deep-copies the state.
func (s State) Clone() State {
	s.ResumeData = s.ResumeData.Clone()
	return s
}

// Persister receives a full snapshot after every mutation.
type Persister interface {
	Save(ctx context.Context, state State) error
}

// PersisterFunc adapts a function to Persister.
type PersisterFunc func(ctx context.Context, state State) error

func (f PersisterFunc) Save(ctx context.Context, state State) error { return f(ctx, state) }

// Observer is called synchronously after every mutation with a copy of the new
// state. Observers must not call back into the Store.
type Observer func(State)

type Option func(*Store)

func WithPersister(p Persister) Option {
	return func(s *Store) { s.persister = p }
}

// Store is the single mutation path for a resume. Operations are serialised;
// none of them reject input.
type Store struct {
	mu        sync.Mutex
	state     State
	persister Persister
	seq       *Sequencer

	obsMu     sync.Mutex
	observers map[int]Observer
	nextObs   int
}

// New returns a Store holding DefaultState.
func New(opts ...Option) *Store {
	return Open(DefaultState(), opts...)
}

// Open returns a Store rehydrated from a previously persisted state.
func Open(state State, opts ...Option) *Store {
	state.ResumeData = state.ResumeData.Normalize()
	s := &Store{
		state:     state.Clone(),
		seq:       NewSequencer(),
		observers: make(map[int]Observer),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns a deep copy of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Document returns a deep copy of the current resume.
func (s *Store) Document() model.Document {
	return s.State().ResumeData
}

// Generations is the guard used to discard stale asynchronous results.
func (s *Store) Generations() *Sequencer { return s.seq }

// Subscribe registers an observer and returns a function that removes it.
func (s *Store) Subscribe(fn Observer) func() {
	s.obsMu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.obsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.obsMu.Lock()
			delete(s.observers, id)
			s.obsMu.Unlock()
		})
	}
}

func (s *Store) SetPersonalDetails(ctx context.Context, patch model.PersonalDetailsPatch) error {
	return s.mutate(ctx, func(st *State) {
		patch.ApplyTo(&st.ResumeData.PersonalDetails)
	})
}

func (s *Store) SetSummary(ctx context.Context, summary string) error {
	return s.mutate(ctx, func(st *State) {
		st.ResumeData.Summary = summary
	})
}

func (s *Store) SetSkills(ctx context.Context, patch model.SkillsPatch) error {
	return s.mutate(ctx, func(st *State) {
		patch.ApplyTo(&st.ResumeData.Skills)
	})
}

func (s *Store) SetSelectedTemplate(ctx context.Context, id model.TemplateID) error {
	return s.mutate(ctx, func(st *State) {
		st.SelectedTemplate = id
	})
}

func (s *Store) SetCurrentStep(ctx context.Context, step model.BuilderStep) error {
	return s.mutate(ctx, func(st *State) {
		st.CurrentStep = step
	})
}

// ResetResume empties the document and returns to the first step. The
// selected template is kept.
func (s *Store) ResetResume(ctx context.Context) error {
	return s.mutate(ctx, func(st *State) {
		st.ResumeData = model.Empty()
		st.CurrentStep = model.FirstStep()
	})
}

// Replace swaps in a whole state, as when rehydrating after a sign-in.
func (s *Store) Replace(ctx context.Context, state State) error {
	state.ResumeData = state.ResumeData.Normalize()
	state = state.Clone()
	return s.mutate(ctx, func(st *State) {
		*st = state
	})
}

func (s *Store) mutate(ctx context.Context, fn func(*State)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(&s.state)
	snapshot := s.state.Clone()

	var err error
	if s.persister != nil {
		if perr := s.persister.Save(ctx, snapshot); perr != nil {
			err = fmt.Errorf("%w: %v", ErrPersist, perr)
		}
	}
	s.notify(snapshot)
	return err
}

func (s *Store) notify(snapshot State) {
	s.obsMu.Lock()
	observers := make([]Observer, 0, len(s.observers))
	for _, fn := range s.observers {
		observers = append(observers, fn)
	}
	s.obsMu.Unlock()

	for _, fn := range observers {
		fn(snapshot.Clone())
	}
}
