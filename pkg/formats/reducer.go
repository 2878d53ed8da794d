package formats

import (
	"log/slog"
	"slices"

	"github.com/aretw0/quire/internal/logging"
	"github.com/aretw0/quire/pkg/domain"
)

// Reducer applies format actions to a pool. It never mutates its input.
type Reducer struct {
	logger *slog.Logger
	ids    domain.IDGenerator
}

// Option configures a Reducer.
type Option func(*Reducer)

// WithLogger sets the logger used for rejected actions.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reducer) {
		r.logger = logger
	}
}

// WithIDGenerator overrides the id source for created formats.
func WithIDGenerator(ids domain.IDGenerator) Option {
	return func(r *Reducer) {
		r.ids = ids
	}
}

// NewReducer creates a format reducer.
func NewReducer(opts ...Option) *Reducer {
	r := &Reducer{
		logger: logging.NewNop(),
		ids:    domain.UUIDGenerator{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// allowed lists the legal load-state transitions.
var allowed = map[domain.LoadState][]domain.LoadState{
	domain.LoadStateUnloaded: {domain.LoadStateLoading},
	domain.LoadStateLoading:  {domain.LoadStateLoaded, domain.LoadStateError},
	domain.LoadStateError:    {domain.LoadStateLoading},
}

// Reduce returns the pool after applying action. Unknown ids and illegal transitions
// are logged and leave the pool unchanged.
func (r *Reducer) Reduce(state []*domain.StoryFormat, action Action) []*domain.StoryFormat {
	switch a := action.(type) {
	case Init:
		return slices.Clone(a.Formats)

	case Create:
		if _, err := FormatWithNameAndVersion(state, a.Format.Name, a.Format.Version); err == nil {
			r.logger.Warn("Rejected format with duplicate name and version",
				"name", a.Format.Name, "version", a.Format.Version)
			return state
		}
		f := a.Format
		if f.ID == "" {
			f.ID = r.ids.NewID()
		} else if _, err := FormatWithID(state, f.ID); err == nil {
			r.logger.Warn("Rejected format with duplicate id", "format_id", f.ID)
			return state
		}
		f.LoadState = domain.LoadStateUnloaded
		f.LoadError = nil
		f.Properties = nil
		return append(slices.Clone(state), &f)

	case Update:
		return r.replace(state, a.ID, action, func(f *domain.StoryFormat) bool {
			if a.Name != nil {
				f.Name = *a.Name
			}
			if a.Version != nil {
				f.Version = *a.Version
			}
			if a.URL != nil && *a.URL != f.URL {
				// A new URL invalidates anything fetched from the old one.
				f.URL = *a.URL
				f.LoadState = domain.LoadStateUnloaded
				f.LoadError = nil
				f.Properties = nil
			}
			return true
		})

	case Delete:
		idx := slices.IndexFunc(state, func(f *domain.StoryFormat) bool { return f.ID == a.ID })
		if idx < 0 {
			r.logger.Warn("Format not found", "action", action.Type(), "format_id", a.ID)
			return state
		}
		return slices.Delete(slices.Clone(state), idx, idx+1)

	case LoadStart:
		return r.replace(state, a.ID, action, func(f *domain.StoryFormat) bool {
			if !r.transition(f, domain.LoadStateLoading) {
				return false
			}
			f.LoadError = nil
			return true
		})

	case LoadSuccess:
		return r.replace(state, a.ID, action, func(f *domain.StoryFormat) bool {
			if !r.transition(f, domain.LoadStateLoaded) {
				return false
			}
			f.Properties = a.Properties
			return true
		})

	case LoadFailure:
		return r.replace(state, a.ID, action, func(f *domain.StoryFormat) bool {
			if !r.transition(f, domain.LoadStateError) {
				return false
			}
			f.LoadError = a.Err
			return true
		})
	}

	r.logger.Warn("Unknown format action", "action", action.Type())
	return state
}

func (r *Reducer) transition(f *domain.StoryFormat, to domain.LoadState) bool {
	from := f.LoadState
	if from == "" {
		from = domain.LoadStateUnloaded
	}
	if !slices.Contains(allowed[from], to) {
		r.logger.Warn("Ignored illegal format load transition",
			"format_id", f.ID, "name", f.Name, "version", f.Version, "from", from, "to", to)
		return false
	}
	f.LoadState = to
	return true
}

// replace copies the format with the given id, lets fn edit the copy, and swaps it into
// a cloned pool. If fn returns false the original pool is returned.
func (r *Reducer) replace(state []*domain.StoryFormat, id string, action Action, fn func(*domain.StoryFormat) bool) []*domain.StoryFormat {
	idx := slices.IndexFunc(state, func(f *domain.StoryFormat) bool { return f.ID == id })
	if idx < 0 {
		r.logger.Warn("Format not found", "action", action.Type(), "format_id", id)
		return state
	}
	cp := *state[idx]
	if !fn(&cp) {
		return state
	}
	next := slices.Clone(state)
	next[idx] = &cp
	return next
}
