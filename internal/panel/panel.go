package panel

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// Snapshot is a consistent set of committed parameter values handed to a
// compute function for one evaluation.
type Snapshot map[string]Value

// ComputeFunc maps a snapshot of committed input values to an opaque result.
// It must be deterministic for a given snapshot and must not call back into
// the panel.
type ComputeFunc func(Snapshot) (any, error)

// Binding links an ordered set of input parameters to a compute function and
// holds its most recent result.
type Binding struct {
	panel    *Panel
	inputs   []string
	fn       ComputeFunc
	result   any
	computed bool
}

// Inputs returns the binding's declared input parameter names.
func (b *Binding) Inputs() []string {
	return slices.Clone(b.inputs)
}

// Result returns the most recently computed result. The second return is
// false until a committed snapshot has triggered at least one successful
// evaluation.
func (b *Binding) Result() (any, bool) {
	b.panel.mu.Lock()
	defer b.panel.mu.Unlock()
	return b.result, b.computed
}

type paramState struct {
	spec      Param
	committed Value
	pending   Value
}

// Update names a parameter and a value for a batched commit.
type Update struct {
	Name  string
	Value Value
}

// Panel owns a fixed set of parameters and the bindings derived from them.
// Every mutation is serialized behind a single mutex, so a panel may be
// driven from a multi-threaded UI host; compute functions run while the
// mutex is held and therefore must not touch the panel.
type Panel struct {
	mu       sync.Mutex
	order    []string
	params   map[string]*paramState
	bindings []*Binding
}

// New builds a panel from parameter declarations. Every default value must
// satisfy its own constraints, and names must be unique.
func New(params ...Param) (*Panel, error) {
	p := &Panel{params: make(map[string]*paramState, len(params))}
	for _, spec := range params {
		if _, dup := p.params[spec.Name]; dup {
			return nil, fmt.Errorf("duplicate parameter %q", spec.Name)
		}
		if err := spec.validate(spec.Default); err != nil {
			return nil, fmt.Errorf("default for %q: %w", spec.Name, err)
		}
		p.params[spec.Name] = &paramState{
			spec:      spec,
			committed: spec.Default,
			pending:   spec.Default,
		}
		p.order = append(p.order, spec.Name)
	}
	return p, nil
}

// Params returns the parameter declarations in registration order.
func (p *Panel) Params() []Param {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Param, 0, len(p.order))
	for _, name := range p.order {
		out = append(out, p.params[name].spec)
	}
	return out
}

// Get returns the committed value of a parameter.
func (p *Panel) Get(name string) (Value, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	st, ok := p.params[name]
	if !ok {
		return Value{}, &UnknownParameterError{Name: name}
	}
	return st.committed, nil
}

// Pending returns the staged value of a parameter, which equals the
// committed value unless an uncommitted Set is outstanding.
func (p *Panel) Pending(name string) (Value, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	st, ok := p.params[name]
	if !ok {
		return Value{}, &UnknownParameterError{Name: name}
	}
	return st.pending, nil
}

// Dirty reports whether a parameter has a staged value awaiting commit.
func (p *Panel) Dirty(name string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	st, ok := p.params[name]
	if !ok {
		return false
	}
	return !st.pending.Equal(st.committed)
}

// Set validates and stages a value. Parameters with the Immediate policy are
// committed synchronously in the same call, so dependent bindings recompute
// before Set returns; Throttled parameters hold the value until Commit.
// On validation failure nothing changes.
func (p *Panel) Set(name string, v Value) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	st, ok := p.params[name]
	if !ok {
		return &UnknownParameterError{Name: name}
	}
	if err := st.spec.validate(v); err != nil {
		return err
	}
	st.pending = v
	if st.spec.Policy == Immediate {
		return p.commitLocked(name)
	}
	return nil
}

// Commit finalizes the staged value of one parameter. Dependent bindings
// recompute only if the committed value actually changed; committing an
// unchanged value is a no-op.
func (p *Panel) Commit(name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.params[name]; !ok {
		return &UnknownParameterError{Name: name}
	}
	return p.commitLocked(name)
}

// CommitBatch finalizes the staged values of several parameters and
// recomputes each affected binding at most once, against the snapshot that
// holds all the committed updates. Unknown names fail before anything
// commits.
func (p *Panel) CommitBatch(names ...string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, name := range names {
		if _, ok := p.params[name]; !ok {
			return &UnknownParameterError{Name: name}
		}
	}
	changed := make([]string, 0, len(names))
	for _, name := range names {
		st := p.params[name]
		if st.pending.Equal(st.committed) {
			continue
		}
		st.committed = st.pending
		changed = append(changed, name)
	}
	return p.evaluateLocked(p.affected(changed))
}

// ApplyBatch stages and commits several values atomically. Every update is
// validated before any state changes, so one bad value rejects the whole
// batch. Each affected binding recomputes at most once.
func (p *Panel) ApplyBatch(updates ...Update) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, u := range updates {
		st, ok := p.params[u.Name]
		if !ok {
			return &UnknownParameterError{Name: u.Name}
		}
		if err := st.spec.validate(u.Value); err != nil {
			return err
		}
	}
	changed := make([]string, 0, len(updates))
	for _, u := range updates {
		st := p.params[u.Name]
		st.pending = u.Value
		if st.pending.Equal(st.committed) {
			continue
		}
		st.committed = st.pending
		changed = append(changed, u.Name)
	}
	return p.evaluateLocked(p.affected(changed))
}

// Bind registers a compute function over the named inputs and returns its
// handle. The binding holds no result until a committed snapshot triggers
// evaluation (or Refresh forces one). Registration fails without side
// effects if any input is unknown.
func (p *Panel) Bind(inputs []string, fn ComputeFunc) (*Binding, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, name := range inputs {
		if _, ok := p.params[name]; !ok {
			return nil, &UnknownParameterError{Name: name}
		}
	}
	b := &Binding{panel: p, inputs: slices.Clone(inputs), fn: fn}
	p.bindings = append(p.bindings, b)
	return b, nil
}

// Refresh evaluates one binding against the current committed snapshot.
// Commits drive recomputation on their own; Refresh exists for the first
// render, before any parameter has changed.
func (p *Panel) Refresh(b *Binding) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.evaluateLocked([]*Binding{b})
}

func (p *Panel) commitLocked(name string) error {
	st := p.params[name]
	if st.pending.Equal(st.committed) {
		return nil
	}
	st.committed = st.pending
	return p.evaluateLocked(p.affected([]string{name}))
}

// affected returns, in registration order, each binding whose input set
// intersects the changed names. A binding appears once no matter how many
// of its inputs changed.
func (p *Panel) affected(changed []string) []*Binding {
	if len(changed) == 0 {
		return nil
	}
	var out []*Binding
	for _, b := range p.bindings {
		for _, in := range b.inputs {
			if slices.Contains(changed, in) {
				out = append(out, b)
				break
			}
		}
	}
	return out
}

// evaluateLocked runs each binding against a fresh snapshot of its
// committed inputs. A failed compute keeps the binding's previous result;
// all bindings are still evaluated and their errors joined.
func (p *Panel) evaluateLocked(bindings []*Binding) error {
	var errs []error
	for _, b := range bindings {
		snap := make(Snapshot, len(b.inputs))
		for _, in := range b.inputs {
			snap[in] = p.params[in].committed
		}
		res, err := b.fn(snap)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		b.result = res
		b.computed = true
	}
	return errors.Join(errs...)
}
