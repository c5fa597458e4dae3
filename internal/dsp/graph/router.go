package graph

// Router is a Processor that owns a set of child Processors and a frozen
// evaluation order. Ownership is exclusive: every child belongs to exactly
// one Router. Adding a child clears any computed order; Freeze, or the
// first call to Process, sorts the children and freezes the order.
type Router struct {
	Base

	name     string
	children []Processor
	order    []int
	frozen   bool
}

// NewRouter creates an empty, unfrozen Router.
func NewRouter(name string) *Router {
	return &Router{name: name}
}

// AddProcessor registers a child. Panics if called after Freeze.
func (r *Router) AddProcessor(p Processor) {
	if r.frozen {
		panic("graph: AddProcessor called on frozen router " + r.name)
	}
	r.children = append(r.children, p)
	r.order = nil
}

// Children returns the router's child processors in registration order.
func (r *Router) Children() []Processor { return r.children }

// ForwardOutput exposes a child's Output as one of the Router's own
// Outputs.
func (r *Router) ForwardOutput(name string, src *Output) *Output {
	// The router doesn't own the samples; it just republishes the same
	// Output identity so external consumers can plug directly into it.
	r.outputs = append(r.outputs, src)
	return src
}

// Freeze computes the topological order over "consumes from" edges among
// registered children, ignoring feedback edges. It is idempotent; the
// first call performs the sort and later calls are no-ops. Once frozen,
// the router accepts no new children (AddProcessor panics).
func (r *Router) Freeze() error {
	if r.frozen && r.order != nil {
		return nil
	}
	order, err := topoSort(r.children)
	if err != nil {
		return err
	}
	r.order = order
	r.frozen = true
	return nil
}

// MustFreeze calls Freeze and panics on error; used in constructors where
// a cycle can only reflect a bug in this package's own wiring code.
func (r *Router) MustFreeze() {
	if err := r.Freeze(); err != nil {
		panic(err)
	}
}

// Process runs each child in topological order, freezing the router first
// if it was never frozen. Panics if that freeze finds a cycle.
func (r *Router) Process(n int) {
	if r.order == nil {
		if err := r.Freeze(); err != nil {
			panic(err)
		}
	}
	for _, idx := range r.order {
		r.children[idx].Process(n)
	}
}

func (r *Router) SetSampleRate(rate float64) {
	for _, c := range r.children {
		c.SetSampleRate(rate)
	}
}

func (r *Router) Reset() {
	for _, c := range r.children {
		c.Reset()
	}
}

// topoSort performs a depth-first post-order traversal over the
// "consumes from" relation (an edge from consumer to the producer of
// each of its bound, non-feedback inputs), returning an index sequence
// into procs such that every producer appears before its consumers.
func topoSort(procs []Processor) ([]int, error) {
	index := make(map[Processor]int, len(procs))
	for i, p := range procs {
		index[p] = i
	}

	const (
		white = iota
		gray
		black
	)
	color := make([]int, len(procs))
	order := make([]int, 0, len(procs))

	var visit func(i int) error
	visit = func(i int) error {
		switch color[i] {
		case black:
			return nil
		case gray:
			return &CycleError{}
		}
		color[i] = gray
		for _, in := range procs[i].Inputs() {
			src := in.Source()
			if src == nil || src.IsFeedback() {
				continue
			}
			producer := src.Producer()
			j, ok := index[producer]
			if !ok {
				// Producer lives outside this router (a global shared
				// processor, or an input plugged from the parent graph);
				// nothing to order here.
				continue
			}
			if err := visit(j); err != nil {
				return err
			}
		}
		color[i] = black
		order = append(order, i)
		return nil
	}

	for i := range procs {
		if color[i] == white {
			if err := visit(i); err != nil {
				return nil, err
			}
		}
	}
	return order, nil
}
