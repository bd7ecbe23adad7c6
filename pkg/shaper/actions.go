package shaper

// actions maps event names to bound handlers in binding order.
type actions[T any] struct {
	handlers map[string][]func(T)
}

func newActions[T any]() *actions[T] {
	return &actions[T]{handlers: make(map[string][]func(T))}
}

func (a *actions[T]) on(event string, fn func(T)) {
	if fn == nil {
		return
	}
	a.handlers[event] = append(a.handlers[event], fn)
}

func (a *actions[T]) fire(event string, v T) bool {
	hs := a.handlers[event]
	for _, fn := range hs {
		fn(v)
	}
	return len(hs) > 0
}

func (a *actions[T]) reset() {
	a.handlers = make(map[string][]func(T))
}
