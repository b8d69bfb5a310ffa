package view

// Helper is a callable found by name. The receiver is the invocation
// context chosen by whoever binds it.
type Helper func(receiver any, args ...any) (any, error)

// Bound is a helper with its receiver fixed.
type Bound struct {
	fn       Helper
	receiver any
}

// Bind fixes the receiver of fn.
func Bind(fn Helper, receiver any) *Bound {
	return &Bound{fn: fn, receiver: receiver}
}

// Receiver returns the bound invocation context.
func (b *Bound) Receiver() any { return b.receiver }

// Call invokes the helper.
func (b *Bound) Call(args ...any) (any, error) {
	return b.fn(b.receiver, args...)
}

// Render invokes the helper and emits its result.
func (b *Bound) Render(f *Frame) error {
	v, err := b.Call()
	if err != nil {
		return err
	}
	return f.Emit(v)
}

// Constant wraps a value that must never be invoked, even if callable.
type Constant struct {
	Value any
}

func (c Constant) Render(f *Frame) error {
	return f.Emit(c.Value)
}

// call evaluates a looked-up helper value.
func call(v any, receiver any, args ...any) (any, error) {
	switch x := v.(type) {
	case Helper:
		return x(receiver, args...)
	case func(any, ...any) (any, error):
		return x(receiver, args...)
	case *Bound:
		return x.Call(args...)
	case Constant:
		return x.Value, nil
	}
	return v, nil
}
