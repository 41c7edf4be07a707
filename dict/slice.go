package dict

// Slice exposes a Go slice as an indexed dictionary.
type Slice[T comparable] []T

var _ Dict[string, string] = Slice[string](nil)

// Len returns the number of elements.
func (s Slice[T]) Len() int { return len(s) }

// IsEmpty reports whether the slice is empty.
func (s Slice[T]) IsEmpty() bool { return len(s) == 0 }

// Get returns the element at index, panicking if it is out of bounds.
func (s Slice[T]) Get(index int) T { return Get[T](s, index) }

// GetUnchecked returns the element at index.
func (s Slice[T]) GetUnchecked(index int) T { return s[index] }

// Contains scans the slice for value.
func (s Slice[T]) Contains(value T) bool {
	return ContainsLinear[T, T](s, value, Equal[T])
}

// Func adapts a length and an accessor function to Core.
type Func[Out any] struct {
	N  int
	At func(index int) Out
}

// Len returns N.
func (f Func[Out]) Len() int { return f.N }

// GetUnchecked returns At(index).
func (f Func[Out]) GetUnchecked(index int) Out { return f.At(index) }
