package bitfield

// Ordering is the memory ordering requested for an atomic access.
//
// Operations of sync/atomic are sequentially consistent, so every ordering
// is served by a primitive at least as strong as the one requested. The
// argument is kept so that call sites state the ordering they rely on.
type Ordering uint8

const (
	Relaxed Ordering = iota
	Acquire
	Release
	AcqRel
	SeqCst
)

// String returns the name of the ordering.
func (o Ordering) String() string {
	switch o {
	case Relaxed:
		return "relaxed"
	case Acquire:
		return "acquire"
	case Release:
		return "release"
	case AcqRel:
		return "acq_rel"
	case SeqCst:
		return "seq_cst"
	default:
		return "unknown"
	}
}
