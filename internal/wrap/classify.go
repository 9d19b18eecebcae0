package wrap

// ArgKind is the variant of a classified handle argument.
type ArgKind int

const (
	// KindInvalid is neither an open handle nor a resource name.
	KindInvalid ArgKind = iota

	// KindAlreadyOpen is an open handle owned by the caller.
	KindAlreadyOpen

	// KindName is a resource name the wrapper must open.
	KindName
)

// String returns the variant name.
func (k ArgKind) String() string {
	switch k {
	case KindAlreadyOpen:
		return "AlreadyOpen"
	case KindName:
		return "Name"
	default:
		return "Invalid"
	}
}

// Classification is the tagged result of classifying a handle argument.
// Value always holds the original argument; Name is set for KindName.
type Classification struct {
	Kind  ArgKind
	Value any
	Name  string
}

// Classify sorts v into one of the three variants. Handles win over names
// so a value satisfying both is never reopened.
func Classify(v any, isHandle func(any) bool, nameOf func(any) (string, bool)) Classification {
	if isHandle(v) {
		return Classification{Kind: KindAlreadyOpen, Value: v}
	}
	if name, ok := nameOf(v); ok {
		return Classification{Kind: KindName, Value: v, Name: name}
	}
	return Classification{Kind: KindInvalid, Value: v}
}
