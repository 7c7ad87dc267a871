package provider

// Result is a tagged union: exactly one of Structured or Mapping is set.
// The zero Result means the vendor returned no usable body.
type Result struct {
	Structured *StructuredMove
	Mapping    map[string]any
}

// StructuredMove is the typed output of adapters that decode into a struct
type StructuredMove struct {
	Move      EnumValue
	Reasoning string
}

// EnumValue wraps a constrained string the way typed SDK outputs do
type EnumValue struct {
	Value string
}

func Structured(move, reasoning string) Result {
	return Result{Structured: &StructuredMove{Move: EnumValue{Value: move}, Reasoning: reasoning}}
}

func Mapping(m map[string]any) Result {
	return Result{Mapping: m}
}

func (r Result) IsEmpty() bool {
	return r.Structured == nil && r.Mapping == nil
}
