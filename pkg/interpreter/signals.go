package interpreter

import "lara/interpreter-go/pkg/runtime"

// SignalKind tags how a statement sequence finished.
type SignalKind int

const (
	SignalNone SignalKind = iota
	SignalReturn
	SignalBreak
)

func (k SignalKind) String() string {
	switch k {
	case SignalReturn:
		return "return"
	case SignalBreak:
		return "break"
	default:
		return "none"
	}
}

// ControlSignal is the result of evaluating statements. Sequences stop at the
// first non-None signal and hand it to their caller: loops consume Break,
// function calls consume Return.
type ControlSignal struct {
	Kind  SignalKind
	Value runtime.Value
}

var noSignal = ControlSignal{}

func returnSignal(value runtime.Value) ControlSignal {
	return ControlSignal{Kind: SignalReturn, Value: value}
}

func breakSignal() ControlSignal {
	return ControlSignal{Kind: SignalBreak}
}
