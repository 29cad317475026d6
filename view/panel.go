package view

// State is the lifecycle of a panel.
type State int

const (
	Loading State = iota
	Loaded
	Failed
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Panel is what a renderer receives for one part of the screen.
// Data is only meaningful when State is Loaded, Err only when Failed.
type Panel[T any] struct {
	State State
	Data  T
	Err   error
}

func LoadingPanel[T any]() Panel[T] { return Panel[T]{State: Loading} }

func LoadedPanel[T any](data T) Panel[T] { return Panel[T]{State: Loaded, Data: data} }

func FailedPanel[T any](err error) Panel[T] { return Panel[T]{State: Failed, Err: err} }
