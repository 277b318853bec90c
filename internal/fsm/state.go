package fsm

// State is a named node of a machine. Enter and Exit receive the owning
// machine; per-run data lives on the machine's owner, not on the state.
type State[T any] interface {
	Name() string
	Enter(m *Machine[T])
	Exit(m *Machine[T])
}

// StateFunc builds a State from functions. Nil hooks are skipped.
type StateFunc[T any] struct {
	StateName string
	OnEnter   func(m *Machine[T])
	OnExit    func(m *Machine[T])
}

// Name implements State.
func (s StateFunc[T]) Name() string { return s.StateName }

// Enter implements State.
func (s StateFunc[T]) Enter(m *Machine[T]) {
	if s.OnEnter != nil {
		s.OnEnter(m)
	}
}

// Exit implements State.
func (s StateFunc[T]) Exit(m *Machine[T]) {
	if s.OnExit != nil {
		s.OnExit(m)
	}
}

// Node is the type-erased view of a machine, used for parent links between
// machines of different owner types.
type Node interface {
	MachineName() string
	CurrentName() string
	Generation() uint64
	Parent() Node
}
