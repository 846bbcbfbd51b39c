package mvi

// Transition describes one applied intent
type Transition[S, I any] struct {
	Seq    uint64 // 1 for the first applied intent
	Intent I
	From   S
	To     S
}

// TransitionCallback is invoked on the event loop after each transition is
// published. It must not block.
type TransitionCallback[S, I any] func(Transition[S, I])
