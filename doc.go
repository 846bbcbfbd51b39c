// Package mvi provides a generic Model-View-Intent state container.
//
// A Store owns one immutable state value, an unbounded intent queue and a
// pure reducer. Producers call Dispatch from any goroutine; a single event
// loop applies intents in enqueue order and publishes each new state to
// subscribers. A new subscriber first receives the latest state, then every
// later one.
//
//	store, _ := mvi.NewDefinition[State, Intent]().
//	    Initial(func() State { return State{} }).
//	    Reducer(reduce).
//	    Build()
//	store.Start(ctx)
//	defer store.Stop()
package mvi
