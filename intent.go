package mvi

// envelope carries an intent through the queue
type envelope[S, I any] struct {
	intent I
	// done is set for DispatchSync; the loop sends the outcome and never blocks
	done chan syncResult[S]
}

type syncResult[S any] struct {
	state S
	err   error
}
