package tui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/librescoot/mvi/counter"
)

// RunPlain is the line-oriented fallback used when stdout is not a terminal.
// Every published state is written to out as one line; each input line is a
// command (+, -, r, q). It returns when in reaches EOF, q is read, or the
// store is torn down. If in is an io.Closer it is closed on return, which
// unblocks the reader goroutine; otherwise that goroutine stays parked in
// Read until in yields data or EOF.
func RunPlain(ctx context.Context, store *counter.Store, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if c, ok := in.(io.Closer); ok {
		defer c.Close()
	}

	observed := make(chan error, 1)
	go func() {
		observed <- store.Observe(ctx, func(s counter.State) {
			fmt.Fprintln(out, s.Counter)
		})
	}()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- strings.TrimSpace(scanner.Text()):
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case err := <-observed:
			return err
		case line, ok := <-lines:
			if !ok || line == "q" {
				cancel()
				<-observed
				return nil
			}
			if intent, ok := IntentForKey(line); ok {
				store.Dispatch(intent)
			}
		}
	}
}
