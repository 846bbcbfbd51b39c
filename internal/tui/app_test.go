package tui

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/librescoot/mvi/counter"
)

func newStore(t *testing.T) *counter.Store {
	t.Helper()
	store, err := counter.New()
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := store.Start(ctx); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	t.Cleanup(func() { store.Stop() })
	return store
}

func TestIntentForKey(t *testing.T) {
	tests := []struct {
		key  string
		want counter.Intent
	}{
		{"+", counter.Increment{}},
		{"up", counter.Increment{}},
		{"-", counter.Decrement{}},
		{"down", counter.Decrement{}},
		{"r", counter.Reset{}},
		{" ", counter.Reset{}},
	}
	for _, tt := range tests {
		got, ok := IntentForKey(tt.key)
		if !ok || got != tt.want {
			t.Fatalf("IntentForKey(%q) = %v, %v; want %v", tt.key, got, ok, tt.want)
		}
	}
	if _, ok := IntentForKey("x"); ok {
		t.Fatal("did not expect an intent for x")
	}
}

func TestAppRendersPublishedState(t *testing.T) {
	store := newStore(t)
	app := New(context.Background(), store)
	defer app.Close()

	cmd := app.Init()
	if cmd == nil {
		t.Fatal("expected Init to wait for state")
	}
	// first message replays the current state
	msg := cmd()
	if _, ok := msg.(stateMsg); !ok {
		t.Fatalf("expected stateMsg, got %T", msg)
	}

	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'+'}})
	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'+'}})

	var next tea.Cmd
	for app.state.Counter != 2 {
		_, next = app.Update(cmd())
		cmd = next
	}
	if !strings.Contains(app.View(), "2") {
		t.Fatalf("view does not show counter:\n%s", app.View())
	}

	app.Update(tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	for app.state.Counter != 0 {
		_, cmd = app.Update(cmd())
	}
}

func TestAppQuitsWhenStoreStops(t *testing.T) {
	store := newStore(t)
	app := New(context.Background(), store)
	defer app.Close()

	cmd := app.Init()
	cmd() // initial state
	store.Stop()

	msg := cmd()
	if _, ok := msg.(stoppedMsg); !ok {
		t.Fatalf("expected stoppedMsg, got %T", msg)
	}
	_, quit := app.Update(msg)
	if quit == nil {
		t.Fatal("expected quit command")
	}
	if app.Err() != nil {
		t.Fatalf("teardown should not be reported as error: %v", app.Err())
	}
}

func TestAppQuitKey(t *testing.T) {
	store := newStore(t)
	app := New(context.Background(), store)
	defer app.Close()

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
}

func TestRunPlain(t *testing.T) {
	store := newStore(t)

	inR, inW := io.Pipe()
	var out syncBuffer

	done := make(chan error, 1)
	go func() {
		done <- RunPlain(context.Background(), store, inR, &out)
	}()

	waitOutput(t, &out, "0\n")
	io.WriteString(inW, "+\n")
	waitOutput(t, &out, "0\n1\n")
	io.WriteString(inW, "+\n-\nr\n")
	waitOutput(t, &out, "0\n1\n2\n1\n0\n")
	io.WriteString(inW, "q\n")

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("RunPlain: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("RunPlain did not return after q")
	}
	inW.Close()
}

func waitOutput(t *testing.T, out *syncBuffer, want string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for out.String() != want {
		if time.Now().After(deadline) {
			t.Fatalf("output = %q, want %q", out.String(), want)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestRunPlainClosesInput(t *testing.T) {
	store := newStore(t)

	inR, inW := io.Pipe()
	var out syncBuffer

	done := make(chan error, 1)
	go func() {
		done <- RunPlain(context.Background(), store, inR, &out)
	}()
	waitOutput(t, &out, "0\n")

	store.Stop()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("RunPlain: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("RunPlain did not return after teardown")
	}

	if _, err := io.WriteString(inW, "+\n"); !errors.Is(err, io.ErrClosedPipe) {
		t.Fatalf("expected input closed on return, write err = %v", err)
	}
}
