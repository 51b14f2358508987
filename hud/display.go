// Package hud renders the replicated balance on the client side.
// The value shown here is a display copy: it moves only when the server
// pushes a new authoritative balance, never through local arithmetic.
package hud

import (
	"fmt"
	"sync"
	"time"

	"github.com/gookit/color"
)

// State tracks the lifecycle of the on-screen balance element.
type State int

const (
	// StateUninitialized: no subscription yet, nothing trustworthy to show.
	StateUninitialized State = iota
	// StateSubscribed: the stream is up but no value has arrived yet.
	StateSubscribed
	// StateDisplaying: at least one server value has been rendered.
	StateDisplaying
	// StateDetached: the session ended; the element keeps its last text.
	StateDetached
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateSubscribed:
		return "subscribed"
	case StateDisplaying:
		return "displaying"
	case StateDetached:
		return "detached"
	default:
		return "unknown"
	}
}

// unavailableText is the safe default shown whenever no server value is
// trusted: before the first push, and again after detaching.
const unavailableText = "0 (not available)"

// BalanceUpdate is one server push, already decoded from the wire.
type BalanceUpdate struct {
	DisplayName string
	Balance     int64
	Delta       int64
	Reason      string
	At          time.Time
}

// Renderer is the output device of the display. Production uses the
// colored terminal renderer; tests record lines instead.
type Renderer interface {
	Show(line string)
}

// ColorRenderer prints to the terminal with gookit colors.
type ColorRenderer struct {
	Colours bool
}

func (r ColorRenderer) Show(line string) {
	if r.Colours {
		color.New(color.BgBlack, color.FgGreen).Println(line)
		return
	}
	fmt.Println(line)
}

// Display is the client-side balance element. It never computes a
// balance: every rendered value comes verbatim from a BalanceUpdate.
type Display struct {
	mu       sync.Mutex
	state    State
	renderer Renderer
	owner    string
	text     string
}

func NewDisplay(renderer Renderer) *Display {
	return &Display{
		state:    StateUninitialized,
		renderer: renderer,
		text:     unavailableText,
	}
}

// Attach marks the subscription as established. The shown value stays at
// the safe default until the first push arrives.
func (d *Display) Attach(owner string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state != StateUninitialized {
		return
	}
	d.owner = owner
	d.state = StateSubscribed
	d.renderer.Show(fmt.Sprintf("[%s] balance: %s", owner, unavailableText))
}

// Apply renders a server push. Updates arriving before Attach or after
// Detach are dropped: there is no element to move.
func (d *Display) Apply(update BalanceUpdate) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state != StateSubscribed && d.state != StateDisplaying {
		return
	}
	d.state = StateDisplaying
	d.text = fmt.Sprintf("%d", update.Balance)
	d.renderer.Show(fmt.Sprintf("[%s] balance: %d (%+d, %s)",
		d.owner, update.Balance, update.Delta, update.Reason))
}

// Detach ends the session. The value falls back to the safe default so a
// stale number is never mistaken for a live one.
func (d *Display) Detach() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state == StateDetached {
		return
	}
	d.state = StateDetached
	d.text = unavailableText
	d.renderer.Show(fmt.Sprintf("[%s] session ended", d.owner))
}

// Text returns what the element currently shows.
func (d *Display) Text() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.text
}

func (d *Display) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}
