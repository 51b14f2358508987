package hud

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// recorder captures rendered lines instead of printing them.
type recorder struct {
	lines []string
}

func (r *recorder) Show(line string) {
	r.lines = append(r.lines, line)
}

func TestDisplay_SafeDefaultBeforeFirstPush(t *testing.T) {
	req := require.New(t)
	rec := &recorder{}
	display := NewDisplay(rec)

	// Given a fresh subscription with no server value yet
	display.Attach("Alice")

	// Then the element shows the safe default, not a number
	req.Equal(StateSubscribed, display.State())
	req.Equal("0 (not available)", display.Text())
	req.Contains(rec.lines[0], "0 (not available)")
}

func TestDisplay_RendersServerValueVerbatim(t *testing.T) {
	req := require.New(t)
	rec := &recorder{}
	display := NewDisplay(rec)
	display.Attach("Alice")

	// When the server pushes an authoritative balance
	display.Apply(BalanceUpdate{
		DisplayName: "Alice",
		Balance:     110,
		Delta:       10,
		Reason:      "reward",
		At:          time.Now().UTC(),
	})

	// Then the shown value is the pushed one, untouched
	req.Equal(StateDisplaying, display.State())
	req.Equal("110", display.Text())
	req.Contains(rec.lines[1], "110")
	req.Contains(rec.lines[1], "+10")
}

func TestDisplay_SuccessivePushesReplaceTheValue(t *testing.T) {
	req := require.New(t)
	rec := &recorder{}
	display := NewDisplay(rec)
	display.Attach("Alice")

	display.Apply(BalanceUpdate{Balance: 110, Delta: 10, Reason: "reward"})
	// A correction can move the value down; the element renders it as is
	display.Apply(BalanceUpdate{Balance: 80, Delta: -30, Reason: "refund rollback"})

	req.Equal("80", display.Text())
	req.Contains(rec.lines[2], "-30")
}

func TestDisplay_DropsPushesBeforeAttach(t *testing.T) {
	req := require.New(t)
	rec := &recorder{}
	display := NewDisplay(rec)

	// An update with no subscription has no element to move
	display.Apply(BalanceUpdate{Balance: 999})

	req.Equal(StateUninitialized, display.State())
	req.Equal("0 (not available)", display.Text())
	req.Empty(rec.lines)
}

func TestDisplay_DetachFallsBackToSafeDefault(t *testing.T) {
	req := require.New(t)
	rec := &recorder{}
	display := NewDisplay(rec)
	display.Attach("Alice")
	display.Apply(BalanceUpdate{Balance: 110, Delta: 10, Reason: "reward"})

	// When the session ends
	display.Detach()

	// Then the stale number is replaced by the safe default
	req.Equal(StateDetached, display.State())
	req.Equal("0 (not available)", display.Text())

	// And later pushes are ignored
	display.Apply(BalanceUpdate{Balance: 500})
	req.Equal("0 (not available)", display.Text())
}
