package domain

import (
	"sync"
	"testing"

	"arena-ledger/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestLedger_Join_GrantsStartingBalance(t *testing.T) {
	req := require.New(t)
	ledger := NewLedger(DefaultStartingBalance)
	alice := Participant{ID: ParticipantID(uuid.NewString()), DisplayName: "Alice"}

	// When a participant joins for the first time
	balance, created := ledger.Join(alice)

	// Then a record is created at the configured starting value
	req.True(created)
	req.Equal(DefaultStartingBalance, balance)

	fetched, err := ledger.Balance(alice.ID)
	req.NoError(err)
	req.Equal(DefaultStartingBalance, fetched)
}

func TestLedger_Join_IsIdempotentPerIdentifier(t *testing.T) {
	req := require.New(t)
	ledger := NewLedger(DefaultStartingBalance)
	alice := Participant{ID: "alice-session", DisplayName: "Alice"}

	ledger.Join(alice)
	_, err := ledger.Credit(alice.ID, 25)
	req.NoError(err)

	// When the same identifier joins again
	balance, created := ledger.Join(alice)

	// Then the existing balance is returned, not reset
	req.False(created)
	req.Equal(Balance(125), balance)
}

func TestLedger_Credit_IncrementsAndReturnsNewValue(t *testing.T) {
	req := require.New(t)
	ledger := NewLedger(DefaultStartingBalance)
	alice := Participant{ID: "alice-session", DisplayName: "Alice"}
	ledger.Join(alice)

	balance, err := ledger.Credit(alice.ID, DefaultRewardAmount)

	req.NoError(err)
	req.Equal(Balance(110), balance)
}

func TestLedger_Credit_RejectsNonPositiveAmounts(t *testing.T) {
	req := require.New(t)
	ledger := NewLedger(DefaultStartingBalance)
	alice := Participant{ID: "alice-session", DisplayName: "Alice"}
	ledger.Join(alice)

	for _, amount := range []int64{0, -5} {
		_, err := ledger.Credit(alice.ID, amount)
		req.ErrorIs(err, errors.ErrInvalidAmount)
	}

	// And the balance is untouched
	balance, err := ledger.Balance(alice.ID)
	req.NoError(err)
	req.Equal(DefaultStartingBalance, balance)
}

func TestLedger_Credit_UnknownParticipant(t *testing.T) {
	req := require.New(t)
	ledger := NewLedger(DefaultStartingBalance)

	_, err := ledger.Credit("ghost", DefaultRewardAmount)

	req.ErrorIs(err, errors.ErrNotFound)
	req.Zero(ledger.Tracked())
}

func TestLedger_Credit_AfterLeave(t *testing.T) {
	req := require.New(t)
	ledger := NewLedger(DefaultStartingBalance)
	alice := Participant{ID: "alice-session", DisplayName: "Alice"}
	ledger.Join(alice)
	req.NoError(ledger.Leave(alice.ID))

	_, err := ledger.Credit(alice.ID, DefaultRewardAmount)

	req.ErrorIs(err, errors.ErrAlreadyDisconnected)
}

func TestLedger_Leave_Twice(t *testing.T) {
	req := require.New(t)
	ledger := NewLedger(DefaultStartingBalance)
	alice := Participant{ID: "alice-session", DisplayName: "Alice"}
	ledger.Join(alice)

	req.NoError(ledger.Leave(alice.ID))
	req.ErrorIs(ledger.Leave(alice.ID), errors.ErrAlreadyDisconnected)
	req.ErrorIs(ledger.Leave("ghost"), errors.ErrNotFound)
}

// TestLedger_ReconnectScenario walks the full session from the spec of the
// experience: join, earn, disconnect, rejoin. The rejoin must read the
// earned balance, not the starting value.
func TestLedger_ReconnectScenario(t *testing.T) {
	req := require.New(t)
	ledger := NewLedger(DefaultStartingBalance)
	alice := Participant{ID: "alice-session", DisplayName: "Alice"}

	balance, _ := ledger.Join(alice)
	req.Equal(Balance(100), balance)

	balance, err := ledger.Credit(alice.ID, DefaultRewardAmount)
	req.NoError(err)
	req.Equal(Balance(110), balance)

	req.NoError(ledger.Leave(alice.ID))

	balance, created := ledger.Join(alice)
	req.False(created)
	req.Equal(Balance(110), balance)
}

func TestLedger_Adjust_NeverDrivesBalanceNegative(t *testing.T) {
	req := require.New(t)
	ledger := NewLedger(DefaultStartingBalance)
	alice := Participant{ID: "alice-session", DisplayName: "Alice"}
	ledger.Join(alice)

	// A negative correction within the balance is fine
	balance, err := ledger.Adjust(alice.ID, -30)
	req.NoError(err)
	req.Equal(Balance(70), balance)

	// One that would cross zero is rejected and changes nothing
	_, err = ledger.Adjust(alice.ID, -71)
	req.ErrorIs(err, errors.ErrInvalidAmount)

	balance, err = ledger.Balance(alice.ID)
	req.NoError(err)
	req.Equal(Balance(70), balance)
}

func TestLedger_ConcurrentCredits(t *testing.T) {
	req := require.New(t)
	ledger := NewLedger(0)
	alice := Participant{ID: "alice-session", DisplayName: "Alice"}
	ledger.Join(alice)

	const workers = 8
	const creditsEach = 100

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < creditsEach; j++ {
				_, err := ledger.Credit(alice.ID, 1)
				require.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	balance, err := ledger.Balance(alice.ID)
	req.NoError(err)
	req.Equal(Balance(workers*creditsEach), balance)
}
