package domain

// Balance is an integer currency amount owned exclusively by the ledger.
// It never goes below zero.
type Balance int64

const (
	// DefaultStartingBalance is granted to every newly tracked participant.
	DefaultStartingBalance Balance = 100
	// DefaultRewardAmount is the fixed increment of a single reward request.
	DefaultRewardAmount int64 = 10
	// RewardReason tags balance changes produced by the reward path, as
	// opposed to administrative adjustments.
	RewardReason = "reward"
)
