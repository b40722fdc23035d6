package models

type (
	SubmitOutcome string
	RoundStatus   string
)

const (
	OutcomeRejectedDuplicate     SubmitOutcome = "rejected_duplicate"
	OutcomeAcceptedBelowQuorum   SubmitOutcome = "accepted_below_quorum"
	OutcomeAcceptedQuorumReached SubmitOutcome = "accepted_quorum_reached"
)

const (
	RoundStatusIdle       RoundStatus = "idle"
	RoundStatusCollecting RoundStatus = "collecting"
	RoundStatusReady      RoundStatus = "ready"
	RoundStatusCommitting RoundStatus = "committing"
)

// RoundState is a point-in-time snapshot of the current round.
type RoundState struct {
	Status        RoundStatus `json:"status"`
	PendingCount  int         `json:"pending_count"`
	Ratio         float64     `json:"ratio"`
	TrainerCount  int         `json:"trainer_count"`
	LatestVersion uint32      `json:"latest_version"`
}
