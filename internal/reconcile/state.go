package reconcile

import "fmt"

// State identifies a step of a reconciliation cycle.
type State int

// Reconciliation states in the order a backup cycle can visit them.
const (
	StateStart State = iota
	StateEnsureUpToDate
	StateSyncing
	StateInspecting
	StateClean
	StateReviewing
	StateCommitting
	StateRollingBack
	StateAborted
	StateEnd
)

var stateNames = map[State]string{
	StateStart:          "start",
	StateEnsureUpToDate: "ensure-up-to-date",
	StateSyncing:        "syncing",
	StateInspecting:     "inspecting",
	StateClean:          "clean",
	StateReviewing:      "reviewing",
	StateCommitting:     "committing",
	StateRollingBack:    "rolling-back",
	StateAborted:        "aborted",
	StateEnd:            "end",
}

func (state State) String() string {
	if name, known := stateNames[state]; known {
		return name
	}
	return fmt.Sprintf("state(%d)", int(state))
}

// Outcome summarizes how a cycle ended.
type Outcome int

// Cycle outcomes.
const (
	OutcomeClean Outcome = iota
	OutcomeCommitted
	OutcomeRolledBack
	OutcomeAborted
	OutcomeRollbackCancelled
)

var outcomeNames = map[Outcome]string{
	OutcomeClean:             "clean",
	OutcomeCommitted:         "committed",
	OutcomeRolledBack:        "rolled-back",
	OutcomeAborted:           "aborted",
	OutcomeRollbackCancelled: "rollback-cancelled",
}

func (outcome Outcome) String() string {
	if name, known := outcomeNames[outcome]; known {
		return name
	}
	return fmt.Sprintf("outcome(%d)", int(outcome))
}
