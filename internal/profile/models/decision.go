package models

// Outcome names the path that produced a Decision. It is used for logging,
// metrics labels and the HTTP response.
type Outcome string

const (
	OutcomeUnauthenticated Outcome = "unauthenticated"
	OutcomeNoIdentity      Outcome = "no_identity"
	OutcomeSampleProfile   Outcome = "sample_profile"
	OutcomeFirstReference  Outcome = "first_reference"
	OutcomeOwner           Outcome = "owner"
	OutcomeSlotConsumed    Outcome = "slot_consumed"
	OutcomeInProgress      Outcome = "in_progress"
	OutcomeNeedsUpgrade    Outcome = "needs_upgrade"
	OutcomeQuotaExceeded   Outcome = "quota_exceeded"
	OutcomeUnavailable     Outcome = "unavailable"
)

// UnavailableMessage is shown to the user when the guard fails closed.
const UnavailableMessage = "Unable to verify profile access. Please check your connection and try again."

// Decision is the guard's verdict for one privileged action.
//
// Decisions are only built through the named constructors below so that the
// fail-open paths (missing data) and the fail-closed path (infrastructure
// error) stay structurally distinct.
type Decision struct {
	Allowed      bool
	NeedsUpgrade bool
	InProgress   bool
	Outcome      Outcome
	Reason       string
	// Blocked carries the rejected identity on a quota-exceeded hard block.
	Blocked *ArtifactIdentity
}

// Allow grants access after a successful verification step.
func Allow(outcome Outcome, reason string) Decision {
	return Decision{Allowed: true, Outcome: outcome, Reason: reason}
}

// AllowUnverifiable grants access because the input could not be evaluated.
// This is the fail-open path for ambiguous or missing data.
func AllowUnverifiable(outcome Outcome, reason string) Decision {
	return Decision{Allowed: true, Outcome: outcome, Reason: reason}
}

// DenyUnavailable withholds access because infrastructure failed.
// This is the fail-closed path; it never prompts for an upgrade.
func DenyUnavailable() Decision {
	return Decision{Allowed: false, Outcome: OutcomeUnavailable, Reason: UnavailableMessage}
}

// DenyNeedsUpgrade withholds access until the account upgrades its plan.
func DenyNeedsUpgrade(reason string) Decision {
	return Decision{Allowed: false, NeedsUpgrade: true, Outcome: OutcomeNeedsUpgrade, Reason: reason}
}

// DenyQuotaExceeded is the hard block raised when every slot is used.
func DenyQuotaExceeded(blocked ArtifactIdentity, reason string) Decision {
	return Decision{Allowed: false, Outcome: OutcomeQuotaExceeded, Reason: reason, Blocked: &blocked}
}

// Pending reports that another decision for the account is still running.
func Pending() Decision {
	return Decision{Allowed: false, InProgress: true, Outcome: OutcomeInProgress, Reason: "access check already in progress"}
}
