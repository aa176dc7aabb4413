// Package policy decides the terminal outcome of a cache run from the
// collected problems and the run's immutable configuration.
package policy

import "git.home.luguber.info/inful/buildcache/internal/problems"

// Policy holds the per-invocation configuration knobs. It is resolved
// once at the start of a run and never consulted as ambient state.
type Policy struct {
	FailOnProblems bool
	MaxProblems    int // problems.Unlimited for no ceiling
}

// OutcomeKind enumerates terminal states of a cache run.
type OutcomeKind int

const (
	Success OutcomeKind = iota
	SuccessWithWarnings
	Failure
	TooManyProblems
)

func (k OutcomeKind) String() string {
	switch k {
	case Success:
		return "success"
	case SuccessWithWarnings:
		return "success_with_warnings"
	case Failure:
		return "failure"
	case TooManyProblems:
		return "too_many_problems"
	}
	return "unknown"
}

// FailureKind refines a Failure outcome.
type FailureKind int

const (
	NoFailure FailureKind = iota
	SerializationErrors
	GenericProblems
)

// Outcome is the single terminal decision for one run.
type Outcome struct {
	Kind    OutcomeKind
	Failure FailureKind
}

// Succeeded reports whether the build may proceed (and, absent
// error-kind problems, the fingerprint may be written).
func (o Outcome) Succeeded() bool {
	return o.Kind == Success || o.Kind == SuccessWithWarnings
}

// Decide maps a problem set to the run's terminal outcome. A reached
// ceiling overrides everything, including FailOnProblems=false.
func Decide(set *problems.Set, ceilingReached bool, pol Policy) Outcome {
	switch {
	case set.TotalCount() == 0:
		return Outcome{Kind: Success}
	case ceilingReached:
		return Outcome{Kind: TooManyProblems}
	case pol.FailOnProblems:
		kind := GenericProblems
		if set.HasErrors() {
			kind = SerializationErrors
		}
		return Outcome{Kind: Failure, Failure: kind}
	default:
		return Outcome{Kind: SuccessWithWarnings}
	}
}
