package experiment

import (
	"errors"

	"bundleBoost/domain"
)

var (
	ErrInvalidTransition = errors.New("invalid ab test status transition")
	ErrTestNotRunning    = errors.New("ab test is not running")
	ErrInvalidArm        = errors.New("invalid arm")
	ErrInvalidMetric     = errors.New("invalid metric")
)

// DRAFT -> RUNNING -> COMPLETED, never backwards.
var transitions = map[domain.ABTestStatus]domain.ABTestStatus{
	domain.ABTestStatusDraft:   domain.ABTestStatusRunning,
	domain.ABTestStatusRunning: domain.ABTestStatusCompleted,
}

func CanTransition(from, to domain.ABTestStatus) bool {
	next, ok := transitions[from]
	return ok && next == to
}

func validArm(a domain.Arm) bool {
	return a == domain.ArmControl || a == domain.ArmVariant
}

func validMetric(m domain.MetricKind) bool {
	return m == domain.MetricImpression || m == domain.MetricConversion
}
