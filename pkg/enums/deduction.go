package enums

import "fmt"

// DeductionMode distinguishes the two deduction engine entry points. The modes
// read different balance sources on purpose: scheduled trusts the stored
// balance, adhoc recomputes from the approved ledger first.
type DeductionMode string

const (
	DeductionModeScheduled DeductionMode = "scheduled"
	DeductionModeAdhoc     DeductionMode = "adhoc"
)

// IsValid checks whether the given mode matches the canonical enum.
func (d DeductionMode) IsValid() bool {
	return d == DeductionModeScheduled || d == DeductionModeAdhoc
}

// ParseDeductionMode converts raw strings into DeductionMode.
func ParseDeductionMode(value string) (DeductionMode, error) {
	switch DeductionMode(value) {
	case DeductionModeScheduled:
		return DeductionModeScheduled, nil
	case DeductionModeAdhoc:
		return DeductionModeAdhoc, nil
	}
	return "", fmt.Errorf("invalid deduction mode %q", value)
}
