package enums

import "fmt"

// ReviewStatus is the admin-review lifecycle shared by share purchases,
// payments, claims and membership applications.
type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "pending"
	ReviewStatusApproved ReviewStatus = "approved"
	ReviewStatusRejected ReviewStatus = "rejected"
)

var validReviewStatuses = []ReviewStatus{
	ReviewStatusPending,
	ReviewStatusApproved,
	ReviewStatusRejected,
}

// IsValid checks whether the given status matches the canonical enum.
func (s ReviewStatus) IsValid() bool {
	for _, candidate := range validReviewStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsDecided reports whether the status is terminal.
func (s ReviewStatus) IsDecided() bool {
	return s == ReviewStatusApproved || s == ReviewStatusRejected
}

// ParseReviewStatus converts raw strings into ReviewStatus.
func ParseReviewStatus(value string) (ReviewStatus, error) {
	for _, candidate := range validReviewStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid review status %q", value)
}

// ReviewDecision is the admin input when deciding a pending record.
type ReviewDecision string

const (
	ReviewDecisionApprove ReviewDecision = "approve"
	ReviewDecisionReject  ReviewDecision = "reject"
)

// IsValid checks whether the decision is one of approve/reject.
func (d ReviewDecision) IsValid() bool {
	return d == ReviewDecisionApprove || d == ReviewDecisionReject
}

// Status returns the terminal review status the decision resolves to.
func (d ReviewDecision) Status() ReviewStatus {
	if d == ReviewDecisionApprove {
		return ReviewStatusApproved
	}
	return ReviewStatusRejected
}

// ParseReviewDecision converts raw strings into ReviewDecision.
func ParseReviewDecision(value string) (ReviewDecision, error) {
	switch ReviewDecision(value) {
	case ReviewDecisionApprove:
		return ReviewDecisionApprove, nil
	case ReviewDecisionReject:
		return ReviewDecisionReject, nil
	}
	return "", fmt.Errorf("invalid review decision %q", value)
}
