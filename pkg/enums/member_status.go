package enums

import "fmt"

// MemberStatus maps to the member_status enum in Postgres. It is the single
// activation state for a member; there is deliberately no companion boolean.
type MemberStatus string

const (
	MemberStatusRegistered MemberStatus = "registered"
	MemberStatusActive     MemberStatus = "active"
	MemberStatusInactive   MemberStatus = "inactive"
)

var validMemberStatuses = []MemberStatus{
	MemberStatusRegistered,
	MemberStatusActive,
	MemberStatusInactive,
}

// IsValid checks whether the given status matches the canonical enum.
func (s MemberStatus) IsValid() bool {
	for _, candidate := range validMemberStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseMemberStatus converts raw strings into MemberStatus.
func ParseMemberStatus(value string) (MemberStatus, error) {
	for _, candidate := range validMemberStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid member status %q", value)
}
