package enums

import "fmt"

// MemberRole separates ordinary members from administrators.
type MemberRole string

const (
	MemberRoleMember MemberRole = "member"
	MemberRoleAdmin  MemberRole = "admin"
)

// IsValid checks whether the given role matches the canonical enum.
func (r MemberRole) IsValid() bool {
	return r == MemberRoleMember || r == MemberRoleAdmin
}

// ParseMemberRole converts raw strings into MemberRole.
func ParseMemberRole(value string) (MemberRole, error) {
	switch MemberRole(value) {
	case MemberRoleMember:
		return MemberRoleMember, nil
	case MemberRoleAdmin:
		return MemberRoleAdmin, nil
	}
	return "", fmt.Errorf("invalid member role %q", value)
}
