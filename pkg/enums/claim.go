package enums

import "fmt"

// ClaimType maps to the claim_type enum in Postgres.
type ClaimType string

const (
	ClaimTypeDeath     ClaimType = "death"
	ClaimTypeMedical   ClaimType = "medical"
	ClaimTypeEducation ClaimType = "education"
	ClaimTypeEmergency ClaimType = "emergency"
)

var validClaimTypes = []ClaimType{
	ClaimTypeDeath,
	ClaimTypeMedical,
	ClaimTypeEducation,
	ClaimTypeEmergency,
}

// IsValid checks whether the given type matches the canonical enum.
func (c ClaimType) IsValid() bool {
	for _, candidate := range validClaimTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseClaimType converts raw strings into ClaimType.
func ParseClaimType(value string) (ClaimType, error) {
	for _, candidate := range validClaimTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid claim type %q", value)
}

// ClaimRelationship identifies who the claim concerns relative to the member.
type ClaimRelationship string

const (
	ClaimRelationshipSelf    ClaimRelationship = "self"
	ClaimRelationshipSpouse  ClaimRelationship = "spouse"
	ClaimRelationshipChild   ClaimRelationship = "child"
	ClaimRelationshipParent  ClaimRelationship = "parent"
	ClaimRelationshipSibling ClaimRelationship = "sibling"
)

var validClaimRelationships = []ClaimRelationship{
	ClaimRelationshipSelf,
	ClaimRelationshipSpouse,
	ClaimRelationshipChild,
	ClaimRelationshipParent,
	ClaimRelationshipSibling,
}

// IsValid checks whether the given relationship matches the canonical enum.
func (c ClaimRelationship) IsValid() bool {
	for _, candidate := range validClaimRelationships {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseClaimRelationship converts raw strings into ClaimRelationship.
func ParseClaimRelationship(value string) (ClaimRelationship, error) {
	for _, candidate := range validClaimRelationships {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid claim relationship %q", value)
}
