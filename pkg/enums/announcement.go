package enums

import "fmt"

// AnnouncementType maps to the announcement_type enum in Postgres.
type AnnouncementType string

const (
	AnnouncementTypeGeneral AnnouncementType = "general"
	AnnouncementTypeUrgent  AnnouncementType = "urgent"
	AnnouncementTypeEvent   AnnouncementType = "event"
	AnnouncementTypePolicy  AnnouncementType = "policy"
)

var validAnnouncementTypes = []AnnouncementType{
	AnnouncementTypeGeneral,
	AnnouncementTypeUrgent,
	AnnouncementTypeEvent,
	AnnouncementTypePolicy,
}

// IsValid checks whether the given type matches the canonical enum.
func (a AnnouncementType) IsValid() bool {
	for _, candidate := range validAnnouncementTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAnnouncementType converts raw strings into AnnouncementType.
func ParseAnnouncementType(value string) (AnnouncementType, error) {
	for _, candidate := range validAnnouncementTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid announcement type %q", value)
}
