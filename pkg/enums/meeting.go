package enums

import "fmt"

// MeetingType maps to the meeting_type enum in Postgres.
type MeetingType string

const (
	MeetingTypeGeneral   MeetingType = "general"
	MeetingTypeBoard     MeetingType = "board"
	MeetingTypeAnnual    MeetingType = "annual"
	MeetingTypeSpecial   MeetingType = "special"
	MeetingTypeEmergency MeetingType = "emergency"
)

var validMeetingTypes = []MeetingType{
	MeetingTypeGeneral,
	MeetingTypeBoard,
	MeetingTypeAnnual,
	MeetingTypeSpecial,
	MeetingTypeEmergency,
}

// IsValid checks whether the given type matches the canonical enum.
func (m MeetingType) IsValid() bool {
	for _, candidate := range validMeetingTypes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMeetingType converts raw strings into MeetingType.
func ParseMeetingType(value string) (MeetingType, error) {
	for _, candidate := range validMeetingTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid meeting type %q", value)
}
