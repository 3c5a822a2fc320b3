package enums

import "fmt"

// ApplicationType maps to the application_type enum in Postgres.
type ApplicationType string

const (
	ApplicationTypeSingle ApplicationType = "single"
	ApplicationTypeDouble ApplicationType = "double"
)

// IsValid checks whether the given type matches the canonical enum.
func (a ApplicationType) IsValid() bool {
	return a == ApplicationTypeSingle || a == ApplicationTypeDouble
}

// Label returns the human-readable membership type recorded on the member
// profile once the application is approved.
func (a ApplicationType) Label() string {
	switch a {
	case ApplicationTypeSingle:
		return "Single Family"
	case ApplicationTypeDouble:
		return "Double Family"
	}
	return ""
}

// ParseApplicationType converts raw strings into ApplicationType.
func ParseApplicationType(value string) (ApplicationType, error) {
	switch ApplicationType(value) {
	case ApplicationTypeSingle:
		return ApplicationTypeSingle, nil
	case ApplicationTypeDouble:
		return ApplicationTypeDouble, nil
	}
	return "", fmt.Errorf("invalid application type %q", value)
}
