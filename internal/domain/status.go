package domain

import "fmt"

// Status is the assertion state of a clinical statement.
type Status string

const (
	StatusPerformed Status = "performed"
	StatusPlanned   Status = "planned"
	StatusDenied    Status = "denied"
	StatusHistory   Status = "history"
	StatusMeasured  Status = "measured"
	StatusPresent   Status = "present"
	StatusUnknown   Status = "unknown"
	StatusNegated   Status = "negated"
)

// AllStatuses lists the closed status enumeration in default precedence order.
func AllStatuses() []Status {
	return []Status{
		StatusPerformed,
		StatusMeasured,
		StatusPresent,
		StatusHistory,
		StatusUnknown,
		StatusPlanned,
		StatusDenied,
		StatusNegated,
	}
}

func ValidStatus(s string) bool {
	switch Status(s) {
	case StatusPerformed, StatusPlanned, StatusDenied, StatusHistory,
		StatusMeasured, StatusPresent, StatusUnknown, StatusNegated:
		return true
	}
	return false
}

func ParseStatus(s string) (Status, error) {
	if !ValidStatus(s) {
		return "", fmt.Errorf("invalid status %q", s)
	}
	return Status(s), nil
}

// Negative reports whether the status asserts absence.
func (s Status) Negative() bool {
	return s == StatusDenied || s == StatusNegated
}
