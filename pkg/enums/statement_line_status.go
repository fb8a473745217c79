package enums

import "fmt"

// StatementLineStatus tracks bank statement line reconciliation.
type StatementLineStatus string

const (
	StatementLineStatusPending    StatementLineStatus = "pending"
	StatementLineStatusReconciled StatementLineStatus = "reconciled"
	StatementLineStatusIgnored    StatementLineStatus = "ignored"
)

var validStatementLineStatuses = []StatementLineStatus{
	StatementLineStatusPending,
	StatementLineStatusReconciled,
	StatementLineStatusIgnored,
}

// String implements fmt.Stringer.
func (v StatementLineStatus) String() string {
	return string(v)
}

// IsValid reports whether the value is a known StatementLineStatus.
func (v StatementLineStatus) IsValid() bool {
	for _, candidate := range validStatementLineStatuses {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseStatementLineStatus converts raw input into a StatementLineStatus.
func ParseStatementLineStatus(value string) (StatementLineStatus, error) {
	for _, candidate := range validStatementLineStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid statement line status %q", value)
}
