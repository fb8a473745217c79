package enums

import "fmt"

// ContractStatus tracks a contract through its signature workflow.
type ContractStatus string

const (
	ContractStatusPending   ContractStatus = "pending"
	ContractStatusSent      ContractStatus = "sent"
	ContractStatusSigned    ContractStatus = "signed"
	ContractStatusCancelled ContractStatus = "cancelled"
)

var validContractStatuses = []ContractStatus{
	ContractStatusPending,
	ContractStatusSent,
	ContractStatusSigned,
	ContractStatusCancelled,
}

// String implements fmt.Stringer.
func (v ContractStatus) String() string {
	return string(v)
}

// IsValid reports whether the value is a known ContractStatus.
func (v ContractStatus) IsValid() bool {
	for _, candidate := range validContractStatuses {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseContractStatus converts raw input into a ContractStatus.
func ParseContractStatus(value string) (ContractStatus, error) {
	for _, candidate := range validContractStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid contract status %q", value)
}
