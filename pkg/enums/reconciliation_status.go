package enums

import "fmt"

// ReconciliationStatus flags sales that need a follow-up pass.
type ReconciliationStatus string

const (
	ReconciliationOK               ReconciliationStatus = "ok"
	ReconciliationInventoryPending ReconciliationStatus = "inventory_pending"
	ReconciliationOrphaned         ReconciliationStatus = "orphaned"
)

var validReconciliationStatuses = []ReconciliationStatus{
	ReconciliationOK,
	ReconciliationInventoryPending,
	ReconciliationOrphaned,
}

func (r ReconciliationStatus) IsValid() bool {
	for _, candidate := range validReconciliationStatuses {
		if candidate == r {
			return true
		}
	}
	return false
}

func ParseReconciliationStatus(value string) (ReconciliationStatus, error) {
	for _, candidate := range validReconciliationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid reconciliation status %q", value)
}
