package enums

import "fmt"

// PaymentPlan is how a client agreed to pay for a sale.
type PaymentPlan string

const (
	PaymentPlanFull         PaymentPlan = "full"
	PaymentPlanInstallment2 PaymentPlan = "installment2"
	PaymentPlanInstallment1 PaymentPlan = "installment1"
)

var validPaymentPlans = []PaymentPlan{
	PaymentPlanFull,
	PaymentPlanInstallment2,
	PaymentPlanInstallment1,
}

func (p PaymentPlan) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentPlan.
func (p PaymentPlan) IsValid() bool {
	for _, candidate := range validPaymentPlans {
		if candidate == p {
			return true
		}
	}
	return false
}

// InitialPaymentStatus is the status a new sale starts in for this plan.
// Only pay-in-full sales are collected up front.
func (p PaymentPlan) InitialPaymentStatus() PaymentStatus {
	if p == PaymentPlanFull {
		return PaymentStatusPaid
	}
	return PaymentStatusPending
}

// ParsePaymentPlan converts raw input into a PaymentPlan.
func ParsePaymentPlan(value string) (PaymentPlan, error) {
	for _, candidate := range validPaymentPlans {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment plan %q", value)
}
