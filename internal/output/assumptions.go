package output

import (
	"fmt"

	"github.com/rgehrsitz/dispo/internal/domain"
)

// Assumptions lists the modeling assumptions rendered in detailed outputs
func Assumptions(asset *domain.Asset) []string {
	policy := "decrements below zero months are ignored"
	if asset.Policy() == domain.OverrideReject {
		policy = "decrements below zero months are rejected"
	}
	return []string{
		fmt.Sprintf("NPV discount rate: %s annually", domain.FormatPercent(&asset.Assumptions.DiscountRate)),
		"Carrying costs spread evenly over the holding months; the last month absorbs rounding",
		"Sale proceeds received at the end of the last holding month",
		"IRR and NPV discount on actual days over a 365-day year",
		"Phase overrides: " + policy,
	}
}
