package arp

import (
	"regexp"
	"strings"
	"time"

	"arpscout/internal/core/apperror"
)

var itemCodePattern = regexp.MustCompile(`^\d{3,10}$`)

// IsValidItemCode reports whether code is a 3 to 10 digit catalog code.
func IsValidItemCode(code string) bool {
	return itemCodePattern.MatchString(strings.TrimSpace(code))
}

// IsValidDateRange reports whether both dates parse and from is not after to.
func IsValidDateRange(from, to string) bool {
	start, err := time.Parse(DateLayout, strings.TrimSpace(from))
	if err != nil {
		return false
	}
	end, err := time.Parse(DateLayout, strings.TrimSpace(to))
	if err != nil {
		return false
	}
	return !start.After(end)
}

// DefaultWindow returns the validity window ending today and starting
// DefaultWindowDays earlier.
func DefaultWindow(now time.Time) (from, to string) {
	return now.AddDate(0, 0, -DefaultWindowDays).Format(DateLayout), now.Format(DateLayout)
}

// Normalize trims text filters and fills defaults: page 1, page size 10 and,
// when both dates are empty, the default validity window.
func (f *SearchFilters) Normalize(now time.Time) {
	f.ItemCode = strings.TrimSpace(f.ItemCode)
	f.ValidityFrom = strings.TrimSpace(f.ValidityFrom)
	f.ValidityTo = strings.TrimSpace(f.ValidityTo)
	f.ManagingUnitCode = strings.TrimSpace(f.ManagingUnitCode)
	f.AgreementNumber = strings.TrimSpace(f.AgreementNumber)
	f.ProcurementModalityCode = strings.TrimSpace(f.ProcurementModalityCode)
	f.ItemType = strings.TrimSpace(f.ItemType)

	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = DefaultPageSize
	}
	if f.ValidityFrom == "" && f.ValidityTo == "" {
		f.ValidityFrom, f.ValidityTo = DefaultWindow(now)
	}
}

// Validate checks the filters. It never touches the network.
func (f SearchFilters) Validate() error {
	if !IsValidItemCode(f.ItemCode) {
		return apperror.NewValidation("item code must have 3 to 10 digits").
			WithDetail("field", "itemCode").
			WithDetail("value", f.ItemCode)
	}
	if !IsValidDateRange(f.ValidityFrom, f.ValidityTo) {
		return apperror.NewValidation("invalid validity range").
			WithDetail("field", "validityFrom").
			WithDetail("validityFrom", f.ValidityFrom).
			WithDetail("validityTo", f.ValidityTo)
	}
	if f.Page < 1 {
		return apperror.NewValidation("page must be at least 1").WithDetail("field", "page")
	}
	if f.PageSize <= 0 {
		return apperror.NewValidation("page size must be positive").WithDetail("field", "pageSize")
	}
	return nil
}
