package domain

import "time"

const (
	minPaymentDay = 1
	maxPaymentDay = 28

	// Hard ceiling on counted payment events; guards the counting loop
	// against deadlines absurdly far in the future.
	maxCountedPeriods = 1200
)

// ClampPaymentDay forces a configured payment day into the valid 1-28 range.
// Day 28 is the ceiling so every month has the payment day.
func ClampPaymentDay(day int) int {
	if day < minPaymentDay {
		return minPaymentDay
	}
	if day > maxPaymentDay {
		return maxPaymentDay
	}
	return day
}

// NextPaymentDate returns the first occurrence of the payment day strictly
// after the given date. Times of day are ignored; the result is a UTC date.
func NextPaymentDate(today time.Time, paymentDay int) time.Time {
	day := ClampPaymentDay(paymentDay)

	ref := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	candidate := time.Date(today.Year(), today.Month(), day, 0, 0, 0, 0, time.UTC)
	if !candidate.After(ref) {
		candidate = candidate.AddDate(0, 1, 0)
	}
	return candidate
}

// PaymentPeriodsUntil counts how many payment events occur strictly after
// today and strictly before the deadline, floored at 1. This models "how many
// more payment events happen before the deadline", not calendar months.
func PaymentPeriodsUntil(today, deadline time.Time, paymentDay int) int {
	end := time.Date(deadline.Year(), deadline.Month(), deadline.Day(), 0, 0, 0, 0, time.UTC)

	count := 0
	for p := NextPaymentDate(today, paymentDay); p.Before(end); p = p.AddDate(0, 1, 0) {
		count++
		if count >= maxCountedPeriods {
			break
		}
	}

	if count < 1 {
		return 1
	}
	return count
}

// MonthLabel returns the canonical "YYYY-MM" partition key for per-month
// plans and execution records, always in UTC.
func MonthLabel(t time.Time) string {
	return t.UTC().Format("2006-01")
}
