package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestClampPaymentDay(t *testing.T) {
	assert.Equal(t, 1, ClampPaymentDay(0))
	assert.Equal(t, 1, ClampPaymentDay(-5))
	assert.Equal(t, 15, ClampPaymentDay(15))
	assert.Equal(t, 28, ClampPaymentDay(28))
	assert.Equal(t, 28, ClampPaymentDay(31))
}

func TestNextPaymentDate(t *testing.T) {
	tests := []struct {
		name       string
		today      time.Time
		paymentDay int
		want       time.Time
	}{
		{
			name:       "payment day later this month",
			today:      date(2026, time.March, 10),
			paymentDay: 15,
			want:       date(2026, time.March, 15),
		},
		{
			name:       "payment day already passed rolls to next month",
			today:      date(2026, time.March, 20),
			paymentDay: 15,
			want:       date(2026, time.April, 15),
		},
		{
			name:       "today is the payment day rolls to next month",
			today:      date(2026, time.March, 15),
			paymentDay: 15,
			want:       date(2026, time.April, 15),
		},
		{
			name:       "out-of-range day clamps to 28",
			today:      date(2026, time.January, 29),
			paymentDay: 31,
			want:       date(2026, time.February, 28),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextPaymentDate(tt.today, tt.paymentDay))
		})
	}
}

func TestPaymentPeriodsUntil(t *testing.T) {
	tests := []struct {
		name       string
		today      time.Time
		deadline   time.Time
		paymentDay int
		want       int
	}{
		{
			name:       "twelve payments in a one-year runway",
			today:      date(2026, time.January, 1),
			deadline:   date(2027, time.January, 1),
			paymentDay: 15,
			want:       12,
		},
		{
			name:       "deadline before next payment floors at one",
			today:      date(2026, time.March, 16),
			deadline:   date(2026, time.March, 20),
			paymentDay: 15,
			want:       1,
		},
		{
			name:       "payment on the deadline itself does not count",
			today:      date(2026, time.March, 1),
			deadline:   date(2026, time.April, 15),
			paymentDay: 15,
			want:       1,
		},
		{
			name:       "passed deadline still floors at one",
			today:      date(2026, time.June, 1),
			deadline:   date(2026, time.January, 1),
			paymentDay: 15,
			want:       1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PaymentPeriodsUntil(tt.today, tt.deadline, tt.paymentDay))
		})
	}
}

func TestMonthLabel(t *testing.T) {
	assert.Equal(t, "2026-03", MonthLabel(date(2026, time.March, 31)))

	// Local time close to a month boundary resolves in UTC.
	loc := time.FixedZone("UTC+10", 10*3600)
	boundary := time.Date(2026, time.April, 1, 5, 0, 0, 0, loc)
	assert.Equal(t, "2026-03", MonthLabel(boundary))
}
