package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to QuoteStatus
		want     bool
	}{
		{QuoteStatusPending, QuoteStatusResponded, true},
		{QuoteStatusPending, QuoteStatusAccepted, false},
		{QuoteStatusPending, QuoteStatusExpired, false},
		{QuoteStatusResponded, QuoteStatusAccepted, true},
		{QuoteStatusResponded, QuoteStatusRejected, true},
		{QuoteStatusResponded, QuoteStatusExpired, true},
		{QuoteStatusResponded, QuoteStatusResponded, false},
		{QuoteStatusAccepted, QuoteStatusRejected, false},
		{QuoteStatusRejected, QuoteStatusAccepted, false},
		{QuoteStatusExpired, QuoteStatusResponded, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestAggregateReviews(t *testing.T) {
	_, ok := AggregateReviews(nil)
	assert.False(t, ok)

	agg, ok := AggregateReviews([]Review{
		{Rate: 5, PriceRate: 4, PerformanceRate: 5, ServiceRate: 3},
		{Rate: 3, PriceRate: 2, PerformanceRate: 4, ServiceRate: 5},
		{Rate: 4, PriceRate: 3, PerformanceRate: 3, ServiceRate: 4},
	})
	assert.True(t, ok)
	assert.Equal(t, 3, agg.Count)
	assert.InDelta(t, 4.0, agg.Rate, 1e-9)
	assert.InDelta(t, 3.0, agg.PriceRate, 1e-9)
	assert.InDelta(t, 4.0, agg.PerformanceRate, 1e-9)
	assert.InDelta(t, 4.0, agg.ServiceRate, 1e-9)
}

func TestOverallRate(t *testing.T) {
	assert.Equal(t, 4, OverallRate(4, 4, 4))
	assert.Equal(t, 4, OverallRate(3, 4, 5))
	assert.Equal(t, 2, OverallRate(1, 2, 2))
	assert.Equal(t, 3, OverallRate(2, 3, 3))
}

func TestComplaintStatusProgression(t *testing.T) {
	assert.True(t, ComplaintOpen.CanMoveTo(ComplaintInProgress))
	assert.True(t, ComplaintInProgress.CanMoveTo(ComplaintResolved))
	assert.True(t, ComplaintResolved.CanMoveTo(ComplaintClosed))
	assert.False(t, ComplaintClosed.CanMoveTo(ComplaintOpen))
	assert.False(t, ComplaintInProgress.CanMoveTo(ComplaintOpen))
}

func TestNotificationChannels(t *testing.T) {
	n := Notification{Channels: []string{ChannelInApp, ChannelSMS}}
	assert.True(t, n.HasChannel(ChannelSMS))
	assert.False(t, n.HasChannel(ChannelPush))

	assert.Equal(t, RecipientEmployee, RecipientTypeFor(RoleProfessional))
	assert.Equal(t, RecipientUser, RecipientTypeFor(RoleAdmin))
}

func TestEnumValidation(t *testing.T) {
	assert.True(t, UrgencyHigh.Valid())
	assert.False(t, QuoteUrgency("asap").Valid())
	assert.True(t, ResponseMethodPhone.Valid())
	assert.False(t, ResponseMethod("fax").Valid())
	assert.True(t, ContentImage.Valid())
	assert.False(t, ContentType("video").Valid())
}
