package match

// SelectRefundPercent picks the refund percentage for a cancellation
// happening hoursRemaining before start. Rules must be ordered by
// descending HoursBefore; the first rule whose threshold is at or
// under the remaining time applies. With no matching rule the refund
// is zero (cancelling after start time remains zero unless a 0-hour
// rule says otherwise).
func SelectRefundPercent(rules []RefundRule, hoursRemaining float64) int {
	for _, r := range rules {
		if float64(r.HoursBefore) <= hoursRemaining {
			return r.Percent
		}
	}
	return 0
}

// RefundAmount applies a percentage to a cost, rounding down.
func RefundAmount(cost, percent int) int {
	if cost <= 0 || percent <= 0 {
		return 0
	}
	return cost * percent / 100
}

// DefaultRefundRules seeds the policy table on first boot: full refund
// up to 48h before start, half up to 24h, nothing after that.
func DefaultRefundRules() []RefundRule {
	return []RefundRule{
		{HoursBefore: 48, Percent: 100},
		{HoursBefore: 24, Percent: 50},
		{HoursBefore: 0, Percent: 0},
	}
}
