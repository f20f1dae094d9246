package enums

import "fmt"

// ReferralStatus tracks the lifecycle of a client referral.
type ReferralStatus string

const (
	ReferralStatusPending    ReferralStatus = "pending"
	ReferralStatusConfirmed  ReferralStatus = "confirmed"
	ReferralStatusInProgress ReferralStatus = "in_progress"
	ReferralStatusCompleted  ReferralStatus = "completed"
	ReferralStatusRejected   ReferralStatus = "rejected"
)

var validReferralStatuses = []ReferralStatus{
	ReferralStatusPending,
	ReferralStatusConfirmed,
	ReferralStatusInProgress,
	ReferralStatusCompleted,
	ReferralStatusRejected,
}

// String implements fmt.Stringer.
func (r ReferralStatus) String() string {
	return string(r)
}

// IsValid reports whether the value is a known ReferralStatus.
func (r ReferralStatus) IsValid() bool {
	for _, candidate := range validReferralStatuses {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseReferralStatus converts raw input into a ReferralStatus.
func ParseReferralStatus(value string) (ReferralStatus, error) {
	for _, candidate := range validReferralStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid referral status %q", value)
}
