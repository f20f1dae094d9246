package enums

import "fmt"

// DataOrderStatus tracks the lifecycle of a data bundle order.
type DataOrderStatus string

const (
	DataOrderStatusPending    DataOrderStatus = "pending"
	DataOrderStatusProcessing DataOrderStatus = "processing"
	DataOrderStatusCompleted  DataOrderStatus = "completed"
	DataOrderStatusCanceled   DataOrderStatus = "canceled"
)

var validDataOrderStatuses = []DataOrderStatus{
	DataOrderStatusPending,
	DataOrderStatusProcessing,
	DataOrderStatusCompleted,
	DataOrderStatusCanceled,
}

// String implements fmt.Stringer.
func (d DataOrderStatus) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DataOrderStatus.
func (d DataOrderStatus) IsValid() bool {
	for _, candidate := range validDataOrderStatuses {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDataOrderStatus converts raw input into a DataOrderStatus.
func ParseDataOrderStatus(value string) (DataOrderStatus, error) {
	for _, candidate := range validDataOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid data order status %q", value)
}
