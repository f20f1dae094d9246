package enums

import "fmt"

// CommissionItemType tags which entity a snapshotted commission item points at.
type CommissionItemType string

const (
	CommissionItemTypeReferral  CommissionItemType = "referral"
	CommissionItemTypeDataOrder CommissionItemType = "data_order"
)

// IsValid reports whether the value is a known CommissionItemType.
func (c CommissionItemType) IsValid() bool {
	return c == CommissionItemTypeReferral || c == CommissionItemTypeDataOrder
}

// ParseCommissionItemType converts raw input into a CommissionItemType.
func ParseCommissionItemType(value string) (CommissionItemType, error) {
	switch CommissionItemType(value) {
	case CommissionItemTypeReferral:
		return CommissionItemTypeReferral, nil
	case CommissionItemTypeDataOrder:
		return CommissionItemTypeDataOrder, nil
	}
	return "", fmt.Errorf("invalid commission item type %q", value)
}
