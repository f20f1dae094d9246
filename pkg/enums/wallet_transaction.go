package enums

import "fmt"

// WalletTransactionType classifies a wallet ledger entry.
type WalletTransactionType string

const (
	WalletTransactionTypeTopup     WalletTransactionType = "topup"
	WalletTransactionTypeDeduction WalletTransactionType = "deduction"
	WalletTransactionTypeRefund    WalletTransactionType = "refund"
)

// IsValid reports whether the value is a known WalletTransactionType.
func (t WalletTransactionType) IsValid() bool {
	switch t {
	case WalletTransactionTypeTopup, WalletTransactionTypeDeduction, WalletTransactionTypeRefund:
		return true
	}
	return false
}

// WalletTransactionStatus tracks the admin review state of a wallet transaction.
type WalletTransactionStatus string

const (
	WalletTransactionStatusPending  WalletTransactionStatus = "pending"
	WalletTransactionStatusApproved WalletTransactionStatus = "approved"
	WalletTransactionStatusRejected WalletTransactionStatus = "rejected"
)

// IsValid reports whether the value is a known WalletTransactionStatus.
func (s WalletTransactionStatus) IsValid() bool {
	switch s {
	case WalletTransactionStatusPending, WalletTransactionStatusApproved, WalletTransactionStatusRejected:
		return true
	}
	return false
}

// PaymentMethod distinguishes manually reviewed entries from auto-settled ones.
type PaymentMethod string

const (
	PaymentMethodManual PaymentMethod = "manual"
	PaymentMethodAuto   PaymentMethod = "auto"
)

// IsValid reports whether the value is a known PaymentMethod.
func (p PaymentMethod) IsValid() bool {
	return p == PaymentMethodManual || p == PaymentMethodAuto
}

// ParseWalletTransactionStatus converts raw input into a WalletTransactionStatus.
func ParseWalletTransactionStatus(value string) (WalletTransactionStatus, error) {
	switch WalletTransactionStatus(value) {
	case WalletTransactionStatusPending:
		return WalletTransactionStatusPending, nil
	case WalletTransactionStatusApproved:
		return WalletTransactionStatusApproved, nil
	case WalletTransactionStatusRejected:
		return WalletTransactionStatusRejected, nil
	}
	return "", fmt.Errorf("invalid wallet transaction status %q", value)
}
