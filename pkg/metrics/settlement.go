package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// SettlementMetrics records commission settlement and wallet activity.
type SettlementMetrics struct {
	withdrawalTransitions *prometheus.CounterVec
	walletMutations       *prometheus.CounterVec
	withdrawalAmount      *prometheus.HistogramVec
}

// NewSettlementMetrics registers the settlement metrics on the provided registerer.
func NewSettlementMetrics(reg prometheus.Registerer) *SettlementMetrics {
	if reg == nil {
		return &SettlementMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "withdrawal_transitions_total",
		Help: "Withdrawal status transitions applied by admins.",
	}, []string{"status"})
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wallet_mutations_total",
		Help: "Wallet balance mutations by kind.",
	}, []string{"kind"})
	amounts := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "withdrawal_amount",
		Help:    "Requested withdrawal amounts in currency units.",
		Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500},
	}, []string{"status"})
	reg.MustRegister(transitions, mutations, amounts)
	return &SettlementMetrics{
		withdrawalTransitions: transitions,
		walletMutations:       mutations,
		withdrawalAmount:      amounts,
	}
}

// IncWithdrawalTransition counts one applied status transition.
func (m *SettlementMetrics) IncWithdrawalTransition(status string) {
	if m == nil || m.withdrawalTransitions == nil {
		return
	}
	m.withdrawalTransitions.WithLabelValues(normalizeLabel(status)).Inc()
}

// IncWalletMutation counts one balance mutation (topup_approved, deduction, refund).
func (m *SettlementMetrics) IncWalletMutation(kind string) {
	if m == nil || m.walletMutations == nil {
		return
	}
	m.walletMutations.WithLabelValues(normalizeLabel(kind)).Inc()
}

// ObserveWithdrawalAmount records the requested amount when a withdrawal is created.
func (m *SettlementMetrics) ObserveWithdrawalAmount(status string, amount float64) {
	if m == nil || m.withdrawalAmount == nil {
		return
	}
	m.withdrawalAmount.WithLabelValues(normalizeLabel(status)).Observe(amount)
}

func normalizeLabel(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return "unknown"
	}
	return strings.ReplaceAll(value, " ", "_")
}
