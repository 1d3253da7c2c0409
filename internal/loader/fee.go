package loader

import (
	"math"

	"github.com/nkurunziza/momo-ledger/internal/model"
)

// FeePolicy decides the charge applied on top of each transfer amount.
// Flat adds a fixed minor-unit charge, Percentage takes a cut of the
// amount. Tiered is reserved for operator fee tables.
type FeePolicy struct {
	Type    model.FeeType
	Percent float64
	Flat    int64
}

func DefaultFeePolicy() FeePolicy {
	return FeePolicy{Type: model.FeeTypePercentage, Percent: 1.0}
}

// Fee computes the charge for an amount in minor units. Percentage fees
// round half away from zero so 1% of 500.00 is exactly 5.00.
func (p FeePolicy) Fee(amount int64) int64 {
	switch p.Type {
	case model.FeeTypeFlat:
		return p.Flat
	case model.FeeTypePercentage:
		return int64(math.Round(float64(amount) * p.Percent / 100))
	}
	return 0
}

func (p FeePolicy) FeeRecord(transactionID, amount int64) *model.Fee {
	fee := &model.Fee{
		TransactionID: transactionID,
		Amount:        p.Fee(amount),
		Type:          p.Type,
	}
	if p.Type == model.FeeTypePercentage {
		pct := p.Percent
		fee.Percentage = &pct
	}
	return fee
}
