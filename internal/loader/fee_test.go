package loader

import (
	"testing"

	"github.com/nkurunziza/momo-ledger/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeePolicy_Fee(t *testing.T) {
	t.Run("percentage rounds half away from zero", func(t *testing.T) {
		p := FeePolicy{Type: model.FeeTypePercentage, Percent: 1.0}
		assert.Equal(t, int64(500), p.Fee(50000))
		assert.Equal(t, int64(1), p.Fee(50))
		assert.Equal(t, int64(1), p.Fee(149))
		assert.Equal(t, int64(2), p.Fee(150))
		assert.Equal(t, int64(0), p.Fee(49))
	})

	t.Run("flat", func(t *testing.T) {
		p := FeePolicy{Type: model.FeeTypeFlat, Flat: 100}
		assert.Equal(t, int64(100), p.Fee(50000))
		assert.Equal(t, int64(100), p.Fee(1))
	})

	t.Run("tiered reserved, charges nothing", func(t *testing.T) {
		p := FeePolicy{Type: model.FeeTypeTiered}
		assert.Equal(t, int64(0), p.Fee(50000))
	})
}

func TestFeePolicy_FeeRecord(t *testing.T) {
	p := FeePolicy{Type: model.FeeTypePercentage, Percent: 1.0}
	fee := p.FeeRecord(42, 50000)
	assert.Equal(t, int64(42), fee.TransactionID)
	assert.Equal(t, int64(500), fee.Amount)
	assert.Equal(t, model.FeeTypePercentage, fee.Type)
	require.NotNil(t, fee.Percentage)
	assert.Equal(t, 1.0, *fee.Percentage)

	flat := FeePolicy{Type: model.FeeTypeFlat, Flat: 100}.FeeRecord(7, 50000)
	assert.Nil(t, flat.Percentage)
}

func TestAccountLocker(t *testing.T) {
	l := newAccountLocker()

	t.Run("self pair does not deadlock", func(t *testing.T) {
		unlock := l.Acquire(5, 5)
		unlock()
	})

	t.Run("reacquire after release", func(t *testing.T) {
		unlock := l.Acquire(1, 2)
		unlock()
		unlock = l.Acquire(2, 1)
		unlock()
	})
}
