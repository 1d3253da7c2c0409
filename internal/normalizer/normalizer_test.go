package normalizer

import (
	"errors"
	"testing"
	"time"

	"github.com/nkurunziza/momo-ledger/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNormalizer() *Normalizer {
	n := New("RWF", "250")
	n.Now = func() time.Time {
		return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	}
	return n
}

func TestNormalizeAmount(t *testing.T) {
	n := newTestNormalizer()

	tests := []struct {
		name         string
		raw          string
		wantMinor    int64
		wantCurrency string
		wantErr      bool
	}{
		{name: "plain integer", raw: "5000", wantMinor: 500000, wantCurrency: "RWF"},
		{name: "two decimals", raw: "500.00", wantMinor: 50000, wantCurrency: "RWF"},
		{name: "one decimal", raw: "12.5", wantMinor: 1250, wantCurrency: "RWF"},
		{name: "thousands separators", raw: "1,500,000", wantMinor: 150000000, wantCurrency: "RWF"},
		{name: "rwf marker", raw: "5,000 RWF", wantMinor: 500000, wantCurrency: "RWF"},
		{name: "frw marker maps to rwf", raw: "FRW 2500", wantMinor: 250000, wantCurrency: "RWF"},
		{name: "usd marker", raw: "USD 10.00", wantMinor: 1000, wantCurrency: "USD"},
		{name: "dollar sign", raw: "$25", wantMinor: 2500, wantCurrency: "USD"},
		{name: "negative rejected", raw: "-10.00", wantErr: true},
		{name: "zero rejected", raw: "0", wantErr: true},
		{name: "zero with decimals rejected", raw: "0.00", wantErr: true},
		{name: "three decimals rejected", raw: "10.005", wantErr: true},
		{name: "too many digits rejected", raw: "1234567890123", wantErr: true},
		{name: "garbage rejected", raw: "ten thousand", wantErr: true},
		{name: "empty rejected", raw: "", wantErr: true},
		{name: "lone marker rejected", raw: "RWF", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			minor, currency, err := n.NormalizeAmount(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				var ve *ValidationError
				require.True(t, errors.As(err, &ve))
				assert.Equal(t, "amount", ve.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMinor, minor)
			assert.Equal(t, tt.wantCurrency, currency)
		})
	}
}

func TestNormalizeDate(t *testing.T) {
	n := newTestNormalizer()

	tests := []struct {
		name    string
		raw     string
		want    time.Time
		wantErr bool
	}{
		{name: "datetime", raw: "2024-05-10 14:30:00", want: time.Date(2024, 5, 10, 14, 30, 0, 0, time.UTC)},
		{name: "rfc3339", raw: "2024-05-10T14:30:00Z", want: time.Date(2024, 5, 10, 14, 30, 0, 0, time.UTC)},
		{name: "rfc3339 with offset", raw: "2024-05-10T16:30:00+02:00", want: time.Date(2024, 5, 10, 14, 30, 0, 0, time.UTC)},
		{name: "slash format", raw: "10/05/2024 14:30", want: time.Date(2024, 5, 10, 14, 30, 0, 0, time.UTC)},
		{name: "date only", raw: "2024-05-10", want: time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)},
		{name: "unix seconds", raw: "1715351400", want: time.Date(2024, 5, 10, 14, 30, 0, 0, time.UTC)},
		{name: "before epoch floor rejected", raw: "1999-12-31", wantErr: true},
		{name: "too far in future rejected", raw: "2024-06-03", wantErr: true},
		{name: "gibberish rejected", raw: "last tuesday", wantErr: true},
		{name: "empty rejected", raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := n.NormalizeDate(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				var ve *ValidationError
				require.True(t, errors.As(err, &ve))
				assert.Equal(t, "date", ve.Field)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestNormalizePhone(t *testing.T) {
	n := newTestNormalizer()

	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "local form gets prefix", raw: "0788123456", want: "+250788123456"},
		{name: "already international", raw: "+250788123456", want: "+250788123456"},
		{name: "spaces and dashes stripped", raw: "+250 788-123-456", want: "+250788123456"},
		{name: "parens stripped", raw: "(250) 788 123 456", want: "+250788123456"},
		{name: "too short rejected", raw: "12345", wantErr: true},
		{name: "too long rejected", raw: "1234567890123456", wantErr: true},
		{name: "empty rejected", raw: "", wantErr: true},
		{name: "letters only rejected", raw: "MTN Rwanda", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := n.NormalizePhone(tt.raw, "sender_phone")
			if tt.wantErr {
				require.Error(t, err)
				var ve *ValidationError
				require.True(t, errors.As(err, &ve))
				assert.Equal(t, "sender_phone", ve.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeDescription(t *testing.T) {
	assert.Equal(t, "payment to Kigali Mart", NormalizeDescription("  payment   to\tKigali \n Mart "))
	assert.Equal(t, "", NormalizeDescription("   "))

	long := make([]rune, 300)
	for i := range long {
		long[i] = 'a'
	}
	assert.Len(t, []rune(NormalizeDescription(string(long))), 255)
}

func TestNormalize(t *testing.T) {
	n := newTestNormalizer()

	t.Run("full candidate", func(t *testing.T) {
		rec, err := n.Normalize(model.Candidate{
			Offset:        3,
			Ref:           " TX-1001 ",
			SenderPhone:   "0788123456",
			ReceiverPhone: "+250722987654",
			Amount:        "1,500 RWF",
			Date:          "2024-05-10 14:30:00",
			Body:          "Sent to  John",
		})
		require.NoError(t, err)
		assert.Equal(t, 3, rec.Offset)
		assert.Equal(t, "TX-1001", rec.Ref)
		assert.Equal(t, "+250788123456", rec.SenderPhone)
		assert.Equal(t, "+250722987654", rec.ReceiverPhone)
		assert.Equal(t, int64(150000), rec.Amount)
		assert.Equal(t, "RWF", rec.Currency)
		assert.Equal(t, "Sent to John", rec.Description)
	})

	t.Run("missing ref", func(t *testing.T) {
		_, err := n.Normalize(model.Candidate{
			Amount: "100",
			Date:   "2024-05-10",
		})
		var ve *ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, "ref", ve.Field)
	})

	t.Run("deterministic", func(t *testing.T) {
		c := model.Candidate{
			Ref:           "TX-2002",
			SenderPhone:   "0788123456",
			ReceiverPhone: "0722987654",
			Amount:        "500.00",
			Date:          "2024-05-10T14:30:00Z",
			Body:          "airtime purchase",
		}
		first, err := n.Normalize(c)
		require.NoError(t, err)
		second, err := n.Normalize(c)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}
