package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBatch = `<?xml version="1.0" encoding="UTF-8"?>
<records>
  <record ref="TX-1001">
    <sender>0788123456</sender>
    <receiver>0722987654</receiver>
    <amount>5,000 RWF</amount>
    <date>2024-05-10 14:30:00</date>
    <body>Sent to Jane Doe</body>
  </record>
  <record ref="TX-1002">
    <sender>+250788123456</sender>
    <receiver>0733111222</receiver>
    <amount>500.00</amount>
    <date>2024-05-10T15:00:00Z</date>
    <body>Airtime purchase</body>
  </record>
</records>`

func TestParse(t *testing.T) {
	p := New()

	t.Run("well formed batch", func(t *testing.T) {
		candidates, failures, err := p.Parse(strings.NewReader(sampleBatch))
		require.NoError(t, err)
		assert.Empty(t, failures)
		require.Len(t, candidates, 2)

		assert.Equal(t, 0, candidates[0].Offset)
		assert.Equal(t, "TX-1001", candidates[0].Ref)
		assert.Equal(t, "0788123456", candidates[0].SenderPhone)
		assert.Equal(t, "0722987654", candidates[0].ReceiverPhone)
		assert.Equal(t, "5,000 RWF", candidates[0].Amount)
		assert.Equal(t, "2024-05-10 14:30:00", candidates[0].Date)
		assert.Equal(t, "Sent to Jane Doe", candidates[0].Body)

		assert.Equal(t, 1, candidates[1].Offset)
		assert.Equal(t, "TX-1002", candidates[1].Ref)
	})

	t.Run("empty record becomes a failure", func(t *testing.T) {
		input := `<records>
  <record/>
  <record ref="TX-2001"><sender>0788123456</sender><receiver>0722987654</receiver><amount>100</amount><date>2024-05-10</date><body>ok</body></record>
</records>`
		candidates, failures, err := p.Parse(strings.NewReader(input))
		require.NoError(t, err)
		require.Len(t, failures, 1)
		assert.Equal(t, 0, failures[0].Offset)
		assert.Contains(t, failures[0].Reason, "no fields")
		require.Len(t, candidates, 1)
		assert.Equal(t, 1, candidates[0].Offset)
		assert.Equal(t, "TX-2001", candidates[0].Ref)
	})

	t.Run("syntax error dead letters the remainder", func(t *testing.T) {
		input := `<records>
  <record ref="TX-3001"><sender>0788123456</sender><receiver>0722987654</receiver><amount>100</amount><date>2024-05-10</date><body>ok</body></record>
  <record ref="TX-3002"><sender>0788</record>
  <record ref="TX-3003"><sender>0788123456</sender><receiver>0722987654</receiver><amount>100</amount><date>2024-05-10</date><body>never reached</body></record>
</records>`
		candidates, failures, err := p.Parse(strings.NewReader(input))
		require.NoError(t, err)
		require.Len(t, candidates, 1)
		assert.Equal(t, "TX-3001", candidates[0].Ref)
		require.NotEmpty(t, failures)
		assert.Contains(t, failures[len(failures)-1].Reason, "corrupt")
	})

	t.Run("empty document", func(t *testing.T) {
		candidates, failures, err := p.Parse(strings.NewReader(`<records></records>`))
		require.NoError(t, err)
		assert.Empty(t, candidates)
		assert.Empty(t, failures)
	})

	t.Run("ref attribute trimmed", func(t *testing.T) {
		input := `<records><record ref=" TX-4001 "><sender>0788123456</sender><receiver>0722987654</receiver><amount>100</amount><date>2024-05-10</date><body>x</body></record></records>`
		candidates, _, err := p.Parse(strings.NewReader(input))
		require.NoError(t, err)
		require.Len(t, candidates, 1)
		assert.Equal(t, "TX-4001", candidates[0].Ref)
	})
}
