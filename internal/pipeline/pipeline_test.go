package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/nkurunziza/momo-ledger/internal/audit"
	"github.com/nkurunziza/momo-ledger/internal/categorizer"
	"github.com/nkurunziza/momo-ledger/internal/deadletter"
	"github.com/nkurunziza/momo-ledger/internal/loader"
	"github.com/nkurunziza/momo-ledger/internal/model"
	"github.com/nkurunziza/momo-ledger/internal/normalizer"
	"github.com/nkurunziza/momo-ledger/internal/parser"
	"github.com/nkurunziza/momo-ledger/internal/repository"
	"github.com/nkurunziza/momo-ledger/pkg/pg"
	"github.com/nkurunziza/momo-ledger/test/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pipelineFixture struct {
	db       *pg.DB
	runner   *Runner
	accounts *repository.AccountRepository
	txns     *repository.TransactionRepository
	logs     *repository.ProcessingLogRepository
	sink     deadletter.Sink
}

func setupPipeline(t *testing.T, sink deadletter.Sink) *pipelineFixture {
	return setupPipelineWith(t, sink, &bytes.Buffer{}, 2, time.Minute)
}

func setupPipelineWith(t *testing.T, sink deadletter.Sink, stream io.Writer, workers int, timeout time.Duration) *pipelineFixture {
	t.Helper()
	db := helpers.SetupTestDB(t)

	logs := repository.NewProcessingLogRepository(db)
	recorder := audit.NewRecorder(logs, stream)

	ldr := loader.New(
		repository.NewPartyRepository(db),
		repository.NewAccountRepository(db),
		repository.NewTransactionRepository(db),
		repository.NewCategoryRepository(db),
		recorder,
		nil,
		loader.FeePolicy{Type: model.FeeTypePercentage, Percent: 1.0},
	)

	runner := NewRunner(
		parser.New(),
		normalizer.New("RWF", "250"),
		categorizer.New(nil),
		ldr,
		recorder,
		sink,
		workers,
		timeout,
	)

	return &pipelineFixture{
		db:       db,
		runner:   runner,
		accounts: repository.NewAccountRepository(db),
		txns:     repository.NewTransactionRepository(db),
		logs:     logs,
		sink:     sink,
	}
}

func (f *pipelineFixture) fund(t *testing.T, phone string, balance int64) int64 {
	t.Helper()
	party := helpers.CreateTestParty(t, f.db, "", phone)
	account := helpers.CreateTestAccount(t, f.db, party.ID, "RWF", balance)
	return account.ID
}

const mixedBatch = `<?xml version="1.0" encoding="UTF-8"?>
<records>
  <record ref="TX-1001">
    <sender>0788123456</sender>
    <receiver>0722987654</receiver>
    <amount>500.00</amount>
    <date>2024-05-10 14:30:00</date>
    <body>Sent to Jane</body>
  </record>
  <record ref="TX-1002">
    <sender>0788123456</sender>
    <receiver>0722987654</receiver>
    <amount>not-a-number</amount>
    <date>2024-05-10 15:00:00</date>
    <body>Airtime purchase</body>
  </record>
  <record/>
  <record ref="TX-1003">
    <sender>0788123456</sender>
    <receiver>0733111222</receiver>
    <amount>1,000 RWF</amount>
    <date>2024-05-11</date>
    <body>Payment to Kigali Mart</body>
  </record>
</records>`

func TestRunner_Run(t *testing.T) {
	f := setupPipeline(t, nil)
	ctx := context.Background()

	senderAcctID := f.fund(t, "+250788123456", 1_000_000)

	summary, err := f.runner.Run(ctx, strings.NewReader(mixedBatch))
	require.NoError(t, err)
	require.NotNil(t, summary)

	assert.NotEmpty(t, summary.BatchID)
	assert.Equal(t, int64(2), summary.Completed)
	assert.Equal(t, int64(1), summary.Failed)
	assert.Equal(t, int64(0), summary.Skipped)
	assert.Equal(t, int64(1), summary.Unparsed)
	assert.Equal(t, int64(4), summary.Total())

	// 500.00 + 5.00 fee, then 1,000.00 + 10.00 fee.
	senderBalance, err := f.accounts.GetBalance(ctx, senderAcctID)
	require.NoError(t, err)
	assert.Equal(t, int64(1_000_000-50500-101000), senderBalance)

	txn, err := f.txns.GetByRef(ctx, "TX-1001")
	require.NoError(t, err)
	assert.Equal(t, model.TransactionStatusCompleted, txn.Status)

	txn, err = f.txns.GetByRef(ctx, "TX-1003")
	require.NoError(t, err)
	assert.Equal(t, model.TransactionStatusCompleted, txn.Status)

	// The validation failure is recorded, not loaded.
	errCount, err := f.logs.CountBySeverity(ctx, summary.BatchID, model.LogSeverityError)
	require.NoError(t, err)
	assert.Equal(t, int64(1), errCount)
}

func TestRunner_Run_ResubmissionIsIdempotent(t *testing.T) {
	f := setupPipeline(t, nil)
	ctx := context.Background()

	senderAcctID := f.fund(t, "+250788123456", 1_000_000)

	first, err := f.runner.Run(ctx, strings.NewReader(mixedBatch))
	require.NoError(t, err)
	require.Equal(t, int64(2), first.Completed)

	balanceAfterFirst, err := f.accounts.GetBalance(ctx, senderAcctID)
	require.NoError(t, err)

	second, err := f.runner.Run(ctx, strings.NewReader(mixedBatch))
	require.NoError(t, err)

	assert.Equal(t, int64(0), second.Completed)
	assert.Equal(t, int64(2), second.Skipped)
	assert.Equal(t, int64(1), second.Unparsed)

	// Replaying the batch moves no money.
	balanceAfterSecond, err := f.accounts.GetBalance(ctx, senderAcctID)
	require.NoError(t, err)
	assert.Equal(t, balanceAfterFirst, balanceAfterSecond)
}

func TestRunner_Run_DeadLetters(t *testing.T) {
	_, adapter := helpers.SetupTestRedis(t)
	sink := deadletter.NewRedisSink(adapter, 1000)
	f := setupPipeline(t, sink)
	ctx := context.Background()

	f.fund(t, "+250788123456", 1_000_000)

	summary, err := f.runner.Run(ctx, strings.NewReader(mixedBatch))
	require.NoError(t, err)
	require.Equal(t, int64(1), summary.Unparsed)

	count, err := sink.Count(ctx, summary.BatchID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

// slowWriter drags out every audit stream write so the record holding
// the single worker outlives the batch deadline.
type slowWriter struct {
	delay time.Duration
	buf   bytes.Buffer
}

func (w *slowWriter) Write(p []byte) (int, error) {
	time.Sleep(w.delay)
	return w.buf.Write(p)
}

const timeoutBatch = `<?xml version="1.0" encoding="UTF-8"?>
<records>
  <record ref="TX-2001">
    <sender>0788123456</sender>
    <receiver>0722987654</receiver>
    <amount>100.00</amount>
    <date>2024-05-10 14:30:00</date>
    <body>Sent to Jane</body>
  </record>
  <record ref="TX-2002">
    <sender>0788123456</sender>
    <receiver>0722987654</receiver>
    <amount>100.00</amount>
    <date>2024-05-10 14:31:00</date>
    <body>Sent to Jane</body>
  </record>
  <record ref="TX-2003">
    <sender>0788123456</sender>
    <receiver>0722987654</receiver>
    <amount>100.00</amount>
    <date>2024-05-10 14:32:00</date>
    <body>Sent to Jane</body>
  </record>
</records>`

func TestRunner_Run_BatchTimeoutGatesQueuedRecords(t *testing.T) {
	stream := &slowWriter{delay: 200 * time.Millisecond}
	f := setupPipelineWith(t, nil, stream, 1, 150*time.Millisecond)
	ctx := context.Background()

	senderAcctID := f.fund(t, "+250788123456", 1_000_000)

	summary, err := f.runner.Run(ctx, strings.NewReader(timeoutBatch))
	require.NoError(t, err)

	// The first record was in flight when the deadline passed and still
	// ran to completion; the queued ones were never started.
	assert.Equal(t, int64(1), summary.Completed)
	assert.Equal(t, int64(2), summary.Failed)
	assert.Equal(t, int64(0), summary.Skipped)

	txn, err := f.txns.GetByRef(ctx, "TX-2001")
	require.NoError(t, err)
	assert.Equal(t, model.TransactionStatusCompleted, txn.Status)

	for _, ref := range []string{"TX-2002", "TX-2003"} {
		_, err := f.txns.GetByRef(ctx, ref)
		assert.True(t, errors.Is(err, repository.ErrTransactionNotFound), ref)
	}

	// Only the in-flight record's money moved: 100.00 plus the 1% fee.
	senderBalance, err := f.accounts.GetBalance(ctx, senderAcctID)
	require.NoError(t, err)
	assert.Equal(t, int64(1_000_000-10100), senderBalance)
}

func TestRunner_Run_EmptyBatch(t *testing.T) {
	f := setupPipeline(t, nil)

	summary, err := f.runner.Run(context.Background(), strings.NewReader(`<records></records>`))
	require.NoError(t, err)
	assert.Equal(t, int64(0), summary.Total())
}
