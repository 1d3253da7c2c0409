package helpers

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/nkurunziza/momo-ledger/internal/model"
	"github.com/nkurunziza/momo-ledger/internal/repository"
	"github.com/nkurunziza/momo-ledger/pkg/pg"
	"github.com/nkurunziza/momo-ledger/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func SetupTestDB(t *testing.T) *pg.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	// A second pooled connection would see its own empty :memory: db.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&repository.PartyEntity{},
		&repository.AccountEntity{},
		&repository.CategoryEntity{},
		&repository.TransactionEntity{},
		&repository.FeeEntity{},
		&repository.TagEntity{},
		&repository.TransactionTagEntity{},
		&repository.ProcessingLogEntity{},
	)
	require.NoError(t, err)

	pgDB := &pg.DB{}
	pgDBValue := reflect.ValueOf(pgDB).Elem()

	readField := pgDBValue.FieldByName("read")
	writeField := pgDBValue.FieldByName("write")

	readField = reflect.NewAt(readField.Type(), readField.Addr().UnsafePointer()).Elem()
	writeField = reflect.NewAt(writeField.Type(), writeField.Addr().UnsafePointer()).Elem()

	readField.Set(reflect.ValueOf(db))
	writeField.Set(reflect.ValueOf(db))

	return pgDB
}

func SetupTestRedis(t *testing.T) (*miniredis.Miniredis, redis.RedisAdapter) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	// Unique connection name per test so the adapter singleton never
	// hands back a client bound to an earlier miniredis.
	adapter, err := redis.NewRedisAdapter(uuid.NewString(), "", &goredis.UniversalOptions{
		Addrs: []string{mr.Addr()},
	})
	require.NoError(t, err)

	return mr, adapter
}

func CreateTestParty(t *testing.T, db *pg.DB, name, phone string) *model.Party {
	ctx := context.Background()
	party, err := repository.NewPartyRepository(db).UpsertByPhone(ctx, phone, &model.Party{
		Name: name,
		Type: model.PartyTypeIndividual,
	})
	require.NoError(t, err)
	return party
}

func CreateTestAccount(t *testing.T, db *pg.DB, partyID int64, currency string, balance int64) *model.Account {
	ctx := context.Background()
	accounts := repository.NewAccountRepository(db)
	account, err := accounts.GetOrCreateDefault(ctx, partyID, currency)
	require.NoError(t, err)
	if balance > 0 {
		require.NoError(t, accounts.AddBalance(ctx, account.ID, balance))
		account.Balance = balance
	}
	return account
}

func CreateTestCategory(t *testing.T, db *pg.DB, name string) *model.Category {
	ctx := context.Background()
	category, err := repository.NewCategoryRepository(db).GetOrCreateByName(ctx, name)
	require.NoError(t, err)
	return category
}

func CreateTestTransaction(t *testing.T, db *pg.DB, ref string, senderAcctID, receiverAcctID, categoryID, amount int64, status model.TransactionStatus) *model.Transaction {
	ctx := context.Background()
	txn, err := repository.NewTransactionRepository(db).Create(ctx, &model.Transaction{
		Ref:               ref,
		SenderAccountID:   senderAcctID,
		ReceiverAccountID: receiverAcctID,
		CategoryID:        categoryID,
		Amount:            amount,
		Currency:          "RWF",
		Status:            status,
		OccurredAt:        time.Date(2024, 5, 10, 14, 30, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return txn
}

func WaitForCondition(t *testing.T, timeout time.Duration, condition func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}
