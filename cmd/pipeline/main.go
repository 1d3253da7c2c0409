package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/nkurunziza/momo-ledger/internal/audit"
	"github.com/nkurunziza/momo-ledger/internal/categorizer"
	"github.com/nkurunziza/momo-ledger/internal/config"
	"github.com/nkurunziza/momo-ledger/internal/deadletter"
	"github.com/nkurunziza/momo-ledger/internal/exporter"
	"github.com/nkurunziza/momo-ledger/internal/loader"
	"github.com/nkurunziza/momo-ledger/internal/model"
	"github.com/nkurunziza/momo-ledger/internal/normalizer"
	"github.com/nkurunziza/momo-ledger/internal/parser"
	"github.com/nkurunziza/momo-ledger/internal/pipeline"
	"github.com/nkurunziza/momo-ledger/internal/repository"
	"github.com/nkurunziza/momo-ledger/pkg/logger"
	"github.com/nkurunziza/momo-ledger/pkg/pg"
	"github.com/nkurunziza/momo-ledger/pkg/prom"
	"github.com/nkurunziza/momo-ledger/pkg/redis"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	err := config.Load(argValue("--env="))
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}

	inputPath := argValue("--input=")
	if inputPath == "" {
		logger.Error("no input file given, pass --input=<path>")
		return
	}

	readConf := pg.Config{
		User:     config.Get().PostgresReadUser,
		Host:     config.Get().PostgresReadHost,
		Port:     config.Get().PostgresReadPort,
		Password: config.Get().PostgresReadPassword,
		Database: config.Get().PostgresReadDatabase,
	}
	writeConf := pg.Config{
		User:     config.Get().PostgresWriteUser,
		Host:     config.Get().PostgresWriteHost,
		Port:     config.Get().PostgresWritePort,
		Password: config.Get().PostgresWritePassword,
		Database: config.Get().PostgresWriteDatabase,
	}

	pgDebug := false
	if config.Get().AppEnv == "dev" {
		pgDebug = true
	}
	db, err := pg.CreateReadWrite(readConf, writeConf, pgDebug)
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
		return
	}

	redisAdap, err := redis.NewRedisAdapter("default", config.Get().RedisUniversalKeyPrefix, &redis.Options{
		Addrs:      []string{config.Get().RedisAddr},
		ClientName: "default",
		DB:         config.Get().RedisDatabase,
		Username:   config.Get().RedisUsername,
		Password:   config.Get().RedisPassword,
	})
	if err != nil {
		logger.Error("failed connecting to redis", "error", err)
		return
	}

	var hostname string
	hostname, err = os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	err = prom.Create(hostname, config.Get().AppEnv, config.Get().PromNamespace)
	if err != nil {
		logger.Error("failed to create prometheus metrics", "error", err)
		return
	}
	go func() {
		prom.ListenAndServer(config.Get().MetricsAddr, "/metrics")
	}()

	auditStream, err := os.OpenFile(config.Get().AuditStreamPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		logger.Error("failed to open audit stream", "error", err)
		return
	}
	defer auditStream.Close()

	partyRepo := repository.NewPartyRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	logRepo := repository.NewProcessingLogRepository(db)
	summaryRepo := repository.NewSummaryRepository(db)

	recorder := audit.NewRecorder(logRepo, auditStream)
	dedup := loader.NewRedisDedupCache(redisAdap)
	sink := deadletter.NewRedisSink(redisAdap, config.Get().DeadLetterMaxLen)

	feePolicy := loader.FeePolicy{
		Type:    feePolicyType(config.Get().FeePolicyType),
		Percent: config.Get().FeePolicyPercent,
		Flat:    config.Get().FeePolicyFlat,
	}
	ldr := loader.New(partyRepo, accountRepo, transactionRepo, categoryRepo, recorder, dedup, feePolicy)

	runner := pipeline.NewRunner(
		parser.New(),
		normalizer.New(config.Get().PipelineCurrency, config.Get().PipelinePhonePrefix),
		categorizer.New(nil),
		ldr,
		recorder,
		sink,
		config.Get().PipelineWorkers,
		config.Get().PipelineBatchTimeout,
	)

	input, err := os.Open(inputPath)
	if err != nil {
		logger.Error("failed to open input file", "path", inputPath, "error", err)
		return
	}
	defer input.Close()

	ctx := context.Background()
	summary, err := runner.Run(ctx, input)
	if err != nil {
		logger.Error("batch aborted", "error", err)
		os.Exit(1)
	}

	exp := exporter.New(summaryRepo, config.Get().ExportDir)
	if _, err := exp.Write(ctx); err != nil {
		logger.Error("failed to export snapshot", "error", err)
	}

	fmt.Printf("batch %s: completed=%d failed=%d skipped=%d unparsed=%d in %s\n",
		summary.BatchID, summary.Completed, summary.Failed, summary.Skipped, summary.Unparsed, summary.Duration)
}

func feePolicyType(s string) model.FeeType {
	switch s {
	case "Flat":
		return model.FeeTypeFlat
	case "Tiered":
		return model.FeeTypeTiered
	}
	return model.FeeTypePercentage
}

func argValue(prefix string) string {
	for _, v := range os.Args {
		if strings.HasPrefix(v, prefix) {
			s := strings.SplitN(v, "=", 2)
			return s[1]
		}
	}
	return ""
}
