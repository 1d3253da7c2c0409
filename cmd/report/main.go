package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/nkurunziza/momo-ledger/internal/config"
	"github.com/nkurunziza/momo-ledger/internal/exporter"
	"github.com/nkurunziza/momo-ledger/internal/repository"
	"github.com/nkurunziza/momo-ledger/pkg/logger"
	"github.com/nkurunziza/momo-ledger/pkg/pg"
)

// Writes a fresh dashboard snapshot without running the pipeline.
func main() {
	err := config.Load(argValue("--env="))
	if err != nil {
		logger.Error("failed to load config", "error", err)
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

	db, err := pg.CreateReadWrite(readConf, writeConf, false)
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
		return
	}

	outDir := argValue("--out=")
	if outDir == "" {
		outDir = config.Get().ExportDir
	}

	summaryRepo := repository.NewSummaryRepository(db)
	exp := exporter.New(summaryRepo, outDir)
	path, err := exp.Write(context.Background())
	if err != nil {
		logger.Error("failed to export snapshot", "error", err)
		os.Exit(1)
	}
	fmt.Printf("snapshot written to %s\n", path)
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
