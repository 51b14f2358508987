package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"arena-ledger/domain"
	"arena-ledger/internal"
	"arena-ledger/repositories"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

func main() {
	participant := flag.String("participant", "", "only show this participant's rewards")
	flag.Parse()

	// 1. Load config
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	// 2. Open Badger in Read-Only mode
	// Note: BypassLockGuard allows opening if another process (Master) holds the lock
	opts := badger.DefaultOptions(config.BadgerFilepath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	// 3. List the journal
	repository := repositories.NewJournalRepository(db, logger)

	var records []repositories.JournalRecord
	if *participant != "" {
		records, err = repository.List(domain.ParticipantID(*participant))
	} else {
		records, err = repository.ListAll()
	}
	if err != nil {
		log.Fatalf("Journal scan failed: %v", err)
	}

	color.New(color.FgGreen).Printf("%d journal entries\n", len(records))

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Timestamp", "Participant", "Reason", "Amount", "Balance"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	table.AppendBulk(lo.Map(records, func(record repositories.JournalRecord, _ int) []string {
		// Shorten the identifier for readability
		displayID := string(record.Participant)
		if len(displayID) > 8 {
			displayID = displayID[:8]
		}
		return []string{
			record.At.Format("15:04:05"),
			displayID,
			record.Reason,
			fmt.Sprintf("%+d", record.Amount),
			fmt.Sprintf("%d", record.Balance),
		}
	}))
	table.Render()
}
