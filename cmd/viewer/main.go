package main

import (
	"batepapo/internal"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
)

// Local copies of the persisted document shapes to keep the viewer
// independent from the repositories package.
type diskParticipant struct {
	Name          string `json:"name"`
	LastHeartbeat int64  `json:"lastHeartbeat"`
}

type diskMessage struct {
	ID   string `json:"id"`
	From string `json:"from"`
	To   string `json:"to"`
	Text string `json:"text"`
	Type string `json:"type"`
	At   int64  `json:"at"`
}

func main() {
	// 1. Load config
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	// 2. Open Badger in Read-Only mode
	// Note: BypassLockGuard allows opening if another process (the server) holds the lock
	opts := badger.DefaultOptions(config.BadgerFilepath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	color.New(color.BgBlack, color.FgCyan).Println("  ====== Participants ======")
	if err := printParticipants(db); err != nil {
		log.Fatalf("Failed to list participants: %v", err)
	}

	color.New(color.BgBlack, color.FgCyan).Println("  ====== Messages ======")
	if err := printMessages(db); err != nil {
		log.Fatalf("Failed to list messages: %v", err)
	}
}

func printParticipants(db *badger.DB) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Name", "Last Heartbeat"})

	err := scan(db, "participant:", func(val []byte) error {
		var p diskParticipant
		if err := json.Unmarshal(val, &p); err != nil {
			return err
		}
		table.Append([]string{p.Name, time.Unix(0, p.LastHeartbeat).Format(time.RFC822)})
		return nil
	})
	if err != nil {
		return err
	}

	table.Render()
	return nil
}

func printMessages(db *badger.DB) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Time", "Type", "From", "To", "Text"})

	err := scan(db, "msg:", func(val []byte) error {
		var m diskMessage
		if err := json.Unmarshal(val, &m); err != nil {
			return err
		}
		table.Append([]string{
			time.Unix(0, m.At).Format("15:04:05"),
			m.Type,
			m.From,
			m.To,
			m.Text,
		})
		return nil
	})
	if err != nil {
		return err
	}

	table.Render()
	return nil
}

func scan(db *badger.DB, prefix string, fn func(val []byte) error) error {
	return db.View(func(txn *badger.Txn) error {
		p := []byte(prefix)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		count := 0
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			if err := it.Item().Value(fn); err != nil {
				return err
			}
			count++
		}
		fmt.Printf("%d records under %q\n", count, prefix)
		return nil
	})
}
