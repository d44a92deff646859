// Command viewer dumps the chat store as a table. It opens Badger read-only
// with the lock guard bypassed, so it works while the server holds the lock.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

type participantRow struct {
	Name       string `json:"name"`
	LastStatus int64  `json:"lastStatus"`
}

type messageRow struct {
	ID   string `json:"id"`
	From string `json:"from"`
	To   string `json:"to"`
	Text string `json:"text"`
	Type string `json:"type"`
	At   int64  `json:"at"`
}

func main() {
	dbPath := flag.String("db", "./data/badger", "Path to badger DB")
	prefix := flag.String("prefix", "msg:", "Prefix to scan (msg: or participant:)")
	flag.Parse()

	opts := badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	color.Cyan.Printf("sala-chat store @ %s (prefix %q)\n\n", *dbPath, *prefix)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Time", "From", "To", "Type", "Detail"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			key := string(item.Key())

			// Secondary index entries hold keys, not records.
			if strings.HasPrefix(key, "idx:") {
				continue
			}

			err := item.Value(func(v []byte) error {
				table.Append(toRow(key, v))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Scan failed: %v", err)
	}

	table.Render()
}

func toRow(key string, value []byte) []string {
	switch {
	case strings.HasPrefix(key, "participant:"):
		var p participantRow
		if err := json.Unmarshal(value, &p); err != nil {
			return rawRow(key, value)
		}
		last := time.UnixMilli(p.LastStatus).UTC().Format("15:04:05")
		return []string{key, last, p.Name, "", "participant", fmt.Sprintf("lastStatus=%d", p.LastStatus)}
	case strings.HasPrefix(key, "msg:"):
		var m messageRow
		if err := json.Unmarshal(value, &m); err != nil {
			return rawRow(key, value)
		}
		at := time.Unix(0, m.At).UTC().Format("15:04:05")
		return []string{key, at, m.From, m.To, m.Type, m.Text}
	default:
		return rawRow(key, value)
	}
}

func rawRow(key string, value []byte) []string {
	return []string{key, "--:--:--", "", "", "RAW", fmt.Sprintf("Size: %d bytes", len(value))}
}
