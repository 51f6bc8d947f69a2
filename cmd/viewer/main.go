package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/mama165/sdk-go/database"
	"github.com/olekukonko/tablewriter"
)

// viewedMessage mirrors the cache payload; only displayed fields are decoded.
type viewedMessage struct {
	SenderName string `json:"sender_name"`
	SenderID   string `json:"sender_id"`
	Body       string `json:"body"`
	Type       string `json:"type"`
	Lang       string `json:"lang"`
	Parent     *struct {
		SenderName string `json:"sender_name"`
		Body       string `json:"body"`
	} `json:"parent"`
}

func main() {
	dbPath := flag.String("db", database.DefaultPath, "Path to badger DB")
	prefix := flag.String("prefix", "msg:", "Prefix to scan (msg:{conversation}: narrows to one conversation)")
	contains := flag.String("contains", "", "Only show messages whose body contains this text")
	flag.Parse()

	// BypassLockGuard lets the viewer open the cache while the portal holds
	// the lock.
	opts := badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	header := color.New(color.BgBlack, color.FgGreen).
		Render(fmt.Sprintf(" Cached messages — %s ", *prefix))
	fmt.Println(header)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Conversation", "Time", "Sender", "Type", "Lang", "Reply To", "Body"})
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

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			err := item.Value(func(v []byte) error {
				var m viewedMessage
				if err := json.Unmarshal(v, &m); err != nil {
					fmt.Printf("Error decoding key %s: %v\n", string(item.Key()), err)
					return nil
				}
				if *contains != "" && !strings.Contains(strings.ToLower(m.Body), strings.ToLower(*contains)) {
					return nil
				}

				conversation, when := parseKey(string(item.Key()))
				replyTo := "-"
				if m.Parent != nil {
					replyTo = m.Parent.SenderName
				}
				sender := m.SenderName
				if sender == "" {
					sender = m.SenderID
				}
				lang := m.Lang
				if lang == "" {
					lang = "-"
				}

				table.Append([]string{conversation, when, sender, m.Type, lang, replyTo, m.Body})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}

	table.Render()
}

// parseKey splits a msg:{conversation}:{seq}:{id} cache key.
func parseKey(key string) (conversation, when string) {
	conversation, when = "?", "--:--:--"
	parts := strings.Split(key, ":")
	if len(parts) >= 4 {
		conversation = parts[1]
		if tsNano, err := strconv.ParseInt(parts[2], 10, 64); err == nil {
			when = time.Unix(0, tsNano).Format("15:04:05")
		}
	}
	return conversation, when
}
