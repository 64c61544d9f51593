// Command badger_inspect dumps the raw records behind a key prefix.
// Handy when a conversation looks wrong and you need to see what the
// store actually holds, without going through the repositories.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/olekukonko/tablewriter"
)

// Known prefixes: user:, useremail:, session:, conv:, msg:, msgid:, convkey:
func main() {
	dbPath := flag.String("db", "/tmp/driftway", "Path to badger DB")
	prefix := flag.String("prefix", "msg:", "Prefix to scan")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Bytes", "Record"})
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
			key := string(item.Key())

			err := item.Value(func(v []byte) error {
				table.Append([]string{key, fmt.Sprintf("%d", len(v)), renderRecord(key, v)})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal("Error while scanning: ", err)
	}

	table.Render()
}

// renderRecord decodes a cbor record into ordered field=value pairs.
// Secondary index values (msgid:, useremail:) are plain key bytes, not
// cbor, and are printed as-is.
func renderRecord(key string, value []byte) string {
	if strings.HasPrefix(key, "msgid:") || strings.HasPrefix(key, "useremail:") {
		return "-> " + string(value)
	}

	var record map[int]any
	if err := cbor.Unmarshal(value, &record); err != nil {
		return fmt.Sprintf("undecodable: %v", err)
	}

	fields := make([]int, 0, len(record))
	for f := range record {
		fields = append(fields, f)
	}
	sort.Ints(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%d=%s", f, truncate(fmt.Sprintf("%v", record[f]), 48)))
	}
	return strings.Join(parts, " ")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithLoggingLevel(badger.ERROR).
		WithReadOnly(true)
	return badger.Open(opts)
}
