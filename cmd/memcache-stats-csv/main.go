// memcache-stats-csv connects to a memcached server, issues a STAT
// command, and writes the returned name/value pairs to stdout as CSV.
package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"sort"

	"github.com/gocarina/gocsv"
	"github.com/m-lab/go/rtx"

	"github.com/m-lab/memcache/client"
)

func init() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}

var (
	host = flag.String("memcache.host", "localhost", "memcached server host")
	port = flag.Int("memcache.port", 11211, "memcached server port")
	sub  = flag.String("memcache.stats-key", "", "optional stats sub-group key")

	// A variable to enable mocking for testing.
	logFatal = log.Fatal
)

// statRow is one name/value pair from a STAT response, in the shape gocsv
// expects for a header-plus-rows CSV dump.
type statRow struct {
	Name  string `csv:"name"`
	Value string `csv:"value"`
}

// toRows sorts a stats map into a deterministic row order so repeated
// runs against an unchanged server diff cleanly.
func toRows(stats map[string]string) []*statRow {
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)
	rows := make([]*statRow, 0, len(names))
	for _, name := range names {
		rows = append(rows, &statRow{Name: name, Value: stats[name]})
	}
	return rows
}

func toCSV(stats map[string]string, wtr io.Writer) error {
	return gocsv.Marshal(toRows(stats), wtr)
}

func main() {
	flag.Parse()
	if flag.NArg() > 0 {
		logFatal("Too many command-line arguments.")
	}

	c, err := client.Open(client.WithHost(*host), client.WithPort(*port))
	rtx.Must(err, "Could not open client")
	defer c.Close()

	stats, err := c.Stats(context.Background(), *sub)
	rtx.Must(err, "Could not fetch stats")
	rtx.Must(toCSV(stats, os.Stdout), "Could not convert stats to CSV")
}
