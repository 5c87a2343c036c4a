// memcache-example is a minimal reference implementation of a memcache
// client, exercising set/get/inc/stats end to end against one
// server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/m-lab/go/flagx"
	"github.com/m-lab/go/rtx"

	"github.com/m-lab/memcache/client"
	"github.com/m-lab/memcache/codec"
)

var (
	host = flag.String("memcache.host", "localhost", "memcached server host")
	port = flag.Int("memcache.port", 11211, "memcached server port")
	key  = flag.String("memcache.key", "memcache-example-key", "key to exercise")
)

func main() {
	flag.Parse()
	rtx.Must(flagx.ArgsFromEnv(flag.CommandLine), "Could not get args from environment variables")

	c, err := client.Open(client.WithHost(*host), client.WithPort(*port))
	rtx.Must(err, "Could not open client")
	defer c.Close()

	ctx := context.Background()
	log.Println("client state before first command:", c)

	ok, cas, err := c.Set(ctx, *key, codec.Str("hello from memcache-example"), 0, 0)
	rtx.Must(err, "Could not set key")
	log.Printf("set %q: ok=%v cas=%d", *key, ok, cas)

	v, getCAS, found, err := c.Get(ctx, *key)
	rtx.Must(err, "Could not get key")
	if !found {
		log.Fatalf("key %q disappeared immediately after set", *key)
	}
	fmt.Printf("get %q: %#v (cas=%d)\n", *key, v, getCAS)

	counterKey := *key + "-counter"
	val, _, err := c.Inc(ctx, counterKey, 1, 10, 0)
	rtx.Must(err, "Could not increment counter")
	log.Printf("inc %q: %d", counterKey, val)

	stats, err := c.Stats(ctx, "")
	rtx.Must(err, "Could not fetch stats")
	log.Printf("server reported %d stat entries", len(stats))

	log.Println("client state at exit:", c)
}
