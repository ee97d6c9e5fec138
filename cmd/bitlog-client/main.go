// Command bitlog-client talks to a bitlog-server instance.
//
// Usage:
//
//	bitlog-client [-addr host:port] set KEY VALUE
//	bitlog-client [-addr host:port] get KEY
//	bitlog-client [-addr host:port] rm KEY
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/bretuobay/bitlog"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:4000", "server address")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
	}

	client, err := bitlog.Dial(*addr)
	if err != nil {
		fail(err)
	}
	defer client.Close()

	switch args[0] {
	case "set":
		if len(args) != 3 {
			usage()
		}
		if err := client.Set(args[1], args[2]); err != nil {
			fail(err)
		}
	case "get":
		if len(args) != 2 {
			usage()
		}
		value, err := client.Get(args[1])
		if errors.Is(err, bitlog.ErrKeyNotFound) {
			fmt.Println("Key not found")
			return
		}
		if err != nil {
			fail(err)
		}
		fmt.Println(value)
	case "rm":
		if len(args) != 2 {
			usage()
		}
		if err := client.Remove(args[1]); err != nil {
			fail(err)
		}
	default:
		usage()
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: bitlog-client [-addr host:port] {set KEY VALUE | get KEY | rm KEY}")
	os.Exit(2)
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
