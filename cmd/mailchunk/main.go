package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/qbin-dev/mailchunk/internal/app"
)

func main() {
	cfgFileName := flag.String("c", "config.yml", "Path to config file")
	flag.Parse()

	args := flag.Args()
	if len(args) < 2 {
		usage()
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a := app.New(*cfgFileName)

	switch args[0] {
	case "chunk":
		size := 0
		if len(args) > 2 {
			var err error
			if size, err = strconv.Atoi(args[2]); err != nil {
				fmt.Fprintf(os.Stderr, "Bad chunk size: %s\n", args[2])
				os.Exit(1)
			}
		}

		if err := a.Chunk(ctx, args[1], size); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
	case "reassemble":
		if err := a.Reassemble(ctx, args[1]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  mailchunk chunk <file> [sizeMB]    split a file into checksummed chunk records")
	fmt.Println("  mailchunk reassemble <manifest>    rebuild the original file from its records")
	fmt.Println()
	fmt.Println("The chunk records are JSON with hex payloads: larger than the input,")
	fmt.Println("but text-safe and compressible, so they pass through size-capped channels.")
}
