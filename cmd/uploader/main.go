package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"photodrop/internal/uploader"
)

func main() {
	server := flag.String("server", "http://localhost:8080", "photodrop server base URL")
	eventID := flag.String("event", "", "target event id (required)")
	concurrency := flag.Int("concurrency", uploader.DefaultConcurrency, "max simultaneous uploads")
	flag.Parse()

	if *eventID == "" || flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: uploader -event <id> [-server URL] [-concurrency N] FILE...")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := uploader.New(uploader.Options{
		BaseURL:     *server,
		Concurrency: *concurrency,
		OnProgress: func(aggregate float64) {
			fmt.Printf("\rprogress: %3.0f%%", aggregate*100)
		},
	})

	summary, err := client.UploadAll(ctx, *eventID, flag.Args())
	fmt.Println()
	if err != nil {
		log.Fatal(err)
	}

	for _, r := range summary.Results {
		if r.Err != nil {
			log.Printf("failed: %s: %v", r.Path, r.Err)
		}
	}
	for _, p := range summary.Skipped {
		log.Printf("skipped (unsupported type): %s", p)
	}

	fmt.Printf("uploaded=%d failed=%d skipped=%d\n",
		summary.Uploaded, summary.Failed, len(summary.Skipped))

	if summary.Failed > 0 {
		os.Exit(1)
	}
}
