// Command upload is a small CLI driving the relay: upload a file, list
// stored objects, or download one.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"chunkrelay/pkg/uploadclient"
)

func main() {
	relay := flag.String("relay", "http://localhost:8080", "base URL of the upload relay")
	retries := flag.Int("retries", 2, "per-part retry count")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		usage()
	}

	client := uploadclient.New(*relay,
		uploadclient.WithPartRetries(*retries),
		uploadclient.WithProgress(renderProgress),
	)
	ctx := context.Background()

	switch args[0] {
	case "upload":
		if len(args) != 2 {
			usage()
		}
		if err := client.Upload(ctx, args[1]); err != nil {
			fmt.Fprintln(os.Stderr)
			log.Fatalf("Upload failed: %v", err)
		}
		fmt.Fprintln(os.Stderr)
		fmt.Println("done")

	case "get":
		if len(args) != 2 {
			usage()
		}
		out, err := os.Create(args[1])
		if err != nil {
			log.Fatal(err)
		}
		defer func() { _ = out.Close() }()
		if err := client.Download(ctx, args[1], out); err != nil {
			fmt.Fprintln(os.Stderr)
			log.Fatalf("Download failed: %v", err)
		}
		fmt.Fprintln(os.Stderr)
		fmt.Println("done")

	case "list":
		objects, err := client.List(ctx)
		if err != nil {
			log.Fatal(err)
		}
		for _, obj := range objects {
			fmt.Printf("%-40s %12d  %s\n", obj.Key, obj.Size, obj.UploadedAt.Format("2006-01-02 15:04:05"))
		}

	default:
		usage()
	}
}

func renderProgress(p uploadclient.Progress) {
	fmt.Fprintf(os.Stderr, "\r%3d%% (%d/%d bytes)", p.Percent(), p.Loaded, p.Total)
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage:
  upload [-relay URL] upload <file>
  upload [-relay URL] get <key>
  upload [-relay URL] list
`)
	os.Exit(2)
}
