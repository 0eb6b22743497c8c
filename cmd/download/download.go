package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/garimakakkar/food-delivery-spend-analyser/gauth"
	"github.com/garimakakkar/food-delivery-spend-analyser/mail"
)

func main() {
	godotenv.Load()

	query := flag.String("q", envOr("INVOICE_QUERY", "has:attachment filename:pdf"), "Gmail search query")
	destination := flag.String("d", envOr("INVOICE_DIR", "invoices"), "destination folder")
	secretFile := flag.String("s", envOr("GOOGLE_SECRET_FILE", "credentials.json"), "client secret file")
	max := flag.Int64("n", 100, "maximum number of messages")
	flag.Parse()

	client, err := gauth.GetClient(*secretFile, "invoice-gmail", mail.ReadonlyScope)
	if err != nil {
		log.Fatalf("Unable to retrieve client: %v", err)
	}
	svc, err := mail.NewService(client)
	if err != nil {
		log.Fatalf("Unable to retrieve gmail client: %v", err)
	}

	if err := os.MkdirAll(*destination, 0755); err != nil {
		log.Fatal(err)
	}

	msgs, err := mail.Search(svc, *query, *max)
	if err != nil {
		log.Fatalf("Unable to search messages: %v", err)
	}
	if len(msgs) == 0 {
		fmt.Println("No messages found.")
		return
	}

	count := 0
	for i, m := range msgs {
		msg, err := mail.GetMessage(svc, m.Id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "skipping message %v: %v\n", m.Id, err)
			continue
		}
		fmt.Printf("[%v/%v] %v\n", i+1, len(msgs), mail.Subject(msg))
		for _, part := range mail.PDFParts(msg.Payload) {
			name := fmt.Sprintf("%04d_%v", count+1, mail.SanitizeFilename(part.Filename))
			path, err := mail.SaveAttachment(svc, msg.Id, part, *destination, name)
			if err != nil {
				fmt.Fprintf(os.Stderr, "skipping attachment %v: %v\n", part.Filename, err)
				continue
			}
			count++
			fmt.Printf("%s\n", path)
		}
	}
	fmt.Printf("Downloaded %v PDF attachments to %v\n", count, *destination)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
