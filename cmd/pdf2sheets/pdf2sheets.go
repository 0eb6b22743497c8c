package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"

	"github.com/garimakakkar/food-delivery-spend-analyser/gauth"
	"github.com/garimakakkar/food-delivery-spend-analyser/gsheets"
	"github.com/garimakakkar/food-delivery-spend-analyser/invoice"
)

func main() {
	godotenv.Load()

	folder := flag.String("d", envOr("INVOICE_DIR", "invoices"), "folder with invoice PDFs")
	secretFile := flag.String("s", envOr("GOOGLE_SECRET_FILE", "credentials.json"), "client secret file")
	spreadsheetID := flag.String("i", os.Getenv("SPREADSHEET_ID"), "spreadsheet id")
	tab := flag.String("t", envOr("SHEET_TAB", "Invoices"), "sheet tab name")
	labelsFile := flag.String("l", "", "extraction pattern overrides (CSV)")
	flag.Parse()

	if *spreadsheetID == "" {
		fmt.Fprintln(os.Stderr, "usage: pdf2sheets -i spreadsheet-id [-d folder] [-s secret.json] [-t tab] [-l labels.csv]")
		os.Exit(2)
	}

	parser := invoice.NewParser()
	if *labelsFile != "" {
		labels, err := invoice.NewLabels(*labelsFile)
		if err != nil {
			log.Fatal(err)
		}
		parser.ApplyLabels(labels)
	}

	entries, err := os.ReadDir(*folder)
	if err != nil {
		log.Fatal(err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".pdf") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	if len(files) == 0 {
		fmt.Printf("No PDF files found in %v\n", *folder)
		return
	}

	client, err := gauth.GetClient(*secretFile, "invoice-sheets", gsheets.Scope)
	if err != nil {
		log.Fatalf("Unable to retrieve client: %v", err)
	}
	sheet, err := gsheets.NewClient(client, *spreadsheetID)
	if err != nil {
		log.Fatalf("Unable to retrieve sheets client: %v", err)
	}
	if err := sheet.EnsureSheet(*tab); err != nil {
		log.Fatal(err)
	}

	parsed, uploaded, failed := 0, 0, 0
	for i, name := range files {
		fmt.Printf("[%v/%v] %v\n", i+1, len(files), name)
		lines, err := invoice.ExtractLines(filepath.Join(*folder, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "skipping %v: %v\n", name, err)
			failed++
			continue
		}
		rec := parser.Parse(name, lines)
		parsed++
		if err := sheet.Append(*tab, rec); err != nil {
			fmt.Fprintf(os.Stderr, "upload failed for %v: %v\n", name, err)
			failed++
			continue
		}
		uploaded++
	}
	fmt.Printf("Parsed %v of %v invoices, uploaded %v rows, %v failed\n",
		parsed, len(files), uploaded, failed)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
