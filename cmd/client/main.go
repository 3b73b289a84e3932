// Package main is a command-line client for the ERFMS record API.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/atinyakov/erfms/internal/client"
)

var (
	version   string
	buildDate string
)

// main parses command-line flags and dispatches to the list, create or schema commands.
func main() {
	var (
		cmd        string
		baseURL    string
		collection string
		data       string
		caFile     string
		limit      int
		showVer    bool
	)

	flag.StringVar(&cmd, "cmd", "", "command: list | create | schema")
	flag.StringVar(&baseURL, "url", "http://localhost:8000", "server base URL")
	flag.StringVar(&collection, "collection", "projects", "API route: projects, cee, mar, audits, documents, users, clients, tasks")
	flag.StringVar(&data, "data", "", "JSON object to create")
	flag.StringVar(&caFile, "ca", "", "path to CA cert for HTTPS servers")
	flag.IntVar(&limit, "limit", 0, "maximum number of records to list")
	flag.BoolVar(&showVer, "version", false, "show build version and date")
	flag.Parse()

	if showVer {
		fmt.Printf("ERFMS Client\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		return
	}

	httpClient, err := client.NewHTTPClient(caFile)
	if err != nil {
		log.Fatal(err)
	}
	api := client.New(baseURL, httpClient)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var out any
	switch cmd {
	case "list":
		out, err = api.List(ctx, collection, limit)
	case "create":
		if data == "" {
			log.Fatal("please provide -data='{...}'")
		}
		if !json.Valid([]byte(data)) {
			log.Fatal("-data is not valid JSON")
		}
		out, err = api.Create(ctx, collection, json.RawMessage(data))
	case "schema":
		out, err = api.Schema(ctx)
	default:
		log.Fatalf("unknown command: %s", cmd)
	}
	if err != nil {
		log.Fatal(err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatal(err)
	}
}
