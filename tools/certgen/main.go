// Package main generates the development TLS material of the ERFMS server:
// a CA and a server certificate for the given hosts, written under -dir.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/atinyakov/erfms/internal/certgen"
)

func main() {
	dir := flag.String("dir", "certs", "output directory")
	hosts := flag.String("hosts", "localhost,127.0.0.1", "comma-separated server host names and IPs")
	flag.Parse()

	if err := certgen.WriteDevBundle(*dir, splitHosts(*hosts)); err != nil {
		log.Fatalf("certgen: %v", err)
	}
	fmt.Printf("Certificates generated into ./%s\n", *dir)
}

func splitHosts(s string) []string {
	var out []string
	for _, h := range strings.Split(s, ",") {
		if h = strings.TrimSpace(h); h != "" {
			out = append(out, h)
		}
	}
	return out
}
