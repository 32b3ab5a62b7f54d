package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"

	"networkpro-client/internal/stub"
	"networkpro-client/internal/utils"
)

func main() {
	addr := flag.String("addr", ":8092", "listen address")
	baseURL := flag.String("base-url", "http://localhost:8092", "public base URL handed out in upload responses")
	flag.Parse()

	server := stub.NewServer(*baseURL)
	server.SeedProfile("1", map[string]any{
		"firstName":      "Jordan",
		"lastName":       "Rivera",
		"headline":       "Backend Engineer",
		"currentCompany": "NetworkPro",
		"location":       "Toronto, ON",
		"summary":        "Builds social graph infrastructure.",
		"skills":         []string{"Go", "Distributed Systems"},
	})
	server.SeedProfile("2", map[string]any{
		"firstName": "Sam",
		"lastName":  "Chen",
		"headline":  "Product Designer",
		"location":  "Vancouver, BC",
	})
	server.SeedConnection("2", "1", "PENDING")

	utils.OnShutdownSignal(nil)

	fmt.Printf("🌐 Stub backend listening on %s (base URL %s)\n", *addr, *baseURL)
	log.Fatal(http.ListenAndServe(*addr, server.NewRouter()))
}
