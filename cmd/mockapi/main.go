// Command mockapi runs an in-memory mock of the Teen Tech platform API for
// local development of the client.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"

	"teentech/internal/mockapi"
)

func main() {
	port := flag.Int("port", 3000, "port to listen on")
	secret := flag.String("secret", "dev-secret", "HS256 signing secret for issued tokens")
	seed := flag.Bool("seed", true, "seed a couple of lessons with files")
	flag.Parse()

	srv := mockapi.New(*secret)
	if *seed {
		srv.Seed()
	}

	addr := fmt.Sprintf(":%d", *port)
	fmt.Printf("Mock Teen Tech API listening on %s\n", addr)
	fmt.Println("Endpoints:")
	fmt.Println("   POST /register")
	fmt.Println("   POST /login")
	fmt.Println("   GET  /aulas")
	fmt.Println("   GET  /aulas/{id}/files")
	fmt.Println("   GET  /files/{id}/download")
	fmt.Println("   POST /upload (teacher token required)")

	log.Fatal(http.ListenAndServe(addr, srv.Handler()))
}
