// Backend is a simple test HTTP server used for load balancer testing.
// It answers /health with 200 OK and echoes the request body on every
// other path, tagging responses with its own port.
//
// Usage:
//
//	go run backend.go -port 9001
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
)

func main() {
	port := flag.Int("port", 9001, "port to listen on")
	flag.Parse()

	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	})

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		log.Printf("%s %s from %s", r.Method, r.URL.Path, r.RemoteAddr)

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "failed to read body", http.StatusBadRequest)
			return
		}

		w.Header().Set("X-Backend-Port", fmt.Sprintf("%d", *port))
		if len(body) > 0 {
			w.Write(body)
			return
		}
		fmt.Fprintf(w, "hello from backend %d\n", *port)
	})

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("backend listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal(err)
	}
}
