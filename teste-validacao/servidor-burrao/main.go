package main

import (
	"log"
	"net/http"
)

// Upstream burro para validar o gateway na mão: responde qualquer rota com 200.
// Os headers de cota quem põe é o gateway na frente.
func main() {
	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("upstream ok: " + r.URL.Path + "\n"))
	})

	log.Println("upstream listening on :9000")
	log.Fatal(http.ListenAndServe(":9000", nil))
}
