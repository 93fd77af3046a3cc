package api

import "net/http"

// rootMessage is the body of GET /.
const rootMessage = "Servidor Node.js funcionando 🚀"

// HandleRoot handles GET / requests.
func HandleRoot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(rootMessage))
}
