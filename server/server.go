package server

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/skillstream/mediacore/server/routes"
)

// NewRouter wires the asset routes onto a mux router.
func NewRouter(h *routes.Handler) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/health", h.HealthHandler).Methods("GET")
	router.HandleFunc("/assets", h.UploadHandler).Methods("POST")
	router.HandleFunc("/assets/{asset_id}", h.StatusHandler).Methods("GET")
	router.HandleFunc("/assets/{asset_id}", h.DeleteHandler).Methods("DELETE")
	router.HandleFunc("/assets/{asset_id}/stream", h.StreamHandler).Methods("GET", "HEAD")
	router.HandleFunc("/assets/{asset_id}/reprocess", h.ReprocessHandler).Methods("POST")

	return router
}

// StartServer starts the HTTP server on the given port.
func StartServer(serverPort string, h *routes.Handler) {
	router := NewRouter(h)

	log.Infoln("Starting server at PORT", serverPort)
	log.Fatalln("Error in starting server", http.ListenAndServe(serverPort, handlers.CORS(
		handlers.AllowedHeaders([]string{"Content-Type", "Range"}),
		handlers.ExposedHeaders([]string{"Content-Length", "Content-Range", "Accept-Ranges"}),
	)(router)))
}
