package util

import (
	"encoding/json"
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"
)

// WriteResponse writes some response for a given http request.
func WriteResponse(data map[string]interface{}, w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(data, w)
}

// WriteResponseWithStatus writes a response with an explicit status code.
// Headers must be set before the status line goes out, so the code is
// written here rather than by the caller.
func WriteResponseWithStatus(data map[string]interface{}, status int, w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	writeJSON(data, w)
}

func writeJSON(data map[string]interface{}, w http.ResponseWriter) {
	jsonData, err := json.MarshalIndent(data, "", "    ")
	if err != nil {
		fmt.Fprintln(w, data)
		log.Error("Marshalling response: ", err)
		return
	}
	fmt.Fprintln(w, string(jsonData))
}

// WriteError writes an error response with the given status code.
func WriteError(message string, status int, w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	jsonData, err := json.MarshalIndent(map[string]interface{}{"error": message}, "", "    ")
	if err != nil {
		fmt.Fprintln(w, message)
		return
	}
	fmt.Fprintln(w, string(jsonData))
}
