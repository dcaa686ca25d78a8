package observability

import (
	"encoding/json"
	"net/http"
)

const healthStatusOK = "ok"

// HealthHandler returns an [http.Handler] for liveness checks.
// It always returns HTTP 200 with {"status":"ok","version":...}.
func HealthHandler(version string) http.Handler {
	body, err := json.Marshal(map[string]string{"status": healthStatusOK, "version": version})
	if err != nil {
		body = []byte(`{"status":"ok"}`)
	}

	return http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		rw.Header().Set("Content-Type", "application/json")
		rw.WriteHeader(http.StatusOK)

		_, _ = rw.Write(body)
	})
}
