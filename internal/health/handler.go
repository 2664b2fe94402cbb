package health

import (
	"net/http"

	"claridx/internal/common"

	"github.com/gorilla/mux"
)

func (c *Checker) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", c.ServeStatus).Methods(http.MethodGet)
}

// ServeStatus mirrors the gRPC statuses for HTTP load balancers.
func (c *Checker) ServeStatus(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	if !c.Healthy() {
		status = http.StatusServiceUnavailable
	}
	common.WriteJSON(w, status, c.Status())
}
