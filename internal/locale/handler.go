package locale

import (
	"net/http"

	"claridx/internal/common"

	"github.com/gorilla/mux"
)

type Handler struct {
	catalog *Catalog
}

func NewHandler(catalog *Catalog) *Handler {
	return &Handler{catalog: catalog}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/locales", h.List).Methods(http.MethodGet)
	r.HandleFunc("/locales/{lang}", h.Get).Methods(http.MethodGet)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	type language struct {
		Code string `json:"code"`
		Name string `json:"name"`
	}
	langs := h.catalog.Languages()
	resp := make([]language, 0, len(langs))
	for _, code := range langs {
		resp = append(resp, language{Code: code, Name: h.catalog.Strings(code).Name})
	}
	common.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	common.WriteJSON(w, http.StatusOK, h.catalog.Strings(mux.Vars(r)["lang"]))
}
