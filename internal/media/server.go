// Package media serves stored attachments by key.
package media

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"claridx/internal/common"
	"claridx/internal/storage"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type HTTPServer struct {
	blobs  storage.BlobStore
	router *mux.Router
	log    *zap.Logger
}

func NewHTTPServer(blobs storage.BlobStore, log *zap.Logger) *HTTPServer {
	s := &HTTPServer{blobs: blobs, router: mux.NewRouter(), log: log.Named("media")}

	s.router.HandleFunc("/media/{key:.+}", s.serveFile).Methods(http.MethodGet, http.MethodHead)
	s.router.HandleFunc("/health", s.health).Methods(http.MethodGet)
	return s
}

func (s *HTTPServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *HTTPServer) serveFile(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	body, obj, err := s.blobs.Open(r.Context(), key)
	if errors.Is(err, storage.ErrObjectNotFound) {
		http.Error(w, "file not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.Error("open blob failed", zap.String("key", key), zap.Error(err))
		http.Error(w, "failed to open file", http.StatusInternalServerError)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", common.ResolveContentType(obj.ContentType, obj.Key))
	w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	if r.Method == http.MethodHead {
		return
	}

	if _, err := io.Copy(w, body); err != nil {
		s.log.Warn("streaming blob interrupted", zap.String("key", key), zap.Error(err))
	}
}

func (s *HTTPServer) health(w http.ResponseWriter, r *http.Request) {
	common.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
