package copilot

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"

	"claridx/internal/common"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type SummaryService interface {
	Summarize(ctx context.Context, req SummaryRequest) (string, error)
}

type Handler struct {
	svc      SummaryService
	limiter  *AccountLimiter
	maxBytes int64
	log      *zap.Logger
}

func NewHandler(svc SummaryService, limiter *AccountLimiter, maxUploadBytes int64, log *zap.Logger) *Handler {
	return &Handler{svc: svc, limiter: limiter, maxBytes: maxUploadBytes, log: log.Named("copilot.http")}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/copilot/summary", h.Summarize).Methods(http.MethodPost)
}

type summaryBody struct {
	ImageBase64   string `json:"image_base64"`
	ClinicalNotes string `json:"clinical_notes"`
	LabValues     string `json:"lab_values"`
	ImagingType   string `json:"imaging_type"`
	Language      string `json:"language"`
}

func (h *Handler) Summarize(w http.ResponseWriter, r *http.Request) {
	principal, ok := common.PrincipalFrom(r.Context())
	if !ok {
		common.WriteError(w, common.NewUnauthorizedError("authorization required"))
		return
	}
	if h.limiter != nil && !h.limiter.Allow(principal.AccountID) {
		h.log.Warn("rate limit exceeded", zap.String("account_id", principal.AccountID))
		common.WriteError(w, common.NewError(common.CodeRateLimited, "too many co-pilot requests, try again shortly"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes*2+(1<<20))

	var req SummaryRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := h.readMultipart(r, &req); err != nil {
			common.WriteError(w, err)
			return
		}
	} else {
		var body summaryBody
		if err := common.DecodeJSON(r, &body); err != nil {
			common.WriteError(w, err)
			return
		}
		req = SummaryRequest{
			ImageBase64:   body.ImageBase64,
			ClinicalNotes: body.ClinicalNotes,
			LabValues:     body.LabValues,
			ImagingType:   ImagingType(body.ImagingType),
			Language:      body.Language,
		}
	}

	summary, err := h.svc.Summarize(r.Context(), req)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]string{"summary": summary})
}

func (h *Handler) readMultipart(r *http.Request, req *SummaryRequest) error {
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		return common.WrapError(common.CodeInvalidInput, "invalid multipart body", err)
	}
	req.ClinicalNotes = r.FormValue("clinical_notes")
	req.LabValues = r.FormValue("lab_values")
	req.ImagingType = ImagingType(r.FormValue("imaging_type"))
	req.Language = r.FormValue("language")

	file, _, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil
	}
	if err != nil {
		return common.WrapError(common.CodeInvalidInput, "invalid image field", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxBytes+1))
	if err != nil {
		return common.WrapError(common.CodeInvalidInput, "could not read image", err)
	}
	if int64(len(data)) > h.maxBytes {
		return common.NewInvalidInputError("image is too large")
	}
	req.Image = data
	return nil
}
