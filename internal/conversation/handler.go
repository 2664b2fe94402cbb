package conversation

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"claridx/internal/common"
	"claridx/internal/dbsql"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Service is what the handler needs from the Synchronizer.
type Service interface {
	Source
	Send(ctx context.Context, req SendRequest) error
}

type AccessChecker interface {
	CanAccess(ctx context.Context, viewer *common.Principal, patientID string) (*dbsql.Conversation, error)
}

type Handler struct {
	svc       Service
	access    AccessChecker
	sessions  common.SessionWatcher
	log       *zap.Logger
	maxUpload int64
	upgrader  websocket.Upgrader
}

// NewHandler builds the conversation endpoints. sessions may be nil, in
// which case open WebSockets outlive a sign-out until the client leaves.
func NewHandler(svc Service, access AccessChecker, sessions common.SessionWatcher, maxUploadBytes int64, allowedOrigin string, log *zap.Logger) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 << 20
	}
	return &Handler{
		svc:       svc,
		access:    access,
		sessions:  sessions,
		log:       log.Named("conversation.http"),
		maxUpload: maxUploadBytes,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigin),
		},
	}
}

// RegisterRoutes mounts the conversation endpoints on an authenticated router.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/conversations/ws", h.Stream).Methods(http.MethodGet)
	r.HandleFunc("/conversations/{patientID}/messages", h.ListMessages).Methods(http.MethodGet)
	r.HandleFunc("/conversations/{patientID}/messages", h.SendMessage).Methods(http.MethodPost)
}

type listResponse struct {
	PatientID string             `json:"patient_id"`
	Messages  []ProjectedMessage `json:"messages"`
	Error     string             `json:"error,omitempty"`
}

func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	principal, ok := common.PrincipalFrom(r.Context())
	if !ok {
		common.WriteError(w, common.NewUnauthorizedError("authorization required"))
		return
	}
	patientID := mux.Vars(r)["patientID"]

	if _, err := h.access.CanAccess(r.Context(), principal, patientID); err != nil {
		common.WriteError(w, err)
		return
	}

	// a failed read is not fatal to the screen: the client keeps what it
	// has, shows the error and retries on its next refresh
	messages, err := h.svc.Fetch(r.Context(), patientID, principal.AccountID)
	if err != nil {
		if common.CodeOf(err) != common.CodeServiceUnavail {
			common.WriteError(w, err)
			return
		}
		h.log.Warn("list messages degraded", zap.String("patient_id", patientID), zap.Error(err))
		common.WriteJSON(w, http.StatusOK, listResponse{
			PatientID: patientID,
			Messages:  []ProjectedMessage{},
			Error:     common.PublicMessage(err),
		})
		return
	}

	common.WriteJSON(w, http.StatusOK, listResponse{PatientID: patientID, Messages: messages})
}

type sendBody struct {
	Text string `json:"text"`
}

// SendMessage accepts multipart (text plus optional file) or a JSON text
// body. Success is 202 with no message list; readers pick the new row up
// through their subscription.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	principal, ok := common.PrincipalFrom(r.Context())
	if !ok {
		common.WriteError(w, common.NewUnauthorizedError("authorization required"))
		return
	}
	patientID := mux.Vars(r)["patientID"]

	conv, err := h.access.CanAccess(r.Context(), principal, patientID)
	if err != nil {
		common.WriteError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+(1<<20))

	req := SendRequest{
		ConversationID: patientID,
		SenderID:       principal.AccountID,
		DoctorID:       doctorFor(principal, conv),
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		if err := h.readMultipart(r, &req); err != nil {
			common.WriteError(w, err)
			return
		}
	default:
		var body sendBody
		if err := common.DecodeJSON(r, &body); err != nil {
			common.WriteError(w, err)
			return
		}
		req.Text = body.Text
	}

	if err := h.svc.Send(r.Context(), req); err != nil {
		common.WriteError(w, err)
		return
	}

	common.WriteJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (h *Handler) readMultipart(r *http.Request, req *SendRequest) error {
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		return common.WrapError(common.CodeInvalidInput, "invalid multipart body", err)
	}
	req.Text = r.FormValue("text")

	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil
	}
	if err != nil {
		return common.WrapError(common.CodeInvalidInput, "invalid file field", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUpload+1))
	if err != nil {
		return common.WrapError(common.CodeInvalidInput, "could not read attachment", err)
	}
	if int64(len(data)) > h.maxUpload {
		return common.NewInvalidInputError("attachment is too large")
	}

	req.Attachment = &Upload{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}
	return nil
}

// doctorFor picks the doctor recorded on a new message: the sender when a
// doctor writes, otherwise whoever is assigned to the patient.
func doctorFor(sender *common.Principal, conv *dbsql.Conversation) *string {
	if sender.Role == common.RoleDoctor {
		id := sender.AccountID
		return &id
	}
	if conv != nil && conv.DoctorID != nil {
		id := *conv.DoctorID
		return &id
	}
	return nil
}

func originChecker(allowed string) func(*http.Request) bool {
	allowed = strings.TrimSpace(allowed)
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if allowed == "" || allowed == "*" || origin == "" {
			return true
		}
		return strings.EqualFold(origin, allowed)
	}
}
