package user

import (
	"net/http"

	"claridx/internal/common"
	"claridx/internal/dbsql"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Handler exposes the identity provider over HTTP.
type Handler struct {
	userService UserService
	log         *zap.Logger
}

func NewHandler(userService UserService, log *zap.Logger) *Handler {
	return &Handler{userService: userService, log: log.Named("user.http")}
}

// RegisterPublicRoutes mounts the endpoints that need no session.
func (h *Handler) RegisterPublicRoutes(r *mux.Router) {
	r.HandleFunc("/auth/signup", h.SignUp).Methods(http.MethodPost)
	r.HandleFunc("/auth/signin", h.SignIn).Methods(http.MethodPost)
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/auth/signout", h.SignOut).Methods(http.MethodPost)
	r.HandleFunc("/auth/session", h.CurrentSession).Methods(http.MethodGet)
	r.HandleFunc("/doctors", h.ListDoctors).Methods(http.MethodGet)
	r.HandleFunc("/patients", h.ListPatients).Methods(http.MethodGet)
	r.HandleFunc("/conversations/{patientID}/doctor", h.AssignDoctor).Methods(http.MethodPut)
}

type profileResponse struct {
	ID       string      `json:"id"`
	Email    string      `json:"email"`
	Role     common.Role `json:"role"`
	FullName string      `json:"full_name"`
}

func toProfileResponses(profiles []*dbsql.Profile) []profileResponse {
	out := make([]profileResponse, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, profileResponse{ID: p.ID, Email: p.Email, Role: common.Role(p.Role), FullName: p.FullName})
	}
	return out
}

func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}

	session, err := h.userService.SignUp(r.Context(), req)
	if err != nil {
		h.logFailure("sign up failed", err)
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusCreated, session)
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}

	session, err := h.userService.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logFailure("sign in failed", err)
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, session)
}

func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.userService.SignOut(r.Context(), common.BearerToken(r)); err != nil {
		common.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CurrentSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.userService.CurrentSession(r.Context(), common.BearerToken(r))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, session)
}

func (h *Handler) ListDoctors(w http.ResponseWriter, r *http.Request) {
	doctors, err := h.userService.ListDoctors(r.Context())
	if err != nil {
		h.logFailure("list doctors failed", err)
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]interface{}{"doctors": toProfileResponses(doctors)})
}

// ListPatients returns the patients assigned to the calling doctor.
func (h *Handler) ListPatients(w http.ResponseWriter, r *http.Request) {
	principal, ok := common.PrincipalFrom(r.Context())
	if !ok {
		common.WriteError(w, common.NewUnauthorizedError("authorization required"))
		return
	}
	if principal.Role != common.RoleDoctor {
		common.WriteError(w, common.NewForbiddenError("only doctors can list patients"))
		return
	}

	patients, err := h.userService.ListPatients(r.Context(), principal.AccountID)
	if err != nil {
		h.logFailure("list patients failed", err)
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]interface{}{"patients": toProfileResponses(patients)})
}

type assignRequest struct {
	DoctorID string `json:"doctor_id"`
}

// AssignDoctor lets a patient pick their doctor, or a doctor take on a
// patient who has none.
func (h *Handler) AssignDoctor(w http.ResponseWriter, r *http.Request) {
	principal, ok := common.PrincipalFrom(r.Context())
	if !ok {
		common.WriteError(w, common.NewUnauthorizedError("authorization required"))
		return
	}
	patientID := mux.Vars(r)["patientID"]

	var req assignRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}

	if err := h.userService.AssignDoctor(r.Context(), principal, patientID, req.DoctorID); err != nil {
		h.logFailure("assign doctor failed", err)
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]string{"patient_id": patientID, "doctor_id": req.DoctorID})
}

func (h *Handler) logFailure(msg string, err error) {
	if common.CodeOf(err) == common.CodeInternal {
		h.log.Error(msg, zap.Error(err))
		return
	}
	h.log.Debug(msg, zap.Error(err))
}
