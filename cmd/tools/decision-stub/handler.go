// cmd/tools/decision-stub/handler.go
package main

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"loan-intake/internal/common/logger"
	"loan-intake/internal/decision"
	"loan-intake/internal/identifier"
)

const (
	msgApproved = "Empréstimo aprovado"
	msgDenied   = "Empréstimo negado"
)

type errorResponse struct {
	Error   string                    `json:"error"`
	Details decision.ValidationErrors `json:"details,omitempty"`
}

// stubHandler answers loan requests with a fixed approval rule.
type stubHandler struct {
	approvalLimit int
	validator     *decision.RequestValidator
	log           logger.Logger
}

func newStubHandler(approvalLimit int, log logger.Logger) *stubHandler {
	return &stubHandler{
		approvalLimit: approvalLimit,
		validator:     decision.NewRequestValidator(),
		log:           log,
	}
}

func (h *stubHandler) RegisterRoutes(router *httprouter.Router, path string) {
	router.POST(path, h.Decide)
	router.GET("/health", h.Health)
	router.Handler(http.MethodGet, "/metrics", promhttp.Handler())
}

func (h *stubHandler) Decide(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req decision.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		resp := errorResponse{Error: "invalid request"}
		if verrs, ok := err.(decision.ValidationErrors); ok {
			resp.Details = verrs
		}
		h.writeJSON(w, http.StatusBadRequest, resp)
		return
	}

	kind := identifier.ParseKind(req.PersonType)
	digits := req.CPF
	if kind == identifier.Organization {
		digits = req.CNPJ
	}
	if !identifier.Validate(digits, kind) {
		h.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: kind.Label() + " inválido"})
		return
	}

	requested, _ := strconv.Atoi(req.RequestedValue)
	message := msgDenied
	if requested <= h.approvalLimit {
		message = msgApproved
	}

	h.log.Info("loan decided", map[string]interface{}{
		"requestId":  r.Header.Get(decision.RequestIDHeader),
		"personType": req.PersonType,
		"document":   identifier.Mask(digits),
		"requested":  requested,
		"approved":   message == msgApproved,
	})
	h.writeJSON(w, http.StatusOK, decision.Response{Message: message})
}

func (h *stubHandler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *stubHandler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Error("failed to write JSON response", map[string]interface{}{"error": err.Error()})
	}
}
