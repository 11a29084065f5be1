// Package httpapi exposes the realty services as an HTTP/JSON API under
// /api, together with the auth, audit, CORS, rate limit, and metrics
// middleware the server composes around it.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	app "github.com/realtydesk/realtydesk/internal/app"
	"github.com/realtydesk/realtydesk/internal/domain/client"
	apperrors "github.com/realtydesk/realtydesk/internal/errors"
)

const dateLayout = "2006-01-02"

func init() {
	// This package is the only place decimals are serialized. Monetary
	// amounts must reach clients as JSON numbers, not quoted strings,
	// without losing the exact decimal representation.
	decimal.MarshalJSONWithoutQuotes = true
}

// handler bundles HTTP endpoints for the application services.
type handler struct {
	app *app.Application
}

// NewHandler returns a mux exposing the REST API under /api.
func NewHandler(application *app.Application) http.Handler {
	h := &handler{app: application}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/register", h.register)
	mux.HandleFunc("/api/login", h.login)
	mux.HandleFunc("/api/stats", h.stats)
	mux.HandleFunc("/api/clients", h.listClients)
	mux.HandleFunc("/api/clients/high_value", h.highValueClients)
	mux.HandleFunc("/api/agents", h.listAgents)
	mux.HandleFunc("/api/contracts", h.listContracts)
	mux.HandleFunc("/api/agent_earnings/", h.agentEarnings)
	mux.HandleFunc("/api/total_payment/", h.totalPayment)
	mux.HandleFunc("/api/payments/", h.listPayments)
	mux.HandleFunc("/api/add_client", h.addClient)
	mux.HandleFunc("/api/add_contract", h.addContract)
	mux.HandleFunc("/api/add_payment", h.addPayment)
	mux.HandleFunc("/api/contract/", h.deleteContract)
	mux.HandleFunc("/api/client/", h.deleteClient)
	return mux
}

// --- auth -------------------------------------------------------------------

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var payload struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if _, err := h.app.Auth.Register(r.Context(), payload.Username, payload.Password); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "User registered successfully!"})
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var payload struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	token, err := h.app.Auth.Login(r.Context(), payload.Username, payload.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access_token": token})
}

// --- reads ------------------------------------------------------------------

func (h *handler) stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	stats, err := h.app.Reports.Stats(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Clients   int64           `json:"clients"`
		Contracts int64           `json:"contracts"`
		Agents    int64           `json:"agents"`
		TotalPaid decimal.Decimal `json:"totalPaid"`
	}{stats.Clients, stats.Contracts, stats.Agents, stats.TotalPaid})
}

type clientRow struct {
	ClientID int64  `json:"ClientID"`
	Fname    string `json:"Fname"`
	Lname    string `json:"Lname"`
}

func (h *handler) listClients(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	list, err := h.app.Clients.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rows := make([]clientRow, 0, len(list))
	for _, c := range list {
		rows = append(rows, clientRow{ClientID: c.ID, Fname: c.FirstName, Lname: c.LastName})
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *handler) highValueClients(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	list, err := h.app.Clients.HighValue(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	type row struct {
		ClientID       int64           `json:"ClientID"`
		Fname          string          `json:"Fname"`
		Lname          string          `json:"Lname"`
		ContractAmount decimal.Decimal `json:"ContractAmount"`
	}
	rows := make([]row, 0, len(list))
	for _, c := range list {
		rows = append(rows, row{c.ID, c.FirstName, c.LastName, c.ContractAmount})
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *handler) listAgents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	list, err := h.app.Agents.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	type row struct {
		AgentID int64  `json:"AgentID"`
		Fname   string `json:"Fname"`
		Lname   string `json:"Lname"`
	}
	rows := make([]row, 0, len(list))
	for _, a := range list {
		rows = append(rows, row{a.ID, a.FirstName, a.LastName})
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *handler) listContracts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	list, err := h.app.Contracts.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	type row struct {
		ContractID int64           `json:"ContractID"`
		Amount     decimal.Decimal `json:"Amount"`
		ClientName string          `json:"ClientName"`
	}
	rows := make([]row, 0, len(list))
	for _, c := range list {
		rows = append(rows, row{c.ID, c.Amount, c.ClientName})
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *handler) agentEarnings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id, err := pathID(r.URL.Path, "/api/agent_earnings/")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	earnings, err := h.app.Agents.Earnings(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	type row struct {
		ContractID       int64           `json:"ContractID"`
		ClientName       string          `json:"ClientName"`
		CommissionAmount decimal.Decimal `json:"CommissionAmount"`
		Percentage       decimal.Decimal `json:"Percentage"`
	}
	rows := make([]row, 0, len(earnings))
	for _, e := range earnings {
		rows = append(rows, row{e.ContractID, e.ClientName, e.CommissionAmount, e.Percentage})
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *handler) totalPayment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id, err := pathID(r.URL.Path, "/api/total_payment/")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	total, err := h.app.Contracts.TotalPayment(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]decimal.Decimal{"total": total})
}

func (h *handler) listPayments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id, err := pathID(r.URL.Path, "/api/payments/")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	payments, err := h.app.Payments.List(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	type row struct {
		PaymentNo   int64           `json:"PaymentNo"`
		PaymentDate string          `json:"PaymentDate"`
		Amount      decimal.Decimal `json:"Amount"`
	}
	rows := make([]row, 0, len(payments))
	for _, p := range payments {
		rows = append(rows, row{p.No, p.Date.Format(dateLayout), p.Amount})
	}
	writeJSON(w, http.StatusOK, rows)
}

// --- writes -----------------------------------------------------------------

func (h *handler) addClient(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var payload struct {
		Fname    string `json:"fname"`
		Lname    string `json:"lname"`
		HireDate string `json:"hire_date"`
		Address  string `json:"address"`
		City     string `json:"city"`
		State    string `json:"state"`
		ZipCode  string `json:"zip_code"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	hireDate, err := time.Parse(dateLayout, payload.HireDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("hire_date must be formatted YYYY-MM-DD"))
		return
	}
	_, err = h.app.Clients.Add(r.Context(), client.Client{
		FirstName:     payload.Fname,
		LastName:      payload.Lname,
		HireDate:      hireDate,
		AddressStreet: payload.Address,
		City:          payload.City,
		State:         payload.State,
		ZIPCode:       payload.ZipCode,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Client added successfully!"})
}

func (h *handler) addContract(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var payload struct {
		ClientID  int64           `json:"client_id"`
		StartDate string          `json:"start_date"`
		EndDate   string          `json:"end_date"`
		Amount    decimal.Decimal `json:"amount"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.app.Contracts.Add(r.Context(), payload.ClientID, payload.StartDate, payload.EndDate, payload.Amount); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Contract added successfully! Trigger validated dates."})
}

func (h *handler) addPayment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var payload struct {
		ContractID int64           `json:"contract_id"`
		Amount     decimal.Decimal `json:"amount"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	rep, err := h.app.Payments.Add(r.Context(), payload.ContractID, payload.Amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, struct {
		Message string `json:"message"`
		Report  struct {
			CommissionID int64           `json:"CommissionID"`
			PreAmount    decimal.Decimal `json:"PreAmount"`
			PostAmount   decimal.Decimal `json:"PostAmount"`
			Percentage   decimal.Decimal `json:"Percentage"`
		} `json:"commissionReport"`
	}{
		Message: "Payment added! Trigger updated commission.",
		Report: struct {
			CommissionID int64           `json:"CommissionID"`
			PreAmount    decimal.Decimal `json:"PreAmount"`
			PostAmount   decimal.Decimal `json:"PostAmount"`
			Percentage   decimal.Decimal `json:"Percentage"`
		}{rep.CommissionID, rep.PreAmount, rep.PostAmount, rep.Percentage},
	})
}

// --- deletes ----------------------------------------------------------------

func (h *handler) deleteContract(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id, err := pathID(r.URL.Path, "/api/contract/")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.app.Contracts.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Contract and all related records deleted."})
}

func (h *handler) deleteClient(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id, err := pathID(r.URL.Path, "/api/client/")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.app.Clients.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Client and all related records deleted."})
}

// --- helpers ----------------------------------------------------------------

func pathID(path, prefix string) (int64, error) {
	raw := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if raw == "" || strings.Contains(raw, "/") {
		return 0, errors.New("numeric id required in path")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.New("numeric id required in path")
	}
	return id, nil
}

func decodeJSON(body io.ReadCloser, dst interface{}) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

// writeServiceError maps service error kinds onto HTTP statuses once, at
// the boundary. Unclassified errors surface as 500 with their message.
func writeServiceError(w http.ResponseWriter, err error) {
	if se := apperrors.GetServiceError(err); se != nil {
		writeError(w, se.HTTPStatus, errors.New(se.Message))
		return
	}
	writeError(w, http.StatusInternalServerError, err)
}
