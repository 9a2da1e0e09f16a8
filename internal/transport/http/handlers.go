package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/nadzzz/finecho/internal/finance"
	"github.com/nadzzz/finecho/internal/message"
	"github.com/nadzzz/finecho/internal/transport"
)

const maxBodyBytes = 1 << 20

type handlers struct {
	svc transport.Service
}

type errorBody struct {
	Message string `json:"message"`
}

// goalProgress is the body of POST /api/goals/{id}/progress.
type goalProgress struct {
	Amount decimal.Decimal `json:"amount"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps service errors onto HTTP status codes and client-safe
// messages.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, finance.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, finance.ErrInvalid):
		return http.StatusBadRequest, err.Error()
	}
	return http.StatusInternalServerError, "internal server error"
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed",
			"request_id", requestIDFrom(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
	}
	writeJSON(w, status, errorBody{Message: msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid json: %v", finance.ErrInvalid, err)
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", finance.ErrInvalid, name)
	}
	return id, nil
}

// userParam parses {userId} and checks the caller may read it. It writes
// the error response itself and returns false on failure.
func userParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := pathID(r, name)
	if err != nil {
		writeError(w, r, err)
		return 0, false
	}
	if !allowed(r, id) {
		writeJSON(w, http.StatusForbidden, errorBody{Message: "forbidden"})
		return 0, false
	}
	return id, true
}

// createUser handles POST /api/users.
//
// @Summary  Register a user
// @Tags     users
// @Accept   json
// @Produce  json
// @Param    user  body      finance.NewUser  true  "New user"
// @Success  201   {object}  finance.User
// @Failure  400   {object}  errorBody
// @Router   /api/users [post]
func (h *handlers) createUser(w http.ResponseWriter, r *http.Request) {
	var in finance.NewUser
	if err := decodeBody(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := h.svc.CreateUser(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

// getUser handles GET /api/users/{id}.
//
// @Summary  Get a user
// @Tags     users
// @Produce  json
// @Param    id   path      int  true  "User ID"
// @Success  200  {object}  finance.User
// @Failure  404  {object}  errorBody
// @Router   /api/users/{id} [get]
func (h *handlers) getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userParam(w, r, "id")
	if !ok {
		return
	}
	u, err := h.svc.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// createTransaction handles POST /api/transactions. A missing category is
// filled in automatically.
//
// @Summary  Record a transaction
// @Tags     transactions
// @Accept   json
// @Produce  json
// @Param    transaction  body      finance.Transaction  true  "Transaction"
// @Success  201          {object}  finance.Transaction
// @Failure  400          {object}  errorBody
// @Router   /api/transactions [post]
func (h *handlers) createTransaction(w http.ResponseWriter, r *http.Request) {
	var tx finance.Transaction
	if err := decodeBody(w, r, &tx); err != nil {
		writeError(w, r, err)
		return
	}
	if !allowed(r, tx.UserID) {
		writeJSON(w, http.StatusForbidden, errorBody{Message: "forbidden"})
		return
	}
	tx.ID = 0
	created, err := h.svc.CreateTransaction(r.Context(), tx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// listTransactions handles GET /api/users/{userId}/transactions.
//
// @Summary  List a user's transactions, newest first
// @Tags     transactions
// @Produce  json
// @Param    userId  path      int  true  "User ID"
// @Success  200     {array}   finance.Transaction
// @Router   /api/users/{userId}/transactions [get]
func (h *handlers) listTransactions(w http.ResponseWriter, r *http.Request) {
	id, ok := userParam(w, r, "userId")
	if !ok {
		return
	}
	txs, err := h.svc.Transactions(r.Context(), id)
	respond(w, r, txs, err)
}

// listAccounts handles GET /api/users/{userId}/accounts.
//
// @Summary  List a user's accounts
// @Tags     accounts
// @Produce  json
// @Param    userId  path      int  true  "User ID"
// @Success  200     {array}   finance.Account
// @Router   /api/users/{userId}/accounts [get]
func (h *handlers) listAccounts(w http.ResponseWriter, r *http.Request) {
	id, ok := userParam(w, r, "userId")
	if !ok {
		return
	}
	accounts, err := h.svc.Accounts(r.Context(), id)
	respond(w, r, accounts, err)
}

// listBudgets handles GET /api/users/{userId}/budgets.
//
// @Summary  List a user's budgets
// @Tags     budgets
// @Produce  json
// @Param    userId  path      int  true  "User ID"
// @Success  200     {array}   finance.Budget
// @Router   /api/users/{userId}/budgets [get]
func (h *handlers) listBudgets(w http.ResponseWriter, r *http.Request) {
	id, ok := userParam(w, r, "userId")
	if !ok {
		return
	}
	budgets, err := h.svc.Budgets(r.Context(), id)
	respond(w, r, budgets, err)
}

// listGoals handles GET /api/users/{userId}/goals.
//
// @Summary  List a user's savings goals
// @Tags     goals
// @Produce  json
// @Param    userId  path      int  true  "User ID"
// @Success  200     {array}   finance.Goal
// @Router   /api/users/{userId}/goals [get]
func (h *handlers) listGoals(w http.ResponseWriter, r *http.Request) {
	id, ok := userParam(w, r, "userId")
	if !ok {
		return
	}
	goals, err := h.svc.Goals(r.Context(), id)
	respond(w, r, goals, err)
}

// addGoalProgress handles POST /api/goals/{id}/progress.
//
// @Summary  Add money to a savings goal
// @Tags     goals
// @Accept   json
// @Produce  json
// @Param    id    path      int           true  "Goal ID"
// @Param    body  body      goalProgress  true  "Amount to add"
// @Success  200   {object}  finance.Goal
// @Failure  400   {object}  errorBody
// @Failure  404   {object}  errorBody
// @Router   /api/goals/{id}/progress [post]
func (h *handlers) addGoalProgress(w http.ResponseWriter, r *http.Request) {
	goalID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body goalProgress
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	// With auth on, only the owner's goals are visible.
	if caller, ok := callerFrom(r.Context()); ok {
		goals, err := h.svc.Goals(r.Context(), caller)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if !slices.ContainsFunc(goals, func(g finance.Goal) bool { return g.ID == goalID }) {
			writeError(w, r, fmt.Errorf("goal %d: %w", goalID, finance.ErrNotFound))
			return
		}
	}

	g, err := h.svc.AddGoalProgress(r.Context(), goalID, body.Amount)
	respond(w, r, g, err)
}

// financialSummary handles GET /api/users/{userId}/financial-summary.
//
// @Summary  Dashboard snapshot
// @Tags     summary
// @Produce  json
// @Param    userId  path      int  true  "User ID"
// @Success  200     {object}  finance.Summary
// @Router   /api/users/{userId}/financial-summary [get]
func (h *handlers) financialSummary(w http.ResponseWriter, r *http.Request) {
	id, ok := userParam(w, r, "userId")
	if !ok {
		return
	}
	s, err := h.svc.Summary(r.Context(), id)
	respond(w, r, s, err)
}

// insights handles GET /api/users/{userId}/insights.
//
// @Summary  Spending insights
// @Tags     summary
// @Produce  json
// @Param    userId  path      int  true  "User ID"
// @Success  200     {array}   message.Insight
// @Router   /api/users/{userId}/insights [get]
func (h *handlers) insights(w http.ResponseWriter, r *http.Request) {
	id, ok := userParam(w, r, "userId")
	if !ok {
		return
	}
	insights, err := h.svc.Insights(r.Context(), id)
	respond(w, r, insights, err)
}

// processCommand handles POST /api/voice-commands.
//
// @Summary      Process a voice command
// @Description  Interprets a transcribed voice command and answers it. Every command is kept in the user's history.
// @Tags         voice
// @Accept       json
// @Produce      json
// @Param        command  body      message.CommandRequest  true  "Transcribed command"
// @Success      201      {object}  message.CommandResponse
// @Failure      400      {object}  errorBody
// @Failure      404      {object}  errorBody
// @Router       /api/voice-commands [post]
func (h *handlers) processCommand(w http.ResponseWriter, r *http.Request) {
	var req message.CommandRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if !allowed(r, req.UserID) {
		writeJSON(w, http.StatusForbidden, errorBody{Message: "forbidden"})
		return
	}
	resp, err := h.svc.ProcessCommand(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// listVoiceCommands handles GET /api/users/{userId}/voice-commands.
//
// @Summary  Voice command history, newest first
// @Tags     voice
// @Produce  json
// @Param    userId  path      int  true  "User ID"
// @Success  200     {array}   finance.VoiceCommand
// @Router   /api/users/{userId}/voice-commands [get]
func (h *handlers) listVoiceCommands(w http.ResponseWriter, r *http.Request) {
	id, ok := userParam(w, r, "userId")
	if !ok {
		return
	}
	cmds, err := h.svc.VoiceCommands(r.Context(), id)
	respond(w, r, cmds, err)
}

func respond(w http.ResponseWriter, r *http.Request, v any, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}
