// Package httpapi exposes the fund operations over a JSON HTTP API.
// Handlers parse and validate input, dispatch an operation through the
// store, and map domain errors to HTTP status codes. Amounts cross the
// wire as strings and are parsed with decimal.NewFromString.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/acrefund/landbank-backend/internal/domain"
	"github.com/acrefund/landbank-backend/internal/store"
	"github.com/acrefund/landbank-backend/internal/usecase/assets"
	"github.com/acrefund/landbank-backend/internal/usecase/dividend"
	"github.com/acrefund/landbank-backend/internal/usecase/expense"
	"github.com/acrefund/landbank-backend/internal/usecase/ledger"
	"github.com/acrefund/landbank-backend/internal/usecase/lending"
	"github.com/acrefund/landbank-backend/internal/usecase/membership"
	"github.com/acrefund/landbank-backend/internal/usecase/simulation"
)

// Server wires the HTTP routes to the store and the simulation engine.
type Server struct {
	store  *store.Store
	engine *simulation.Engine
	events domain.EventRepository
	logger *zap.Logger
}

// NewServer creates the HTTP adapter.
func NewServer(st *store.Store, engine *simulation.Engine, events domain.EventRepository, logger *zap.Logger) *Server {
	return &Server{store: st, engine: engine, events: events, logger: logger}
}

// Router builds the authenticated API router.
func (s *Server) Router(apiToken string) *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(AuthMiddleware(apiToken))

	api.HandleFunc("/simulation/advance", s.handleAdvance).Methods(http.MethodPost)
	api.HandleFunc("/simulation/fast-forward", s.handleFastForward).Methods(http.MethodPost)
	api.HandleFunc("/simulation/dividends", s.handlePayDividends).Methods(http.MethodPost)

	api.HandleFunc("/members", s.handleCreateMember).Methods(http.MethodPost)
	api.HandleFunc("/members", s.handleListMembers).Methods(http.MethodGet)
	api.HandleFunc("/members/{id}/exit", s.handleExitMember).Methods(http.MethodPost)

	api.HandleFunc("/loans", s.handleCreateLoan).Methods(http.MethodPost)
	api.HandleFunc("/loans", s.handleListLoans).Methods(http.MethodGet)
	api.HandleFunc("/loans/summary", s.handleLoanSummary).Methods(http.MethodGet)
	api.HandleFunc("/loans/{id}/payments", s.handleLoanPayment).Methods(http.MethodPost)
	api.HandleFunc("/loans/{id}/status", s.handleLoanStatus).Methods(http.MethodPost)

	api.HandleFunc("/assets/land", s.handlePurchaseLand).Methods(http.MethodPost)
	api.HandleFunc("/assets/land/{id}/sell", s.handleSellLand).Methods(http.MethodPost)
	api.HandleFunc("/assets/investments", s.handleOpenInvestment).Methods(http.MethodPost)
	api.HandleFunc("/assets/investments/{id}/liquidate", s.handleLiquidateInvestment).Methods(http.MethodPost)

	api.HandleFunc("/expenses/settings", s.handleAddExpenseSetting).Methods(http.MethodPost)
	api.HandleFunc("/expenses/settings/{id}", s.handleDeactivateExpenseSetting).Methods(http.MethodDelete)
	api.HandleFunc("/expenses/totals", s.handleExpenseTotals).Methods(http.MethodGet)

	api.HandleFunc("/nav", s.handleNAV).Methods(http.MethodGet)
	api.HandleFunc("/snapshots", s.handleSnapshots).Methods(http.MethodGet)
	api.HandleFunc("/dividends", s.handleListDividends).Methods(http.MethodGet)
	api.HandleFunc("/events", s.handleListEvents).Methods(http.MethodGet)

	return r
}

// --- simulation ---

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	events, err := s.store.Dispatch(r.Context(), func(st *domain.FundState) ([]domain.SimulationEvent, error) {
		return s.engine.AdvancePeriod(r.Context(), st)
	})
	if err != nil {
		s.respondError(w, err)
		return
	}
	st := s.store.State()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"currentPeriod": st.CurrentPeriod,
		"nav":           st.NAV,
		"unitPrice":     st.UnitPrice,
		"events":        events,
	})
}

func (s *Server) handleFastForward(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Periods int `json:"periods"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Periods <= 0 || req.Periods > 1200 {
		writeError(w, http.StatusBadRequest, "periods must be between 1 and 1200")
		return
	}

	events, err := s.store.Dispatch(r.Context(), func(st *domain.FundState) ([]domain.SimulationEvent, error) {
		return s.engine.FastForward(r.Context(), st, req.Periods)
	})
	if err != nil {
		s.respondError(w, err)
		return
	}
	st := s.store.State()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"currentPeriod": st.CurrentPeriod,
		"nav":           st.NAV,
		"unitPrice":     st.UnitPrice,
		"events":        events,
	})
}

func (s *Server) handlePayDividends(w http.ResponseWriter, r *http.Request) {
	events, err := s.store.Dispatch(r.Context(), func(st *domain.FundState) ([]domain.SimulationEvent, error) {
		return dividend.Pay(st)
	})
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"events": events})
}

// --- members ---

func (s *Server) handleCreateMember(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string  `json:"name"`
		Persona    string  `json:"persona"`
		BaseAmount string  `json:"baseAmount"`
		Variance   float64 `json:"variance"`
		SkipChance float64 `json:"skipChance"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	baseAmount := decimal.Zero
	if req.BaseAmount != "" {
		var err error
		baseAmount, err = decimal.NewFromString(req.BaseAmount)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid baseAmount format")
			return
		}
	}

	var created domain.Member
	_, err := s.store.Dispatch(r.Context(), func(st *domain.FundState) ([]domain.SimulationEvent, error) {
		m, err := membership.Join(st, domain.Member{
			Name: req.Name,
			Profile: domain.ContributionProfile{
				Persona:    req.Persona,
				BaseAmount: baseAmount,
				Variance:   req.Variance,
				SkipChance: req.SkipChance,
			},
		})
		if err != nil {
			return nil, err
		}
		created = m
		return nil, nil
	})
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

type memberView struct {
	domain.Member
	Units     decimal.Decimal `json:"units"`
	Ownership decimal.Decimal `json:"ownership"`
}

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	st := s.store.State()
	views := make([]memberView, 0, len(st.Members))
	for _, m := range st.Members {
		views = append(views, memberView{
			Member:    m,
			Units:     st.MemberUnits(m.ID),
			Ownership: st.OwnershipPercent(m.ID),
		})
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleExitMember(w http.ResponseWriter, r *http.Request) {
	memberID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid member id format")
		return
	}

	var req struct {
		Method      string            `json:"method"`
		Reason      string            `json:"reason"`
		BuyerID     string            `json:"buyerId"`
		Allocations map[string]string `json:"allocations"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var op store.Operation
	switch domain.ExitMethod(req.Method) {
	case domain.ExitMethodFundPayout:
		op = func(st *domain.FundState) ([]domain.SimulationEvent, error) {
			return membership.ExitFundPayout(st, memberID, req.Reason)
		}
	case domain.ExitMethodIndividualBuyback:
		buyerID, err := uuid.Parse(req.BuyerID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid buyerId format")
			return
		}
		op = func(st *domain.FundState) ([]domain.SimulationEvent, error) {
			return membership.ExitIndividualBuyback(st, memberID, buyerID, req.Reason)
		}
	case domain.ExitMethodPooledBuyback:
		allocations := make(map[uuid.UUID]decimal.Decimal, len(req.Allocations))
		for rawID, rawPercent := range req.Allocations {
			buyerID, err := uuid.Parse(rawID)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid allocation buyer id format")
				return
			}
			percent, err := decimal.NewFromString(rawPercent)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid allocation percent format")
				return
			}
			allocations[buyerID] = percent
		}
		op = func(st *domain.FundState) ([]domain.SimulationEvent, error) {
			return membership.ExitPooledBuyback(st, memberID, allocations, req.Reason)
		}
	default:
		writeError(w, http.StatusBadRequest, "method must be FUND_PAYOUT, POOLED_BUYBACK or INDIVIDUAL_BUYBACK")
		return
	}

	events, err := s.store.Dispatch(r.Context(), op)
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"events": events})
}

// --- loans ---

func (s *Server) handleCreateLoan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BorrowerID            string `json:"borrowerId"`
		Principal             string `json:"principal"`
		BorrowerEquity        string `json:"borrowerEquity"`
		TermMonths            int    `json:"termMonths"`
		CollateralDescription string `json:"collateralDescription"`
		CollateralValue       string `json:"collateralValue"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	borrowerID, err := uuid.Parse(req.BorrowerID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid borrowerId format")
		return
	}
	principal, err := decimal.NewFromString(req.Principal)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid principal format")
		return
	}
	equity, err := decimal.NewFromString(req.BorrowerEquity)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid borrowerEquity format")
		return
	}

	input := lending.CreateLoanInput{
		BorrowerID:            borrowerID,
		Principal:             principal,
		BorrowerEquity:        equity,
		TermMonths:            req.TermMonths,
		CollateralDescription: req.CollateralDescription,
	}
	if req.CollateralValue != "" {
		cv, err := decimal.NewFromString(req.CollateralValue)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid collateralValue format")
			return
		}
		input.CollateralValue = &cv
	}

	var created domain.Loan
	events, err := s.store.Dispatch(r.Context(), func(st *domain.FundState) ([]domain.SimulationEvent, error) {
		loan, events, err := lending.CreateLoan(st, input)
		if err != nil {
			return nil, err
		}
		created = loan
		return events, nil
	})
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"loan": created, "events": events})
}

func (s *Server) handleListLoans(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.State().Loans)
}

func (s *Server) handleLoanSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, lending.Summarize(s.store.State()))
}

func (s *Server) handleLoanPayment(w http.ResponseWriter, r *http.Request) {
	loanID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid loan id format")
		return
	}

	var req struct {
		Amount string `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount format")
		return
	}

	events, err := s.store.Dispatch(r.Context(), func(st *domain.FundState) ([]domain.SimulationEvent, error) {
		return lending.RecordPayment(st, loanID, amount)
	})
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"events": events})
}

func (s *Server) handleLoanStatus(w http.ResponseWriter, r *http.Request) {
	loanID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid loan id format")
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var op store.Operation
	switch domain.LoanStatus(req.Status) {
	case domain.LoanStatusDefaulted:
		op = func(st *domain.FundState) ([]domain.SimulationEvent, error) {
			return lending.MarkDefaulted(st, loanID)
		}
	case domain.LoanStatusCancelled:
		op = func(st *domain.FundState) ([]domain.SimulationEvent, error) {
			return lending.CancelLoan(st, loanID)
		}
	default:
		writeError(w, http.StatusBadRequest, "status must be DEFAULTED or CANCELLED")
		return
	}

	events, err := s.store.Dispatch(r.Context(), op)
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"events": events})
}

// --- assets ---

func (s *Server) handlePurchaseLand(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name          string `json:"name"`
		PurchasePrice string `json:"purchasePrice"`
		AnnualRate    string `json:"annualRate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	price, err := decimal.NewFromString(req.PurchasePrice)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid purchasePrice format")
		return
	}
	rate, err := decimal.NewFromString(req.AnnualRate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid annualRate format")
		return
	}

	var created domain.Land
	events, err := s.store.Dispatch(r.Context(), func(st *domain.FundState) ([]domain.SimulationEvent, error) {
		land, events, err := assets.PurchaseLand(st, assets.PurchaseLandInput{
			Name:          req.Name,
			PurchasePrice: price,
			AnnualRate:    rate,
		})
		if err != nil {
			return nil, err
		}
		created = land
		return events, nil
	})
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"land": created, "events": events})
}

func (s *Server) handleSellLand(w http.ResponseWriter, r *http.Request) {
	landID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid land id format")
		return
	}

	var req struct {
		SalePrice string `json:"salePrice"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	price, err := decimal.NewFromString(req.SalePrice)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid salePrice format")
		return
	}

	events, err := s.store.Dispatch(r.Context(), func(st *domain.FundState) ([]domain.SimulationEvent, error) {
		return assets.SellLand(st, landID, price)
	})
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"events": events})
}

func (s *Server) handleOpenInvestment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string `json:"name"`
		Principal  string `json:"principal"`
		AnnualRate string `json:"annualRate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	principal, err := decimal.NewFromString(req.Principal)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid principal format")
		return
	}
	rate, err := decimal.NewFromString(req.AnnualRate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid annualRate format")
		return
	}

	var created domain.InvestmentVehicle
	events, err := s.store.Dispatch(r.Context(), func(st *domain.FundState) ([]domain.SimulationEvent, error) {
		v, events, err := assets.OpenInvestment(st, assets.OpenInvestmentInput{
			Name:       req.Name,
			Principal:  principal,
			AnnualRate: rate,
		})
		if err != nil {
			return nil, err
		}
		created = v
		return events, nil
	})
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"investment": created, "events": events})
}

func (s *Server) handleLiquidateInvestment(w http.ResponseWriter, r *http.Request) {
	investmentID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid investment id format")
		return
	}

	events, err := s.store.Dispatch(r.Context(), func(st *domain.FundState) ([]domain.SimulationEvent, error) {
		return assets.LiquidateInvestment(st, investmentID)
	})
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"events": events})
}

// --- expenses ---

func (s *Server) handleAddExpenseSetting(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string `json:"name"`
		Category   string `json:"category"`
		Amount     string `json:"amount"`
		Occurrence string `json:"occurrence"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount format")
		return
	}

	var created domain.ExpenseSetting
	_, err = s.store.Dispatch(r.Context(), func(st *domain.FundState) ([]domain.SimulationEvent, error) {
		setting, err := expense.AddSetting(st, domain.ExpenseSetting{
			Name:       req.Name,
			Category:   req.Category,
			Amount:     amount,
			Occurrence: domain.ExpenseOccurrence(req.Occurrence),
		})
		if err != nil {
			return nil, err
		}
		created = setting
		return nil, nil
	})
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleDeactivateExpenseSetting(w http.ResponseWriter, r *http.Request) {
	settingID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid setting id format")
		return
	}

	_, err = s.store.Dispatch(r.Context(), func(st *domain.FundState) ([]domain.SimulationEvent, error) {
		return nil, expense.DeactivateSetting(st, settingID)
	})
	if err != nil {
		s.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExpenseTotals(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, expense.TotalsByCategory(s.store.State()))
}

// --- queries ---

func (s *Server) handleNAV(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ledger.Breakdown(s.store.State()))
}

func (s *Server) handleSnapshots(w http.ResponseWriter, r *http.Request) {
	st := s.store.State()
	snaps := make([]domain.MonthSnapshot, 0, len(st.Snapshots))
	for p := 0; p < st.CurrentPeriod; p++ {
		if snap, ok := st.Snapshots[p]; ok {
			snaps = append(snaps, snap)
		}
	}
	writeJSON(w, http.StatusOK, snaps)
}

func (s *Server) handleListDividends(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.State().Dividends)
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	events, err := s.events.List(r.Context(), limit, offset)
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// --- helpers ---

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// respondError maps domain errors to HTTP status codes.
func (s *Server) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrMemberNotFound),
		errors.Is(err, domain.ErrLoanNotFound),
		errors.Is(err, domain.ErrAssetNotFound),
		errors.Is(err, domain.ErrExpenseSettingNotFound),
		errors.Is(err, domain.ErrBuyerNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrMemberInactive),
		errors.Is(err, domain.ErrBuyerInactive),
		errors.Is(err, domain.ErrLoanNotActive),
		errors.Is(err, domain.ErrAssetNotHeld):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrAllocationSum),
		errors.Is(err, domain.ErrInsufficientCash),
		errors.Is(err, domain.ErrBelowMinimumInvestment),
		errors.Is(err, domain.ErrCollateralRequired):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case isValidationMessage(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// isValidationMessage catches the entity Validate() errors, which are
// plain messages rather than sentinels.
func isValidationMessage(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "must be") ||
		strings.Contains(msg, "must have") ||
		strings.Contains(msg, "cannot be") ||
		strings.Contains(msg, "must carry")
}
