package http

import (
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"duitku/internal/core"
	"duitku/internal/ledger"
)

// transactionRow is the view model for one ledger line.
type transactionRow struct {
	ID          string
	Date        string
	Account     string
	Wallet      string
	Description string
	Amount      string
	Expense     bool
}

// pageButton is one numbered control in the pagination bar.
type pageButton struct {
	Number  int
	Current bool
}

type transactionsView struct {
	Rows       []transactionRow
	Page       int
	TotalPages int
	HasPrev    bool
	HasNext    bool
	PrevPage   int
	NextPage   int
	Pages      []pageButton
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	user, ok := userFrom(r.Context())
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	accounts, err := s.accounts(r.Context(), user.ID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Load accounts error", "error", err, "user_id", user.ID)
	}

	accent, err := s.store.AccentColor(r.Context(), user.ID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Load accent color error", "error", err, "user_id", user.ID)
		accent = "#4a90d9"
	}

	profile := s.loadProfile(r.Context(), user)

	wallets, err := s.store.Wallets(r.Context(), user.ID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Load wallets error", "error", err, "user_id", user.ID)
	}
	walletNames := make([]string, 0, len(wallets))
	for _, wallet := range wallets {
		walletNames = append(walletNames, wallet.Name)
	}

	data := struct {
		DisplayName     string
		Today           string
		IncomeAccounts  []string
		ExpenseAccounts []string
		Wallets         []string
		Accent          string
	}{
		DisplayName:     profile.EffectiveDisplayName(),
		Today:           time.Now().Format("2006-01-02"),
		IncomeAccounts:  accounts.Income,
		ExpenseAccounts: accounts.Expense,
		Wallets:         walletNames,
		Accent:          accent,
	}

	if err := s.templates.ExecuteTemplate(w, "dashboard.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Dashboard template execution failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	dateStr := formValue(r, "date")
	if dateStr == "" {
		dateStr = time.Now().Format("2006-01-02")
	}
	date, err := core.ParseDate(dateStr)
	if err != nil {
		UnprocessableEntityError("Invalid date").Write(w)
		return
	}

	amount, err := core.ParseAmount(r.Form.Get("amount"))
	if err != nil {
		UnprocessableEntityError("Invalid amount").Write(w)
		return
	}

	tx := core.Transaction{
		Date:        date,
		Type:        core.TransactionType(formValue(r, "type")),
		Account:     formValue(r, "account"),
		Wallet:      formValue(r, "wallet"),
		Description: formValue(r, "description"),
		Amount:      amount,
	}

	saved, err := s.ledger.CreateTransaction(r.Context(), user.ID, tx)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrUnknownAccount):
			UnprocessableEntityError("Account is not configured for this type").Write(w)
		case errors.Is(err, core.ErrInvalidType),
			errors.Is(err, core.ErrInvalidDate),
			errors.Is(err, core.ErrInvalidAmount),
			errors.Is(err, core.ErrEmptyAccount),
			errors.Is(err, core.ErrEmptyWallet),
			errors.Is(err, core.ErrEmptyDescription):
			UnprocessableEntityError("Invalid transaction data").Write(w)
		default:
			slog.ErrorContext(r.Context(), "Create transaction error", "error", err, "user_id", user.ID)
			InternalServerError("Could not save the transaction").Write(w)
		}
		return
	}

	NewHTMXResponse().
		TriggerTransactionCreated(saved.ID).
		TriggerFormReset().
		TriggerSuccessNotification(fmt.Sprintf("Saved %s %s", saved.Description, core.FormatRupiah(saved.Amount))).
		BodyHTML(`<div class="success">Recorded: ` +
			template.HTMLEscapeString(saved.Description) + ` ` +
			template.HTMLEscapeString(core.FormatSigned(saved.Type, saved.Amount)) + `</div>`).
		Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	if resp := RequireDeleteOrPOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	txID := formValue(r, "id")
	if txID == "" {
		txID = sanitizeInput(r.URL.Query().Get("id"))
	}
	if txID == "" {
		BadRequestError("Missing transaction id").Write(w)
		return
	}

	if err := s.ledger.DeleteTransaction(r.Context(), user.ID, txID); err != nil {
		slog.ErrorContext(r.Context(), "Delete transaction error", "error", err, "user_id", user.ID, "transaction_id", txID)
		InternalServerError("Could not delete the transaction").Write(w)
		return
	}

	NewHTMXResponse().
		TriggerTransactionDeleted(txID).
		TriggerSuccessNotification("Transaction deleted").
		Write(w)
}

// handleTransactionsPartial renders one page of the ledger, newest
// first.
func (s *Server) handleTransactionsPartial(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	txs, err := s.ledger.Transactions(r.Context(), user.ID)
	if err != nil {
		slog.ErrorContext(r.Context(), "List transactions error", "error", err, "user_id", user.ID)
		_, _ = w.Write([]byte(`<div class="placeholder">Could not load transactions</div>`))
		return
	}

	// newest first
	reversed := make([]core.Transaction, len(txs))
	for i, tx := range txs {
		reversed[len(txs)-1-i] = tx
	}

	page := pageParam(r)
	paged := core.Paginate(reversed, page, transactionsPerPage)

	view := transactionsView{
		Page:       page,
		TotalPages: paged.TotalPages,
		HasPrev:    paged.TotalPages > 1 && page > 1,
		HasNext:    paged.TotalPages > 1 && page < paged.TotalPages,
		PrevPage:   page - 1,
		NextPage:   page + 1,
	}
	for n := 1; n <= paged.TotalPages; n++ {
		view.Pages = append(view.Pages, pageButton{Number: n, Current: n == page})
	}
	for _, tx := range paged.Items {
		view.Rows = append(view.Rows, transactionRow{
			ID:          tx.ID,
			Date:        tx.Date.ISO(),
			Account:     tx.Account,
			Wallet:      tx.Wallet,
			Description: tx.Description,
			Amount:      core.FormatSigned(tx.Type, tx.Amount),
			Expense:     tx.Type == core.Expense,
		})
	}

	if err := s.templates.ExecuteTemplate(w, "transactions.html", view); err != nil {
		slog.ErrorContext(r.Context(), "Transactions template execution failed", "error", err)
		_, _ = w.Write([]byte(`<div class="placeholder">Could not render transactions</div>`))
	}
}

// handleOverviewPartial renders ledger totals and the expense
// breakdown by account.
func (s *Server) handleOverviewPartial(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	ov, err := s.ledger.Overview(r.Context(), user.ID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Overview error", "error", err, "user_id", user.ID)
		_, _ = w.Write([]byte(`<div class="placeholder">Could not load overview</div>`))
		return
	}

	type row struct {
		Name   string
		Amount string
	}
	data := struct {
		TotalIncome  string
		TotalExpense string
		Net          string
		Negative     bool
		ByAccount    []row
	}{
		TotalIncome:  core.FormatRupiah(ov.TotalIncome),
		TotalExpense: core.FormatRupiah(ov.TotalExpense),
		Net:          core.FormatRupiah(ov.Net),
		Negative:     ov.Net.IsNegative(),
	}
	for _, a := range ov.ByAccount {
		data.ByAccount = append(data.ByAccount, row{Name: a.Name, Amount: core.FormatRupiah(a.Amount)})
	}

	if err := s.templates.ExecuteTemplate(w, "overview.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Overview template execution failed", "error", err)
		_, _ = w.Write([]byte(`<div class="placeholder">Could not render overview</div>`))
	}
}

// handleEvents streams ledger changes to the browser as server-sent
// events so open tabs refresh their list on each change.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	events, cancel := s.hub.Subscribe(user.ID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			name := "transaction-created"
			if ev.Kind == ledger.EventDeleted {
				name = "transaction-deleted"
			}
			fmt.Fprintf(w, "event: %s\ndata: {\"id\":%q}\n\n", name, ev.TransactionID)
			flusher.Flush()
		}
	}
}
