package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"duitku/internal/core"
)

// handleSettingsPartial renders the account lists and wallets with
// their derived transaction activity.
func (s *Server) handleSettingsPartial(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	accounts, err := s.accounts(r.Context(), user.ID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Load accounts error", "error", err, "user_id", user.ID)
		_, _ = w.Write([]byte(`<div class="placeholder">Could not load settings</div>`))
		return
	}

	wallets, err := s.store.Wallets(r.Context(), user.ID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Load wallets error", "error", err, "user_id", user.ID)
		_, _ = w.Write([]byte(`<div class="placeholder">Could not load settings</div>`))
		return
	}

	activity, err := s.ledger.WalletActivity(r.Context(), user.ID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Wallet activity error", "error", err, "user_id", user.ID)
	}

	accent, err := s.store.AccentColor(r.Context(), user.ID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Load accent color error", "error", err, "user_id", user.ID)
		accent = "#4a90d9"
	}

	type walletRow struct {
		ID       string
		Name     string
		Balance  string
		Activity string
	}
	data := struct {
		IncomeAccounts  []string
		ExpenseAccounts []string
		Wallets         []walletRow
		Accent          string
	}{
		IncomeAccounts:  accounts.Income,
		ExpenseAccounts: accounts.Expense,
		Accent:          accent,
	}
	for _, wallet := range wallets {
		data.Wallets = append(data.Wallets, walletRow{
			ID:       wallet.ID,
			Name:     wallet.Name,
			Balance:  core.FormatRupiah(wallet.Balance),
			Activity: core.FormatRupiah(activity[wallet.Name]),
		})
	}

	if err := s.templates.ExecuteTemplate(w, "settings.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Settings template execution failed", "error", err)
		_, _ = w.Write([]byte(`<div class="placeholder">Could not render settings</div>`))
	}
}

func accountType(r *http.Request) (core.TransactionType, bool) {
	t := core.TransactionType(formValue(r, "type"))
	return t, t == core.Income || t == core.Expense
}

func (s *Server) handleAddAccount(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	accType, ok := accountType(r)
	if !ok {
		UnprocessableEntityError("Unknown account type").Write(w)
		return
	}
	name := formValue(r, "name")
	if name == "" {
		UnprocessableEntityError("Account name is required").Write(w)
		return
	}

	if err := s.store.AddAccount(r.Context(), user.ID, accType, name); err != nil {
		slog.ErrorContext(r.Context(), "Add account error", "error", err, "user_id", user.ID)
		InternalServerError("Could not add the account").Write(w)
		return
	}

	s.invalidateAccounts(user.ID)
	NewHTMXResponse().
		TriggerAccountsChanged().
		TriggerFormReset().
		TriggerSuccessNotification(fmt.Sprintf("Added account %s", name)).
		Write(w)
}

func (s *Server) handleRemoveAccount(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	if resp := RequireDeleteOrPOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	accType, ok := accountType(r)
	if !ok {
		UnprocessableEntityError("Unknown account type").Write(w)
		return
	}
	name := formValue(r, "name")
	if name == "" {
		BadRequestError("Missing account name").Write(w)
		return
	}

	if err := s.store.RemoveAccount(r.Context(), user.ID, accType, name); err != nil {
		slog.ErrorContext(r.Context(), "Remove account error", "error", err, "user_id", user.ID)
		InternalServerError("Could not remove the account").Write(w)
		return
	}

	s.invalidateAccounts(user.ID)
	NewHTMXResponse().
		TriggerAccountsChanged().
		TriggerSuccessNotification(fmt.Sprintf("Removed account %s", name)).
		Write(w)
}

func (s *Server) handleAddWallet(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	name := formValue(r, "name")
	if name == "" {
		UnprocessableEntityError("Wallet name is required").Write(w)
		return
	}

	wallet, err := s.store.CreateWallet(r.Context(), user.ID, name)
	if err != nil {
		slog.ErrorContext(r.Context(), "Create wallet error", "error", err, "user_id", user.ID)
		InternalServerError("Could not add the wallet").Write(w)
		return
	}

	NewHTMXResponse().
		TriggerWalletsChanged().
		TriggerFormReset().
		TriggerSuccessNotification(fmt.Sprintf("Added wallet %s", wallet.Name)).
		Write(w)
}

func (s *Server) handleDeleteWallet(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	if resp := RequireDeleteOrPOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	walletID := formValue(r, "id")
	if walletID == "" {
		BadRequestError("Missing wallet id").Write(w)
		return
	}

	if err := s.store.DeleteWallet(r.Context(), user.ID, walletID); err != nil {
		slog.ErrorContext(r.Context(), "Delete wallet error", "error", err, "user_id", user.ID)
		InternalServerError("Could not delete the wallet").Write(w)
		return
	}

	NewHTMXResponse().
		TriggerWalletsChanged().
		TriggerSuccessNotification("Wallet deleted").
		Write(w)
}

// handleSetAccent stores the accent color and tells the page to
// reload the theme stylesheet.
func (s *Server) handleSetAccent(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	hex := formValue(r, "color")
	rgb, err := core.ParseHexColor(hex)
	if err != nil {
		UnprocessableEntityError("Invalid color").Write(w)
		return
	}

	if err := s.store.SetAccentColor(r.Context(), user.ID, rgb.Hex()); err != nil {
		slog.ErrorContext(r.Context(), "Set accent color error", "error", err, "user_id", user.ID)
		InternalServerError("Could not save the color").Write(w)
		return
	}

	NewHTMXResponse().
		TriggerThemeChanged().
		TriggerSuccessNotification("Theme updated").
		Write(w)
}

// handleThemeCSS serves the accent palette as a tiny stylesheet. The
// light and dark stops are derived from the stored color.
func (s *Server) handleThemeCSS(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")

	accent, err := s.store.AccentColor(r.Context(), user.ID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Load accent color error", "error", err, "user_id", user.ID)
		accent = "#4a90d9"
	}

	light, dark, err := core.GradientStops(accent)
	if err != nil {
		light, dark = accent, accent
	}

	fmt.Fprintf(w, ":root {\n  --accent: %s;\n  --accent-light: %s;\n  --accent-dark: %s;\n}\n",
		accent, light, dark)
}
