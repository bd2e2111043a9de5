package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"duitku/internal/auth"
	"duitku/internal/core"
	"duitku/internal/ledger"
)

// loadProfile returns the stored profile, initializing it from the
// identity on first access. The fallback display name is the part of
// the email before the @.
func (s *Server) loadProfile(ctx context.Context, user auth.User) core.Profile {
	profile, err := s.store.Profile(ctx, user.ID)
	if err == nil && profile.DisplayName != "" {
		return profile
	}
	if err != nil && !errors.Is(err, ledger.ErrNotFound) {
		slog.ErrorContext(ctx, "Load profile error", "error", err, "user_id", user.ID)
	}

	display := user.DisplayName
	if display == "" {
		display = strings.SplitN(user.Email, "@", 2)[0]
	}
	first, last := core.SplitDisplayName(display)
	profile = core.Profile{
		DisplayName: display,
		FirstName:   first,
		LastName:    last,
		Email:       user.Email,
	}
	if err := s.store.SaveProfile(ctx, user.ID, profile); err != nil {
		slog.ErrorContext(ctx, "Initialize profile error", "error", err, "user_id", user.ID)
	}
	return profile
}

func (s *Server) handleProfilePartial(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	profile := s.loadProfile(r.Context(), user)

	data := struct {
		DisplayName string
		FirstName   string
		LastName    string
		Email       string
	}{
		DisplayName: profile.EffectiveDisplayName(),
		FirstName:   profile.FirstName,
		LastName:    profile.LastName,
		Email:       profile.Email,
	}

	if err := s.templates.ExecuteTemplate(w, "profile.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Profile template execution failed", "error", err)
		_, _ = w.Write([]byte(`<div class="placeholder">Could not render profile</div>`))
	}
}

// handleUpdateProfile overwrites the whole profile record with the
// submitted fields.
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	profile := core.Profile{
		DisplayName: formValue(r, "display_name"),
		FirstName:   formValue(r, "first_name"),
		LastName:    formValue(r, "last_name"),
		Email:       formValue(r, "email"),
	}
	if profile.DisplayName == "" {
		profile.DisplayName = strings.TrimSpace(profile.FirstName + " " + profile.LastName)
	}

	if err := s.store.SaveProfile(r.Context(), user.ID, profile); err != nil {
		slog.ErrorContext(r.Context(), "Save profile error", "error", err, "user_id", user.ID)
		InternalServerError("Could not save the profile").Write(w)
		return
	}

	if profile.DisplayName != "" && profile.DisplayName != user.DisplayName {
		if err := s.auth.UpdateDisplayName(r.Context(), user.ID, profile.DisplayName); err != nil {
			slog.ErrorContext(r.Context(), "Update display name error", "error", err, "user_id", user.ID)
		}
	}

	NewHTMXResponse().
		TriggerProfileUpdated().
		TriggerSuccessNotification("Profile saved").
		Write(w)
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	current := r.Form.Get("current_password")
	next := r.Form.Get("new_password")
	confirm := r.Form.Get("confirm_password")

	if next != confirm {
		UnprocessableEntityError("Passwords do not match").Write(w)
		return
	}
	if len(next) < auth.MinPasswordLength {
		UnprocessableEntityError("Password must be at least 6 characters").Write(w)
		return
	}

	if err := s.auth.UpdatePassword(r.Context(), user.ID, current, next); err != nil {
		slog.WarnContext(r.Context(), "Change password rejected", "user_id", user.ID, "code", auth.CodeOf(err))
		UnprocessableEntityError(auth.FriendlyMessage(err)).Write(w)
		return
	}

	NewHTMXResponse().
		TriggerFormReset().
		TriggerSuccessNotification("Password updated").
		Write(w)
}
