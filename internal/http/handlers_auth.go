package http

import (
	"log/slog"
	"net/http"
	"time"

	"duitku/internal/auth"
)

func (s *Server) setSessionCookie(w http.ResponseWriter, sess auth.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	email := formValue(r, "email")
	password := r.Form.Get("password")

	user, sess, err := s.auth.SignUp(r.Context(), email, password)
	if err != nil {
		slog.WarnContext(r.Context(), "Sign up rejected", "email", email, "code", auth.CodeOf(err))
		UnprocessableEntityError(auth.FriendlyMessage(err)).Write(w)
		return
	}

	slog.InfoContext(r.Context(), "User signed up", "user_id", user.ID, "email", user.Email)
	s.setSessionCookie(w, sess)
	NewHTMXResponse().
		Header("HX-Redirect", "/dashboard").
		Write(w)
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	email := formValue(r, "email")
	password := r.Form.Get("password")

	user, sess, err := s.auth.SignIn(r.Context(), email, password)
	if err != nil {
		slog.WarnContext(r.Context(), "Sign in rejected", "email", email, "code", auth.CodeOf(err))
		UnprocessableEntityError(auth.FriendlyMessage(err)).Write(w)
		return
	}

	slog.InfoContext(r.Context(), "User signed in", "user_id", user.ID)
	s.setSessionCookie(w, sess)
	NewHTMXResponse().
		Header("HX-Redirect", "/dashboard").
		Write(w)
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}

	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if err := s.auth.SignOut(r.Context(), cookie.Value); err != nil {
			slog.ErrorContext(r.Context(), "Sign out error", "error", err)
		}
	}

	s.clearSessionCookie(w)
	NewHTMXResponse().
		Header("HX-Redirect", "/").
		Write(w)
}
