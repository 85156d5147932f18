package api

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"time"

	"go.uber.org/zap"

	"dukapos/m/domain"
	"dukapos/m/internal/session"
)

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Success   bool      `json:"success"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// login accepts the credentials either as JSON or as a submitted form.
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := decodeJSON(r, &req); err != nil {
			respondDecodeError(w, err)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				respondDecodeError(w, err)
				return
			}
			respondBadRequest(w, "invalid form body")
			return
		}
		req.Username = r.PostForm.Get("username")
		req.Password = r.PostForm.Get("password")
	}
	if err := h.validate.Struct(req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "username and password are required",
			Code:    domain.ErrInvalidInput.Code,
			Details: validationDetails(err),
		})
		return
	}

	if !h.admin.Verify(req.Username, req.Password) {
		h.log.Warn("failed admin login", zap.String("username", req.Username), zap.String("remote_addr", r.RemoteAddr))
		respondError(w, http.StatusUnauthorized, domain.ErrUnauthorized.Code, "invalid username or password")
		return
	}

	token, claims, err := h.sessions.Issue(h.admin.Username())
	if err != nil {
		h.log.Error("unable to issue session", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "INTERNAL", "unable to start session")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  claims.ExpiresAt.Time,
		MaxAge:   int(h.sessions.TTL().Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	respondJSON(w, http.StatusOK, loginResponse{Success: true, Token: token, ExpiresAt: claims.ExpiresAt.Time})
}

// logout ends the caller's session if there is one and always clears the
// cookie.
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if token := h.sessionToken(r); token != "" {
		// Tokens that no longer parse are already unusable.
		if claims, err := h.sessions.Parse(r.Context(), token); err == nil {
			if err := h.sessions.Revoke(r.Context(), claims); err != nil {
				h.log.Error("unable to revoke session", zap.Error(err))
				respondError(w, http.StatusInternalServerError, "INTERNAL", "logout failed")
				return
			}
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// currentAdmin returns the username of the authenticated session.
func currentAdmin(ctx context.Context) string {
	if claims, ok := ctx.Value(ctxSession).(*session.Claims); ok {
		return claims.Subject
	}
	return ""
}
