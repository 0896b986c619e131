// internal/app/features/login/handler.go
package login

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) that uniquely identifies a user record
//   - LoginID / loginID / login_id: The human-readable string users type to log in

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"

	userstore "github.com/dalemusser/talenthub/internal/app/store/users"
	"github.com/dalemusser/talenthub/internal/app/system/auth"
	"github.com/dalemusser/talenthub/internal/app/system/normalize"
	"github.com/dalemusser/talenthub/internal/app/system/ratelimit"
	"github.com/dalemusser/talenthub/internal/app/system/timeouts"
	"github.com/dalemusser/talenthub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Authenticator checks credentials. *userstore.Store satisfies it.
type Authenticator interface {
	Authenticate(ctx context.Context, loginID, password string) (*models.User, error)
}

// Recorder stores successful sign-ins. *loginstore.Store satisfies it.
type Recorder interface {
	RecordFrom(ctx context.Context, r *http.Request, userID primitive.ObjectID, loginID string) error
}

type Handler struct {
	Users      Authenticator
	Logins     Recorder // optional
	Limiter    *ratelimit.LoginLimiter
	SessionMgr *auth.SessionManager
	Log        *zap.Logger
}

func NewHandler(users Authenticator, logins Recorder, limiter *ratelimit.LoginLimiter, sm *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{
		Users:      users,
		Logins:     logins,
		Limiter:    limiter,
		SessionMgr: sm,
		Log:        logger,
	}
}

const defaultDest = "/dashboard"

const msgBadCredentials = "Invalid login ID or password."

type credentials struct {
	LoginID  string `json:"login_id"`
	Password string `json:"password"`
	Return   string `json:"return"`
}

type loginResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message,omitempty"`
	Redirect string `json:"redirect,omitempty"`
	Return   string `json:"return,omitempty"`
}

// ServeLogin handles GET /login. Templates are not part of this service, so
// it describes the form fields and echoes the sanitized return target.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resp := loginResponse{
		Status: "ready",
		Return: urlutil.SafeReturn(q.Get("return"), "", defaultDest),
	}
	if q.Get("error") != "" {
		resp.Status = "error"
		resp.Message = msgBadCredentials
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleLoginPost handles POST /login with either a form or a JSON body.
//   - JSON callers get 200/401/429 with a JSON body
//   - form callers get a 303 to the return target, or back to /login?error=1
func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	jsonBody := isJSON(r)
	creds, err := readCredentials(r, jsonBody)
	if err != nil {
		h.fail(w, r, jsonBody, http.StatusBadRequest, "Malformed login request.", "")
		return
	}
	loginID := normalize.LoginID(creds.LoginID)
	dest := urlutil.SafeReturn(creds.Return, "", defaultDest)

	if loginID == "" || creds.Password == "" {
		h.fail(w, r, jsonBody, http.StatusUnauthorized, msgBadCredentials, creds.Return)
		return
	}

	if h.Limiter != nil {
		if ok, reason := h.Limiter.Check(r, loginID); !ok {
			h.Log.Warn("login rate limited", zap.String("login_id", loginID), zap.String("ip", ratelimit.ClientIP(r)))
			h.fail(w, r, jsonBody, http.StatusTooManyRequests, reason, creds.Return)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.Authenticate(ctx, loginID, creds.Password)
	if err != nil {
		if !errors.Is(err, userstore.ErrBadCredentials) {
			h.Log.Error("login lookup failed", zap.Error(err), zap.String("login_id", loginID))
		}
		h.fail(w, r, jsonBody, http.StatusUnauthorized, msgBadCredentials, creds.Return)
		return
	}

	if err := h.SessionMgr.SignIn(w, r, u.ID.Hex()); err != nil {
		h.Log.Error("save session failed", zap.Error(err), zap.String("login_id", loginID))
		h.fail(w, r, jsonBody, http.StatusInternalServerError, "Unable to create session. Please try again.", creds.Return)
		return
	}
	if h.Limiter != nil {
		h.Limiter.ResetAccount(loginID)
	}
	if h.Logins != nil {
		if err := h.Logins.RecordFrom(ctx, r, u.ID, loginID); err != nil {
			h.Log.Warn("record login failed", zap.Error(err), zap.String("user_id", u.ID.Hex()))
		}
	}
	h.Log.Info("user signed in", zap.String("user_id", u.ID.Hex()), zap.Strings("roles", u.Roles))

	if jsonBody {
		writeJSON(w, http.StatusOK, loginResponse{Status: "success", Redirect: dest})
		return
	}
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, jsonBody bool, status int, msg, ret string) {
	if jsonBody {
		writeJSON(w, status, loginResponse{Status: "error", Message: msg})
		return
	}
	v := url.Values{"error": {"1"}}
	if ret != "" {
		v.Set("return", ret)
	}
	http.Redirect(w, r, "/login?"+v.Encode(), http.StatusSeeOther)
}

func readCredentials(r *http.Request, jsonBody bool) (credentials, error) {
	var c credentials
	if jsonBody {
		dec := json.NewDecoder(io.LimitReader(r.Body, 64<<10))
		err := dec.Decode(&c)
		return c, err
	}
	if err := r.ParseForm(); err != nil {
		return c, err
	}
	c.LoginID = r.PostForm.Get("login_id")
	c.Password = r.PostForm.Get("password")
	c.Return = r.PostForm.Get("return")
	if c.Return == "" {
		c.Return = r.URL.Query().Get("return")
	}
	return c, nil
}

func isJSON(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
