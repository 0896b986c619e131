// internal/app/features/campus/handler.go
package campus

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/dalemusser/talenthub/internal/app/system/authz"
	"github.com/dalemusser/talenthub/internal/app/system/timeouts"
	"github.com/dalemusser/talenthub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// RecentLogins lists a user's latest sign-ins. *loginstore.Store satisfies it.
type RecentLogins interface {
	Recent(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.LoginRecord, error)
}

type Handler struct {
	Logins RecentLogins // optional
	Log    *zap.Logger
}

func NewHandler(logins RecentLogins, logger *zap.Logger) *Handler {
	return &Handler{Logins: logins, Log: logger}
}

const recentLimit = 5

type signIn struct {
	At time.Time `json:"at"`
	IP string    `json:"ip"`
}

type overview struct {
	Title        string   `json:"title"`
	UserID       string   `json:"user_id"`
	Name         string   `json:"name"`
	Roles        []string `json:"roles"`
	RecentLogins []signIn `json:"recent_logins"`
}

// ServeOverview handles GET /campus.
func (h *Handler) ServeOverview(w http.ResponseWriter, r *http.Request) {
	roles, name, userID, ok := authz.UserCtx(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	resp := overview{
		Title:        "Campus Overview",
		UserID:       userID.Hex(),
		Name:         name,
		Roles:        roles,
		RecentLogins: []signIn{},
	}

	if h.Logins != nil {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		recs, err := h.Logins.Recent(ctx, userID, recentLimit)
		cancel()
		if err != nil {
			h.Log.Warn("campus: recent logins failed", zap.Error(err), zap.String("user_id", userID.Hex()))
		}
		for _, rec := range recs {
			resp.RecentLogins = append(resp.RecentLogins, signIn{At: rec.CreatedAt, IP: rec.IP})
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
