package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"kanau.app/kanaupoints/internal/config"
	"kanau.app/kanaupoints/internal/model"
)

func setupServer(t *testing.T) (*Server, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	// Per-test in-memory database to avoid cross-test interference
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.PointSummary{}, &model.PointTransaction{}))

	cfg := &config.Config{
		LoginBonusPoints: 10,
		ShareBonusPoints: 5,
		BalanceCacheTTL:  time.Minute,
	}

	return NewServer(db, nil, cfg), db
}

func httpDo(srv *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		b, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)
	return w
}

func TestGetBalanceNewUser(t *testing.T) {
	srv, _ := setupServer(t)
	userID := uuid.New()

	w := httpDo(srv, "GET", "/api/users/"+userID.String()+"/points", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		UserID uuid.UUID `json:"user_id"`
		Points int64     `json:"points"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, userID, resp.UserID)
	require.Equal(t, int64(0), resp.Points)
}

func TestGetBalanceInvalidUserID(t *testing.T) {
	srv, _ := setupServer(t)

	w := httpDo(srv, "GET", "/api/users/not-a-uuid/points", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreditAndDebitFlow(t *testing.T) {
	srv, _ := setupServer(t)
	userID := uuid.New()
	base := "/api/users/" + userID.String()

	w := httpDo(srv, "POST", base+"/points/credit", gin.H{
		"amount":   300,
		"reason":   "Six-star reading reward",
		"category": "special_reward",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = httpDo(srv, "POST", base+"/points/debit", gin.H{
		"amount": 120,
		"reason": "Talisman purchase",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Points int64 `json:"points"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, int64(180), resp.Points)
}

func TestCreditValidation(t *testing.T) {
	srv, _ := setupServer(t)
	base := "/api/users/" + uuid.New().String()

	// Missing amount
	w := httpDo(srv, "POST", base+"/points/credit", gin.H{
		"reason":   "reward",
		"category": "special_reward",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown category
	w = httpDo(srv, "POST", base+"/points/credit", gin.H{
		"amount":   10,
		"reason":   "reward",
		"category": "mystery_bonus",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Negative amount
	w = httpDo(srv, "POST", base+"/points/credit", gin.H{
		"amount":   -5,
		"reason":   "reward",
		"category": "special_reward",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDebitInsufficientReturns422(t *testing.T) {
	srv, _ := setupServer(t)
	base := "/api/users/" + uuid.New().String()

	w := httpDo(srv, "POST", base+"/points/debit", gin.H{
		"amount": 50,
		"reason": "Talisman purchase",
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var m map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	require.Equal(t, "insufficient point balance", m["error"])
}

func TestLoginBonusClaimedOnceReturns409(t *testing.T) {
	srv, _ := setupServer(t)
	base := "/api/users/" + uuid.New().String()

	w := httpDo(srv, "POST", base+"/bonus/login", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Points int64 `json:"points"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, int64(10), resp.Points)

	// Second claim the same day is rejected and credits nothing
	w = httpDo(srv, "POST", base+"/bonus/login", nil)
	require.Equal(t, http.StatusConflict, w.Code)

	// Share bonus is an independent category
	w = httpDo(srv, "POST", base+"/bonus/share", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, int64(15), resp.Points)
}

func TestHistoryEndpoint(t *testing.T) {
	srv, _ := setupServer(t)
	userID := uuid.New()
	base := "/api/users/" + userID.String()

	for i := 0; i < 5; i++ {
		w := httpDo(srv, "POST", base+"/points/credit", gin.H{
			"amount":   10 + i,
			"reason":   "reward",
			"category": "special_reward",
		})
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := httpDo(srv, "GET", base+"/points/history?limit=3", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []struct {
			Amount int64 `json:"amount"`
		} `json:"data"`
		Meta struct {
			TotalItems int64 `json:"total_items"`
			Limit      int   `json:"limit"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 3)
	require.Equal(t, 3, resp.Meta.Limit)
}

func TestAdminReconcileEndpoint(t *testing.T) {
	srv, _ := setupServer(t)
	userID := uuid.New()
	base := "/api/users/" + userID.String()

	w := httpDo(srv, "POST", base+"/points/credit", gin.H{
		"amount":   100,
		"reason":   "reward",
		"category": "special_reward",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = httpDo(srv, "POST", "/api/admin/reconcile/"+userID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Points     int64 `json:"points"`
		LedgerSum  int64 `json:"ledger_sum"`
		Consistent bool  `json:"consistent"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Consistent)
	require.Equal(t, int64(100), resp.Points)
	require.Equal(t, int64(100), resp.LedgerSum)
}

func TestLeaderboardEndpoint(t *testing.T) {
	srv, _ := setupServer(t)

	users := []struct {
		id     uuid.UUID
		amount int64
	}{
		{uuid.New(), 300},
		{uuid.New(), 100},
		{uuid.New(), 200},
	}
	for _, u := range users {
		w := httpDo(srv, "POST", "/api/users/"+u.id.String()+"/points/credit", gin.H{
			"amount":   u.amount,
			"reason":   "reward",
			"category": "special_reward",
		})
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := httpDo(srv, "GET", "/api/leaderboard?limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []struct {
			UserID   uuid.UUID `json:"user_id"`
			Position int       `json:"position"`
			Points   int64     `json:"points"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	require.Equal(t, users[0].id, resp.Data[0].UserID)
	require.Equal(t, int64(300), resp.Data[0].Points)
	require.Equal(t, 1, resp.Data[0].Position)
	require.Equal(t, users[2].id, resp.Data[1].UserID)

	// Invalid timeframe rejected
	w = httpDo(srv, "GET", "/api/leaderboard?timeframe=hourly", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLeaderboardStorageFailureReturns503(t *testing.T) {
	srv, db := setupServer(t)

	require.NoError(t, db.Migrator().DropTable(&model.PointSummary{}))

	w := httpDo(srv, "GET", "/api/leaderboard", nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}
