package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ticket-marketplace/payments/internal/domain/escrow"
	"github.com/ticket-marketplace/payments/pkg/logger"
)

type escrowMocks struct {
	holds  *escrow.MockHoldRepo
	ledger *escrow.MockLedger
}

func escrowRouter(t *testing.T) (*gin.Engine, escrowMocks) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctrl := gomock.NewController(t)
	mocks := escrowMocks{
		holds:  escrow.NewMockHoldRepo(ctrl),
		ledger: escrow.NewMockLedger(ctrl),
	}

	manager := escrow.NewManager(mocks.holds, mocks.ledger, logger.New("error"))
	handler := NewEscrowHandler(manager)

	engine := gin.New()
	engine.POST("/payments/escrow/release", handler.ReleaseDue)
	engine.POST("/payments/escrow/release/:transaction_id", handler.Release)
	return engine, mocks
}

func postRelease(engine *gin.Engine, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, nil)
	engine.ServeHTTP(rec, req)
	return rec
}

func TestEscrowHandler_ReleaseDue(t *testing.T) {
	t.Run("should run a sweep pass and return per-transaction results", func(t *testing.T) {
		// given
		engine, m := escrowRouter(t)
		txID := uuid.New()
		cand := escrow.Candidate{TransactionID: txID, SellerID: uuid.New(), TotalAmount: 2_000, PlatformFee: 200}

		m.ledger.EXPECT().ListReleaseDue(gomock.Any(), gomock.Any()).Return([]escrow.Candidate{cand}, nil)
		m.ledger.EXPECT().GetForRelease(gomock.Any(), txID).Return(cand, nil)
		m.holds.EXPECT().ReleasePayout(gomock.Any(), cand, int64(1_800)).Return(nil)

		// when
		rec := postRelease(engine, "/payments/escrow/release")

		// then
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Results []escrow.SweepResult `json:"results"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Results, 1)
		assert.Equal(t, txID, body.Results[0].TransactionID)
		assert.True(t, body.Results[0].Success)
		assert.Equal(t, int64(1_800), body.Results[0].AmountReleased)
	})

	t.Run("should fail when the due listing fails", func(t *testing.T) {
		engine, m := escrowRouter(t)
		m.ledger.EXPECT().ListReleaseDue(gomock.Any(), gomock.Any()).
			Return(nil, errors.New("database down"))

		rec := postRelease(engine, "/payments/escrow/release")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestEscrowHandler_Release(t *testing.T) {
	t.Run("should release the hold named in the path", func(t *testing.T) {
		// given
		engine, m := escrowRouter(t)
		txID := uuid.New()
		cand := escrow.Candidate{TransactionID: txID, SellerID: uuid.New(), TotalAmount: 2_000, PlatformFee: 200}

		m.ledger.EXPECT().GetForRelease(gomock.Any(), txID).Return(cand, nil)
		m.holds.EXPECT().ReleasePayout(gomock.Any(), cand, int64(1_800)).Return(nil)

		// when
		rec := postRelease(engine, "/payments/escrow/release/"+txID.String())

		// then
		require.Equal(t, http.StatusOK, rec.Code)

		var res escrow.ReleaseResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, txID, res.TransactionID)
		assert.Equal(t, int64(1_800), res.SellerPayout)
	})

	t.Run("should reject a malformed transaction id", func(t *testing.T) {
		engine, _ := escrowRouter(t)

		rec := postRelease(engine, "/payments/escrow/release/not-a-uuid")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("should conflict on a refunded hold", func(t *testing.T) {
		engine, m := escrowRouter(t)
		txID := uuid.New()
		cand := escrow.Candidate{TransactionID: txID, TotalAmount: 2_000, PlatformFee: 200}

		m.ledger.EXPECT().GetForRelease(gomock.Any(), txID).Return(cand, nil)
		m.holds.EXPECT().ReleasePayout(gomock.Any(), cand, int64(1_800)).
			Return(escrow.ErrHoldRefunded)

		rec := postRelease(engine, "/payments/escrow/release/"+txID.String())

		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}
