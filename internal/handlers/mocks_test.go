package handlers

import (
	"bytes"
	"context"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"

	"github.com/stwalsh4118/devrights/internal/logger"
	"github.com/stwalsh4118/devrights/internal/middleware"
	"github.com/stwalsh4118/devrights/internal/services"
)

// MockParcelService is a mock implementation of services.ParcelService.
type MockParcelService struct {
	mock.Mock
}

func (m *MockParcelService) GetSuccessors(ctx context.Context, apn string) (*services.SuccessorLookup, error) {
	args := m.Called(ctx, apn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SuccessorLookup), args.Error(1)
}

// MockTransferService is a mock implementation of services.TransferService.
type MockTransferService struct {
	mock.Mock
}

func (m *MockTransferService) Reconcile(ctx context.Context, tables services.Tables, where string) (*services.ReconcileResult, error) {
	args := m.Called(ctx, tables, where)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ReconcileResult), args.Error(1)
}

func (m *MockTransferService) Refresh(ctx context.Context) (*services.RefreshResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.RefreshResult), args.Error(1)
}

// testLogger returns a JSON logger writing into buf.
func testLogger(buf *bytes.Buffer) *logger.Logger {
	return logger.NewWithOptions(logger.Options{Output: buf, Env: "test", Level: "debug"})
}

// setupAPIRouter registers the API routes behind the request id and logging
// middleware, the way the server does.
func setupAPIRouter(parcels *ParcelHandler, transfers *TransferHandler, log *logger.Logger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))

	v1 := router.Group("/api/v1")
	{
		if parcels != nil {
			v1.GET("/parcels/:apn/successors", parcels.GetSuccessors)
		}
		if transfers != nil {
			v1.POST("/transfers/reconcile", transfers.Reconcile)
			v1.POST("/transfers/refresh", transfers.Refresh)
		}
	}
	return router
}
