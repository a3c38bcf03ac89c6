package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stwalsh4118/devrights/internal/logger"
	"github.com/stwalsh4118/devrights/internal/models"
	"github.com/stwalsh4118/devrights/internal/reconcile"
	"github.com/stwalsh4118/devrights/internal/repository"
)

// Service-level errors
var (
	ErrInvalidAPN     = errors.New("APN must not be blank")
	ErrParcelNotFound = errors.New("parcel not found")
)

// ParcelStatus tells whether an APN is in the current parcel master.
type ParcelStatus struct {
	APN    string `json:"apn"`
	Active bool   `json:"active"`
}

// SuccessorLookup is what the parcel history says an APN became.
type SuccessorLookup struct {
	APN        string                 `json:"apn"`
	Active     bool                   `json:"active"`
	Resolution reconcile.Resolution   `json:"resolution"`
	Successors []ParcelStatus         `json:"successors"`
	History    []models.ParcelHistory `json:"history"`
}

// ParcelService defines the interface for parcel lookups.
type ParcelService interface {
	// GetSuccessors resolves an APN against the stored parcel history and
	// reports which successors are active parcels.
	// Returns ErrInvalidAPN for a blank APN.
	// Returns ErrParcelNotFound if the APN is neither a parcel nor in the history.
	GetSuccessors(ctx context.Context, apn string) (*SuccessorLookup, error)
}

// parcelService is the concrete implementation of ParcelService.
type parcelService struct {
	parcels repository.ParcelRepository
	history repository.HistoryRepository
	log     *logger.Logger
}

// NewParcelService creates a new instance of ParcelService.
func NewParcelService(parcels repository.ParcelRepository, history repository.HistoryRepository, log *logger.Logger) ParcelService {
	return &parcelService{
		parcels: parcels,
		history: history,
		log:     log,
	}
}

// GetSuccessors looks up the APN in the parcel master and the history, then
// applies the same single-step resolution the reconciliation uses.
func (s *parcelService) GetSuccessors(ctx context.Context, apn string) (*SuccessorLookup, error) {
	apn = strings.TrimSpace(apn)
	if apn == "" {
		return nil, ErrInvalidAPN
	}

	parcel, err := s.parcels.FindByAPN(ctx, apn)
	if err != nil {
		s.log.Error("Failed to query parcel", err, map[string]interface{}{"apn": apn})
		return nil, fmt.Errorf("failed to query parcel: %w", err)
	}

	history, err := s.history.FindByAPN(ctx, apn)
	if err != nil {
		s.log.Error("Failed to query parcel history", err, map[string]interface{}{"apn": apn})
		return nil, fmt.Errorf("failed to query parcel history: %w", err)
	}

	// Repository returns nil, nil when no parcel found - transform to domain error
	if parcel == nil && len(history) == 0 {
		s.log.Debug("APN not found in parcel master or history", map[string]interface{}{"apn": apn})
		return nil, ErrParcelNotFound
	}

	lookup := &SuccessorLookup{
		APN:        apn,
		Active:     parcel != nil,
		Resolution: reconcile.Resolve(apn, history),
		Successors: []ParcelStatus{},
		History:    history,
	}

	for _, id := range lookup.Resolution.IDs {
		successor, err := s.parcels.FindByAPN(ctx, id)
		if err != nil {
			s.log.Error("Failed to query successor parcel", err, map[string]interface{}{
				"apn":       apn,
				"successor": id,
			})
			return nil, fmt.Errorf("failed to query successor parcel: %w", err)
		}
		lookup.Successors = append(lookup.Successors, ParcelStatus{APN: id, Active: successor != nil})
	}

	s.log.Info("Resolved parcel successors", map[string]interface{}{
		"apn":        apn,
		"active":     lookup.Active,
		"resolution": lookup.Resolution.Kind.String(),
		"successors": len(lookup.Successors),
	})

	return lookup, nil
}
