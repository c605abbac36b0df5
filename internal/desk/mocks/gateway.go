package mocks

import (
	"context"

	"github.com/psds-microservice/arm-service-desk/internal/gateway"
	"github.com/psds-microservice/arm-service-desk/internal/model"
	"github.com/stretchr/testify/mock"
)

// Gateway is a mock for desk.Gateway.
type Gateway struct {
	mock.Mock
}

func (m *Gateway) ListWorkstations(ctx context.Context) ([]model.Workstation, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]model.Workstation); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Gateway) ListTickets(ctx context.Context) ([]model.Ticket, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]model.Ticket); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Gateway) FetchStats(ctx context.Context) (*model.Stats, error) {
	args := m.Called(ctx)
	if st, ok := args.Get(0).(*model.Stats); ok {
		return st, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Gateway) CreateTicket(ctx context.Context, in model.TicketInput) (*gateway.TicketResult, error) {
	args := m.Called(ctx, in)
	if res, ok := args.Get(0).(*gateway.TicketResult); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Gateway) CreateWorkstation(ctx context.Context, in model.WorkstationInput) (*gateway.WorkstationResult, error) {
	args := m.Called(ctx, in)
	if res, ok := args.Get(0).(*gateway.WorkstationResult); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Gateway) UpdateWorkstation(ctx context.Context, id string, patch model.WorkstationPatch) (*gateway.WorkstationResult, error) {
	args := m.Called(ctx, id, patch)
	if res, ok := args.Get(0).(*gateway.WorkstationResult); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Gateway) DeleteWorkstation(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *Gateway) UpdateTicketStatus(ctx context.Context, id string, status model.TicketStatus) (*gateway.TicketResult, error) {
	args := m.Called(ctx, id, status)
	if res, ok := args.Get(0).(*gateway.TicketResult); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}
