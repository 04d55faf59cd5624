package services

import (
	"context"
	"encoding/json"
	"sync"

	"cav/flightrelay/internal/models/dtos"
	"cav/flightrelay/internal/providers"
)

type mockFlightCenter struct {
	BookFlightFunc   func(ctx context.Context, flightID string) (*dtos.BookFlightResponse, error)
	UnbookFlightFunc func(ctx context.Context, bidID dtos.FlexID) error
	BookingsFunc     func(ctx context.Context) ([]dtos.Flight, error)
}

func (m *mockFlightCenter) BookFlight(ctx context.Context, flightID string) (*dtos.BookFlightResponse, error) {
	return m.BookFlightFunc(ctx, flightID)
}

func (m *mockFlightCenter) UnbookFlight(ctx context.Context, bidID dtos.FlexID) error {
	return m.UnbookFlightFunc(ctx, bidID)
}

func (m *mockFlightCenter) Bookings(ctx context.Context) ([]dtos.Flight, error) {
	return m.BookingsFunc(ctx)
}

type mockHost struct {
	started   []dtos.FlightStart
	restored  []dtos.FlightRestore
	simbrief  []dtos.SimBriefFlightInfo
	navigated []string

	RecoverableFlightFunc func(ctx context.Context) (*dtos.RecoverableFlight, error)
	StartErr              error
}

func (m *mockHost) StartFlight(ctx context.Context, flight dtos.FlightStart) error {
	if m.StartErr != nil {
		return m.StartErr
	}
	m.started = append(m.started, flight)
	return nil
}

func (m *mockHost) RestoreFlight(ctx context.Context, flight dtos.FlightRestore) error {
	m.restored = append(m.restored, flight)
	return nil
}

func (m *mockHost) RecoverableFlight(ctx context.Context) (*dtos.RecoverableFlight, error) {
	if m.RecoverableFlightFunc == nil {
		return nil, nil
	}
	return m.RecoverableFlightFunc(ctx)
}

func (m *mockHost) SetSimBriefFlightInfo(ctx context.Context, info dtos.SimBriefFlightInfo) error {
	m.simbrief = append(m.simbrief, info)
	return nil
}

func (m *mockHost) Navigate(ctx context.Context, pluginID string) error {
	m.navigated = append(m.navigated, pluginID)
	return nil
}

type mockForwarder struct {
	mu          sync.Mutex
	calls       int
	ForwardFunc func(ctx context.Context, creds providers.Credentials, fr providers.ForwardRequest) (*providers.ForwardResponse, error)
}

func (m *mockForwarder) Forward(ctx context.Context, creds providers.Credentials, fr providers.ForwardRequest) (*providers.ForwardResponse, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	return m.ForwardFunc(ctx, creds, fr)
}

type mockIdentitySource struct {
	GetIdentityFunc func(ctx context.Context) (*dtos.Identity, error)
	GetConfigFunc   func(ctx context.Context) (json.RawMessage, error)
}

func (m *mockIdentitySource) GetIdentity(ctx context.Context) (*dtos.Identity, error) {
	return m.GetIdentityFunc(ctx)
}

func (m *mockIdentitySource) GetConfig(ctx context.Context) (json.RawMessage, error) {
	return m.GetConfigFunc(ctx)
}
