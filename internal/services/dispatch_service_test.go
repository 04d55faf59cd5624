package services

import (
	"context"
	"errors"
	"testing"

	"cav/flightrelay/internal/common"
	"cav/flightrelay/internal/constants"
	"cav/flightrelay/internal/models/dtos"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testAirports = []dtos.Airport{
		{ID: "1", Code: "EGLL", Name: "London Heathrow"},
		{ID: "2", Code: "LFPG", Name: "Paris Charles de Gaulle"},
	}
	testAircraft = []dtos.Aircraft{
		{ID: "4", Name: "Airbus A320"},
	}
)

func scheduleRequest(f dtos.Flight) DispatchRequest {
	return DispatchRequest{
		Source:   FlightSource{Kind: SourceSchedule, Flight: f},
		Airports: testAirports,
		Aircraft: testAircraft,
	}
}

func testFlight() dtos.Flight {
	return dtos.Flight{
		ID:               "12",
		Code:             "CAV",
		Number:           "101",
		DepartureAirport: "EGLL",
		ArrivalAirport:   "LFPG",
		Aircraft:         dtos.FlexIDs{"4"},
		Route:            []string{"DVR", "UL9"},
	}
}

func TestDispatchService_BookSendsSourcePrefixedID(t *testing.T) {
	var sent string
	fc := &mockFlightCenter{
		BookFlightFunc: func(ctx context.Context, flightID string) (*dtos.BookFlightResponse, error) {
			sent = flightID
			return &dtos.BookFlightResponse{BidID: "900"}, nil
		},
	}
	rec := &common.NotificationRecorder{}
	svc := NewDispatchService(fc, &mockHost{}, rec)

	bidID, err := svc.Book(context.Background(), scheduleRequest(testFlight()))
	require.NoError(t, err)
	assert.Equal(t, dtos.FlexID("900"), bidID)
	assert.Equal(t, "schedule-12-4", sent)
	require.Len(t, rec.All(), 1)
	assert.Equal(t, constants.MsgDispatched, rec.All()[0].Message)
}

func TestDispatchService_BookWithoutBidIDFails(t *testing.T) {
	fc := &mockFlightCenter{
		BookFlightFunc: func(ctx context.Context, flightID string) (*dtos.BookFlightResponse, error) {
			return &dtos.BookFlightResponse{}, nil
		},
	}
	rec := &common.NotificationRecorder{}
	svc := NewDispatchService(fc, &mockHost{}, rec)

	_, err := svc.Book(context.Background(), scheduleRequest(testFlight()))
	assert.ErrorIs(t, err, ErrDispatchFailed)
	require.Len(t, rec.All(), 1)
	assert.Equal(t, constants.MsgFailedDispatch, rec.All()[0].Message)
	assert.Equal(t, constants.NotifyDanger, rec.All()[0].Type)
}

func TestDispatchService_FlyBookingNotListed(t *testing.T) {
	fc := &mockFlightCenter{
		BookFlightFunc: func(ctx context.Context, flightID string) (*dtos.BookFlightResponse, error) {
			return &dtos.BookFlightResponse{BidID: "900"}, nil
		},
		BookingsFunc: func(ctx context.Context) ([]dtos.Flight, error) {
			return []dtos.Flight{{BidID: "111"}}, nil
		},
	}
	host := &mockHost{}
	rec := &common.NotificationRecorder{}
	svc := NewDispatchService(fc, host, rec)

	err := svc.Fly(context.Background(), scheduleRequest(testFlight()))
	assert.ErrorIs(t, err, ErrBookingNotFound)
	assert.Empty(t, host.started)
	assert.Empty(t, host.navigated)

	notes := rec.All()
	require.Len(t, notes, 2)
	assert.Equal(t, constants.MsgDispatched, notes[0].Message)
	assert.Equal(t, "Failed to start flight - dispatched flight not found", notes[1].Message)
}

func TestDispatchService_FlyExistingBid(t *testing.T) {
	f := testFlight()
	f.BidID = "77"
	fc := &mockFlightCenter{
		BookFlightFunc: func(ctx context.Context, flightID string) (*dtos.BookFlightResponse, error) {
			t.Fatal("an existing bid must not be booked again")
			return nil, nil
		},
		BookingsFunc: func(ctx context.Context) ([]dtos.Flight, error) {
			return []dtos.Flight{{BidID: "77"}}, nil
		},
	}
	host := &mockHost{}
	svc := NewDispatchService(fc, host, &common.NotificationRecorder{})

	require.NoError(t, svc.Fly(context.Background(), scheduleRequest(f)))
	require.Len(t, host.started, 1)
	start := host.started[0]
	assert.Equal(t, "CAV101", start.Number)
	assert.Equal(t, dtos.FlexID("77"), start.BidID)
	assert.Equal(t, "EGLL", start.Departure.Code)
	assert.Equal(t, "LFPG", start.Arrival.Code)
	assert.Equal(t, []string{"DVR", "UL9"}, start.Route)
	assert.Equal(t, "offline", start.Network)
	assert.Equal(t, "KGS", start.WeightUnits)
	assert.Equal(t, []string{constants.PluginFlightTracking}, host.navigated)
}

func TestDispatchService_FlyWithoutAircraft(t *testing.T) {
	f := testFlight()
	f.Aircraft = nil
	svc := NewDispatchService(&mockFlightCenter{}, &mockHost{}, &common.NotificationRecorder{})

	err := svc.Fly(context.Background(), scheduleRequest(f))
	assert.ErrorIs(t, err, ErrNoAircraft)
}

func TestDispatchService_FlyBookingsUnavailable(t *testing.T) {
	f := testFlight()
	f.BidID = "77"
	fc := &mockFlightCenter{
		BookingsFunc: func(ctx context.Context) ([]dtos.Flight, error) {
			return nil, errors.New("relay down")
		},
	}
	rec := &common.NotificationRecorder{}
	svc := NewDispatchService(fc, &mockHost{}, rec)

	err := svc.Fly(context.Background(), scheduleRequest(f))
	assert.ErrorIs(t, err, ErrBookingsUnavailable)
	require.Len(t, rec.All(), 1)
	assert.Equal(t, constants.MsgFailedBookings, rec.All()[0].Message)
}

func TestDispatchService_RestoreMismatchedBid(t *testing.T) {
	f := testFlight()
	f.BidID = "77"
	host := &mockHost{
		RecoverableFlightFunc: func(ctx context.Context) (*dtos.RecoverableFlight, error) {
			return &dtos.RecoverableFlight{BidID: "78"}, nil
		},
	}
	rec := &common.NotificationRecorder{}
	svc := NewDispatchService(&mockFlightCenter{}, host, rec)

	err := svc.Restore(context.Background(), scheduleRequest(f))
	assert.ErrorIs(t, err, ErrNoRecoverableFlight)
	assert.Empty(t, host.restored)
	require.Len(t, rec.All(), 1)
	assert.Equal(t, constants.MsgNoRecoverableFlight, rec.All()[0].Message)
}

func TestDispatchService_Restore(t *testing.T) {
	f := testFlight()
	f.BidID = "77"
	host := &mockHost{
		RecoverableFlightFunc: func(ctx context.Context) (*dtos.RecoverableFlight, error) {
			return &dtos.RecoverableFlight{BidID: "77", GUID: "g-1", Phase: "cruise"}, nil
		},
	}
	fc := &mockFlightCenter{
		BookingsFunc: func(ctx context.Context) ([]dtos.Flight, error) {
			return []dtos.Flight{{BidID: "77"}}, nil
		},
	}
	svc := NewDispatchService(fc, host, &common.NotificationRecorder{})

	require.NoError(t, svc.Restore(context.Background(), scheduleRequest(f)))
	require.Len(t, host.restored, 1)
	assert.Equal(t, "g-1", host.restored[0].GUID)
	assert.Equal(t, "cruise", host.restored[0].Phase)
	assert.Equal(t, dtos.FlexID("77"), host.restored[0].BidID)
}

func TestDispatchService_PlanWithSimBrief(t *testing.T) {
	f := testFlight()
	f.Number = "CAV101"
	f.BidID = "77"
	host := &mockHost{}
	svc := NewDispatchService(&mockFlightCenter{}, host, &common.NotificationRecorder{})

	req := scheduleRequest(f)
	req.Route = "DVR UL9 KOK"
	require.NoError(t, svc.PlanWithSimBrief(context.Background(), req))
	require.Len(t, host.simbrief, 1)
	info := host.simbrief[0]
	assert.Equal(t, "CAV", info.Airline)
	assert.Equal(t, "101", info.FlightNumber)
	assert.Equal(t, "DVR UL9 KOK", info.Route)
	assert.Equal(t, []string{constants.PluginSimBrief}, host.navigated)
}

func TestDispatchService_UnbookFailureNotifies(t *testing.T) {
	fc := &mockFlightCenter{
		UnbookFlightFunc: func(ctx context.Context, bidID dtos.FlexID) error {
			return errors.New("boom")
		},
	}
	rec := &common.NotificationRecorder{}
	svc := NewDispatchService(fc, &mockHost{}, rec)

	assert.Error(t, svc.Unbook(context.Background(), "77"))
	require.Len(t, rec.All(), 1)
	assert.Equal(t, constants.MsgFailedUnbook, rec.All()[0].Message)
}
