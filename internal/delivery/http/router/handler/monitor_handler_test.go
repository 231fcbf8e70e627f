package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"vigil/internal/domain/entity"
	domainerrors "vigil/internal/domain/errors"
	"vigil/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMonitorUsecase implements usecase.MonitorUsecase for handler tests.
type fakeMonitorUsecase struct {
	latest *entity.FallEvent
	alerts []*entity.Alert
}

func (f *fakeMonitorUsecase) Start(ctx context.Context) error { return nil }
func (f *fakeMonitorUsecase) Stop()                           {}

func (f *fakeMonitorUsecase) Status() *usecase.MonitorStatus {
	return &usecase.MonitorStatus{
		ChannelState:  entity.ChannelRegistered,
		DeviceID:      "dev-1",
		PendingAlerts: len(f.alerts),
	}
}

func (f *fakeMonitorUsecase) PendingAlerts() []*entity.Alert { return f.alerts }

func (f *fakeMonitorUsecase) Acknowledge(alertID uuid.UUID) error {
	return domainerrors.ErrAlertNotFound
}

func (f *fakeMonitorUsecase) LatestLocation() (*entity.FallEvent, error) {
	if f.latest == nil {
		return nil, domainerrors.ErrNoLocationAvailable
	}

	return f.latest, nil
}

func TestMonitorHandler_LatestLocation_GeoJSON(t *testing.T) {
	uc := &fakeMonitorUsecase{
		latest: &entity.FallEvent{
			DeviceID:  "dev-1",
			Timestamp: time.Date(2025, 6, 17, 9, 0, 0, 0, time.UTC),
			Location:  &entity.Location{Latitude: 10.776, Longitude: 106.7},
			Message:   "Fall detected",
		},
	}
	h := NewMonitorHandler(uc, testHandlerLogger())

	c, rec := newTestContext(t, http.MethodGet, "/api/monitor/location.geojson", "")

	require.NoError(t, h.LatestLocation(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Type        string    `json:"type"`
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 1)

	// GeoJSON is lon/lat ordered.
	coords := fc.Features[0].Geometry.Coordinates
	require.Len(t, coords, 2)
	assert.InDelta(t, 106.7, coords[0], 0.0001)
	assert.InDelta(t, 10.776, coords[1], 0.0001)

	assert.Equal(t, "dev-1", fc.Features[0].Properties["deviceId"])
	assert.Equal(t, "Fall detected", fc.Features[0].Properties["message"])
}

func TestMonitorHandler_LatestLocation_NoneAvailable(t *testing.T) {
	h := NewMonitorHandler(&fakeMonitorUsecase{}, testHandlerLogger())

	c, _ := newTestContext(t, http.MethodGet, "/api/monitor/location.geojson", "")

	err := h.LatestLocation(c)
	assert.ErrorIs(t, err, domainerrors.ErrNoLocationAvailable)
}

func TestMonitorHandler_Status(t *testing.T) {
	h := NewMonitorHandler(&fakeMonitorUsecase{}, testHandlerLogger())

	c, rec := newTestContext(t, http.MethodGet, "/api/monitor/status", "")

	require.NoError(t, h.Status(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"channelState"`)
	assert.Contains(t, rec.Body.String(), "dev-1")
}
