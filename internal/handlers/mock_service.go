package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lahn92/AquaTimer/internal/models"
	"github.com/lahn92/AquaTimer/internal/service"
)

// ---- Service Mocks ----

type mockSchedule struct {
	loadErr     error
	replaceErr  error
	wireJSON    []byte
	wireErr     error
	pointCount  int
	lastReplace string
	replaceings int
}

func (m *mockSchedule) Load(ctx context.Context) error { return m.loadErr }
func (m *mockSchedule) Replace(ctx context.Context, raw string) error {
	m.replaceings++
	m.lastReplace = raw
	return m.replaceErr
}
func (m *mockSchedule) WireJSON() ([]byte, error) { return m.wireJSON, m.wireErr }
func (m *mockSchedule) PointCount() int           { return m.pointCount }

type mockSettings struct {
	setErr     error
	offset     int
	lastOffset int
	setCalls   int
}

func (m *mockSettings) Load(ctx context.Context) {}
func (m *mockSettings) SetTimezoneOffset(ctx context.Context, offset int) error {
	m.setCalls++
	m.lastOffset = offset
	if m.setErr != nil {
		return m.setErr
	}
	m.offset = offset
	return nil
}
func (m *mockSettings) TimezoneOffset() int { return m.offset }

type mockMonitoring struct {
	status models.LightStatus
}

func (m *mockMonitoring) Status() models.LightStatus { return m.status }

type mockEventLog struct {
	resp     []models.LightEvent
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.LightEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}
