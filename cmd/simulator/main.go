// Command simulator is a development stand-in for the fall-detection backend.
// It serves the REST endpoints the console consumes and a websocket push
// channel that emits synthetic fall events for registered devices.
package main

import (
	"encoding/json"
	"flag"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"vigil/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// store is the simulator's in-memory backend state.
type store struct {
	mu        sync.Mutex
	users     map[string]*entity.UserProfile // keyed by account ID
	passwords map[string]string              // keyed by emergency phone
	history   []*entity.FallHistoryRecord
	reminders map[string]*reminderRecord
}

type reminderRecord struct {
	ID           string                 `json:"_id"`
	UserID       string                 `json:"userId"`
	MedicineName string                 `json:"medicineName"`
	Schedule     []entity.ScheduleEntry `json:"schedule"`
	IsActive     bool                   `json:"isActive"`
}

// envelope mirrors the push channel wire format.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type registerPayload struct {
	DeviceID string `json:"deviceId"`
}

func main() {
	port := flag.Int("port", 3000, "listen port")
	interval := flag.Duration("fall-interval", 30*time.Second, "delay between synthetic fall events")
	lat := flag.Float64("lat", 10.776, "base latitude for synthetic falls")
	lng := flag.Float64("lng", 106.7, "base longitude for synthetic falls")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	st := &store{
		users:     make(map[string]*entity.UserProfile),
		passwords: make(map[string]string),
		reminders: make(map[string]*reminderRecord),
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	e.POST("/api/auth/login", st.login)
	e.POST("/api/auth/register", st.register)
	e.GET("/api/users/:id", st.getUser)
	e.PUT("/api/users/:id", st.updateUser)
	e.GET("/api/fall-detection", st.fallHistory)
	e.GET("/api/medication-reminders/user/:id", st.listReminders)
	e.POST("/api/medication-reminders", st.createReminder)
	e.DELETE("/api/medication-reminders/:id", st.deleteReminder)

	sim := &pushSimulator{
		store:    st,
		logger:   logger,
		interval: *interval,
		baseLat:  *lat,
		baseLng:  *lng,
	}
	e.GET("/socket", sim.handleSocket)

	addr := ":" + strconv.Itoa(*port)
	logger.Info("Simulator listening",
		slog.String("addr", addr),
		slog.Duration("fall_interval", *interval),
	)
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		logger.Error("Simulator stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func (st *store) login(c echo.Context) error {
	var req struct {
		PhoneEmergency string `json:"phoneEmergency"`
		Password       string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if st.passwords[req.PhoneEmergency] != req.Password || req.Password == "" {
		return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Invalid emergency phone number or password"})
	}

	for _, user := range st.users {
		if user.EmergencyPhone == req.PhoneEmergency {
			return c.JSON(http.StatusOK, map[string]any{"user": user})
		}
	}

	return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Invalid emergency phone number or password"})
}

func (st *store) register(c echo.Context) error {
	var req struct {
		PhoneEmergency string `json:"phoneEmergency"`
		Password       string `json:"password"`
		DeviceID       string `json:"deviceId"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
	}
	if req.PhoneEmergency == "" || req.Password == "" || req.DeviceID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "phoneEmergency, password and deviceId are required"})
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if _, exists := st.passwords[req.PhoneEmergency]; exists {
		return c.JSON(http.StatusConflict, map[string]string{"message": "Emergency phone number already registered"})
	}

	now := time.Now().UTC()
	user := &entity.UserProfile{
		ID:             uuid.New().String(),
		EmergencyPhone: req.PhoneEmergency,
		DeviceID:       req.DeviceID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	st.users[user.ID] = user
	st.passwords[req.PhoneEmergency] = req.Password

	return c.JSON(http.StatusCreated, map[string]any{"user": user})
}

func (st *store) getUser(c echo.Context) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	user, ok := st.users[c.Param("id")]
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "User not found"})
	}

	return c.JSON(http.StatusOK, map[string]any{"user": user})
}

func (st *store) updateUser(c echo.Context) error {
	var req struct {
		FullName       string `json:"fullName"`
		Age            int    `json:"age"`
		Sex            string `json:"sex"`
		Address        string `json:"address"`
		MedicalNotes   string `json:"medicalNotes"`
		EmergencyName  string `json:"nameEmergency"`
		EmergencyEmail string `json:"emailEmergency"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	user, ok := st.users[c.Param("id")]
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "User not found"})
	}

	user.FullName = req.FullName
	user.Age = req.Age
	user.Sex = req.Sex
	user.Address = req.Address
	user.MedicalNotes = req.MedicalNotes
	user.EmergencyName = req.EmergencyName
	user.EmergencyEmail = req.EmergencyEmail
	user.UpdatedAt = time.Now().UTC()

	return c.JSON(http.StatusOK, map[string]any{"user": user})
}

func (st *store) fallHistory(c echo.Context) error {
	deviceID := c.QueryParam("deviceId")
	if deviceID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "deviceId is required"})
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	records := make([]*entity.FallHistoryRecord, 0)
	for _, rec := range st.history {
		if rec.DeviceID == deviceID {
			records = append(records, rec)
		}
	}

	return c.JSON(http.StatusOK, map[string]any{"data": records})
}

func (st *store) listReminders(c echo.Context) error {
	userID := c.Param("id")

	st.mu.Lock()
	defer st.mu.Unlock()

	records := make([]*reminderRecord, 0)
	for _, rec := range st.reminders {
		if rec.UserID == userID {
			records = append(records, rec)
		}
	}

	return c.JSON(http.StatusOK, map[string]any{"success": true, "data": records})
}

func (st *store) createReminder(c echo.Context) error {
	var req struct {
		UserID       string                 `json:"userId"`
		MedicineName string                 `json:"medicineName"`
		Schedule     []entity.ScheduleEntry `json:"schedule"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
	}
	if req.MedicineName == "" || len(req.Schedule) == 0 {
		return c.JSON(http.StatusOK, map[string]any{"success": false, "message": "medicineName and schedule are required"})
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	rec := &reminderRecord{
		ID:           uuid.New().String(),
		UserID:       req.UserID,
		MedicineName: req.MedicineName,
		Schedule:     req.Schedule,
		IsActive:     true,
	}
	st.reminders[rec.ID] = rec

	return c.JSON(http.StatusCreated, map[string]any{"success": true, "data": rec})
}

func (st *store) deleteReminder(c echo.Context) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	id := c.Param("id")
	if _, ok := st.reminders[id]; !ok {
		return c.JSON(http.StatusOK, map[string]any{"success": false, "message": "Reminder not found"})
	}
	delete(st.reminders, id)

	return c.JSON(http.StatusOK, map[string]any{"success": true})
}

// pushSimulator drives the websocket push channel. Each connection registers
// one device and then receives synthetic fall events on a timer.
type pushSimulator struct {
	store    *store
	logger   *slog.Logger
	interval time.Duration
	baseLat  float64
	baseLng  float64
}

func (p *pushSimulator) handleSocket(c echo.Context) error {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return nil
	}
	defer conn.Close()

	// The first message must register a device.
	var msg envelope
	if err := conn.ReadJSON(&msg); err != nil {
		return nil
	}
	if msg.Event != "register_device" {
		p.logger.Warn("Expected register_device", slog.String("event", msg.Event))

		return nil
	}

	var reg registerPayload
	if err := json.Unmarshal(msg.Data, &reg); err != nil || reg.DeviceID == "" {
		return nil
	}

	p.logger.Info("Device registered on push channel", slog.String("device_id", reg.DeviceID))

	var writeMu sync.Mutex
	send := func(event string, data any) error {
		raw, err := json.Marshal(data)
		if err != nil {
			return err
		}
		writeMu.Lock()
		defer writeMu.Unlock()

		return conn.WriteJSON(envelope{Event: event, Data: raw})
	}

	if err := send("registered", registerPayload{DeviceID: reg.DeviceID}); err != nil {
		return nil
	}
	if err := send("connection_confirmed", map[string]string{"status": "ok"}); err != nil {
		return nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			p.logger.Info("Push client disconnected", slog.String("device_id", reg.DeviceID))

			return nil

		case <-ticker.C:
			event := p.syntheticFall(reg.DeviceID)
			if err := send("fall_detected", event); err != nil {
				return nil
			}
			p.logger.Info("Emitted synthetic fall",
				slog.String("device_id", reg.DeviceID),
				slog.Float64("lat", event.Location.Latitude),
				slog.Float64("lng", event.Location.Longitude),
			)
		}
	}
}

// syntheticFall fabricates a fall near the base coordinate and records it in
// the history so the statistics endpoints see it too.
func (p *pushSimulator) syntheticFall(deviceID string) *entity.FallEvent {
	event := &entity.FallEvent{
		DeviceID:  deviceID,
		Timestamp: time.Now().UTC(),
		Location: &entity.Location{
			Latitude:  p.baseLat + (rand.Float64()-0.5)*0.002,
			Longitude: p.baseLng + (rand.Float64()-0.5)*0.002,
		},
		Message: "Fall detected",
	}

	p.store.mu.Lock()
	p.store.history = append(p.store.history, &entity.FallHistoryRecord{
		ID:        uuid.New().String(),
		DeviceID:  event.DeviceID,
		Timestamp: event.Timestamp,
		Location:  event.Location,
	})
	p.store.mu.Unlock()

	return event
}
