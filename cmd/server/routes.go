package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/X-CodesTech/qAudio-sub000/internal/state"
	"github.com/X-CodesTech/qAudio-sub000/internal/types"
	"github.com/X-CodesTech/qAudio-sub000/pkg/protocol"
)

func (s *Server) setupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.cidMiddleware())
	r.Use(s.otelMiddleware())

	corsCfg := cors.DefaultConfig()
	if s.cfg != nil && len(s.cfg.HTTP.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = s.cfg.HTTP.AllowedOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "X-QA-CID")
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "qaudio-coordinator"})
	})

	api := r.Group("/api")
	api.GET("/stats", s.handleStats)
	api.GET("/buzzer/:studio/status", s.handleBuzzerStatus)
	api.POST("/buzzer/:studio", s.handleBuzzerPost)
	api.GET("/timer/:studio", s.handleTimerGet)
	api.POST("/timer/:studio", s.handleTimerPost)
	api.GET("/signals", s.handleSignalsSince)
	api.POST("/signals", s.handleSignalPost)
	api.GET("/signals/status", s.handleSignalStatus)
	api.GET("/calllines", s.handleCallLinesGet)
	api.POST("/calllines/:id", s.handleCallLinePost)

	r.GET("/ws", s.handleWebSocket)
	r.GET("/ws/timer/:studio", s.handleTimerSocket)

	return r
}

func (s *Server) handleStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.Stats())
}

// handleBuzzerStatus is the HTTP polling fallback for consoles without a
// live socket. The query itself clears an expired buzzer.
func (s *Server) handleBuzzerStatus(c *gin.Context) {
	st, err := s.buzzers.Status(types.Studio(c.Param("studio")))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown studio"})
		return
	}
	c.JSON(http.StatusOK, st)
}

type buzzerRequest struct {
	Activate bool   `json:"activate"`
	Role     string `json:"role"`
}

func (s *Server) handleBuzzerPost(c *gin.Context) {
	var req buzzerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "message": err.Error()})
		return
	}

	studio := types.Studio(c.Param("studio"))
	var (
		st  types.BuzzerState
		err error
	)
	if req.Activate {
		st, err = s.buzzers.Activate(studio)
	} else {
		st, err = s.buzzers.Deactivate(studio)
	}
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown studio"})
		return
	}

	// Mirror the change to consoles on the live socket.
	eventType := protocol.TypeTalentBuzzer
	if types.Role(req.Role) == types.RoleProducer {
		eventType = protocol.TypeProducerBuzzer
	}
	s.dispatch.Route(&protocol.Event{
		Type:   eventType,
		Studio: string(studio),
		From:   req.Role,
		Data: map[string]interface{}{
			"isActive":    st.Active,
			"activatedAt": st.ActivatedAt,
		},
	})

	c.JSON(http.StatusOK, st)
}

func (s *Server) handleTimerGet(c *gin.Context) {
	st, err := s.timers.Snapshot(types.Studio(c.Param("studio")))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown studio"})
		return
	}
	c.JSON(http.StatusOK, st)
}

type timerRequest struct {
	Minutes   int  `json:"minutes"`
	Seconds   int  `json:"seconds"`
	IsRunning bool `json:"isRunning"`
}

func (s *Server) handleTimerPost(c *gin.Context) {
	var req timerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "message": err.Error()})
		return
	}

	st, err := s.applyTimerUpdate(types.Studio(c.Param("studio")), req.Minutes, req.Seconds, req.IsRunning)
	if err != nil {
		status := http.StatusNotFound
		if err == state.ErrInvalidTime {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, st)
}

type signalRequest struct {
	From   string                 `json:"from" binding:"required"`
	To     string                 `json:"to"`
	Signal map[string]interface{} `json:"signal"`
	Status string                 `json:"status"`
}

func (s *Server) handleSignalPost(c *gin.Context) {
	var req signalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "message": err.Error()})
		return
	}

	rec := types.SignalRecord{
		From:      req.From,
		To:        req.To,
		Signal:    req.Signal,
		Status:    types.SignalStatus(req.Status),
		Timestamp: time.Now(),
	}
	s.signals.Append(rec)
	c.JSON(http.StatusCreated, rec)
}

// handleSignalsSince serves the timestamp-cursor poll:
// GET /api/signals?role=tech&since=<unix ms>
func (s *Server) handleSignalsSince(c *gin.Context) {
	role := c.Query("role")
	if role == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role is required"})
		return
	}

	var after time.Time
	if raw := c.Query("since"); raw != "" {
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "since must be unix milliseconds"})
			return
		}
		after = time.UnixMilli(ms)
	}

	records := s.signals.Since(role, after)
	if records == nil {
		records = []types.SignalRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"signals": records})
}

func (s *Server) handleSignalStatus(c *gin.Context) {
	rec, ok := s.signals.LatestStatus(c.Query("a"), c.Query("b"))
	if !ok {
		c.JSON(http.StatusOK, gin.H{"status": string(types.SignalDisconnected)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": string(rec.Status), "signal": rec})
}

func (s *Server) handleCallLinesGet(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"lines": s.callLines.All()})
}

type callLineRequest struct {
	Status      *string `json:"status"`
	PhoneNumber *string `json:"phoneNumber"`
	Contact     *string `json:"contact"`
	Notes       *string `json:"notes"`
	Duration    *int    `json:"duration"`
	InputLevel  *int    `json:"inputLevel"`
	OutputLevel *int    `json:"outputLevel"`
}

func (s *Server) handleCallLinePost(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "line id must be numeric"})
		return
	}

	var req callLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "message": err.Error()})
		return
	}

	upd := state.CallLineUpdate{
		PhoneNumber: req.PhoneNumber,
		Contact:     req.Contact,
		Notes:       req.Notes,
		Duration:    req.Duration,
		InputLevel:  req.InputLevel,
		OutputLevel: req.OutputLevel,
	}
	if req.Status != nil {
		status := types.CallLineStatus(*req.Status)
		upd.Status = &status
	}

	line, err := s.callLines.Apply(id, upd)
	if err != nil {
		status := http.StatusNotFound
		if err == state.ErrInvalidStatus {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	s.dispatch.Route(&protocol.Event{
		Type:   protocol.TypeCallLineUpdate,
		Studio: string(line.Studio),
		Data:   map[string]interface{}{"line": line},
	})

	s.log.Debug("call line updated", zap.Int("line", id), zap.String("status", string(line.Status)))
	c.JSON(http.StatusOK, line)
}
