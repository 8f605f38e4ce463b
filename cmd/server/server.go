package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/X-CodesTech/qAudio-sub000/internal/chatlog"
	"github.com/X-CodesTech/qAudio-sub000/internal/config"
	"github.com/X-CodesTech/qAudio-sub000/internal/router"
	"github.com/X-CodesTech/qAudio-sub000/internal/state"
	"github.com/X-CodesTech/qAudio-sub000/internal/types"
	"github.com/X-CodesTech/qAudio-sub000/pkg/protocol"
)

// Liveness tuning. Package vars so tests can shrink the intervals.
var (
	MonitorInterval  = 2 * time.Minute
	StaleThreshold   = 5 * time.Minute
	PongGrace        = 5 * time.Second
	PingWriteTimeout = 5 * time.Second
)

// Server wires the registry, state banks, router and transports together.
// Everything is constructed once here and passed by handle; there is no
// package-level mutable state, so each test builds a fresh server.
type Server struct {
	cfg       *config.Config
	log       *zap.Logger
	registry  *state.Registry
	buzzers   *state.BuzzerBank
	timers    *state.TimerBank
	signals   *state.SignalLog
	callLines *state.CallLineBank
	chat      *state.ChatHistory
	chatStore chatlog.Store
	dispatch  *router.Router
	timerHub  *TimerHub
	router    *gin.Engine

	monitorInterval time.Duration
	staleAfter      time.Duration
	pongGrace       time.Duration

	startedAt   time.Time
	stopMonitor context.CancelFunc
}

type Option func(*Server)

func WithConfig(cfg *config.Config) Option    { return func(s *Server) { s.cfg = cfg } }
func WithLogger(log *zap.Logger) Option       { return func(s *Server) { s.log = log } }
func WithChatStore(store chatlog.Store) Option { return func(s *Server) { s.chatStore = store } }

func NewServer(opts ...Option) *Server {
	s := &Server{
		log:             zap.NewNop(),
		chatStore:       chatlog.Nop{},
		monitorInterval: MonitorInterval,
		staleAfter:      StaleThreshold,
		pongGrace:       PongGrace,
		startedAt:       time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}

	buzzerTTL := state.DefaultBuzzerTTL
	chatHistory := state.DefaultChatHistory
	if s.cfg != nil {
		rt := s.cfg.Realtime
		if rt.BuzzerTTL > 0 {
			buzzerTTL = rt.BuzzerTTL
		}
		if rt.MonitorInterval > 0 {
			s.monitorInterval = rt.MonitorInterval
		}
		if rt.StaleAfter > 0 {
			s.staleAfter = rt.StaleAfter
		}
		if rt.PongGrace > 0 {
			s.pongGrace = rt.PongGrace
		}
		if rt.ChatHistory > 0 {
			chatHistory = rt.ChatHistory
		}
	}

	s.registry = state.NewRegistry()
	s.buzzers = state.NewBuzzerBank(buzzerTTL)
	s.timers = state.NewTimerBank()
	s.signals = state.NewSignalLog()
	s.callLines = state.NewCallLineBank()
	s.chat = state.NewChatHistory(chatHistory)
	s.dispatch = router.New(s.registry, s.log)
	s.timerHub = NewTimerHub(s.log)

	// A scheduled expiry pushes the deactivation to the same audience the
	// activation went to, so consoles never show a stuck buzzer.
	s.buzzers.OnExpire(func(studio types.Studio) {
		s.dispatch.Route(&protocol.Event{
			Type:   protocol.TypeTalentBuzzer,
			Studio: string(studio),
			Data:   map[string]interface{}{"isActive": false, "expired": true},
		})
	})

	s.router = s.setupRouter()
	return s
}

// Start launches the connection monitor. Call Shutdown to stop it.
func (s *Server) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.stopMonitor = cancel
	go s.monitorLoop(ctx)
}

func (s *Server) Shutdown() {
	if s.stopMonitor != nil {
		s.stopMonitor()
	}
}

// Stats assembles the aggregate served by /api/stats.
func (s *Server) Stats() types.ServerStats {
	return types.ServerStats{
		Connections:   s.registry.Count(),
		ByRole:        s.registry.CountByRole(),
		ActiveBuzzers: s.buzzers.ActiveCount(),
		SignalRecords: s.signals.Len(),
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
	}
}
