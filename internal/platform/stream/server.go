// Package stream serves live AI games to browsers over websockets. Every
// connection gets its own game; the server writes the starting board and
// then one JSON frame per tick.
package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/snakelab/internal/ai"
	"github.com/vovakirdan/snakelab/internal/engine"
	"github.com/vovakirdan/snakelab/internal/sim"
	"github.com/vovakirdan/snakelab/internal/storage"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second
	maxBoardSide = 64
)

// Config holds the defaults for streamed games. Clients may override
// strategy, speed, width, height and seed with query parameters.
type Config struct {
	Address  string
	Width    int
	Height   int
	Strategy ai.Strategy
	Speed    sim.Speed
	// MaxTicks caps each game; zero picks sim.DefaultMaxTicks for the board.
	MaxTicks uint64
}

// Frame is one tick as sent to the client.
type Frame struct {
	engine.Snapshot
	Snake      [][2]int `json:"snake"`
	Strategy   string   `json:"strategy"`
	Tag        string   `json:"tag,omitempty"`
	PathLength int      `json:"path_length,omitempty"`
	Final      bool     `json:"final"`
	Stalled    bool     `json:"stalled,omitempty"`
	FinalScore int      `json:"final_score,omitempty"`
}

func newFrame(st engine.State, strategy ai.Strategy, mv ai.Move) Frame {
	snake := make([][2]int, len(st.Snake))
	for i, c := range st.Snake {
		snake[i] = [2]int{c.X, c.Y}
	}
	return Frame{
		Snapshot:   st.Snapshot(),
		Snake:      snake,
		Strategy:   string(strategy),
		Tag:        string(mv.Tag),
		PathLength: mv.PathLength,
	}
}

// Server streams games. A nil store disables run saving.
type Server struct {
	cfg      Config
	engine   *ai.Engine
	store    *storage.Store
	logger   *log.Logger
	upgrader websocket.Upgrader
	active   atomic.Int64
}

// NewServer creates a stream server sharing e across connections.
func NewServer(cfg Config, e *ai.Engine, store *storage.Store, logger *log.Logger) *Server {
	if e == nil {
		e = ai.New(nil)
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if cfg.Strategy == "" {
		cfg.Strategy = ai.DefaultStrategy
	}
	if cfg.Speed == "" {
		cfg.Speed = sim.SpeedNormal
	}
	return &Server{
		cfg:    cfg,
		engine: e,
		store:  store,
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // spectators connect from any page
			},
		},
	}
}

// Handler returns the HTTP routes: /ws and /healthz.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprintf(w, "ok %d\n", s.active.Load())
	})
	return mux
}

// Active returns the number of games currently streaming.
func (s *Server) Active() int64 {
	return s.active.Load()
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting stream server", "address", s.cfg.Address)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("stream: %w", err)
	case <-ctx.Done():
		s.logger.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), writeWait)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// gameConfig applies query overrides to the server defaults.
func (s *Server) gameConfig(r *http.Request) (sim.Config, sim.Speed, error) {
	q := r.URL.Query()
	cfg := sim.Config{
		Width:    s.cfg.Width,
		Height:   s.cfg.Height,
		Strategy: s.cfg.Strategy,
		Seed:     time.Now().UnixNano(),
		MaxTicks: s.cfg.MaxTicks,
	}
	speed := s.cfg.Speed

	if v := q.Get("strategy"); v != "" {
		st, err := ai.ParseStrategy(v)
		if err != nil {
			return cfg, speed, err
		}
		cfg.Strategy = st
	}
	if v := q.Get("speed"); v != "" {
		sp, err := sim.ParseSpeed(v)
		if err != nil {
			return cfg, speed, err
		}
		speed = sp
	}
	for _, p := range []struct {
		name string
		dst  *int
	}{{"width", &cfg.Width}, {"height", &cfg.Height}} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < engine.MinBoardSize || n > maxBoardSide {
			return cfg, speed, fmt.Errorf("stream: %s must be in %d..%d", p.name, engine.MinBoardSize, maxBoardSide)
		}
		*p.dst = n
	}
	if v := q.Get("seed"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return cfg, speed, fmt.Errorf("stream: bad seed %q", v)
		}
		cfg.Seed = n
	}
	if cfg.MaxTicks == 0 {
		cfg.MaxTicks = sim.DefaultMaxTicks(cfg.Width, cfg.Height)
	}
	return cfg, speed, nil
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	cfg, speed, err := s.gameConfig(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer conn.Close()

	s.active.Add(1)
	defer s.active.Add(-1)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Reading keeps control frames flowing and notices the client leaving.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					cancel()
					return
				}
			}
		}
	}()

	log := s.logger.With("remote", r.RemoteAddr, "strategy", cfg.Strategy, "seed", cfg.Seed)
	log.Info("stream started", "width", cfg.Width, "height", cfg.Height, "speed", speed)

	start := time.Now()
	runner := sim.NewRunner(s.engine, cfg)

	// The starting board goes out before the first move.
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(newFrame(runner.State(), cfg.Strategy, ai.Move{})); err != nil {
		log.Info("stream ended early", "error", err, "tick", 0)
		return
	}

	err = runner.Run(ctx, speed, func(f sim.Frame) error {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(newFrame(f.State, cfg.Strategy, f.Move))
	})
	if err != nil {
		log.Info("stream ended early", "error", err, "tick", runner.State().Tick)
		return
	}

	st := runner.State()
	final := newFrame(st, cfg.Strategy, runner.LastMove())
	final.Final = true
	final.Stalled = runner.Stalled() && !st.Status.Terminal()
	final.FinalScore = engine.FinalScore(len(st.Snake), int(st.Tick))

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(final); err != nil {
		log.Warn("final frame failed", "error", err)
		return
	}
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, string(st.Status)),
		time.Now().Add(writeWait))

	s.saveRun(sim.Result{
		Strategy:   cfg.Strategy,
		Width:      cfg.Width,
		Height:     cfg.Height,
		Seed:       cfg.Seed,
		Score:      st.Score,
		Length:     len(st.Snake),
		Ticks:      st.Tick,
		Status:     st.Status,
		Stalled:    final.Stalled,
		FinalScore: final.FinalScore,
		Duration:   time.Since(start),
	}, log)
	log.Info("stream finished", "status", st.Status, "score", st.Score, "ticks", st.Tick)
}

func (s *Server) saveRun(res sim.Result, log *log.Logger) {
	if s.store == nil {
		return
	}
	if _, err := s.store.SaveRun(storage.RunFromResult(res)); err != nil {
		log.Warn("could not save run", "error", err)
	}
}
