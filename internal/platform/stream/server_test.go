package stream

import (
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vovakirdan/snakelab/internal/ai"
	"github.com/vovakirdan/snakelab/internal/engine"
	"github.com/vovakirdan/snakelab/internal/hamilton"
	"github.com/vovakirdan/snakelab/internal/sim"
	"github.com/vovakirdan/snakelab/internal/storage"
)

func newTestServer(t *testing.T, store *storage.Store) *httptest.Server {
	t.Helper()
	srv := NewServer(Config{
		Width:    8,
		Height:   8,
		Strategy: ai.StrategyStrong,
		Speed:    sim.SpeedTurbo,
		MaxTicks: 80,
	}, ai.New(hamilton.NewCache()), store, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func dial(t *testing.T, ts *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?" + query
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial(%s) failed: %v", url, err)
	}
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrames(t *testing.T, conn *websocket.Conn) []Frame {
	t.Helper()
	var frames []Frame
	for {
		conn.SetReadDeadline(time.Now().Add(10 * time.Second))
		var f Frame
		if err := conn.ReadJSON(&f); err != nil {
			t.Fatalf("ReadJSON() after %d frames failed: %v", len(frames), err)
		}
		frames = append(frames, f)
		if f.Final {
			return frames
		}
	}
}

func TestStreamGame(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("storage.Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ts := newTestServer(t, store)
	conn := dial(t, ts, "strategy=hamiltonian&width=6&height=6&seed=3")
	frames := readFrames(t, conn)

	if len(frames) < 2 {
		t.Fatalf("expected several frames, got %d", len(frames))
	}
	first := frames[0]
	if first.Tick != 0 || first.Tag != "" || first.SnakeLen != len(first.Snake) || first.Status != engine.StatusRunning {
		t.Errorf("first frame = %+v, expected the starting board", first)
	}
	for i, f := range frames[:len(frames)-1] {
		if f.Status != engine.StatusGameOver && f.Tick != uint64(i) {
			t.Fatalf("frame %d has tick %d", i, f.Tick)
		}
		if f.Width != 6 || f.Height != 6 || f.Strategy != "hamiltonian" {
			t.Fatalf("frame %d = %+v", i, f)
		}
		if len(f.Snake) != f.SnakeLen || f.Snake[0] != [2]int{f.HeadX, f.HeadY} {
			t.Fatalf("frame %d snake %v does not match head (%d,%d) len %d", i, f.Snake, f.HeadX, f.HeadY, f.SnakeLen)
		}
	}

	last := frames[len(frames)-1]
	if last.Tick != frames[len(frames)-2].Tick {
		t.Errorf("final frame tick %d, last tick %d", last.Tick, frames[len(frames)-2].Tick)
	}
	if last.FinalScore == 0 {
		t.Error("final frame should carry the final score")
	}

	// The server closes after the final frame.
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err = conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Errorf("expected a normal close, got %v", err)
	}

	// The run is saved after the close frame is written.
	var runs []storage.Run
	for i := 0; i < 50; i++ {
		runs, _ = store.RecentRuns(5)
		if len(runs) > 0 {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if len(runs) != 1 || runs[0].Strategy != "hamiltonian" || runs[0].Seed != 3 || runs[0].Ticks != int64(last.Tick) {
		t.Errorf("saved runs = %+v", runs)
	}
}

func TestStreamDefaults(t *testing.T) {
	ts := newTestServer(t, nil)
	frames := readFrames(t, dial(t, ts, ""))

	first := frames[0]
	if first.Tick != 0 || first.Width != 8 || first.Height != 8 || first.Strategy != "strong" {
		t.Errorf("first frame = %+v", first)
	}
	if last := frames[len(frames)-1]; last.Tick > 80 {
		t.Errorf("game ran past the tick cap: %d", last.Tick)
	}
}

func TestStreamBadQuery(t *testing.T) {
	ts := newTestServer(t, nil)

	for _, q := range []string{
		"strategy=zigzag",
		"speed=warp",
		"width=3",
		"height=1000",
		"width=abc",
		"seed=x",
	} {
		resp, err := http.Get(ts.URL + "/ws?" + q)
		if err != nil {
			t.Fatalf("GET %s failed: %v", q, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: status %d, expected 400", q, resp.StatusCode)
		}
	}
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, nil)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz failed: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || !strings.HasPrefix(string(body), "ok") {
		t.Errorf("healthz = %d %q", resp.StatusCode, body)
	}
}
