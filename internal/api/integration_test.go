package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/emberhold/fortress-replay-go/internal/engine"
	"github.com/emberhold/fortress-replay-go/internal/sim"
	"github.com/emberhold/fortress-replay-go/internal/store"
	"github.com/emberhold/fortress-replay-go/internal/token"
	"github.com/emberhold/fortress-replay-go/internal/verify"
)

func newTestServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	db, err := store.NewSQLiteDB(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	signer, err := token.NewSigner([]byte("integration-test-master-secret"), "fortress-test", nil)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}

	srv := NewServer(db, signer, opts)
	t.Cleanup(srv.Close)

	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body, out interface{}) int {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp.StatusCode
}

func startRun(t *testing.T, ts *httptest.Server, userID string, level int) StartRunResponse {
	t.Helper()
	var resp StartRunResponse
	status := postJSON(t, ts.URL+"/runs/start", StartRunRequest{
		UserID:         userID,
		CommanderLevel: level,
	}, &resp)
	if status != http.StatusOK {
		t.Fatalf("start status = %d", status)
	}
	return resp
}

// replayLocally plays the run the way an honest client engine does.
func replayLocally(start StartRunResponse, level int, events []sim.Command) sim.Result {
	cfg := sim.DefaultConfig()
	cfg.TickHz = start.TickHz
	cfg.MaxWaves = start.MaxWaves
	cfg.PermanentBonus = sim.ProgressionBonus(level)
	return sim.Run(cfg, start.Seed, events, start.AuditTicks)
}

func TestStartFinishRoundTrip(t *testing.T) {
	ts := newTestServer(t, Options{})

	start := startRun(t, ts, "player-7", 12)
	if start.RunToken == "" || start.SimVersion != engine.Version {
		t.Fatalf("bad start response: %+v", start)
	}
	if n := len(start.AuditTicks); n < 3 || n > 5 {
		t.Fatalf("audit tick count = %d, want 3..5", n)
	}
	if !start.Progression.FirstWinAvailable {
		t.Error("fresh account has no first win available")
	}

	res := replayLocally(start, 12, nil)
	var finish FinishRunResponse
	status := postJSON(t, ts.URL+"/runs/finish", FinishRunRequest{
		RunToken:    start.RunToken,
		Checkpoints: res.Checkpoints,
		FinalHash:   res.FinalHash,
		Score:       res.Score,
		Summary:     res.Summary,
	}, &finish)
	if status != http.StatusOK {
		t.Fatalf("finish status = %d", status)
	}
	if !finish.Verified {
		t.Fatalf("honest finish rejected: %s", finish.Reason)
	}
	if finish.Rewards == nil || finish.Rewards.Gold <= 0 {
		t.Errorf("verified run has no rewards: %+v", finish.Rewards)
	}
	if finish.Score != res.Score {
		t.Errorf("score = %d, want replayed %d", finish.Score, res.Score)
	}

	// The run token is spent; a replayed finish must be refused.
	var again FinishRunResponse
	status = postJSON(t, ts.URL+"/runs/finish", FinishRunRequest{
		RunToken:    start.RunToken,
		Checkpoints: res.Checkpoints,
		FinalHash:   res.FinalHash,
	}, &again)
	if status != http.StatusOK || again.Verified || again.Reason != verify.ReasonRunAlreadyFinished {
		t.Errorf("second finish = %d %+v, want RUN_ALREADY_FINISHED", status, again)
	}
	if again.Rewards != nil {
		t.Error("rejected finish carried rewards")
	}
}

func TestForgedFinalHashRejected(t *testing.T) {
	ts := newTestServer(t, Options{})

	start := startRun(t, ts, "player-8", 0)
	res := replayLocally(start, 0, nil)

	var finish FinishRunResponse
	status := postJSON(t, ts.URL+"/runs/finish", FinishRunRequest{
		RunToken:    start.RunToken,
		Checkpoints: res.Checkpoints,
		FinalHash:   res.FinalHash ^ 1,
		Score:       999999,
	}, &finish)
	if status != http.StatusOK {
		t.Fatalf("finish status = %d", status)
	}
	if finish.Verified || finish.Reason != verify.ReasonFinalHashMismatch {
		t.Errorf("forged hash verdict = %+v, want FINAL_HASH_MISMATCH", finish)
	}
	if finish.Rewards != nil {
		t.Error("rejected finish carried rewards")
	}
	if finish.Score == 999999 {
		t.Error("claimed score echoed back as authoritative")
	}
}

func TestStartValidation(t *testing.T) {
	ts := newTestServer(t, Options{})

	var apiErr EngineError
	status := postJSON(t, ts.URL+"/runs/start", StartRunRequest{CommanderLevel: 5}, &apiErr)
	if status != http.StatusBadRequest || apiErr.Type != ErrTypeValidation {
		t.Errorf("missing userId = %d %+v, want 400 validation_error", status, apiErr)
	}

	status = postJSON(t, ts.URL+"/runs/start", StartRunRequest{UserID: "u", CommanderLevel: 500}, &apiErr)
	if status != http.StatusBadRequest {
		t.Errorf("out-of-range commanderLevel = %d, want 400", status)
	}

	status = postJSON(t, ts.URL+"/runs/start", StartRunRequest{UserID: "u", Loadout: "no-such-preset"}, &apiErr)
	if status != http.StatusBadRequest {
		t.Errorf("unknown loadout = %d, want 400", status)
	}
}

func TestFinishGarbageToken(t *testing.T) {
	ts := newTestServer(t, Options{})

	var finish FinishRunResponse
	status := postJSON(t, ts.URL+"/runs/finish", FinishRunRequest{RunToken: "not.a.token"}, &finish)
	if status != http.StatusOK || finish.Verified || finish.Reason != verify.ReasonTokenInvalid {
		t.Errorf("garbage token = %d %+v, want TOKEN_INVALID", status, finish)
	}
}

func TestStartRateLimit(t *testing.T) {
	ts := newTestServer(t, Options{StartPerMinute: 2})

	startRun(t, ts, "burst-user", 0)
	startRun(t, ts, "burst-user", 0)

	var apiErr EngineError
	status := postJSON(t, ts.URL+"/runs/start", StartRunRequest{UserID: "burst-user"}, &apiErr)
	if status != http.StatusTooManyRequests || apiErr.Type != ErrTypeRateLimit {
		t.Errorf("third start = %d %+v, want 429 rate_limit_exceeded", status, apiErr)
	}

	// Another user still has budget.
	startRun(t, ts, "other-user", 0)
}

func TestGetRun(t *testing.T) {
	ts := newTestServer(t, Options{})
	start := startRun(t, ts, "player-9", 0)

	resp, err := http.Get(ts.URL + "/runs/" + start.RunID)
	if err != nil {
		t.Fatalf("GET run: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET run status = %d", resp.StatusCode)
	}
	var rec store.RunRecord
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		t.Fatalf("decode run record: %v", err)
	}
	if rec.ID != start.RunID || rec.UserID != "player-9" || rec.Seed != start.Seed {
		t.Errorf("run record mismatch: %+v", rec)
	}

	ghost, err := http.Get(ts.URL + "/runs/ghost")
	if err != nil {
		t.Fatalf("GET ghost: %v", err)
	}
	ghost.Body.Close()
	if ghost.StatusCode != http.StatusNotFound {
		t.Errorf("ghost run status = %d, want 404", ghost.StatusCode)
	}
}

func TestVersionAndHealth(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp, err := http.Get(ts.URL + "/version")
	if err != nil {
		t.Fatalf("GET version: %v", err)
	}
	defer resp.Body.Close()
	var v VersionResponse
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode version: %v", err)
	}
	if v.SimVersion != engine.Version {
		t.Errorf("simVersion = %d, want %d", v.SimVersion, engine.Version)
	}

	health, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("GET health: %v", err)
	}
	health.Body.Close()
	if health.StatusCode != http.StatusOK {
		t.Errorf("health status = %d", health.StatusCode)
	}
}
