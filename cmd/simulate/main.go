package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/hackgods/care-wallet-scheduling/internal/app"
	"github.com/hackgods/care-wallet-scheduling/internal/auth"
	"github.com/hackgods/care-wallet-scheduling/internal/config"
	"github.com/hackgods/care-wallet-scheduling/internal/logging"
	"github.com/hackgods/care-wallet-scheduling/internal/wallet"
)

// The simulator funds a set of patients, has each of them book more wallet
// appointments than their balance covers, then fires duplicate approvals for
// every pending debit from many workers at once. Afterwards every wallet must
// reconcile and no debit may have been approved twice.

type SimConfig struct {
	APIBaseURL      string
	Workers         int
	Users           int
	BookingsPerUser int
	Duplicates      int
	Funding         string
}

type OperationMetrics struct {
	Total        int64
	Success      int64
	Conflict     int64
	Insufficient int64
	Error        int64
	Latencies    []time.Duration
	mu           sync.Mutex
}

func (om *OperationMetrics) Record(latency time.Duration, status int) {
	atomic.AddInt64(&om.Total, 1)
	switch {
	case status >= 200 && status < 300:
		atomic.AddInt64(&om.Success, 1)
	case status == http.StatusConflict:
		atomic.AddInt64(&om.Conflict, 1)
	case status == http.StatusUnprocessableEntity:
		atomic.AddInt64(&om.Insufficient, 1)
	default:
		atomic.AddInt64(&om.Error, 1)
	}

	om.mu.Lock()
	om.Latencies = append(om.Latencies, latency)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (avg, min, max, p50, p95 time.Duration) {
	om.mu.Lock()
	defer om.mu.Unlock()

	if len(om.Latencies) == 0 {
		return 0, 0, 0, 0, 0
	}

	latencies := make([]time.Duration, len(om.Latencies))
	copy(latencies, om.Latencies)
	sort.Slice(latencies, func(i, j int) bool {
		return latencies[i] < latencies[j]
	})

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}

	avg = sum / time.Duration(len(latencies))
	min = latencies[0]
	max = latencies[len(latencies)-1]
	p50 = latencies[percentileIndex(len(latencies), 50)]
	p95 = latencies[percentileIndex(len(latencies), 95)]
	return avg, min, max, p50, p95
}

func percentileIndex(n, p int) int {
	idx := n * p / 100
	if idx >= n {
		idx = n - 1
	}
	return idx
}

type Metrics struct {
	Credit    OperationMetrics
	Booking   OperationMetrics
	Approve   OperationMetrics
	Reconcile OperationMetrics
}

type patient struct {
	ID    uuid.UUID
	Token string
}

type Simulator struct {
	config     SimConfig
	client     *http.Client
	adminToken string
	patients   []patient
	metrics    Metrics

	mu        sync.Mutex
	approvals map[string]int // transaction id -> successful approvals
	drifted   []uuid.UUID
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load error")
	}
	logging.Setup(cfg.Env, cfg.LogLevel)

	simCfg := loadSimConfig()
	if err := validate(cfg, simCfg); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}
	log.Info().
		Int("workers", simCfg.Workers).
		Int("users", simCfg.Users).
		Int("bookings_per_user", simCfg.BookingsPerUser).
		Int("duplicates", simCfg.Duplicates).
		Msg("simulator starting")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	// Users are registered straight in the shared store; everything after
	// that goes through the HTTP API.
	a, err := app.Build(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
	defer a.Close()

	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.JWTIssuer, time.Hour)
	sim := &Simulator{
		config:    simCfg,
		client:    &http.Client{Timeout: 10 * time.Second},
		approvals: make(map[string]int),
	}
	if err := sim.setup(ctx, a, issuer); err != nil {
		log.Fatal().Err(err).Msg("setup failed")
	}

	start := time.Now()
	sim.Run(ctx)
	sim.PrintReport(time.Since(start))
}

func loadSimConfig() SimConfig {
	return SimConfig{
		APIBaseURL:      strings.TrimRight(getEnv("SIM_API_BASE_URL", "http://localhost:8080"), "/"),
		Workers:         getInt("SIM_WORKERS", 16),
		Users:           getInt("SIM_USERS", 20),
		BookingsPerUser: getInt("SIM_BOOKINGS_PER_USER", 5),
		Duplicates:      getInt("SIM_DUPLICATES", 3),
		Funding:         getEnv("SIM_FUNDING", "300"),
	}
}

func validate(cfg config.Config, sim SimConfig) error {
	if cfg.WalletStore == config.BackendMemory {
		return fmt.Errorf("WALLET_STORE=memory cannot be shared with a running api-server")
	}
	if sim.Workers <= 0 || sim.Users <= 0 || sim.BookingsPerUser <= 0 || sim.Duplicates <= 0 {
		return fmt.Errorf("SIM_WORKERS, SIM_USERS, SIM_BOOKINGS_PER_USER and SIM_DUPLICATES must be > 0")
	}
	return nil
}

func (s *Simulator) setup(ctx context.Context, a *app.App, issuer *auth.Issuer) error {
	adminID := uuid.New()
	admin := wallet.User{ID: adminID, Name: "simulator", Email: "sim-" + adminID.String() + "@example.com", Roles: []string{auth.RoleAdmin}}
	if err := a.WalletRepo.CreateUser(ctx, admin); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	tok, err := issuer.Issue(adminID, auth.RoleAdmin)
	if err != nil {
		return err
	}
	s.adminToken = tok

	for i := 0; i < s.config.Users; i++ {
		u := wallet.User{ID: uuid.New(), Name: gofakeit.Name(), Email: fmt.Sprintf("sim-%d-%s", i, gofakeit.Email())}
		if err := a.WalletRepo.CreateUser(ctx, u); err != nil {
			return fmt.Errorf("create patient: %w", err)
		}
		tok, err := issuer.Issue(u.ID)
		if err != nil {
			return err
		}
		s.patients = append(s.patients, patient{ID: u.ID, Token: tok})
	}
	return nil
}

func (s *Simulator) Run(ctx context.Context) {
	s.fan(ctx, len(s.patients), func(ctx context.Context, i int) {
		p := s.patients[i]
		status, _ := s.call(ctx, &s.metrics.Credit, http.MethodPost,
			"/admin/wallets/"+p.ID.String()+"/credits", s.adminToken, "",
			map[string]string{"amount": s.config.Funding, "description": "simulation funding"})
		if status != http.StatusCreated {
			log.Warn().Int("status", status).Str("user_id", p.ID.String()).Msg("funding failed")
		}
	})
	log.Info().Msg("wallets funded")

	s.fan(ctx, len(s.patients)*s.config.BookingsPerUser, func(ctx context.Context, i int) {
		p := s.patients[i%len(s.patients)]
		s.call(ctx, &s.metrics.Booking, http.MethodPost, "/bookings", p.Token, "", map[string]any{
			"doctor_id":        uuid.NewString(),
			"appointment_type": "Emergency",
			"appointment_date": time.Now().AddDate(0, 0, 7+i%30).Format("2006-01-02"),
			"appointment_time": fmt.Sprintf("%02d:%02d", 8+i%10, (i%4)*15),
			"payment_method":   "wallet",
		})
	})
	log.Info().Msg("bookings created")

	pending, err := s.pendingDebits(ctx)
	if err != nil {
		log.Error().Err(err).Msg("list pending debits")
		return
	}
	log.Info().Int("pending", len(pending)).Msg("approval storm starting")

	jobs := make([]wallet.PendingDebit, 0, len(pending)*s.config.Duplicates)
	for _, d := range pending {
		for i := 0; i < s.config.Duplicates; i++ {
			jobs = append(jobs, d)
		}
	}
	rand.Shuffle(len(jobs), func(i, j int) { jobs[i], jobs[j] = jobs[j], jobs[i] })

	s.fan(ctx, len(jobs), func(ctx context.Context, i int) {
		d := jobs[i]
		status, _ := s.call(ctx, &s.metrics.Approve, http.MethodPost, "/admin/debits/process", s.adminToken, uuid.NewString(),
			map[string]string{"user_id": d.User.ID.String(), "transaction_id": d.Transaction.ID, "action": "approve"})
		if status == http.StatusOK {
			s.mu.Lock()
			s.approvals[d.Transaction.ID]++
			s.mu.Unlock()
		}
	})

	s.fan(ctx, len(s.patients), func(ctx context.Context, i int) {
		p := s.patients[i]
		status, body := s.call(ctx, &s.metrics.Reconcile, http.MethodGet, "/admin/wallets/"+p.ID.String()+"/reconcile", s.adminToken, "", nil)
		var rec struct {
			Consistent bool `json:"consistent"`
		}
		if status != http.StatusOK || json.Unmarshal(body, &rec) != nil || !rec.Consistent {
			s.mu.Lock()
			s.drifted = append(s.drifted, p.ID)
			s.mu.Unlock()
		}
	})
}

// fan runs fn for every index in [0, n) on at most Workers goroutines.
func (s *Simulator) fan(ctx context.Context, n int, fn func(ctx context.Context, i int)) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Workers)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			fn(gctx, i)
			return nil
		})
	}
	_ = g.Wait()
}

func (s *Simulator) pendingDebits(ctx context.Context) ([]wallet.PendingDebit, error) {
	status, body := s.call(ctx, nil, http.MethodGet, "/admin/debits/pending", s.adminToken, "", nil)
	if status != http.StatusOK {
		return nil, fmt.Errorf("status %d: %s", status, body)
	}
	var resp struct {
		Debits []wallet.PendingDebit `json:"debits"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}

	ours := make(map[uuid.UUID]bool, len(s.patients))
	for _, p := range s.patients {
		ours[p.ID] = true
	}
	out := resp.Debits[:0]
	for _, d := range resp.Debits {
		if ours[d.User.ID] {
			out = append(out, d)
		}
	}
	return out, nil
}

// call returns status 0 when the request never got a response.
func (s *Simulator) call(ctx context.Context, om *OperationMetrics, method, path, token, idemKey string, body any) (int, []byte) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.config.APIBaseURL+path, reader)
	if err != nil {
		return 0, nil
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	if idemKey != "" {
		req.Header.Set("Idempotency-Key", idemKey)
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	latency := time.Since(start)

	status := 0
	var respBody []byte
	if err == nil {
		status = resp.StatusCode
		respBody, _ = io.ReadAll(resp.Body)
		resp.Body.Close()
	}
	if om != nil {
		om.Record(latency, status)
	}
	return status, respBody
}

func (s *Simulator) PrintReport(elapsed time.Duration) {
	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("SIMULATION REPORT")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Elapsed: %s\n", elapsed.Round(time.Millisecond))
	fmt.Printf("Workers: %d  Users: %d  Bookings/user: %d  Duplicates: %d\n",
		s.config.Workers, s.config.Users, s.config.BookingsPerUser, s.config.Duplicates)
	fmt.Println()

	printOperationReport("Credit", &s.metrics.Credit)
	printOperationReport("Booking", &s.metrics.Booking)
	printOperationReport("Approve", &s.metrics.Approve)
	printOperationReport("Reconcile", &s.metrics.Reconcile)

	doubleApproved := 0
	for txID, n := range s.approvals {
		if n > 1 {
			doubleApproved++
			fmt.Printf("  VIOLATION: debit %s approved %d times\n", txID, n)
		}
	}
	fmt.Printf("Debits approved: %d  approved more than once: %d\n", len(s.approvals), doubleApproved)
	fmt.Printf("Wallets failing reconciliation: %d\n", len(s.drifted))
	for _, id := range s.drifted {
		fmt.Printf("  VIOLATION: wallet %s does not reconcile\n", id)
	}
	if doubleApproved > 0 || len(s.drifted) > 0 {
		os.Exit(1)
	}
}

func printOperationReport(name string, om *OperationMetrics) {
	total := atomic.LoadInt64(&om.Total)
	if total == 0 {
		return
	}

	pct := func(n int64) float64 { return float64(n) / float64(total) * 100 }
	success := atomic.LoadInt64(&om.Success)
	conflict := atomic.LoadInt64(&om.Conflict)
	insufficient := atomic.LoadInt64(&om.Insufficient)
	failed := atomic.LoadInt64(&om.Error)

	avg, min, max, p50, p95 := om.Stats()

	fmt.Printf("%s:\n", name)
	fmt.Printf("  Total: %d\n", total)
	fmt.Printf("  Success: %d (%.1f%%)\n", success, pct(success))
	if conflict > 0 {
		fmt.Printf("  Conflicts: %d (%.1f%%)\n", conflict, pct(conflict))
	}
	if insufficient > 0 {
		fmt.Printf("  Insufficient balance: %d (%.1f%%)\n", insufficient, pct(insufficient))
	}
	if failed > 0 {
		fmt.Printf("  Errors: %d (%.1f%%)\n", failed, pct(failed))
	}
	fmt.Printf("  Latency: avg=%s min=%s max=%s p50=%s p95=%s\n",
		avg.Round(time.Millisecond), min.Round(time.Millisecond), max.Round(time.Millisecond),
		p50.Round(time.Millisecond), p95.Round(time.Millisecond))
	fmt.Println()
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
