package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"

	"mealplan-auth/app/config"
	"mealplan-auth/app/domain"
)

// Connection pool configuration constants
const (
	maxConns        = int32(25)
	minConns        = int32(5)
	maxConnLifetime = time.Hour
	maxConnIdleTime = 30 * time.Minute

	connectTimeout = 30 * time.Second
	pingTimeout    = 5 * time.Second
	queryTimeout   = 10 * time.Second
)

// State represents the supervisor's connection state
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

// String returns the state name
func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// DialFunc establishes a connection to the credential store
type DialFunc func(ctx context.Context) (Pool, error)

// Supervisor owns the lifecycle of the credential store connection.
// Request-handling code reads through it to issue store queries; only
// the supervisor itself mutates connection state. A fault schedules
// exactly one reconnect attempt after a fixed delay; concurrent fault
// signals while an attempt is pending are de-duplicated.
type Supervisor struct {
	dial           DialFunc
	retryDelay     time.Duration
	healthInterval time.Duration
	logger         *slog.Logger

	mu               sync.RWMutex
	pool             Pool
	state            State
	reconnectPending bool

	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewSupervisor creates a supervisor that dials the store configured in cfg
func NewSupervisor(cfg *config.Config, logger *slog.Logger) *Supervisor {
	return NewSupervisorWithDial(defaultDial(cfg), cfg.StoreRetryDelay, cfg.StoreHealthInterval, logger)
}

// NewSupervisorWithDial creates a supervisor with a custom dial function.
// Used directly in tests.
func NewSupervisorWithDial(dial DialFunc, retryDelay, healthInterval time.Duration, logger *slog.Logger) *Supervisor {
	return &Supervisor{
		dial:           dial,
		retryDelay:     retryDelay,
		healthInterval: healthInterval,
		logger:         logger.With("component", "store_supervisor"),
		state:          StateDisconnected,
		done:           make(chan struct{}),
	}
}

// Start attempts the initial connection and launches the health watcher.
// A startup connection failure is returned to the caller: the process
// treats it as fatal in development but keeps running in production,
// where ScheduleReconnect re-establishes the connection in the
// background.
func (s *Supervisor) Start(ctx context.Context) error {
	s.wg.Add(1)
	go s.watch()

	if err := s.connect(ctx); err != nil {
		return fmt.Errorf("initial store connection failed: %w", err)
	}
	return nil
}

// State returns the current connection state
func (s *Supervisor) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Ready reports whether the store connection is usable
func (s *Supervisor) Ready() bool {
	return s.State() == StateConnected
}

// StateName returns the connection state as a string for readiness
// reporting
func (s *Supervisor) StateName() string {
	return s.State().String()
}

// HealthCheck pings the live connection
func (s *Supervisor) HealthCheck(ctx context.Context) error {
	s.mu.RLock()
	pool := s.pool
	s.mu.RUnlock()

	if pool == nil {
		return domain.ErrStoreUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return pool.Ping(ctx)
}

// NotifyFault signals that the store connection was observed to be
// broken. It tears down the current connection and schedules a single
// reconnect attempt; redundant signals while one is pending are ignored.
func (s *Supervisor) NotifyFault(err error) {
	s.mu.Lock()
	if s.state == StateConnected {
		if s.pool != nil {
			s.pool.Close()
			s.pool = nil
		}
		s.state = StateDisconnected
		s.logger.Warn("store connection lost", "error", err)
	}
	s.mu.Unlock()

	s.ScheduleReconnect()
}

// ScheduleReconnect schedules one background reconnect attempt after the
// retry delay. Calls while an attempt is already pending are no-ops.
func (s *Supervisor) ScheduleReconnect() {
	s.mu.Lock()
	if s.reconnectPending {
		s.mu.Unlock()
		return
	}
	s.reconnectPending = true
	s.mu.Unlock()

	s.logger.Info("store reconnect scheduled", "delay", s.retryDelay)

	s.wg.Add(1)
	go s.reconnect()
}

// Close tears the supervisor down and releases the connection
func (s *Supervisor) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.wg.Wait()

		s.mu.Lock()
		if s.pool != nil {
			s.pool.Close()
			s.pool = nil
		}
		s.state = StateDisconnected
		s.mu.Unlock()

		s.logger.Info("store connection closed")
	})
}

// Exec runs a statement through the live connection, bounded by
// queryTimeout
func (s *Supervisor) Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error) {
	pool, err := s.livePool()
	if err != nil {
		return pgconn.CommandTag{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return pool.Exec(ctx, sql, arguments...)
}

// Query runs a query through the live connection, bounded by
// queryTimeout. The deadline covers row iteration; it is released when
// the caller closes the rows.
func (s *Supervisor) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	pool, err := s.livePool()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	rows, err := pool.Query(ctx, sql, args...)
	if err != nil {
		cancel()
		return nil, err
	}
	return timedRows{Rows: rows, cancel: cancel}, nil
}

// QueryRow runs a single-row query through the live connection, bounded
// by queryTimeout. When the connection is down the returned row fails
// with ErrStoreUnavailable.
func (s *Supervisor) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	pool, err := s.livePool()
	if err != nil {
		return errRow{err: err}
	}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	return timedRow{row: pool.QueryRow(ctx, sql, args...), cancel: cancel}
}

// connect dials the store and installs the new pool on success
func (s *Supervisor) connect(ctx context.Context) error {
	s.mu.Lock()
	s.state = StateConnecting
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := s.dial(ctx)
	if err != nil {
		s.mu.Lock()
		s.state = StateDisconnected
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.pool = pool
	s.state = StateConnected
	// Cleared under the same lock that installs the pool, so a fault
	// raised against the new connection always schedules a fresh
	// reconnect attempt.
	s.reconnectPending = false
	s.mu.Unlock()

	s.logger.Info("store connection established")
	return nil
}

// reconnect runs the single pending reconnect attempt. It keeps retrying
// at the fixed delay until the connection is back or the supervisor
// shuts down; the pending flag stays set for the whole attempt so no
// second attempt can be in flight.
func (s *Supervisor) reconnect() {
	defer s.wg.Done()

	select {
	case <-time.After(s.retryDelay):
	case <-s.done:
		s.clearReconnectPending()
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-s.done:
			cancel()
		case <-ctx.Done():
		}
	}()

	backoff := retry.NewConstant(s.retryDelay)
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := s.connect(ctx); err != nil {
			s.logger.Warn("store reconnect attempt failed", "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		// Shutdown or give-up: connect never installed a pool, so the
		// flag is still set and must be released here.
		s.clearReconnectPending()
		if ctx.Err() == nil {
			s.logger.Error("store reconnect gave up", "error", err)
		}
	}
}

func (s *Supervisor) clearReconnectPending() {
	s.mu.Lock()
	s.reconnectPending = false
	s.mu.Unlock()
}

// watch periodically pings the live connection and raises a fault when
// the ping fails
func (s *Supervisor) watch() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.healthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			if s.State() != StateConnected {
				continue
			}
			if err := s.HealthCheck(context.Background()); err != nil {
				s.NotifyFault(err)
			}
		}
	}
}

// livePool returns the current pool or ErrStoreUnavailable
func (s *Supervisor) livePool() (Pool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != StateConnected || s.pool == nil {
		return nil, domain.ErrStoreUnavailable
	}
	return s.pool, nil
}

// defaultDial builds the production dial function over a pgx pool
func defaultDial(cfg *config.Config) DialFunc {
	return func(ctx context.Context) (Pool, error) {
		poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse database config: %w", err)
		}

		poolConfig.MaxConns = maxConns
		poolConfig.MinConns = minConns
		poolConfig.MaxConnLifetime = maxConnLifetime
		poolConfig.MaxConnIdleTime = maxConnIdleTime

		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create connection pool: %w", err)
		}

		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}

		return pool, nil
	}
}
