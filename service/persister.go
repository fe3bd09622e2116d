package service

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
)

// WalletWriter is the storage call the persister retries
type WalletWriter interface {
	UpsertWallet(ctx context.Context, userID int64, wallet int64) error
}

// PersisterConfig tunes the write-behind worker pool
type PersisterConfig struct {
	Workers         int           // Number of shards, each drained by one goroutine
	QueueSize       int           // Buffered jobs per shard
	Timeout         time.Duration // Budget for one job including retries
	MaxRetries      uint64
	InitialInterval time.Duration
	BlockedWarn     time.Duration // How often a caller stuck on a full shard logs
}

// DefaultPersisterConfig returns the production tuning
func DefaultPersisterConfig() PersisterConfig {
	return PersisterConfig{
		Workers:         4,
		QueueSize:       1024,
		Timeout:         10 * time.Second,
		MaxRetries:      5,
		InitialInterval: 100 * time.Millisecond,
		BlockedWarn:     5 * time.Second,
	}
}

type persistJob struct {
	userID int64
	wallet int64
	done   chan struct{} // Set for flush barriers, which carry no write
}

// Persister applies wallet upserts in the background.
// Jobs are sharded by user id so writes for one user land in enqueue order.
type Persister struct {
	writer  WalletWriter
	metrics MetricsRecorder
	config  PersisterConfig
	shards  []chan persistJob

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewPersister starts the worker pool
func NewPersister(writer WalletWriter, metrics MetricsRecorder, config PersisterConfig) *Persister {
	defaults := DefaultPersisterConfig()
	if config.Workers <= 0 {
		config.Workers = defaults.Workers
	}
	if config.QueueSize <= 0 {
		config.QueueSize = defaults.QueueSize
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}
	if config.InitialInterval <= 0 {
		config.InitialInterval = defaults.InitialInterval
	}
	if config.BlockedWarn <= 0 {
		config.BlockedWarn = defaults.BlockedWarn
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}

	p := &Persister{
		writer:  writer,
		metrics: metrics,
		config:  config,
		shards:  make([]chan persistJob, config.Workers),
	}

	for i := range p.shards {
		p.shards[i] = make(chan persistJob, config.QueueSize)
		p.wg.Add(1)
		go p.run(i, p.shards[i])
	}

	log.WithFields(log.Fields{
		"workers":   config.Workers,
		"queueSize": config.QueueSize,
	}).Info("Write-behind persister started")

	return p
}

// Enqueue schedules an upsert. When the user's shard is full the call waits
// for room so no write is dropped, counting the stall and logging while it lasts.
func (p *Persister) Enqueue(userID int64, wallet int64) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	job := persistJob{userID: userID, wallet: wallet}

	if p.closed {
		// Shutting down, write inline so the value is not lost
		p.persist(job)
		return
	}

	shard := p.shardFor(userID)
	select {
	case shard <- job:
		return
	default:
	}

	p.metrics.RecordPersistBlocked(context.Background())
	started := time.Now()
	ticker := time.NewTicker(p.config.BlockedWarn)
	defer ticker.Stop()

	log.WithFields(log.Fields{
		"userID": userID,
		"queued": len(shard),
	}).Warn("Write-behind queue full, waiting for room")

	for {
		select {
		case shard <- job:
			return
		case <-ticker.C:
			log.WithFields(log.Fields{
				"userID": userID,
				"queued": len(shard),
				"waited": time.Since(started).Round(time.Millisecond),
			}).Warn("Still waiting on full write-behind queue")
		}
	}
}

// Flush blocks until every job enqueued for the user before the call has run
func (p *Persister) Flush(ctx context.Context, userID int64) error {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return nil
	}

	barrier := persistJob{userID: userID, done: make(chan struct{})}
	select {
	case p.shardFor(userID) <- barrier:
	case <-ctx.Done():
		p.mu.RUnlock()
		return ctx.Err()
	}
	p.mu.RUnlock()

	select {
	case <-barrier.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting queued work and waits for every shard to drain
func (p *Persister) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	for _, shard := range p.shards {
		close(shard)
	}
	p.mu.Unlock()

	p.wg.Wait()
	log.Info("Write-behind persister drained")
}

func (p *Persister) shardFor(userID int64) chan persistJob {
	idx := userID % int64(len(p.shards))
	if idx < 0 {
		idx = -idx
	}
	return p.shards[idx]
}

func (p *Persister) run(index int, jobs <-chan persistJob) {
	defer p.wg.Done()

	for job := range jobs {
		if job.done != nil {
			close(job.done)
			continue
		}
		p.persistRecovered(index, job)
	}
}

// persistRecovered keeps a panicking write from killing the shard's worker
func (p *Persister) persistRecovered(index int, job persistJob) {
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(log.Fields{
				"shard":  index,
				"userID": job.userID,
				"panic":  r,
			}).Error("Write-behind job panicked")
		}
	}()
	p.persist(job)
}

func (p *Persister) persist(job persistJob) {
	// Detached from any request so a finished command cannot cancel the write
	ctx, cancel := context.WithTimeout(context.Background(), p.config.Timeout)
	defer cancel()

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = p.config.InitialInterval
	policy.MaxElapsedTime = p.config.Timeout

	attempts := 0
	err := backoff.Retry(func() error {
		attempts++
		return p.writer.UpsertWallet(ctx, job.userID, job.wallet)
	}, backoff.WithContext(backoff.WithMaxRetries(policy, p.config.MaxRetries), ctx))

	if err != nil {
		p.metrics.RecordPersist(ctx, false)
		log.WithFields(log.Fields{
			"userID":   job.userID,
			"wallet":   job.wallet,
			"attempts": attempts,
			"error":    err,
		}).Error("Failed to persist wallet")
		return
	}

	p.metrics.RecordPersist(ctx, true)
}

type noopMetrics struct{}

func (noopMetrics) RecordCacheLookup(context.Context, string, bool) {}

func (noopMetrics) RecordPersist(context.Context, bool) {}

func (noopMetrics) RecordPersistBlocked(context.Context) {}
