package absence

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
)

// LeaseKey is the Redis key guarding scheduled sweeps across instances.
const LeaseKey = "lease:absence-sweep"

// Locker hands out a short exclusive lease.  ok is false when another
// holder owns it.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(context.Context), ok bool, err error)
}

// RedisLocker implements Locker with SET NX and a token-checked delete.
type RedisLocker struct {
	rdb *redis.Client
}

func NewRedisLocker(rdb *redis.Client) *RedisLocker { return &RedisLocker{rdb: rdb} }

var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
    return redis.call('DEL', KEYS[1])
end
return 0
`)

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context), bool, error) {
	token := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, key, token, ttl).Result()
	if err != nil || !ok {
		return nil, false, err
	}
	release := func(ctx context.Context) {
		_ = releaseScript.Run(ctx, l.rdb, []string{key}, token).Err()
	}
	return release, true, nil
}

// Job is the work performed on each tick.
type Job func(ctx context.Context) error

// Scheduler runs a Job on a cron schedule.  Overlapping ticks within one
// process are skipped; across processes the lease decides.
type Scheduler struct {
	cron    *cron.Cron
	job     Job
	locker  Locker
	lockTTL time.Duration
	timeout time.Duration
	log     *slog.Logger
}

// NewScheduler validates spec and registers the job.  spec is read in loc
// (UTC when nil).  A nil locker runs every tick unguarded.
func NewScheduler(spec string, loc *time.Location, job Job, locker Locker, lockTTL time.Duration, log *slog.Logger) (*Scheduler, error) {
	if job == nil {
		return nil, errors.New("absence: nil job")
	}
	if log == nil {
		log = slog.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	s := &Scheduler{
		cron:    cron.New(cron.WithLocation(loc), cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		job:     job,
		locker:  locker,
		lockTTL: lockTTL,
		timeout: 4 * time.Minute,
		log:     log,
	}
	if _, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if _, err := s.RunOnce(ctx); err != nil {
			s.log.Error("absence sweep failed", "error", err)
		}
	}); err != nil {
		return nil, err
	}
	return s, nil
}

// RunOnce takes the lease and runs the job.  ran is false when another
// instance holds the lease.
func (s *Scheduler) RunOnce(ctx context.Context) (ran bool, err error) {
	if s.locker != nil {
		release, ok, err := s.locker.Acquire(ctx, LeaseKey, s.lockTTL)
		if err != nil {
			return false, err
		}
		if !ok {
			s.log.Debug("absence sweep skipped, lease held elsewhere")
			return false, nil
		}
		defer release(context.Background())
	}
	return true, s.job(ctx)
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("absence sweep scheduled", "entries", len(s.cron.Entries()))
}

// Stop halts the schedule and waits for a running job to finish or ctx to
// expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}
