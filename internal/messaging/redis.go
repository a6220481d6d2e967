package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"otp-lock/internal/logger"
	"otp-lock/internal/types"

	"github.com/redis/go-redis/v9"
)

const (
	// StateHash holds the published lock state; updates are announced on the
	// channel of the same name with the changed field as payload.
	StateHash = "otp-lock"

	// RequestList receives remote commands via LPUSH.
	RequestList = "otp-lock:request"

	fieldState       = "state"
	fieldLastOutcome = "last-outcome"
)

type Callbacks struct {
	RequestCallback func() error // "unlock" pushed to RequestList
}

type RedisClient struct {
	client    *redis.Client
	callbacks Callbacks
	logger    *logger.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

func NewRedisClient(host string, port int, l *logger.Logger) *RedisClient {
	ctx, cancel := context.WithCancel(context.Background())
	return &RedisClient{
		client: redis.NewClient(&redis.Options{
			Addr: fmt.Sprintf("%s:%d", host, port),
			DB:   0,
		}),
		logger: l.WithTag("Redis"),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (r *RedisClient) SetCallbacks(callbacks Callbacks) {
	r.callbacks = callbacks
}

func (r *RedisClient) Connect() error {
	r.logger.Infof("Attempting to connect to Redis at %s", r.client.Options().Addr)

	if err := r.client.Ping(r.ctx).Err(); err != nil {
		r.logger.Errorf("Redis connection failed: %v", err)
		return fmt.Errorf("redis connection failed: %w", err)
	}
	r.logger.Infof("Successfully connected to Redis")
	return nil
}

// StartListening starts the command listener after system initialization is complete
func (r *RedisClient) StartListening() error {
	r.logger.Infof("Starting Redis listeners")

	r.wg.Add(1)
	go r.listCommandListener(RequestList, r.handleRequestCommand)

	return nil
}

func (r *RedisClient) listCommandListener(key string, handler func(string) error) {
	defer r.wg.Done()
	r.logger.Infof("Starting list command listener for %s", key)

	for {
		select {
		case <-r.ctx.Done():
			r.logger.Infof("Context cancelled, exiting %s listener", key)
			return
		default:
			// Use BRPOP with a short timeout to allow periodic context cancellation checks
			result, err := r.client.BRPop(r.ctx, 5*time.Second, key).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) {
					continue
				}
				if errors.Is(err, context.Canceled) {
					r.logger.Infof("Context cancelled, exiting %s listener", key)
					return
				}
				r.logger.Warnf("Error reading from %s list: %v", key, err)
				time.Sleep(time.Second)
				continue
			}

			if len(result) >= 2 { // BRPOP returns [key, value]
				value := result[1]
				r.logger.Debugf("Received command from %s: %s", key, value)
				if err := handler(value); err != nil {
					r.logger.Warnf("Error handling %s command: %v", key, err)
				}
			}
		}
	}
}

func (r *RedisClient) handleRequestCommand(value string) error {
	if r.callbacks.RequestCallback == nil {
		return nil
	}
	switch value {
	case "unlock":
		return r.callbacks.RequestCallback()
	default:
		return fmt.Errorf("invalid request command: %s", value)
	}
}

// publishHashSet atomically updates a hash field and publishes a notification
func (r *RedisClient) publishHashSet(hash, field string, value interface{}) error {
	pipe := r.client.TxPipeline()
	pipe.HSet(r.ctx, hash, field, value)
	pipe.Publish(r.ctx, hash, field)
	_, err := pipe.Exec(r.ctx)
	return err
}

func (r *RedisClient) PublishLockState(state types.LockState) error {
	r.logger.Debugf("Publishing lock state: %s", state)
	if err := r.publishHashSet(StateHash, fieldState, string(state)); err != nil {
		return fmt.Errorf("failed to publish lock state: %w", err)
	}
	return nil
}

func (r *RedisClient) PublishCycleOutcome(outcome types.CycleOutcome) error {
	r.logger.Debugf("Publishing cycle outcome: %s", outcome)
	if err := r.publishHashSet(StateHash, fieldLastOutcome, string(outcome)); err != nil {
		return fmt.Errorf("failed to publish cycle outcome: %w", err)
	}
	return nil
}

func (r *RedisClient) Close() error {
	r.cancel()
	r.wg.Wait()
	return r.client.Close()
}
