package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gumballrun/gumballrun/internal/model"
	"github.com/gumballrun/gumballrun/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface.
//
// Room documents are stored as JSON blobs; every committed write also
// publishes the new snapshot on the room's pub/sub channel, which is what
// backs Watch across processes.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) SaveRoom(ctx context.Context, room *model.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, roomKey(room.ID), data, s.cfg.RoomTTL)
	pipe.Publish(ctx, roomChannel(room.ID), data)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *Storage) GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error) {
	data, err := s.client.Get(ctx, roomKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrRoomNotFound
		}
		return nil, fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}

	var room model.Room
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

// UpdateRoom applies update inside a WATCH/MULTI optimistic transaction, so
// two processes mutating the same room cannot lose each other's writes.
// Errors returned by the update closure propagate to the caller unwrapped;
// transport failures are wrapped as model.ErrStoreUnavailable at their origin.
func (s *Storage) UpdateRoom(ctx context.Context, id model.RoomID, update storage.UpdateFunc) (*model.Room, error) {
	key := roomKey(id)
	var updated *model.Room

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return model.ErrRoomNotFound
			}
			return fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
		}

		var room model.Room
		if err := json.Unmarshal(data, &room); err != nil {
			return err
		}

		if err := update(&room); err != nil {
			return err
		}

		newData, err := json.Marshal(&room)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, newData, s.cfg.RoomTTL)
			pipe.Publish(ctx, roomChannel(id), newData)
			return nil
		})
		if err != nil {
			if errors.Is(err, redis.TxFailedErr) {
				return err
			}
			return fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
		}

		updated = &room
		return nil
	}

	retries := s.cfg.TxRetries
	if retries <= 0 {
		retries = 1
	}
	for i := 0; i < retries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return updated, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			// Another writer got in first; re-read and try again
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("%w: transaction contention on room %s", model.ErrStoreUnavailable, id)
}

func (s *Storage) DeleteRoom(ctx context.Context, id model.RoomID) error {
	if err := s.client.Del(ctx, roomKey(id)).Err(); err != nil {
		return fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *Storage) RoomExists(ctx context.Context, id model.RoomID) (bool, error) {
	exists, err := s.client.Exists(ctx, roomKey(id)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}
	return exists > 0, nil
}

func (s *Storage) ListRooms(ctx context.Context) ([]*model.Room, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, roomKeyPattern(), 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}

	if len(keys) == 0 {
		return []*model.Room{}, nil
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}

	rooms := make([]*model.Room, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue // Room may have expired between SCAN and MGET
		}
		var room model.Room
		if err := json.Unmarshal([]byte(val.(string)), &room); err != nil {
			continue // Skip invalid data
		}
		rooms = append(rooms, &room)
	}

	return rooms, nil
}

// Watch subscribes to every room's snapshot channel and converts published
// documents back into Room values until ctx is cancelled
func (s *Storage) Watch(ctx context.Context) (<-chan *model.Room, error) {
	pubsub := s.client.PSubscribe(ctx, roomChannelPattern())

	// Force the subscription to be established before returning
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}

	out := make(chan *model.Room, 64)
	go func() {
		defer close(out)
		defer func() { _ = pubsub.Close() }()

		msgs := pubsub.Channel()
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var room model.Room
				if err := json.Unmarshal([]byte(msg.Payload), &room); err != nil {
					continue
				}
				select {
				case out <- &room:
				default:
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}
