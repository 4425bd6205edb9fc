package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/iwvelando/home-affordability/internal/config"
	"github.com/iwvelando/home-affordability/pkg/constants"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Store loads and saves the form record.
type Store interface {
	Load(ctx context.Context) (Form, error)
	Save(ctx context.Context, form Form) error
}

// NewStore builds the Store selected by the configuration.
func NewStore(logger *zap.Logger, cfg config.StateConfig) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	key := cfg.Key
	if key == "" {
		key = constants.DefaultStateKey
	}

	switch cfg.Backend {
	case constants.StateBackendFile, "":
		path := cfg.Path
		if path == "" {
			path = constants.DefaultStatePath
		}
		return NewFileStore(logger, path), nil
	case constants.StateBackendRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		return NewRedisStore(logger, client, key), nil
	case constants.StateBackendNone:
		return NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown state backend %q", cfg.Backend)
}

func decodeForm(data []byte) (Form, error) {
	form := DefaultForm()
	if err := json.Unmarshal(data, &form); err != nil {
		return Form{}, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	return form, nil
}

// FileStore keeps the form record in a JSON file.
type FileStore struct {
	path   string
	logger *zap.Logger
}

// NewFileStore returns a FileStore writing to path.
func NewFileStore(logger *zap.Logger, path string) *FileStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStore{path: path, logger: logger}
}

// Load reads the record, returning DefaultForm when the file does not exist.
func (s *FileStore) Load(_ context.Context) (Form, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultForm(), nil
		}
		return Form{}, fmt.Errorf("failed to read form state: %w", err)
	}
	return decodeForm(data)
}

// Save writes the record to a temporary file and renames it into place.
func (s *FileStore) Save(_ context.Context, form Form) error {
	data, err := json.MarshalIndent(form, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode form state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write form state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write form state: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace form state: %w", err)
	}

	s.logger.Debug("form state saved",
		zap.String("op", "state.FileStore.Save"),
		zap.String("path", s.path),
	)
	return nil
}

// RedisStore keeps the form record as a JSON string under a single key.
type RedisStore struct {
	client *redis.Client
	key    string
	logger *zap.Logger
}

// NewRedisStore returns a RedisStore using client.
func NewRedisStore(logger *zap.Logger, client *redis.Client, key string) *RedisStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{client: client, key: key, logger: logger}
}

// Load reads the record, returning DefaultForm when the key is absent.
func (s *RedisStore) Load(ctx context.Context) (Form, error) {
	val, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return DefaultForm(), nil
		}
		return Form{}, fmt.Errorf("failed to read form state: %w", err)
	}
	return decodeForm(val)
}

// Save stores the record without expiry.
func (s *RedisStore) Save(ctx context.Context, form Form) error {
	data, err := json.Marshal(form)
	if err != nil {
		return fmt.Errorf("failed to encode form state: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write form state: %w", err)
	}
	s.logger.Debug("form state saved",
		zap.String("op", "state.RedisStore.Save"),
		zap.String("key", s.key),
	)
	return nil
}

// Close releases the redis connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
