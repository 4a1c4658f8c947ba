package settings

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// EncryptedPrefix marks a stored key value as ciphertext. Values without it
// are legacy plaintext.
const EncryptedPrefix = "scenc:"

// Key purposes, bound to the ciphertext so the two keys cannot be swapped.
const (
	purposeReadKey   = "read_key"
	purposeIngestKey = "ingest_key"
)

// ErrUndecryptable is returned when a stored key cannot be decrypted, usually
// because the site secret changed. Resetting the settings recovers.
var ErrUndecryptable = errors.New("settings: stored key cannot be decrypted")

// Cipher encrypts and decrypts option values.
type Cipher interface {
	EncryptString(ctx context.Context, purpose, plaintext string) (string, error)
	DecryptString(ctx context.Context, purpose, ciphertext string) (string, error)
}

// Service loads and saves Options through an OptionStore. Loaded options are
// cached until the next write or Invalidate.
type Service struct {
	store  OptionStore
	cipher Cipher
	log    *logrus.Logger

	group   singleflight.Group
	writeMu sync.Mutex

	mu     sync.RWMutex
	cached *Options
	gen    uint64
}

// NewService creates a settings service.
func NewService(store OptionStore, cipher Cipher, log *logrus.Logger) *Service {
	return &Service{store: store, cipher: cipher, log: log}
}

// Load returns the current options with keys decrypted. Concurrent callers
// share one store read.
func (s *Service) Load(ctx context.Context) (Options, error) {
	if opts, ok := s.fromCache(); ok {
		return opts, nil
	}
	gen := s.generation()

	v, err, _ := s.group.Do(OptionName, func() (any, error) {
		opts, raw, legacy, err := s.load(ctx)
		if err != nil {
			return Options{}, err
		}
		if legacy {
			s.migrate(ctx, raw, opts)
		}
		s.remember(opts, gen)
		return opts, nil
	})
	if err != nil {
		return Options{}, err
	}
	return v.(Options), nil
}

func (s *Service) fromCache() (Options, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cached == nil {
		return Options{}, false
	}
	return *s.cached, true
}

func (s *Service) generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

// load reads and decrypts the stored options. It returns the raw stored bytes
// and whether any key was legacy plaintext. It never writes.
func (s *Service) load(ctx context.Context) (Options, []byte, bool, error) {
	raw, err := s.store.Get(ctx, OptionName)
	if errors.Is(err, ErrNotFound) {
		return Defaults(), nil, false, nil
	}
	if err != nil {
		return Options{}, nil, false, fmt.Errorf("loading settings: %w", err)
	}

	var stored Options
	if err := json.Unmarshal(raw, &stored); err != nil {
		return Options{}, nil, false, fmt.Errorf("decoding settings: %w", err)
	}

	opts := stored.WithDefaults()
	legacy := false

	for _, f := range []struct {
		purpose string
		value   *string
	}{
		{purposeReadKey, &opts.ReadKey},
		{purposeIngestKey, &opts.IngestKey},
	} {
		plain, wasLegacy, err := s.decryptKey(ctx, f.purpose, *f.value)
		if err != nil {
			return Options{}, nil, false, err
		}
		*f.value = plain
		legacy = legacy || wasLegacy
	}

	return opts, raw, legacy, nil
}

// migrate rewrites legacy plaintext keys encrypted. It runs under writeMu and
// only when the store still holds raw, so a concurrent Save is never undone.
func (s *Service) migrate(ctx context.Context, raw []byte, opts Options) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	current, err := s.store.Get(ctx, OptionName)
	if err != nil || !bytes.Equal(current, raw) {
		s.log.Debug("settings changed since read, skipping legacy key migration")
		return
	}

	if err := s.write(ctx, opts); err != nil {
		s.log.WithError(err).Warn("failed to encrypt legacy plaintext keys")
		return
	}
	s.log.Info("encrypted legacy plaintext keys in place")
}

// decryptKey returns the plaintext for a stored key and whether it was legacy
// plaintext.
func (s *Service) decryptKey(ctx context.Context, purpose, stored string) (string, bool, error) {
	if stored == "" {
		return "", false, nil
	}
	if !strings.HasPrefix(stored, EncryptedPrefix) {
		return stored, true, nil
	}

	plain, err := s.cipher.DecryptString(ctx, purpose, strings.TrimPrefix(stored, EncryptedPrefix))
	if err != nil {
		s.log.WithError(err).WithField("field", purpose).Error("stored key cannot be decrypted")
		return "", false, fmt.Errorf("%w: %s", ErrUndecryptable, purpose)
	}
	return plain, false, nil
}

// Save validates and stores opts, replacing whatever was stored.
func (s *Service) Save(ctx context.Context, opts Options) (Options, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	return s.save(ctx, opts)
}

func (s *Service) save(ctx context.Context, opts Options) (Options, error) {
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}

	if err := s.write(ctx, opts); err != nil {
		return Options{}, err
	}

	s.mu.Lock()
	s.gen++
	s.cached = &opts
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"endpoint_url": opts.EndpointURL,
		"index_id":     opts.IndexID,
		"configured":   opts.Configured(),
	}).Info("settings saved")

	return opts, nil
}

// Update merges u into the stored options and saves the result.
func (s *Service) Update(ctx context.Context, u Update) (Options, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	// Not Load: a legacy migration would need writeMu, and save re-encrypts
	// every key anyway.
	current, ok := s.fromCache()
	if !ok {
		var err error
		if current, _, _, err = s.load(ctx); err != nil {
			return Options{}, err
		}
	}

	return s.save(ctx, u.Apply(current))
}

// Reset deletes the stored options. Subsequent loads return Defaults.
func (s *Service) Reset(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.store.Delete(ctx, OptionName); err != nil {
		return fmt.Errorf("resetting settings: %w", err)
	}

	s.Invalidate()
	s.log.Info("settings reset")

	return nil
}

// Invalidate drops the cached options so the next Load reads the store.
func (s *Service) Invalidate() {
	s.mu.Lock()
	s.gen++
	s.cached = nil
	s.mu.Unlock()
}

// Ping checks the underlying store.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// remember caches opts unless a write happened since gen was read.
func (s *Service) remember(opts Options, gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen == gen {
		s.cached = &opts
	}
}

// write encrypts the keys of opts and stores it.
func (s *Service) write(ctx context.Context, opts Options) error {
	var err error
	if opts.ReadKey, err = s.encryptKey(ctx, purposeReadKey, opts.ReadKey); err != nil {
		return err
	}
	if opts.IngestKey, err = s.encryptKey(ctx, purposeIngestKey, opts.IngestKey); err != nil {
		return err
	}

	raw, err := json.Marshal(opts)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}

	if err := s.store.Set(ctx, OptionName, raw); err != nil {
		return fmt.Errorf("storing settings: %w", err)
	}
	return nil
}

func (s *Service) encryptKey(ctx context.Context, purpose, plain string) (string, error) {
	if plain == "" {
		return "", nil
	}
	ct, err := s.cipher.EncryptString(ctx, purpose, plain)
	if err != nil {
		return "", fmt.Errorf("encrypting %s: %w", purpose, err)
	}
	return EncryptedPrefix + ct, nil
}
