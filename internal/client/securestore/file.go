package securestore

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/argon2"

	"github.com/sidereal-app/sidereal/internal/common"
)

const (
	slotFileName   = "credential.bin"
	secretFileName = "device.key"

	secretSize = 32
	saltSize   = 16
	nonceSize  = 12
)

// argon2id parameters for deriving the sealing key from the device secret.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
)

var errCorruptSlot = errors.New("credential slot is corrupt")

// FileStore is the portable Store backend: the credential is sealed with
// AES-GCM under a key derived (argon2id) from a random per-device secret.
// The secret and the slot live in dir with 0600 permissions. On platforms
// with a real keystore the same interface is backed by that instead; this
// backend is the lowest common denominator.
type FileStore struct {
	mu       sync.Mutex
	slotPath string
	secret   []byte
	salt     []byte
}

// NewFileStore opens (or initializes) the credential slot under dir.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("secure store dir: %w", err)
	}

	s := &FileStore{slotPath: filepath.Join(dir, slotFileName)}
	if err := s.loadOrCreateSecret(filepath.Join(dir, secretFileName)); err != nil {
		return nil, err
	}
	return s, nil
}

// loadOrCreateSecret reads the device secret file (secret||salt) or creates
// a fresh one on first run.
func (s *FileStore) loadOrCreateSecret(path string) error {
	data, err := os.ReadFile(path)
	if err == nil {
		if len(data) != secretSize+saltSize {
			return errCorruptSlot
		}
		s.secret = data[:secretSize]
		s.salt = data[secretSize:]
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("device secret: %w", err)
	}

	s.secret = common.GenerateRandByteArray(secretSize)
	s.salt = common.GenerateRandByteArray(saltSize)
	if err := os.WriteFile(path, append(append([]byte{}, s.secret...), s.salt...), 0o600); err != nil {
		return fmt.Errorf("device secret: %w", err)
	}
	return nil
}

func (s *FileStore) sealingKey() []byte {
	return argon2.IDKey(s.secret, s.salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

// Put seals token and replaces the slot file. The old slot is removed first;
// there is no merge path.
func (s *FileStore) Put(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := s.sealingKey()
	defer common.WipeByteArray(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return fmt.Errorf("seal credential: %w", err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return fmt.Errorf("seal credential: %w", err)
	}

	nonce := common.GenerateRandByteArray(nonceSize)
	sealed := aesgcm.Seal(nil, nonce, []byte(token), nil)

	if err := os.Remove(s.slotPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("replace credential slot: %w", err)
	}
	if err := os.WriteFile(s.slotPath, append(nonce, sealed...), 0o600); err != nil {
		return fmt.Errorf("write credential slot: %w", err)
	}
	return nil
}

// Get opens the slot and returns the token, or "" when the slot is empty.
func (s *FileStore) Get() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.slotPath)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read credential slot: %w", err)
	}
	if len(data) <= nonceSize {
		return "", errCorruptSlot
	}

	key := s.sealingKey()
	defer common.WipeByteArray(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("open credential slot: %w", err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("open credential slot: %w", err)
	}

	plaintext, err := aesgcm.Open(nil, data[:nonceSize], data[nonceSize:], nil)
	if err != nil {
		return "", errCorruptSlot
	}
	return string(plaintext), nil
}

// Delete removes the slot; deleting an absent slot is a no-op.
func (s *FileStore) Delete() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.slotPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete credential slot: %w", err)
	}
	return nil
}
