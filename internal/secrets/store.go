package secrets

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"

	"stowaway/internal/fileutil"
	"stowaway/internal/services"
)

const (
	masterKeySize = 32
	nonceSize     = 24
	hkdfInfo      = "stowaway.credentials.v1"
)

var blobMagic = []byte("STW1")

// Store reads and writes the sealed credential file.
type Store struct {
	keyPath  string
	blobPath string
}

// NewStore returns a store over the given key and credential files.
func NewStore(keyPath, credentialsPath string) *Store {
	return &Store{keyPath: keyPath, blobPath: credentialsPath}
}

// Protect seals plain with the per-user key, creating the key if needed.
func (s *Store) Protect(plain []byte) ([]byte, error) {
	key, err := s.boxKey(true)
	if err != nil {
		return nil, err
	}
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, services.Wrap(services.ErrIO, "secrets", "protect", "read nonce", err)
	}
	out := make([]byte, 0, len(blobMagic)+nonceSize+len(plain)+secretbox.Overhead)
	out = append(out, blobMagic...)
	out = append(out, nonce[:]...)
	return secretbox.Seal(out, plain, &nonce, key), nil
}

// Unprotect opens a blob produced by Protect.
func (s *Store) Unprotect(blob []byte) ([]byte, error) {
	if len(blob) < len(blobMagic)+nonceSize+secretbox.Overhead || !bytes.HasPrefix(blob, blobMagic) {
		return nil, services.Wrap(services.ErrValidation, "secrets", "unprotect", "credential blob is malformed", nil)
	}
	key, err := s.boxKey(false)
	if err != nil {
		return nil, err
	}
	var nonce [nonceSize]byte
	copy(nonce[:], blob[len(blobMagic):])
	plain, ok := secretbox.Open(nil, blob[len(blobMagic)+nonceSize:], &nonce, key)
	if !ok {
		return nil, services.Wrap(services.ErrValidation, "secrets", "unprotect", "credential blob does not match key", nil)
	}
	return plain, nil
}

// SaveCredentials encrypts creds into the credential file.
func (s *Store) SaveCredentials(creds Credentials) error {
	if creds.Port <= 0 {
		creds.Port = DefaultPort
	}
	plain, err := msgpack.Marshal(&creds)
	if err != nil {
		return services.Wrap(services.ErrIO, "secrets", "save", "encode credentials", err)
	}
	blob, err := s.Protect(plain)
	if err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(s.blobPath, blob, 0o600); err != nil {
		return services.Wrap(services.ErrIO, "secrets", "save", "write credential file", err)
	}
	return nil
}

// LoadCredentials decrypts the credential file. A missing file returns an
// error wrapping services.ErrNotFound.
func (s *Store) LoadCredentials() (Credentials, error) {
	blob, err := os.ReadFile(s.blobPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Credentials{}, services.Wrap(services.ErrNotFound, "secrets", "load",
				fmt.Sprintf("no credentials at %s", s.blobPath), nil)
		}
		return Credentials{}, services.Wrap(services.ErrIO, "secrets", "load", "read credential file", err)
	}
	plain, err := s.Unprotect(blob)
	if err != nil {
		return Credentials{}, err
	}
	var creds Credentials
	if err := msgpack.Unmarshal(plain, &creds); err != nil {
		return Credentials{}, services.Wrap(services.ErrValidation, "secrets", "load", "decode credentials", err)
	}
	if creds.Port <= 0 {
		creds.Port = DefaultPort
	}
	return creds, nil
}

// Exists reports whether a credential file is present.
func (s *Store) Exists() bool {
	ok, _ := fileutil.IsRegularFile(s.blobPath)
	return ok
}

func (s *Store) boxKey(create bool) (*[32]byte, error) {
	master, err := s.masterKey(create)
	if err != nil {
		return nil, err
	}
	var key [32]byte
	if _, err := io.ReadFull(hkdf.New(sha256.New, master, nil, []byte(hkdfInfo)), key[:]); err != nil {
		return nil, services.Wrap(services.ErrIO, "secrets", "derive key", "", err)
	}
	return &key, nil
}

func (s *Store) masterKey(create bool) ([]byte, error) {
	info, err := os.Stat(s.keyPath)
	switch {
	case err == nil:
		if info.Mode().Perm()&0o077 != 0 {
			return nil, services.Wrap(services.ErrConfiguration, "secrets", "load key",
				fmt.Sprintf("%s is accessible by other users (mode %o); chmod 600 it", s.keyPath, info.Mode().Perm()), nil)
		}
		key, err := os.ReadFile(s.keyPath)
		if err != nil {
			return nil, services.Wrap(services.ErrIO, "secrets", "load key", "read key file", err)
		}
		if len(key) != masterKeySize {
			return nil, services.Wrap(services.ErrValidation, "secrets", "load key", "key file has wrong length", nil)
		}
		return key, nil
	case errors.Is(err, fs.ErrNotExist):
		if !create {
			return nil, services.Wrap(services.ErrNotFound, "secrets", "load key",
				fmt.Sprintf("no key at %s", s.keyPath), nil)
		}
	default:
		return nil, services.Wrap(services.ErrIO, "secrets", "load key", "stat key file", err)
	}

	key := make([]byte, masterKeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, services.Wrap(services.ErrIO, "secrets", "create key", "read random", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.keyPath), 0o700); err != nil {
		return nil, services.Wrap(services.ErrIO, "secrets", "create key", "create key directory", err)
	}
	if err := fileutil.WriteFileAtomic(s.keyPath, key, 0o600); err != nil {
		return nil, services.Wrap(services.ErrIO, "secrets", "create key", "write key file", err)
	}
	return key, nil
}
