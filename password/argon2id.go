package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const argon2idPrefix = "$argon2id$"

// Upper bounds accepted from a stored hash. A row carrying larger values is
// treated as corrupt rather than allowed to pin CPU or memory on every login.
const (
	maxArgon2Memory      = 1 << 20 // KiB, 1 GiB
	maxArgon2Time        = 16
	maxArgon2Parallelism = 64
	maxArgon2SaltLen     = 64
	maxArgon2KeyLen      = 128
)

// Argon2Params are the argon2id cost parameters written into each hash.
type Argon2Params struct {
	Memory      uint32 // KiB
	Time        uint32
	Parallelism uint8
	SaltLen     uint32
	KeyLen      uint32
}

// DefaultArgon2Params is used for new argon2id hashes.
var DefaultArgon2Params = Argon2Params{Memory: 64 * 1024, Time: 3, Parallelism: 1, SaltLen: 16, KeyLen: 32}

type argon2idHasher struct {
	params Argon2Params
}

// NewArgon2idHasher returns a hasher emitting PHC strings of the form
// $argon2id$v=19$m=<KiB>,t=<iterations>,p=<lanes>$<salt>$<key>.
func NewArgon2idHasher(p Argon2Params) Hasher {
	return argon2idHasher{params: p}
}

func (h argon2idHasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", errors.New("empty password")
	}
	salt := make([]byte, h.params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("read salt: %w", err)
	}
	key := argon2.IDKey([]byte(plaintext), salt, h.params.Time, h.params.Memory, h.params.Parallelism, h.params.KeyLen)
	return fmt.Sprintf("%sv=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2idPrefix, argon2.Version,
		h.params.Memory, h.params.Time, h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func (argon2idHasher) Verify(plaintext, storedHash string) (bool, error) {
	p, salt, key, err := decodeArgon2id(storedHash)
	if err != nil {
		return false, err
	}
	other := argon2.IDKey([]byte(plaintext), salt, p.Time, p.Memory, p.Parallelism, uint32(len(key)))
	return subtle.ConstantTimeCompare(key, other) == 1, nil
}

func decodeArgon2id(s string) (Argon2Params, []byte, []byte, error) {
	var p Argon2Params
	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, key
	parts := strings.Split(s, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return p, nil, nil, ErrCorruptCredential
	}
	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return p, nil, nil, fmt.Errorf("%w: unsupported argon2 version", ErrCorruptCredential)
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Parallelism); err != nil {
		return p, nil, nil, fmt.Errorf("%w: bad argon2 parameters", ErrCorruptCredential)
	}
	if p.Memory == 0 || p.Time == 0 || p.Parallelism == 0 {
		return p, nil, nil, fmt.Errorf("%w: zero argon2 parameter", ErrCorruptCredential)
	}
	if p.Memory > maxArgon2Memory || p.Time > maxArgon2Time || p.Parallelism > maxArgon2Parallelism {
		return p, nil, nil, fmt.Errorf("%w: argon2 parameters out of range", ErrCorruptCredential)
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 || len(salt) > maxArgon2SaltLen {
		return p, nil, nil, fmt.Errorf("%w: bad salt encoding", ErrCorruptCredential)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 || len(key) > maxArgon2KeyLen {
		return p, nil, nil, fmt.Errorf("%w: bad key encoding", ErrCorruptCredential)
	}
	p.SaltLen = uint32(len(salt))
	p.KeyLen = uint32(len(key))
	return p, salt, key, nil
}
