package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	minMemoryKB    uint32 = 8 * 1024
	minTimeCost    uint32 = 1
	minParallelism uint8  = 1
	minSaltLength  uint32 = 16
	minKeyLength   uint32 = 16
	algorithmID           = "argon2id"

	// Upper bounds for costs, both configured and read back from stored
	// hashes, so one bad row cannot pin a worker on a huge allocation.
	maxMemoryKB uint32 = 1024 * 1024
	maxTimeCost uint32 = 64
)

// Params are the Argon2id cost parameters. Memory is in KiB.
type Params struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultParams matches the cost the service has always hashed with.
func DefaultParams() Params {
	return Params{Memory: 15000, Time: 2, Parallelism: 1, SaltLength: 16, KeyLength: 32}
}

// Argon2 hashes passwords into PHC strings of the form
// $argon2id$v=19$m=15000,t=2,p=1$<salt>$<hash>.
// It is CPU and memory heavy; callers on a request path go through Pool.
type Argon2 struct {
	params Params
}

func NewArgon2(p Params) (*Argon2, error) {
	if err := validateParams(p); err != nil {
		return nil, err
	}
	return &Argon2{params: p}, nil
}

func (a *Argon2) Hash(password string) (string, error) {
	salt := make([]byte, a.params.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("read salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, a.params.Time, a.params.Memory, a.params.Parallelism, a.params.KeyLength)

	return fmt.Sprintf(
		"$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		algorithmID,
		argon2.Version,
		a.params.Memory,
		a.params.Time,
		a.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// Verify recomputes the hash with the parameters embedded in encodedHash, so
// hashes made under older cost settings keep verifying.
func (a *Argon2) Verify(password, encodedHash string) (bool, error) {
	parsed, err := parsePHC(encodedHash)
	if err != nil {
		return false, err
	}
	computed := argon2.IDKey([]byte(password), parsed.salt, parsed.time, parsed.memory, parsed.parallelism, uint32(len(parsed.hash)))
	return subtle.ConstantTimeCompare(computed, parsed.hash) == 1, nil
}

type parsedPHC struct {
	memory      uint32
	time        uint32
	parallelism uint8
	salt        []byte
	hash        []byte
}

func parsePHC(encodedHash string) (*parsedPHC, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[0] != "" {
		return nil, errors.New("invalid PHC format")
	}
	if parts[1] != algorithmID {
		return nil, errors.New("unsupported algorithm")
	}
	version, err := strconv.Atoi(strings.TrimPrefix(parts[2], "v="))
	if err != nil || !strings.HasPrefix(parts[2], "v=") {
		return nil, errors.New("invalid argon2 version")
	}
	if version != argon2.Version {
		return nil, errors.New("unsupported argon2 version")
	}

	out := &parsedPHC{}
	var memorySet, timeSet, parallelismSet bool
	for _, pair := range strings.Split(parts[3], ",") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, errors.New("invalid parameter entry")
		}
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid %s parameter", k)
		}
		switch k {
		case "m":
			out.memory, memorySet = uint32(n), true
		case "t":
			out.time, timeSet = uint32(n), true
		case "p":
			if n > 255 {
				return nil, errors.New("invalid p parameter")
			}
			out.parallelism, parallelismSet = uint8(n), true
		default:
			return nil, errors.New("unsupported parameter")
		}
	}
	if !memorySet || !timeSet || !parallelismSet {
		return nil, errors.New("missing parameters")
	}
	if out.time < minTimeCost || out.parallelism < minParallelism {
		return nil, errors.New("invalid cost parameters")
	}
	if out.memory > maxMemoryKB || out.time > maxTimeCost {
		return nil, errors.New("cost parameters out of range")
	}

	if out.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return nil, errors.New("invalid salt encoding")
	}
	if out.hash, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil || len(out.hash) == 0 {
		return nil, errors.New("invalid hash encoding")
	}
	return out, nil
}

func validateParams(p Params) error {
	if p.Memory < minMemoryKB || p.Memory > maxMemoryKB {
		return fmt.Errorf("argon2 memory must be between %d and %d KiB", minMemoryKB, maxMemoryKB)
	}
	if p.Time < minTimeCost || p.Time > maxTimeCost {
		return fmt.Errorf("argon2 time must be between %d and %d", minTimeCost, maxTimeCost)
	}
	if p.Parallelism < minParallelism {
		return errors.New("argon2 parallelism must be >= 1")
	}
	if p.SaltLength < minSaltLength {
		return fmt.Errorf("argon2 salt length must be >= %d", minSaltLength)
	}
	if p.KeyLength < minKeyLength {
		return fmt.Errorf("argon2 key length must be >= %d", minKeyLength)
	}
	return nil
}
