// Package generator synthesizes test files of a requested size filled with
// random alphanumeric text, hashing the content while it is written.
package generator

import (
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"filebench/internal/digest"
	"filebench/internal/models"
	"filebench/internal/transfer"
	"filebench/pkg/utils"
)

// BlockSize is the number of bytes produced and written per step.
const BlockSize = 1024

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

type Generator struct {
	rng *rand.Rand
}

// New returns a Generator. A zero seed draws one from the clock; any other
// seed makes the produced content reproducible.
func New(seed uint64) *Generator {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Generator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Generate makes sure path holds size bytes and returns their SHA-256.
//
// An existing regular file of exactly size bytes is reused as is and only
// hashed; its content is not checked against anything. Otherwise the file is
// created or truncated and filled block by block. A failed write leaves the
// partial file in place.
func (g *Generator) Generate(path string, size int64) (*models.GenerateResult, error) {
	if size < 0 {
		return nil, ioError(path, fmt.Errorf("invalid size %d: must not be negative", size))
	}

	if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() && info.Size() == size {
		sum, err := hashFile(path)
		if err != nil {
			return nil, ioError(path, err)
		}
		return newResult(path, size, sum, true), nil
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, ioError(path, fmt.Errorf("failed to create file: %w", err))
	}
	defer file.Close()

	hasher := digest.New()
	block := make([]byte, BlockSize)

	for written := int64(0); written < size; {
		n := int(min(int64(BlockSize), size-written))
		g.fill(block[:n])

		if _, err := file.Write(block[:n]); err != nil {
			return nil, ioError(path, fmt.Errorf("failed to write: %w", err))
		}
		hasher.Write(block[:n])
		written += int64(n)
	}

	if err := file.Close(); err != nil {
		return nil, ioError(path, fmt.Errorf("failed to close: %w", err))
	}

	return newResult(path, size, digest.Sum(hasher), false), nil
}

func (g *Generator) fill(b []byte) {
	for i := range b {
		b[i] = alphabet[g.rng.IntN(len(alphabet))]
	}
}

func hashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open: %w", err)
	}
	defer file.Close()

	_, sum, err := digest.Reader(file)
	if err != nil {
		return "", fmt.Errorf("failed to read: %w", err)
	}
	return sum, nil
}

func ioError(path string, err error) error {
	return transfer.NewIOError(transfer.OpGenerate, path, err)
}

func newResult(path string, size int64, sum string, reused bool) *models.GenerateResult {
	return &models.GenerateResult{
		Path:      path,
		SizeBytes: size,
		SizeHuman: utils.FormatBytes(size),
		SHA256:    sum,
		Reused:    reused,
	}
}
