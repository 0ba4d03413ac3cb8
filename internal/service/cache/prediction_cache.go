package cache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"time"

	"CryptoLiquidity/internal/domain/models"
	domrepo "CryptoLiquidity/internal/domain/repository"
)

// PredictionCache stores predicted ratios in a BytesCache. Keys hash the schema
// version and the exact bits of every feature, so only identical inputs hit.
type PredictionCache struct {
	store  BytesCache
	schema string
}

func NewPredictionCache(store BytesCache, schemaVersion string) *PredictionCache {
	return &PredictionCache{store: store, schema: schemaVersion}
}

func (c *PredictionCache) Get(ctx context.Context, v models.FeatureVector) (models.PredictionResult, bool, error) {
	b, ok, err := c.store.GetBytes(ctx, c.Key(v))
	if err != nil || !ok {
		return 0, false, err
	}
	if len(b) != 8 {
		return 0, false, fmt.Errorf("cache entry has %d bytes, want 8", len(b))
	}
	return models.PredictionResult(math.Float64frombits(binary.BigEndian.Uint64(b))), true, nil
}

func (c *PredictionCache) Set(ctx context.Context, v models.FeatureVector, ratio models.PredictionResult, ttl time.Duration) error {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, math.Float64bits(float64(ratio)))
	return c.store.SetBytes(ctx, c.Key(v), b, ttl)
}

// Key returns the cache key for v.
func (c *PredictionCache) Key(v models.FeatureVector) string {
	h := sha256.New()
	h.Write([]byte(c.schema))
	var buf [8]byte
	for _, x := range v {
		binary.BigEndian.PutUint64(buf[:], math.Float64bits(x))
		h.Write(buf[:])
	}
	return "predict:" + hex.EncodeToString(h.Sum(nil))
}

var _ domrepo.PredictionCache = (*PredictionCache)(nil)
