package cache

import (
	"github.com/dgraph-io/ristretto"
	ristretto_store "github.com/eko/gocache/store/ristretto/v4"
)

var S *ristretto_store.RistrettoStore

func NewStore() error {
	inner, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10_000,
		MaxCost:     10 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return err
	}

	S = ristretto_store.NewRistretto(inner)
	return nil
}
