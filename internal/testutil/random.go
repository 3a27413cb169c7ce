package testutil

import "github.com/aitch25/lib-mysqludf-str/internal/random"

// FixedEntropy returns an entropy source whose states all start from seed,
// making unseeded shuffles reproducible.
func FixedEntropy(seed uint64) func() (*random.State, error) {
	return func() (*random.State, error) {
		return random.New(seed), nil
	}
}

// FailingEntropy returns an entropy source that always fails with err.
func FailingEntropy(err error) func() (*random.State, error) {
	return func() (*random.State, error) {
		return nil, err
	}
}
