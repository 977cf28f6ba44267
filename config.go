package stripemap

import (
	"stripemap/util"
)

const (
	// DefaultPartitionCount is a reasonable stripe width for general use.
	// Contended workloads may want more partitions, see bench/.
	DefaultPartitionCount = 32

	defaultDumpFileSize int64 = 64 << 20
)

// Config carries the construction parameters of a Map.
type Config[K util.Integer] struct {
	PartitionCount int // number of lock stripes, fixed for the Map's lifetime; must be > 0

	// Sharding reduces a key to the unsigned range used for partition
	// selection. Defaults to util.Widen64. util.Spread64 spreads clustered
	// keyspaces at the cost of a hash per operation.
	Sharding func(key K) uint64

	// DumpFileSize is the preallocated size of snapshot dump files.
	DumpFileSize int64
}

func DefaultConfig[K util.Integer]() Config[K] {
	return Config[K]{
		PartitionCount: DefaultPartitionCount,
		Sharding:       util.Widen64[K],
		DumpFileSize:   defaultDumpFileSize,
	}
}
