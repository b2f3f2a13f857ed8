package pool

import (
	"sync/atomic"

	"github.com/leoovs/Xuzumi/typemeta"
)

// Stats is a snapshot of one pool.
type Stats struct {
	Type           string
	TypeID         typemeta.TypeID
	BlockSize      int
	Blocks         int
	Capacity       int
	InUse          int
	Allocations    uint64
	Deallocations  uint64
	FootprintBytes uint64
}

// BlockLayout shows which chunks of a block are acquired.
type BlockLayout struct {
	Index     int
	Occupancy []bool
}

// counters are published by the owning goroutine and read by collectors.
type counters struct {
	blocks        atomic.Int64
	capacity      atomic.Int64
	inUse         atomic.Int64
	allocations   atomic.Uint64
	deallocations atomic.Uint64
	footprint     atomic.Uint64
}

func (c *counters) snapshot(info typemeta.TypeInfo, blockSize int) Stats {
	return Stats{
		Type:           info.Name,
		TypeID:         info.ID,
		BlockSize:      blockSize,
		Blocks:         int(c.blocks.Load()),
		Capacity:       int(c.capacity.Load()),
		InUse:          int(c.inUse.Load()),
		Allocations:    c.allocations.Load(),
		Deallocations:  c.deallocations.Load(),
		FootprintBytes: c.footprint.Load(),
	}
}
