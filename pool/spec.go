package pool

import (
	"fmt"

	"github.com/leoovs/Xuzumi/errors"
)

// DefaultBlockSize is the number of chunks per block when none is given.
const DefaultBlockSize = 10

// Specification configures every pool an allocator creates.
type Specification struct {
	// BlockSize is the number of chunks allocated at once when a pool
	// runs out of free chunks.
	BlockSize int `mapstructure:"block_size" yaml:"block_size"`
}

func DefaultSpecification() Specification {
	return Specification{BlockSize: DefaultBlockSize}
}

// Validate reports whether the specification can build pools.
func (s Specification) Validate() error {
	if s.BlockSize < 1 {
		return errors.InvalidInput(errors.PhaseConfig,
			fmt.Sprintf("block size must be positive, got %d", s.BlockSize))
	}
	return nil
}
