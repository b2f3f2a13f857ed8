package pool

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector exports allocator statistics as prometheus metrics, one
// series per pooled type.
type Collector struct {
	alloc *PoolAllocator

	blocks        *prometheus.Desc
	capacity      *prometheus.Desc
	inUse         *prometheus.Desc
	footprint     *prometheus.Desc
	allocations   *prometheus.Desc
	deallocations *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector creates a collector for a. Register it with a prometheus
// registry; scraping is safe while the allocator is in use.
func NewCollector(a *PoolAllocator) *Collector {
	labels := []string{"type", "type_id"}
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName("xuzumi", "pool", name), help, labels, nil)
	}
	return &Collector{
		alloc:         a,
		blocks:        desc("blocks", "Number of memory blocks allocated for the type."),
		capacity:      desc("chunks_capacity", "Total chunks across all blocks of the type."),
		inUse:         desc("chunks_in_use", "Chunks currently holding a resource."),
		footprint:     desc("footprint_bytes", "Bytes reserved by the type's block arenas."),
		allocations:   desc("allocations_total", "Chunks acquired since the pool was created."),
		deallocations: desc("deallocations_total", "Chunks returned since the pool was created."),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.blocks
	ch <- c.capacity
	ch <- c.inUse
	ch <- c.footprint
	ch <- c.allocations
	ch <- c.deallocations
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, s := range c.alloc.Stats() {
		id := strconv.FormatUint(uint64(s.TypeID), 10)
		ch <- prometheus.MustNewConstMetric(c.blocks, prometheus.GaugeValue, float64(s.Blocks), s.Type, id)
		ch <- prometheus.MustNewConstMetric(c.capacity, prometheus.GaugeValue, float64(s.Capacity), s.Type, id)
		ch <- prometheus.MustNewConstMetric(c.inUse, prometheus.GaugeValue, float64(s.InUse), s.Type, id)
		ch <- prometheus.MustNewConstMetric(c.footprint, prometheus.GaugeValue, float64(s.FootprintBytes), s.Type, id)
		ch <- prometheus.MustNewConstMetric(c.allocations, prometheus.CounterValue, float64(s.Allocations), s.Type, id)
		ch <- prometheus.MustNewConstMetric(c.deallocations, prometheus.CounterValue, float64(s.Deallocations), s.Type, id)
	}
}
