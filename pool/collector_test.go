package pool

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestCollector(t *testing.T) {
	a := New(Specification{BlockSize: 4})
	defer a.Close()

	for range 5 {
		Allocate(a, entity{})
	}
	Allocate(a, vector{})

	reg := prometheus.NewPedanticRegistry()
	reg.MustRegister(NewCollector(a))

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}

	values := map[string]map[string]float64{}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var typ string
			for _, l := range m.GetLabel() {
				if l.GetName() == "type" {
					typ = l.GetValue()
				}
			}
			if values[mf.GetName()] == nil {
				values[mf.GetName()] = map[string]float64{}
			}
			if g := m.GetGauge(); g != nil {
				values[mf.GetName()][typ] = g.GetValue()
			} else {
				values[mf.GetName()][typ] = m.GetCounter().GetValue()
			}
		}
	}

	checks := []struct {
		metric string
		typ    string
		want   float64
	}{
		{"xuzumi_pool_blocks", "pool.entity", 2},
		{"xuzumi_pool_chunks_capacity", "pool.entity", 8},
		{"xuzumi_pool_chunks_in_use", "pool.entity", 5},
		{"xuzumi_pool_allocations_total", "pool.entity", 5},
		{"xuzumi_pool_deallocations_total", "pool.entity", 0},
		{"xuzumi_pool_blocks", "pool.vector", 1},
	}
	for _, c := range checks {
		if got := values[c.metric][c.typ]; got != c.want {
			t.Errorf("%s{type=%q} = %v, want %v", c.metric, c.typ, got, c.want)
		}
	}
	if values["xuzumi_pool_footprint_bytes"]["pool.entity"] <= 0 {
		t.Error("footprint should be positive")
	}
}
