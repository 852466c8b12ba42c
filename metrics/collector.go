// Package metrics exports codec context statistics to Prometheus.
package metrics

import (
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/thesyncim/avcodec"
)

// Source is what the collector snapshots. *avcodec.CodecContext implements it.
type Source interface {
	ID() uuid.UUID
	CodecID() avcodec.CodecID
	Stats() avcodec.ContextStats
}

type snapshot struct {
	codec string
	stats avcodec.ContextStats
}

// Collector is a prometheus.Collector over context snapshots.
//
// Codec contexts are not safe for concurrent use, so the collector never
// reads a context itself: the goroutine driving a context calls Observe and
// scrapes export the latest snapshot.
type Collector struct {
	mu        sync.Mutex
	snapshots map[uuid.UUID]snapshot

	framesDecoded     *prometheus.Desc
	packetsEncoded    *prometheus.Desc
	bytesConsumed     *prometheus.Desc
	bytesProduced     *prometheus.Desc
	bufferAllocations *prometheus.Desc
	nativeFailures    *prometheus.Desc
	contexts          *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector creates a collector whose metric names start with namespace.
func NewCollector(namespace string) *Collector {
	labels := []string{"context", "codec"}
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, labels, nil)
	}
	return &Collector{
		snapshots:         make(map[uuid.UUID]snapshot),
		framesDecoded:     desc("frames_decoded_total", "Frames produced by decode calls."),
		packetsEncoded:    desc("packets_encoded_total", "Packets produced by encode calls."),
		bytesConsumed:     desc("bytes_consumed_total", "Packet bytes consumed by decode calls."),
		bytesProduced:     desc("bytes_produced_total", "Packet bytes produced by encode calls."),
		bufferAllocations: desc("buffer_allocations_total", "Encoder output buffer allocations."),
		nativeFailures:    desc("native_failures_total", "Native calls that returned a negative status."),
		contexts: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "contexts"),
			"Codec contexts being tracked.", nil, nil),
	}
}

// Observe records the current statistics of src.
func (c *Collector) Observe(src Source) {
	s := snapshot{codec: src.CodecID().String(), stats: src.Stats()}
	c.mu.Lock()
	c.snapshots[src.ID()] = s
	c.mu.Unlock()
}

// Forget stops exporting the context with the given id.
func (c *Collector) Forget(id uuid.UUID) {
	c.mu.Lock()
	delete(c.snapshots, id)
	c.mu.Unlock()
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.framesDecoded
	ch <- c.packetsEncoded
	ch <- c.bytesConsumed
	ch <- c.bytesProduced
	ch <- c.bufferAllocations
	ch <- c.nativeFailures
	ch <- c.contexts
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch <- prometheus.MustNewConstMetric(c.contexts, prometheus.GaugeValue, float64(len(c.snapshots)))
	for id, s := range c.snapshots {
		labels := []string{id.String(), s.codec}
		counter := func(d *prometheus.Desc, v uint64) {
			ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v), labels...)
		}
		counter(c.framesDecoded, s.stats.FramesDecoded)
		counter(c.packetsEncoded, s.stats.PacketsEncoded)
		counter(c.bytesConsumed, s.stats.BytesConsumed)
		counter(c.bytesProduced, s.stats.BytesProduced)
		counter(c.bufferAllocations, s.stats.BufferAllocations)
		counter(c.nativeFailures, s.stats.NativeFailures)
	}
}
