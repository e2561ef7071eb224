// Package metrics is ambient observability for the reader: page
// decode and record materialization latency histograms, recorded by
// each tpsread.File. No cmd/tpsdump command exposes them.
package metrics

import (
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/prometheus/client_golang/prometheus"
)

// Stats records page-decode and record-materialize latencies as HDR
// histograms and exposes them through the prometheus.Collector
// interface.
type Stats struct {
	pageDecode  *hdrhistogram.Histogram
	materialize *hdrhistogram.Histogram

	pageDecodeDesc  *prometheus.Desc
	materializeDesc *prometheus.Desc
}

// New returns a Stats tracking latencies from 1 microsecond to 10
// seconds at 3 significant figures.
func New() *Stats {
	const low, high, sigfigs = 1, 10_000_000, 3
	return &Stats{
		pageDecode:      hdrhistogram.New(low, high, sigfigs),
		materialize:     hdrhistogram.New(low, high, sigfigs),
		pageDecodeDesc:  prometheus.NewDesc("tpsread_page_decode_microseconds", "Leaf page decompress+split latency.", nil, nil),
		materializeDesc: prometheus.NewDesc("tpsread_record_materialize_microseconds", "Per-record field materialization latency.", nil, nil),
	}
}

// ObservePageDecode records one page's decode latency.
func (s *Stats) ObservePageDecode(d time.Duration) {
	_ = s.pageDecode.RecordValue(d.Microseconds())
}

// ObserveMaterialize records one record's materialization latency.
func (s *Stats) ObserveMaterialize(d time.Duration) {
	_ = s.materialize.RecordValue(d.Microseconds())
}

// Describe implements prometheus.Collector.
func (s *Stats) Describe(ch chan<- *prometheus.Desc) {
	ch <- s.pageDecodeDesc
	ch <- s.materializeDesc
}

// Collect implements prometheus.Collector, reporting each histogram's
// mean as a gauge (percentile detail is available via the histogram
// accessors directly for CLI diagnostics).
func (s *Stats) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(s.pageDecodeDesc, prometheus.GaugeValue, s.pageDecode.Mean())
	ch <- prometheus.MustNewConstMetric(s.materializeDesc, prometheus.GaugeValue, s.materialize.Mean())
}
