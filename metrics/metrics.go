// Package metrics exposes opencensus measures for ringfs, mirroring
// cannyls-go's metrics.JournalRegionMetric/DataRegionMetric shape: a
// package-level struct of named counters, reflected into views once at
// init, exported through a Prometheus scrape handler.
package metrics

import (
	"context"
	"fmt"
	"reflect"

	"contrib.go.opencensus.io/exporter/prometheus"
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
)

var (
	// RingMetric counts operation outcomes across every ringfs.Instance in
	// the process. The measures are global; the instances they describe
	// are not, so multiple disjoint partitions share one set of views.
	RingMetric = newRingMetric()
	// PrometheusHandler serves /metrics for cmd/ringfsd.
	PrometheusHandler *prometheus.Exporter
)

type ringMetric struct {
	Appends         *stats.Int64Measure `aggr:"Counter"`
	Fetches         *stats.Int64Measure `aggr:"Counter"`
	Discards        *stats.Int64Measure `aggr:"Counter"`
	SectorErasures  *stats.Int64Measure `aggr:"Counter"`
	ScanRepairs     *stats.Int64Measure `aggr:"Counter"`
	ScanFailures    *stats.Int64Measure `aggr:"Counter"`
	AppendFailures  *stats.Int64Measure `aggr:"Counter"`
	AdapterErrors   *stats.Int64Measure `aggr:"Counter"`
	ErasesFailed    *stats.Int64Measure `aggr:"Counter"`
	CorruptionSeen  *stats.Int64Measure `aggr:"Counter"`
	CacheFlushes    *stats.Int64Measure `aggr:"Counter"`
}

func newRingMetric() *ringMetric {
	return &ringMetric{
		Appends:        stats.Int64("Appends", "records appended", stats.UnitDimensionless),
		Fetches:        stats.Int64("Fetches", "records fetched", stats.UnitDimensionless),
		Discards:       stats.Int64("Discards", "slots marked garbage", stats.UnitDimensionless),
		SectorErasures: stats.Int64("SectorErasures", "sectors freed via sector.Free", stats.UnitDimensionless),
		ScanRepairs:    stats.Int64("ScanRepairs", "ERASED/ERASING sectors completed during Scan", stats.UnitDimensionless),
		ScanFailures:   stats.Int64("ScanFailures", "Scan calls returning an error", stats.UnitDimensionless),
		AppendFailures: stats.Int64("AppendFailures", "Append calls returning an error", stats.UnitDimensionless),
		AdapterErrors:  stats.Int64("AdapterErrors", "flash.Adapter calls returning an error", stats.UnitDimensionless),
		ErasesFailed:   stats.Int64("ErasesFailed", "sector.Free calls returning an error", stats.UnitDimensionless),
		CorruptionSeen: stats.Int64("CorruptionSeen", "unknown status words observed at mount or append", stats.UnitDimensionless),
		CacheFlushes:   stats.Int64("CacheFlushes", "PageBuffer flushes triggered by AppendToCache", stats.UnitDimensionless),
	}
}

// createAppendViews builds one view.View per *stats.Int64Measure field of
// m, tagged with an "aggr" struct tag naming its aggregation.
func createAppendViews(m interface{}, list []*view.View) []*view.View {
	val := reflect.ValueOf(m).Elem()
	for i := 0; i < val.NumField(); i++ {
		typeField := val.Type().Field(i)
		valueField, _ := val.Field(i).Interface().(*stats.Int64Measure)
		golangTag := typeField.Tag
		v := &view.View{
			Name:        valueField.Name(),
			Description: valueField.Description(),
			Measure:     valueField,
		}
		switch golangTag.Get("aggr") {
		case "Counter":
			v.Aggregation = view.Count()
		case "LastValue":
			v.Aggregation = view.LastValue()
		case "Sum":
			v.Aggregation = view.Sum()
		default:
			panic("metrics: unsupported aggr tag")
		}
		list = append(list, v)
	}
	return list
}

// Count records one occurrence of measure m. Every ringfs call site holds a
// *stats.Int64Measure field from RingMetric, never a raw string name.
func Count(m *stats.Int64Measure) {
	stats.Record(context.Background(), m.M(1))
}

func init() {
	viewList := createAppendViews(RingMetric, nil)
	if err := view.Register(viewList...); err != nil {
		panic("metrics: failed to register views")
	}

	var err error
	PrometheusHandler, err = prometheus.NewExporter(prometheus.Options{
		Namespace: "ringfs",
		OnError:   func(err error) { fmt.Printf("ringfs metrics: %v\n", err) },
	})
	if err != nil {
		panic(fmt.Sprintf("%+v", err))
	}
	view.RegisterExporter(PrometheusHandler)
}
