package metrics

import (
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Metrics collects engine counters on a private registry. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	nodesChecked         prometheus.Counter
	branchesSkipped      prometheus.Counter
	bindingsUnreachable  prometheus.Counter
	narrowContradictions prometheus.Counter
	diagnostics          *prometheus.CounterVec
	unitCheckSeconds     prometheus.Summary
}

func New() *Metrics {
	m := &Metrics{
		nodesChecked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flowtype_nodes_checked_total",
			Help: "number of expression nodes checked",
		}),
		branchesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flowtype_branches_skipped_total",
			Help: "number of if branches skipped as unreachable",
		}),
		bindingsUnreachable: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flowtype_bindings_unreachable_total",
			Help: "number of let/loop bindings annotated unreachable",
		}),
		narrowContradictions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flowtype_narrow_contradictions_total",
			Help: "number of narrowings that produced an unreachable environment",
		}),
		diagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flowtype_diagnostics_total",
			Help: "number of diagnostics reported, by code",
		}, []string{"code"}),
		unitCheckSeconds: prometheus.NewSummary(prometheus.SummaryOpts{
			Name:       "flowtype_unit_check_seconds",
			Help:       "time spent checking one unit",
			Objectives: map[float64]float64{0.5: 0.05, 0.99: 0.001},
		}),
	}
	m.registry = prometheus.NewPedanticRegistry()
	m.registry.MustRegister(m.nodesChecked)
	m.registry.MustRegister(m.branchesSkipped)
	m.registry.MustRegister(m.bindingsUnreachable)
	m.registry.MustRegister(m.narrowContradictions)
	m.registry.MustRegister(m.diagnostics)
	m.registry.MustRegister(m.unitCheckSeconds)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) NodeChecked() {
	if m != nil {
		m.nodesChecked.Inc()
	}
}

func (m *Metrics) BranchSkipped() {
	if m != nil {
		m.branchesSkipped.Inc()
	}
}

func (m *Metrics) BindingUnreachable() {
	if m != nil {
		m.bindingsUnreachable.Inc()
	}
}

func (m *Metrics) NarrowContradiction() {
	if m != nil {
		m.narrowContradictions.Inc()
	}
}

func (m *Metrics) Diagnostic(code string) {
	if m != nil {
		m.diagnostics.WithLabelValues(code).Inc()
	}
}

func (m *Metrics) ObserveUnit(d time.Duration) {
	if m != nil {
		m.unitCheckSeconds.Observe(d.Seconds())
	}
}

// Row is one flattened sample of a gathered metric.
type Row struct {
	Name  string
	Value float64
}

// Snapshot gathers the registry into rows sorted by name. Labelled series
// are rendered as name{label="value"}; summaries report count and sum.
func (m *Metrics) Snapshot() ([]Row, error) {
	if m == nil {
		return nil, nil
	}
	families, err := m.registry.Gather()
	if err != nil {
		return nil, err
	}
	var rows []Row
	for _, fam := range families {
		for _, metric := range fam.GetMetric() {
			name := fam.GetName() + labels(metric.GetLabel())
			switch fam.GetType() {
			case dto.MetricType_COUNTER:
				rows = append(rows, Row{Name: name, Value: metric.GetCounter().GetValue()})
			case dto.MetricType_SUMMARY:
				s := metric.GetSummary()
				rows = append(rows,
					Row{Name: name + "_count", Value: float64(s.GetSampleCount())},
					Row{Name: name + "_sum", Value: s.GetSampleSum()})
			}
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	return rows, nil
}

func labels(pairs []*dto.LabelPair) string {
	if len(pairs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, p.GetName()+"=\""+p.GetValue()+"\"")
	}
	return "{" + strings.Join(parts, ",") + "}"
}
