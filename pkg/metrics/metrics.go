// Package metrics 提供脚本任务的 Prometheus 指标，运行结束时推送到 Pushgateway
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "pensiondb"

// Metrics 单次运行的指标集合
type Metrics struct {
	registry *prometheus.Registry
	command  string
	started  time.Time

	// 各表写入行数
	RowsWritten *prometheus.CounterVec
	// 诊断查询中缺失的表
	MissingTables prometheus.Gauge
	// 连通性检查结果 1/0
	ProbeUp prometheus.Gauge
	// 任务耗时
	JobDuration prometheus.Gauge
	// 最近一次成功完成的时间
	JobLastSuccess prometheus.Gauge
}

// New 创建指标实例，每次运行使用独立的 registry
func New(command string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		command:  command,
		started:  time.Now(),
		RowsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_written_total",
			Help:      "Rows inserted or deleted by the fixture commands, by table and operation",
		}, []string{"table", "op"}),
		MissingTables: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "missing_tables",
			Help:      "Number of expected tables absent during the last diagnostic run",
		}),
		ProbeUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "probe_up",
			Help:      "Whether the last connectivity probe succeeded",
		}),
		JobDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Duration of the last run in seconds",
		}),
		JobLastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "job_last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run",
		}),
	}

	m.registry.MustRegister(m.RowsWritten, m.MissingTables, m.ProbeUp, m.JobDuration, m.JobLastSuccess)
	return m
}

// Registry 返回底层 registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordInserted 记录插入行数
func (m *Metrics) RecordInserted(table string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.RowsWritten.WithLabelValues(table, "insert").Add(float64(n))
}

// RecordDeleted 记录删除行数
func (m *Metrics) RecordDeleted(table string, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.RowsWritten.WithLabelValues(table, "delete").Add(float64(n))
}

// Finish 记录任务结束
func (m *Metrics) Finish(err error) {
	if m == nil {
		return
	}
	m.JobDuration.Set(time.Since(m.started).Seconds())
	if err == nil {
		m.JobLastSuccess.SetToCurrentTime()
	}
}

// Push 推送到 Pushgateway，gateway 为空时不做任何事
func (m *Metrics) Push(ctx context.Context, gateway, job string) error {
	if m == nil || gateway == "" {
		return nil
	}
	if job == "" {
		job = namespace
	}
	err := push.New(gateway, job).
		Gatherer(m.registry).
		Grouping("command", m.command).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", gateway, err)
	}
	return nil
}
