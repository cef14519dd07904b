package media

import (
	"context"
	"time"
)

// SweepReport 一次孤儿扫描的结果
type SweepReport struct {
	Scanned  int      `json:"scanned"`
	Orphans  []string `json:"orphans"`
	Deleted  int      `json:"deleted"`
	Failed   int      `json:"failed"`
	Young    int      `json:"young"`
	Dangling []string `json:"dangling"`
}

func (m *Manager) grace() time.Duration {
	return time.Duration(m.cfg.SweepGrace) * time.Minute
}

// Sweep 删除没有行引用且超过宽限期的文件；行存在而文件缺失的只报告不删除。
// 先列对象再列 key，扫描期间提交的新行不会被误判为孤儿
func (m *Manager) Sweep(ctx context.Context) (*SweepReport, error) {
	cctx, cancel := m.call(ctx)
	objects, err := m.objects.List(cctx)
	cancel()
	if err != nil {
		return nil, storeErr(err)
	}
	keys, err := m.store.Media().AllKeys(ctx)
	if err != nil {
		return nil, err
	}

	referenced := make(map[string]bool, len(keys))
	for _, k := range keys {
		referenced[k] = true
	}
	report := &SweepReport{Scanned: len(objects), Orphans: []string{}, Dangling: []string{}}
	present := make(map[string]bool, len(objects))
	cutoff := m.now().Add(-m.grace())
	for _, o := range objects {
		present[o.Key] = true
		if referenced[o.Key] {
			continue
		}
		if o.LastModified.After(cutoff) {
			report.Young++
			continue
		}
		report.Orphans = append(report.Orphans, o.Key)
	}
	for _, k := range keys {
		if !present[k] {
			report.Dangling = append(report.Dangling, k)
		}
	}

	report.Failed = m.deleteBlobs(ctx, report.Orphans, "sweep")
	report.Deleted = len(report.Orphans) - report.Failed

	if len(report.Dangling) > 0 {
		m.log.Warn("media rows reference missing blobs", "count", len(report.Dangling), "keys", report.Dangling)
	}
	m.log.Info("media sweep finished",
		"scanned", report.Scanned,
		"orphans", len(report.Orphans),
		"deleted", report.Deleted,
		"failed", report.Failed,
		"young", report.Young,
		"dangling", len(report.Dangling),
	)
	return report, nil
}

// Job 随孤儿扫描一起周期执行的维护任务
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

// Schedule 需在 RunSweeper 启动前调用
func (m *Manager) Schedule(jobs ...Job) {
	m.jobs = append(m.jobs, jobs...)
}

// tick 扫描失败不影响其他任务
func (m *Manager) tick(ctx context.Context) {
	if _, err := m.Sweep(ctx); err != nil {
		m.log.Error("media sweep failed", "error", err)
	}
	for _, job := range m.jobs {
		if err := job.Run(ctx); err != nil {
			m.log.Error("maintenance job failed", "job", job.Name, "error", err)
		}
	}
}

// RunSweeper 按 sweep_interval 周期扫描并执行维护任务，直到 ctx 取消；间隔为 0 时不启动
func (m *Manager) RunSweeper(ctx context.Context) {
	if m.cfg.SweepInterval <= 0 {
		return
	}
	ticker := time.NewTicker(time.Duration(m.cfg.SweepInterval) * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.tick(ctx)
		}
	}
}
