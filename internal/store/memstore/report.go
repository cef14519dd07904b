package memstore

import (
	"context"
	"slices"
	"strings"

	"civic-project-system/internal/model"
	"civic-project-system/internal/store"
)

type reportRepo struct {
	s *Store
}

func (st *state) reportDetail(rp model.Report) model.Report {
	rp.Media = filter(ordered[model.Media](st.media), func(m model.Media) bool { return eq(m.ReportID, rp.ID) })
	return rp
}

func (r reportRepo) Get(_ context.Context, id uint) (*model.Report, error) {
	var out *model.Report
	err := r.s.run(func(st *state) error {
		rp, ok := st.reports[id]
		if !ok {
			return store.ErrNotFound
		}
		rp = st.reportDetail(rp)
		out = &rp
		return nil
	})
	return out, err
}

func (r reportRepo) Create(_ context.Context, rp *model.Report) error {
	return r.s.run(func(st *state) error {
		rp.ID = 0
		return r.write(st, rp)
	})
}

func (r reportRepo) Save(_ context.Context, rp *model.Report) error {
	return r.s.run(func(st *state) error {
		if _, ok := st.reports[rp.ID]; !ok {
			return store.ErrNotFound
		}
		return r.write(st, rp)
	})
}

func (r reportRepo) write(st *state, rp *model.Report) error {
	if err := beforeSave(rp); err != nil {
		return err
	}
	t, _ := rp.Target()
	if !st.targetExists(t) {
		return errForeignKey
	}
	row := *rp
	row.Media = nil
	put(st, st.reports, &row, r.s.now())
	rp.ID, rp.CreatedAt, rp.UpdatedAt = row.ID, row.CreatedAt, row.UpdatedAt
	return nil
}

func (r reportRepo) Delete(_ context.Context, id uint) error {
	return r.s.run(func(st *state) error {
		if _, ok := st.reports[id]; !ok {
			return store.ErrNotFound
		}
		st.deleteReport(id)
		return nil
	})
}

func (r reportRepo) DeleteAll(context.Context) (int64, error) {
	var n int64
	err := r.s.run(func(st *state) error {
		for id := range st.reports {
			st.deleteReport(id)
			n++
		}
		return nil
	})
	return n, err
}

func (r reportRepo) ExistsContent(_ context.Context, userID uint, target model.Target, content string) (bool, error) {
	var found bool
	err := r.s.run(func(st *state) error {
		found = anyRow(st.reports, func(rp model.Report) bool {
			t, ok := rp.Target()
			return ok && t == target && rp.ReportedBy == userID && rp.Content == content
		})
		return nil
	})
	return found, err
}

func (r reportRepo) List(_ context.Context, q store.ReportQuery) ([]model.Report, int64, error) {
	var (
		rows  []model.Report
		total int64
	)
	err := r.s.run(func(st *state) error {
		rows = filter(ordered[model.Report](st.reports), func(rp model.Report) bool {
			if q.Search != "" && !strings.Contains(rp.Content, q.Search) {
				return false
			}
			if q.Status != "" && rp.Status != q.Status {
				return false
			}
			t, _ := rp.Target()
			return q.Kind == "" || t.Kind == q.Kind
		})
		slices.SortFunc(rows, func(a, b model.Report) int { return byCreated(q.Desc)(a.Model, b.Model) })
		total = int64(len(rows))
		rows = store.Slice(rows, q.Page)
		for i := range rows {
			rows[i] = st.reportDetail(rows[i])
		}
		return nil
	})
	return rows, total, err
}
