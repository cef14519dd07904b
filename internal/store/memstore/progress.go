package memstore

import (
	"context"
	"slices"

	"civic-project-system/internal/model"
	"civic-project-system/internal/store"
)

type progressRepo struct {
	s *Store
}

func (st *state) progressDetail(h model.ProgressHistory) model.ProgressHistory {
	h.Media = filter(ordered[model.Media](st.media), func(m model.Media) bool { return eq(m.ProgressHistoryID, h.ID) })
	return h
}

func (r progressRepo) Get(_ context.Context, projectID, id uint) (*model.ProgressHistory, error) {
	var out *model.ProgressHistory
	err := r.s.run(func(st *state) error {
		h, ok := st.progress[id]
		if !ok || h.ProjectID != projectID {
			return store.ErrNotFound
		}
		h = st.progressDetail(h)
		out = &h
		return nil
	})
	return out, err
}

func (r progressRepo) List(_ context.Context, projectID uint, q store.ProgressQuery) ([]model.ProgressHistory, int64, error) {
	var (
		rows  []model.ProgressHistory
		total int64
	)
	err := r.s.run(func(st *state) error {
		rows = filter(ordered[model.ProgressHistory](st.progress), func(h model.ProgressHistory) bool { return h.ProjectID == projectID })
		slices.SortFunc(rows, func(a, b model.ProgressHistory) int {
			c := a.Time().Compare(b.Time())
			if c == 0 {
				c = int(a.ID) - int(b.ID)
			}
			if q.Oldest {
				return c
			}
			return -c
		})
		total = int64(len(rows))
		rows = store.Slice(rows, q.Page)
		for i := range rows {
			rows[i] = st.progressDetail(rows[i])
		}
		return nil
	})
	return rows, total, err
}

func (r progressRepo) ExistsProgress(_ context.Context, projectID uint, progress int, excludeID uint) (bool, error) {
	var found bool
	err := r.s.run(func(st *state) error {
		found = anyRow(st.progress, func(h model.ProgressHistory) bool {
			return h.ProjectID == projectID && h.Progress == progress && h.ID != excludeID
		})
		return nil
	})
	return found, err
}

func (r progressRepo) Create(_ context.Context, h *model.ProgressHistory) error {
	return r.s.run(func(st *state) error {
		h.ID = 0
		return r.write(st, h)
	})
}

func (r progressRepo) Save(_ context.Context, h *model.ProgressHistory) error {
	return r.s.run(func(st *state) error {
		if _, ok := st.progress[h.ID]; !ok {
			return store.ErrNotFound
		}
		return r.write(st, h)
	})
}

func (r progressRepo) write(st *state, h *model.ProgressHistory) error {
	if err := beforeSave(h); err != nil {
		return err
	}
	if _, ok := st.projects[h.ProjectID]; !ok {
		return errForeignKey
	}
	if anyRow(st.progress, func(o model.ProgressHistory) bool {
		return o.ID != h.ID && o.ProjectID == h.ProjectID && o.Progress == h.Progress
	}) {
		return store.ErrDuplicate
	}
	row := *h
	row.Media = nil
	put(st, st.progress, &row, r.s.now())
	h.ID, h.CreatedAt, h.UpdatedAt = row.ID, row.CreatedAt, row.UpdatedAt
	return nil
}

func (r progressRepo) Delete(_ context.Context, id uint) error {
	return r.s.run(func(st *state) error {
		if _, ok := st.progress[id]; !ok {
			return store.ErrNotFound
		}
		st.deleteProgress(id)
		return nil
	})
}

func (r progressRepo) DeleteByProject(_ context.Context, projectID uint) (int64, error) {
	var n int64
	err := r.s.run(func(st *state) error {
		for id, h := range st.progress {
			if h.ProjectID == projectID {
				st.deleteProgress(id)
				n++
			}
		}
		return nil
	})
	return n, err
}
