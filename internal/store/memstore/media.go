package memstore

import (
	"context"
	"slices"

	"civic-project-system/internal/model"
	"civic-project-system/internal/store"
)

type mediaRepo struct {
	s *Store
}

func owns(m model.Media, o model.Owner) bool {
	got, ok := m.Owner()
	return ok && got == o
}

func (st *state) ownerExists(o model.Owner) bool {
	var ok bool
	switch o.Kind {
	case model.OwnerProject:
		_, ok = st.projects[o.ID]
	case model.OwnerProgress:
		_, ok = st.progress[o.ID]
	case model.OwnerReport:
		_, ok = st.reports[o.ID]
	}
	return ok
}

// Create 整批写入，任一条失败则整批不生效
func (r mediaRepo) Create(_ context.Context, rows []model.Media) error {
	if len(rows) == 0 {
		return nil
	}
	return r.s.run(func(st *state) error {
		seen := make(map[string]bool, len(rows)*2)
		for i := range rows {
			m := &rows[i]
			if err := beforeSave(m); err != nil {
				return err
			}
			o, _ := m.Owner()
			if !st.ownerExists(o) {
				return errForeignKey
			}
			if seen["u:"+m.URL] || seen["k:"+m.Key] || anyRow(st.media, func(x model.Media) bool {
				return x.URL == m.URL || x.Key == m.Key
			}) {
				return store.ErrDuplicate
			}
			seen["u:"+m.URL], seen["k:"+m.Key] = true, true
		}
		now := r.s.now()
		for i := range rows {
			rows[i].ID = 0
			put(st, st.media, &rows[i], now)
		}
		return nil
	})
}

func (r mediaRepo) Get(_ context.Context, id uint) (*model.Media, error) {
	var m *model.Media
	err := r.s.run(func(st *state) (err error) {
		m, err = get(st.media, id)
		return err
	})
	return m, err
}

func (r mediaRepo) ListByOwner(_ context.Context, owner model.Owner) ([]model.Media, error) {
	return r.where(func(_ *state, m model.Media) bool { return owns(m, owner) })
}

func (r mediaRepo) ListByOwnerKind(_ context.Context, kind model.OwnerKind) ([]model.Media, error) {
	return r.where(func(_ *state, m model.Media) bool {
		o, ok := m.Owner()
		return ok && o.Kind == kind
	})
}

func (r mediaRepo) List(_ context.Context, q store.MediaQuery) ([]model.Media, int64, error) {
	var (
		rows  []model.Media
		total int64
	)
	err := r.s.run(func(st *state) error {
		rows = filter(ordered[model.Media](st.media), func(m model.Media) bool {
			return owns(m, q.Owner) && (q.Type == "" || m.Is(q.Type))
		})
		slices.SortFunc(rows, func(a, b model.Media) int { return byCreated(true)(a.Model, b.Model) })
		total = int64(len(rows))
		rows = store.Slice(rows, q.Page)
		return nil
	})
	return rows, total, err
}

func (r mediaRepo) ListProjectTree(_ context.Context, projectID uint) ([]model.Media, error) {
	return r.where(func(st *state, m model.Media) bool {
		switch {
		case eq(m.ProjectID, projectID):
			return true
		case m.ProgressHistoryID != nil:
			h, ok := st.progress[*m.ProgressHistoryID]
			return ok && h.ProjectID == projectID
		case m.ReportID != nil:
			rp, ok := st.reports[*m.ReportID]
			if !ok {
				return false
			}
			if eq(rp.ProjectID, projectID) {
				return true
			}
			if rp.CommentID != nil {
				c, ok := st.comments[*rp.CommentID]
				return ok && c.ProjectID == projectID
			}
		}
		return false
	})
}

func (r mediaRepo) ListCommentTree(_ context.Context, commentID uint) ([]model.Media, error) {
	return r.where(func(st *state, m model.Media) bool {
		if m.ReportID == nil {
			return false
		}
		rp, ok := st.reports[*m.ReportID]
		if !ok || rp.CommentID == nil {
			return false
		}
		return commentID == 0 || *rp.CommentID == commentID
	})
}

func (r mediaRepo) ListAll(context.Context) ([]model.Media, error) {
	return r.where(func(*state, model.Media) bool { return true })
}

func (r mediaRepo) where(keep func(st *state, m model.Media) bool) ([]model.Media, error) {
	var rows []model.Media
	err := r.s.run(func(st *state) error {
		rows = filter(ordered[model.Media](st.media), func(m model.Media) bool { return keep(st, m) })
		return nil
	})
	return rows, err
}

func (r mediaRepo) DeleteIDs(_ context.Context, ids []uint) (int64, error) {
	var n int64
	err := r.s.run(func(st *state) error {
		for _, id := range ids {
			if _, ok := st.media[id]; ok {
				delete(st.media, id)
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r mediaRepo) ExistingKeys(_ context.Context, keys []string) (map[string]bool, error) {
	found := make(map[string]bool, len(keys))
	err := r.s.run(func(st *state) error {
		want := make(map[string]bool, len(keys))
		for _, k := range keys {
			want[k] = true
		}
		for _, m := range st.media {
			if want[m.Key] {
				found[m.Key] = true
			}
		}
		return nil
	})
	return found, err
}

func (r mediaRepo) AllKeys(context.Context) ([]string, error) {
	var keys []string
	err := r.s.run(func(st *state) error {
		for _, m := range ordered[model.Media](st.media) {
			keys = append(keys, m.Key)
		}
		return nil
	})
	return keys, err
}
