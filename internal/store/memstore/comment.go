package memstore

import (
	"context"
	"slices"

	"civic-project-system/internal/model"
	"civic-project-system/internal/store"
)

type commentRepo struct {
	s *Store
}

func (r commentRepo) Get(_ context.Context, id uint) (*model.Comment, error) {
	var out *model.Comment
	err := r.s.run(func(st *state) (err error) {
		out, err = get(st.comments, id)
		return err
	})
	return out, err
}

func (r commentRepo) Create(_ context.Context, c *model.Comment) error {
	return r.s.run(func(st *state) error {
		c.ID = 0
		return r.write(st, c)
	})
}

func (r commentRepo) Save(_ context.Context, c *model.Comment) error {
	return r.s.run(func(st *state) error {
		if _, ok := st.comments[c.ID]; !ok {
			return store.ErrNotFound
		}
		return r.write(st, c)
	})
}

func (r commentRepo) write(st *state, c *model.Comment) error {
	if err := beforeSave(c); err != nil {
		return err
	}
	if _, ok := st.projects[c.ProjectID]; !ok {
		return errForeignKey
	}
	row := *c
	row.Commenter, row.Reactions, row.Reports, row.Stats = nil, nil, nil, nil
	put(st, st.comments, &row, r.s.now())
	c.ID, c.CreatedAt, c.UpdatedAt = row.ID, row.CreatedAt, row.UpdatedAt
	return nil
}

func (r commentRepo) Delete(_ context.Context, id uint) error {
	return r.s.run(func(st *state) error {
		if _, ok := st.comments[id]; !ok {
			return store.ErrNotFound
		}
		st.deleteComment(id)
		return nil
	})
}

func (r commentRepo) DeleteAll(context.Context) (int64, error) {
	var n int64
	err := r.s.run(func(st *state) error {
		for id := range st.comments {
			st.deleteComment(id)
			n++
		}
		return nil
	})
	return n, err
}

func (r commentRepo) List(_ context.Context, q store.CommentQuery) ([]model.Comment, int64, error) {
	var (
		rows  []model.Comment
		total int64
	)
	err := r.s.run(func(st *state) error {
		rows = filter(ordered[model.Comment](st.comments), func(c model.Comment) bool {
			return q.ProjectID == 0 || c.ProjectID == q.ProjectID
		})
		slices.SortFunc(rows, func(a, b model.Comment) int { return byCreated(true)(a.Model, b.Model) })
		total = int64(len(rows))
		rows = store.Slice(rows, q.Page)
		for i := range rows {
			if u, ok := st.users[rows[i].CommentedBy]; ok {
				rows[i].Commenter = &u
			}
		}
		return nil
	})
	return rows, total, err
}

func (r commentRepo) Stats(_ context.Context, ids []uint) (map[uint]model.CommentStats, error) {
	stats := make(map[uint]model.CommentStats, len(ids))
	err := r.s.run(func(st *state) error {
		want := make(map[uint]bool, len(ids))
		for _, id := range ids {
			want[id] = true
		}
		for _, rc := range st.reactions {
			if rc.CommentID != nil && want[*rc.CommentID] {
				s := stats[*rc.CommentID]
				s.ReactionCount++
				stats[*rc.CommentID] = s
			}
		}
		for _, rp := range st.reports {
			if rp.CommentID != nil && want[*rp.CommentID] {
				s := stats[*rp.CommentID]
				s.ReportCount++
				stats[*rp.CommentID] = s
			}
		}
		return nil
	})
	return stats, err
}
