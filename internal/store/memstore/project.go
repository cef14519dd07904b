package memstore

import (
	"context"
	"slices"
	"strings"

	"civic-project-system/internal/model"
	"civic-project-system/internal/store"
)

type projectRepo struct {
	s *Store
}

// detail 补齐 gormstore 中 Preload 的关联
func (st *state) projectDetail(p model.Project) model.Project {
	if p.FundingSourceID != nil {
		if f, ok := st.funding[*p.FundingSourceID]; ok {
			p.FundingSource = &f
		}
	}
	tags := make([]model.Tag, 0, len(p.Tags))
	for _, t := range p.Tags {
		if cur, ok := st.tags[t.ID]; ok {
			tags = append(tags, cur)
		}
	}
	p.Tags = tags
	barangays := make([]model.Barangay, 0, len(p.Barangays))
	for _, b := range p.Barangays {
		if cur, ok := st.barangays[b.ID]; ok {
			barangays = append(barangays, cur)
		}
	}
	p.Barangays = barangays
	p.Media = filter(ordered[model.Media](st.media), func(m model.Media) bool { return eq(m.ProjectID, p.ID) })
	return p
}

func (r projectRepo) Get(_ context.Context, id uint) (*model.Project, error) {
	var out *model.Project
	err := r.s.run(func(st *state) error {
		p, ok := st.projects[id]
		if !ok {
			return store.ErrNotFound
		}
		p = st.projectDetail(p)
		out = &p
		return nil
	})
	return out, err
}

func (r projectRepo) List(_ context.Context, q store.ProjectQuery) ([]model.Project, int64, error) {
	var (
		rows  []model.Project
		total int64
	)
	err := r.s.run(func(st *state) error {
		search := strings.ToLower(q.Search)
		rows = filter(ordered[model.Project](st.projects), func(p model.Project) bool {
			if search != "" && !strings.Contains(strings.ToLower(p.Title), search) &&
				!strings.Contains(strings.ToLower(p.Description), search) {
				return false
			}
			if q.Status != "" && p.Status != q.Status {
				return false
			}
			if q.BarangayID != 0 && !slices.ContainsFunc(p.Barangays, func(b model.Barangay) bool { return b.ID == q.BarangayID }) {
				return false
			}
			return true
		})
		slices.SortFunc(rows, func(a, b model.Project) int { return byCreated(true)(a.Model, b.Model) })
		total = int64(len(rows))
		rows = store.Slice(rows, q.Page)
		for i := range rows {
			rows[i] = st.projectDetail(rows[i])
		}
		return nil
	})
	return rows, total, err
}

func (r projectRepo) Create(_ context.Context, p *model.Project) error {
	return r.s.run(func(st *state) error {
		p.ID = 0
		return r.write(st, p)
	})
}

func (r projectRepo) Save(_ context.Context, p *model.Project) error {
	return r.s.run(func(st *state) error {
		if _, ok := st.projects[p.ID]; !ok {
			return store.ErrNotFound
		}
		return r.write(st, p)
	})
}

func (r projectRepo) write(st *state, p *model.Project) error {
	if err := beforeSave(p); err != nil {
		return err
	}
	if anyRow(st.projects, func(o model.Project) bool { return o.ID != p.ID && o.Title == p.Title }) {
		return store.ErrDuplicate
	}
	row := *p
	row.FundingSource = nil
	row.Media = nil
	row.Stats = nil
	row.Tags = slices.Clone(p.Tags)
	row.Barangays = slices.Clone(p.Barangays)
	put(st, st.projects, &row, r.s.now())
	p.ID, p.CreatedAt, p.UpdatedAt = row.ID, row.CreatedAt, row.UpdatedAt
	return nil
}

func (r projectRepo) Delete(_ context.Context, id uint) error {
	return r.s.run(func(st *state) error {
		if _, ok := st.projects[id]; !ok {
			return store.ErrNotFound
		}
		st.deleteProject(id)
		return nil
	})
}

func (r projectRepo) DeleteAll(context.Context) (int64, error) {
	var n int64
	err := r.s.run(func(st *state) error {
		for id := range st.projects {
			st.deleteProject(id)
			n++
		}
		return nil
	})
	return n, err
}

func (r projectRepo) Stats(_ context.Context, ids []uint) (map[uint]model.ProjectStats, error) {
	stats := make(map[uint]model.ProjectStats, len(ids))
	err := r.s.run(func(st *state) error {
		for _, id := range ids {
			var s model.ProjectStats
			for _, c := range st.comments {
				if c.ProjectID == id {
					s.CommentCount++
				}
			}
			for _, rc := range st.reactions {
				if !eq(rc.ProjectID, id) {
					continue
				}
				switch rc.ReactionType {
				case model.ReactionLike:
					s.Likes++
				case model.ReactionDislike:
					s.Dislikes++
				}
			}
			if s != (model.ProjectStats{}) {
				stats[id] = s
			}
		}
		return nil
	})
	return stats, err
}
