package memstore

import (
	"context"
	"slices"

	"civic-project-system/internal/model"
	"civic-project-system/internal/store"
)

type reactionRepo struct {
	s *Store
}

func targets(rc model.Reaction, t model.Target) bool {
	got, ok := rc.Target()
	return ok && got == t
}

func (st *state) targetExists(t model.Target) bool {
	var ok bool
	switch t.Kind {
	case model.TargetProject:
		_, ok = st.projects[t.ID]
	case model.TargetComment:
		_, ok = st.comments[t.ID]
	}
	return ok
}

func (r reactionRepo) Find(_ context.Context, userID uint, target model.Target) (*model.Reaction, error) {
	var out *model.Reaction
	err := r.s.run(func(st *state) error {
		for _, rc := range ordered[model.Reaction](st.reactions) {
			if rc.ReactedBy == userID && targets(rc, target) {
				out = &rc
				return nil
			}
		}
		return store.ErrNotFound
	})
	return out, err
}

func (r reactionRepo) Get(_ context.Context, id uint) (*model.Reaction, error) {
	var out *model.Reaction
	err := r.s.run(func(st *state) (err error) {
		out, err = get(st.reactions, id)
		return err
	})
	return out, err
}

func (r reactionRepo) Create(_ context.Context, rc *model.Reaction) error {
	return r.s.run(func(st *state) error {
		if err := beforeSave(rc); err != nil {
			return err
		}
		t, _ := rc.Target()
		if !st.targetExists(t) {
			return errForeignKey
		}
		if anyRow(st.reactions, func(o model.Reaction) bool { return o.ReactedBy == rc.ReactedBy && targets(o, t) }) {
			return store.ErrDuplicate
		}
		rc.ID = 0
		put(st, st.reactions, rc, r.s.now())
		return nil
	})
}

func (r reactionRepo) UpdateType(_ context.Context, id uint, t model.ReactionType) error {
	return r.s.run(func(st *state) error {
		rc, ok := st.reactions[id]
		if !ok {
			return store.ErrNotFound
		}
		rc.ReactionType = t
		put(st, st.reactions, &rc, r.s.now())
		return nil
	})
}

func (r reactionRepo) Delete(_ context.Context, id uint) error {
	return r.s.run(func(st *state) error {
		if _, ok := st.reactions[id]; !ok {
			return store.ErrNotFound
		}
		delete(st.reactions, id)
		return nil
	})
}

func (r reactionRepo) DeleteAll(context.Context) (int64, error) {
	var n int64
	err := r.s.run(func(st *state) error {
		n = int64(len(st.reactions))
		clear(st.reactions)
		return nil
	})
	return n, err
}

func (r reactionRepo) List(_ context.Context, q store.ReactionQuery) ([]model.Reaction, int64, error) {
	var (
		rows  []model.Reaction
		total int64
	)
	err := r.s.run(func(st *state) error {
		rows = filter(ordered[model.Reaction](st.reactions), func(rc model.Reaction) bool {
			t, _ := rc.Target()
			if q.Type != "" && rc.ReactionType != q.Type {
				return false
			}
			if q.Kind != "" && t.Kind != q.Kind {
				return false
			}
			return q.Target == nil || t == *q.Target
		})
		slices.SortFunc(rows, func(a, b model.Reaction) int { return byCreated(q.Desc)(a.Model, b.Model) })
		total = int64(len(rows))
		rows = store.Slice(rows, q.Page)
		return nil
	})
	return rows, total, err
}

func (r reactionRepo) Counts(_ context.Context, target model.Target) (model.ReactionCounts, error) {
	var counts model.ReactionCounts
	err := r.s.run(func(st *state) error {
		for _, rc := range st.reactions {
			if !targets(rc, target) {
				continue
			}
			switch rc.ReactionType {
			case model.ReactionLike:
				counts.Likes++
			case model.ReactionDislike:
				counts.Dislikes++
			}
		}
		return nil
	})
	return counts, err
}
