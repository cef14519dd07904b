package memstore

import (
	"context"
	"slices"

	"civic-project-system/internal/model"
)

type tagRepo struct {
	s *Store
}

func (r tagRepo) List(context.Context) ([]model.Tag, error) {
	var rows []model.Tag
	err := r.s.run(func(st *state) error {
		rows = ordered[model.Tag](st.tags)
		return nil
	})
	return rows, err
}

func (r tagRepo) FindByNames(_ context.Context, names []string) ([]model.Tag, error) {
	var rows []model.Tag
	err := r.s.run(func(st *state) error {
		rows = filter(ordered[model.Tag](st.tags), func(t model.Tag) bool { return slices.Contains(names, t.Name) })
		return nil
	})
	return rows, err
}

func (r tagRepo) Seed(_ context.Context, names []string) error {
	return r.s.run(func(st *state) error {
		for _, name := range names {
			if anyRow(st.tags, func(t model.Tag) bool { return t.Name == name }) {
				continue
			}
			t := model.Tag{Name: name}
			if err := beforeSave(&t); err != nil {
				return err
			}
			put(st, st.tags, &t, r.s.now())
		}
		return nil
	})
}

type fundingSourceRepo struct {
	repo[model.FundingSource, *model.FundingSource]
}

func (r fundingSourceRepo) FindOrCreate(_ context.Context, name string) (*model.FundingSource, error) {
	var out *model.FundingSource
	err := r.s.run(func(st *state) error {
		for _, f := range st.funding {
			if f.Name == name {
				out = &f
				return nil
			}
		}
		f := model.FundingSource{Name: name}
		if err := r.write(st, &f); err != nil {
			return err
		}
		out = &f
		return nil
	})
	return out, err
}
