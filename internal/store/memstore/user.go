package memstore

import (
	"context"
	"slices"
	"strings"

	"civic-project-system/internal/model"
	"civic-project-system/internal/store"
)

type userRepo struct {
	s *Store
}

func (r userRepo) Get(_ context.Context, id uint) (*model.User, error) {
	var out *model.User
	err := r.s.run(func(st *state) (err error) {
		out, err = get(st.users, id)
		return err
	})
	return out, err
}

// GetByEmail 与 MySQL 默认排序规则一致，忽略大小写
func (r userRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	var out *model.User
	err := r.s.run(func(st *state) error {
		for _, u := range ordered[model.User](st.users) {
			if strings.EqualFold(u.Email, email) {
				out = &u
				return nil
			}
		}
		return store.ErrNotFound
	})
	return out, err
}

func (r userRepo) Create(_ context.Context, u *model.User) error {
	return r.s.run(func(st *state) error {
		u.ID = 0
		return r.write(st, u)
	})
}

func (r userRepo) Save(_ context.Context, u *model.User) error {
	return r.s.run(func(st *state) error {
		if _, ok := st.users[u.ID]; !ok {
			return store.ErrNotFound
		}
		return r.write(st, u)
	})
}

func (r userRepo) write(st *state, u *model.User) error {
	if err := beforeSave(u); err != nil {
		return err
	}
	if u.BarangayID != nil {
		if _, ok := st.barangays[*u.BarangayID]; !ok {
			return errForeignKey
		}
	}
	if anyRow(st.users, func(o model.User) bool {
		return o.ID != u.ID && (strings.EqualFold(o.Username, u.Username) || strings.EqualFold(o.Email, u.Email))
	}) {
		return store.ErrDuplicate
	}
	row := *u
	row.Barangay = nil
	put(st, st.users, &row, r.s.now())
	u.ID, u.CreatedAt, u.UpdatedAt = row.ID, row.CreatedAt, row.UpdatedAt
	return nil
}

func (r userRepo) Delete(_ context.Context, id uint) (*store.Removal, error) {
	var out *store.Removal
	err := r.s.run(func(st *state) error {
		if _, ok := st.users[id]; !ok {
			return store.ErrNotFound
		}
		out = &store.Removal{Users: 1, Projects: distinct(st.deleteUser(id))}
		return nil
	})
	return out, err
}

func (r userRepo) DeleteNonAdmins(context.Context) (*store.Removal, error) {
	out := &store.Removal{Projects: []uint{}}
	err := r.s.run(func(st *state) error {
		var projects []uint
		for _, u := range ordered[model.User](st.users) {
			if u.Role == model.RoleAdmin {
				continue
			}
			projects = append(projects, st.deleteUser(u.ID)...)
			out.Users++
		}
		out.Projects = distinct(projects)
		return nil
	})
	return out, err
}

func distinct(ids []uint) []uint {
	slices.Sort(ids)
	return append([]uint{}, slices.Compact(ids)...)
}

func (r userRepo) Count(context.Context) (int64, error) {
	var n int64
	err := r.s.run(func(st *state) error {
		n = int64(len(st.users))
		return nil
	})
	return n, err
}

func (r userRepo) ExistsBarangayUser(_ context.Context, barangayID, excludeID uint) (bool, error) {
	var found bool
	err := r.s.run(func(st *state) error {
		found = anyRow(st.users, func(u model.User) bool {
			return u.ID != excludeID && u.Role == model.RoleBarangay && eq(u.BarangayID, barangayID)
		})
		return nil
	})
	return found, err
}

func (r userRepo) List(_ context.Context, page store.Page) ([]model.User, int64, error) {
	var (
		rows  []model.User
		total int64
	)
	err := r.s.run(func(st *state) error {
		rows = ordered[model.User](st.users)
		total = int64(len(rows))
		rows = store.Slice(rows, page)
		for i := range rows {
			if rows[i].BarangayID == nil {
				continue
			}
			if b, ok := st.barangays[*rows[i].BarangayID]; ok {
				rows[i].Barangay = &b
			}
		}
		return nil
	})
	return rows, total, err
}
