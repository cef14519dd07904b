// Package memstore 内存版 store.Store，事务通过快照回滚实现，供测试与本地开发使用
package memstore

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
	"time"

	"civic-project-system/internal/model"
	"civic-project-system/internal/store"

	"gorm.io/gorm"
)

// errForeignKey 对应 MySQL 的 ER_NO_REFERENCED_ROW
var errForeignKey = errors.New("foreign key constraint fails")

type state struct {
	seq           uint
	projects      map[uint]model.Project
	progress      map[uint]model.ProgressHistory
	media         map[uint]model.Media
	reactions     map[uint]model.Reaction
	comments      map[uint]model.Comment
	reports       map[uint]model.Report
	users         map[uint]model.User
	conversations map[uint]model.Conversation
	messages      map[uint]model.Message
	tags          map[uint]model.Tag
	funding       map[uint]model.FundingSource
	barangays     map[uint]model.Barangay
	announcements map[uint]model.Announcement
	contacts      map[uint]model.Contact
}

func newState() *state {
	return &state{
		projects:      map[uint]model.Project{},
		progress:      map[uint]model.ProgressHistory{},
		media:         map[uint]model.Media{},
		reactions:     map[uint]model.Reaction{},
		comments:      map[uint]model.Comment{},
		reports:       map[uint]model.Report{},
		users:         map[uint]model.User{},
		conversations: map[uint]model.Conversation{},
		messages:      map[uint]model.Message{},
		tags:          map[uint]model.Tag{},
		funding:       map[uint]model.FundingSource{},
		barangays:     map[uint]model.Barangay{},
		announcements: map[uint]model.Announcement{},
		contacts:      map[uint]model.Contact{},
	}
}

// clone 浅拷贝每张表；行内切片只会整体替换，不会原地修改
func (st *state) clone() *state {
	return &state{
		seq:           st.seq,
		projects:      maps.Clone(st.projects),
		progress:      maps.Clone(st.progress),
		media:         maps.Clone(st.media),
		reactions:     maps.Clone(st.reactions),
		comments:      maps.Clone(st.comments),
		reports:       maps.Clone(st.reports),
		users:         maps.Clone(st.users),
		conversations: maps.Clone(st.conversations),
		messages:      maps.Clone(st.messages),
		tags:          maps.Clone(st.tags),
		funding:       maps.Clone(st.funding),
		barangays:     maps.Clone(st.barangays),
		announcements: maps.Clone(st.announcements),
		contacts:      maps.Clone(st.contacts),
	}
}

type root struct {
	mu  sync.Mutex
	st  *state
	now func() time.Time
}

// Store 事务串行执行，相当于 serializable 隔离级别
type Store struct {
	root *root
	inTx bool
}

func New() *Store {
	return &Store{root: &root{st: newState(), now: time.Now}}
}

func (s *Store) Transaction(_ context.Context, fn func(tx store.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.root.mu.Lock()
	defer s.root.mu.Unlock()

	snapshot := s.root.st.clone()
	if err := fn(&Store{root: s.root, inTx: true}); err != nil {
		s.root.st = snapshot
		return err
	}
	return nil
}

// run 非事务调用时加锁；事务内已持有锁
func (s *Store) run(fn func(st *state) error) error {
	if !s.inTx {
		s.root.mu.Lock()
		defer s.root.mu.Unlock()
	}
	return fn(s.root.st)
}

func (s *Store) now() time.Time {
	return s.root.now()
}

func (s *Store) Projects() store.ProjectRepo           { return projectRepo{s} }
func (s *Store) Progress() store.ProgressRepo          { return progressRepo{s} }
func (s *Store) Media() store.MediaRepo                { return mediaRepo{s} }
func (s *Store) Reactions() store.ReactionRepo         { return reactionRepo{s} }
func (s *Store) Comments() store.CommentRepo           { return commentRepo{s} }
func (s *Store) Reports() store.ReportRepo             { return reportRepo{s} }
func (s *Store) Users() store.UserRepo                 { return userRepo{s} }
func (s *Store) Conversations() store.ConversationRepo { return conversationRepo{s} }
func (s *Store) Tags() store.TagRepo                   { return tagRepo{s} }

func (s *Store) FundingSources() store.FundingSourceRepo {
	return fundingSourceRepo{repo[model.FundingSource, *model.FundingSource]{
		s:     s,
		table: func(st *state) map[uint]model.FundingSource { return st.funding },
		unique: func(st *state, v *model.FundingSource) bool {
			return anyRow(st.funding, func(f model.FundingSource) bool { return f.ID != v.ID && f.Name == v.Name })
		},
		onDelete: func(st *state, id uint) {
			for pid, p := range st.projects {
				if p.FundingSourceID != nil && *p.FundingSourceID == id {
					p.FundingSourceID = nil
					st.projects[pid] = p
				}
			}
		},
	}}
}

func (s *Store) Barangays() store.Repo[model.Barangay] {
	return repo[model.Barangay, *model.Barangay]{
		s:     s,
		table: func(st *state) map[uint]model.Barangay { return st.barangays },
		unique: func(st *state, v *model.Barangay) bool {
			return anyRow(st.barangays, func(b model.Barangay) bool { return b.ID != v.ID && b.Name == v.Name })
		},
		onDelete: func(st *state, id uint) {
			for pid, p := range st.projects {
				p.Barangays = slices.DeleteFunc(slices.Clone(p.Barangays), func(b model.Barangay) bool { return b.ID == id })
				st.projects[pid] = p
			}
			for uid, u := range st.users {
				if u.BarangayID != nil && *u.BarangayID == id {
					u.BarangayID = nil
					st.users[uid] = u
				}
			}
		},
	}
}

func (s *Store) Announcements() store.Repo[model.Announcement] {
	return repo[model.Announcement, *model.Announcement]{
		s:     s,
		table: func(st *state) map[uint]model.Announcement { return st.announcements },
	}
}

func (s *Store) Contacts() store.Repo[model.Contact] {
	return repo[model.Contact, *model.Contact]{
		s:     s,
		table: func(st *state) map[uint]model.Contact { return st.contacts },
	}
}

// saver 与 gorm 的 BeforeSave 钩子同签名，模型的派生状态与校验都挂在这里
type saver interface {
	BeforeSave(*gorm.DB) error
}

func beforeSave(v any) error {
	if h, ok := v.(saver); ok {
		return h.BeforeSave(nil)
	}
	return nil
}

type row interface {
	GetID() uint
	SetID(uint)
	Stamp(time.Time)
}

type rowPtr[T any] interface {
	*T
	row
}

// put 分配主键、维护时间戳并写入表
func put[T any, P rowPtr[T]](st *state, table map[uint]T, v P, now time.Time) {
	if v.GetID() == 0 {
		st.seq++
		v.SetID(st.seq)
	}
	v.Stamp(now)
	table[v.GetID()] = *v
}

func get[T any](table map[uint]T, id uint) (*T, error) {
	v, ok := table[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &v, nil
}

// ordered 按主键升序
func ordered[T any, P rowPtr[T]](table map[uint]T) []T {
	rows := slices.Collect(maps.Values(table))
	slices.SortFunc(rows, func(a, b T) int {
		return int(P(&a).GetID()) - int(P(&b).GetID())
	})
	return rows
}

func filter[T any](rows []T, keep func(T) bool) []T {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func anyRow[T any](table map[uint]T, match func(T) bool) bool {
	for _, v := range table {
		if match(v) {
			return true
		}
	}
	return false
}

func eq(p *uint, id uint) bool {
	return p != nil && *p == id
}

// byCreated 创建时间排序，主键兜底
func byCreated(desc bool) func(a, b model.Model) int {
	return func(a, b model.Model) int {
		c := a.CreatedAt.Compare(b.CreatedAt)
		if c == 0 {
			c = int(a.ID) - int(b.ID)
		}
		if desc {
			return -c
		}
		return c
	}
}

type repo[T any, P rowPtr[T]] struct {
	s        *Store
	table    func(st *state) map[uint]T
	unique   func(st *state, v P) bool
	onDelete func(st *state, id uint)
}

func (r repo[T, P]) List(context.Context) ([]T, error) {
	var rows []T
	err := r.s.run(func(st *state) error {
		rows = ordered[T, P](r.table(st))
		return nil
	})
	return rows, err
}

func (r repo[T, P]) Get(_ context.Context, id uint) (*T, error) {
	var v *T
	err := r.s.run(func(st *state) (err error) {
		v, err = get(r.table(st), id)
		return err
	})
	return v, err
}

func (r repo[T, P]) Create(_ context.Context, v *T) error {
	return r.s.run(func(st *state) error {
		P(v).SetID(0)
		return r.write(st, v)
	})
}

func (r repo[T, P]) Save(_ context.Context, v *T) error {
	return r.s.run(func(st *state) error {
		return r.write(st, v)
	})
}

func (r repo[T, P]) write(st *state, v *T) error {
	if err := beforeSave(v); err != nil {
		return err
	}
	if r.unique != nil && r.unique(st, P(v)) {
		return store.ErrDuplicate
	}
	put[T, P](st, r.table(st), P(v), r.s.now())
	return nil
}

func (r repo[T, P]) Delete(_ context.Context, id uint) error {
	return r.s.run(func(st *state) error {
		table := r.table(st)
		if _, ok := table[id]; !ok {
			return store.ErrNotFound
		}
		delete(table, id)
		if r.onDelete != nil {
			r.onDelete(st, id)
		}
		return nil
	})
}
