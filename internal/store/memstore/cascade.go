package memstore

import (
	"slices"

	"civic-project-system/internal/model"
)

// 以下函数模拟外键上的 ON DELETE CASCADE

func (st *state) deleteProject(id uint) {
	delete(st.projects, id)
	for mid, m := range st.media {
		if eq(m.ProjectID, id) {
			delete(st.media, mid)
		}
	}
	for hid, h := range st.progress {
		if h.ProjectID == id {
			st.deleteProgress(hid)
		}
	}
	for cid, c := range st.comments {
		if c.ProjectID == id {
			st.deleteComment(cid)
		}
	}
	for rid, r := range st.reactions {
		if eq(r.ProjectID, id) {
			delete(st.reactions, rid)
		}
	}
	for rid, r := range st.reports {
		if eq(r.ProjectID, id) {
			st.deleteReport(rid)
		}
	}
}

func (st *state) deleteProgress(id uint) {
	delete(st.progress, id)
	for mid, m := range st.media {
		if eq(m.ProgressHistoryID, id) {
			delete(st.media, mid)
		}
	}
}

func (st *state) deleteComment(id uint) {
	delete(st.comments, id)
	for rid, r := range st.reactions {
		if eq(r.CommentID, id) {
			delete(st.reactions, rid)
		}
	}
	for rid, r := range st.reports {
		if eq(r.CommentID, id) {
			st.deleteReport(rid)
		}
	}
}

func (st *state) deleteReport(id uint) {
	delete(st.reports, id)
	for mid, m := range st.media {
		if eq(m.ReportID, id) {
			delete(st.media, mid)
		}
	}
}

// deleteUser comments.commented_by 在 MySQL 上不级联，由 gormstore 显式删除，这里保持一致。
// 返回被删除评论所在的项目
func (st *state) deleteUser(id uint) []uint {
	delete(st.users, id)
	var projects []uint
	for cid, c := range st.comments {
		if c.CommentedBy == id {
			projects = append(projects, c.ProjectID)
			st.deleteComment(cid)
		}
	}
	for rid, r := range st.reactions {
		if r.ReactedBy == id {
			delete(st.reactions, rid)
		}
	}
	for mid, m := range st.messages {
		if m.SenderID == id {
			delete(st.messages, mid)
		}
	}
	for cid, c := range st.conversations {
		c.Users = slices.DeleteFunc(slices.Clone(c.Users), func(u model.User) bool { return u.ID == id })
		st.conversations[cid] = c
	}
	return projects
}
