package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"civic-project-system/internal/global/cache"
	"civic-project-system/internal/global/request"
	"civic-project-system/internal/global/response"
	"civic-project-system/internal/model"
	"civic-project-system/internal/service/permission"
	"civic-project-system/internal/store"
	"civic-project-system/tools"

	"github.com/gin-gonic/gin"
)

// ProfileReq 本人修改资料；改密码时新旧密码都要给出
type ProfileReq struct {
	Username    *string `json:"username" binding:"omitempty,max=50"`
	Email       *string `json:"email" binding:"omitempty,email"`
	BarangayID  *uint   `json:"barangay_id"`
	OldPassword string  `json:"old_password"`
	NewPassword string  `json:"new_password" binding:"omitempty,min=6"`
}

// EditReq 管理员或本人修改账号；只有管理员能改角色
type EditReq struct {
	Username   *string     `json:"username" binding:"omitempty,max=50"`
	Email      *string     `json:"email" binding:"omitempty,email"`
	Password   *string     `json:"password" binding:"omitempty,min=6"`
	Role       *model.Role `json:"role"`
	BarangayID *uint       `json:"barangay_id"`
}

func checkBarangay(ctx context.Context, tx store.Store, u *model.User) error {
	if u.BarangayID == nil {
		return nil
	}
	_, err := tx.Barangays().Get(ctx, *u.BarangayID)
	if errors.Is(err, store.ErrNotFound) {
		return response.ErrBadRequest.WithMessage("Barangay does not exist")
	}
	if err != nil {
		return err
	}
	if u.Role != model.RoleBarangay {
		return nil
	}
	exists, err := tx.Users().ExistsBarangayUser(ctx, *u.BarangayID, u.ID)
	if err != nil {
		return err
	}
	return response.ConflictIf(exists, "Barangay has already an existing user")
}

func conflict(err error) error {
	if errors.Is(err, store.ErrDuplicate) {
		return response.ErrConflict.WithMessage("Username or email already exists").WithOrigin(err)
	}
	return err
}

func notFound(id uint) *response.Error {
	return response.ErrNotFound.WithMessage("User with id: %d not found", id)
}

func setTrimmed(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

// invalidate 删除用户会连带删除评论与反应，相关缓存一起清掉
func invalidate(ctx context.Context, removal *store.Removal, extra ...string) {
	keys := append([]string{cache.KeyUsers}, extra...)
	if removal != nil {
		keys = append(keys, cache.KeyReactions, cache.KeyProjects, cache.KeySingleProject)
		for _, id := range removal.Projects {
			keys = append(keys, cache.CommentsKey(id))
		}
	}
	policy.Invalidate(ctx, keys...)
}

// conversationKeys 会话列表里带着参与者资料，用户及其会话对象的缓存都要清掉
func conversationKeys(ctx context.Context, ids ...uint) []string {
	seen := map[uint]bool{}
	var keys []string
	add := func(id uint) {
		if !seen[id] {
			seen[id] = true
			keys = append(keys, cache.ConversationsKey(id))
		}
	}
	for _, id := range ids {
		add(id)
		rows, err := users.Conversations().ListByUser(ctx, id)
		if err != nil {
			log.Warn("list conversations for cache invalidation failed", "user_id", id, "error", err)
			continue
		}
		for _, c := range rows {
			for _, u := range c.Users {
				add(u.ID)
			}
		}
	}
	return keys
}

func Get(c *gin.Context) {
	id, err := request.ID(c, "id")
	if err != nil {
		response.Fail(c, err)
		return
	}
	if err := permission.Check(request.Actor(c), id); err != nil {
		response.Fail(c, err)
		return
	}
	u, err := users.Users().Get(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		err = notFound(id)
	}
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{"user": u})
}

// Add 管理员直接创建账号，角色由请求决定
func Add(c *gin.Context) {
	var req RegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, err)
		return
	}
	hash, err := tools.HashPassword(req.Password)
	if err != nil {
		response.Fail(c, err)
		return
	}
	u := &model.User{
		Username:   strings.TrimSpace(req.Username),
		Email:      strings.TrimSpace(req.Email),
		Password:   hash,
		Role:       req.Role,
		BarangayID: req.BarangayID,
	}
	ctx := c.Request.Context()
	err = users.Transaction(ctx, func(tx store.Store) error {
		if err := checkBarangay(ctx, tx, u); err != nil {
			return err
		}
		return conflict(tx.Users().Create(ctx, u))
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	invalidate(ctx, nil)

	log.Info("user added", "user_id", u.ID, "role", u.Role, "by", request.Actor(c).ID)
	response.Created(c, gin.H{"message": "User created", "user": u})
}

// UpdateProfile PATCH /users/update-user，只改当前登录用户
func UpdateProfile(c *gin.Context) {
	var req ProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, err)
		return
	}
	changePassword := req.OldPassword != "" && req.NewPassword != ""
	err := response.BadRequestIf(req.Username == nil && req.Email == nil && req.BarangayID == nil && !changePassword,
		"At least one field (username, email, or password) must be provided")
	if err != nil {
		response.Fail(c, err)
		return
	}

	actor := request.Actor(c)
	ctx := c.Request.Context()
	var u *model.User
	err = users.Transaction(ctx, func(tx store.Store) (err error) {
		u, err = tx.Users().Get(ctx, actor.ID)
		if errors.Is(err, store.ErrNotFound) {
			return notFound(actor.ID)
		}
		if err != nil {
			return err
		}
		setTrimmed(&u.Username, req.Username)
		setTrimmed(&u.Email, req.Email)
		if req.BarangayID != nil {
			u.BarangayID = req.BarangayID
		}
		if changePassword {
			if !tools.CheckPassword(u.Password, req.OldPassword) {
				return response.ErrUnauthenticated.WithMessage("Incorrect old password")
			}
			if tools.CheckPassword(u.Password, req.NewPassword) {
				return response.ErrConflict.WithMessage("You have already updated your password")
			}
			if u.Password, err = tools.HashPassword(req.NewPassword); err != nil {
				return err
			}
		}
		if err := checkBarangay(ctx, tx, u); err != nil {
			return err
		}
		return conflict(tx.Users().Save(ctx, u))
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	invalidate(ctx, nil, conversationKeys(ctx, u.ID)...)

	log.Info("user updated profile", "user_id", u.ID, "password_changed", changePassword)
	response.Success(c, gin.H{"message": "User updated successfully", "user": u})
}

// Edit PATCH /users/:id，管理员或本人
func Edit(c *gin.Context) {
	id, err := request.ID(c, "id")
	if err != nil {
		response.Fail(c, err)
		return
	}
	actor := request.Actor(c)
	if err := permission.Check(actor, id); err != nil {
		response.Fail(c, err)
		return
	}
	var req EditReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, err)
		return
	}
	if req.Role != nil && !actor.IsAdmin() {
		response.Fail(c, response.ErrUnauthorized.WithMessage("Only an admin can change roles"))
		return
	}

	ctx := c.Request.Context()
	var u *model.User
	err = users.Transaction(ctx, func(tx store.Store) (err error) {
		u, err = tx.Users().Get(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return notFound(id)
		}
		if err != nil {
			return err
		}
		setTrimmed(&u.Username, req.Username)
		setTrimmed(&u.Email, req.Email)
		if req.Role != nil {
			u.Role = *req.Role
		}
		if req.BarangayID != nil {
			u.BarangayID = req.BarangayID
		}
		if req.Password != nil {
			if u.Password, err = tools.HashPassword(*req.Password); err != nil {
				return err
			}
		}
		if err := checkBarangay(ctx, tx, u); err != nil {
			return err
		}
		return conflict(tx.Users().Save(ctx, u))
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	invalidate(ctx, nil, conversationKeys(ctx, id)...)

	log.Info("user edited", "user_id", id, "by", actor.ID)
	response.Success(c, gin.H{"message": "User updated successfully", "user": u})
}

func Delete(c *gin.Context) {
	id, err := request.ID(c, "id")
	if err != nil {
		response.Fail(c, err)
		return
	}
	actor := request.Actor(c)
	if err := permission.Check(actor, id); err != nil {
		response.Fail(c, err)
		return
	}
	ctx := c.Request.Context()
	keys := conversationKeys(ctx, id)
	removal, err := users.Users().Delete(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		err = notFound(id)
	}
	if err != nil {
		response.Fail(c, err)
		return
	}
	invalidate(ctx, removal, keys...)

	log.Info("user deleted", "user_id", id, "by", actor.ID)
	response.Success(c, gin.H{"message": fmt.Sprintf("User with id: %d has been deleted", id)})
}

// DeleteAll 删除管理员以外的全部用户
func DeleteAll(c *gin.Context) {
	ctx := c.Request.Context()
	removal, err := users.Users().DeleteNonAdmins(ctx)
	if err == nil {
		err = response.NoContentIf(removal.Users == 0, "No users to delete")
	}
	if err != nil {
		response.Fail(c, err)
		return
	}
	// 剩下的都是管理员
	var keys []string
	if admins, _, err := users.Users().List(ctx, store.Page{}); err == nil {
		for _, u := range admins {
			keys = append(keys, cache.ConversationsKey(u.ID))
		}
	}
	invalidate(ctx, removal, keys...)

	log.Warn("all non-admin users deleted", "count", removal.Users, "by", request.Actor(c).ID)
	response.Success(c, gin.H{"message": "All users deleted", "count": removal.Users})
}
