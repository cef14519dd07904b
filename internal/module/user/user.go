package user

import (
	"context"
	"errors"
	"strings"

	"civic-project-system/internal/global/cache"
	"civic-project-system/internal/global/jwt"
	"civic-project-system/internal/global/request"
	"civic-project-system/internal/global/response"
	"civic-project-system/internal/model"
	"civic-project-system/internal/store"
	"civic-project-system/tools"

	"github.com/gin-gonic/gin"
)

type RegisterReq struct {
	Username   string     `json:"username" binding:"required,max=50"`
	Email      string     `json:"email" binding:"required,email"`
	Password   string     `json:"password" binding:"required,min=6"`
	Role       model.Role `json:"role"`
	BarangayID *uint      `json:"barangay_id"`
}

type LoginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Listing 用户列表
type Listing struct {
	Total int64        `json:"total_count"`
	Count int          `json:"count"`
	Users []model.User `json:"users"`
}

// Register 第一个注册的用户成为管理员；每个村只能有一个村级账号
func Register(c *gin.Context) {
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
		n, err := tx.Users().Count(ctx)
		if err != nil {
			return err
		}
		if n == 0 {
			u.Role = model.RoleAdmin
		}
		if err := checkBarangay(ctx, tx, u); err != nil {
			return err
		}
		return conflict(tx.Users().Create(ctx, u))
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	policy.Invalidate(ctx, cache.KeyUsers)

	log.Info("user registered", "user_id", u.ID, "role", u.Role)
	response.Created(c, gin.H{"message": "Success! User registered", "user": u})
}

func Login(c *gin.Context) {
	var req LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, err)
		return
	}
	u, err := users.Users().GetByEmail(c.Request.Context(), req.Email)
	if errors.Is(err, store.ErrNotFound) {
		response.Fail(c, response.ErrUnauthenticated.WithMessage("Invalid email"))
		return
	}
	if err != nil {
		response.Fail(c, err)
		return
	}
	if !tools.CheckPassword(u.Password, req.Password) {
		log.Warn("incorrect password", "user_id", u.ID)
		response.Fail(c, response.ErrUnauthenticated.WithMessage("Incorrect password"))
		return
	}
	token, err := jwt.CreateToken(u.ID, u.Role)
	if err != nil {
		response.Fail(c, err)
		return
	}

	log.Info("user logged in", "user_id", u.ID)
	response.Success(c, gin.H{
		"message":      "Success! You are logged in",
		"access_token": token,
		"user":         u,
	})
}

func Me(c *gin.Context) {
	actor := request.Actor(c)
	u, err := users.Users().Get(c.Request.Context(), actor.ID)
	if errors.Is(err, store.ErrNotFound) {
		response.Fail(c, response.ErrUnauthenticated.WithMessage("User not found"))
		return
	}
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{"user": u})
}

// List 不分页时走 users 缓存
func List(c *gin.Context) {
	page, err := request.Page(c)
	if err != nil {
		response.Fail(c, err)
		return
	}
	load := func(ctx context.Context) (*Listing, error) {
		rows, total, err := users.Users().List(ctx, page)
		if err != nil {
			return nil, err
		}
		if rows == nil {
			rows = []model.User{}
		}
		return &Listing{Total: total, Count: len(rows), Users: rows}, nil
	}

	var out *Listing
	if page.Enabled() {
		out, err = load(c.Request.Context())
	} else {
		out, err = cache.ReadThrough(c.Request.Context(), policy, cache.KeyUsers, load)
	}
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, out)
}
