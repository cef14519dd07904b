// Package permission 资源所有者或管理员才能修改资源
package permission

import (
	"civic-project-system/internal/global/response"
	"civic-project-system/internal/model"
)

// Actor 当前请求的用户
type Actor struct {
	ID   uint
	Role model.Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == model.RoleAdmin
}

// Check 管理员或 ownerID 本人放行
func Check(actor Actor, ownerID uint) error {
	if actor.IsAdmin() || (actor.ID != 0 && actor.ID == ownerID) {
		return nil
	}
	return response.ErrUnauthorized
}

// CheckSelf 只允许本人，管理员也不例外
func CheckSelf(actor Actor, ownerID uint, action string) error {
	return response.UnauthorizedIf(actor.ID == 0 || actor.ID != ownerID,
		"You are not allowed to %s", action)
}
