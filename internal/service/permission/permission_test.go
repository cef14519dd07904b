package permission

import (
	"testing"

	"civic-project-system/internal/global/response"
	"civic-project-system/internal/model"

	"github.com/stretchr/testify/require"
)

func TestCheck(t *testing.T) {
	owner := Actor{ID: 7, Role: model.RoleResident}
	other := Actor{ID: 8, Role: model.RoleBarangay}
	admin := Actor{ID: 1, Role: model.RoleAdmin}
	assistant := Actor{ID: 2, Role: model.RoleAssistantAdmin}

	require.NoError(t, Check(owner, 7))
	require.NoError(t, Check(admin, 7))

	for _, a := range []Actor{other, assistant, {}} {
		err := Check(a, 7)
		require.ErrorIs(t, err, response.ErrUnauthorized)
		require.Equal(t, "not authorized to access this route", response.From(err).Message)
	}
	// 匿名用户不能冒充 owner 为 0 的资源
	require.Error(t, Check(Actor{}, 0))
}

func TestCheckSelf(t *testing.T) {
	require.NoError(t, CheckSelf(Actor{ID: 3}, 3, "edit this reaction"))

	err := CheckSelf(Actor{ID: 1, Role: model.RoleAdmin}, 3, "delete this reaction")
	require.ErrorIs(t, err, response.ErrUnauthorized)
	require.Equal(t, "You are not allowed to delete this reaction", response.From(err).Message)
}
