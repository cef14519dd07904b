package reference

import (
	"civic-project-system/internal/global/cache"
	"civic-project-system/internal/global/middleware"
	"civic-project-system/internal/model"
	"civic-project-system/internal/store"

	"github.com/gin-gonic/gin"
)

var (
	barangays = &resource[model.Barangay]{
		name:     "Barangay",
		plural:   "barangays",
		key:      cache.KeyBarangays,
		affects:  []string{cache.KeyProjects, cache.KeySingleProject, cache.KeyUsers},
		repo:     func(st store.Store) store.Repo[model.Barangay] { return st.Barangays() },
		conflict: "Barangay already exists",
	}
	fundingSources = &resource[model.FundingSource]{
		name:     "Funding source",
		plural:   "fundingSources",
		key:      cache.KeyFundingSources,
		affects:  []string{cache.KeyProjects, cache.KeySingleProject},
		repo:     func(st store.Store) store.Repo[model.FundingSource] { return st.FundingSources() },
		conflict: "Funding source already exists",
	}
	announcements = &resource[model.Announcement]{
		name:   "Announcement",
		plural: "announcements",
		key:    cache.KeyAnnouncements,
		repo:   func(st store.Store) store.Repo[model.Announcement] { return st.Announcements() },
		stamp:  func(a *model.Announcement, userID uint) { a.CreatedBy = userID },
	}
	contacts = &resource[model.Contact]{
		name:   "Contact",
		plural: "contacts",
		key:    cache.KeyContacts,
		repo:   func(st store.Store) store.Repo[model.Contact] { return st.Contacts() },
	}
)

func (m *ModuleReference) InitRouter(r *gin.RouterGroup) {
	admin := []gin.HandlerFunc{middleware.Auth(), middleware.RequireRole(model.RoleAdmin)}

	// 村列表注册页也要用，不需要登录
	g := r.Group("/barangays")
	g.GET("", barangays.List)
	g.GET("/:id", middleware.Auth(), barangays.Get)
	g.POST("", append(admin, barangays.Create)...)
	g.PATCH("/:id", append(admin, barangays.Update)...)
	g.DELETE("/:id", append(admin, barangays.Delete)...)

	g = r.Group("/funding-sources", middleware.Auth())
	g.GET("", fundingSources.List)
	g.POST("", append(admin, fundingSources.Create)...)
	g.DELETE("/:id", append(admin, fundingSources.Delete)...)

	r.GET("/tags", middleware.Auth(), Tags)

	for _, res := range []handlers{announcements, contacts} {
		g = r.Group("/"+res.path(), middleware.Auth())
		g.GET("", res.List)
		g.GET("/:id", res.Get)
		g.POST("", append(admin, res.Create)...)
		g.PATCH("/:id", append(admin, res.Update)...)
		g.DELETE("/:id", append(admin, res.Delete)...)
	}
}
