package httpapi

import (
	"net/http"

	"callcenter-platform/internal/rbac"

	"github.com/gin-gonic/gin"
)

// Register wires all routes. authMW must verify the access token and inject
// the live identity; role gating happens per group on top of the per-
// operation policy inside the services.
func Register(r *gin.Engine, h Handlers, authMW gin.HandlerFunc) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/refresh", h.Refresh)
		authGroup.GET("/me", authMW, h.Me)
	}

	admin := api.Group("/admin")
	admin.Use(authMW, rbac.RequireRole(rbac.RoleAdmin))
	{
		admin.POST("/customers", h.CreateCustomer)
		admin.GET("/customers", h.ListCustomers)
		admin.GET("/customers/:id", h.GetCustomer)
		admin.PUT("/customers/:id", h.UpdateCustomer)
		admin.DELETE("/customers/:id", h.DeleteCustomer)

		admin.GET("/call-records", h.ListCallRecords)

		admin.POST("/calls", h.CreateCall)
		admin.GET("/calls", h.ListCalls)
		admin.GET("/calls/:id", h.GetCall)
		admin.PUT("/calls/:id", h.UpdateCall)
		admin.PUT("/calls/:id/assign", h.AssignCall)
		admin.DELETE("/calls/:id", h.DeleteCall)

		admin.GET("/feedback", h.ListFeedback)

		admin.POST("/users", h.CreateUser)
		admin.GET("/users", h.ListUsers)

		admin.GET("/dashboard/stats", h.AdminStats)
	}

	user := api.Group("/user")
	user.Use(authMW, rbac.RequireRole(rbac.RoleUser))
	{
		user.GET("/assigned-customers", h.AssignedCustomers)
		user.GET("/customers/:id", h.GetCustomer)
		user.PUT("/customers/:id/status", h.UpdateCustomerStatus)

		user.POST("/call-records", h.LogCallRecord)
		user.GET("/call-records", h.MyCallRecords)

		user.GET("/calls", h.ListCalls)
		user.GET("/calls/:id", h.GetCall)
		user.PUT("/calls/:id/status", h.UpdateCallStatus)

		user.POST("/feedback", h.SubmitFeedback)
		user.GET("/feedback", h.MyFeedback)
		user.POST("/feedback/:id/recording", h.UpdateFeedbackRecording)

		user.GET("/dashboard/stats", h.AgentStats)
	}
}
