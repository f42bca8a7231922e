package http

import "github.com/gin-gonic/gin"

// RegisterTaskRoutes registra las rutas HTTP para el dominio de Tareas.
func RegisterTaskRoutes(r *gin.Engine, handler *TaskHandler) {
	tasks := r.Group("/tasks")
	{
		tasks.POST("", handler.CreateTask)
		tasks.GET("", handler.ListTasks)
		tasks.GET("/:id", handler.GetTask)
		tasks.POST("/:id/complete", handler.CompleteTask)
		tasks.POST("/:id/fail", handler.FailTask)
	}
	// mismo nombre de parámetro que GET /users/:id
	r.GET("/users/:id/tasks", handler.ListUserTasks)
	r.GET("/meta/tasks", handler.DescribeTasks)
}
