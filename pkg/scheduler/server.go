package scheduler

import (
	"context"

	"booking-order-be/internal/pkg/logger"

	"github.com/hibiken/asynq"
)

// Server runs delayed order tasks.
type Server struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	logger logger.ILogger
}

func NewServer(redisOpt asynq.RedisConnOpt, concurrency int, log logger.ILogger) *Server {
	srv := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				QueueOrder: 1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Error("SCHEDULER", "Task failed", map[string]interface{}{
					"type":  task.Type(),
					"error": err.Error(),
				})
			}),
		},
	)

	return &Server{
		server: srv,
		mux:    asynq.NewServeMux(),
		logger: log,
	}
}

// Handle registers a handler for a task type. Must be called before Start.
func (s *Server) Handle(taskType string, handler asynq.HandlerFunc) {
	s.mux.HandleFunc(taskType, handler)
}

// Start runs the workers in the background.
func (s *Server) Start() error {
	s.logger.Info("SCHEDULER", "Worker server starting", nil)
	return s.server.Start(s.mux)
}

func (s *Server) Shutdown() {
	s.logger.Info("SCHEDULER", "Worker server stopping", nil)
	s.server.Shutdown()
}
