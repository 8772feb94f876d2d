package router

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	redisstorage "github.com/gofiber/storage/redis"

	"github.com/lberndt/helpline/internal/pkg/constants"
	"github.com/lberndt/helpline/internal/pkg/env"
	"github.com/lberndt/helpline/internal/pkg/middleware"
)

// ApiRouter wires the external-system send API.
type ApiRouter struct {
	deps *Dependencies
}

func NewApiRouter(deps *Dependencies) *ApiRouter {
	return &ApiRouter{deps: deps}
}

func (a ApiRouter) InstallRouter(app *fiber.App) {
	app.Use("/api", limiter.New(limiter.Config{
		Max:        60,
		Expiration: time.Minute,
		Storage:    newLimiterStorage(),
	}))

	app.Get("/api", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	app.Post(constants.APIMessagesRoute,
		middleware.APIKeyAuthMiddleware(a.deps.Cfg),
		a.deps.API.HandleSendMessage)
}

// newLimiterStorage backs the rate limiter with the shared Redis instance so
// limits hold across replicas.
func newLimiterStorage() *redisstorage.Storage {
	port, err := strconv.Atoi(env.GetEnv("CACHE_PORT", "6379"))
	if err != nil {
		port = 6379
	}
	return redisstorage.New(redisstorage.Config{
		Host:     env.GetEnv("CACHE_HOST", "localhost"),
		Port:     port,
		Database: 1,
	})
}
