package main

import (
	"log"
	"time"

	config "github.com/studybridge/peer_tutor/configs"
	"github.com/studybridge/peer_tutor/database"
	"github.com/studybridge/peer_tutor/handlers"
	"github.com/studybridge/peer_tutor/jobs"
	"github.com/studybridge/peer_tutor/notifications"
	"github.com/studybridge/peer_tutor/routes"
	"github.com/studybridge/peer_tutor/services"
	"github.com/studybridge/peer_tutor/stores"
	"github.com/studybridge/peer_tutor/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"
)

func main() {
	database.ConnectDB()
	database.Migrate()
	database.SeedDemoTutor()

	userStore := stores.NewUserStore(database.DB)
	bookingStore := stores.NewBookingStore(database.DB)
	ratingStore := stores.NewRatingStore(database.DB)

	hub := websocket.NewHub()
	go hub.Run()
	dispatcher := notifications.NewDispatcher(hub, notifications.NewEmailService())

	bookingService := services.NewBookingService(bookingStore, userStore, dispatcher)
	ratingService := services.NewRatingService(ratingStore, bookingStore, dispatcher)
	tutorService := services.NewTutorService(userStore, bookingStore, ratingStore)

	c := cron.New()
	reminders := jobs.NewReminderJob(bookingStore, dispatcher)
	c.AddFunc("*/5 * * * *", reminders.Run)
	go c.Start()
	log.Println("✅ Cron job for session reminders scheduled successfully.")

	app := fiber.New(fiber.Config{
		Prefork:           false,
		AppName:           "Peer Tutor",
		CaseSensitive:     true,
		StrictRouting:     true,
		EnablePrintRoutes: true,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}

			log.Printf("[ERROR] %v | Path: %s | Method: %s", err, c.Path(), c.Method())
			return c.Status(code).JSON(fiber.Map{
				"status":  "error",
				"code":    code,
				"message": err.Error(),
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Authorization",
		MaxAge:        86400,
	}))

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "success",
			"message": "Welcome to Peer Tutor API",
		})
	})

	routes.AuthRoutes(app, handlers.NewAuthHandler(userStore))
	routes.TutorRoutes(app, handlers.NewTutorHandler(tutorService))
	routes.BookingRoutes(app, handlers.NewBookingHandler(bookingService))
	routes.RatingRoutes(app, handlers.NewRatingHandler(ratingService))
	routes.WebSocketRoutes(app, handlers.NewWSHandler(hub))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})

	port := config.ConfigOr("PORT", "8080")
	log.Printf("✅ Server is running on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("🔥 Server failed to start: %v", err)
	}
}
