// Package server exposes completed benchmark reports and run history over
// HTTP so results can be browsed without shell access to the results
// directory.
package server

import (
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/membench/membench/internal/metrics"
	"github.com/membench/membench/internal/storage/sqlite"
)

// Server serves report files from the results directory plus run history
// from SQLite.
type Server struct {
	app        *fiber.App
	resultsDir string
	history    *sqlite.Client
}

func New(resultsDir string, history *sqlite.Client) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, OPTIONS",
	}))

	s := &Server{app: app, resultsDir: resultsDir, history: history}

	api := app.Group("/api/v1")
	api.Get("/health", s.handleHealth)
	api.Get("/report", s.handleReportJSON)
	api.Get("/report/markdown", s.handleReportMarkdown)
	api.Get("/history", s.handleHistory)

	app.Get("/metrics", metrics.Handler())

	return s
}

// Listen blocks serving HTTP on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "healthy"})
}

func (s *Server) handleReportJSON(c *fiber.Ctx) error {
	raw, err := os.ReadFile(filepath.Join(s.resultsDir, "report.json"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no report generated yet",
		})
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(raw)
}

func (s *Server) handleReportMarkdown(c *fiber.Ctx) error {
	raw, err := os.ReadFile(filepath.Join(s.resultsDir, "report.md"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no report generated yet",
		})
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.Send(raw)
}

func (s *Server) handleHistory(c *fiber.Ctx) error {
	if s.history == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "run history not configured",
		})
	}

	limit := c.QueryInt("limit", 50)
	records, err := s.history.ListRunResults(limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if records == nil {
		records = []sqlite.RunRecord{}
	}
	return c.JSON(fiber.Map{"runs": records, "count": len(records)})
}
