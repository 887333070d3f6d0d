package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/insightdelivered/bet-history-analyzer/internal/extractor"
	"github.com/insightdelivered/bet-history-analyzer/internal/metrics"
	"github.com/insightdelivered/bet-history-analyzer/internal/models"
	"github.com/insightdelivered/bet-history-analyzer/internal/pipeline"
	"github.com/insightdelivered/bet-history-analyzer/internal/writer"
)

// Version is reported by the health endpoint and every response.
const Version = "2.0.0"

// ProcessResponse is the JSON response from the /api/process endpoint.
type ProcessResponse struct {
	Success     bool                 `json:"success"`
	Error       string               `json:"error,omitempty"`
	RunID       string               `json:"runId,omitempty"`
	Singles     []models.BetRecord   `json:"singles"`
	Parlays     []models.BetRecord   `json:"parlays"`
	Legs        []models.ParlayLeg   `json:"legs"`
	Stats       *models.StatsSummary `json:"stats,omitempty"`
	Version     string               `json:"version,omitempty"`
	Diagnostics *models.Diagnostics  `json:"diagnostics,omitempty"`
}

// Handler holds the HTTP handlers for the API.
type Handler struct {
	Pipeline  *pipeline.Pipeline
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
	StaticDir string
}

// NewApp builds the fiber app with middleware and all routes registered.
func NewApp(h *Handler, bodyLimitMB int) *fiber.App {
	if bodyLimitMB <= 0 {
		bodyLimitMB = 50
	}
	app := fiber.New(fiber.Config{
		AppName:               "betstats",
		BodyLimit:             bodyLimitMB << 20,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
	app.Use(fiberrecover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type",
	}))
	h.RegisterRoutes(app)
	return app
}

// RegisterRoutes sets up the HTTP routes.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Get("/api/health", h.HandleHealth)
	app.Post("/api/process", h.HandleProcess)
	app.Post("/api/chart", h.HandleChart)
	if h.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(h.Metrics.Handler()))
	}

	// Serve the web client, falling back to index.html for SPA routes
	if h.StaticDir != "" {
		app.Static("/", h.StaticDir)
		app.Get("/*", func(c *fiber.Ctx) error {
			if strings.HasPrefix(c.Path(), "/api/") {
				return fiber.ErrNotFound
			}
			return c.SendFile(filepath.Join(h.StaticDir, "index.html"))
		})
	}
}

// HandleHealth reports liveness.
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"engine":  "fiber",
		"version": Version,
	})
}

// HandleProcess runs one export through the pipeline and returns the
// records and statistics.
func (h *Handler) HandleProcess(c *fiber.Ctx) error {
	debug := c.FormValue("debug") == "true" || c.Query("debug") == "true"

	res, err := h.run(c, debug)
	if err != nil {
		return err
	}

	resp := ProcessResponse{
		Success: true,
		RunID:   res.RunID,
		Singles: res.Singles,
		Parlays: res.Parlays,
		Legs:    res.Legs,
		Stats:   &res.Stats,
		Version: Version,
	}

	// Ensure record lists are never nil (nil marshals to JSON null, not [])
	if resp.Singles == nil {
		resp.Singles = []models.BetRecord{}
	}
	if resp.Parlays == nil {
		resp.Parlays = []models.BetRecord{}
	}
	if resp.Legs == nil {
		resp.Legs = []models.ParlayLeg{}
	}

	// Include the reconstruction report for diagnosing parse issues
	if debug {
		resp.Diagnostics = &res.Diagnostics
	}

	return c.JSON(resp)
}

// HandleChart runs one export and returns its cumulative profit chart as PNG.
func (h *Handler) HandleChart(c *fiber.Ctx) error {
	res, err := h.run(c, false)
	if err != nil {
		return err
	}

	img, err := writer.RenderProfitChart(res.Stats.ProfitTimeline)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, fmt.Sprintf("Chart rendering failed: %v", err))
	}
	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(img)
}

func (h *Handler) run(c *fiber.Ctx, trace bool) (*models.Result, error) {
	src, err := sourceFromRequest(c)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	tables, err := tablesFromRequest(c)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	res, err := h.Pipeline.Run(c.UserContext(), pipeline.Input{Source: src, Tables: tables, Trace: trace})
	if err != nil {
		if errors.Is(err, pipeline.ErrInputUnreadable) {
			return nil, fiber.NewError(fiber.StatusUnprocessableEntity, fmt.Sprintf("Could not read export: %v", err))
		}
		h.logger().Error("pipeline failed", "error", err)
		return nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return res, nil
}

func (h *Handler) logger() *slog.Logger {
	if h.Logger == nil {
		return slog.Default()
	}
	return h.Logger
}

// sourceFromRequest prefers an uploaded file over pasted text.
func sourceFromRequest(c *fiber.Ctx) (pipeline.Source, error) {
	if fh, err := c.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open upload: %w", err)
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read upload: %w", err)
		}
		return extractor.BytesSource{Name: fh.Filename, Data: data}, nil
	}

	if text := c.FormValue("rawText"); strings.TrimSpace(text) != "" {
		return extractor.TextSource(text), nil
	}
	return nil, errors.New("no export given, use form field 'file' or 'rawText'")
}

// tablesFromRequest reads the optional team, player and prop summary CSVs.
// It returns nil when none were uploaded.
func tablesFromRequest(c *fiber.Ctx) (*models.SummaryTables, error) {
	var tables models.SummaryTables
	fields := []struct {
		name string
		dst  **models.SummaryTable
	}{
		{"teams", &tables.Teams},
		{"players", &tables.Players},
		{"props", &tables.Props},
	}

	found := false
	for _, fld := range fields {
		fh, err := c.FormFile(fld.name)
		if err != nil {
			continue
		}
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s table: %w", fld.name, err)
		}
		table, err := extractor.ReadSummaryTable(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("invalid %s table: %w", fld.name, err)
		}
		*fld.dst = table
		found = true
	}
	if !found {
		return nil, nil
	}
	return &tables, nil
}

// errorHandler renders every handler error as a JSON failure response.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := err.Error()
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	}
	return writeError(c, code, msg)
}

func writeError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(ProcessResponse{
		Success: false,
		Error:   msg,
		Version: Version,
	})
}
