package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"floorplan-engine/internal/planner/chain"
	"floorplan-engine/internal/planner/importer"
	"floorplan-engine/internal/planner/mapper"
	"floorplan-engine/internal/planner/models"
	"floorplan-engine/internal/planner/network"
	"floorplan-engine/internal/planner/schema"
	"floorplan-engine/internal/planner/service"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Planner Handler
// ============================================================

var errInvalidBody = errors.New("invalid JSON payload")

type PlannerHandler struct {
	planner   *service.Planner
	validator *schema.Validator
	exporter  *mapper.Exporter
	renderer  *mapper.Renderer
	importer  *importer.Importer
}

func NewPlannerHandler(planner *service.Planner, validator *schema.Validator) *PlannerHandler {
	return &PlannerHandler{
		planner:   planner,
		validator: validator,
		exporter:  mapper.NewExporter(planner.Rules()),
		renderer:  mapper.NewRenderer(),
		importer:  importer.New(importer.Options{
			WallThickness: planner.Settings().WallThickness,
			WindowHeight:  planner.Settings().WindowHeight,
		}),
	}
}

// Register вешает маршруты проектов на router.
func (h *PlannerHandler) Register(router fiber.Router) {
	router.Get("/projects", h.ListProjects)
	router.Post("/projects", h.CreateProject)
	router.Get("/projects/:id", h.GetProject)
	router.Put("/projects/:id", h.ReplaceProject)
	router.Delete("/projects/:id", h.DeleteProject)
	router.Post("/projects/:id/import/svg", h.ImportSVG)

	router.Post("/projects/:id/walls", h.AddWall)
	router.Patch("/projects/:id/walls/:wallId", h.UpdateWall)
	router.Delete("/projects/:id/walls/:wallId", h.DeleteWall)
	router.Post("/projects/:id/walls/:wallId/split", h.SplitWall)
	router.Post("/projects/:id/walls/:wallId/move", h.MoveWall)
	router.Post("/projects/:id/vertices/translate", h.TranslateVertex)

	router.Post("/projects/:id/elements", h.AddElement)
	router.Patch("/projects/:id/elements/:elementId", h.UpdateElement)
	router.Delete("/projects/:id/elements/:elementId", h.DeleteElement)
	router.Post("/projects/:id/elements/:elementId/clone", h.CloneElement)

	router.Put("/projects/:id/rooms", h.SetRooms)

	router.Post("/projects/:id/snap", h.Snap)
	router.Get("/projects/:id/measurements", h.Measurements)
	router.Post("/projects/:id/events", h.Event)

	router.Get("/projects/:id/scene", h.Scene)
	router.Get("/projects/:id/svg", h.SVG)
}

// ============================================================
// Projects
// ============================================================

type createProjectRequest struct {
	Name string `json:"name"`
}

func (h *PlannerHandler) CreateProject(c fiber.Ctx) error {
	var req createProjectRequest
	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return respondError(c, errInvalidBody)
		}
	}
	if req.Name == "" {
		req.Name = "Untitled"
	}

	p, err := h.planner.Create(context.Background(), req.Name)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(p)
}

func (h *PlannerHandler) ListProjects(c fiber.Ctx) error {
	list, err := h.planner.List(context.Background())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"projects": list})
}

func (h *PlannerHandler) GetProject(c fiber.Ctx) error {
	var p models.Project
	err := h.planner.View(context.Background(), c.Params("id"), func(ws *service.Workspace) error {
		p = ws.Project()
		return nil
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(p)
}

// ReplaceProject импортирует проект целиком после проверки по JSON Schema.
func (h *PlannerHandler) ReplaceProject(c fiber.Ctx) error {
	log.Printf("[PLANNER] Import request: %d bytes", len(c.Body()))

	p, err := h.validator.ValidateBytes(c.Body())
	if err != nil {
		log.Printf("[PLANNER] Import rejected: %v", err)
		return respondError(c, err)
	}

	saved, err := h.planner.Replace(context.Background(), c.Params("id"), p)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(saved)
}

// ImportSVG заменяет содержимое проекта планом, распознанным из SVG-чертежа.
func (h *PlannerHandler) ImportSVG(c fiber.Ctx) error {
	log.Printf("[PLANNER] SVG import request: %d bytes", len(c.Body()))

	p, err := h.importer.Import(bytes.NewReader(c.Body()))
	if err != nil {
		log.Printf("[PLANNER] SVG import rejected: %v", err)
		return respondError(c, err)
	}

	saved, err := h.planner.Replace(context.Background(), c.Params("id"), p)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(saved)
}

func (h *PlannerHandler) DeleteProject(c fiber.Ctx) error {
	if err := h.planner.Delete(context.Background(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// ============================================================
// Export
// ============================================================

func (h *PlannerHandler) Scene(c fiber.Ctx) error {
	var scene *models.Scene
	err := h.planner.View(context.Background(), c.Params("id"), func(ws *service.Workspace) error {
		scene = h.exporter.Scene(ws.Project())
		return nil
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(scene)
}

// SVG превью плана с размерами выбранной грани (по умолчанию наружной).
func (h *PlannerHandler) SVG(c fiber.Ctx) error {
	face, err := parseFace(c.Query("face", string(chain.FaceExterior)))
	if err != nil {
		return respondError(c, err)
	}

	var svg string
	err = h.planner.View(context.Background(), c.Params("id"), func(ws *service.Workspace) error {
		p := ws.Project()
		dims := ws.Measurer().MeasureAll(p.Walls, p.Rooms, face)
		var renderErr error
		svg, renderErr = h.renderer.Render(h.exporter.Scene(p), dims)
		return renderErr
	})
	if err != nil {
		return respondError(c, err)
	}

	c.Set("Content-Type", "image/svg+xml")
	return c.SendString(svg)
}

// ============================================================
// Errors
// ============================================================

func respondError(c fiber.Ctx, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrProjectNotFound),
		errors.Is(err, network.ErrWallNotFound),
		errors.Is(err, network.ErrElementNotFound),
		errors.Is(err, network.ErrRoomNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errInvalidBody),
		errors.Is(err, network.ErrInvalidValue),
		errors.Is(err, network.ErrUpdateMismatch),
		errors.Is(err, schema.ErrInvalidProject),
		errors.Is(err, importer.ErrInvalidSVG):
		status = http.StatusBadRequest
	case errors.Is(err, context.Canceled):
		status = http.StatusRequestTimeout
	}

	if status == http.StatusInternalServerError {
		log.Printf("[PLANNER] Internal error: %v", err)
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func decode(c fiber.Ctx, dst any) error {
	if len(c.Body()) == 0 {
		return errInvalidBody
	}
	if err := json.Unmarshal(c.Body(), dst); err != nil {
		return errInvalidBody
	}
	return nil
}
