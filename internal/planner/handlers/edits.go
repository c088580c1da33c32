package handlers

import (
	"context"
	"fmt"
	"net/http"

	"floorplan-engine/internal/planner/chain"
	"floorplan-engine/internal/planner/models"
	"floorplan-engine/internal/planner/network"
	"floorplan-engine/internal/planner/service"
	"floorplan-engine/internal/planner/snap"
	"floorplan-engine/internal/planner/tool"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Walls
// ============================================================

type addWallRequest struct {
	Start     models.Point `json:"start"`
	End       models.Point `json:"end"`
	Thickness float64      `json:"thickness"`
}

func (h *PlannerHandler) AddWall(c fiber.Ctx) error {
	var req addWallRequest
	if err := decode(c, &req); err != nil {
		return respondError(c, err)
	}

	var wall models.Wall
	err := h.planner.Edit(context.Background(), c.Params("id"), func(ws *service.Workspace) error {
		thickness := req.Thickness
		if thickness <= 0 {
			thickness = ws.Editor().Settings().WallThickness
		}
		w, ok := ws.Network().AddWall(req.Start, req.End, thickness)
		if !ok {
			return fmt.Errorf("zero-length wall: %w", network.ErrInvalidValue)
		}
		wall = w
		return nil
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(wall)
}

type updateWallRequest struct {
	Length    *float64     `json:"length"`
	Side      network.Side `json:"side"`
	Thickness *float64     `json:"thickness"`
}

// UpdateWall меняет длину (со стороны side) и/или толщину.
func (h *PlannerHandler) UpdateWall(c fiber.Ctx) error {
	var req updateWallRequest
	if err := decode(c, &req); err != nil {
		return respondError(c, err)
	}
	if req.Length == nil && req.Thickness == nil {
		return respondError(c, fmt.Errorf("length or thickness required: %w", network.ErrInvalidValue))
	}

	var walls []models.Wall
	err := h.planner.Edit(context.Background(), c.Params("id"), func(ws *service.Workspace) error {
		wallID := c.Params("wallId")
		var err error
		if req.Length != nil {
			if walls, err = ws.Network().UpdateWallLength(wallID, *req.Length, req.Side); err != nil {
				return err
			}
		}
		if req.Thickness != nil {
			if walls, err = ws.Network().UpdateWallThickness(wallID, *req.Thickness); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"walls": walls})
}

// DeleteWall удаляет стену; проемы на ней удаляются вместе с ней.
func (h *PlannerHandler) DeleteWall(c fiber.Ctx) error {
	var (
		walls    []models.Wall
		detached []models.Element
	)
	err := h.planner.Edit(context.Background(), c.Params("id"), func(ws *service.Workspace) error {
		wallID := c.Params("wallId")
		var err error
		if walls, err = ws.Network().DeleteWall(wallID); err != nil {
			return err
		}
		detached = ws.Network().DetachElements(wallID)
		return nil
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"walls": walls, "detached": len(detached)})
}

type pointRequest struct {
	Point models.Point `json:"point"`
}

func (h *PlannerHandler) SplitWall(c fiber.Ctx) error {
	var req pointRequest
	if err := decode(c, &req); err != nil {
		return respondError(c, err)
	}

	var walls []models.Wall
	err := h.planner.Edit(context.Background(), c.Params("id"), func(ws *service.Workspace) error {
		var err error
		walls, err = ws.Network().SplitWallAt(c.Params("wallId"), req.Point)
		return err
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"walls": walls})
}

type deltaRequest struct {
	Delta models.Point `json:"delta"`
}

func (h *PlannerHandler) MoveWall(c fiber.Ctx) error {
	var req deltaRequest
	if err := decode(c, &req); err != nil {
		return respondError(c, err)
	}

	var walls []models.Wall
	err := h.planner.Edit(context.Background(), c.Params("id"), func(ws *service.Workspace) error {
		var err error
		walls, err = ws.Network().MoveWall(c.Params("wallId"), req.Delta)
		return err
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"walls": walls})
}

type translateRequest struct {
	Original models.Point `json:"original"`
	Delta    models.Point `json:"delta"`
	WallIDs  []string     `json:"wallIds"`
}

// TranslateVertex сдвигает вершину; без wallIds берутся все стены в ней.
func (h *PlannerHandler) TranslateVertex(c fiber.Ctx) error {
	var req translateRequest
	if err := decode(c, &req); err != nil {
		return respondError(c, err)
	}

	var walls []models.Wall
	err := h.planner.Edit(context.Background(), c.Params("id"), func(ws *service.Workspace) error {
		ids := req.WallIDs
		if len(ids) == 0 {
			ids = ws.Network().WallsAt(req.Original)
		}
		walls = ws.Network().TranslateVertex(req.Original, req.Delta, ids)
		return nil
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"walls": walls})
}

// ============================================================
// Doors & windows
// ============================================================

type elementRequest struct {
	Kind   string  `json:"kind"`
	WallID string  `json:"wallId"`
	T      float64 `json:"t"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	FlipX  bool    `json:"flipX"`
	FlipY  bool    `json:"flipY"`
}

func (h *PlannerHandler) AddElement(c fiber.Ctx) error {
	var req elementRequest
	if err := decode(c, &req); err != nil {
		return respondError(c, err)
	}

	var placed models.Element
	err := h.planner.Edit(context.Background(), c.Params("id"), func(ws *service.Workspace) error {
		settings := ws.Editor().Settings()
		anchor := models.Anchor{WallID: req.WallID, T: req.T, Width: req.Width}

		var el models.Element
		switch req.Kind {
		case "door":
			if anchor.Width <= 0 {
				anchor.Width = settings.DoorWidth
			}
			el = models.Door{Anchor: anchor, FlipX: req.FlipX, FlipY: req.FlipY}
		case "window":
			if anchor.Width <= 0 {
				anchor.Width = settings.WindowWidth
			}
			if req.Height <= 0 {
				req.Height = settings.WindowHeight
			}
			el = models.Window{Anchor: anchor, Height: req.Height, FlipY: req.FlipY}
		default:
			return fmt.Errorf("element kind %q: %w", req.Kind, network.ErrInvalidValue)
		}

		var err error
		placed, err = ws.Network().PutElement(el)
		return err
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(placed)
}

// UpdateElement принимает частичную правку; ее вид выбирается по виду элемента.
func (h *PlannerHandler) UpdateElement(c fiber.Ctx) error {
	if len(c.Body()) == 0 {
		return respondError(c, errInvalidBody)
	}

	var updated models.Element
	err := h.planner.Edit(context.Background(), c.Params("id"), func(ws *service.Workspace) error {
		id := c.Params("elementId")
		current, ok := ws.Network().Element(id)
		if !ok {
			return fmt.Errorf("update %s: %w", id, network.ErrElementNotFound)
		}

		var upd models.ElementUpdate
		switch current.(type) {
		case models.Door:
			var u models.DoorUpdate
			if err := decode(c, &u); err != nil {
				return err
			}
			upd = u
		default:
			var u models.WindowUpdate
			if err := decode(c, &u); err != nil {
				return err
			}
			upd = u
		}

		var err error
		updated, err = ws.Network().UpdateElement(id, upd)
		return err
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(updated)
}

func (h *PlannerHandler) DeleteElement(c fiber.Ctx) error {
	err := h.planner.Edit(context.Background(), c.Params("id"), func(ws *service.Workspace) error {
		return ws.Network().DeleteElement(c.Params("elementId"))
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

func (h *PlannerHandler) CloneElement(c fiber.Ctx) error {
	var clone models.Element
	err := h.planner.Edit(context.Background(), c.Params("id"), func(ws *service.Workspace) error {
		var err error
		clone, err = ws.Network().CloneElement(c.Params("elementId"))
		return err
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(clone)
}

// ============================================================
// Rooms
// ============================================================

func (h *PlannerHandler) SetRooms(c fiber.Ctx) error {
	var rooms []models.Room
	if err := decode(c, &rooms); err != nil {
		return respondError(c, err)
	}

	var saved []models.Room
	err := h.planner.Edit(context.Background(), c.Params("id"), func(ws *service.Workspace) error {
		saved = ws.Network().SetRooms(rooms)
		return nil
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"rooms": saved})
}

// ============================================================
// Queries
// ============================================================

type snapRequest struct {
	Raw     models.Point  `json:"raw"`
	Enabled *bool         `json:"enabled"`
	Zoom    float64       `json:"zoom"`
	Anchor  *models.Point `json:"anchor"`
}

func (h *PlannerHandler) Snap(c fiber.Ctx) error {
	var req snapRequest
	if err := decode(c, &req); err != nil {
		return respondError(c, err)
	}

	var res snap.Result
	err := h.planner.View(context.Background(), c.Params("id"), func(ws *service.Workspace) error {
		enabled := ws.Editor().Settings().SnapEnabled
		if req.Enabled != nil {
			enabled = *req.Enabled
		}
		res = ws.Snapper().ResolvePointer(snap.Request{
			Raw:     req.Raw,
			Walls:   ws.Network().Walls(),
			Rooms:   ws.Network().Rooms(),
			Enabled: enabled,
			Zoom:    req.Zoom,
			Anchor:  req.Anchor,
		})
		return nil
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

func (h *PlannerHandler) Measurements(c fiber.Ctx) error {
	face, err := parseFace(c.Query("face", string(chain.FaceInterior)))
	if err != nil {
		return respondError(c, err)
	}

	var out []chain.Measurement
	err = h.planner.View(context.Background(), c.Params("id"), func(ws *service.Workspace) error {
		out = ws.Measurer().MeasureAll(ws.Network().Walls(), ws.Network().Rooms(), face)
		return nil
	})
	if err != nil {
		return respondError(c, err)
	}
	if out == nil {
		out = []chain.Measurement{}
	}
	return c.JSON(fiber.Map{"face": face, "measurements": out})
}

func parseFace(s string) (chain.Face, error) {
	switch f := chain.Face(s); f {
	case chain.FaceInterior, chain.FaceExterior, chain.FaceCenter:
		return f, nil
	}
	return "", fmt.Errorf("face %q: %w", s, network.ErrInvalidValue)
}

// ============================================================
// Tool events
// ============================================================

type eventRequest struct {
	Type       string         `json:"type"`
	Event      tool.Event     `json:"event"`
	Factor     float64        `json:"factor"`
	Mode       string         `json:"mode"`
	Settings   *tool.Settings `json:"settings"`
	RealLength float64        `json:"realLength"`
}

// Event прокидывает событие ввода в автомат инструментов проекта.
// Изменения сети, сделанные инструментом, сохраняются как обычная правка.
func (h *PlannerHandler) Event(c fiber.Ctx) error {
	var req eventRequest
	if err := decode(c, &req); err != nil {
		return respondError(c, err)
	}

	var resp fiber.Map
	err := h.planner.Edit(context.Background(), c.Params("id"), func(ws *service.Workspace) error {
		ed := ws.Editor()
		var fb tool.Feedback
		switch req.Type {
		case "down":
			fb = ed.PointerDown(req.Event)
		case "move":
			fb = ed.PointerMove(req.Event)
		case "up":
			fb = ed.PointerUp(req.Event)
		case "wheel":
			fb = ed.Wheel(req.Event.Screen, req.Factor)
		case "escape":
			fb = ed.Escape()
		case "mode":
			m, err := tool.ParseMode(req.Mode)
			if err != nil {
				return fmt.Errorf("%v: %w", err, network.ErrInvalidValue)
			}
			fb = ed.SetMode(m)
		case "settings":
			if req.Settings == nil {
				return fmt.Errorf("settings required: %w", network.ErrInvalidValue)
			}
			ed.SetSettings(*req.Settings)
			fb = ed.Escape()
		case "calibrate":
			scale, err := ed.CalibrationScale(req.RealLength)
			if err != nil {
				return fmt.Errorf("%v: %w", err, network.ErrInvalidValue)
			}
			resp = fiber.Map{"scale": scale}
			return nil
		default:
			return fmt.Errorf("event type %q: %w", req.Type, network.ErrInvalidValue)
		}
		resp = fiber.Map{"feedback": fb}
		return nil
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}
