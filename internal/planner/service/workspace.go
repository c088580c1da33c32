package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"floorplan-engine/internal/planner/chain"
	"floorplan-engine/internal/planner/models"
	"floorplan-engine/internal/planner/network"
	"floorplan-engine/internal/planner/repository"
	"floorplan-engine/internal/planner/snap"
	"floorplan-engine/internal/planner/tool"

	"github.com/google/uuid"
)

var ErrProjectNotFound = errors.New("project not found")

// Store хранилище проектов (repository.Repository в сервисе, map в тестах).
type Store interface {
	Get(ctx context.Context, id string) (*models.Project, error)
	Save(ctx context.Context, p models.Project) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]repository.ProjectInfo, error)
}

// ============================================================
// Workspace
// ============================================================

// Workspace открытый проект: сеть стен, редактор и расчет размеров.
// Доступ только через Planner.Edit / Planner.View.
type Workspace struct {
	ID   string
	Name string

	net      *network.Network
	editor   *tool.Editor
	measurer *chain.Aggregator
	snapper  *snap.Engine
	dirty    bool
}

func newWorkspace(p models.Project, rules network.Rules, settings tool.Settings) *Workspace {
	ws := &Workspace{
		ID:       p.ID,
		Name:     p.Name,
		measurer: chain.New(rules),
		snapper:  snap.New(rules.Tol),
	}
	ws.attach(network.FromProject(p, rules))
	ws.editor = tool.NewEditor(ws.net, settings)
	return ws
}

func (w *Workspace) attach(net *network.Network) {
	net.OnChange(func(network.Change) { w.dirty = true })
	w.net = net
}

// restore возвращает сеть к снимку, не пересоздавая редактор.
func (w *Workspace) restore(p models.Project, rules network.Rules) {
	w.attach(network.FromProject(p, rules))
	w.editor.Rebind(w.net)
	w.dirty = false
}

func (w *Workspace) Network() *network.Network   { return w.net }
func (w *Workspace) Editor() *tool.Editor        { return w.editor }
func (w *Workspace) Measurer() *chain.Aggregator { return w.measurer }
func (w *Workspace) Snapper() *snap.Engine       { return w.snapper }

func (w *Workspace) Project() models.Project {
	return w.net.Project(w.ID, w.Name)
}

// ============================================================
// Planner
// ============================================================

// Planner держит открытые проекты в памяти и сохраняет их после
// каждой успешной правки. Правки одного проекта сериализуются.
type Planner struct {
	mu       sync.Mutex
	store    Store
	rules    network.Rules
	settings tool.Settings
	open     map[string]*entry
}

type entry struct {
	mu sync.Mutex
	ws *Workspace
}

func NewPlanner(store Store, rules network.Rules, settings tool.Settings) *Planner {
	return &Planner{
		store:    store,
		rules:    rules,
		settings: settings,
		open:     make(map[string]*entry),
	}
}

func (p *Planner) Rules() network.Rules    { return p.rules }
func (p *Planner) Settings() tool.Settings { return p.settings }

// Create заводит пустой проект.
func (p *Planner) Create(ctx context.Context, name string) (models.Project, error) {
	proj := models.Project{
		ID:      uuid.NewString(),
		Name:    name,
		Walls:   []models.Wall{},
		Rooms:   []models.Room{},
		Doors:   []models.Door{},
		Windows: []models.Window{},
	}
	if err := p.store.Save(ctx, proj); err != nil {
		return models.Project{}, fmt.Errorf("save project: %w", err)
	}

	p.mu.Lock()
	p.open[proj.ID] = &entry{ws: newWorkspace(proj, p.rules, p.settings)}
	p.mu.Unlock()

	log.Printf("[PLANNER] Project created: %s (%s)", proj.ID, name)
	return proj, nil
}

// Replace подменяет содержимое проекта целиком (импорт). Стены проходят
// ту же санацию, что и при загрузке.
func (p *Planner) Replace(ctx context.Context, id string, proj models.Project) (models.Project, error) {
	e, err := p.entry(ctx, id)
	if err != nil {
		return models.Project{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	proj.ID = id
	if proj.Name == "" {
		proj.Name = e.ws.Name
	}
	ws := newWorkspace(proj, p.rules, p.settings)
	saved := ws.Project()
	if err := p.store.Save(ctx, saved); err != nil {
		return models.Project{}, fmt.Errorf("save project: %w", err)
	}
	e.ws = ws

	log.Printf("[PLANNER] Project replaced: %s (%d walls)", id, len(saved.Walls))
	return saved, nil
}

// List сохраненные проекты, последние измененные первыми.
func (p *Planner) List(ctx context.Context) ([]repository.ProjectInfo, error) {
	list, err := p.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	if list == nil {
		list = []repository.ProjectInfo{}
	}
	return list, nil
}

func (p *Planner) Delete(ctx context.Context, id string) error {
	if err := p.store.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProjectNotFound
		}
		return err
	}

	p.mu.Lock()
	delete(p.open, id)
	p.mu.Unlock()

	log.Printf("[PLANNER] Project deleted: %s", id)
	return nil
}

// View выполняет fn под блокировкой проекта без сохранения.
func (p *Planner) View(ctx context.Context, id string, fn func(*Workspace) error) error {
	e, err := p.entry(ctx, id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.ws)
}

// Edit выполняет fn под блокировкой проекта. Если fn вернула ошибку,
// рабочее состояние откатывается к последнему сохраненному; иначе
// измененный проект сохраняется.
func (p *Planner) Edit(ctx context.Context, id string, fn func(*Workspace) error) error {
	e, err := p.entry(ctx, id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	ws := e.ws
	before := ws.Project()
	ws.dirty = false

	if err := fn(ws); err != nil {
		if ws.dirty {
			log.Printf("[PLANNER] Edit failed, rolling back %s: %v", id, err)
			ws.restore(before, p.rules)
		}
		return err
	}
	if !ws.dirty {
		return nil
	}

	if err := p.store.Save(ctx, ws.Project()); err != nil {
		ws.restore(before, p.rules)
		return fmt.Errorf("save project: %w", err)
	}
	ws.dirty = false
	return nil
}

func (p *Planner) entry(ctx context.Context, id string) (*entry, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if e, ok := p.open[id]; ok {
		return e, nil
	}

	proj, err := p.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("load project: %w", err)
	}
	e := &entry{ws: newWorkspace(*proj, p.rules, p.settings)}
	p.open[id] = e
	log.Printf("[PLANNER] Project opened: %s (%d walls)", id, len(proj.Walls))
	return e, nil
}
