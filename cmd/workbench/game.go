package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/workbench/ecs/system"
	"github.com/milk9111/workbench/scene"
	"github.com/milk9111/workbench/sim"
	"go.uber.org/zap"
)

const (
	baseWidth  = 1280
	baseHeight = 720
)

type Game struct {
	harness *sim.Harness
	render  *system.RenderSystem
	log     *zap.Logger

	names []string
	view  int

	ui      *ebitenui.UI
	panel   *SessionPanel
	watcher *scene.Watcher
	path    string
}

func NewGame(log *zap.Logger, sceneName string, names []string, watch bool) (*Game, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("at least one participant is required")
	}
	spec, err := scene.LoadSpec(sceneName)
	if err != nil {
		return nil, err
	}

	g := &Game{
		harness: sim.New(spec, log),
		render:  system.NewRenderSystem(),
		log:     log,
		names:   names,
	}
	g.harness.PointerFor = func(name string) system.PointerSource {
		return &viewPointer{game: g, name: name}
	}
	for _, name := range names {
		if _, err := g.harness.Join(name); err != nil {
			return nil, err
		}
	}

	g.ui, g.panel = NewSessionUI(g)
	g.panel.Refresh(g)

	if watch {
		if _, err := os.Stat(sceneName); err == nil {
			g.path = sceneName
			w, err := scene.NewWatcher(filepath.Dir(sceneName))
			if err != nil {
				log.Warn("scene watch disabled", zap.Error(err))
			} else {
				g.watcher = w
			}
		}
	}
	return g, nil
}

func (g *Game) Close() {
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
}

func (g *Game) Viewed() (*sim.Peer, bool) {
	return g.harness.Peer(g.names[g.view])
}

func (g *Game) NextView() {
	g.view = (g.view + 1) % len(g.names)
	g.panel.Refresh(g)
}

// ToggleConnection makes the viewed participant leave, or rejoin if it
// already left.
func (g *Game) ToggleConnection() {
	name := g.names[g.view]
	p, ok := g.harness.Peer(name)
	if ok && p.Session.Connected() {
		if err := g.harness.Leave(name); err != nil {
			g.log.Warn("leave failed", zap.String("peer", name), zap.Error(err))
		}
	} else if _, err := g.harness.Rejoin(name); err != nil {
		g.log.Warn("rejoin failed", zap.String("peer", name), zap.Error(err))
	}
	g.panel.Refresh(g)
}

func (g *Game) Update() error {
	g.pollWatcher()
	g.ui.Update()

	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		g.NextView()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyL) {
		g.ToggleConnection()
	}

	g.harness.Tick(1)
	g.panel.Refresh(g)
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	if p, ok := g.Viewed(); ok {
		g.render.Draw(p.World, screen)
	}
	g.ui.Draw(screen)
	ebitenutil.DebugPrint(screen, fmt.Sprintf("TPS: %.0f  [Tab] switch participant  [L] leave/rejoin", ebiten.ActualTPS()))
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return baseWidth, baseHeight
}

func (g *Game) pollWatcher() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case name, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			if filepath.Clean(name) != filepath.Clean(g.path) {
				continue
			}
			spec, err := scene.LoadSpec(g.path)
			if err != nil {
				g.log.Warn("scene reload failed", zap.Error(err))
				continue
			}
			if err := g.harness.Reload(spec); err != nil {
				g.log.Warn("scene reload failed", zap.Error(err))
			}
		case err, ok := <-g.watcher.Errors:
			if ok {
				g.log.Warn("scene watcher", zap.Error(err))
			}
		default:
			return
		}
	}
}

// viewPointer feeds the mouse only to the participant being viewed.
type viewPointer struct {
	game  *Game
	name  string
	mouse system.EbitenPointer
}

func (p *viewPointer) Position() (float64, float64) {
	return p.mouse.Position()
}

func (p *viewPointer) Pressed() bool {
	if p.game.names[p.game.view] != p.name {
		return false
	}
	return p.mouse.Pressed()
}
