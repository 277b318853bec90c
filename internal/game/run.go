package game

import (
	"context"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/samdwyer/tilequest/internal/ui"
	"github.com/samdwyer/tilequest/internal/world"
)

// Run executes the main game loop until the player quits or ctx is done.
func (g *Game) Run(ctx context.Context) error {
	if g.screen == nil {
		screen, err := ui.NewScreen()
		if err != nil {
			return err
		}
		g.screen = screen
	}
	defer g.screen.Close()
	g.renderer = ui.NewRenderer(g.screen)

	var changes <-chan string
	var watchErrs <-chan error
	if g.cfg.WatchMaps && g.cfg.MapDir != "" {
		w, err := world.NewWatcher(g.cfg.MapDir)
		if err != nil {
			g.logger.Warn("map watching disabled", zap.Error(err))
		} else {
			defer w.Close()
			changes, watchErrs = w.Changes, w.Errors
		}
	}

	done := make(chan struct{})
	defer close(done)
	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := g.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	g.running = true
	for g.running {
		g.draw()
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			g.handleEvent(ev)
		case name, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			g.reload(ctx, name)
		case err, ok := <-watchErrs:
			if !ok {
				watchErrs = nil
				continue
			}
			g.logger.Warn("map watcher error", zap.Error(err))
		}
		g.bus.Flush()
	}
	return nil
}

func (g *Game) draw() {
	g.renderer.Render(ui.Frame{
		Scene:  g.scene,
		Party:  g.party,
		Combat: g.overworld.Combat(),
		Prompt: g.prompter.Text(),
	})
}

func (g *Game) handleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		g.handleKeyEvent(ev)
	case *tcell.EventResize:
		g.screen.Sync()
	}
}

// handleKeyEvent processes keyboard input. An open prompt takes keys first.
func (g *Game) handleKeyEvent(ev *tcell.EventKey) {
	if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
		g.running = false
		return
	}
	if g.prompter.HandleKey(ev) {
		return
	}

	switch ev.Key() {
	case tcell.KeyUp:
		g.Move(0, -1)
	case tcell.KeyDown:
		g.Move(0, 1)
	case tcell.KeyLeft:
		g.Move(-1, 0)
	case tcell.KeyRight:
		g.Move(1, 0)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q', 'Q':
			g.running = false
		case 'h', 'H':
			g.Rest()
		}
	}
}
