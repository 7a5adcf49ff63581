package terminal

import (
	"context"
	"fmt"
	"log"

	"github.com/gdamore/tcell/v2"
	"github.com/wricardo/superslide/game/engine"
	"github.com/wricardo/superslide/game/machine"
	"github.com/wricardo/superslide/game/session"
)

// Options configures a local terminal game.
type Options struct {
	Catalog    machine.Catalog
	Timing     machine.Timing
	Thresholds engine.Thresholds
	ResumePath string
	Sound      bool
}

// Play runs a local game in the terminal until the player quits. The level
// saved by a prev long-press is where the next game starts.
func Play(ctx context.Context, opts Options) error {
	if opts.Timing == (machine.Timing{}) {
		opts.Timing = machine.DefaultTiming()
	}

	store := session.NewFileResumeStore(opts.ResumePath)
	level, err := store.Level()
	if err != nil {
		log.Printf("Warning: failed to read resume level: %v", err)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize screen: %w", err)
	}
	defer screen.Fini()
	screen.EnableMouse()
	screen.HideCursor()

	var sound Sounder
	if opts.Sound {
		sm := NewSoundManager()
		if err := sm.Initialize(); err != nil {
			log.Printf("Audio initialization failed: %v", err)
		} else {
			defer sm.Cleanup()
			sound = sm
		}
	}

	client := NewClient(screen, sound, opts.Timing.HoldThreshold)
	m, err := machine.New(machine.Options{
		Level:      level,
		Catalog:    opts.Catalog,
		Timing:     opts.Timing,
		Thresholds: opts.Thresholds,
		Sink:       client,
		Resume:     store,
		OnRunEnd:   client.RunEnded,
	})
	if err != nil {
		return fmt.Errorf("failed to start game: %w", err)
	}
	defer m.Close()

	client.Attach(m)
	m.Mount()
	log.Printf("Terminal game started at level %d", m.Level())
	return client.Run(ctx)
}
