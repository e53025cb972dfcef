package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"scene-tour/core"
	"scene-tour/viewer"
)

func main() {
	cfg := viewer.DefaultConfig()

	flag.StringVar(&cfg.ModelPath, "model", cfg.ModelPath, "glTF or GLB file to tour")
	flag.IntVar(&cfg.Window.Width, "width", cfg.Window.Width, "window width in pixels")
	flag.IntVar(&cfg.Window.Height, "height", cfg.Window.Height, "window height in pixels")
	flag.BoolVar(&cfg.Window.Fullscreen, "fullscreen", cfg.Window.Fullscreen, "open fullscreen on the primary monitor")
	step := flag.Float64("step", float64(cfg.Movement.Step), "WASD distance per frame")
	flag.BoolVar(&cfg.Movement.ScaleByDelta, "scale-by-delta", cfg.Movement.ScaleByDelta, "scale WASD steps by frame time (60 Hz reference)")
	flag.BoolVar(&cfg.TrackResize, "track-resize", cfg.TrackResize, "follow window resizes")
	flag.StringVar(&cfg.InspectAddr, "inspect", cfg.InspectAddr, "serve the camera pose on this address, e.g. localhost:8080")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	cfg.Movement.Step = float32(*step)
	log := core.NewDefaultLogger("tour", *debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	v, err := viewer.New(cfg, log)
	if err != nil {
		log.Errorf("startup: %v", err)
		os.Exit(1)
	}
	defer v.Destroy()

	log.Infof("drag to orbit, scroll to zoom, WASD to move, release a mouse button to jump to the next viewpoint, Esc to quit")
	if err := v.Run(ctx); err != nil {
		log.Errorf("%v", err)
		v.Destroy()
		os.Exit(1)
	}
}
