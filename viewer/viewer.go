// Package viewer wires the window, renderer, scene and controllers into the
// frame loop.
package viewer

import (
	"context"
	"fmt"

	"scene-tour/core"
	"scene-tour/inspect"
	"scene-tour/renderer"
	"scene-tour/scene"
)

// Viewer owns the window and GL resources of one tour.
type Viewer struct {
	cfg    Config
	log    core.Logger
	window *core.Window
	gfx    *renderer.Renderer
	sess   *session
	loader *scene.Loader
}

// New opens the window, initialises OpenGL and builds the scene, camera and
// controllers. It must run on the main goroutine.
func New(cfg Config, log core.Logger) (*Viewer, error) {
	if log == nil {
		log = core.Discard
	}
	window, err := core.NewWindow(cfg.Window)
	if err != nil {
		return nil, fmt.Errorf("window: %w", err)
	}

	gfx, err := renderer.New(window.Width, window.Height, log)
	if err != nil {
		window.Destroy()
		return nil, fmt.Errorf("renderer: %w", err)
	}

	// Cursor positions arrive in screen coordinates, which differ from the
	// framebuffer on HiDPI displays.
	_, pointerHeight := window.GetSize()

	v := &Viewer{
		cfg:    cfg,
		log:    log,
		window: window,
		gfx:    gfx,
		sess:   newSession(cfg, window.Width, window.Height, pointerHeight, log),
		loader: scene.NewLoader(log),
	}

	window.SetKeyCallback(v.sess.keyEvent)
	window.SetMouseButtonCallback(v.sess.mouseEvent)
	window.SetCursorPosCallback(v.sess.orbit.PointerMove)
	window.SetScrollCallback(func(xoff, yoff float64) {
		v.sess.orbit.Wheel(yoff)
	})
	if cfg.TrackResize {
		window.SetFramebufferSizeCallback(func(width, height int) {
			v.gfx.SetViewport(width, height)
			v.sess.resize(width, height)
		})
		window.SetSizeCallback(v.sess.resizePointerArea)
	}
	return v, nil
}

// Run drives one frame per display refresh until the window closes, Escape
// is pressed or ctx is cancelled. The model loads in the background; frames
// render an empty scene until it arrives.
func (v *Viewer) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var inspector *inspect.Server
	if v.cfg.InspectAddr != "" {
		inspector = inspect.NewServer(v.log)
		addr, err := inspector.ListenAndServe(ctx, v.cfg.InspectAddr)
		if err != nil {
			return fmt.Errorf("inspector: %w", err)
		}
		v.log.Infof("pose inspector on http://%s/pose", addr)
	}

	loaded := v.loader.LoadAsync(ctx, v.cfg.ModelPath)
	v.log.Infof("loading %s", v.cfg.ModelPath)

	last := v.window.Time()
	fpsFrames, fpsStart := 0, last
	for !v.window.ShouldClose() {
		if ctx.Err() != nil {
			break
		}
		v.window.PollEvents()
		if v.window.IsKeyPressed(core.KeyEscape) {
			v.window.Close()
			break
		}

		if loaded != nil {
			select {
			case res := <-loaded:
				v.sess.handleLoad(res)
				loaded = nil
			default:
			}
		}

		now := v.window.Time()
		dt := float32(now - last)
		last = now

		v.gfx.Render(v.sess.scene, v.sess.camera)
		v.sess.step(dt)
		v.window.SwapBuffers()

		if inspector != nil {
			inspector.Publish(v.sess.pose())
		}

		fpsFrames++
		if now-fpsStart >= 1 {
			draws, tris, culled := v.gfx.Stats()
			v.window.SetTitle(fmt.Sprintf("%s | FPS: %d", v.cfg.Window.Title, fpsFrames))
			v.log.Debugf("fps=%d draws=%d tris=%d culled=%d pos=%v target=%v",
				fpsFrames, draws, tris, culled, v.sess.camera.Position, v.sess.orbit.Target)
			fpsFrames, fpsStart = 0, now
		}
	}
	return nil
}

// Destroy releases GL resources and closes the window.
func (v *Viewer) Destroy() {
	v.gfx.Destroy()
	v.window.Destroy()
}
