// Command meshrender is the host driver spec.md §6 describes: it either
// runs the offline procedural mesh generator (`-generate`) or loads a
// scene directory (the first non-flag argument) and renders it with the
// GPU-driven cull/draw pipeline.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/nivenh/meshlet/assets"
	"github.com/nivenh/meshlet/builder"
	"github.com/nivenh/meshlet/camera"
	"github.com/nivenh/meshlet/common"
	"github.com/nivenh/meshlet/culldraw"
	"github.com/nivenh/meshlet/engine"
	"github.com/nivenh/meshlet/frame"
	"github.com/nivenh/meshlet/gpu"
	"github.com/nivenh/meshlet/overlay"
	"github.com/nivenh/meshlet/readback"
	"github.com/nivenh/meshlet/window"
)

// maxWireVertexCapacityBytes bounds the per-slot debug-wire vertex
// buffer: the locked frustum (24 verts) plus one AABB (24 verts) per
// instance up to scene.MaxInstances would be enormous, so this is sized
// generously for a development scene rather than the absolute worst
// case (spec §7's documented "visible-list overflow is silently
// clamped" policy extends naturally to this CPU-side debug buffer).
const maxWireVertexCapacityBytes = 1 << 20 // 1 MiB per slot

func main() {
	flags := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)

	generatePath := flags.String("generate", "", "generate a procedural scene into this directory and exit")
	lod := flags.Int("lod", 0, "target LOD index for -generate")
	warp := flags.Bool("warp", false, "force the software/fallback GPU adapter")
	workGraph := flags.Bool("workGraph", false, "request the producer/consumer execution path, if supported")
	width := flags.Int("width", 1280, "window width in pixels")
	height := flags.Int("height", 720, "window height in pixels")
	vsync := flags.Bool("vsync", false, "present with vsync (FIFO) instead of uncapped (immediate)")

	if err := flags.Parse(os.Args[1:]); err != nil {
		os.Exit(-1)
	}

	if *generatePath != "" {
		if err := builder.Generate(*generatePath, builder.Options{LOD: *lod}); err != nil {
			log.Fatalf("meshrender: generate failed: %v", err)
		}
		log.Printf("meshrender: generated scene at %s (lod %d)", *generatePath, *lod)
		return
	}

	sceneDir := flags.Arg(0)
	if sceneDir == "" {
		fmt.Fprintln(os.Stderr, "usage: meshrender [-generate <dir>] [-lod n] [-warp] [-workGraph] [-width n] [-height n] [-vsync] <scene-dir>")
		os.Exit(-1)
	}

	run(sceneDir, *warp, *workGraph, *width, *height, *vsync)
}

func run(sceneDir string, warp, workGraph bool, width, height int, vsync bool) {
	win := window.NewWindow(
		window.WithTitle("meshlet"),
		window.WithWidth(width),
		window.WithHeight(height),
	)

	device, err := gpu.NewDevice(win.SurfaceDescriptor(), warp)
	if err != nil {
		log.Fatalf("meshrender: create device: %v", err)
	}
	if vsync {
		device.SetPresentMode(gpu.PresentModeVSync)
	} else {
		device.SetPresentMode(gpu.PresentModeUncapped)
	}
	if err := device.ConfigureSurface(win.Width(), win.Height()); err != nil {
		log.Fatalf("meshrender: configure surface: %v", err)
	}

	factory := gpu.NewFactory(device.Native(), device.Table())

	loader := assets.NewLoader()
	sc, err := loader.Load(sceneDir)
	if err != nil {
		log.Fatalf("meshrender: load scene: %v", err)
	}
	log.Printf("meshrender: loaded scene %s (load id %s): %d instances, %d meshes, %d clusters",
		sceneDir, sc.LoadID, len(sc.Instances), len(sc.Meshes), len(sc.Clusters))

	gpuScene, err := assets.Upload(device.Native(), factory, sc)
	if err != nil {
		log.Fatalf("meshrender: upload scene: %v", err)
	}

	ring, err := frame.New(device.Native(), device.Queue(), factory, maxWireVertexCapacityBytes)
	if err != nil {
		log.Fatalf("meshrender: create frame ring: %v", err)
	}

	rb, err := readback.New(device.Native())
	if err != nil {
		log.Fatalf("meshrender: create readback ring: %v", err)
	}

	font, err := overlay.LoadFont("", 16)
	if err != nil {
		log.Fatalf("meshrender: load overlay font: %v", err)
	}

	pipeline, err := culldraw.New(device, factory, sc, gpuScene, ring, rb, font)
	if err != nil {
		log.Fatalf("meshrender: create cull/draw pipeline: %v", err)
	}

	if workGraph && !device.SupportsWorkGraph() {
		log.Printf("meshrender: -workGraph requested but unsupported on this backend, toggle is inert")
	}

	ctrl := camera.NewController(float32(win.Width()) / float32(win.Height()))

	input := newInputState()
	win.SetKeyDownCallback(input.onKeyDown)
	win.SetKeyUpCallback(input.onKeyUp)
	win.SetMouseMoveCallback(input.onMouseMove)
	win.SetMiddleMouseDownCallback(input.onMiddleMouseDown)
	win.SetMiddleMouseUpCallback(input.onMiddleMouseUp)
	win.SetResizeCallback(func(w, h int) {
		ctrl.SetAspect(float32(w) / float32(h))
		if err := device.ConfigureSurface(w, h); err != nil {
			log.Printf("meshrender: resize reconfigure surface: %v", err)
		}
	})

	debugMode := frame.DebugModeNone
	showWire := false
	input.onToggleLock = func() { ctrl.LockCulling(!ctrl.Locked()) }
	input.onToggleWire = func() { showWire = !showWire }
	input.onCycleDebug = func() { debugMode = (debugMode + 1) % 6 }

	eng := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithProfiling(true),
		engine.WithTickRate(60),
	)

	eng.SetTickCallback(func(dt float32) {
		dx, dy := input.consumeLook()
		if input.orbiting {
			ctrl.Look(dx, dy)
		}

		var forward, strafe, up float32
		if input.down(common.KeyW) {
			forward++
		}
		if input.down(common.KeyS) {
			forward--
		}
		if input.down(common.KeyD) {
			strafe++
		}
		if input.down(common.KeyA) {
			strafe--
		}
		if input.down(common.KeyE) {
			up++
		}
		if input.down(common.KeyQ) {
			up--
		}
		fast := input.down(common.KeyLeftShift) || input.down(common.KeyRightShift)
		ctrl.Move(forward, strafe, up, dt, fast)
		ctrl.Update()
	})

	eng.SetRenderCallback(func(_ float32) error {
		return pipeline.Frame(ctrl, debugMode, showWire)
	})

	eng.Run()

	pipeline.Release()
	rb.Release()
	device.Release()
}
