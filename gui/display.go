package gui

import (
	"github.com/guslan/chip8"

	rl "github.com/gen2brain/raylib-go/raylib"
)

var ScreenBgColor = rl.Gold
var ScreenPixelColor = rl.Yellow

// Boot implements chip8.Display.
func (app *ConsoleApp) Boot() error {
	return nil
}

// Render implements chip8.Display.
// It runs on the CPU goroutine; the window draws the copy on its own.
func (app *ConsoleApp) Render(screen chip8.Grid) error {
	app.screenMu.Lock()
	app.screen = screen
	app.screenMu.Unlock()

	return nil
}

func (app *ConsoleApp) drawScreen() {
	app.screenMu.Lock()
	screen := app.screen
	app.screenMu.Unlock()

	size := app.pixelSize
	for y := range screen {
		for x, on := range screen[y] {
			color := ScreenBgColor
			if on {
				color = ScreenPixelColor
			}

			rl.DrawRectangle(
				ScreenPositionX+size*int32(x),
				ScreenPositionY+size*int32(y),
				size,
				size,
				color)
		}
	}
}
