package client

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/tomz197/circles/internal/draw"
	"github.com/tomz197/circles/internal/loop/config"
	"github.com/tomz197/circles/internal/loop/server"
	"github.com/tomz197/circles/internal/object"
	"github.com/tomz197/circles/internal/simulation"
)

const helpLine = "click: select / place   space: pause   n: step   r: reset   esc: cancel   q: quit"

// drawFrame draws the current frame.
func (c *Client) drawFrame() error {
	// On screen or inactivity transitions, do a full terminal clear
	// so UI elements from the previous state don't persist on screen.
	screenChanged := c.state.Screen != c.state.prevScreen
	inactiveChanged := c.state.isInactive != c.state.wasInactive
	if screenChanged || inactiveChanged {
		c.chunkWriter.ClearScreen()
		c.canvas.ForceRedraw()
		c.state.prevScreen = c.state.Screen
		c.state.wasInactive = c.state.isInactive
	}

	c.canvas.Clear()

	snapshot := c.server.GetSnapshot()
	ctx := object.DrawContext{
		Canvas: c.canvas,
		Writer: c.chunkWriter,
	}

	overlay := c.state.Screen == ScreenShutdown || c.state.isInactive
	if !overlay {
		c.scene = object.Scene(c.scene, snapshot.Bodies, snapshot.Mode, snapshot.Radius)
		for _, obj := range c.scene {
			if err := obj.Draw(ctx); err != nil {
				return err
			}
		}
	}

	// Render canvas to terminal
	c.canvas.Render(c.chunkWriter)

	// Draw border when terminal exceeds max render resolution
	c.canvas.RenderBorder(c.chunkWriter)

	if !overlay {
		c.labels = object.Labels(c.labels, snapshot.Bodies)
		for _, obj := range c.labels {
			if err := obj.Draw(ctx); err != nil {
				return err
			}
		}
	}

	c.drawUI(snapshot)

	return c.chunkWriter.Flush()
}

// drawUI draws the UI overlay.
func (c *Client) drawUI(snapshot *server.WorldSnapshot) {
	termWidth := c.canvas.TerminalWidth()
	termHeight := c.canvas.TerminalHeight()

	switch {
	case c.state.Screen == ScreenShutdown:
		c.drawShutdownScreen(termWidth, termHeight)
	case c.state.isInactive:
		c.drawInactivityScreen(termWidth, termHeight)
	default:
		c.drawHUD(termWidth, termHeight, snapshot)
	}
}

// writeLine writes s at row padded to the full canvas width, so shorter text
// overwrites whatever was there on the previous frame.
func (c *Client) writeLine(row, width int, s string) {
	if width <= 0 || row < 1 {
		return
	}
	line := lipgloss.NewStyle().Width(width).MaxWidth(width).MaxHeight(1).Render(s)
	c.chunkWriter.WriteAt(1, row, line)
	c.canvas.MarkTextDirty(1, row, width)
}

// writeCentered writes s centered in the canvas width at row.
func (c *Client) writeCentered(row, width int, s string) {
	if width <= 0 {
		return
	}
	c.writeLine(row, width, lipgloss.PlaceHorizontal(width, lipgloss.Center, s))
}

// drawHUD draws the status line at the top and help at the bottom.
func (c *Client) drawHUD(termWidth, termHeight int, snapshot *server.WorldSnapshot) {
	status := []string{
		fmt.Sprintf("bodies %d", len(snapshot.Bodies)),
		fmt.Sprintf("frame %d", snapshot.Frame),
		fmt.Sprintf("collisions %d", snapshot.Collisions),
		fmt.Sprintf("viewers %d", snapshot.Clients),
		modeText(snapshot),
	}
	if snapshot.Paused {
		status = append(status, "PAUSED")
	}
	if c.state.notice != "" {
		status = append(status, c.state.notice)
	}
	c.writeLine(1, termWidth, " "+strings.Join(status, "   "))

	if termHeight > 2 {
		c.writeLine(termHeight, termWidth, draw.ColorDim+" "+helpLine+draw.ColorReset)
	}
}

// modeText describes the interaction mode.
func modeText(snapshot *server.WorldSnapshot) string {
	switch snapshot.Mode.Kind {
	case simulation.ModePlacing:
		return "placing: click to launch"
	case simulation.ModeDragging:
		for _, b := range snapshot.Bodies {
			if b.Selected {
				return fmt.Sprintf("selected %s: click to push", b.Tag)
			}
		}
		return "selected: click to push"
	default:
		return "idle"
	}
}

// drawInactivityScreen draws the inactivity warning screen.
func (c *Client) drawInactivityScreen(termWidth, termHeight int) {
	centerY := termHeight / 2
	c.writeCentered(centerY-2, termWidth, "INACTIVITY WARNING")

	msg := fmt.Sprintf(
		"You have been inactive for too long. You will be disconnected in %d seconds.",
		int(config.InactivityDisconnectUser-time.Since(c.lastInput).Seconds()),
	)
	c.writeCentered(centerY, termWidth, msg)
	c.writeCentered(centerY+2, termWidth, "Press any key to continue")
}

// drawShutdownScreen draws the server shutdown notification screen.
func (c *Client) drawShutdownScreen(termWidth, termHeight int) {
	centerY := termHeight / 2
	c.writeCentered(centerY-3, termWidth, "SERVER SHUTTING DOWN")
	c.writeCentered(centerY-1, termWidth, "The server is restarting for maintenance.")
	c.writeCentered(centerY, termWidth, "Please reconnect in a moment.")

	remaining := int(c.state.shutdownTimer) + 1
	c.writeCentered(centerY+2, termWidth, fmt.Sprintf("Disconnecting in %d seconds...", remaining))
	c.writeCentered(centerY+4, termWidth, "Press Q to disconnect now")
}
