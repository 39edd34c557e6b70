// Command viewer renders a live picture of the arena by polling a
// running bot's control surface. It is an observer only; it never
// talks to the arbiter.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"image/color"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"bomberbot/pkg/core"
)

const (
	cellSize = 24
	hudLines = 3
)

var (
	colorFloor    = color.RGBA{40, 40, 48, 255}
	colorWall     = color.RGBA{90, 90, 100, 255}
	colorObstacle = color.RGBA{140, 110, 60, 255}
	colorBomb     = color.RGBA{230, 60, 60, 255}
	colorDanger   = color.RGBA{200, 60, 60, 90}
	colorMob      = color.RGBA{200, 80, 200, 255}
	colorMobSafe  = color.RGBA{120, 80, 140, 255}
	colorEnemy    = color.RGBA{220, 160, 40, 255}
	colorUnit     = color.RGBA{70, 200, 110, 255}
	colorPath     = color.RGBA{70, 140, 220, 160}
	colorText     = color.RGBA{220, 220, 220, 255}
)

// stateResponse mirrors the control surface's /api/state payload.
type stateResponse struct {
	State       *core.GameState    `json:"state"`
	AgeMS       int64              `json:"age_ms"`
	Commands    []core.MoveCommand `json:"commands"`
	Notes       map[string]string  `json:"notes"`
	DangerCells []core.Pos         `json:"danger_cells"`
	LastError   string             `json:"last_error"`
	DecideMS    int64              `json:"decide_ms"`
}

// poller fetches the state endpoint on a fixed period in the
// background; Draw reads the latest copy.
type poller struct {
	url  string
	mu   sync.RWMutex
	last stateResponse
	err  error
}

func (p *poller) run(period time.Duration) {
	client := &http.Client{Timeout: 3 * time.Second}
	for {
		resp, err := client.Get(p.url)
		if err != nil {
			p.setErr(err)
			time.Sleep(period)
			continue
		}
		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			p.setErr(err)
			time.Sleep(period)
			continue
		}
		var sr stateResponse
		if err := json.Unmarshal(data, &sr); err != nil {
			p.setErr(err)
			time.Sleep(period)
			continue
		}
		p.mu.Lock()
		p.last = sr
		p.err = nil
		p.mu.Unlock()
		time.Sleep(period)
	}
}

func (p *poller) setErr(err error) {
	p.mu.Lock()
	p.err = err
	p.mu.Unlock()
}

func (p *poller) get() (stateResponse, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.last, p.err
}

type viewer struct {
	poll *poller
	face text.Face
	w, h int
}

func (v *viewer) Update() error { return nil }

func (v *viewer) Draw(screen *ebiten.Image) {
	sr, err := v.poll.get()
	if err != nil {
		v.drawText(screen, 8, 16, fmt.Sprintf("control unreachable: %v", err))
		return
	}
	st := sr.State
	if st == nil {
		v.drawText(screen, 8, 16, "waiting for first snapshot...")
		return
	}

	for y := 0; y < st.Height(); y++ {
		for x := 0; x < st.Width(); x++ {
			fillCell(screen, core.Pos{X: x, Y: y}, colorFloor)
		}
	}
	for _, p := range sr.DangerCells {
		fillCell(screen, p, colorDanger)
	}
	for _, p := range st.Arena.Walls {
		fillCell(screen, p, colorWall)
	}
	for _, p := range st.Arena.Obstacles {
		fillCell(screen, p, colorObstacle)
	}
	for _, cmd := range sr.Commands {
		for _, p := range cmd.Path {
			fillCellInset(screen, p, colorPath, 7)
		}
	}
	for _, b := range st.Arena.Bombs {
		fillCellInset(screen, b.Pos, colorBomb, 4)
	}
	for _, m := range st.Mobs {
		c := colorMob
		if !m.Armed() {
			c = colorMobSafe
		}
		fillCellInset(screen, m.Pos, c, 3)
	}
	for _, e := range st.Enemies {
		fillCellInset(screen, e.Pos, colorEnemy, 3)
	}
	for _, u := range st.Units {
		if !u.Alive {
			continue
		}
		fillCellInset(screen, u.Pos, colorUnit, 2)
	}

	hudY := st.Height()*cellSize + 14
	v.drawText(screen, 8, hudY, fmt.Sprintf("score=%d units=%d age=%dms decide=%dms",
		st.RawScore, len(st.AliveUnits()), sr.AgeMS, sr.DecideMS))
	line := 1
	for _, u := range st.AliveUnits() {
		if note, ok := sr.Notes[u.ID]; ok && note != "" {
			v.drawText(screen, 8, hudY+line*14, fmt.Sprintf("%s %s %s", u.ID, u.Pos, note))
			line++
		}
	}
	if sr.LastError != "" {
		v.drawText(screen, 8, hudY+line*14, "err: "+sr.LastError)
	}
}

func (v *viewer) drawText(screen *ebiten.Image, x, y int, s string) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleWithColor(colorText)
	text.Draw(screen, s, v.face, op)
}

func fillCell(screen *ebiten.Image, p core.Pos, c color.Color) {
	vector.DrawFilledRect(screen,
		float32(p.X*cellSize), float32(p.Y*cellSize),
		float32(cellSize-1), float32(cellSize-1), c, false)
}

func fillCellInset(screen *ebiten.Image, p core.Pos, c color.Color, inset int) {
	vector.DrawFilledRect(screen,
		float32(p.X*cellSize+inset), float32(p.Y*cellSize+inset),
		float32(cellSize-1-2*inset), float32(cellSize-1-2*inset), c, false)
}

func (v *viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return v.w, v.h
}

func main() {
	addr := flag.String("addr", "http://127.0.0.1:8090", "control surface base URL")
	gridW := flag.Int("w", 30, "expected grid width in cells")
	gridH := flag.Int("h", 30, "expected grid height in cells")
	period := flag.Duration("poll", 500*time.Millisecond, "poll period")
	flag.Parse()

	p := &poller{url: *addr + "/api/state"}
	go p.run(*period)

	v := &viewer{
		poll: p,
		face: text.NewGoXFace(basicfont.Face7x13),
		w:    *gridW * cellSize,
		h:    *gridH*cellSize + hudLines*14 + 8,
	}

	ebiten.SetWindowSize(v.w, v.h)
	ebiten.SetWindowTitle("bomberbot viewer")
	if err := ebiten.RunGame(v); err != nil {
		log.Fatal(err)
	}
}
