package browser

import (
	"context"
	"math/rand"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Pause waits a random duration in [min, max] or until ctx is done.
func Pause(ctx context.Context, min, max time.Duration) error {
	d := min
	if max > min {
		d += time.Duration(rand.Int63n(int64(max - min)))
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// HumanScroll scrolls down in a few uneven steps, then back to the top.
func HumanScroll(ctx context.Context, page playwright.Page, steps int) error {
	for i := 0; i < steps; i++ {
		if _, err := page.Evaluate("window.scrollBy(0, window.innerHeight / 3)"); err != nil {
			return err
		}
		if err := Pause(ctx, 300*time.Millisecond, 900*time.Millisecond); err != nil {
			return err
		}
	}
	_, err := page.Evaluate("window.scrollTo(0, 0)")
	return err
}

// MouseJiggle moves the pointer around to avoid idle detection.
func MouseJiggle(ctx context.Context, page playwright.Page) error {
	viewport := page.ViewportSize()
	if viewport == nil || viewport.Width <= 0 || viewport.Height <= 0 {
		return nil
	}
	for i := 0; i < 3; i++ {
		x := rand.Intn(viewport.Width)
		y := rand.Intn(viewport.Height)
		if err := page.Mouse().Move(float64(x), float64(y)); err != nil {
			return err
		}
		if err := Pause(ctx, 100*time.Millisecond, 300*time.Millisecond); err != nil {
			return err
		}
	}
	return nil
}
