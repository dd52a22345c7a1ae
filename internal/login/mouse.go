package login

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/Bangnus/Check-Unfollows-IG/internal/browser"
)

// humanPause moves the pointer to a random spot and lingers for 1-2.5s.
// Purely cosmetic; errors are ignored.
func (a *Authenticator) humanPause(ctx context.Context, page browser.Page) {
	x := float64(a.rand.IntN(1280))
	y := float64(a.rand.IntN(800))
	steps := a.rand.IntN(3) + 3

	_ = page.MoveMouse(ctx, x, y, steps)
	a.sleep(ctx, time.Duration(1000+a.rand.IntN(1500))*time.Millisecond)
}

func newRand() *rand.Rand {
	return rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15))
}
