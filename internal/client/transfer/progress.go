package transfer

import (
	"context"
	"io"
	"math"

	"golang.org/x/time/rate"
)

// Percent converts a byte count into a rounded percentage clamped to
// [0,100]. ok is false when total is not known.
func Percent(loaded, total int64) (pct int, ok bool) {
	if total <= 0 {
		return 0, false
	}
	p := int(math.Round(float64(loaded) / float64(total) * 100))
	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}
	return p, true
}

// tracker turns transport ticks into progress callbacks.
type tracker struct {
	total  int64
	onTick func(pct int)
}

func (t *tracker) tick(loaded int64) {
	if pct, ok := Percent(loaded, t.total); ok {
		t.onTick(pct)
	}
}

// progressReader counts bytes pulled by the transport.
type progressReader struct {
	r       io.Reader
	loaded  int64
	tracker *tracker
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.loaded += int64(n)
		p.tracker.tick(p.loaded)
	}
	return n, err
}

// limitedReader throttles reads to the limiter's rate.
type limitedReader struct {
	ctx     context.Context
	r       io.Reader
	limiter *rate.Limiter
}

func (l *limitedReader) Read(b []byte) (int, error) {
	if burst := l.limiter.Burst(); len(b) > burst {
		b = b[:burst]
	}
	n, err := l.r.Read(b)
	if n > 0 {
		if werr := l.limiter.WaitN(l.ctx, n); werr != nil {
			return n, werr
		}
	}
	return n, err
}
