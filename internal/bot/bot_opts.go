package bot

import (
	"math/rand"
	"time"
)

type BotOpt func(*Bot)

// WithSpeed sets the walking speed in pixels per second.
func WithSpeed(s float64) BotOpt {
	return func(b *Bot) {
		b.speed = s
	}
}

func WithCrops(crops ...string) BotOpt {
	return func(b *Bot) {
		b.crops = crops
	}
}

func WithInterval(d time.Duration) BotOpt {
	return func(b *Bot) {
		b.interval = d
	}
}

func WithRand(r *rand.Rand) BotOpt {
	return func(b *Bot) {
		b.rng = r
	}
}
