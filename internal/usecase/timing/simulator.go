package timing

import (
	"context"
	"math/rand/v2"
	"time"
	"unicode"

	"smart-apply/internal/application/port/output"
	"smart-apply/internal/domain/entity"
)

// Pointer moves the mouse; PagePort satisfies it.
type Pointer interface {
	MovePointer(ctx context.Context, to entity.Point) error
}

type Wheeler interface {
	Wheel(ctx context.Context, dx, dy float64) error
}

// Typist receives one key action at a time; Element satisfies it.
type Typist interface {
	TypeRune(ctx context.Context, r rune) error
	Backspace(ctx context.Context) error
}

type Config struct {
	DistractionProbability float64
	DistractionMin         float64
	DistractionMax         float64
	Typing                 TypeOptions
}

type TypeOptions struct {
	CharDelayMinMs   float64
	CharDelayMaxMs   float64
	TypoProbability  float64
	PauseProbability float64
}

func DefaultConfig() Config {
	return Config{
		DistractionProbability: 0.3,
		DistractionMin:         2,
		DistractionMax:         8,
		Typing: TypeOptions{
			CharDelayMinMs:   50,
			CharDelayMaxMs:   150,
			TypoProbability:  0.05,
			PauseProbability: 0.15,
		},
	}
}

// Simulator paces every interaction like a person would. It never fails:
// errors from the page are logged and ignored. Not safe for concurrent use.
type Simulator struct {
	cfg    Config
	clock  Clock
	rnd    *rand.Rand
	logger output.LoggerPort
	pos    entity.Point
}

func New(cfg Config, clock Clock, rnd *rand.Rand, logger output.LoggerPort) *Simulator {
	if clock == nil {
		clock = RealClock()
	}
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed))
	}
	return &Simulator{
		cfg:    cfg,
		clock:  clock,
		rnd:    rnd,
		logger: logger,
	}
}

func (s *Simulator) Clock() Clock { return s.clock }

// Delay blocks for uniform [min, max] seconds plus an occasional 2–8 s distraction.
func (s *Simulator) Delay(ctx context.Context, minSeconds, maxSeconds float64) time.Duration {
	return s.DelayWith(ctx, minSeconds, maxSeconds, s.cfg.DistractionProbability)
}

func (s *Simulator) DelayWith(ctx context.Context, minSeconds, maxSeconds, distraction float64) time.Duration {
	d := s.drawDelay(minSeconds, maxSeconds, distraction)
	s.sleep(ctx, d)
	return d
}

// Pause is Delay without the distraction roll.
func (s *Simulator) Pause(ctx context.Context, minSeconds, maxSeconds float64) time.Duration {
	return s.DelayWith(ctx, minSeconds, maxSeconds, 0)
}

func (s *Simulator) drawDelay(minSeconds, maxSeconds, distraction float64) time.Duration {
	secs := s.uniform(minSeconds, maxSeconds)
	if distraction > 0 && s.rnd.Float64() < distraction {
		secs += s.uniform(s.cfg.DistractionMin, s.cfg.DistractionMax)
	}
	return seconds(secs)
}

// MovePointer walks the pointer along a Bézier curve to `to` within durationSeconds.
func (s *Simulator) MovePointer(ctx context.Context, p Pointer, to entity.Point, durationSeconds float64) {
	path := s.Path(s.pos, to)
	step := seconds(durationSeconds / float64(len(path)))
	for _, pt := range path {
		if ctx.Err() != nil {
			return
		}
		if err := p.MovePointer(ctx, pt); err != nil {
			s.logger.Debug("pointer move failed", "error", err)
			return
		}
		s.pos = pt
		s.sleep(ctx, step)
	}
}

// Approach moves to a random point in the middle of box and hovers briefly.
func (s *Simulator) Approach(ctx context.Context, p Pointer, box entity.Box) {
	if box.Width <= 0 || box.Height <= 0 {
		return
	}
	target := entity.Point{
		X: box.X + box.Width*s.uniform(0.3, 0.7),
		Y: box.Y + box.Height*s.uniform(0.3, 0.7),
	}
	s.MovePointer(ctx, p, target, s.uniform(0.3, 0.7))
	s.Pause(ctx, 0.1, 0.3)
}

func (s *Simulator) TypeText(ctx context.Context, t Typist, text string) {
	s.TypeTextWith(ctx, t, text, s.cfg.Typing)
}

// TypeTextWith emits one key action per character, with occasional corrected typos and thinking pauses.
func (s *Simulator) TypeTextWith(ctx context.Context, t Typist, text string, opts TypeOptions) {
	for _, ch := range text {
		if ctx.Err() != nil {
			return
		}

		if unicode.IsLetter(ch) && s.rnd.Float64() < opts.TypoProbability {
			wrong := rune('a' + s.rnd.IntN(26))
			if err := t.TypeRune(ctx, wrong); err == nil {
				s.Pause(ctx, 0.1, 0.3)
				if err := t.Backspace(ctx); err != nil {
					s.logger.Debug("typo correction failed", "error", err)
				}
				s.Pause(ctx, 0.05, 0.15)
			}
		}

		if err := t.TypeRune(ctx, ch); err != nil {
			s.logger.Debug("type failed", "error", err)
		}

		lo, hi := opts.CharDelayMinMs, opts.CharDelayMaxMs
		if isSymbol(ch) {
			lo, hi = hi, hi*1.5
		}
		s.sleep(ctx, time.Duration(s.uniform(lo, hi)*float64(time.Millisecond)))

		if s.rnd.Float64() < opts.PauseProbability {
			s.Pause(ctx, 0.3, 1.2)
		}
	}
}

// Scroll reads down the page in one irregular chunk, sometimes glancing back up.
func (s *Simulator) Scroll(ctx context.Context, w Wheeler) {
	chunk := s.uniform(200, 800)
	steps := 10 + s.rnd.IntN(11)
	for i := 0; i < steps; i++ {
		if err := w.Wheel(ctx, 0, chunk/float64(steps)); err != nil {
			s.logger.Debug("scroll failed", "error", err)
			return
		}
		s.sleep(ctx, 20*time.Millisecond)
	}

	s.Pause(ctx, 1, 3)

	if s.rnd.Float64() < 0.2 {
		if err := w.Wheel(ctx, 0, -s.uniform(50, 200)); err != nil {
			s.logger.Debug("scroll back failed", "error", err)
		}
		s.Pause(ctx, 0.5, 1)
	}
}

// ReadingPattern sweeps the pointer across a few lines of box as if reading it.
func (s *Simulator) ReadingPattern(ctx context.Context, p Pointer, box entity.Box) {
	x := box.X + 10
	y := box.Y + 10
	lines := 3 + s.rnd.IntN(4)
	for i := 0; i < lines; i++ {
		if ctx.Err() != nil {
			return
		}
		s.MovePointer(ctx, p, entity.Point{X: x + s.uniform(200, 400), Y: y}, s.uniform(0.8, 1.5))
		y += s.uniform(20, 35)
		s.MovePointer(ctx, p, entity.Point{X: x, Y: y}, 0.2)
	}
}

func (s *Simulator) sleep(ctx context.Context, d time.Duration) {
	_ = s.clock.Sleep(ctx, d)
}

func (s *Simulator) uniform(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + s.rnd.Float64()*(hi-lo)
}

func isSymbol(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsSpace(r)
}

func seconds(f float64) time.Duration {
	return time.Duration(f * float64(time.Second))
}
