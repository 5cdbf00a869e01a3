// internal/sim/sim.go drives whole matches through the engine with simple
// bots. It is used by the sevensim command to soak-test the rules.
package sim

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/unluckysevens/internal/game"
	"github.com/jason-s-yu/unluckysevens/internal/models"
	"github.com/sirupsen/logrus"
)

const defaultMaxSteps = 50_000

// Options configures a simulated match.
type Options struct {
	Players     int
	Seed        uint64
	HandSize    int
	MatchTarget int
	TurnSeconds int
	// TimeoutRate is the chance that a stuck player idles out instead of
	// drawing. Zero never times out.
	TimeoutRate float64
	MaxSteps    int
	// Logger receives the narration of every committed action at Debug.
	Logger *logrus.Logger
}

// Result summarises one match.
type Result struct {
	Seed     uint64
	Steps    int
	Rounds   int
	Finished bool
	Winner   string
	Wins     map[string]int
	Reasons  map[string]int
	Rejected int
}

// clock is a fake time source that only moves when told to.
type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

// PlayMatch plays a match from an empty lobby until someone reaches the
// match target or MaxSteps actions have been applied. Every committed round
// is checked with game.CheckInvariants; a broken round stops the match with
// an error.
func PlayMatch(opts Options) (Result, error) {
	if opts.Players < 2 || opts.Players > game.MaxPlayers {
		return Result{}, fmt.Errorf("players must be between 2 and %d", game.MaxPlayers)
	}
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = defaultMaxSteps
	}
	if opts.TurnSeconds <= 0 {
		opts.TurnSeconds = game.DefaultTurnSeconds
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.InfoLevel)
	}

	clk := &clock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	engine := &game.Engine{
		HandSize:    opts.HandSize,
		MatchTarget: opts.MatchTarget,
		Rand:        rand.New(rand.NewPCG(opts.Seed, 0x7777)),
		Now:         clk.now,
	}
	rng := rand.New(rand.NewPCG(opts.Seed, 0x8888))
	code := fmt.Sprintf("SIM%03d", opts.Seed%1000)

	res := Result{Seed: opts.Seed, Wins: map[string]int{}, Reasons: map[string]int{}}
	names := map[string]string{}

	hostID := uuid.NewString()
	names[hostID] = "P1"
	r := game.NewRoomState(hostID, "P1", opts.TurnSeconds)
	for i := 2; i <= opts.Players; i++ {
		id := uuid.NewString()
		names[id] = fmt.Sprintf("P%d", i)
		next, err := engine.Apply(game.ActionContext{RoomCode: code, ActorID: id, Round: r}, game.JoinRoom{Name: names[id]})
		if err != nil {
			return res, fmt.Errorf("join %s: %w", names[id], err)
		}
		r = next
	}

	bot := &Bot{Rand: rng, TimeoutRate: opts.TimeoutRate}
	for res.Steps < opts.MaxSteps && r.RoundStatus != models.StatusFinishedMatch {
		actor, action := bot.Next(r)
		if action == nil {
			return res, fmt.Errorf("step %d: no action for status %s", res.Steps, r.RoundStatus)
		}
		if _, ok := action.(game.TimeoutPickupAndPass); ok {
			clk.advance(time.Duration(r.TurnSeconds+1) * time.Second)
		} else {
			clk.advance(time.Second)
		}

		next, err := engine.Apply(game.ActionContext{RoomCode: code, ActorID: actor, Round: r}, action)
		res.Steps++
		if err != nil {
			if game.IsRejection(err) {
				res.Rejected++
				logger.WithFields(logrus.Fields{
					"seed":   opts.Seed,
					"action": action.Kind(),
				}).Debugf("bot move rejected: %v", err)
				continue
			}
			return res, fmt.Errorf("step %d %s: %w", res.Steps, action.Kind(), err)
		}
		if err := game.CheckInvariants(next); err != nil {
			return res, fmt.Errorf("step %d %s broke the round: %w", res.Steps, action.Kind(), err)
		}
		if next.LastEvent != r.LastEvent {
			logger.WithField("seed", opts.Seed).Debug(next.LastEvent)
		}

		if next.RoundResult != nil && r.RoundResult == nil {
			res.Rounds++
			res.Reasons[next.RoundResult.Reason]++
			if w := next.RoundResult.WinnerID; w != "" {
				res.Wins[names[w]]++
			}
		}
		r = next
	}

	if r.RoundStatus == models.StatusFinishedMatch {
		res.Finished = true
		if r.RoundResult != nil {
			res.Winner = names[r.RoundResult.WinnerID]
		}
	}
	return res, nil
}
