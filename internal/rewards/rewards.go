// Package rewards derives account payouts from a verified run
// summary. It sits strictly downstream of verification: the summary it
// consumes is the server's own replayed one, so client-claimed values
// can never reach a payout.
package rewards

import (
	"github.com/shopspring/decimal"

	"github.com/emberhold/fortress-replay-go/internal/sim"
)

// Grant is what one verified run pays out.
type Grant struct {
	Gold int64 `json:"gold"`
	Dust int64 `json:"dust"`
	XP   int64 `json:"xp"`
}

// Curve holds the payout tuning. All intermediate math is decimal;
// grants are floored to whole units at the very end so the curve can
// carry fractional per-wave rates without accumulating float drift.
type Curve struct {
	GoldPerWave   decimal.Decimal
	GoldPerKill   decimal.Decimal
	DustPerWave   decimal.Decimal
	XPPerWave     decimal.Decimal
	XPPerKill     decimal.Decimal
	WinMultiplier decimal.Decimal
	FirstWinBonus decimal.Decimal
}

// DefaultCurve is the tuned baseline payout curve.
func DefaultCurve() Curve {
	return Curve{
		GoldPerWave:   decimal.NewFromInt(25),
		GoldPerKill:   decimal.NewFromFloat(1.5),
		DustPerWave:   decimal.NewFromFloat(2.5),
		XPPerWave:     decimal.NewFromInt(40),
		XPPerKill:     decimal.NewFromInt(3),
		WinMultiplier: decimal.NewFromFloat(1.25),
		FirstWinBonus: decimal.NewFromInt(500),
	}
}

// Compute derives the payout for a verified summary. firstWin marks
// the account's first verified victory and pays the one-time bonus.
func (c Curve) Compute(sum sim.Summary, firstWin bool) Grant {
	waves := decimal.NewFromInt(int64(sum.WavesCleared))
	kills := decimal.NewFromInt(int64(sum.Kills))

	// In-run pickups pass through 1:1; the curve pays on top of them.
	gold := decimal.NewFromInt(int64(sum.Gold)).
		Add(c.GoldPerWave.Mul(waves)).
		Add(c.GoldPerKill.Mul(kills))
	dust := decimal.NewFromInt(int64(sum.Dust)).
		Add(c.DustPerWave.Mul(waves))
	xp := c.XPPerWave.Mul(waves).Add(c.XPPerKill.Mul(kills))

	if sum.Won {
		gold = gold.Mul(c.WinMultiplier)
		xp = xp.Mul(c.WinMultiplier)
		if firstWin {
			gold = gold.Add(c.FirstWinBonus)
		}
	}

	return Grant{
		Gold: gold.Floor().IntPart(),
		Dust: dust.Floor().IntPart(),
		XP:   xp.Floor().IntPart(),
	}
}
