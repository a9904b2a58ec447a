package domain

import (
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

const (
	// MaxDistributions bounds the number of schedule slots per campaign.
	MaxDistributions = 10
	// MinBasisPoints is the smallest share a single slot may carry.
	MinBasisPoints = 100
	// MaxCampaignDuration is the longest allowed [start, end] window.
	MaxCampaignDuration = 10 * 365 * 24 * time.Hour
)

// DistributionKind is the release shape of a slot.
type DistributionKind uint8

const (
	LumpSum DistributionKind = iota
	LinearVesting
)

func (k DistributionKind) String() string {
	switch k {
	case LumpSum:
		return "lump_sum"
	case LinearVesting:
		return "linear_vesting"
	default:
		return "unknown(" + strconv.Itoa(int(k)) + ")"
	}
}

// ParseDistributionKind is the inverse of String.
func ParseDistributionKind(s string) (DistributionKind, error) {
	switch s {
	case "lump_sum":
		return LumpSum, nil
	case "linear_vesting":
		return LinearVesting, nil
	default:
		return 0, WithMetadata(CodeInvalidDistribution, "unknown distribution kind", map[string]string{"kind": s})
	}
}

// Distribution is one release schedule slot. It is immutable once the
// campaign is created. EndTime and Cliff are unused for LumpSum.
type Distribution struct {
	Kind        DistributionKind
	BasisPoints uint16
	StartTime   time.Time
	EndTime     time.Time
	Cliff       time.Duration
}

// ElapsedAt reports whether the slot's active window has fully passed.
func (d Distribution) ElapsedAt(at time.Time) bool {
	switch d.Kind {
	case LumpSum:
		return !at.Before(d.StartTime)
	default:
		return !at.Before(d.EndTime)
	}
}

// Campaign is the single distribution campaign of an engine instance. The
// zero value is the Absent state.
type Campaign struct {
	Name        string
	Description string
	Category    string
	Asset       common.Address

	TotalReward    uint256.Int
	TotalAllocated uint256.Int
	TotalClaimed   uint256.Int

	Distributions []Distribution
	StartTime     time.Time
	EndTime       time.Time
	// ClosedAt is zero while the campaign is open.
	ClosedAt time.Time
	// AllowList is the optional external allow-list; zero means none.
	AllowList common.Address
	Exists    bool
	CreatedAt time.Time
}

// Closed reports whether the campaign has been closed.
func (c Campaign) Closed() bool {
	return !c.ClosedAt.IsZero()
}

// Started reports whether now is at or after the campaign start.
func (c Campaign) Started(now time.Time) bool {
	return !now.Before(c.StartTime)
}

// Open reports whether the campaign exists and has not been closed.
func (c Campaign) Open() bool {
	return c.Exists && !c.Closed()
}

// EffectiveTime is the vesting clock: wall-clock time, frozen at ClosedAt
// once the campaign is closed.
func (c Campaign) EffectiveTime(now time.Time) time.Time {
	if c.Closed() && c.ClosedAt.Before(now) {
		return c.ClosedAt
	}
	return now
}

// HasAllowList reports whether claims must pass an external allow-list.
func (c Campaign) HasAllowList() bool {
	return c.AllowList != (common.Address{})
}

// Clone returns a copy that shares no slices with c.
func (c Campaign) Clone() Campaign {
	out := c
	if c.Distributions != nil {
		out.Distributions = append([]Distribution(nil), c.Distributions...)
	}
	return out
}

// CampaignParams is the input of campaign creation.
type CampaignParams struct {
	Name          string
	Description   string
	Category      string
	Asset         common.Address
	TotalReward   uint256.Int
	Distributions []Distribution
	StartTime     time.Time
	EndTime       time.Time
	AllowList     common.Address
}

// Validate checks the schedule and window constraints of a new campaign.
// Funding is checked separately against the asset ledger.
func (p CampaignParams) Validate(now time.Time) error {
	if p.Asset == (common.Address{}) {
		return WithMetadata(CodeZeroAddress, "asset reference is zero", map[string]string{"field": "asset"})
	}
	if p.TotalReward.IsZero() {
		return WithMetadata(CodeZeroAmount, "total reward is zero", map[string]string{"field": "total_reward"})
	}
	if len(p.Distributions) == 0 {
		return New(CodeNoDistributions, "campaign has no distributions")
	}
	if !p.StartTime.After(now) {
		return WithMetadata(CodeStartNotInFuture, "start time must be in the future", map[string]string{
			"start": formatTime(p.StartTime),
			"now":   formatTime(now),
		})
	}
	if !p.EndTime.After(p.StartTime) {
		return WithMetadata(CodeInvalidTimeWindow, "end time must be after start time", map[string]string{
			"start": formatTime(p.StartTime),
			"end":   formatTime(p.EndTime),
		})
	}
	if d := p.EndTime.Sub(p.StartTime); d > MaxCampaignDuration {
		return WithMetadata(CodeDurationTooLong, "campaign duration exceeds maximum", map[string]string{
			"actual":   d.String(),
			"expected": MaxCampaignDuration.String(),
		})
	}
	if len(p.Distributions) > MaxDistributions {
		return WithMetadata(CodeTooManyDistributions, "too many distributions", map[string]string{
			"actual":   strconv.Itoa(len(p.Distributions)),
			"expected": strconv.Itoa(MaxDistributions),
		})
	}

	var sum int
	for i, d := range p.Distributions {
		if err := p.validateDistribution(i, d); err != nil {
			return err
		}
		sum += int(d.BasisPoints)
	}
	if sum != TotalBasisPoints {
		return WithMetadata(CodePercentageSumInvalid, "distribution percentages must sum to 10000 bps", map[string]string{
			"actual":   strconv.Itoa(sum),
			"expected": strconv.Itoa(TotalBasisPoints),
		})
	}
	return nil
}

func (p CampaignParams) validateDistribution(i int, d Distribution) error {
	slot := strconv.Itoa(i)
	if d.BasisPoints < MinBasisPoints {
		return WithMetadata(CodePercentageTooLow, "distribution percentage below minimum", map[string]string{
			"slot":     slot,
			"actual":   strconv.Itoa(int(d.BasisPoints)),
			"expected": strconv.Itoa(MinBasisPoints),
		})
	}
	inWindow := func(t time.Time) bool {
		return !t.Before(p.StartTime) && !t.After(p.EndTime)
	}
	switch d.Kind {
	case LumpSum:
		if !inWindow(d.StartTime) {
			return WithMetadata(CodeInvalidDistribution, "lump sum start outside campaign window", map[string]string{
				"slot":  slot,
				"start": formatTime(d.StartTime),
			})
		}
	case LinearVesting:
		if !d.EndTime.After(d.StartTime) {
			return WithMetadata(CodeInvalidDistribution, "vesting end must be after vesting start", map[string]string{
				"slot":  slot,
				"start": formatTime(d.StartTime),
				"end":   formatTime(d.EndTime),
			})
		}
		if !inWindow(d.StartTime) || !inWindow(d.EndTime) {
			return WithMetadata(CodeInvalidDistribution, "vesting window outside campaign window", map[string]string{
				"slot":  slot,
				"start": formatTime(d.StartTime),
				"end":   formatTime(d.EndTime),
			})
		}
		if d.Cliff < 0 || d.Cliff >= d.EndTime.Sub(d.StartTime) {
			return WithMetadata(CodeInvalidDistribution, "cliff must be shorter than the vesting duration", map[string]string{
				"slot":     slot,
				"actual":   d.Cliff.String(),
				"expected": d.EndTime.Sub(d.StartTime).String(),
			})
		}
	default:
		return WithMetadata(CodeInvalidDistribution, "unknown distribution kind", map[string]string{
			"slot": slot,
			"kind": d.Kind.String(),
		})
	}
	return nil
}

// Normalize truncates every time to whole seconds in UTC and clears the
// fields LumpSum slots do not use.
func (p CampaignParams) Normalize() CampaignParams {
	out := p
	out.StartTime = p.StartTime.Truncate(time.Second).UTC()
	out.EndTime = p.EndTime.Truncate(time.Second).UTC()
	out.Distributions = make([]Distribution, len(p.Distributions))
	for i, d := range p.Distributions {
		d.StartTime = d.StartTime.Truncate(time.Second).UTC()
		if d.Kind == LumpSum {
			d.EndTime = time.Time{}
			d.Cliff = 0
		} else {
			d.EndTime = d.EndTime.Truncate(time.Second).UTC()
			d.Cliff = d.Cliff.Truncate(time.Second)
		}
		out.Distributions[i] = d
	}
	return out
}

// NewCampaign materialises normalized, validated params as an open campaign.
func NewCampaign(p CampaignParams, now time.Time) Campaign {
	return Campaign{
		Name:          p.Name,
		Description:   p.Description,
		Category:      p.Category,
		Asset:         p.Asset,
		TotalReward:   p.TotalReward,
		Distributions: append([]Distribution(nil), p.Distributions...),
		StartTime:     p.StartTime,
		EndTime:       p.EndTime,
		AllowList:     p.AllowList,
		Exists:        true,
		CreatedAt:     now.Truncate(time.Second).UTC(),
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
