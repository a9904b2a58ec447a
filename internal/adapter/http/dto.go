package httpadapter

import (
	"math"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"mesa-vesting/internal/core/domain"
	"mesa-vesting/internal/core/port"
)

// Amounts travel as base-10 strings and times as RFC3339.

// maxCliffSeconds is the largest cliff representable as a time.Duration.
const maxCliffSeconds = math.MaxInt64 / int64(time.Second)

type distributionDTO struct {
	Kind         string     `json:"kind"`
	BasisPoints  uint16     `json:"basis_points"`
	StartTime    time.Time  `json:"start_time"`
	EndTime      *time.Time `json:"end_time,omitempty"`
	CliffSeconds int64      `json:"cliff_seconds,omitempty"`
}

type createCampaignRequest struct {
	Name          string            `json:"name"`
	Description   string            `json:"description"`
	Category      string            `json:"category"`
	Asset         common.Address    `json:"asset"`
	TotalReward   string            `json:"total_reward"`
	Distributions []distributionDTO `json:"distributions"`
	StartTime     time.Time         `json:"start_time"`
	EndTime       time.Time         `json:"end_time"`
	AllowList     *common.Address   `json:"allow_list,omitempty"`
}

func (req createCampaignRequest) params() (domain.CampaignParams, error) {
	reward, err := domain.ParseAmount(req.TotalReward)
	if err != nil {
		return domain.CampaignParams{}, err
	}
	p := domain.CampaignParams{
		Name:          req.Name,
		Description:   req.Description,
		Category:      req.Category,
		Asset:         req.Asset,
		TotalReward:   reward,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Distributions: make([]domain.Distribution, 0, len(req.Distributions)),
	}
	if req.AllowList != nil {
		p.AllowList = *req.AllowList
	}
	for i, d := range req.Distributions {
		kind, err := domain.ParseDistributionKind(d.Kind)
		if err != nil {
			return domain.CampaignParams{}, err
		}
		if d.CliffSeconds < 0 || d.CliffSeconds > maxCliffSeconds {
			return domain.CampaignParams{}, domain.WithMetadata(domain.CodeInvalidDistribution, "cliff out of range", map[string]string{
				"slot":     strconv.Itoa(i),
				"actual":   strconv.FormatInt(d.CliffSeconds, 10),
				"expected": "0.." + strconv.FormatInt(maxCliffSeconds, 10),
			})
		}
		dist := domain.Distribution{
			Kind:        kind,
			BasisPoints: d.BasisPoints,
			StartTime:   d.StartTime,
			Cliff:       time.Duration(d.CliffSeconds) * time.Second,
		}
		if d.EndTime != nil {
			dist.EndTime = *d.EndTime
		}
		p.Distributions = append(p.Distributions, dist)
	}
	return p, nil
}

type campaignResponse struct {
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	Category       string            `json:"category"`
	Asset          common.Address    `json:"asset"`
	TotalReward    string            `json:"total_reward"`
	TotalAllocated string            `json:"total_allocated"`
	TotalClaimed   string            `json:"total_claimed"`
	Distributions  []distributionDTO `json:"distributions"`
	StartTime      time.Time         `json:"start_time"`
	EndTime        time.Time         `json:"end_time"`
	ClosedAt       *time.Time        `json:"closed_at,omitempty"`
	AllowList      *common.Address   `json:"allow_list,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}

func toCampaignResponse(c domain.Campaign) campaignResponse {
	resp := campaignResponse{
		Name:           c.Name,
		Description:    c.Description,
		Category:       c.Category,
		Asset:          c.Asset,
		TotalReward:    c.TotalReward.Dec(),
		TotalAllocated: c.TotalAllocated.Dec(),
		TotalClaimed:   c.TotalClaimed.Dec(),
		Distributions:  make([]distributionDTO, 0, len(c.Distributions)),
		StartTime:      c.StartTime,
		EndTime:        c.EndTime,
		CreatedAt:      c.CreatedAt,
	}
	if c.Closed() {
		closed := c.ClosedAt
		resp.ClosedAt = &closed
	}
	if c.HasAllowList() {
		list := c.AllowList
		resp.AllowList = &list
	}
	for _, d := range c.Distributions {
		dto := distributionDTO{
			Kind:        d.Kind.String(),
			BasisPoints: d.BasisPoints,
			StartTime:   d.StartTime,
		}
		if d.Kind == domain.LinearVesting {
			end := d.EndTime
			dto.EndTime = &end
			dto.CliffSeconds = int64(d.Cliff / time.Second)
		}
		resp.Distributions = append(resp.Distributions, dto)
	}
	return resp
}

type closeResponse struct {
	Campaign campaignResponse `json:"campaign"`
	Returned string           `json:"returned"`
}

type statusResponse struct {
	Owner        common.Address  `json:"owner"`
	PendingOwner *common.Address `json:"pending_owner,omitempty"`
	Paused       bool            `json:"paused"`
}

func toStatusResponse(s domain.Settings) statusResponse {
	resp := statusResponse{Owner: s.Owner, Paused: s.Paused}
	if s.HasPendingOwner() {
		pending := s.PendingOwner
		resp.PendingOwner = &pending
	}
	return resp
}

type allocationDTO struct {
	Recipient common.Address `json:"recipient"`
	Amount    string         `json:"amount"`
}

type addAllocationsRequest struct {
	Entries []allocationDTO `json:"entries"`
}

func (req addAllocationsRequest) entries() ([]domain.AllocationEntry, error) {
	out := make([]domain.AllocationEntry, 0, len(req.Entries))
	for _, e := range req.Entries {
		a, err := domain.ParseAmount(e.Amount)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.AllocationEntry{Recipient: e.Recipient, Amount: a})
	}
	return out, nil
}

type replaceIdentityRequest struct {
	Replacement common.Address `json:"replacement"`
}

type claimDTO struct {
	Claimed       string     `json:"claimed"`
	LastClaimedAt *time.Time `json:"last_claimed_at,omitempty"`
}

type positionResponse struct {
	Recipient      common.Address `json:"recipient"`
	Allocation     string         `json:"allocation"`
	Claims         []claimDTO     `json:"claims"`
	Claimable      []string       `json:"claimable"`
	TotalClaimable string         `json:"total_claimable"`
	Blacklisted    bool           `json:"blacklisted"`
	EffectiveTime  *time.Time     `json:"effective_time,omitempty"`
}

func toPositionResponse(p domain.Position) positionResponse {
	resp := positionResponse{
		Recipient:      p.Recipient,
		Allocation:     p.Allocation.Dec(),
		Claims:         make([]claimDTO, 0, len(p.Claims)),
		Claimable:      amountStrings(p.Claimable),
		TotalClaimable: p.TotalClaimable.Dec(),
		Blacklisted:    p.Blacklisted,
	}
	if !p.EffectiveTime.IsZero() {
		at := p.EffectiveTime
		resp.EffectiveTime = &at
	}
	for _, c := range p.Claims {
		dto := claimDTO{Claimed: c.Claimed.Dec()}
		if !c.LastClaimedAt.IsZero() {
			at := c.LastClaimedAt
			dto.LastClaimedAt = &at
		}
		resp.Claims = append(resp.Claims, dto)
	}
	return resp
}

type claimRequest struct {
	Recipient common.Address `json:"recipient"`
	// Amount is optional; empty or "0" claims everything claimable.
	Amount string `json:"amount,omitempty"`
}

type batchClaimRequest struct {
	Recipients []common.Address `json:"recipients"`
	Amounts    []string         `json:"amounts"`
	Memo       string           `json:"memo,omitempty"`
}

func (req batchClaimRequest) toPort() (port.BatchClaimRequest, error) {
	out := port.BatchClaimRequest{
		Recipients: req.Recipients,
		Amounts:    make([]uint256.Int, 0, len(req.Amounts)),
		Memo:       req.Memo,
	}
	for _, s := range req.Amounts {
		a, err := parseOptionalAmount(s)
		if err != nil {
			return port.BatchClaimRequest{}, err
		}
		out.Amounts = append(out.Amounts, a)
	}
	return out, nil
}

type settlementResponse struct {
	Recipient common.Address `json:"recipient"`
	Amount    string         `json:"amount"`
	PerSlot   []string       `json:"per_slot"`
}

func toSettlementResponse(s port.Settlement) settlementResponse {
	return settlementResponse{
		Recipient: s.Recipient,
		Amount:    s.Amount.Dec(),
		PerSlot:   amountStrings(s.PerSlot),
	}
}

type batchResponse struct {
	Processed         int                  `json:"processed"`
	Skipped           int                  `json:"skipped"`
	Total             string               `json:"total"`
	Settlements       []settlementResponse `json:"settlements"`
	SkippedRecipients []common.Address     `json:"skipped_recipients"`
}

func toBatchResponse(b port.BatchResult) batchResponse {
	resp := batchResponse{
		Processed:         b.Processed,
		Skipped:           b.Skipped,
		Total:             b.Total.Dec(),
		Settlements:       make([]settlementResponse, 0, len(b.Settlements)),
		SkippedRecipients: b.SkippedRecipients,
	}
	if resp.SkippedRecipients == nil {
		resp.SkippedRecipients = []common.Address{}
	}
	for _, s := range b.Settlements {
		resp.Settlements = append(resp.Settlements, toSettlementResponse(s))
	}
	return resp
}

type investorsResponse struct {
	Investors []common.Address `json:"investors"`
	Total     int              `json:"total"`
	Offset    int              `json:"offset"`
}

type blacklistRequest struct {
	Blacklisted bool `json:"blacklisted"`
}

type blacklistResponse struct {
	Address     common.Address `json:"address"`
	Blacklisted bool           `json:"blacklisted"`
}

type authorizedRequest struct {
	Authorized bool `json:"authorized"`
}

type authorizedResponse struct {
	Wallets []common.Address `json:"wallets"`
}

type transferOwnershipRequest struct {
	NewOwner common.Address `json:"new_owner"`
}

type sweepRequest struct {
	Asset common.Address `json:"asset"`
}

type sweepResponse struct {
	Asset  common.Address `json:"asset"`
	Amount string         `json:"amount"`
}

func amountStrings(in []uint256.Int) []string {
	out := make([]string, len(in))
	for i := range in {
		out[i] = in[i].Dec()
	}
	return out
}
