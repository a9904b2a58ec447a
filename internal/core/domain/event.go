package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// EventKind names an observable state change.
type EventKind string

const (
	EventCampaignCreated          EventKind = "campaign_created"
	EventCampaignClosed           EventKind = "campaign_closed"
	EventAllocationsAdded         EventKind = "allocations_added"
	EventInvestorRemoved          EventKind = "investor_removed"
	EventIdentityReplaced         EventKind = "identity_replaced"
	EventClaimSettled             EventKind = "claim_settled"
	EventBatchClaimed             EventKind = "batch_claimed"
	EventBlacklistUpdated         EventKind = "blacklist_updated"
	EventAuthorizationUpdated     EventKind = "authorization_updated"
	EventPaused                   EventKind = "paused"
	EventUnpaused                 EventKind = "unpaused"
	EventAssetSwept               EventKind = "asset_swept"
	EventOwnershipTransferStarted EventKind = "ownership_transfer_started"
	EventOwnershipTransferred     EventKind = "ownership_transferred"
)

// Event is a record of a committed state change. Attributes hold the
// kind-specific fields as strings so amounts keep full precision.
type Event struct {
	ID         uuid.UUID
	Kind       EventKind
	Initiator  common.Address
	Attributes map[string]string
	CreatedAt  time.Time
}

// NewEvent stamps a new event with a random id.
func NewEvent(kind EventKind, initiator common.Address, at time.Time, attrs map[string]string) Event {
	if attrs == nil {
		attrs = map[string]string{}
	}
	return Event{
		ID:         uuid.New(),
		Kind:       kind,
		Initiator:  initiator,
		Attributes: attrs,
		CreatedAt:  at.UTC(),
	}
}
