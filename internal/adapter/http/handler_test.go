package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"mesa-vesting/internal/adapter/memory"
	"mesa-vesting/internal/adapter/usecase"
	"mesa-vesting/internal/core/domain"
	"mesa-vesting/internal/core/port"
)

var (
	owner    = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	operator = common.HexToAddress("0x00000000000000000000000000000000000000a2")
	stranger = common.HexToAddress("0x00000000000000000000000000000000000000a3")
	alice    = common.HexToAddress("0x00000000000000000000000000000000000000b1")
	bob      = common.HexToAddress("0x00000000000000000000000000000000000000b2")
	asset    = common.HexToAddress("0x00000000000000000000000000000000000000c1")
	holder   = common.HexToAddress("0x00000000000000000000000000000000000000e1")

	t0    = time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	start = t0.Add(time.Hour)
	end   = start.Add(1000 * time.Second)
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type testServer struct {
	srv    *httptest.Server
	clock  *fakeClock
	ledger *memory.Ledger
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{clock: &fakeClock{now: t0}, ledger: memory.NewLedger(holder)}
	engine := usecase.NewEngine(memory.NewStore(), ts.ledger, holder,
		usecase.WithClock(ts.clock),
		usecase.WithLogger(discardLogger()),
	)
	ctx := context.Background()
	require.NoError(t, engine.Bootstrap(ctx, owner))
	require.NoError(t, engine.SetAuthorized(ctx, owner, operator, true))
	require.NoError(t, ts.ledger.Mint(asset, holder, domain.Amount(10_000)))

	ts.srv = httptest.NewServer(NewHandler(engine, discardLogger()).Router())
	t.Cleanup(ts.srv.Close)
	return ts
}

// do sends body as JSON with the caller header set when who is non-zero and
// decodes the response into out when out is non-nil.
func (ts *testServer) do(t *testing.T, method, path string, who common.Address, body, out any) int {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, ts.srv.URL+"/api/v1"+path, rd)
	require.NoError(t, err)
	if who != (common.Address{}) {
		req.Header.Set(CallerHeader, who.Hex())
	}
	resp, err := ts.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func campaignBody() map[string]any {
	return map[string]any{
		"name":         "seed round",
		"asset":        asset.Hex(),
		"total_reward": "10000",
		"start_time":   start.Format(time.RFC3339),
		"end_time":     end.Format(time.RFC3339),
		"distributions": []map[string]any{
			{"kind": "lump_sum", "basis_points": 3000, "start_time": start.Format(time.RFC3339)},
			{"kind": "linear_vesting", "basis_points": 7000, "start_time": start.Format(time.RFC3339), "end_time": end.Format(time.RFC3339)},
		},
	}
}

func (ts *testServer) openCampaign(t *testing.T) {
	t.Helper()
	var c campaignResponse
	require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/campaign", operator, campaignBody(), &c))
	require.Equal(t, "10000", c.TotalReward)
	require.Len(t, c.Distributions, 2)

	alloc := map[string]any{"entries": []map[string]any{
		{"recipient": alice.Hex(), "amount": "1000"},
		{"recipient": bob.Hex(), "amount": "2000"},
	}}
	require.Equal(t, http.StatusNoContent, ts.do(t, http.MethodPost, "/allocations", operator, alloc, nil))
}

func TestHandler_ClaimFlow(t *testing.T) {
	ts := newTestServer(t)
	ts.openCampaign(t)

	var c campaignResponse
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/campaign", common.Address{}, nil, &c))
	require.Equal(t, "3000", c.TotalAllocated)
	require.Nil(t, c.ClosedAt)

	ts.clock.Set(start.Add(500 * time.Second))

	var pos positionResponse
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/allocations/"+alice.Hex(), common.Address{}, nil, &pos))
	require.Equal(t, "1000", pos.Allocation)
	require.Equal(t, "650", pos.TotalClaimable)
	if diff := cmp.Diff([]string{"300", "350"}, pos.Claimable); diff != "" {
		t.Fatalf("claimable mismatch (-want +got):\n%s", diff)
	}

	var s settlementResponse
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/claims", alice, claimRequest{Recipient: alice}, &s))
	require.Equal(t, alice, s.Recipient)
	require.Equal(t, "650", s.Amount)
	if diff := cmp.Diff([]string{"300", "350"}, s.PerSlot); diff != "" {
		t.Fatalf("per slot mismatch (-want +got):\n%s", diff)
	}

	balance, err := ts.ledger.BalanceOf(context.Background(), asset, alice)
	require.NoError(t, err)
	require.Equal(t, "650", balance.Dec())
}

func TestHandler_ClaimBatch(t *testing.T) {
	ts := newTestServer(t)
	ts.openCampaign(t)
	ts.clock.Set(end)

	var first settlementResponse
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/claims", alice, claimRequest{Recipient: alice}, &first))
	require.Equal(t, "1000", first.Amount)

	req := batchClaimRequest{Recipients: []common.Address{alice, bob}, Amounts: []string{"", "500"}, Memo: "march"}
	var res batchResponse
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/claims/batch", operator, req, &res))
	require.Equal(t, 1, res.Processed)
	require.Equal(t, 1, res.Skipped)
	require.Equal(t, "500", res.Total)
	require.Equal(t, []common.Address{alice}, res.SkippedRecipients)
	require.Len(t, res.Settlements, 1)
	require.Equal(t, bob, res.Settlements[0].Recipient)
}

func TestHandler_Errors(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		who    common.Address
		body   any
		status int
		code   domain.Code
	}{
		{"campaign absent", http.MethodGet, "/campaign", common.Address{}, nil, http.StatusNotFound, domain.CodeCampaignNotFound},
		{"missing caller", http.MethodPost, "/campaign", common.Address{}, campaignBody(), http.StatusBadRequest, codeBadRequest},
		{"unauthorized", http.MethodPost, "/campaign", stranger, campaignBody(), http.StatusForbidden, domain.CodeUnauthorized},
		{"pause", http.MethodPost, "/pause", owner, nil, http.StatusNoContent, ""},
		{"already paused", http.MethodPost, "/pause", owner, nil, http.StatusConflict, domain.CodePaused},
		{"bad address", http.MethodGet, "/allocations/0x123", common.Address{}, nil, http.StatusBadRequest, codeBadRequest},
		{"bad amount", http.MethodPost, "/claims", alice, map[string]any{"recipient": alice.Hex(), "amount": "1.5"}, http.StatusBadRequest, domain.CodeInvalidAmount},
		{"extra field", http.MethodPost, "/sweep", owner, map[string]any{"asset": asset.Hex(), "extra": 1}, http.StatusBadRequest, codeBadRequest},
		{"nothing to sweep", http.MethodPost, "/sweep", owner, sweepRequest{Asset: common.HexToAddress("0x00000000000000000000000000000000000000c2")}, http.StatusUnprocessableEntity, domain.CodeNothingToSweep},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out errorResponse
			var dst any = &out
			if tt.code == "" {
				dst = nil
			}
			require.Equal(t, tt.status, ts.do(t, tt.method, tt.path, tt.who, tt.body, dst))
			require.Equal(t, tt.code, out.Code)
		})
	}
}

func TestHandler_AmountExceedsClaimable(t *testing.T) {
	ts := newTestServer(t)
	ts.openCampaign(t)

	var out errorResponse
	require.Equal(t, http.StatusConflict, ts.do(t, http.MethodPost, "/claims", alice, claimRequest{Recipient: alice}, &out))
	require.Equal(t, domain.CodeCampaignNotStarted, out.Code)

	ts.clock.Set(start)
	require.Equal(t, http.StatusUnprocessableEntity, ts.do(t, http.MethodPost, "/claims", alice, claimRequest{Recipient: alice, Amount: "301"}, &out))
	require.Equal(t, domain.CodeAmountExceedsClaimable, out.Code)
	require.Equal(t, "301", out.Metadata["actual"])
	require.Equal(t, "300", out.Metadata["expected"])
}

func TestHandler_Administration(t *testing.T) {
	ts := newTestServer(t)

	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPut, "/blacklist/"+bob.Hex(), owner, blacklistRequest{Blacklisted: true}, nil))
	var bl blacklistResponse
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/blacklist/"+bob.Hex(), common.Address{}, nil, &bl))
	require.True(t, bl.Blacklisted)

	require.Equal(t, http.StatusNoContent, ts.do(t, http.MethodPut, "/authorized/"+alice.Hex(), owner, authorizedRequest{Authorized: true}, nil))
	var wallets authorizedResponse
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/authorized", common.Address{}, nil, &wallets))
	require.ElementsMatch(t, []common.Address{operator, alice}, wallets.Wallets)

	require.Equal(t, http.StatusAccepted, ts.do(t, http.MethodPost, "/ownership/transfer", owner, transferOwnershipRequest{NewOwner: alice}, nil))
	var status statusResponse
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/status", common.Address{}, nil, &status))
	require.Equal(t, owner, status.Owner)
	require.NotNil(t, status.PendingOwner)
	require.Equal(t, alice, *status.PendingOwner)

	var out errorResponse
	require.Equal(t, http.StatusForbidden, ts.do(t, http.MethodPost, "/ownership/accept", stranger, nil, &out))
	require.Equal(t, domain.CodeUnauthorized, out.Code)
	require.Equal(t, http.StatusNoContent, ts.do(t, http.MethodPost, "/ownership/accept", alice, nil, nil))

	status = statusResponse{}
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/status", common.Address{}, nil, &status))
	require.Equal(t, alice, status.Owner)
	require.Nil(t, status.PendingOwner)
}

func TestHandler_Investors(t *testing.T) {
	ts := newTestServer(t)

	var empty investorsResponse
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/investors", common.Address{}, nil, &empty))
	require.NotNil(t, empty.Investors)
	require.Zero(t, empty.Total)

	ts.openCampaign(t)
	var page investorsResponse
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/investors?offset=1&limit=10", common.Address{}, nil, &page))
	require.Equal(t, 2, page.Total)
	require.Equal(t, []common.Address{bob}, page.Investors)

	var out errorResponse
	require.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodGet, "/investors?limit=ten", common.Address{}, nil, &out))
	require.Equal(t, codeBadRequest, out.Code)
}

// brokenEngine fails every status read with an infrastructure error.
type brokenEngine struct {
	port.Engine
}

func (brokenEngine) Status(context.Context) (domain.Settings, error) {
	return domain.Settings{}, errors.New("connection reset")
}

func TestHandler_InternalErrorHidden(t *testing.T) {
	srv := httptest.NewServer(NewHandler(brokenEngine{}, discardLogger()).Router())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + "/api/v1/status")
	require.NoError(t, err)
	defer resp.Body.Close()

	var out errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.Equal(t, domain.CodeUnknown, out.Code)
	require.Equal(t, "internal error", out.Message)
}

func TestStatusFor(t *testing.T) {
	tests := map[domain.Code]int{
		domain.CodeZeroAmount:          http.StatusBadRequest,
		domain.CodeBlacklisted:         http.StatusForbidden,
		domain.CodeCampaignClosed:      http.StatusConflict,
		domain.CodeReentrantCall:       http.StatusConflict,
		domain.CodeInsufficientBalance: http.StatusUnprocessableEntity,
		domain.CodeCampaignNotFound:    http.StatusNotFound,
		domain.CodeLedgerFailure:       http.StatusBadGateway,
		domain.CodeUnknown:             http.StatusInternalServerError,
		codeBadRequest:                 http.StatusBadRequest,
	}
	for code, want := range tests {
		require.Equal(t, want, statusFor(code), string(code))
	}
}

func TestHandler_CreateCampaign_CliffOutOfRange(t *testing.T) {
	ts := newTestServer(t)

	for name, cliff := range map[string]int64{
		"wraps duration": 18446744074,
		"negative":       -1,
	} {
		t.Run(name, func(t *testing.T) {
			body := campaignBody()
			body["distributions"] = []map[string]any{
				{"kind": "lump_sum", "basis_points": 3000, "start_time": start.Format(time.RFC3339)},
				{
					"kind":          "linear_vesting",
					"basis_points":  7000,
					"start_time":    start.Format(time.RFC3339),
					"end_time":      end.Format(time.RFC3339),
					"cliff_seconds": cliff,
				},
			}

			var out errorResponse
			require.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodPost, "/campaign", operator, body, &out))
			require.Equal(t, domain.CodeInvalidDistribution, out.Code)
			require.Equal(t, "1", out.Metadata["slot"])
		})
	}

	var out errorResponse
	require.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/campaign", common.Address{}, nil, &out))
}

func TestCreateCampaignRequest_CliffBoundary(t *testing.T) {
	req := createCampaignRequest{
		Asset:       asset,
		TotalReward: "100",
		Distributions: []distributionDTO{
			{Kind: "linear_vesting", BasisPoints: 10000, StartTime: start, CliffSeconds: maxCliffSeconds},
		},
	}
	p, err := req.params()
	require.NoError(t, err)
	require.Equal(t, time.Duration(maxCliffSeconds)*time.Second, p.Distributions[0].Cliff)

	req.Distributions[0].CliffSeconds = maxCliffSeconds + 1
	_, err = req.params()
	require.Equal(t, domain.CodeInvalidDistribution, domain.GetCode(err))
}
