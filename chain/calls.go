package chain

import (
	"encoding/binary"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/venuelabs/chain-ticketing/interfaces"
)

// Ticketing contract functions the coordinators invoke.
const (
	MethodCreateEvent = "createEvent"
	MethodCreateTier  = "createTicketType"
	MethodMintTicket  = "mintTicket"
)

// ticketingABI is the subset of the ticketing contract interface this service
// calls. The contract itself is deployed and governed out-of-band.
const ticketingABI = `[
	{"type":"function","name":"createEvent","stateMutability":"nonpayable","inputs":[
		{"name":"eventId","type":"uint64"},
		{"name":"startTime","type":"uint64"},
		{"name":"endTime","type":"uint64"},
		{"name":"capacity","type":"uint64"}],"outputs":[]},
	{"type":"function","name":"createTicketType","stateMutability":"nonpayable","inputs":[
		{"name":"eventId","type":"uint64"},
		{"name":"name","type":"string"},
		{"name":"category","type":"uint8"},
		{"name":"capacity","type":"uint64"},
		{"name":"price","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"mintTicket","stateMutability":"nonpayable","inputs":[
		{"name":"eventId","type":"uint64"},
		{"name":"to","type":"address"},
		{"name":"seatLabel","type":"string"},
		{"name":"tokenId","type":"uint256"}],"outputs":[]}
]`

// CreateEventCall builds the "create event" ledger call.
func CreateEventCall(onChainEventID uint64, startUnix, endUnix int64, capacity uint64) interfaces.LedgerCall {
	return interfaces.LedgerCall{
		Method: MethodCreateEvent,
		Args:   []any{onChainEventID, uint64(startUnix), uint64(endUnix), capacity},
	}
}

// CreateTierCall builds the "create tier" ledger call.
func CreateTierCall(onChainEventID uint64, name string, category uint8, capacity uint64, priceMinorUnits int64) interfaces.LedgerCall {
	return interfaces.LedgerCall{
		Method: MethodCreateTier,
		Args:   []any{onChainEventID, name, category, capacity, big.NewInt(priceMinorUnits)},
	}
}

// MintTicketCall builds the archival "mint ticket" ledger call.
func MintTicketCall(onChainEventID uint64, to common.Address, slotLabel string, tokenID *big.Int) interfaces.LedgerCall {
	return interfaces.LedgerCall{
		Method: MethodMintTicket,
		Args:   []any{onChainEventID, to, slotLabel, tokenID},
	}
}

// DeriveOnChainEventID maps a catalog event id to its on-chain identifier.
// The mapping is a pure function of the catalog id so it can be re-derived at
// any time without a lookup table. The top bit is masked off so the value
// round-trips through a signed BIGINT column.
func DeriveOnChainEventID(catalogEventID string) uint64 {
	h := crypto.Keccak256([]byte(catalogEventID))
	return binary.BigEndian.Uint64(h[:8]) &^ (uint64(1) << 63)
}

// DeriveTokenID computes the deterministic token identifier for a slot of an
// on-chain event, matching the contract's own derivation.
func DeriveTokenID(onChainEventID uint64, slotLabel string) *big.Int {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], onChainEventID)
	h := crypto.Keccak256(buf[:], []byte(slotLabel))
	return new(big.Int).SetBytes(h)
}
