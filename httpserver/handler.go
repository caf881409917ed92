package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/venuelabs/chain-ticketing/coordinator"
	"github.com/venuelabs/chain-ticketing/interfaces"
)

// Handler serves the reconciliation admin API. Each reconcile request runs
// the event, tier and archival coordinators in sequence for one catalog
// event.
type Handler struct {
	events   *coordinator.EventRegistrar
	tiers    *coordinator.TierRegistrar
	archival *coordinator.ArchivalMinter
	status   *coordinator.StatusReader

	custodial common.Address
	log       *slog.Logger
}

// NewHandler creates the admin API handler. custodial is the address archival
// records are minted to.
func NewHandler(events *coordinator.EventRegistrar, tiers *coordinator.TierRegistrar, archival *coordinator.ArchivalMinter, status *coordinator.StatusReader, custodial common.Address, log *slog.Logger) *Handler {
	return &Handler{
		events:    events,
		tiers:     tiers,
		archival:  archival,
		status:    status,
		custodial: custodial,
		log:       log,
	}
}

// reconcileResponse reports each stage of a reconcile run. Stages after a
// failed one are skipped and omitted from the response.
type reconcileResponse struct {
	CatalogEventID string          `json:"catalog_event_id"`
	Event          *eventStage     `json:"event,omitempty"`
	Tiers          []tierStage     `json:"tiers,omitempty"`
	Archival       *archivalStage  `json:"archival,omitempty"`
	Error          string          `json:"error,omitempty"`
	FailedStage    string          `json:"failed_stage,omitempty"`
}

type eventStage struct {
	OnChainEventID    uint64 `json:"onchain_event_id"`
	TxRef             string `json:"tx_ref"`
	AlreadyRegistered bool   `json:"already_registered"`
}

type tierStage struct {
	TierID           string `json:"tier_id"`
	TierName         string `json:"tier_name"`
	Success          bool   `json:"success"`
	OnChainTierIndex uint32 `json:"onchain_tier_index,omitempty"`
	TxRef            string `json:"tx_ref,omitempty"`
	Error            string `json:"error,omitempty"`
}

type archivalStage struct {
	RecordID      string `json:"record_id"`
	TokenID       string `json:"token_id"`
	TxRef         string `json:"tx_ref"`
	AlreadyMinted bool   `json:"already_minted"`
}

// HandleReconcile runs the full reconciliation pipeline for one event.
//
// URL format: POST /api/admin/reconcile/{event_id}
//
// The response carries per-stage results. A stage failure stops the pipeline
// and is reported with 502 for ledger problems, 404 for an unknown event.
// Individual tier failures do not stop the pipeline: the archival stage
// proceeds as long as at least one tier registered.
func (h *Handler) HandleReconcile(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "event_id")
	if _, err := uuid.Parse(eventID); err != nil {
		http.Error(w, "Invalid event id format", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	resp := reconcileResponse{CatalogEventID: eventID}

	eventRes, err := h.events.RegisterEvent(ctx, eventID)
	if err != nil {
		h.log.Error("Event registration stage failed", slog.String("catalogEventID", eventID), "err", err)
		resp.Error = err.Error()
		resp.FailedStage = "event"
		writeJSON(w, statusForError(err), resp)
		return
	}
	resp.Event = &eventStage{
		OnChainEventID:    eventRes.OnChainEventID,
		TxRef:             eventRes.TxRef,
		AlreadyRegistered: eventRes.AlreadyRegistered,
	}

	tierResults, err := h.tiers.RegisterTiers(ctx, eventID)
	if err != nil {
		h.log.Error("Tier registration stage failed", slog.String("catalogEventID", eventID), "err", err)
		resp.Error = err.Error()
		resp.FailedStage = "tiers"
		writeJSON(w, statusForError(err), resp)
		return
	}
	anyTier := false
	for _, res := range tierResults {
		stage := tierStage{
			TierID:   res.TierID,
			TierName: res.TierName,
			Success:  res.Success,
		}
		if res.Success {
			anyTier = true
			stage.OnChainTierIndex = res.OnChainTierIndex
			stage.TxRef = res.TxRef
		} else {
			stage.Error = res.Err.Error()
		}
		resp.Tiers = append(resp.Tiers, stage)
	}

	if !anyTier {
		resp.Error = "no tier registered successfully"
		resp.FailedStage = "tiers"
		writeJSON(w, http.StatusBadGateway, resp)
		return
	}

	archRes, err := h.archival.MintArchivalRecord(ctx, eventID, eventRes.OnChainEventID, h.custodial)
	if err != nil {
		h.log.Error("Archival mint stage failed", slog.String("catalogEventID", eventID), "err", err)
		resp.Error = err.Error()
		resp.FailedStage = "archival"
		writeJSON(w, statusForError(err), resp)
		return
	}
	resp.Archival = &archivalStage{
		RecordID:      archRes.RecordID,
		TokenID:       archRes.TokenID,
		TxRef:         archRes.TxRef,
		AlreadyMinted: archRes.AlreadyMinted,
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleReveal reveals an archival record.
//
// URL format: POST /api/admin/archival/{record_id}/reveal
func (h *Handler) HandleReveal(w http.ResponseWriter, r *http.Request) {
	recordID := chi.URLParam(r, "record_id")
	if _, err := uuid.Parse(recordID); err != nil {
		http.Error(w, "Invalid record id format", http.StatusBadRequest)
		return
	}

	changed, err := h.archival.Reveal(r.Context(), recordID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			http.Error(w, "Archival record not found", http.StatusNotFound)
			return
		}
		h.log.Error("Reveal failed", slog.String("recordID", recordID), "err", err)
		http.Error(w, "Reveal failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"revealed": changed})
}

// registrationStatusResponse is the public view of the registry mirror.
type registrationStatusResponse struct {
	CatalogEventID string             `json:"catalog_event_id"`
	Registered     bool               `json:"registered"`
	Event          *eventStatusView   `json:"event,omitempty"`
	Tiers          []tierStatusView   `json:"tiers"`
	Archival       *archivalStatusView `json:"archival,omitempty"`
}

type eventStatusView struct {
	OnChainEventID  uint64 `json:"onchain_event_id"`
	ContractAddress string `json:"contract_address"`
	ChainID         int64  `json:"chain_id"`
	TxRef           string `json:"tx_ref"`
}

type tierStatusView struct {
	CatalogTierID    string `json:"catalog_tier_id"`
	OnChainTierIndex uint32 `json:"onchain_tier_index"`
	TxRef            string `json:"tx_ref"`
}

type archivalStatusView struct {
	RecordID    string `json:"record_id"`
	TokenID     string `json:"token_id"`
	SlotLabel   string `json:"slot_label"`
	MetadataURI string `json:"metadata_uri,omitempty"`
	Revealed    bool   `json:"revealed"`
}

// HandleRegistrationStatus returns the registry mirror for one event.
//
// URL format: GET /api/public/registration/{event_id}
func (h *Handler) HandleRegistrationStatus(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "event_id")
	if _, err := uuid.Parse(eventID); err != nil {
		http.Error(w, "Invalid event id format", http.StatusBadRequest)
		return
	}

	status, err := h.status.Fetch(r.Context(), eventID)
	if err != nil {
		h.log.Error("Status fetch failed", slog.String("catalogEventID", eventID), "err", err)
		http.Error(w, "Status fetch failed", http.StatusInternalServerError)
		return
	}

	resp := registrationStatusResponse{
		CatalogEventID: eventID,
		Registered:     status.Event != nil,
		Tiers:          []tierStatusView{},
	}
	if status.Event != nil {
		resp.Event = &eventStatusView{
			OnChainEventID:  status.Event.OnChainEventID,
			ContractAddress: status.Event.ContractAddress,
			ChainID:         status.Event.ChainID,
			TxRef:           status.Event.TxRef,
		}
	}
	for _, tier := range status.Tiers {
		resp.Tiers = append(resp.Tiers, tierStatusView{
			CatalogTierID:    tier.CatalogTierID,
			OnChainTierIndex: tier.OnChainTierIndex,
			TxRef:            tier.TxRef,
		})
	}
	if status.Archival != nil {
		resp.Archival = &archivalStatusView{
			RecordID:    status.Archival.ID,
			TokenID:     status.Archival.TokenID,
			SlotLabel:   status.Archival.SlotLabel,
			MetadataURI: status.Archival.MetadataURI,
			Revealed:    status.Archival.Revealed,
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// statusForError maps coordinator errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, interfaces.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, interfaces.ErrEventNotRegistered),
		errors.Is(err, interfaces.ErrNoTiersRegistered):
		return http.StatusConflict
	case errors.Is(err, interfaces.ErrConfirmationTimedOut):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
