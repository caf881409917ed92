package metadata

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/venuelabs/chain-ticketing/interfaces"
)

// TokenDocument is the metadata document resolvable for a minted token.
type TokenDocument struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Attributes  []Attribute `json:"attributes"`
}

// Attribute is one trait of a token document.
type Attribute struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}

// BuildArchivalDocument renders the metadata document for an event's archival
// record. The output is deterministic for a given event and token so
// re-publishing yields the same content ID.
func BuildArchivalDocument(event *interfaces.CatalogEvent, tokenID string) ([]byte, error) {
	doc := TokenDocument{
		Name:        fmt.Sprintf("%s (Archival Record)", event.Title),
		Description: fmt.Sprintf("Permanently reserved archival admission record for %s.", event.Title),
		Attributes: []Attribute{
			{TraitType: "slot", Value: interfaces.ArchivalSlotLabel},
			{TraitType: "token_id", Value: tokenID},
			{TraitType: "event_start", Value: event.StartsAt.UTC().Format(time.RFC3339)},
			{TraitType: "venue", Value: event.VenueID},
		},
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal token document: %w", err)
	}
	return data, nil
}
