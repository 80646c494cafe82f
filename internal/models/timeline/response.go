package models

import (
	listingmodels "io.winapps.thankasoldier/internal/models/listing"
	"io.winapps.thankasoldier/internal/views"
)

// TimelineResponse carries the events plus the memorial cards shown beside
// them. Meta counts events.
type TimelineResponse struct {
	Data      []views.TimelineItem `json:"data"`
	Memorials []views.MemorialCard `json:"memorials"`
	Meta      listingmodels.Meta   `json:"meta"`
}
