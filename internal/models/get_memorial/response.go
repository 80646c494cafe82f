package models

import "io.winapps.thankasoldier/internal/views"

type GetMemorialResponse struct {
	Data views.MemorialDetail `json:"data"`
}
