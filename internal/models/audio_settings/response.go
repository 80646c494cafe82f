package models

type AudioSettingsResponse struct {
	Muted  bool `json:"muted"`
	Volume int  `json:"volume"`
}

type AudioSourceResponse struct {
	Source string `json:"source"`
}
