package models

// UpdateAudioSettingsRequest changes only the fields that are present.
type UpdateAudioSettingsRequest struct {
	Muted  *bool `json:"muted"`
	Volume *int  `json:"volume"`
}
