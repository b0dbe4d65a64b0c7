package model

// Modality is the classified kind of an outgoing turn. It selects the
// backend model and generation parameters.
type Modality string

const (
	ModalityText  Modality = "text"
	ModalityImage Modality = "image"
	ModalityVideo Modality = "video"
)
