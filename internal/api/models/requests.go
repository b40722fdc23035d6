package models

type RegisterTrainerRequest struct {
	Address string `json:"address" binding:"required"`
}

// SubmitUpdateRequest carries one trainer's delta. Update is the raw
// little-endian float32 buffer, base64-encoded in transit.
type SubmitUpdateRequest struct {
	Address string `json:"address" binding:"required"`
	Update  []byte `json:"update" binding:"required"`
}

type TrainerResponse struct {
	Address string  `json:"address"`
	Weight  float64 `json:"weight"`
}

type SubmitUpdateResponse struct {
	Outcome string  `json:"outcome"`
	Ratio   float64 `json:"ratio"`
}

type RoundStateResponse struct {
	Status        string  `json:"status"`
	PendingCount  int     `json:"pending_count"`
	TrainerCount  int     `json:"trainer_count"`
	Ratio         float64 `json:"ratio"`
	LatestVersion uint32  `json:"latest_version"`
}

type ModelResponse struct {
	Version uint32    `json:"version"`
	Size    uint32    `json:"size"`
	Weights []float32 `json:"weights"`
	Key     string    `json:"key"`
}

type CommitResponse struct {
	Version uint32 `json:"version"`
	Size    uint32 `json:"size"`
	Key     string `json:"key"`
}
