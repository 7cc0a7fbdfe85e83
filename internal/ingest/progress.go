package ingest

// Stage is the scan-job status machine, persisted for frontend
// polling and reported through progress events.
type Stage string

const (
	StageUploaded       Stage = "UPLOADED"
	StageScanning       Stage = "SCANNING"
	StageSavingSections Stage = "SAVING_SECTIONS"
	StageSavingDishes   Stage = "SAVING_DISHES"
	StageTagging        Stage = "TAGGING"
	StageReady          Stage = "READY"
	StageFailed         Stage = "FAILED"
)

// Progress is a tagged progress event. It is emitted synchronously
// BEFORE each network call so a concurrent status poll reflects the
// step about to run, not the one just finished.
type Progress struct {
	Stage Stage `json:"stage"`

	// Phase names the failing step when Stage is FAILED.
	Phase Stage `json:"phase,omitempty"`

	Sections int `json:"sections,omitempty"` // sections inserted
	Done     int `json:"done,omitempty"`     // dishes persisted or tagged
	Total    int `json:"total,omitempty"`    // dish total, once known

	Message string `json:"message,omitempty"` // failure detail
}

type ProgressFunc func(Progress)
