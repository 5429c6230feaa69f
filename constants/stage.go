package constants

// ScanStage is the canonical per-invocation state of the scan pipeline.
type ScanStage string

// Stable values (these exact strings appear in logs).
const (
	StageStart        ScanStage = "START"
	StageLoaded       ScanStage = "LOADED"       // source image read from disk
	StagePreprocessed ScanStage = "PREPROCESSED" // normalized bitmap ready
	StageRecognized   ScanStage = "RECOGNIZED"   // raw text obtained
	StageExtracted    ScanStage = "EXTRACTED"    // fields parsed
	StageCategorized  ScanStage = "CATEGORIZED"  // deduction bucket assigned
	StageScored       ScanStage = "SCORED"       // confidence computed
	StageDone         ScanStage = "DONE"         // result assembled
	StageFailed       ScanStage = "FAILED"       // terminal failure
)
