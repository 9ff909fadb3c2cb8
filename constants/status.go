package constants

// DocumentKind is the outcome of document classification.
type DocumentKind string

const (
	DocumentTextLayer    DocumentKind = "TEXT_LAYER"
	DocumentScannedImage DocumentKind = "SCANNED_IMAGE"
)

// Method names the extraction strategy that produced a result.
type Method string

const (
	MethodTextLayer Method = "text-layer"
	MethodOCR       Method = "ocr"
	MethodCache     Method = "cache"
)

// State is a step of the extraction state machine (used in logs).
type State string

const (
	StateCacheLookup   State = "CACHE_LOOKUP"
	StateClassify      State = "CLASSIFY"
	StateExtract       State = "EXTRACT"
	StateQualityCheck  State = "QUALITY_CHECK"
	StateFallbackToOCR State = "FALLBACK_TO_OCR"
	StateFinalize      State = "FINALIZE"
	StateDone          State = "DONE"
)
