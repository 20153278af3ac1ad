package types

type Transcript struct {
	Segments []Segment `json:"segments"`
}

// Segment is one timed unit of transcribed speech. Times are seconds from
// the start of the source media.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Highlight is a selected interval of the source media.
type Highlight struct {
	StartTime float64
	EndTime   float64
	Reason    string
}

type ClipRecord struct {
	Index          int
	OutputPath     string
	MetadataPath   string
	SubtitlesPath  string
	TimestampRange string
	Reason         string
}

// ClipMetadata is the JSON sidecar written next to every clip.
type ClipMetadata struct {
	Timestamp string `json:"timestamp"`
	Reason    string `json:"reason"`
}
