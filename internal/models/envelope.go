package models

// Envelope is the response for one extraction request. Build it with
// NewSuccessEnvelope or NewFailureEnvelope; on failure only Success and Error
// are populated.
type Envelope struct {
	Success              bool      `json:"success"`
	Method               string    `json:"method,omitempty"`
	Title                string    `json:"title,omitempty"`
	Content              string    `json:"content,omitempty"`
	RawText              string    `json:"raw_text,omitempty"`
	Metadata             *Metadata `json:"metadata,omitempty"`
	ExtractionConfidence float64   `json:"extraction_confidence,omitempty"`
	PreviewImage         string    `json:"preview_image,omitempty"`
	Error                string    `json:"error,omitempty"`
}

// NewSuccessEnvelope wraps a result. preview may be empty.
func NewSuccessEnvelope(res *ExtractionResult, preview string) *Envelope {
	md := res.Metadata
	return &Envelope{
		Success:              true,
		Method:               res.Method,
		Title:                res.Title,
		Content:              res.Content,
		RawText:              res.RawText,
		Metadata:             &md,
		ExtractionConfidence: res.Confidence,
		PreviewImage:         preview,
	}
}

// NewFailureEnvelope returns an envelope carrying only an error message.
func NewFailureEnvelope(message string) *Envelope {
	if message == "" {
		message = "extraction failed"
	}
	return &Envelope{Success: false, Error: message}
}
