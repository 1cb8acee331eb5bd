package domain

// Attachment is the opaque descriptor returned by the file storage
// provider. The lifecycle core never interprets file contents.
type Attachment struct {
	URL      string `json:"url"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimeType"`
}
