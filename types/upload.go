package types

type UploadStatus string

const (
	UploadStatusUploaded  UploadStatus = "Uploaded"
	UploadStatusPreviewed UploadStatus = "Previewed"
)

// UploadMeta describes one accepted document upload. Only metadata is kept;
// file contents are discarded after validation and mock extraction.
type UploadMeta struct {
	ID       string       `json:"id"`
	Filename string       `json:"filename"`
	Size     int64        `json:"size"`
	MimeType string       `json:"mimeType"`
	Status   UploadStatus `json:"status"`
}
