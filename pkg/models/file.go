package models

import "time"

// FileInfo describes one entry in the file share listing.
type FileInfo struct {
	FileName     string    `json:"fileName"`
	FileSize     int64     `json:"fileSize"`
	LastModified time.Time `json:"LastModified"`
}

// FileUpload is the wire format for uploads: the raw bytes travel
// base64-encoded in FileContent.
type FileUpload struct {
	FileName    string `json:"FileName"`
	FileContent string `json:"FileContent"`
}
