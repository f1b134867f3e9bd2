package models

import "time"

// Artifact is a saved file produced by a page (note, transcript, audio upload).
type Artifact struct {
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
	Content  string    `json:"content,omitempty"`
}
