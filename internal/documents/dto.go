package documents

import "time"

// DocumentResponse is the outward-facing representation of a document.
type DocumentResponse struct {
	DocumentID       string    `json:"documentId"`
	Title            string    `json:"title"`
	FileName         string    `json:"fileName"`
	OriginalFilename string    `json:"originalFilename"`
	FileType         string    `json:"fileType"`
	MimeType         string    `json:"mimeType"`
	SizeBytes        int64     `json:"sizeBytes"`
	WordCount        int       `json:"wordCount"`
	Status           string    `json:"status"`
	UploadedAt       time.Time `json:"uploadedAt"`
}

func toResponse(doc Document) DocumentResponse {
	return DocumentResponse{
		DocumentID:       doc.ID,
		Title:            doc.Title,
		FileName:         doc.FileName,
		OriginalFilename: doc.OriginalFilename,
		FileType:         doc.FileType,
		MimeType:         doc.MimeType,
		SizeBytes:        doc.SizeBytes,
		WordCount:        doc.WordCount,
		Status:           string(doc.Status),
		UploadedAt:       doc.UploadedAt,
	}
}
