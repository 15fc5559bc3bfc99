package models

import (
	"time"

	"github.com/google/uuid"
)

// Document types accepted for professional verification.
const (
	DocKbis                 = "kbis"
	DocCarteIdentite        = "carte_identite"
	DocJustificatifDomicile = "justificatif_domicile"
	DocDiplome              = "diplome"
	DocPortfolio            = "portfolio"
	DocOther                = "other"
)

// Document review statuses.
const (
	DocumentPending  = "pending"
	DocumentApproved = "approved"
	DocumentRejected = "rejected"
)

// Document is an uploaded verification document. The blob itself lives in
// the storage layer; StorageRef is the opaque handle. Status is mutated
// only by admin review, and approval never flips the owner's verification
// status by itself.
type Document struct {
	ID           uuid.UUID  `json:"id"`
	OwnerID      uuid.UUID  `json:"owner_id"`
	DocType      string     `json:"doc_type"`
	FileName     string     `json:"file_name"`
	StorageRef   string     `json:"storage_ref"`
	Status       string     `json:"status"`
	AdminComment string     `json:"admin_comment,omitempty"`
	ReviewedBy   *uuid.UUID `json:"reviewed_by,omitempty"`
	ReviewedAt   *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ValidDocType reports whether t is one of the accepted document types.
func ValidDocType(t string) bool {
	switch t {
	case DocKbis, DocCarteIdentite, DocJustificatifDomicile, DocDiplome, DocPortfolio, DocOther:
		return true
	}
	return false
}
