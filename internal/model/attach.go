// Package model contains the request/response shapes and domain values passed
// between the HTTP layer, the attach service and its collaborators.
package model

import "time"

// AttachRequest is the body of POST /attach sent by the browser extension.
type AttachRequest struct {
	FilePath string `json:"filePath"`
}

// AttachResult is the only observable output of a request. It is returned to
// the caller and written to the log sink.
type AttachResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ClassificationTag identifies the kind of business document a file holds.
// It is derived from the filename on every request and never stored.
type ClassificationTag string

const (
	TagInvoice           ClassificationTag = "invoice"
	TagPurchaseOrder     ClassificationTag = "purchase_order"
	TagOrderConfirmation ClassificationTag = "order_confirmation"
)

// BaseName returns the human-friendly filename prefix used for the tag.
func (t ClassificationTag) BaseName() string {
	switch t {
	case TagInvoice:
		return "Faktura"
	case TagPurchaseOrder:
		return "Order"
	default:
		return "Orderbekräftelse"
	}
}

// UniqueCopy describes the copy the naming engine wrote for one request.
type UniqueCopy struct {
	SourcePath      string
	DestinationPath string
	Tag             ClassificationTag
	Timestamp       time.Time
	// Micros is the zero-padded microsecond suffix embedded in the filename.
	Micros string
}

// AttachOutcome is what the attach service hands back to the HTTP layer.
type AttachOutcome struct {
	Copy   UniqueCopy
	Result AttachResult
}
