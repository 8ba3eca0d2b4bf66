package works

import (
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/maintledger/backend/internal/domain/shared"
)

const receiptPrefix = "receipts"

// ErrUnsupportedReceiptType is returned for receipt uploads that are neither an image nor a PDF
var ErrUnsupportedReceiptType = shared.NewDomainError("UNSUPPORTED_RECEIPT_TYPE", "Receipts must be a JPEG, PNG, WebP, HEIC image or a PDF")

// ErrReceiptNotUploaded is returned when an expense references a receipt that is not in storage
var ErrReceiptNotUploaded = shared.NewDomainError("RECEIPT_NOT_UPLOADED", "The receipt was not uploaded")

var receiptExtensions = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"image/heic":      ".heic",
	"application/pdf": ".pdf",
}

// NewReceiptKey returns a fresh object key for a receipt of the task
func NewReceiptKey(taskID uuid.UUID, contentType string) (string, error) {
	ext, ok := receiptExtensions[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return "", ErrUnsupportedReceiptType.WithMessage(fmt.Sprintf("Unsupported receipt content type %q", contentType))
	}
	return path.Join(receiptPrefix, taskID.String(), uuid.New().String()+ext), nil
}

// IsReceiptKeyOf reports whether key was issued for the task
func IsReceiptKeyOf(key string, taskID uuid.UUID) bool {
	return strings.HasPrefix(key, receiptPrefix+"/"+taskID.String()+"/")
}
