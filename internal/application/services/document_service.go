package services

import (
	"context"
	"log"
	"os"
)

// DocumentService is the local implementation of the document stamping
// collaborator. The actual PDF stamping pipeline lives in a separate
// system; this implementation verifies the document exists and records
// the stamp request so transitions never depend on the pipeline being up.
type DocumentService struct{}

// NewDocumentService creates a new DocumentService
func NewDocumentService() *DocumentService {
	return &DocumentService{}
}

// StampStepArtifact reads the ticket document and logs the stamp
// request. Errors here are logged by the engine, never propagated into a
// committed transition.
func (s *DocumentService) StampStepArtifact(ctx context.Context, documentPath, stepID, ticketID string, signerID *string) ([]byte, error) {
	data, err := os.ReadFile(documentPath)
	if err != nil {
		return nil, err
	}

	signer := ""
	if signerID != nil {
		signer = *signerID
	}
	log.Printf("📝 Stamp request: ticket=%s step=%s signer=%s doc=%s (%d bytes)", ticketID, stepID, signer, documentPath, len(data))
	return data, nil
}
