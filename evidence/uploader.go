package evidence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrNoTarget indicates an upload with neither a report nor a finding id.
	ErrNoTarget = errors.New("evidence upload requires a report or finding id")

	errMissingMediaBaseURL = errors.New("evidence context requires a media base URL")
)

const attachEvidenceMutation = `
mutation AttachEvidence($file: String!, $filename: String!, $friendly_name: String!, $caption: String!, $description: String!, $finding: bigint, $report: bigint) {
  evidenceUpload(file: $file, filename: $filename, friendlyName: $friendly_name, caption: $caption, description: $description, findingId: $finding, reportId: $report) {
    id
  }
}`

const evidenceByIDQuery = `
query EvidenceByID($id: bigint!) {
  evidence_by_pk(id: $id) {
    id
    document
    friendlyName
  }
}`

const uploadDescription = "Uploaded from the rich text editor"

// Upload is one file headed for the evidence API.
type Upload struct {
	Filename  string
	MediaType string
	Data      []byte
}

// Record is the stored evidence as consumed by this pipeline: the server id,
// the document path and the friendly name, plus the resolved public URL.
type Record struct {
	ID           int    `json:"id"`
	Document     string `json:"document"`
	FriendlyName string `json:"friendlyName"`
	URL          string `json:"url,omitempty"`
}

// Service is the two-step upload-and-resolve exchange against the evidence
// API, behind an interface so tests can substitute a mock.
type Service interface {
	UploadAndResolve(ctx context.Context, upload Upload) (Record, error)
}

// Uploader implements Service over a GraphQL transport. One upload is a
// sequential pipeline: encode the file as base64, create the evidence record
// against exactly one of the configured report/finding targets, fetch the
// stored record, and resolve its public URL. Best effort: any failure aborts
// the attempt with no retry and no partial effect.
type Uploader struct {
	transport Transport
	uploadCtx Context
	log       *zap.Logger
}

// NewUploader creates an evidence uploader.
func NewUploader(transport Transport, uploadCtx Context, log *zap.Logger) (*Uploader, error) {
	if transport == nil {
		return nil, errors.New("uploader requires a transport")
	}
	if err := uploadCtx.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Uploader{
		transport: transport,
		uploadCtx: uploadCtx,
		log:       log,
	}, nil
}

// UploadAndResolve runs one upload attempt.
func (u *Uploader) UploadAndResolve(ctx context.Context, upload Upload) (Record, error) {
	log := u.log.With(
		zap.String("attempt", uuid.NewString()),
		zap.String("filename", upload.Filename),
	)

	dataURL, err := EncodeDataURL(upload.Filename, upload.MediaType, upload.Data)
	if err != nil {
		log.Error("failed to encode file", zap.Error(err))
		return Record{}, fmt.Errorf("failed to encode file: %w", err)
	}
	payload, err := SplitDataURL(dataURL)
	if err != nil {
		log.Error("failed to extract base64 payload", zap.Error(err))
		return Record{}, fmt.Errorf("failed to extract base64 payload: %w", err)
	}

	targetKey, targetID, ok := u.uploadCtx.Target()
	if !ok {
		log.Error("no report or finding to attach evidence to")
		return Record{}, ErrNoTarget
	}

	variables := map[string]any{
		"file":          payload,
		"filename":      upload.Filename,
		"friendly_name": FriendlyName(upload.Filename),
		"caption":       fmt.Sprintf("Image: %s", upload.Filename),
		"description":   uploadDescription,
	}
	variables[targetKey] = targetID

	var created struct {
		Evidence struct {
			ID int `json:"id"`
		} `json:"evidenceUpload"`
	}
	if err := u.transport.Do(ctx, attachEvidenceMutation, variables, &created); err != nil {
		log.Error("evidence upload failed", zap.Error(err))
		return Record{}, fmt.Errorf("evidence upload failed: %w", err)
	}

	log = log.With(zap.Int("evidenceId", created.Evidence.ID))

	var fetched struct {
		Evidence *Record `json:"evidence_by_pk"`
	}
	if err := u.transport.Do(ctx, evidenceByIDQuery, map[string]any{"id": created.Evidence.ID}, &fetched); err != nil {
		log.Error("evidence lookup failed", zap.Error(err))
		return Record{}, fmt.Errorf("evidence lookup failed: %w", err)
	}
	if fetched.Evidence == nil {
		log.Error("evidence record not found after upload")
		return Record{}, fmt.Errorf("evidence record %d not found", created.Evidence.ID)
	}

	record := *fetched.Evidence
	record.URL = u.uploadCtx.MediaURL(record.Document)

	log.Info("evidence stored", zap.String("url", record.URL))
	return record, nil
}
