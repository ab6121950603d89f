package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"inbound/internal/model"
	"inbound/internal/repository"
	"inbound/internal/security"
	"inbound/internal/validation"

	"github.com/useinsider/go-pkg/inslogger"
)

var ErrInvalidJSON = errors.New("Invalid JSON")

// IngestService turns a signed raw webhook body into a stored message.
type IngestService interface {
	Ingest(ctx context.Context, body []byte, signature string) (repository.InsertResult, error)
}

type ingestService struct {
	store     repository.MessageStore
	verifier  security.SignatureVerifier
	validator *validation.Validator
	logger    inslogger.Interface
	now       func() time.Time
}

func NewIngestService(
	store repository.MessageStore,
	verifier security.SignatureVerifier,
	validator *validation.Validator,
	logger inslogger.Interface,
) IngestService {
	return &ingestService{
		store:     store,
		verifier:  verifier,
		validator: validator,
		logger:    logger,
		now:       time.Now,
	}
}

// Ingest verifies the signature over the exact bytes received, then decodes
// and validates the payload before the idempotent insert. A duplicate
// message_id is reported as repository.AlreadyExisted with a nil error.
func (s *ingestService) Ingest(ctx context.Context, body []byte, signature string) (repository.InsertResult, error) {
	if err := s.verifier.Verify(body, signature); err != nil {
		return repository.Inserted, err
	}

	req, err := decodeRequest(body)
	if err != nil {
		s.logger.Warnf("Invalid JSON in webhook request: %v", err)
		return repository.Inserted, ErrInvalidJSON
	}

	if err := s.validator.Struct(req); err != nil {
		s.logger.Warnf("Validation error in webhook request: %v", err)
		return repository.Inserted, err
	}

	ts, err := validation.ParseTimestamp(req.Ts)
	if err != nil {
		return repository.Inserted, &validation.Error{Fields: []validation.FieldError{{Field: "ts", Message: err.Error()}}}
	}

	msg := model.Message{
		MessageID: req.MessageID,
		Sender:    req.From,
		Recipient: req.To,
		Ts:        ts.UTC(),
		Text:      req.Text,
		CreatedAt: s.now().UTC(),
	}

	result, err := s.store.InsertIfAbsent(ctx, msg)
	if err != nil {
		return repository.Inserted, fmt.Errorf("store message %s: %w", msg.MessageID, err)
	}

	if result == repository.AlreadyExisted {
		s.logger.Logf("Duplicate message received, message_id=%s", msg.MessageID)
	} else {
		s.logger.Logf("Message ingested successfully, message_id=%s sender=%s", msg.MessageID, msg.Sender)
	}
	return result, nil
}

var requestFields = []string{"message_id", "from", "to", "ts", "text"}

// decodeRequest keeps only exactly named fields. encoding/json would
// otherwise fill "from" from a "FROM" key.
func decodeRequest(body []byte) (model.WebhookMessageRequest, error) {
	var req model.WebhookMessageRequest

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return req, err
	}

	exact := make(map[string]json.RawMessage, len(requestFields))
	for _, name := range requestFields {
		if v, ok := raw[name]; ok {
			exact[name] = v
		}
	}

	filtered, err := json.Marshal(exact)
	if err != nil {
		return req, err
	}
	err = json.Unmarshal(filtered, &req)
	return req, err
}
