package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"visa-advisory-portal/config"
	"visa-advisory-portal/internal/apperror"
	"visa-advisory-portal/internal/checklist"
	"visa-advisory-portal/internal/model"
	"visa-advisory-portal/internal/model/requestresponse"
	"visa-advisory-portal/internal/ports"
	"visa-advisory-portal/internal/security"
	"visa-advisory-portal/internal/util"
	"visa-advisory-portal/internal/validate"
)

type DocumentService struct {
	documentRepository ports.DocumentRepository
	clientRepository   ports.ClientRepository
	cacheRepository    ports.CacheRepository
	categories         ports.CategoryService
	storageInterface   ports.ObjectStorage
	activities         ports.ActivityLogger
	metrics            *MetricsService
	ttl                time.Duration
}

func NewDocumentService(
	documentRepository ports.DocumentRepository,
	clientRepository ports.ClientRepository,
	cacheRepository ports.CacheRepository,
	categories ports.CategoryService,
	storageInterface ports.ObjectStorage,
	activities ports.ActivityLogger,
	metrics *MetricsService,
	ttl time.Duration,
) *DocumentService {
	return &DocumentService{
		documentRepository: documentRepository,
		clientRepository:   clientRepository,
		cacheRepository:    cacheRepository,
		categories:         categories,
		storageInterface:   storageInterface,
		activities:         activities,
		metrics:            metrics,
		ttl:                ttl,
	}
}

// Upload : validates, stores the object, inserts the row and recomputes the client's progress
func (s *DocumentService) Upload(ctx context.Context, request requestresponse.UploadDocumentRequest) (*model.Document, error) {
	document, err := s.upload(ctx, request)
	switch {
	case err == nil:
		s.metrics.ObserveUpload("committed")
	case errors.Is(err, apperror.ErrUnsupportedMedia), errors.Is(err, apperror.ErrPayloadTooLarge),
		errors.Is(err, apperror.ErrInvalidCategory), errors.Is(err, apperror.ErrConflict):
		s.metrics.ObserveUpload("rejected")
	default:
		s.metrics.ObserveUpload("failed")
	}
	return document, err
}

func (s *DocumentService) upload(ctx context.Context, request requestresponse.UploadDocumentRequest) (*model.Document, error) {
	if err := validate.MimeType(request.MimeType); err != nil {
		return nil, apperror.Wrap(apperror.ErrUnsupportedMedia, err, "")
	}
	size := int64(len(request.Content))
	if err := validate.Size(size); err != nil {
		return nil, apperror.Wrap(apperror.ErrPayloadTooLarge, err, "")
	}

	names, err := s.categories.Names(ctx)
	if err != nil {
		return nil, err
	}
	if err := validate.Category(request.Category, names); err != nil {
		return nil, apperror.Wrap(apperror.ErrInvalidCategory, err, "")
	}

	familyMember := strings.TrimSpace(request.FamilyMemberName)

	exec, rollback, commit, err := s.documentRepository.BeginTX(ctx)
	if err != nil {
		return nil, util.LogError("[DocumentService] begin transaction", err)
	}
	defer rollback()

	existing, err := s.documentRepository.ListBySlot(ctx, exec, request.UserID, request.Category, familyMember)
	if err != nil {
		return nil, err
	}

	var replacedPaths []string
	if active := activeDocuments(existing); len(active) > 0 {
		if !request.Replace {
			return nil, apperror.WithMessage(apperror.ErrConflict,
				fmt.Sprintf("a document for %q is already under review or approved", request.Category))
		}
		for _, old := range existing {
			storagePath, err := s.documentRepository.Delete(ctx, exec, old.ID)
			if err != nil {
				return nil, err
			}
			replacedPaths = append(replacedPaths, storagePath)
		}
	}

	checksum := sha256.Sum256(request.Content)
	document := &model.Document{
		ID:               uuid.New().String(),
		UserID:           request.UserID,
		Category:         request.Category,
		OriginalName:     request.OriginalName,
		MimeType:         request.MimeType,
		SizeBytes:        size,
		Sha256:           hex.EncodeToString(checksum[:]),
		Status:           model.DocumentPending,
		FamilyMemberName: familyMember,
	}
	document.StoragePath = objectKey(document.UserID, document.ID, document.OriginalName)

	if err := s.storageInterface.PutObject(ctx, document.StoragePath, request.Content, document.MimeType); err != nil {
		return nil, util.LogError("[DocumentService] store object", err)
	}

	if err := s.documentRepository.Create(ctx, exec, document); err != nil {
		s.removeObjects(ctx, document.StoragePath)
		return nil, err
	}
	if err := s.refreshProgress(ctx, exec, document.UserID); err != nil {
		s.removeObjects(ctx, document.StoragePath)
		return nil, err
	}

	if err := commit(); err != nil {
		s.removeObjects(ctx, document.StoragePath)
		return nil, util.LogError("[DocumentService] commit transaction", err)
	}

	s.removeObjects(ctx, replacedPaths...)
	s.invalidate(ctx, document.UserID)
	s.activities.Log(ctx, newActivity(model.ActivityDocumentUploaded,
		"Document uploaded", fmt.Sprintf("%s: %s", document.Category, document.OriginalName),
		document.UserID, nil, model.ExtraData{"document_id": document.ID, "category": document.Category, "replaced": len(replacedPaths)}))

	zap.L().Info("[DocumentService] document uploaded",
		zap.String("document_id", document.ID),
		zap.String("category", document.Category),
		zap.Int64("size_bytes", size),
	)
	return document, nil
}

// ListDocuments : caller's documents, newest first, cache-aside on Redis
func (s *DocumentService) ListDocuments(ctx context.Context, userID string) ([]model.Document, error) {
	documents, err := s.cacheRepository.GetDocuments(ctx, userID)
	if err != nil {
		zap.L().Warn("[DocumentService] cache read", zap.Error(err))
	}
	if documents != nil {
		s.metrics.ObserveCache("documents", true)
		return documents, nil
	}
	s.metrics.ObserveCache("documents", false)

	db, ok := config.DBFromContext(ctx)
	if !ok {
		return nil, errNoDatabase("DocumentService")
	}

	documents, err = s.documentRepository.ListByUser(ctx, db, userID)
	if err != nil {
		return nil, err
	}

	if err := s.cacheRepository.SetDocuments(ctx, userID, documents); err != nil {
		zap.L().Warn("[DocumentService] cache write", zap.Error(err))
	}
	return documents, nil
}

// DownloadURL : presigned GET for the owner or an admin, anyone else gets a not found
func (s *DocumentService) DownloadURL(ctx context.Context, claims *security.Claims, documentID string) (string, error) {
	db, ok := config.DBFromContext(ctx)
	if !ok {
		return "", errNoDatabase("DocumentService")
	}
	if claims == nil {
		return "", apperror.ErrUnauthorized
	}

	document, err := s.documentRepository.GetByID(ctx, db, documentID)
	if err != nil {
		return "", err
	}
	if document.UserID != claims.UserUUID && !claims.IsAdmin() {
		return "", apperror.ErrNotFound
	}

	getURL, err := s.storageInterface.PresignDownload(ctx, document.StoragePath, document.OriginalName, s.ttl)
	if err != nil {
		return "", util.LogError("[DocumentService] presign download", err)
	}
	return getURL, nil
}

// DeleteDocument : owner only and only while the document is not approved
func (s *DocumentService) DeleteDocument(ctx context.Context, userID, documentID string) error {
	exec, rollback, commit, err := s.documentRepository.BeginTX(ctx)
	if err != nil {
		return util.LogError("[DocumentService] begin transaction", err)
	}
	defer rollback()

	document, err := s.documentRepository.GetByID(ctx, exec, documentID)
	if err != nil {
		return err
	}
	if document.UserID != userID {
		return apperror.ErrNotFound
	}
	if document.Status == model.DocumentApproved {
		return apperror.WithMessage(apperror.ErrConflict, "approved documents cannot be deleted")
	}

	storagePath, err := s.documentRepository.Delete(ctx, exec, documentID)
	if err != nil {
		return err
	}
	if err := s.refreshProgress(ctx, exec, userID); err != nil {
		return err
	}
	if err := commit(); err != nil {
		return util.LogError("[DocumentService] commit transaction", err)
	}

	s.removeObjects(ctx, storagePath)
	s.invalidate(ctx, userID)
	s.activities.Log(ctx, newActivity(model.ActivityDocumentDeleted,
		"Document deleted", fmt.Sprintf("%s: %s", document.Category, document.OriginalName),
		userID, nil, model.ExtraData{"document_id": documentID, "category": document.Category}))
	return nil
}

// Review : admin decision, the owner's checklist and counters follow
func (s *DocumentService) Review(ctx context.Context, reviewer *security.Claims, documentID string, request requestresponse.ReviewDocumentRequest) (*model.Document, error) {
	if !request.Status.Reviewed() {
		return nil, apperror.WithMessage(apperror.ErrValidation, "status must be approved or rejected")
	}

	exec, rollback, commit, err := s.documentRepository.BeginTX(ctx)
	if err != nil {
		return nil, util.LogError("[DocumentService] begin transaction", err)
	}
	defer rollback()

	document, err := s.documentRepository.UpdateReview(ctx, exec, documentID, request.Status, strings.TrimSpace(request.AdminNotes))
	if err != nil {
		return nil, err
	}
	if err := s.refreshProgress(ctx, exec, document.UserID); err != nil {
		return nil, err
	}
	if err := commit(); err != nil {
		return nil, util.LogError("[DocumentService] commit transaction", err)
	}

	s.invalidate(ctx, document.UserID)
	s.metrics.ObserveReview(string(document.Status))

	activityType, title := model.ActivityDocumentApproved, "Document approved"
	if document.Status == model.DocumentRejected {
		activityType, title = model.ActivityDocumentRejected, "Document rejected"
	}
	s.activities.Log(ctx, newActivity(activityType, title,
		fmt.Sprintf("%s: %s", document.Category, document.OriginalName),
		document.UserID, reviewer, model.ExtraData{"document_id": document.ID, "admin_notes": document.AdminNotes}))

	return document, nil
}

func (s *DocumentService) ListAll(ctx context.Context, filter model.DocumentFilter) ([]model.Document, error) {
	db, ok := config.DBFromContext(ctx)
	if !ok {
		return nil, errNoDatabase("DocumentService")
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperror.WithMessage(apperror.ErrValidation, "unknown document status")
	}
	return s.documentRepository.List(ctx, db, filter)
}

// ListForClient : documents of the user behind a client record
func (s *DocumentService) ListForClient(ctx context.Context, clientID string) ([]model.Document, error) {
	db, ok := config.DBFromContext(ctx)
	if !ok {
		return nil, errNoDatabase("DocumentService")
	}

	client, err := s.clientRepository.GetByID(ctx, db, clientID)
	if err != nil {
		return nil, err
	}
	return s.documentRepository.ListByUser(ctx, db, client.UserID)
}

// refreshProgress : recomputes the client counters from the checklist inside the caller's transaction
func (s *DocumentService) refreshProgress(ctx context.Context, exec sqlx.ExtContext, userID string) error {
	names, err := s.categories.Names(ctx)
	if err != nil {
		return err
	}
	documents, err := s.documentRepository.ListByUser(ctx, exec, userID)
	if err != nil {
		return err
	}
	return s.clientRepository.UpdateProgress(ctx, exec, userID, checklist.Progress(names, documents))
}

func (s *DocumentService) invalidate(ctx context.Context, userID string) {
	if err := s.cacheRepository.DeleteDocuments(ctx, userID); err != nil {
		zap.L().Warn("[DocumentService] cache invalidation", zap.String("user_id", userID), zap.Error(err))
	}
}

func (s *DocumentService) removeObjects(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := s.storageInterface.DeleteObject(ctx, key); err != nil {
			zap.L().Warn("[DocumentService] delete object", zap.String("key", key), zap.Error(err))
		}
	}
}

func activeDocuments(documents []model.Document) []model.Document {
	var active []model.Document
	for _, document := range documents {
		if document.Status != model.DocumentRejected {
			active = append(active, document)
		}
	}
	return active
}

func objectKey(userID, documentID, originalName string) string {
	name := path.Base(strings.ReplaceAll(originalName, "\\", "/"))
	if name == "." || name == "/" {
		name = "file"
	}
	return fmt.Sprintf("users/%s/documents/%s-%s", userID, documentID, url.PathEscape(name))
}
