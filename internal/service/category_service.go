package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"visa-advisory-portal/config"
	"visa-advisory-portal/internal/model"
	"visa-advisory-portal/internal/model/requestresponse"
	"visa-advisory-portal/internal/ports"
	"visa-advisory-portal/internal/util"
)

type CategoryService struct {
	categoryRepository ports.CategoryRepository
	cacheRepository    ports.CacheRepository
	metrics            *MetricsService
}

func NewCategoryService(categoryRepository ports.CategoryRepository, cacheRepository ports.CacheRepository, metrics *MetricsService) *CategoryService {
	return &CategoryService{
		categoryRepository: categoryRepository,
		cacheRepository:    cacheRepository,
		metrics:            metrics,
	}
}

// Names : active category names in checklist order, served from Redis when possible
func (s *CategoryService) Names(ctx context.Context) ([]string, error) {
	names, err := s.cacheRepository.GetCategories(ctx)
	if err != nil {
		zap.L().Warn("[CategoryService] cache read", zap.Error(err))
	}
	if names != nil {
		s.metrics.ObserveCache("categories", true)
		return names, nil
	}
	s.metrics.ObserveCache("categories", false)

	db, ok := config.DBFromContext(ctx)
	if !ok {
		return nil, errNoDatabase("CategoryService")
	}

	names, err = s.categoryRepository.ListActiveNames(ctx, db)
	if err != nil {
		return nil, util.LogError("[CategoryService] list active categories", err)
	}
	if names == nil {
		names = []string{}
	}

	if err := s.cacheRepository.SetCategories(ctx, names); err != nil {
		zap.L().Warn("[CategoryService] cache write", zap.Error(err))
	}
	return names, nil
}

func (s *CategoryService) List(ctx context.Context) ([]model.Category, error) {
	db, ok := config.DBFromContext(ctx)
	if !ok {
		return nil, errNoDatabase("CategoryService")
	}
	return s.categoryRepository.List(ctx, db)
}

func (s *CategoryService) Create(ctx context.Context, request requestresponse.CategoryRequest) (*model.Category, error) {
	db, ok := config.DBFromContext(ctx)
	if !ok {
		return nil, errNoDatabase("CategoryService")
	}

	category := model.Category{IsRequired: true, IsActive: true}
	applyCategoryRequest(&category, request)

	created, err := s.categoryRepository.Create(ctx, db, &category)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return created, nil
}

func (s *CategoryService) Update(ctx context.Context, id int64, request requestresponse.CategoryRequest) (*model.Category, error) {
	db, ok := config.DBFromContext(ctx)
	if !ok {
		return nil, errNoDatabase("CategoryService")
	}

	category, err := s.categoryRepository.GetByID(ctx, db, id)
	if err != nil {
		return nil, err
	}
	applyCategoryRequest(category, request)

	updated, err := s.categoryRepository.Update(ctx, db, category)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return updated, nil
}

func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	db, ok := config.DBFromContext(ctx)
	if !ok {
		return errNoDatabase("CategoryService")
	}
	if err := s.categoryRepository.Delete(ctx, db, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *CategoryService) invalidate(ctx context.Context) {
	if err := s.cacheRepository.DeleteCategories(ctx); err != nil {
		zap.L().Warn("[CategoryService] cache invalidation", zap.Error(err))
	}
}

func applyCategoryRequest(category *model.Category, request requestresponse.CategoryRequest) {
	category.Name = strings.TrimSpace(request.Name)
	category.Description = strings.TrimSpace(request.Description)
	category.DisplayOrder = request.DisplayOrder
	if request.IsRequired != nil {
		category.IsRequired = *request.IsRequired
	}
	if request.IsActive != nil {
		category.IsActive = *request.IsActive
	}
}
