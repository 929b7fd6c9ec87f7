package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/deppfellow/consultdesk/internal/errs"
	"github.com/deppfellow/consultdesk/internal/model"
	"github.com/google/uuid"
)

type OptionService struct {
	options optionStore
}

func NewOptionService(options optionStore) *OptionService {
	return &OptionService{options: options}
}

type OptionInput struct {
	Category  model.OptionCategory
	Value     string
	Label     string
	SortOrder int
	Active    bool
}

func invalidCategory() error {
	return errs.FieldValidationError("category", "must be one of: consultant_specialty, client_type, consult_status")
}

func (s *OptionService) List(ctx context.Context, category model.OptionCategory, includeInactive bool) ([]model.SelectOption, error) {
	if !category.Valid() {
		return nil, invalidCategory()
	}
	return s.options.ListByCategory(ctx, category, includeInactive)
}

// RequireValue checks that value is a known option of category. Empty values
// are accepted since every option-backed field is optional.
func (s *OptionService) RequireValue(ctx context.Context, category model.OptionCategory, field, value string) error {
	if value == "" {
		return nil
	}

	ok, err := s.options.ValueExists(ctx, category, value)
	if err != nil {
		return err
	}
	if !ok {
		return errs.FieldValidationError(field, fmt.Sprintf("%q is not a valid option", value))
	}
	return nil
}

func (s *OptionService) Create(ctx context.Context, in OptionInput) (*model.SelectOption, error) {
	if !in.Category.Valid() {
		return nil, invalidCategory()
	}

	return s.options.Create(ctx, &model.SelectOption{
		Category:  in.Category,
		Value:     strings.TrimSpace(in.Value),
		Label:     strings.TrimSpace(in.Label),
		SortOrder: in.SortOrder,
		Active:    in.Active,
	})
}

// Update changes the label, order and visibility. Category and value are
// fixed once created since stored rows refer to the value.
func (s *OptionService) Update(ctx context.Context, id uuid.UUID, in OptionInput) (*model.SelectOption, error) {
	opt, err := s.options.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	opt.Label = strings.TrimSpace(in.Label)
	opt.SortOrder = in.SortOrder
	opt.Active = in.Active

	return s.options.Update(ctx, opt)
}

func (s *OptionService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.options.Delete(ctx, id)
}
