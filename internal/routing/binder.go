package routing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/praxis-crm/praxis/internal/apperr"
	"github.com/praxis-crm/praxis/internal/platform/httpx"
	"github.com/praxis-crm/praxis/internal/shared"
)

// Binder materializes handler arguments from the request according to the
// cached bindings. Binding never re-derives metadata per request.
type Binder struct {
	validate *validator.Validate
}

// NewBinder constructs a Binder with struct validation enabled.
func NewBinder() *Binder {
	return &Binder{validate: validator.New()}
}

// Bind produces the ordered argument list for one request. Any conversion
// or requiredness failure surfaces as BAD_REQUEST before the handler runs.
func (b *Binder) Bind(ctx context.Context, r *http.Request, bindings []Binding) (*Args, error) {
	values := make([]any, len(bindings))
	for i, binding := range bindings {
		value, err := b.bindOne(ctx, r, binding)
		if err != nil {
			return nil, err
		}
		values[i] = value
	}
	return &Args{values: values}, nil
}

func (b *Binder) bindOne(ctx context.Context, r *http.Request, binding Binding) (any, error) {
	switch binding.Source {
	case SourcePath:
		raw := chi.URLParam(r, binding.Name)
		if raw == "" {
			return nil, apperr.Newf(apperr.KindBadRequest, apperr.CodeBadRequest,
				"Path variable %s is required", binding.Name)
		}
		value, err := Convert(raw, binding.Target)
		if err != nil {
			return nil, apperr.Newf(apperr.KindBadRequest, apperr.CodeBadRequest,
				"Path variable %s is not a valid value", binding.Name)
		}
		return value, nil

	case SourceQuery:
		raw := r.URL.Query().Get(binding.Name)
		if raw == "" {
			raw = binding.Default
		}
		if raw == "" {
			if binding.Required {
				return nil, apperr.Newf(apperr.KindBadRequest, apperr.CodeBadRequest,
					"Query parameter %s is required", binding.Name)
			}
			return nil, nil
		}
		value, err := Convert(raw, binding.Target)
		if err != nil {
			return nil, apperr.Newf(apperr.KindBadRequest, apperr.CodeBadRequest,
				"Query parameter %s is not a valid value", binding.Name)
		}
		return value, nil

	case SourceBody:
		target := binding.Factory()
		if err := httpx.DecodeJSON(r, target); err != nil {
			if errors.Is(err, io.EOF) {
				if binding.Required {
					return nil, apperr.New(apperr.KindBadRequest, apperr.CodeBadRequest,
						"Request body is required")
				}
				return target, nil
			}
			return nil, apperr.New(apperr.KindBadRequest, apperr.CodeBadRequest,
				"Failed to parse request body")
		}
		if err := b.validate.Struct(target); err != nil {
			return nil, apperr.Newf(apperr.KindBadRequest, apperr.CodeValidationError,
				"Validation error: %s", validationDetail(err))
		}
		return target, nil

	case SourcePrincipal:
		return shared.PrincipalFromContext(ctx), nil

	case SourcePageable:
		return bindPageable(r)

	case SourceRequest:
		return r.WithContext(ctx), nil
	}
	return nil, apperr.New(apperr.KindInternal, apperr.CodeInternal, "Internal server error")
}

func bindPageable(r *http.Request) (any, error) {
	query := r.URL.Query()
	page := shared.PageRequest{
		Sort:  query.Get("sort"),
		Order: strings.ToLower(query.Get("order")),
	}
	if raw := query.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, apperr.New(apperr.KindBadRequest, apperr.CodeBadRequest,
				"Query parameter page is not a valid value")
		}
		page.Page = n
	}
	if raw := query.Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, apperr.New(apperr.KindBadRequest, apperr.CodeBadRequest,
				"Query parameter size is not a valid value")
		}
		page.Size = n
	}
	return page.Normalize(), nil
}

// Convert turns a raw string into the declared target type. It is a pure
// function of its inputs and carries no request state.
func Convert(raw string, target Target) (any, error) {
	switch target {
	case TargetString:
		return raw, nil
	case TargetInt64:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, err
		}
		return v, nil
	case TargetBool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, err
		}
		return v, nil
	case TargetFloat64:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, err
		}
		return v, nil
	case TargetUUID:
		v, err := uuid.Parse(raw)
		if err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, strconv.ErrSyntax
	}
}

func validationDetail(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return "invalid request"
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		parts = append(parts, fe.Field()+" failed "+fe.Tag())
	}
	return strings.Join(parts, ", ")
}
