package validation

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	// Validation constants
	MaxAttributeNameLength = 100
	MaxLabelLength         = 100
	MaxDimension           = 1 << 20

	// attrNamePattern matches identifiers legal as attribute/label names.
	attrNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
)

func init() {
	validate = validator.New()
}

// AttributeDefRequest describes a request to define a new node/edge/graph
// attribute (§4.3, §4.5 define_* operations).
type AttributeDefRequest struct {
	Name      string `validate:"required,min=1,max=100"`
	Scope     string `validate:"required,oneof=node edge graph"`
	BaseType  string `validate:"required"`
	Dimension int    `validate:"required,min=1"`
}

// LeidenConfigRequest mirrors the Leiden session configuration of §6/§4.8.
type LeidenConfigRequest struct {
	EdgeWeightAttribute string
	Resolution          float64 `validate:"required,gt=0"`
	Seed                uint32
	MaxLevels           int `validate:"required,gt=0"`
	MaxPasses           int `validate:"required,gt=0"`
}

// DimensionConfigRequest mirrors the dimension estimator configuration of §6/§4.8.
type DimensionConfigRequest struct {
	Method   string `validate:"required,oneof=forward backward central least_squares"`
	Order    int    `validate:"required,min=1"`
	MaxLevel int    `validate:"required,min=1"`
}

// ValidateAttributeDefRequest validates an attribute-definition request.
func ValidateAttributeDefRequest(req *AttributeDefRequest) error {
	if req == nil {
		return errors.New("attribute definition request cannot be nil")
	}
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	if err := ValidateAttributeName(req.Name); err != nil {
		return err
	}
	if req.Dimension > MaxDimension {
		return fmt.Errorf("Dimension: exceeds maximum of %d", MaxDimension)
	}
	return nil
}

// ValidateLeidenConfigRequest validates a Leiden session configuration.
func ValidateLeidenConfigRequest(req *LeidenConfigRequest) error {
	if req == nil {
		return errors.New("leiden config cannot be nil")
	}
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// ValidateDimensionConfigRequest validates a dimension-estimator configuration.
// The per-method order caps follow §4.8: forward/backward 1-6, central 1-4,
// least_squares is unbounded here (the window itself caps at population size).
func ValidateDimensionConfigRequest(req *DimensionConfigRequest) error {
	if req == nil {
		return errors.New("dimension config cannot be nil")
	}
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	switch req.Method {
	case "forward", "backward":
		if req.Order < 1 || req.Order > 6 {
			return fmt.Errorf("Order: must be in [1,6] for method %q, got %d", req.Method, req.Order)
		}
	case "central":
		if req.Order < 1 || req.Order > 4 {
			return fmt.Errorf("Order: must be in [1,4] for method %q, got %d", req.Method, req.Order)
		}
	}
	return nil
}

// ValidateAttributeName validates an attribute or label identifier.
func ValidateAttributeName(name string) error {
	if name == "" {
		return errors.New("attribute name cannot be empty")
	}
	if len(name) > MaxAttributeNameLength {
		return fmt.Errorf("attribute name %q exceeds maximum length of %d characters", name, MaxAttributeNameLength)
	}
	if !attrNamePattern.MatchString(name) {
		return fmt.Errorf("attribute name %q is invalid (must start with a letter or underscore, followed by alphanumerics or underscores)", name)
	}
	return nil
}

// formatValidationError converts validator errors to a more user-friendly format.
func formatValidationError(err error) error {
	if err == nil {
		return nil
	}

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	for _, e := range validationErrs {
		field := e.Field()
		tag := e.Tag()
		param := e.Param()

		switch tag {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "min":
			return fmt.Errorf("%s: must be at least %s", field, param)
		case "max":
			return fmt.Errorf("%s: must not exceed %s", field, param)
		case "gt":
			return fmt.Errorf("%s: must be greater than %s", field, param)
		case "oneof":
			return fmt.Errorf("%s: must be one of [%s]", field, param)
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, tag)
		}
	}

	return err
}
