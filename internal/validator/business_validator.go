package validator

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/prodbrandon/CSE360HW4-sub000/internal/models"
)

var userNamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_.-]{2,31}$`)

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

// Validate validates business rules for any struct
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	err := bv.validate.Struct(s)
	if err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidatePromotionDecision validates an approve or reject decision.
// Rejections require a comment explaining the outcome to the requester.
func (bv *BusinessValidator) ValidatePromotionDecision(req *PromotionDecisionRequest, approved bool) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	if !approved {
		if req.Comments == nil || strings.TrimSpace(*req.Comments) == "" {
			errors = append(errors, ValidationError{
				Field:   "comments",
				Message: "rejection requires a comment",
				Rule:    "rejection_comment",
			})
		}
	}

	return errors
}

// ValidateMessageSend validates a new private message. A message may anchor
// to at most one piece of content.
func (bv *BusinessValidator) ValidateMessageSend(req *MessageSendRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	if req.RelatedQuestionID != nil && req.RelatedAnswerID != nil {
		errors = append(errors, ValidationError{
			Field:   "related",
			Message: "message may reference a question or an answer, not both",
			Rule:    "message_reference",
		})
	}

	return errors
}

// registerBusinessRules registers custom field validators
func (bv *BusinessValidator) registerBusinessRules() {
	// Login names start with a letter, 3-32 characters
	bv.validate.RegisterValidation("user_name", func(fl validator.FieldLevel) bool {
		return userNamePattern.MatchString(fl.Field().String())
	})

	// Passwords need length plus upper, lower, digit and special characters
	bv.validate.RegisterValidation("password_strength", func(fl validator.FieldLevel) bool {
		return PasswordMeetsPolicy(fl.Field().String())
	})

	// Role names must come from the known role set
	bv.validate.RegisterValidation("role_name", func(fl validator.FieldLevel) bool {
		return models.IsValidRole(models.Role(fl.Field().String()))
	})
}

// PasswordMeetsPolicy reports whether a password satisfies the account
// policy: at least 8 characters with an upper case letter, a lower case
// letter, a digit and a special character.
func PasswordMeetsPolicy(password string) bool {
	if len(password) < 8 {
		return false
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSpecial = true
		}
	}

	return hasUpper && hasLower && hasDigit && hasSpecial
}
