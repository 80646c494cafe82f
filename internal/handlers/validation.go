package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := v.RegisterValidation("trimmed_min", trimmedMin); err != nil {
			panic(err)
		}
	}
}

// trimmedMin is min for strings, ignoring surrounding whitespace.
func trimmedMin(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return utf8.RuneCountInString(strings.TrimSpace(fl.Field().String())) >= n
}

// validationError is a user-input problem reported as 400 with its message.
type validationError string

func (e validationError) Error() string { return string(e) }

// fieldRule maps one failed binding tag on a request field to the message a
// visitor sees. For max rules the message is a format taking the limit.
type fieldRule struct {
	field   string
	tag     string
	message string
}

func maxRule(field, label string) fieldRule {
	return fieldRule{field: field, tag: "max", message: label + " must be less than %s characters"}
}

const (
	guestbookRequired = "Author and message are required"
	tributeRequired   = "Author, message, and relationship are required"
	memorialRequired  = "Name, role, unit, status, and biography are required"
	messageTooShort   = "Message must be at least 10 characters long"
)

// Rules are listed in reporting order. A tribute with a short message and no
// relationship is told about the message first.
var (
	guestbookRules = []fieldRule{
		{"Author", "required", guestbookRequired},
		{"Message", "required", guestbookRequired},
		{"Message", "min", messageTooShort},
		maxRule("Author", "Name"),
		maxRule("Location", "Location"),
		maxRule("Message", "Message"),
	}

	tributeRules = []fieldRule{
		{"Author", "required", tributeRequired},
		{"Message", "required", tributeRequired},
		{"Message", "min", messageTooShort},
		{"Relationship", "required", tributeRequired},
		maxRule("Author", "Name"),
		maxRule("Relationship", "Relationship"),
		maxRule("Message", "Message"),
	}

	memorialRules = []fieldRule{
		{"Name", "required", memorialRequired},
		{"Role", "required", memorialRequired},
		{"Unit", "required", memorialRequired},
		{"Status", "required", memorialRequired},
		{"Biography", "required", memorialRequired},
		{"Biography", "trimmed_min", "Biography must be at least 10 characters"},
		maxRule("Name", "Name"),
		maxRule("Role", "Role"),
		maxRule("Unit", "Unit"),
		maxRule("Biography", "Biography"),
		{"Status", "oneof", "Status must be one of fallen, serving, or gallantry"},
		{"BirthDate", "datetime", "Birth date must be in YYYY-MM-DD format"},
		{"DeathDate", "datetime", "Death date must be in YYYY-MM-DD format"},
	}
)

// bindingMessage turns the validator errors from a bind into the first
// matching rule's message. ok is false for any other bind error.
func bindingMessage(err error, rules []fieldRule) (string, bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "", false
	}

	for _, r := range rules {
		for _, fe := range verrs {
			if fe.StructField() != r.field || fe.Tag() != r.tag {
				continue
			}
			if r.tag == "max" {
				return fmt.Sprintf(r.message, fe.Param()), true
			}
			return r.message, true
		}
	}
	return verrs[0].Error(), true
}
