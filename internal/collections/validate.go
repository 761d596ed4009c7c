package collections

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"taskdeck/internal/api"
	"taskdeck/internal/model"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	custom := map[string]validator.Func{
		"notblank":        validateNotBlank,
		"task_priority":   validatePriority,
		"task_status":     validateStatus,
		"task_recurrence": validateRecurrence,
		"isodate":         validateISODate,
	}
	for tag, fn := range custom {
		if err := validate.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("failed to register %s validator: %v", tag, err))
		}
	}
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func validatePriority(fl validator.FieldLevel) bool {
	switch model.Priority(fl.Field().String()) {
	case model.PriorityLow, model.PriorityMedium, model.PriorityHigh:
		return true
	}
	return false
}

func validateStatus(fl validator.FieldLevel) bool {
	switch model.TaskStatus(fl.Field().String()) {
	case model.StatusPending, model.StatusCompleted:
		return true
	}
	return false
}

func validateRecurrence(fl validator.FieldLevel) bool {
	switch model.Recurrence(fl.Field().String()) {
	case model.RecurrenceDaily, model.RecurrenceWeekly, model.RecurrenceMonthly, model.RecurrenceYearly:
		return true
	}
	return false
}

func validateISODate(fl validator.FieldLevel) bool {
	_, err := model.ParseTimestamp(fl.Field().String())
	return err == nil
}

// ValidateTaskDraft checks a create payload locally. Failures are KindValidation and must
// never be sent to the backend.
func ValidateTaskDraft(d model.TaskDraft) error {
	if d.IsRecurring && d.RecurrencePattern == nil {
		return api.ValidationError("recurrence_pattern is required for recurring tasks")
	}
	return toAPIError(validate.Struct(d))
}

func ValidateTaskPatch(p model.TaskPatch) error {
	if p.IsEmpty() {
		return api.ValidationError("nothing to update")
	}
	return toAPIError(validate.Struct(p))
}

func ValidateNoteDraft(d model.NoteDraft) error {
	return toAPIError(validate.Struct(d))
}

func ValidateNotePatch(p model.NotePatch) error {
	if p.IsEmpty() {
		return api.ValidationError("nothing to update")
	}
	return toAPIError(validate.Struct(p))
}

func toAPIError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &api.Error{Kind: api.KindValidation, Detail: err.Error(), Err: err}
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return &api.Error{Kind: api.KindValidation, Detail: strings.Join(msgs, "; "), Err: err}
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "notblank", "required":
		return field + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "task_priority":
		return field + " must be one of low, medium, high"
	case "task_status":
		return field + " must be one of pending, completed"
	case "task_recurrence":
		return field + " must be one of daily, weekly, monthly, yearly"
	case "isodate":
		return field + " must be an ISO-8601 date (YYYY-MM-DD)"
	}
	return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
}
