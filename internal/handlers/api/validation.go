package api

import (
	"errors"
	"net/mail"

	"github.com/agicotech/ForumApp/params"
	"github.com/gofiber/fiber/v2"
)

func validateUsername(username string) error {
	if username == "" {
		return errors.New("Username is required.")
	}
	if len(username) < params.UsernameMinLength {
		return errors.New("Username must be at least 3 characters.")
	}
	if len(username) > params.UsernameMaxLength {
		return errors.New("Username must be at most 50 characters.")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return errors.New("Email is required.")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return errors.New("Invalid email address.")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < params.PasswordMinLength {
		return errors.New("Password must be at least 6 characters.")
	}
	return nil
}

func validateTopicTitle(title string) error {
	if title == "" {
		return errors.New("Topic title is required.")
	}
	if len(title) < params.TopicTitleMinLength || len(title) > params.TopicTitleMaxLength {
		return errors.New("Topic title must be between 5 and 200 characters.")
	}
	return nil
}

func validateTopicDescription(description string) error {
	if len(description) > params.TopicDescriptionMaxLength {
		return errors.New("Topic description must be at most 1000 characters.")
	}
	return nil
}

func validateMessageText(text string) error {
	if text == "" {
		return errors.New("Message text is required.")
	}
	if len(text) > params.MessageTextMaxLength {
		return errors.New("Message text must be at most 5000 characters.")
	}
	return nil
}

// validateFields collects field-level messages, or nil if all fields pass.
// Validation always happens before any store access.
func validateFields(fields map[string]error) map[string]string {
	fieldErrors := make(map[string]string)
	for field, err := range fields {
		if err != nil {
			fieldErrors[field] = err.Error()
		}
	}
	if len(fieldErrors) == 0 {
		return nil
	}
	return fieldErrors
}

func renderValidationError(c *fiber.Ctx, fieldErrors map[string]string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  fieldErrors,
	})
}
