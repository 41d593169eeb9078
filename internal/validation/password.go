package validation

import (
	"errors"
	"unicode"
)

// MinOperatorPasswordLength - минимальная длина пароля сотрудника.
const MinOperatorPasswordLength = 12

// ValidateOperatorPassword проверяет пароль сотрудника перед хешированием.
// Требования: длина не меньше MinOperatorPasswordLength, заглавные и строчные буквы, цифры.
func ValidateOperatorPassword(password string) error {
	if len([]rune(password)) < MinOperatorPasswordLength {
		return errors.New("password must be at least 12 characters long")
	}

	var hasUpper, hasLower, hasNumber bool
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		}
	}

	if !hasUpper {
		return errors.New("password must contain an upper-case letter")
	}
	if !hasLower {
		return errors.New("password must contain a lower-case letter")
	}
	if !hasNumber {
		return errors.New("password must contain a digit")
	}

	return nil
}
