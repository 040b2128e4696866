package utils

import (
	"fmt"
	"math/rand"
	"mime/multipart"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode"
)

type SuccessResponse struct {
	Success bool  `json:"success"`
	Data    any   `json:"data"`
	Meta    *Meta `json:"meta,omitempty"`
}

type ErrorResponse struct {
	Success bool     `json:"success"`
	Error   APIError `json:"error"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Fields  any    `json:"fields,omitempty"`
}

type Meta struct {
	Timestamp time.Time `json:"timestamp"`
}

func CreateErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Success: false,
		Error: APIError{
			Code:    code,
			Message: message,
		},
	}
}

func CreateSuccessResponse(data any) SuccessResponse {
	return SuccessResponse{
		Success: true,
		Data:    data,
		Meta: &Meta{
			Timestamp: time.Now(),
		},
	}
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ123456789")

func GenerateRandomStringWithLength(n int) string {
	b := make([]rune, n)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return string(b)
}

// Slugify lower-cases the input, turns runs of non-alphanumerics into a
// single hyphen and trims hyphens from both ends. "Content Editor" becomes
// "content-editor".
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	lastDash := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastDash = false
		} else if !lastDash {
			b.WriteRune('-')
			lastDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9!#$%&'*+/=?^_` + "`" + `{|}~-]+(?:\.[a-zA-Z0-9!#$%&'*+/=?^_` + "`" + `{|}~-]+)*@(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]*[a-zA-Z0-9])?\.)+[a-zA-Z0-9](?:[a-zA-Z0-9-]*[a-zA-Z0-9])?$`)

func ValidateEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// Digits only, optional leading +, length 7-15.
var phoneRegex = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

func ValidatePhone(phone string) bool {
	return phoneRegex.MatchString(phone)
}

func ValidateImageFile(fileHeader *multipart.FileHeader, allowedExts []string, maxMB int64) error {
	if fileHeader.Size > maxMB*1024*1024 {
		return fmt.Errorf("file too large: %s ( > %dMB )", fileHeader.Filename, maxMB)
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	for _, allowedExt := range allowedExts {
		if ext == allowedExt {
			return nil
		}
	}
	return fmt.Errorf("file type not allowed: %s", ext)
}

func GenerateSafeFilename(original string) string {
	ext := filepath.Ext(original)
	nameWithoutExt := strings.TrimSuffix(filepath.Base(original), ext)

	reg := regexp.MustCompile(`[^a-zA-Z0-9._-]`)
	safeName := reg.ReplaceAllString(nameWithoutExt, "_")

	timestamp := time.Now().Format("20060102_150405")

	return fmt.Sprintf("%s_%s%s", safeName, timestamp, ext)
}
