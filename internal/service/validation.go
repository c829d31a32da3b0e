package service

import (
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"poznote/internal/config"
	"poznote/internal/domain/models"
)

var (
	// folderNameRe rejects characters that break paths or common
	// filesystem exports.
	folderNameRe = regexp.MustCompile(`^[^/\\:*?"<>|]+$`)

	// customTokenRe bounds user-chosen share tokens to URL-safe
	// characters.
	customTokenRe = regexp.MustCompile(`^[A-Za-z0-9\-_.]{4,128}$`)
)

// ValidateFolderName checks a single folder name segment: non-empty, at
// most MaxFolderNameLength characters, free of path-hostile characters,
// not a dot name, and not one of the reserved system names.
func ValidateFolderName(name string) error {
	return validation.Validate(name,
		validation.Required.Error("folder name cannot be empty"),
		validation.Length(1, config.MaxFolderNameLength),
		validation.Match(folderNameRe).Error(`folder name cannot contain / \ : * ? " < > |`),
		validation.By(notDotName),
		validation.By(notReservedName),
	)
}

func notDotName(value interface{}) error {
	name, _ := value.(string)
	if name == "." || name == ".." {
		return fmt.Errorf("folder name cannot be '.' or '..'")
	}
	return nil
}

func notReservedName(value interface{}) error {
	name, _ := value.(string)
	if models.IsReservedFolderName(name) {
		return fmt.Errorf("'%s' is a reserved folder name", name)
	}
	return nil
}

// SplitFolderPath splits a slash-delimited folder path into validated
// segments. Leading and trailing slashes are tolerated; empty segments
// (from doubled slashes) are rejected.
func SplitFolderPath(path string) ([]string, error) {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil, fmt.Errorf("folder path cannot be empty")
	}

	segments := strings.Split(trimmed, "/")
	for _, seg := range segments {
		if err := ValidateFolderName(seg); err != nil {
			return nil, fmt.Errorf("segment '%s': %w", seg, err)
		}
	}

	return segments, nil
}

// ValidateCustomToken checks a user-chosen share token.
func ValidateCustomToken(token string) error {
	return validation.Validate(token,
		validation.Required.Error("token cannot be empty"),
		validation.Match(customTokenRe).Error("token must be 4-128 characters from A-Z, a-z, 0-9, '-', '_', '.'"),
	)
}
