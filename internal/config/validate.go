package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/novel-sorter/internal/charset"
)

// Validate checks the configuration and returns an *InvalidError listing
// every problem found, or nil.
func (c *Config) Validate() error {
	var problems []string

	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				problems = append(problems, describeFieldError(fe))
			}
		} else {
			return &InvalidError{Cause: err}
		}
	}

	if c.Thresholds.DirectClassification == 0 && c.Thresholds.SecondaryCheck == 0 {
		problems = append(problems, "'thresholds' must not all be zero")
	}

	problems = append(problems, c.validateCategories()...)
	problems = append(problems, c.validateEncoding()...)

	te := c.Processing.TextExtraction
	if te.BeginChars == 0 && te.RandomFragmentCount == 0 {
		problems = append(problems, "'processing.text_extraction' samples nothing")
	}
	if te.RandomFragmentCount > 0 && te.RandomFragmentSize == 0 {
		problems = append(problems, "'processing.text_extraction.random_fragment_size' must be positive when fragments are requested")
	}
	for name, dir := range map[string]string{
		"processing.pending_dir": c.Processing.PendingDir,
		"processing.holding_dir": c.Processing.HoldingDir,
	} {
		if dir == "" {
			problems = append(problems, fmt.Sprintf("'%s' must be set", name))
		}
	}

	if len(problems) == 0 {
		return nil
	}
	sort.Strings(problems)
	return &InvalidError{Problems: problems}
}

func (c *Config) validateCategories() []string {
	var problems []string
	if len(c.Categories) == 0 {
		return []string{"'categories' must define at least one category"}
	}
	for id, cat := range c.Categories {
		if msg := checkDirName(id); msg != "" {
			problems = append(problems, fmt.Sprintf("category %q: %s", id, msg))
		}
		if id == c.Processing.HoldingDir || id == c.Processing.PendingDir {
			problems = append(problems, fmt.Sprintf("category %q collides with the pending or holding directory", id))
		}
		if cat.KeywordCount() == 0 {
			problems = append(problems, fmt.Sprintf("category %q has no keywords", id))
		}
		for _, kw := range append(append(append([]string{}, cat.HighWeight...), cat.MediumWeight...), cat.LowWeight...) {
			if strings.TrimSpace(kw) == "" {
				problems = append(problems, fmt.Sprintf("category %q has a blank keyword", id))
				break
			}
		}
	}
	return problems
}

func (c *Config) validateEncoding() []string {
	var problems []string
	if len(c.Encoding.DetectionEncodings) == 0 {
		problems = append(problems, "'encoding.detection_encodings' must not be empty")
	}
	for _, label := range c.Encoding.SupportedEncodings {
		if !charset.Known(label) {
			problems = append(problems, fmt.Sprintf("unknown encoding %q in 'encoding.supported_encodings'", label))
		}
	}
	for _, label := range c.Encoding.DetectionEncodings {
		if !charset.Known(label) {
			problems = append(problems, fmt.Sprintf("unknown encoding %q in 'encoding.detection_encodings'", label))
		}
	}
	if s := c.Encoding.ExpectedScript; s != "" {
		if _, ok := unicode.Scripts[s]; !ok {
			problems = append(problems, fmt.Sprintf("unknown script %q in 'encoding.expected_script'", s))
		}
	}
	return problems
}

// checkDirName returns a description of why id cannot be used as a single
// directory name, or "".
func checkDirName(id string) string {
	switch {
	case strings.TrimSpace(id) == "":
		return "id is blank"
	case id == "." || id == "..":
		return "id is a relative path element"
	case strings.ContainsAny(id, `/\`):
		return "id contains a path separator"
	case strings.ContainsRune(id, 0):
		return "id contains a NUL byte"
	}
	return ""
}

func describeFieldError(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "gte":
		return fmt.Sprintf("'%s' must be >= %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("'%s' must be <= %s", field, fe.Param())
	case "ltefield":
		return fmt.Sprintf("'%s' must not exceed '%s'", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("'%s' must be one of [%s]", field, fe.Param())
	case "required":
		return fmt.Sprintf("'%s' must not be empty", field)
	}
	return fmt.Sprintf("'%s' failed '%s' validation", field, fe.Tag())
}
