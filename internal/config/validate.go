package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/forPelevin/hlextract/internal/failure"
	"github.com/forPelevin/hlextract/internal/ports/adapters/ffmpeg"
	"github.com/forPelevin/hlextract/internal/ports/adapters/openrouter"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their TOML keys so messages match the config file.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("toml"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateFields(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	return c.validateClips()
}

func (c *Config) validateFields() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return failure.Wrap(failure.ErrConfiguration, "config", "validate", err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return failure.Wrap(failure.ErrConfiguration, "config", strings.Join(msgs, "; "), nil)
}

func (c *Config) validateLLM() error {
	if c.LLM.Provider != ProviderOpenRouter {
		return nil
	}
	if c.LLM.APIKey == "" {
		return failure.Wrap(failure.ErrConfiguration, "config",
			"llm.api_key is required for openrouter (set OPENROUTER_API_KEY in .env)", nil)
	}
	if err := openrouter.ValidateBaseURL(c.LLM.BaseURL, c.LLM.AllowedHosts); err != nil {
		return failure.Wrap(failure.ErrConfiguration, "config", "llm.base_url", err)
	}
	return nil
}

func (c *Config) validateClips() error {
	if ffmpeg.IsStreamCopy(c.Clips.VideoCodec) || ffmpeg.IsStreamCopy(c.Clips.AudioCodec) {
		return failure.Wrap(failure.ErrConfiguration, "config",
			"clips.video_codec and clips.audio_codec must name encoders, \"copy\" is not allowed", nil)
	}
	if c.Clips.BurnSubtitles && !c.Clips.Subtitles {
		return failure.Wrap(failure.ErrConfiguration, "config",
			"clips.burn_subtitles requires clips.subtitles", nil)
	}
	return nil
}

func describeFieldError(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s must be set", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", field, fe.Param(), fe.Value())
	case "gte":
		return fmt.Sprintf("%s must be >= %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
