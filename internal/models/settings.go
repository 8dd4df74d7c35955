package models

import (
	"slices"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Mode is the default suggestion cadence.
type Mode string

const (
	ModeDaily  Mode = "daily"
	ModeWeekly Mode = "weekly"
)

// Settings is the process-wide configuration for suggestions.
type Settings struct {
	Mode               Mode  `json:"mode" yaml:"mode"`
	CountDaily         int   `json:"countDaily" yaml:"count_daily"`
	CountWeekly        int   `json:"countWeekly" yaml:"count_weekly"`
	DefaultFrequencies []int `json:"defaultFrequencies" yaml:"default_frequencies"`
}

// DefaultSettings returns the settings used before any update.
func DefaultSettings() Settings {
	return Settings{
		Mode:               ModeDaily,
		CountDaily:         3,
		CountWeekly:        10,
		DefaultFrequencies: []int{7, 14, 30, 90},
	}
}

// Validate validates the settings.
func (s Settings) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Mode, validation.Required, validation.In(ModeDaily, ModeWeekly)),
		validation.Field(&s.CountDaily, validation.Required.Error("must be a positive number"), validation.Min(1)),
		validation.Field(&s.CountWeekly, validation.Required.Error("must be a positive number"), validation.Min(1)),
		validation.Field(&s.DefaultFrequencies, validation.Each(validation.Min(1))),
	)
}

// CountFor returns the default batch size for mode.
func (s Settings) CountFor(mode Mode) int {
	if mode == ModeWeekly {
		return s.CountWeekly
	}
	return s.CountDaily
}

// Clone returns a deep copy.
func (s Settings) Clone() Settings {
	s.DefaultFrequencies = slices.Clone(s.DefaultFrequencies)
	if s.DefaultFrequencies == nil {
		s.DefaultFrequencies = []int{}
	}
	return s
}

// SettingsPatch is a partial or full settings update. Nil fields keep the
// current value.
type SettingsPatch struct {
	Mode               *Mode `json:"mode"`
	CountDaily         *int  `json:"countDaily"`
	CountWeekly        *int  `json:"countWeekly"`
	DefaultFrequencies []int `json:"defaultFrequencies"`
}

// ApplyTo merges the patch over base and returns the result. Non-positive
// default frequencies are dropped.
func (p SettingsPatch) ApplyTo(base Settings) Settings {
	out := base.Clone()
	if p.Mode != nil {
		out.Mode = *p.Mode
	}
	if p.CountDaily != nil {
		out.CountDaily = *p.CountDaily
	}
	if p.CountWeekly != nil {
		out.CountWeekly = *p.CountWeekly
	}
	if p.DefaultFrequencies != nil {
		out.DefaultFrequencies = PositiveOnly(p.DefaultFrequencies)
	}
	return out
}

// PositiveOnly returns the positive entries of xs, preserving order.
func PositiveOnly(xs []int) []int {
	out := make([]int, 0, len(xs))
	for _, x := range xs {
		if x > 0 {
			out = append(out, x)
		}
	}
	return out
}
