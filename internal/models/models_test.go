package models

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func validInput() ContactInput {
	return ContactInput{
		FullName:      "Ada Lovelace",
		Relationship:  RelationshipFriend,
		PhoneNumber:   "+1 (555) 010-0000",
		Email:         "ada@example.com",
		FrequencyDays: 30,
		Priority:      3,
	}
}

func TestContactInput_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ContactInput)
		wantErr string
	}{
		{"valid", func(*ContactInput) {}, ""},
		{"no phone or email", func(in *ContactInput) { in.PhoneNumber, in.Email = "", "" }, ""},
		{"blank name", func(in *ContactInput) { in.FullName = "" }, "fullName"},
		{"unknown relationship", func(in *ContactInput) { in.Relationship = "rival" }, "relationship"},
		{"letters in phone", func(in *ContactInput) { in.PhoneNumber = "five five five" }, "phoneNumber"},
		{"bad email", func(in *ContactInput) { in.Email = "ada@" }, "email"},
		{"zero frequency", func(in *ContactInput) { in.FrequencyDays = 0 }, "frequencyDays"},
		{"negative frequency", func(in *ContactInput) { in.FrequencyDays = -7 }, "frequencyDays"},
		{"priority below range", func(in *ContactInput) { in.Priority = 0 }, "priority"},
		{"priority above range", func(in *ContactInput) { in.Priority = 6 }, "priority"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			err := in.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestContactInput_Normalize(t *testing.T) {
	in := ContactInput{FullName: "  Ada ", Relationship: " Family ", Email: " a@b.co "}
	in.Normalize()
	if in.FullName != "Ada" || in.Relationship != RelationshipFamily || in.Email != "a@b.co" {
		t.Errorf("got %+v", in)
	}
}

func TestInteractionInput_Preview(t *testing.T) {
	long := strings.Repeat("ab", 100)
	text := InteractionInput{Type: InteractionText, MessagePreview: long}
	if got := text.Preview(); got != long[:MaxPreviewLen] {
		t.Errorf("text preview = %q", got)
	}
	call := InteractionInput{Type: InteractionCall, MessagePreview: "hello"}
	if got := call.Preview(); got != "" {
		t.Errorf("call preview = %q, want empty", got)
	}
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello", 3, "hel"},
		{"héllo wörld", 4, "héll"},
		{"日本語テキスト", 3, "日本語"},
		{"", 3, ""},
	}
	for _, tt := range tests {
		got := TruncateRunes(tt.in, tt.n)
		if got != tt.want {
			t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("TruncateRunes(%q, %d) produced invalid UTF-8", tt.in, tt.n)
		}
	}
}

func TestInteractionInput_Validate(t *testing.T) {
	for _, typ := range []InteractionType{InteractionCall, InteractionText} {
		if err := (InteractionInput{Type: typ}).Validate(); err != nil {
			t.Errorf("%s: %v", typ, err)
		}
	}
	for _, typ := range []InteractionType{"", "email", "CALL"} {
		if err := (InteractionInput{Type: typ}).Validate(); err == nil {
			t.Errorf("%q should be rejected", typ)
		}
	}
}

func TestSettingsPatch_ApplyTo(t *testing.T) {
	base := DefaultSettings()
	weekly := ModeWeekly
	five := 5

	got := SettingsPatch{Mode: &weekly, CountWeekly: &five}.ApplyTo(base)
	if got.Mode != ModeWeekly || got.CountWeekly != 5 || got.CountDaily != base.CountDaily {
		t.Errorf("got %+v", got)
	}
	if len(got.DefaultFrequencies) != len(base.DefaultFrequencies) {
		t.Errorf("frequencies changed: %v", got.DefaultFrequencies)
	}

	got = SettingsPatch{DefaultFrequencies: []int{-1, 0, 21}}.ApplyTo(base)
	if len(got.DefaultFrequencies) != 1 || got.DefaultFrequencies[0] != 21 {
		t.Errorf("frequencies = %v, want [21]", got.DefaultFrequencies)
	}

	got.DefaultFrequencies[0] = 99
	if base.DefaultFrequencies[0] == 99 {
		t.Error("ApplyTo aliased the base slice")
	}
}

func TestSettings_CountFor(t *testing.T) {
	s := Settings{Mode: ModeDaily, CountDaily: 2, CountWeekly: 8}
	if s.CountFor(ModeDaily) != 2 || s.CountFor(ModeWeekly) != 8 {
		t.Errorf("CountFor wrong: %+v", s)
	}
}
