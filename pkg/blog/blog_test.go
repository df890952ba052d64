package blog

import (
	"errors"
	"testing"
	"time"
)

func TestValidatePostInput(t *testing.T) {
	cases := []struct {
		in    PostInput
		field string
	}{
		{PostInput{Title: "Monstera", Content: "Water weekly"}, ""},
		{PostInput{Title: "Monstera", Content: "Water weekly", ImageURL: "https://example.com/m.jpg"}, ""},
		{PostInput{Content: "Water weekly"}, "title"},
		{PostInput{Title: "Monstera"}, "content"},
		{PostInput{Title: "Monstera", Content: "c", ImageURL: "not a url"}, "image_url"},
	}
	for i, c := range cases {
		err := Validate(c.in)
		if c.field == "" {
			if err != nil {
				t.Errorf("case %d: expected ok, got %v", i, err)
			}
			continue
		}
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("case %d: expected ValidationError, got %v", i, err)
		}
		if ve.Field != c.field {
			t.Errorf("case %d: expected field %q, got %q", i, c.field, ve.Field)
		}
	}
}

func TestValidateNewUser(t *testing.T) {
	cases := []struct {
		in NewUser
		ok bool
	}{
		{NewUser{Email: "fern@example.com", Username: "fern", Password: "secret1"}, true},
		{NewUser{Email: "bad", Username: "fern", Password: "secret1"}, false},
		{NewUser{Email: "fern@example.com", Username: "fe", Password: "secret1"}, false},
		{NewUser{Email: "fern@example.com", Username: "fern", Password: "123"}, false},
	}
	for i, c := range cases {
		err := Validate(c.in)
		if c.ok && err != nil {
			t.Fatalf("case %d expected ok, got err: %v", i, err)
		}
		if !c.ok && err == nil {
			t.Fatalf("case %d expected error, got nil", i)
		}
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := Validate(PostInput{Content: "x"})
	if err == nil || err.Error() != "title is required" {
		t.Errorf("expected %q, got %v", "title is required", err)
	}
}

func TestNewUserNormalize(t *testing.T) {
	u := NewUser{Email: " Fern@Example.COM ", Username: "BigFern", Password: "KeepCase"}.Normalize()
	if u.Email != "fern@example.com" || u.Username != "bigfern" {
		t.Errorf("expected lower-cased identity, got %+v", u)
	}
	if u.Password != "KeepCase" {
		t.Errorf("password must not be touched, got %q", u.Password)
	}
}

func TestParseLikeStatus(t *testing.T) {
	for in, want := range map[string]LikeStatus{
		"like":    LikeStatusLike,
		"dislike": LikeStatusDislike,
		"none":    LikeStatusNone,
		"":        LikeStatusNone,
		"meh":     LikeStatusNone,
	} {
		if got := ParseLikeStatus(in); got != want {
			t.Errorf("ParseLikeStatus(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	for _, s := range []string{"2024-05-01T09:30:00", "2024-05-01T09:30:00Z", "2024-05-01 09:30:00"} {
		got, err := ParseTimestamp(s)
		if err != nil {
			t.Fatalf("%q: %v", s, err)
		}
		if !got.Equal(want) {
			t.Errorf("%q: expected %v, got %v", s, want, got)
		}
	}
	if _, err := ParseTimestamp("yesterday"); !errors.Is(err, ErrBadTimestamp) {
		t.Errorf("expected ErrBadTimestamp, got %v", err)
	}
}
