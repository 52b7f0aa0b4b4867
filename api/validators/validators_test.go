package validators

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	pkgerrors "github.com/angelmondragon/atacado-catalog/pkg/errors"
)

type loginBody struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

func TestDecodeJSONBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"username":"ana","password":"segredo1"}`))
	var body loginBody
	if err := DecodeJSONBody(req, &body); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body.Username != "ana" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"username":"ana","password":"segredo1","role":"ADMIN"}`))
	var body loginBody
	err := DecodeJSONBody(req, &body)
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeJSONBodyReportsFieldsByJSONName(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"username":"","password":"123"}`))
	var body loginBody
	err := DecodeJSONBody(req, &body)
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("unexpected details %T", typed.Details())
	}
	if details["username"] != "is required" || details["password"] != "must be at least 6 characters" {
		t.Fatalf("unexpected details %v", details)
	}
}

type reorderBody struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,required"`
}

func TestDecodeJSONBodyRejectsMalformedInput(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		message string
	}{
		{"empty body", ``, "request body is required"},
		{"truncated", `{"username":"ana"`, "malformed JSON"},
		{"syntax", `{"username":}`, "malformed JSON"},
		{"trailing object", `{"username":"ana","password":"segredo1"} {}`, "request body must hold a single JSON object"},
		{"wrong type", `{"username":7,"password":"segredo1"}`, "invalid request body"},
		{"too large", `{"username":"` + strings.Repeat("a", MaxJSONBodyBytes) + `"}`, "request body too large"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
		var body loginBody
		typed := pkgerrors.As(DecodeJSONBody(req, &body))
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("%s: expected validation error, got %v", tc.name, typed)
		}
		if typed.Message() != tc.message {
			t.Fatalf("%s: got message %q, want %q", tc.name, typed.Message(), tc.message)
		}
	}
}

func TestDecodeJSONBodyNamesUnknownAndMistypedFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"username":"ana","password":"segredo1","role":"ADMIN"}`))
	var body loginBody
	details, _ := pkgerrors.As(DecodeJSONBody(req, &body)).Details().(map[string]string)
	if details["role"] != "is not allowed" {
		t.Fatalf("unexpected details %v", details)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"username":7,"password":"segredo1"}`))
	details, _ = pkgerrors.As(DecodeJSONBody(req, &body)).Details().(map[string]string)
	if details["username"] != "must be a string" {
		t.Fatalf("unexpected details %v", details)
	}
}

func TestDecodeJSONBodyReportsNestedListItems(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"ids":["c1",""]}`))
	var body reorderBody
	details, _ := pkgerrors.As(DecodeJSONBody(req, &body)).Details().(map[string]string)
	if details["ids[1]"] != "is required" {
		t.Fatalf("unexpected details %v", details)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"ids":[]}`))
	details, _ = pkgerrors.As(DecodeJSONBody(req, &body)).Details().(map[string]string)
	if details["ids"] != "must have at least 1 item(s)" {
		t.Fatalf("unexpected details %v", details)
	}
}

func TestParseQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=20&bad=x&big=900", nil)
	if v, err := ParseQueryInt(req, "limit", 50, 1, 200); err != nil || v != 20 {
		t.Fatalf("expected 20, got %d %v", v, err)
	}
	if v, err := ParseQueryInt(req, "missing", 50, 1, 200); err != nil || v != 50 {
		t.Fatalf("expected default, got %d %v", v, err)
	}
	if _, err := ParseQueryInt(req, "bad", 50, 1, 200); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := ParseQueryInt(req, "big", 50, 1, 200); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected range error, got %v", err)
	}
}

func TestParseQueryIntRejectsRepeatedParameter(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=1&limit=500", nil)
	if _, err := ParseQueryInt(req, "limit", 50, 1, 200); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestQueryText(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?q=%20%20cal%C3%A7a%20%20jeans%20", nil)
	if got := QueryText(req, "q", 120); got != "calça jeans" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestBearerToken(t *testing.T) {
	cases := []struct {
		header string
		token  string
		err    error
	}{
		{"", "", ErrMissingToken},
		{"Bearer abc", "abc", nil},
		{"bearer   abc ", "abc", nil},
		{"Basic abc", "", ErrInvalidToken},
		{"Bearer ", "", ErrInvalidToken},
		{"abc", "", ErrInvalidToken},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		token, err := BearerToken(req)
		if !errors.Is(err, tc.err) || token != tc.token {
			t.Fatalf("header %q: got %q, %v", tc.header, token, err)
		}
	}
}

func TestSanitizeString(t *testing.T) {
	cases := []struct {
		name  string
		input string
		max   int
		want  string
	}{
		{"trims and cuts", "  vestido  ", 4, "vest"},
		{"collapses whitespace", "conjunto \t\n  linho", 0, "conjunto linho"},
		{"drops control characters", "sa\x00ia\x7f", 0, "saia"},
		{"no trailing space at the limit", "blusa manga", 6, "blusa"},
		{"counts letters not bytes", "ação", 3, "açã"},
	}
	for _, tc := range cases {
		if got := SanitizeString(tc.input, tc.max); got != tc.want {
			t.Fatalf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestSanitizeStringKeepsAccentedLetterWhole(t *testing.T) {
	input := strings.Repeat("a", 119) + "ção"
	got := SanitizeString(input, 120)
	if !utf8.ValidString(got) {
		t.Fatalf("result is not valid UTF-8: %q", got[len(got)-4:])
	}
	if n := utf8.RuneCountInString(got); n != 120 {
		t.Fatalf("expected 120 runes, got %d", n)
	}
	if !strings.HasSuffix(got, "aç") {
		t.Fatalf("unexpected tail %q", got[len(got)-4:])
	}
}
