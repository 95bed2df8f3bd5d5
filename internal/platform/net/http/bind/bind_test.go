package bind

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perr "shelfsync/internal/platform/errors"
	kit "shelfsync/internal/platform/testkit"
)

type reviewIn struct {
	BookID  string `json:"bookId" validate:"required"`
	Comment string `json:"comment" validate:"required,max=20"`
	Rating  int    `json:"rating" validate:"min=1,max=5"`
}

func TestParseJSON(t *testing.T) {
	cases := []struct {
		name   string
		method string
		body   string
		code   perr.ErrorCode
		msg    string
	}{
		{name: "ok", method: http.MethodPost, body: `{"bookId":"b1","comment":"great","rating":4}`},
		{name: "empty post", method: http.MethodPost, body: "", code: perr.ErrorCodeJSON},
		{name: "empty get", method: http.MethodGet, body: ""},
		{name: "empty delete", method: http.MethodDelete, body: ""},
		{name: "malformed", method: http.MethodPost, body: `{"bookId":`, code: perr.ErrorCodeJSON},
		{name: "unknown field", method: http.MethodPost, body: `{"bookId":"b1","comment":"x","rating":3,"stars":5}`, code: perr.ErrorCodeJSON},
		{name: "trailing", method: http.MethodPost, body: `{"bookId":"b1","comment":"x","rating":3} {}`, code: perr.ErrorCodeJSON},
		{name: "required", method: http.MethodPost, body: `{"comment":"x","rating":3}`, code: perr.ErrorCodeValidation, msg: "bookId"},
		{name: "short max", method: http.MethodPost, body: `{"bookId":"b1","comment":"` + strings.Repeat("a", 21) + `","rating":3}`, code: perr.ErrorCodeValidation, msg: "comment must be at most 20"},
		{name: "short min", method: http.MethodPost, body: `{"bookId":"b1","comment":"x","rating":0}`, code: perr.ErrorCodeValidation, msg: "rating must be at least 1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "/api/v1/reviews", strings.NewReader(tc.body))
			got, err := ParseJSON[reviewIn](req)
			if tc.code == perr.ErrorCodeUnknown {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if tc.body != "" && (got.BookID != "b1" || got.Rating != 4) {
					t.Fatalf("decoded %+v", got)
				}
				return
			}
			if perr.CodeOf(err) != tc.code {
				t.Fatalf("code = %v (%v), want %v", perr.CodeOf(err), err, tc.code)
			}
			if tc.msg != "" && !strings.Contains(err.Error(), tc.msg) {
				t.Fatalf("message %q does not mention %q", err.Error(), tc.msg)
			}
		})
	}
}

func TestParseJSONBodyLimit(t *testing.T) {
	big := `{"bookId":"b1","comment":"` + strings.Repeat("a", maxBodyBytes) + `","rating":3}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reviews", strings.NewReader(big))
	if _, err := ParseJSON[reviewIn](req); perr.CodeOf(err) != perr.ErrorCodeJSON {
		t.Fatalf("oversized body: code = %v (%v)", perr.CodeOf(err), err)
	}
}

func TestParseJSONTrailingSeam(t *testing.T) {
	kit.Swap(t, &jsonMore, func(*json.Decoder) bool { return true })

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"bookId":"b1","comment":"x","rating":3}`))
	if _, err := ParseJSON[reviewIn](req); perr.CodeOf(err) != perr.ErrorCodeJSON {
		t.Fatalf("code = %v", perr.CodeOf(err))
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(reviewIn{BookID: "b1", Comment: "ok", Rating: 5}); err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}
	err := Validate(reviewIn{BookID: "b1", Comment: "ok", Rating: 6})
	if perr.CodeOf(err) != perr.ErrorCodeValidation {
		t.Fatalf("code = %v", perr.CodeOf(err))
	}
	if !strings.Contains(err.Error(), "rating must be at most 5") {
		t.Fatalf("message = %q", err.Error())
	}
	if perr.CodeOf(Validate(42)) != perr.ErrorCodeJSON {
		t.Fatal("non-struct should map to a JSON error")
	}
}

func TestValidationFieldAndMessage(t *testing.T) {
	if f, m := ValidationFieldAndMessage(nil); f != "" || m != "" {
		t.Fatalf("nil error gave %q %q", f, m)
	}
	err := Get().Validator.Struct(reviewIn{Comment: "x", Rating: 2})
	f, m := ValidationFieldAndMessage(err)
	if f != "bookId" || !strings.Contains(m, "bookId") {
		t.Fatalf("field=%q message=%q", f, m)
	}
	if _, m := ValidationFieldAndMessage(perr.NotFoundf("book")); m == "" {
		t.Fatal("plain errors should pass through their message")
	}
}
